package db_models

type User struct {
	BaseModel
	Name         string
	Email        string `gorm:"unique"`
	PasswordHash string

	// Mutated only by increments (purchase credit / consumption),
	// never by a direct set.
	TokenBalance int64 `gorm:"not null;default:0"`

	Transactions []Transaction `gorm:"constraint:OnDelete:CASCADE"`
	Tickets      []Ticket      `gorm:"constraint:OnDelete:CASCADE"`
}
