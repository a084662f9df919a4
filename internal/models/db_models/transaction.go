package db_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type TransactionStatus string

const (
	TxnStatusPending   TransactionStatus = "pending"
	TxnStatusCompleted TransactionStatus = "completed"
	TxnStatusFailed    TransactionStatus = "failed"
)

// Transaction is the durable record of one purchase attempt, from creation
// through terminal completion/failure. Amounts are computed once at creation
// and never re-derived during verification.
type Transaction struct {
	BaseModel
	UserID uuid.UUID `gorm:"index"`

	PackageName    string
	Tokens         int64
	Currency       string          `gorm:"size:3"` // ISO 4217
	BaseAmount     decimal.Decimal `gorm:"type:numeric(12,2)"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(12,2)"`
	FinalAmount    decimal.Decimal `gorm:"type:numeric(12,2)"` // base + tax
	BillingCountry string          `gorm:"size:2"`

	Status TransactionStatus `gorm:"index"`

	// Gateway fields; order id stays empty if the remote call never succeeded
	GatewayOrderID   string `gorm:"index"`
	GatewayPaymentID string
	GatewaySignature string
	PaymentMethod    string

	// Set once the invoice artifact has been rendered (best-effort)
	InvoiceFile string

	FailureReason string

	CompletedAt *int64
	FailedAt    *int64

	// Raw gateway responses for traceability
	GatewaySnapshot datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	User User `gorm:"foreignKey:UserID"`
}
