package response_models

type PricedPackage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Tokens      int64  `json:"tokens"`
	Currency    string `json:"currency"`
	BaseAmount  string `json:"base_amount"`
	TaxAmount   string `json:"tax_amount"`
	FinalAmount string `json:"final_amount"`
	TaxName     string `json:"tax_name,omitempty"`
	TaxRate     string `json:"tax_rate"`
}

type CreateOrderResponse struct {
	TransactionID  string        `json:"transaction_id"`
	GatewayOrderID string        `json:"gateway_order_id"`
	GatewayKeyID   string        `json:"gateway_key_id"`
	AmountMinor    int64         `json:"amount_minor"`
	Amount         string        `json:"amount"`
	Currency       string        `json:"currency"`
	Package        PricedPackage `json:"package"`
}

type PaymentResult struct {
	TransactionID    string `json:"transaction_id"`
	Status           string `json:"status"`
	TokensCredited   int64  `json:"tokens_credited"`
	AlreadyProcessed bool   `json:"already_processed"`
}

type TransactionSummary struct {
	TransactionID  string `json:"transaction_id"`
	PackageName    string `json:"package_name"`
	Tokens         int64  `json:"tokens"`
	Currency       string `json:"currency"`
	FinalAmount    string `json:"final_amount"`
	Status         string `json:"status"`
	GatewayOrderID string `json:"gateway_order_id,omitempty"`
	HasInvoice     bool   `json:"has_invoice"`
	CreatedAt      int64  `json:"created_at"`
}
