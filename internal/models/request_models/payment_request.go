package request_models

// Either PackageID or CustomTokens selects the bundle; exactly one must be set.
type CreateOrderRequest struct {
	PackageID      string `json:"package_id"`
	CustomTokens   int64  `json:"custom_tokens"`
	BillingCountry string `json:"billing_country" binding:"required"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}
