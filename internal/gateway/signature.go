package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

func signHex(message []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature checks the HMAC-SHA256 of "orderID|paymentID" against
// the client-reported signature. Malformed input yields false, never an error,
// so callers treat it as "not verified".
func (g *Razorpay) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" || g.cfg.KeySecret == "" {
		return false
	}
	expected := signHex([]byte(orderID+"|"+paymentID), g.cfg.KeySecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks the HMAC of the exact raw body bytes against
// the webhook secret. With no webhook secret configured, deliveries are
// accepted unverified in a trust-but-log mode; every such delivery is logged
// at warning level.
func (g *Razorpay) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	if g.cfg.WebhookSecret == "" {
		g.logger.Warn("webhook secret not configured, accepting delivery unverified")
		return true
	}
	if signature == "" {
		return false
	}
	expected := signHex(rawBody, g.cfg.WebhookSecret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		g.logger.Warn("webhook signature verification failed")
		return false
	}
	return true
}
