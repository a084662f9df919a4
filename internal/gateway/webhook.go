package gateway

import (
	"encoding/json"
	"fmt"

	"tokora/pkg/utils"
)

// WebhookEvent is a tagged union over the provider events we act on. Unknown
// event types parse into UnknownEvent so dispatch stays exhaustive.
type WebhookEvent interface {
	webhookEvent()
}

type PaymentCaptured struct {
	OrderID   string
	PaymentID string
	Method    string
}

type PaymentFailed struct {
	OrderID   string
	PaymentID string
	Reason    string
}

type UnknownEvent struct {
	Type string
}

func (PaymentCaptured) webhookEvent() {}
func (PaymentFailed) webhookEvent()   {}
func (UnknownEvent) webhookEvent()    {}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				Method           string `json:"method"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ParseWebhookEvent decodes the provider's webhook envelope. Signature
// verification happens before this, over the raw bytes.
func ParseWebhookEvent(rawBody []byte) (WebhookEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(rawBody, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidWebhook, err)
	}

	entity := env.Payload.Payment.Entity
	switch env.Event {
	case "payment.captured":
		if entity.OrderID == "" || entity.ID == "" {
			return nil, fmt.Errorf("%w: captured event missing ids", utils.ErrInvalidWebhook)
		}
		return PaymentCaptured{
			OrderID:   entity.OrderID,
			PaymentID: entity.ID,
			Method:    entity.Method,
		}, nil
	case "payment.failed":
		if entity.OrderID == "" {
			return nil, fmt.Errorf("%w: failed event missing order id", utils.ErrInvalidWebhook)
		}
		return PaymentFailed{
			OrderID:   entity.OrderID,
			PaymentID: entity.ID,
			Reason:    entity.ErrorDescription,
		}, nil
	default:
		return UnknownEvent{Type: env.Event}, nil
	}
}
