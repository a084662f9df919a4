package gateway

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tokora/pkg/utils"
)

type Config struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

// Order is the provider-side order created for one transaction.
type Order struct {
	OrderID     string
	AmountMinor int64
	Currency    string
	Status      string
}

// Razorpay wraps all interaction with the payment provider. The client is nil
// when credentials are missing; every call then fails with
// ErrGatewayUnavailable instead of reaching the network.
type Razorpay struct {
	cfg    Config
	client *razorpay.Client
	logger *zap.Logger
}

func NewRazorpay(cfg Config, logger *zap.Logger) *Razorpay {
	var client *razorpay.Client
	if cfg.KeyID != "" && cfg.KeySecret != "" {
		client = razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	}
	return &Razorpay{cfg: cfg, client: client, logger: logger}
}

// KeyID is needed client-side to open the provider's checkout UI.
func (g *Razorpay) KeyID() string {
	return g.cfg.KeyID
}

// MinorUnits converts a decimal amount to the provider's smallest currency
// unit (paise/cents).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

type orderResult struct {
	body map[string]interface{}
	err  error
}

// CreateOrder creates a remote order for the given amount. The SDK call is
// bounded by the caller's context deadline.
func (g *Razorpay) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*Order, error) {
	if g.client == nil {
		return nil, utils.ErrGatewayUnavailable
	}

	minor := MinorUnits(amount)
	data := map[string]interface{}{
		"amount":   minor,
		"currency": currency,
		"receipt":  receipt,
	}

	ch := make(chan orderResult, 1)
	go func() {
		body, err := g.client.Order.Create(data, nil)
		ch <- orderResult{body: body, err: err}
	}()

	var res orderResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", utils.ErrGateway, ctx.Err())
	case res = <-ch:
	}

	if res.err != nil {
		g.logger.Error("gateway order create failed",
			zap.String("receipt", receipt),
			zap.Error(res.err))
		return nil, fmt.Errorf("%w: %v", utils.ErrGateway, res.err)
	}

	orderID, ok := res.body["id"].(string)
	if !ok || orderID == "" {
		return nil, fmt.Errorf("%w: order id missing in response", utils.ErrGateway)
	}
	status, _ := res.body["status"].(string)

	return &Order{
		OrderID:     orderID,
		AmountMinor: minor,
		Currency:    currency,
		Status:      status,
	}, nil
}
