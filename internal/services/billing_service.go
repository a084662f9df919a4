package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tokora/internal/gateway"
	"tokora/internal/models/db_models"
	"tokora/internal/models/response_models"
	"tokora/internal/pricing"
	"tokora/internal/repositories"
	"tokora/pkg/utils"
)

// PaymentGateway is the slice of the provider adapter the orchestrator needs;
// tests substitute a fake.
type PaymentGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*gateway.Order, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(rawBody []byte, signature string) bool
}

type InvoiceGenerator interface {
	Generate(ctx context.Context, txnID uuid.UUID) (string, error)
}

type PackageSelector struct {
	PackageID    string
	CustomTokens int64
}

type BillingServiceInterface interface {
	ListPackages(country string) []response_models.PricedPackage
	CreateOrder(ctx context.Context, userID uuid.UUID, sel PackageSelector, country string) (*response_models.CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (*response_models.PaymentResult, error)
	ProcessWebhook(ctx context.Context, rawBody []byte, signature string) error
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]response_models.TransactionSummary, error)
}

type BillingService struct {
	txnRepo        repositories.TransactionRepositoryInterface
	catalog        *pricing.Catalog
	gateway        PaymentGateway
	invoices       InvoiceGenerator
	gatewayTimeout time.Duration
	logger         *zap.Logger
}

func NewBillingService(
	txnRepo repositories.TransactionRepositoryInterface,
	catalog *pricing.Catalog,
	gw PaymentGateway,
	invoices InvoiceGenerator,
	gatewayTimeout time.Duration,
	logger *zap.Logger,
) BillingServiceInterface {
	return &BillingService{
		txnRepo:        txnRepo,
		catalog:        catalog,
		gateway:        gw,
		invoices:       invoices,
		gatewayTimeout: gatewayTimeout,
		logger:         logger,
	}
}

func (s *BillingService) resolvePackage(sel PackageSelector) (pricing.Package, error) {
	if sel.PackageID != "" {
		return s.catalog.Lookup(sel.PackageID)
	}
	if sel.CustomTokens > 0 {
		return s.catalog.Custom(sel.CustomTokens)
	}
	return pricing.Package{}, utils.ErrInvalidPackage
}

func (s *BillingService) ListPackages(country string) []response_models.PricedPackage {
	packages := s.catalog.List()
	out := make([]response_models.PricedPackage, 0, len(packages))
	for _, pkg := range packages {
		out = append(out, toPricedPackage(s.catalog.Quote(pkg, country)))
	}
	return out
}

// CreateOrder resolves the price, inserts a pending ledger row, and only then
// calls the gateway. A gateway failure leaves the row pending with no order id
// (an orphan) so reconciliation can later match it against a provider-side
// order that did succeed.
func (s *BillingService) CreateOrder(ctx context.Context, userID uuid.UUID, sel PackageSelector, country string) (*response_models.CreateOrderResponse, error) {
	pkg, err := s.resolvePackage(sel)
	if err != nil {
		return nil, err
	}
	quote := s.catalog.Quote(pkg, country)

	txn := &db_models.Transaction{
		UserID:         userID,
		PackageName:    pkg.Name,
		Tokens:         pkg.Tokens,
		Currency:       quote.Currency,
		BaseAmount:     quote.BaseAmount,
		TaxAmount:      quote.TaxAmount,
		FinalAmount:    quote.FinalAmount,
		BillingCountry: strings.ToUpper(strings.TrimSpace(country)),
		Status:         db_models.TxnStatusPending,
	}
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		s.logger.Error("create transaction failed", zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	order, err := s.gateway.CreateOrder(gctx, quote.FinalAmount, quote.Currency, txn.ID.String())
	if err != nil {
		s.logger.Error("gateway order creation failed, transaction left pending",
			zap.String("transaction_id", txn.ID.String()),
			zap.Error(err))
		if errors.Is(err, utils.ErrGatewayUnavailable) {
			return nil, err
		}
		return nil, utils.ErrOrderCreationFailed
	}

	snapshot, _ := json.Marshal(order)
	if err := s.txnRepo.SetGatewayOrder(ctx, txn.ID, order.OrderID, snapshot); err != nil {
		s.logger.Error("recording gateway order id failed",
			zap.String("transaction_id", txn.ID.String()),
			zap.String("gateway_order_id", order.OrderID),
			zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	return &response_models.CreateOrderResponse{
		TransactionID:  txn.ID.String(),
		GatewayOrderID: order.OrderID,
		GatewayKeyID:   s.gateway.KeyID(),
		AmountMinor:    order.AmountMinor,
		Amount:         quote.FinalAmount.StringFixed(2),
		Currency:       quote.Currency,
		Package:        toPricedPackage(quote),
	}, nil
}

// VerifyPayment is the client-callback completion path. The webhook path
// converges on the same complete() so both honor the same idempotency guard.
func (s *BillingService) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (*response_models.PaymentResult, error) {
	if !s.gateway.VerifyPaymentSignature(orderID, paymentID, signature) {
		s.logger.Warn("payment signature verification failed",
			zap.String("gateway_order_id", orderID),
			zap.String("gateway_payment_id", paymentID))
		return nil, utils.ErrInvalidSignature
	}

	txn, err := s.txnRepo.GetByGatewayOrderID(ctx, orderID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if txn == nil {
		return nil, utils.ErrTransactionNotFound
	}

	return s.complete(ctx, txn, paymentID, "", signature)
}

// complete applies the idempotent settlement: conditional pending->completed
// flip plus balance credit in one database transaction. A transaction that is
// already completed yields a successful no-op, never a double credit.
func (s *BillingService) complete(ctx context.Context, txn *db_models.Transaction, paymentID, method, signature string) (*response_models.PaymentResult, error) {
	if txn.Status == db_models.TxnStatusCompleted {
		return &response_models.PaymentResult{
			TransactionID:    txn.ID.String(),
			Status:           string(db_models.TxnStatusCompleted),
			TokensCredited:   txn.Tokens,
			AlreadyProcessed: true,
		}, nil
	}
	if txn.Status == db_models.TxnStatusFailed {
		return nil, utils.ErrTransactionClosed
	}

	credited, err := s.txnRepo.CompleteAndCredit(ctx, txn.ID, paymentID, method, signature)
	if err != nil {
		s.logger.Error("complete-and-credit failed",
			zap.String("transaction_id", txn.ID.String()),
			zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	if !credited {
		// Lost the race; a concurrent delivery settled this transaction.
		current, err := s.txnRepo.GetByID(ctx, txn.ID)
		if err != nil || current == nil {
			return nil, utils.ErrDatabaseError
		}
		if current.Status == db_models.TxnStatusCompleted {
			return &response_models.PaymentResult{
				TransactionID:    current.ID.String(),
				Status:           string(current.Status),
				TokensCredited:   current.Tokens,
				AlreadyProcessed: true,
			}, nil
		}
		return nil, utils.ErrTransactionClosed
	}

	if _, err := s.invoices.Generate(ctx, txn.ID); err != nil {
		// Best-effort; the payment itself is the contract the user cares about.
		s.logger.Error("invoice generation failed",
			zap.String("transaction_id", txn.ID.String()),
			zap.Error(err))
	}

	return &response_models.PaymentResult{
		TransactionID:  txn.ID.String(),
		Status:         string(db_models.TxnStatusCompleted),
		TokensCredited: txn.Tokens,
	}, nil
}

// ProcessWebhook is the ingress for provider deliveries: verify the raw body
// signature, decode, dispatch. Deliveries are retried by the provider, so the
// same event may arrive many times.
func (s *BillingService) ProcessWebhook(ctx context.Context, rawBody []byte, signature string) error {
	if !s.gateway.VerifyWebhookSignature(rawBody, signature) {
		return utils.ErrInvalidSignature
	}

	event, err := gateway.ParseWebhookEvent(rawBody)
	if err != nil {
		return err
	}
	return s.handleEvent(ctx, event)
}

func (s *BillingService) handleEvent(ctx context.Context, event gateway.WebhookEvent) error {
	switch ev := event.(type) {
	case gateway.PaymentCaptured:
		txn, err := s.txnRepo.GetByGatewayOrderID(ctx, ev.OrderID)
		if err != nil {
			return utils.ErrDatabaseError
		}
		if txn == nil {
			// Ack with a log instead of erroring to avoid a retry storm.
			s.logger.Warn("webhook for unknown gateway order",
				zap.String("gateway_order_id", ev.OrderID))
			return nil
		}
		if _, err := s.complete(ctx, txn, ev.PaymentID, ev.Method, ""); err != nil {
			if errors.Is(err, utils.ErrTransactionClosed) {
				s.logger.Warn("captured webhook for closed transaction",
					zap.String("transaction_id", txn.ID.String()))
				return nil
			}
			return err
		}
		return nil

	case gateway.PaymentFailed:
		marked, err := s.txnRepo.MarkFailed(ctx, ev.OrderID, ev.PaymentID, ev.Reason)
		if err != nil {
			return utils.ErrDatabaseError
		}
		if !marked {
			s.logger.Warn("failed webhook for non-pending transaction",
				zap.String("gateway_order_id", ev.OrderID))
		}
		return nil

	case gateway.UnknownEvent:
		s.logger.Info("ignoring webhook event", zap.String("event", ev.Type))
		return nil

	default:
		return nil
	}
}

func (s *BillingService) ListTransactions(ctx context.Context, userID uuid.UUID) ([]response_models.TransactionSummary, error) {
	txns, err := s.txnRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	out := make([]response_models.TransactionSummary, 0, len(txns))
	for _, txn := range txns {
		out = append(out, response_models.TransactionSummary{
			TransactionID:  txn.ID.String(),
			PackageName:    txn.PackageName,
			Tokens:         txn.Tokens,
			Currency:       txn.Currency,
			FinalAmount:    txn.FinalAmount.StringFixed(2),
			Status:         string(txn.Status),
			GatewayOrderID: txn.GatewayOrderID,
			HasInvoice:     txn.InvoiceFile != "",
			CreatedAt:      txn.CreatedAt,
		})
	}
	return out, nil
}

func toPricedPackage(q pricing.Quote) response_models.PricedPackage {
	return response_models.PricedPackage{
		ID:          q.Package.ID,
		Name:        q.Package.Name,
		Tokens:      q.Package.Tokens,
		Currency:    q.Currency,
		BaseAmount:  q.BaseAmount.StringFixed(2),
		TaxAmount:   q.TaxAmount.StringFixed(2),
		FinalAmount: q.FinalAmount.StringFixed(2),
		TaxName:     q.TaxName,
		TaxRate:     q.TaxRate.String(),
	}
}
