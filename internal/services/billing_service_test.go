package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tokora/internal/gateway"
	"tokora/internal/models/db_models"
	"tokora/internal/pricing"
	"tokora/pkg/utils"
)

// fakeTxnRepo keeps the ledger and user balances in memory, mirroring the
// conditional complete-and-credit semantics of the real repository.
type fakeTxnRepo struct {
	mu       sync.Mutex
	txns     map[uuid.UUID]*db_models.Transaction
	balances map[uuid.UUID]int64
}

func newFakeTxnRepo() *fakeTxnRepo {
	return &fakeTxnRepo{
		txns:     make(map[uuid.UUID]*db_models.Transaction),
		balances: make(map[uuid.UUID]int64),
	}
}

func (r *fakeTxnRepo) Create(ctx context.Context, txn *db_models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	txn.CreatedAt = time.Now().Unix()
	cp := *txn
	r.txns[txn.ID] = &cp
	return nil
}

func (r *fakeTxnRepo) SetGatewayOrder(ctx context.Context, txnID uuid.UUID, orderID string, snapshot []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.txns[txnID]
	if !ok {
		return errors.New("missing transaction")
	}
	txn.GatewayOrderID = orderID
	return nil
}

func (r *fakeTxnRepo) GetByID(ctx context.Context, id uuid.UUID) (*db_models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.txns[id]
	if !ok {
		return nil, nil
	}
	cp := *txn
	return &cp, nil
}

func (r *fakeTxnRepo) GetByGatewayOrderID(ctx context.Context, orderID string) (*db_models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, txn := range r.txns {
		if txn.GatewayOrderID == orderID && orderID != "" {
			cp := *txn
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTxnRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]db_models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []db_models.Transaction
	for _, txn := range r.txns {
		if txn.UserID == userID {
			out = append(out, *txn)
		}
	}
	return out, nil
}

func (r *fakeTxnRepo) CompleteAndCredit(ctx context.Context, txnID uuid.UUID, paymentID, method, signature string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.txns[txnID]
	if !ok {
		return false, errors.New("missing transaction")
	}
	if txn.Status != db_models.TxnStatusPending {
		return false, nil
	}
	now := time.Now().Unix()
	txn.Status = db_models.TxnStatusCompleted
	txn.GatewayPaymentID = paymentID
	txn.PaymentMethod = method
	txn.GatewaySignature = signature
	txn.CompletedAt = &now
	r.balances[txn.UserID] += txn.Tokens
	return true, nil
}

func (r *fakeTxnRepo) MarkFailed(ctx context.Context, orderID, paymentID, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, txn := range r.txns {
		if txn.GatewayOrderID == orderID && txn.Status == db_models.TxnStatusPending {
			now := time.Now().Unix()
			txn.Status = db_models.TxnStatusFailed
			txn.GatewayPaymentID = paymentID
			txn.FailureReason = reason
			txn.FailedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTxnRepo) SetInvoiceFile(ctx context.Context, txnID uuid.UUID, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if txn, ok := r.txns[txnID]; ok {
		txn.InvoiceFile = filename
	}
	return nil
}

func (r *fakeTxnRepo) balance(userID uuid.UUID) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[userID]
}

func (r *fakeTxnRepo) status(txnID uuid.UUID) db_models.TransactionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.txns[txnID].Status
}

type fakeGateway struct {
	mu              sync.Mutex
	createErr       error
	orders          int
	validSig        string
	validWebhookSig string
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

func (g *fakeGateway) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*gateway.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.orders++
	return &gateway.Order{
		OrderID:     fmt.Sprintf("order_%d", g.orders),
		AmountMinor: gateway.MinorUnits(amount),
		Currency:    currency,
		Status:      "created",
	}, nil
}

func (g *fakeGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return signature == g.validSig
}

func (g *fakeGateway) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	return signature == g.validWebhookSig
}

func (g *fakeGateway) orderCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.orders
}

type fakeInvoices struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeInvoices) Generate(ctx context.Context, txnID uuid.UUID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("invoice-%s.pdf", txnID), nil
}

func (f *fakeInvoices) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type billingFixture struct {
	svc      BillingServiceInterface
	repo     *fakeTxnRepo
	gw       *fakeGateway
	invoices *fakeInvoices
	userID   uuid.UUID
}

func newBillingFixture() *billingFixture {
	repo := newFakeTxnRepo()
	gw := &fakeGateway{validSig: "good-sig", validWebhookSig: "good-wh-sig"}
	invoices := &fakeInvoices{}
	svc := NewBillingService(repo, pricing.DefaultCatalog(), gw, invoices, 5*time.Second, zap.NewNop())
	return &billingFixture{
		svc:      svc,
		repo:     repo,
		gw:       gw,
		invoices: invoices,
		userID:   uuid.New(),
	}
}

func (f *billingFixture) createOrder(t *testing.T) (txnID uuid.UUID, orderID string) {
	t.Helper()
	resp, err := f.svc.CreateOrder(context.Background(), f.userID,
		PackageSelector{PackageID: "starter"}, "IN")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	id, err := uuid.Parse(resp.TransactionID)
	if err != nil {
		t.Fatalf("bad transaction id: %v", err)
	}
	return id, resp.GatewayOrderID
}

func capturedWebhookBody(orderID, paymentID string) []byte {
	return []byte(fmt.Sprintf(`{
		"event": "payment.captured",
		"payload": {"payment": {"entity": {"id": %q, "order_id": %q, "method": "upi"}}}
	}`, paymentID, orderID))
}

func failedWebhookBody(orderID, paymentID string) []byte {
	return []byte(fmt.Sprintf(`{
		"event": "payment.failed",
		"payload": {"payment": {"entity": {"id": %q, "order_id": %q, "error_description": "card declined"}}}
	}`, paymentID, orderID))
}

func TestCreateOrderInsertsPendingLedgerRow(t *testing.T) {
	f := newBillingFixture()

	txnID, orderID := f.createOrder(t)

	txn, err := f.repo.GetByID(context.Background(), txnID)
	if err != nil || txn == nil {
		t.Fatalf("transaction missing: %v", err)
	}
	if txn.Status != db_models.TxnStatusPending {
		t.Fatalf("expected pending, got %s", txn.Status)
	}
	if txn.GatewayOrderID != orderID {
		t.Fatalf("gateway order id not recorded")
	}
	if !txn.FinalAmount.Equal(txn.BaseAmount.Add(txn.TaxAmount)) {
		t.Fatalf("final %s != base %s + tax %s", txn.FinalAmount, txn.BaseAmount, txn.TaxAmount)
	}
	if txn.Currency != "INR" || txn.BillingCountry != "IN" {
		t.Fatalf("unexpected currency/country: %s/%s", txn.Currency, txn.BillingCountry)
	}
}

func TestCreateOrderUnknownPackageHasNoSideEffects(t *testing.T) {
	f := newBillingFixture()

	_, err := f.svc.CreateOrder(context.Background(), f.userID,
		PackageSelector{PackageID: "platinum"}, "US")
	if !errors.Is(err, utils.ErrUnknownPackage) {
		t.Fatalf("expected ErrUnknownPackage, got %v", err)
	}
	if len(f.repo.txns) != 0 {
		t.Fatal("no ledger row may be created for an unknown package")
	}
	if f.gw.orderCount() != 0 {
		t.Fatal("gateway must not be called for an unknown package")
	}
}

func TestCreateOrderEmptySelectorRejected(t *testing.T) {
	f := newBillingFixture()

	_, err := f.svc.CreateOrder(context.Background(), f.userID, PackageSelector{}, "US")
	if !errors.Is(err, utils.ErrInvalidPackage) {
		t.Fatalf("expected ErrInvalidPackage, got %v", err)
	}
}

func TestCreateOrderGatewayFailureLeavesPendingOrphan(t *testing.T) {
	f := newBillingFixture()
	f.gw.createErr = utils.ErrGateway

	_, err := f.svc.CreateOrder(context.Background(), f.userID,
		PackageSelector{PackageID: "starter"}, "IN")
	if !errors.Is(err, utils.ErrOrderCreationFailed) {
		t.Fatalf("expected ErrOrderCreationFailed, got %v", err)
	}

	if len(f.repo.txns) != 1 {
		t.Fatalf("expected one orphaned ledger row, got %d", len(f.repo.txns))
	}
	for id := range f.repo.txns {
		txn, _ := f.repo.GetByID(context.Background(), id)
		if txn.Status != db_models.TxnStatusPending {
			t.Fatalf("orphan must stay pending, got %s", txn.Status)
		}
		if txn.GatewayOrderID != "" {
			t.Fatal("orphan must have no gateway order id")
		}
	}
	if f.repo.balance(f.userID) != 0 {
		t.Fatal("failed order creation must not credit anything")
	}
}

func TestCreateOrderGatewayUnavailable(t *testing.T) {
	f := newBillingFixture()
	f.gw.createErr = utils.ErrGatewayUnavailable

	_, err := f.svc.CreateOrder(context.Background(), f.userID,
		PackageSelector{PackageID: "starter"}, "US")
	if !errors.Is(err, utils.ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
}

func TestVerifyPaymentCreditsExactlyOnce(t *testing.T) {
	f := newBillingFixture()
	txnID, orderID := f.createOrder(t)

	first, err := f.svc.VerifyPayment(context.Background(), orderID, "pay_1", "good-sig")
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if first.AlreadyProcessed {
		t.Fatal("first verification must not report already processed")
	}
	if first.TokensCredited != 1000 {
		t.Fatalf("expected 1000 tokens credited, got %d", first.TokensCredited)
	}

	second, err := f.svc.VerifyPayment(context.Background(), orderID, "pay_1", "good-sig")
	if err != nil {
		t.Fatalf("second verify must be a successful no-op, got %v", err)
	}
	if !second.AlreadyProcessed {
		t.Fatal("second verification must report already processed")
	}

	if got := f.repo.balance(f.userID); got != 1000 {
		t.Fatalf("expected balance 1000 after duplicate verify, got %d", got)
	}
	if f.repo.status(txnID) != db_models.TxnStatusCompleted {
		t.Fatal("transaction must be completed")
	}
	if f.invoices.callCount() != 1 {
		t.Fatalf("invoice must be generated once, got %d", f.invoices.callCount())
	}
}

func TestVerifyPaymentInvalidSignatureMutatesNothing(t *testing.T) {
	f := newBillingFixture()
	txnID, orderID := f.createOrder(t)

	_, err := f.svc.VerifyPayment(context.Background(), orderID, "pay_1", "tampered")
	if !errors.Is(err, utils.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	if f.repo.status(txnID) != db_models.TxnStatusPending {
		t.Fatal("invalid signature must not change transaction state")
	}
	if f.repo.balance(f.userID) != 0 {
		t.Fatal("invalid signature must not credit the balance")
	}
}

func TestVerifyPaymentUnknownOrder(t *testing.T) {
	f := newBillingFixture()

	_, err := f.svc.VerifyPayment(context.Background(), "order_unknown", "pay_1", "good-sig")
	if !errors.Is(err, utils.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestVerifyPaymentInvoiceFailureIsSwallowed(t *testing.T) {
	f := newBillingFixture()
	f.invoices.err = errors.New("render failed")
	_, orderID := f.createOrder(t)

	result, err := f.svc.VerifyPayment(context.Background(), orderID, "pay_1", "good-sig")
	if err != nil {
		t.Fatalf("invoice failure must not fail the payment: %v", err)
	}
	if result.TokensCredited != 1000 {
		t.Fatalf("expected credit despite invoice failure, got %d", result.TokensCredited)
	}
}

func TestWebhookCapturedAfterClientVerifyIsNoOp(t *testing.T) {
	f := newBillingFixture()
	txnID, orderID := f.createOrder(t)

	if _, err := f.svc.VerifyPayment(context.Background(), orderID, "pay_1", "good-sig"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	err := f.svc.ProcessWebhook(context.Background(), capturedWebhookBody(orderID, "pay_1"), "good-wh-sig")
	if err != nil {
		t.Fatalf("retried webhook must succeed as a no-op, got %v", err)
	}

	if got := f.repo.balance(f.userID); got != 1000 {
		t.Fatalf("webhook after client verify must not double credit, balance %d", got)
	}
	if f.repo.status(txnID) != db_models.TxnStatusCompleted {
		t.Fatal("transaction must stay completed")
	}
}

func TestWebhookCapturedCompletesPendingTransaction(t *testing.T) {
	f := newBillingFixture()
	txnID, orderID := f.createOrder(t)

	err := f.svc.ProcessWebhook(context.Background(), capturedWebhookBody(orderID, "pay_9"), "good-wh-sig")
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}

	if f.repo.status(txnID) != db_models.TxnStatusCompleted {
		t.Fatal("captured webhook must complete the transaction")
	}
	if got := f.repo.balance(f.userID); got != 1000 {
		t.Fatalf("expected balance 1000, got %d", got)
	}
}

func TestWebhookFailedMarksTransactionFailed(t *testing.T) {
	f := newBillingFixture()
	txnID, orderID := f.createOrder(t)

	err := f.svc.ProcessWebhook(context.Background(), failedWebhookBody(orderID, "pay_3"), "good-wh-sig")
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}

	if f.repo.status(txnID) != db_models.TxnStatusFailed {
		t.Fatal("payment.failed must mark the pending transaction failed")
	}
	if f.repo.balance(f.userID) != 0 {
		t.Fatal("failed payment must not credit the balance")
	}

	txn, _ := f.repo.GetByID(context.Background(), txnID)
	if txn.GatewayPaymentID != "pay_3" {
		t.Fatal("failed webhook must record the gateway payment id")
	}
}

func TestWebhookInvalidSignatureRejected(t *testing.T) {
	f := newBillingFixture()
	txnID, orderID := f.createOrder(t)

	err := f.svc.ProcessWebhook(context.Background(), capturedWebhookBody(orderID, "pay_1"), "bad-wh-sig")
	if !errors.Is(err, utils.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if f.repo.status(txnID) != db_models.TxnStatusPending {
		t.Fatal("rejected webhook must not change state")
	}
	if f.repo.balance(f.userID) != 0 {
		t.Fatal("rejected webhook must not credit the balance")
	}
}

func TestWebhookUnknownEventIgnored(t *testing.T) {
	f := newBillingFixture()
	f.createOrder(t)

	body := []byte(`{"event": "refund.created", "payload": {}}`)
	if err := f.svc.ProcessWebhook(context.Background(), body, "good-wh-sig"); err != nil {
		t.Fatalf("unknown events must be acked, got %v", err)
	}
}

func TestWebhookUnknownOrderAcked(t *testing.T) {
	f := newBillingFixture()

	err := f.svc.ProcessWebhook(context.Background(), capturedWebhookBody("order_ghost", "pay_1"), "good-wh-sig")
	if err != nil {
		t.Fatalf("webhook for unknown order must be acked to stop retries, got %v", err)
	}
}

func TestConcurrentCompletionCreditsOnce(t *testing.T) {
	f := newBillingFixture()
	_, orderID := f.createOrder(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.VerifyPayment(context.Background(), orderID, "pay_1", "good-sig")
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.svc.ProcessWebhook(context.Background(), capturedWebhookBody(orderID, "pay_1"), "good-wh-sig")
		}()
	}
	wg.Wait()

	if got := f.repo.balance(f.userID); got != 1000 {
		t.Fatalf("concurrent completions credited %d tokens, want exactly 1000", got)
	}
}

func TestListPackagesPricedPerCountry(t *testing.T) {
	f := newBillingFixture()

	india := f.svc.ListPackages("IN")
	if len(india) == 0 {
		t.Fatal("expected packages")
	}
	for _, p := range india {
		if p.Currency != "INR" {
			t.Fatalf("expected INR pricing, got %s", p.Currency)
		}
		if p.TaxName != "GST" {
			t.Fatalf("expected GST line, got %q", p.TaxName)
		}
	}

	intl := f.svc.ListPackages("DE")
	for _, p := range intl {
		if p.Currency != "USD" || p.TaxAmount != "0.00" {
			t.Fatalf("expected untaxed USD pricing, got %s/%s", p.Currency, p.TaxAmount)
		}
	}
}
