package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tokora/internal/models/db_models"
)

type TransactionRepositoryInterface interface {
	Create(ctx context.Context, txn *db_models.Transaction) error
	SetGatewayOrder(ctx context.Context, txnID uuid.UUID, orderID string, snapshot []byte) error
	GetByID(ctx context.Context, id uuid.UUID) (*db_models.Transaction, error)
	GetByGatewayOrderID(ctx context.Context, orderID string) (*db_models.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]db_models.Transaction, error)
	CompleteAndCredit(ctx context.Context, txnID uuid.UUID, paymentID, method, signature string) (bool, error)
	MarkFailed(ctx context.Context, orderID, paymentID, reason string) (bool, error)
	SetInvoiceFile(ctx context.Context, txnID uuid.UUID, filename string) error
}

func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &TransactionRepository{db: db}
}

type TransactionRepository struct {
	db *gorm.DB
}

func (r *TransactionRepository) Create(ctx context.Context, txn *db_models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *TransactionRepository) SetGatewayOrder(ctx context.Context, txnID uuid.UUID, orderID string, snapshot []byte) error {
	updates := map[string]interface{}{"gateway_order_id": orderID}
	if snapshot != nil {
		updates["gateway_snapshot"] = snapshot
	}
	return r.db.WithContext(ctx).
		Model(&db_models.Transaction{}).
		Where("id = ?", txnID).
		Updates(updates).Error
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*db_models.Transaction, error) {
	var txn db_models.Transaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionRepository) GetByGatewayOrderID(ctx context.Context, orderID string) (*db_models.Transaction, error) {
	var txn db_models.Transaction
	err := r.db.WithContext(ctx).Where("gateway_order_id = ?", orderID).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]db_models.Transaction, error) {
	var txns []db_models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// CompleteAndCredit moves a pending transaction to completed and credits the
// owner's balance in one database transaction. The status flip is a
// conditional UPDATE keyed on the current pending state, so concurrent
// completions (client callback racing a webhook) resolve to exactly one
// credit: the loser sees zero rows affected and skips the increment. Returns
// whether this call performed the credit.
func (r *TransactionRepository) CompleteAndCredit(ctx context.Context, txnID uuid.UUID, paymentID, method, signature string) (bool, error) {
	credited := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().Unix()
		res := tx.Model(&db_models.Transaction{}).
			Where("id = ? AND status = ?", txnID, db_models.TxnStatusPending).
			Updates(map[string]interface{}{
				"status":             db_models.TxnStatusCompleted,
				"gateway_payment_id": paymentID,
				"payment_method":     method,
				"gateway_signature":  signature,
				"completed_at":       now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already terminal; nothing to credit.
			return nil
		}

		var txn db_models.Transaction
		if err := tx.Where("id = ?", txnID).First(&txn).Error; err != nil {
			return err
		}
		if err := tx.Model(&db_models.User{}).
			Where("id = ?", txn.UserID).
			UpdateColumn("token_balance", gorm.Expr("token_balance + ?", txn.Tokens)).Error; err != nil {
			return err
		}
		credited = true
		return nil
	})
	return credited, err
}

// MarkFailed transitions a still-pending transaction to failed. Terminal rows
// are left untouched.
func (r *TransactionRepository) MarkFailed(ctx context.Context, orderID, paymentID, reason string) (bool, error) {
	now := time.Now().Unix()
	res := r.db.WithContext(ctx).
		Model(&db_models.Transaction{}).
		Where("gateway_order_id = ? AND status = ?", orderID, db_models.TxnStatusPending).
		Updates(map[string]interface{}{
			"status":             db_models.TxnStatusFailed,
			"gateway_payment_id": paymentID,
			"failure_reason":     reason,
			"failed_at":          now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *TransactionRepository) SetInvoiceFile(ctx context.Context, txnID uuid.UUID, filename string) error {
	return r.db.WithContext(ctx).
		Model(&db_models.Transaction{}).
		Where("id = ?", txnID).
		Update("invoice_file", filename).Error
}
