package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"tokora/internal/models/db_models"
	"tokora/internal/repositories"
	"tokora/pkg/utils"
)

type InvoiceServiceInterface interface {
	Generate(ctx context.Context, txnID uuid.UUID) (string, error)
	Resolve(ctx context.Context, txnID, userID uuid.UUID) (string, error)
}

// InvoiceService renders a PDF artifact for a completed transaction under a
// deterministic filename. Regeneration overwrites the same file, so repeated
// completions are safe.
type InvoiceService struct {
	dir      string
	txnRepo  repositories.TransactionRepositoryInterface
	userRepo repositories.UserRepositoryInterface
	logger   *zap.Logger
}

func NewInvoiceService(
	dir string,
	txnRepo repositories.TransactionRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) InvoiceServiceInterface {
	return &InvoiceService{
		dir:      dir,
		txnRepo:  txnRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

func invoiceFilename(txnID uuid.UUID) string {
	return fmt.Sprintf("invoice-%s.pdf", txnID)
}

func (s *InvoiceService) Generate(ctx context.Context, txnID uuid.UUID) (string, error) {
	txn, err := s.txnRepo.GetByID(ctx, txnID)
	if err != nil {
		return "", err
	}
	if txn == nil {
		return "", utils.ErrTransactionNotFound
	}
	if txn.Status != db_models.TxnStatusCompleted {
		return "", fmt.Errorf("transaction %s is not completed", txnID)
	}

	user, err := s.userRepo.GetByID(ctx, txn.UserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", utils.ErrAccountNotFound
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	filename := invoiceFilename(txn.ID)
	path := filepath.Join(s.dir, filename)
	if err := renderInvoicePDF(path, txn, user); err != nil {
		return "", err
	}

	if err := s.txnRepo.SetInvoiceFile(ctx, txn.ID, filename); err != nil {
		s.logger.Error("recording invoice filename failed",
			zap.String("transaction_id", txn.ID.String()),
			zap.Error(err))
	}

	return filename, nil
}

// Resolve returns the artifact path for a download, enforcing ownership. The
// file may be absent even for a completed transaction since generation is
// best-effort.
func (s *InvoiceService) Resolve(ctx context.Context, txnID, userID uuid.UUID) (string, error) {
	txn, err := s.txnRepo.GetByID(ctx, txnID)
	if err != nil {
		return "", err
	}
	if txn == nil || txn.UserID != userID {
		return "", utils.ErrTransactionNotFound
	}

	path := filepath.Join(s.dir, invoiceFilename(txn.ID))
	if _, err := os.Stat(path); err != nil {
		return "", utils.ErrInvoiceNotFound
	}
	return path, nil
}

func renderInvoicePDF(path string, txn *db_models.Transaction, user *db_models.User) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Tokora")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, "Token Purchase Invoice")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice no: %s", txn.ID))
	pdf.Ln(6)
	issued := txn.CreatedAt
	if txn.CompletedAt != nil {
		issued = *txn.CompletedAt
	}
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Unix(issued, 0).UTC().Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Billed to")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, user.Name)
	pdf.Ln(6)
	pdf.Cell(0, 6, user.Email)
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Country: %s", txn.BillingCountry))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(90, 8, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Tokens", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("Amount (%s)", txn.Currency), "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(90, 8, txn.PackageName, "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%d", txn.Tokens), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, txn.BaseAmount.StringFixed(2), "1", 1, "R", false, 0, "")

	if txn.TaxAmount.IsPositive() {
		pdf.CellFormat(120, 8, "GST", "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, txn.TaxAmount.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(120, 8, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, txn.FinalAmount.StringFixed(2), "1", 1, "R", false, 0, "")

	return pdf.OutputFileAndClose(path)
}
