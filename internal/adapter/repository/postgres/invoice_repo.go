package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/schoolpay-backend/internal/domain"
)

// invoiceRepository implements domain.InvoiceRepository
type invoiceRepository struct {
	db *DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *DB) domain.InvoiceRepository {
	return &invoiceRepository{db: db}
}

// GetByID retrieves an invoice by its ID
func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	query := `
		SELECT id, guardian_id, invoice_no, billing_label, total_amount, paid_amount, due_date
		FROM invoices
		WHERE id = $1
	`

	inv, err := scanInvoice(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", id, domain.ErrInvoiceNotFound)
		}
		return nil, fmt.Errorf("failed to get invoice by ID: %w", err)
	}
	return inv, nil
}

// ListOpenByGuardian retrieves the guardian's invoices with a positive balance
// due, oldest due date first
func (r *invoiceRepository) ListOpenByGuardian(ctx context.Context, guardianID uuid.UUID) ([]*domain.Invoice, error) {
	query := `
		SELECT id, guardian_id, invoice_no, billing_label, total_amount, paid_amount, due_date
		FROM invoices
		WHERE guardian_id = $1 AND total_amount > paid_amount
		ORDER BY due_date ASC, invoice_no ASC
	`

	rows, err := r.db.QueryContext(ctx, query, guardianID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}
	return invoices, nil
}

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	var inv domain.Invoice
	var totalStr, paidStr string

	err := row.Scan(
		&inv.ID,
		&inv.GuardianID,
		&inv.InvoiceNo,
		&inv.BillingLabel,
		&totalStr,
		&paidStr,
		&inv.DueDate,
	)
	if err != nil {
		return nil, err
	}

	total, err := decimal.NewFromString(totalStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse total_amount: %w", err)
	}
	paid, err := decimal.NewFromString(paidStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse paid_amount: %w", err)
	}
	inv.TotalAmount = total
	inv.PaidAmount = paid

	return &inv, nil
}
