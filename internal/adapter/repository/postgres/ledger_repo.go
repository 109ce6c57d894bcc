package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/schoolpay-backend/internal/domain"
	"github.com/simaogato/schoolpay-backend/internal/usecase/ledger"
)

// ledgerRepository implements domain.LedgerRepository. One call is one
// database transaction: the transfer status CAS, the invoice update, the
// passbook appends and the cached balance update commit together or roll back
// together.
type ledgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *DB) domain.LedgerRepository {
	return &ledgerRepository{db: db}
}

// ApplyTransfer applies a matched transfer's amount inside one transaction.
// Lock order is fixed (transfer, invoice, guardian account) so concurrent
// applies for the same guardian serialize instead of deadlocking.
func (r *ledgerRepository) ApplyTransfer(ctx context.Context, transferID uuid.UUID, invoiceID *uuid.UUID) (*domain.AppliedResult, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	transfer, err := lockTransfer(ctx, dbTx, transferID)
	if err != nil {
		return nil, err
	}
	switch transfer.Status {
	case domain.TransferStatusApplied:
		return nil, domain.ErrAlreadyApplied
	case domain.TransferStatusMatched:
		// proceed
	default:
		return nil, &domain.InvalidTransitionError{From: transfer.Status, To: domain.TransferStatusApplied}
	}
	if transfer.GuardianID == nil {
		return nil, &domain.ValidationError{Field: "guardian", Reason: "is required for matched and applied transfers"}
	}
	guardianID := *transfer.GuardianID

	effectiveInvoiceID := transfer.InvoiceID
	if invoiceID != nil {
		effectiveInvoiceID = invoiceID
	}

	var balanceDue *decimal.Decimal
	if effectiveInvoiceID != nil {
		due, err := lockInvoiceBalance(ctx, dbTx, *effectiveInvoiceID, guardianID)
		if err != nil {
			return nil, err
		}
		balanceDue = &due
	}

	balance, err := lockGuardianAccount(ctx, dbTx, guardianID)
	if err != nil {
		return nil, err
	}

	plan, err := ledger.CalculatePlan(transfer.Amount, balanceDue)
	if err != nil {
		return nil, fmt.Errorf("failed to plan application: %w", err)
	}

	now := time.Now()
	var entries []*domain.PassbookTransaction

	if plan.InvoicePortion.GreaterThan(decimal.Zero) {
		if err := payInvoice(ctx, dbTx, *effectiveInvoiceID, plan.InvoicePortion); err != nil {
			return nil, err
		}
		balance = balance.Sub(plan.InvoicePortion)
		entries = append(entries, &domain.PassbookTransaction{
			ID:           uuid.New(),
			GuardianID:   guardianID,
			Amount:       plan.InvoicePortion.Neg(),
			BalanceAfter: balance,
			Type:         domain.PassbookEntryInvoicePayment,
			InvoiceID:    effectiveInvoiceID,
			TransferID:   &transfer.ID,
			CreatedAt:    now,
		})
	}
	if plan.CreditPortion.GreaterThan(decimal.Zero) {
		balance = balance.Sub(plan.CreditPortion)
		entries = append(entries, &domain.PassbookTransaction{
			ID:           uuid.New(),
			GuardianID:   guardianID,
			Amount:       plan.CreditPortion.Neg(),
			BalanceAfter: balance,
			Type:         domain.PassbookEntryCredit,
			TransferID:   &transfer.ID,
			CreatedAt:    now,
		})
	}

	for _, e := range entries {
		if err := insertPassbookEntry(ctx, dbTx, e); err != nil {
			return nil, err
		}
	}
	if err := updateGuardianAccount(ctx, dbTx, guardianID, balance, now); err != nil {
		return nil, err
	}

	// Status CAS; the FOR UPDATE lock already serializes us but the guard
	// keeps the invariant visible in the write itself.
	res, err := dbTx.ExecContext(ctx, `
		UPDATE transfers SET status = $2, invoice_id = $3
		WHERE id = $1 AND status = $4
	`, transfer.ID, string(domain.TransferStatusApplied), effectiveInvoiceID, string(domain.TransferStatusMatched))
	if err != nil {
		return nil, fmt.Errorf("failed to mark transfer applied: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read apply result: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrAlreadyApplied
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	transfer.Status = domain.TransferStatusApplied
	transfer.InvoiceID = effectiveInvoiceID

	return &domain.AppliedResult{
		Transfer:        transfer,
		InvoicePortion:  plan.InvoicePortion,
		CreditPortion:   plan.CreditPortion,
		GuardianBalance: balance,
		Entries:         entries,
	}, nil
}

// lockTransfer reads the transfer row under FOR UPDATE.
func lockTransfer(ctx context.Context, dbTx *sql.Tx, id uuid.UUID) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1 FOR UPDATE`

	t, err := scanTransfer(dbTx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transfer %s: %w", id, domain.ErrTransferNotFound)
		}
		return nil, fmt.Errorf("failed to lock transfer: %w", err)
	}
	return t, nil
}

// lockInvoiceBalance locks the invoice row and returns its balance due. An
// invoice that vanished or was reassigned to another guardian since matching
// is a stale reference and surfaces as ErrInvoiceNotFound.
func lockInvoiceBalance(ctx context.Context, dbTx *sql.Tx, invoiceID, guardianID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT guardian_id, total_amount, paid_amount
		FROM invoices
		WHERE id = $1
		FOR UPDATE
	`

	var ownerID uuid.UUID
	var totalStr, paidStr string
	err := dbTx.QueryRowContext(ctx, query, invoiceID).Scan(&ownerID, &totalStr, &paidStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("invoice %s: %w", invoiceID, domain.ErrInvoiceNotFound)
		}
		return decimal.Zero, fmt.Errorf("failed to lock invoice: %w", err)
	}
	if ownerID != guardianID {
		return decimal.Zero, fmt.Errorf("invoice %s reassigned: %w", invoiceID, domain.ErrInvoiceNotFound)
	}

	total, err := decimal.NewFromString(totalStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse total_amount: %w", err)
	}
	paid, err := decimal.NewFromString(paidStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse paid_amount: %w", err)
	}
	return total.Sub(paid), nil
}

// lockGuardianAccount ensures the guardian's account row exists and locks it,
// returning the current cached balance. The lock serializes concurrent applies
// for the same guardian.
func lockGuardianAccount(ctx context.Context, dbTx *sql.Tx, guardianID uuid.UUID) (decimal.Decimal, error) {
	_, err := dbTx.ExecContext(ctx, `
		INSERT INTO guardian_accounts (guardian_id, balance, updated_at)
		VALUES ($1, 0, $2)
		ON CONFLICT (guardian_id) DO NOTHING
	`, guardianID, time.Now())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to ensure guardian account: %w", err)
	}

	var balanceStr string
	err = dbTx.QueryRowContext(ctx, `
		SELECT balance FROM guardian_accounts WHERE guardian_id = $1 FOR UPDATE
	`, guardianID).Scan(&balanceStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to lock guardian account: %w", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse balance: %w", err)
	}
	return balance, nil
}

func payInvoice(ctx context.Context, dbTx *sql.Tx, invoiceID uuid.UUID, amount decimal.Decimal) error {
	res, err := dbTx.ExecContext(ctx, `
		UPDATE invoices
		SET paid_amount = paid_amount + $2
		WHERE id = $1 AND total_amount - paid_amount >= $2
	`, invoiceID, amount.String())
	if err != nil {
		return fmt.Errorf("failed to update invoice paid amount: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read invoice update result: %w", err)
	}
	if affected == 0 {
		// The balance moved between planning and writing; cannot happen while
		// we hold the row lock, so treat it as corruption rather than retry.
		return fmt.Errorf("invoice %s balance changed under lock", invoiceID)
	}
	return nil
}

func insertPassbookEntry(ctx context.Context, dbTx *sql.Tx, e *domain.PassbookTransaction) error {
	_, err := dbTx.ExecContext(ctx, `
		INSERT INTO passbook_transactions (id, guardian_id, amount, balance_after, type, invoice_id, transfer_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		e.ID,
		e.GuardianID,
		e.Amount.String(),
		e.BalanceAfter.String(),
		string(e.Type),
		e.InvoiceID,
		e.TransferID,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert passbook transaction: %w", err)
	}
	return nil
}

func updateGuardianAccount(ctx context.Context, dbTx *sql.Tx, guardianID uuid.UUID, balance decimal.Decimal, now time.Time) error {
	_, err := dbTx.ExecContext(ctx, `
		UPDATE guardian_accounts SET balance = $2, updated_at = $3 WHERE guardian_id = $1
	`, guardianID, balance.String(), now)
	if err != nil {
		return fmt.Errorf("failed to update guardian account balance: %w", err)
	}
	return nil
}
