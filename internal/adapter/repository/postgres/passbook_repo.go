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
)

// passbookRepository implements domain.PassbookRepository
type passbookRepository struct {
	db *DB
}

// NewPassbookRepository creates a new passbook repository
func NewPassbookRepository(db *DB) domain.PassbookRepository {
	return &passbookRepository{db: db}
}

// ListByGuardian retrieves all passbook transactions for a guardian, oldest first
func (r *passbookRepository) ListByGuardian(ctx context.Context, guardianID uuid.UUID) ([]*domain.PassbookTransaction, error) {
	query := `
		SELECT id, guardian_id, amount, balance_after, type, invoice_id, transfer_id, created_at
		FROM passbook_transactions
		WHERE guardian_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, guardianID)
	if err != nil {
		return nil, fmt.Errorf("failed to list passbook transactions: %w", err)
	}
	defer rows.Close()

	var entries []*domain.PassbookTransaction
	for rows.Next() {
		e, err := scanPassbookEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan passbook transaction: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate passbook transactions: %w", err)
	}
	return entries, nil
}

// GetBalance retrieves the cached running balance. A guardian without an
// account row has never had a passbook entry and reads as zero.
func (r *passbookRepository) GetBalance(ctx context.Context, guardianID uuid.UUID) (*domain.GuardianAccountBalance, error) {
	query := `
		SELECT guardian_id, balance, updated_at
		FROM guardian_accounts
		WHERE guardian_id = $1
	`

	var acct domain.GuardianAccountBalance
	var balanceStr string

	err := r.db.QueryRowContext(ctx, query, guardianID).Scan(
		&acct.GuardianID,
		&balanceStr,
		&acct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.GuardianAccountBalance{
				GuardianID: guardianID,
				Balance:    decimal.Zero,
				UpdatedAt:  time.Time{},
			}, nil
		}
		return nil, fmt.Errorf("failed to get guardian account balance: %w", err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance: %w", err)
	}
	acct.Balance = balance

	return &acct, nil
}

func scanPassbookEntry(row rowScanner) (*domain.PassbookTransaction, error) {
	var e domain.PassbookTransaction
	var invoiceID, transferID sql.NullString
	var amountStr, balanceStr string

	err := row.Scan(
		&e.ID,
		&e.GuardianID,
		&amountStr,
		&balanceStr,
		&e.Type,
		&invoiceID,
		&transferID,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance_after: %w", err)
	}
	e.Amount = amount
	e.BalanceAfter = balance

	if e.InvoiceID, err = parseNullUUID(invoiceID); err != nil {
		return nil, fmt.Errorf("failed to parse invoice_id: %w", err)
	}
	if e.TransferID, err = parseNullUUID(transferID); err != nil {
		return nil, fmt.Errorf("failed to parse transfer_id: %w", err)
	}

	return &e, nil
}
