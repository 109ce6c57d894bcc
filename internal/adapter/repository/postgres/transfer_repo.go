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

// transferRepository implements domain.TransferRepository
type transferRepository struct {
	db *DB
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(db *DB) domain.TransferRepository {
	return &transferRepository{db: db}
}

const transferColumns = `
	id, batch_id, row_index, transfer_date, amount, payer_name, payer_name_kana,
	source_bank_name, source_branch_name, guardian_no_hint, status, guardian_id, invoice_id, created_at
`

// Create persists a single manual transfer
func (r *transferRepository) Create(ctx context.Context, transfer *domain.Transfer) error {
	if err := insertTransfer(ctx, r.db.DB, transfer); err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

// CreateAll persists a batch's transfers in one database transaction
func (r *transferRepository) CreateAll(ctx context.Context, transfers []*domain.Transfer) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, t := range transfers {
		if err := insertTransfer(ctx, dbTx, t); err != nil {
			return fmt.Errorf("failed to insert transfer row %d: %w", t.RowIndex, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// execer lets insertTransfer run against the pool or an open transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertTransfer(ctx context.Context, ex execer, t *domain.Transfer) error {
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := ex.ExecContext(ctx, query,
		t.ID,
		t.BatchID,
		t.RowIndex,
		t.TransferDate,
		t.Amount.String(),
		t.PayerName,
		t.PayerNameKana,
		t.SourceBankName,
		t.SourceBranchName,
		t.GuardianNoHint,
		string(t.Status),
		t.GuardianID,
		t.InvoiceID,
		t.CreatedAt,
	)
	return err
}

// GetByID retrieves a transfer by its ID
func (r *transferRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`

	t, err := scanTransfer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transfer %s: %w", id, domain.ErrTransferNotFound)
		}
		return nil, fmt.Errorf("failed to get transfer by ID: %w", err)
	}
	return t, nil
}

// Update persists binding and status changes, guarded against the persisted
// status the caller based its transition on.
func (r *transferRepository) Update(ctx context.Context, transfer *domain.Transfer, expectedStatus domain.TransferStatus) error {
	query := `
		UPDATE transfers
		SET status = $2, guardian_id = $3, invoice_id = $4
		WHERE id = $1 AND status = $5
	`

	res, err := r.db.ExecContext(ctx, query,
		transfer.ID,
		string(transfer.Status),
		transfer.GuardianID,
		transfer.InvoiceID,
		string(expectedStatus),
	)
	if err != nil {
		return fmt.Errorf("failed to update transfer: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		current, err := r.GetByID(ctx, transfer.ID)
		if err != nil {
			return err
		}
		// The persisted state moved under the caller.
		return &domain.InvalidTransitionError{From: current.Status, To: transfer.Status}
	}
	return nil
}

// ListByBatch retrieves a batch's transfers ordered by row index
func (r *transferRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE batch_id = $1 ORDER BY row_index ASC`

	rows, err := r.db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers by batch: %w", err)
	}
	defer rows.Close()

	var transfers []*domain.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transfers: %w", err)
	}
	return transfers, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransfer(row rowScanner) (*domain.Transfer, error) {
	var t domain.Transfer
	var batchID, guardianID, invoiceID sql.NullString
	var amountStr string

	err := row.Scan(
		&t.ID,
		&batchID,
		&t.RowIndex,
		&t.TransferDate,
		&amountStr,
		&t.PayerName,
		&t.PayerNameKana,
		&t.SourceBankName,
		&t.SourceBranchName,
		&t.GuardianNoHint,
		&t.Status,
		&guardianID,
		&invoiceID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	t.Amount = amount

	if t.BatchID, err = parseNullUUID(batchID); err != nil {
		return nil, fmt.Errorf("failed to parse batch_id: %w", err)
	}
	if t.GuardianID, err = parseNullUUID(guardianID); err != nil {
		return nil, fmt.Errorf("failed to parse guardian_id: %w", err)
	}
	if t.InvoiceID, err = parseNullUUID(invoiceID); err != nil {
		return nil, fmt.Errorf("failed to parse invoice_id: %w", err)
	}

	return &t, nil
}

func parseNullUUID(v sql.NullString) (*uuid.UUID, error) {
	if !v.Valid {
		return nil, nil
	}
	id, err := uuid.Parse(v.String)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
