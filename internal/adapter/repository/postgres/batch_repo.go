package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/schoolpay-backend/internal/domain"
)

// batchRepository implements domain.BatchRepository
type batchRepository struct {
	db *DB
}

// NewBatchRepository creates a new import batch repository
func NewBatchRepository(db *DB) domain.BatchRepository {
	return &batchRepository{db: db}
}

// Create persists a new import batch
func (r *batchRepository) Create(ctx context.Context, batch *domain.ImportBatch) error {
	query := `
		INSERT INTO import_batches (id, file_name, total_count, matched_count, unmatched_count, status, imported_at, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		batch.ID,
		batch.FileName,
		batch.TotalCount,
		batch.MatchedCount,
		batch.UnmatchedCount,
		string(batch.Status),
		batch.ImportedAt,
		batch.ConfirmedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create import batch: %w", err)
	}

	return nil
}

// GetByID retrieves a batch by its ID
func (r *batchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ImportBatch, error) {
	query := `
		SELECT id, file_name, total_count, matched_count, unmatched_count, status, imported_at, confirmed_at
		FROM import_batches
		WHERE id = $1
	`

	var batch domain.ImportBatch
	var confirmedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&batch.ID,
		&batch.FileName,
		&batch.TotalCount,
		&batch.MatchedCount,
		&batch.UnmatchedCount,
		&batch.Status,
		&batch.ImportedAt,
		&confirmedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("batch %s: %w", id, domain.ErrBatchNotFound)
		}
		return nil, fmt.Errorf("failed to get batch by ID: %w", err)
	}

	if confirmedAt.Valid {
		t := confirmedAt.Time
		batch.ConfirmedAt = &t
	}

	return &batch, nil
}

// ConfirmAndRecount persists the confirmed status, confirmation time and
// recomputed counters. The write is guarded against the persisted OPEN
// status; a concurrent confirmation surfaces as ErrBatchAlreadyConfirmed.
func (r *batchRepository) ConfirmAndRecount(ctx context.Context, batch *domain.ImportBatch) error {
	query := `
		UPDATE import_batches
		SET status = $2, confirmed_at = $3, total_count = $4, matched_count = $5, unmatched_count = $6
		WHERE id = $1 AND status = $7
	`

	res, err := r.db.ExecContext(ctx, query,
		batch.ID,
		string(domain.BatchStatusConfirmed),
		batch.ConfirmedAt,
		batch.TotalCount,
		batch.MatchedCount,
		batch.UnmatchedCount,
		string(domain.BatchStatusOpen),
	)
	if err != nil {
		return fmt.Errorf("failed to confirm batch: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read confirm result: %w", err)
	}
	if affected == 0 {
		// Either the batch vanished or another caller confirmed it first.
		if _, err := r.GetByID(ctx, batch.ID); err != nil {
			return err
		}
		return domain.ErrBatchAlreadyConfirmed
	}

	return nil
}
