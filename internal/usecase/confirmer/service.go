package confirmer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/schoolpay-backend/internal/domain"
	"github.com/simaogato/schoolpay-backend/internal/usecase/ledger"
)

// TransferFailure records one transfer that could not be applied during batch
// confirmation. The transfer stays MATCHED and can be retried individually.
type TransferFailure struct {
	TransferID uuid.UUID
	RowIndex   int
	Err        error
}

// ConfirmResult is the structured outcome of a batch confirmation. Partial
// failure is a result, not an error: transfers are independent financial
// events and one stale invoice must not block the rest.
type ConfirmResult struct {
	Batch               *domain.ImportBatch
	AppliedCount        int
	AlreadyAppliedCount int
	SkippedCount        int
	Failures            []TransferFailure
}

// Service orchestrates the all-or-nothing-per-transfer confirmation of a
// batch: every MATCHED transfer is walked through the MATCHED -> APPLIED
// transition in import row order, each as its own atomic unit, and the batch
// is flipped to CONFIRMED once the walk completes.
type Service struct {
	BatchRepo    domain.BatchRepository
	TransferRepo domain.TransferRepository
	Ledger       *ledger.Service
}

// NewService creates a new confirmer Service instance
func NewService(
	batchRepo domain.BatchRepository,
	transferRepo domain.TransferRepository,
	ledgerService *ledger.Service,
) *Service {
	return &Service{
		BatchRepo:    batchRepo,
		TransferRepo: transferRepo,
		Ledger:       ledgerService,
	}
}

// Confirm applies every matched transfer of the batch and marks the batch
// confirmed. Preconditions: the batch exists, is still open and has at least
// one MATCHED transfer. Transfers that are already APPLIED, UNMATCHED or
// CANCELLED are skipped, never re-processed. The batch is marked confirmed
// even when some transfers failed; those stay MATCHED and remain actionable
// individually.
func (s *Service) Confirm(ctx context.Context, batchID uuid.UUID) (*ConfirmResult, error) {
	batch, err := s.BatchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.Status == domain.BatchStatusConfirmed {
		return nil, domain.ErrBatchAlreadyConfirmed
	}

	transfers, err := s.TransferRepo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	result := &ConfirmResult{Batch: batch}
	matched := 0
	for _, t := range transfers {
		if t.Status == domain.TransferStatusMatched {
			matched++
		}
	}
	if matched == 0 {
		return nil, domain.ErrNoMatchedTransfers
	}

	// ListByBatch orders by row index, which fixes the processing order.
	for _, t := range transfers {
		if t.Status != domain.TransferStatusMatched {
			result.SkippedCount++
			continue
		}
		applied, err := s.Ledger.Apply(ctx, t.ID, nil)
		if err != nil {
			result.Failures = append(result.Failures, TransferFailure{
				TransferID: t.ID,
				RowIndex:   t.RowIndex,
				Err:        err,
			})
			continue
		}
		if applied.AlreadyApplied {
			result.AlreadyAppliedCount++
		} else {
			result.AppliedCount++
		}
	}

	// Recount from the transfers' final states before flipping the batch.
	final, err := s.TransferRepo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	batch.RecountTransfers(final)
	if err := batch.Confirm(time.Now()); err != nil {
		return nil, err
	}
	if err := s.BatchRepo.ConfirmAndRecount(ctx, batch); err != nil {
		return nil, err
	}
	return result, nil
}
