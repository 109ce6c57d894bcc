package domain

import (
	"time"

	"github.com/google/uuid"
)

// BatchStatus represents the lifecycle state of an import batch
type BatchStatus string

const (
	BatchStatusOpen      BatchStatus = "OPEN"
	BatchStatusConfirmed BatchStatus = "CONFIRMED"
)

// ImportBatch represents one uploaded bank transfer file and owns its
// transfers. Created on upload; ConfirmedAt is set exactly once by batch
// confirmation and the batch is immutable thereafter.
type ImportBatch struct {
	ID             uuid.UUID
	FileName       string
	TotalCount     int
	MatchedCount   int
	UnmatchedCount int
	Status         BatchStatus
	ImportedAt     time.Time
	ConfirmedAt    *time.Time
}

// Confirm flips the batch to CONFIRMED at the given time. A batch may be
// confirmed at most once.
func (b *ImportBatch) Confirm(at time.Time) error {
	if b.Status == BatchStatusConfirmed || b.ConfirmedAt != nil {
		return ErrBatchAlreadyConfirmed
	}
	b.Status = BatchStatusConfirmed
	b.ConfirmedAt = &at
	return nil
}

// RecountTransfers recomputes the batch counters from the final states of its
// transfers.
func (b *ImportBatch) RecountTransfers(transfers []*Transfer) {
	b.TotalCount = len(transfers)
	b.MatchedCount = 0
	b.UnmatchedCount = 0
	for _, t := range transfers {
		switch t.Status {
		case TransferStatusMatched, TransferStatusApplied:
			b.MatchedCount++
		case TransferStatusPending, TransferStatusUnmatched:
			b.UnmatchedCount++
		}
	}
}
