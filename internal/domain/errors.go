package domain

import (
	"errors"
	"fmt"
)

// Not-found sentinels. Repositories return these (possibly wrapped) so callers
// can match with errors.Is regardless of the underlying store.
var (
	ErrBatchNotFound    = errors.New("import batch not found")
	ErrTransferNotFound = errors.New("transfer not found")
	ErrGuardianNotFound = errors.New("guardian not found")
	ErrInvoiceNotFound  = errors.New("invoice not found")
)

// ErrAlreadyApplied signals that a transfer's monetary mutation already
// happened. Apply treats it as success so replays are safe; it must be
// detected before any balance is touched.
var ErrAlreadyApplied = errors.New("transfer already applied")

// Batch confirmation precondition failures.
var (
	ErrBatchAlreadyConfirmed = errors.New("import batch already confirmed")
	ErrNoMatchedTransfers    = errors.New("import batch has no matched transfers")
)

// ValidationError rejects malformed input before any state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// InvalidTransitionError rejects an illegal state-machine move; the current
// state is left unchanged.
type InvalidTransitionError struct {
	From TransferStatus
	To   TransferStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transfer transition from %s to %s", e.From, e.To)
}
