package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStatus represents the lifecycle state of a bank transfer
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusMatched   TransferStatus = "MATCHED"
	TransferStatusApplied   TransferStatus = "APPLIED"
	TransferStatusUnmatched TransferStatus = "UNMATCHED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is allowed from the status,
// other than the out-of-scope reversal workflow.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusApplied || s == TransferStatusUnmatched || s == TransferStatusCancelled
}

// Transfer represents a single bank transfer row, either imported as part of
// a batch or entered manually (BatchID nil).
type Transfer struct {
	ID               uuid.UUID
	BatchID          *uuid.UUID
	RowIndex         int // position within the batch; stable processing order
	TransferDate     time.Time
	Amount           decimal.Decimal
	PayerName        string
	PayerNameKana    string
	SourceBankName   string
	SourceBranchName string
	GuardianNoHint   string
	Status           TransferStatus
	GuardianID       *uuid.UUID
	InvoiceID        *uuid.UUID
	CreatedAt        time.Time
}

// Validate ensures the transfer adheres to domain rules
// Returns a ValidationError describing the first violated rule.
func (t *Transfer) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if t.TransferDate.IsZero() {
		return &ValidationError{Field: "transferDate", Reason: "is required"}
	}
	if t.PayerName == "" && t.GuardianNoHint == "" {
		return &ValidationError{Field: "payerName", Reason: "is required unless a guardian number hint is present"}
	}
	switch t.Status {
	case TransferStatusPending, TransferStatusUnmatched:
		if t.GuardianID != nil {
			return &ValidationError{Field: "guardian", Reason: "must be empty for " + string(t.Status) + " transfers"}
		}
	case TransferStatusMatched, TransferStatusApplied:
		// guardian is set iff status is MATCHED or APPLIED
		if t.GuardianID == nil {
			return &ValidationError{Field: "guardian", Reason: "is required for matched and applied transfers"}
		}
	case TransferStatusCancelled:
		// cancelled keeps whatever binding it had for audit purposes
	default:
		return &ValidationError{Field: "status", Reason: "unknown status " + string(t.Status)}
	}
	return nil
}

// Match binds the transfer to a guardian (and optionally an invoice) and moves
// it to MATCHED. Re-matching a MATCHED transfer overwrites the binding; no
// balances have moved yet, so this is safe. Binding is all this does: the
// monetary mutation happens only on MarkApplied.
func (t *Transfer) Match(guardianID uuid.UUID, invoiceID *uuid.UUID) error {
	if t.Status != TransferStatusPending && t.Status != TransferStatusMatched {
		return &InvalidTransitionError{From: t.Status, To: TransferStatusMatched}
	}
	t.GuardianID = &guardianID
	t.InvoiceID = invoiceID
	t.Status = TransferStatusMatched
	return nil
}

// MarkApplied moves a MATCHED transfer to APPLIED. Callers must have performed
// the monetary mutation; an already-APPLIED transfer yields ErrAlreadyApplied
// so callers can treat the replay as success without touching any balance.
func (t *Transfer) MarkApplied() error {
	if t.Status == TransferStatusApplied {
		return ErrAlreadyApplied
	}
	if t.Status != TransferStatusMatched {
		return &InvalidTransitionError{From: t.Status, To: TransferStatusApplied}
	}
	t.Status = TransferStatusApplied
	return nil
}

// MarkUnmatched records that no guardian could be identified for the transfer,
// clearing any tentative guardian/invoice binding. Terminal.
func (t *Transfer) MarkUnmatched() error {
	if t.Status != TransferStatusPending && t.Status != TransferStatusMatched {
		return &InvalidTransitionError{From: t.Status, To: TransferStatusUnmatched}
	}
	t.GuardianID = nil
	t.InvoiceID = nil
	t.Status = TransferStatusUnmatched
	return nil
}

// Cancel administratively cancels the transfer. Allowed from any non-terminal
// state; it never rewinds monetary effects on its own.
func (t *Transfer) Cancel() error {
	if t.Status.IsTerminal() {
		return &InvalidTransitionError{From: t.Status, To: TransferStatusCancelled}
	}
	t.Status = TransferStatusCancelled
	return nil
}
