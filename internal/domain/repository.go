package domain

import (
	"context"

	"github.com/google/uuid"
)

// BatchRepository defines the interface for import batch persistence operations
type BatchRepository interface {
	// Create persists a new import batch
	Create(ctx context.Context, batch *ImportBatch) error

	// GetByID retrieves a batch by its ID, ErrBatchNotFound if missing
	GetByID(ctx context.Context, id uuid.UUID) (*ImportBatch, error)

	// ConfirmAndRecount persists the batch's confirmed status, confirmation
	// time and recomputed counters. The status flip is guarded against the
	// persisted OPEN status; ErrBatchAlreadyConfirmed if another caller won.
	ConfirmAndRecount(ctx context.Context, batch *ImportBatch) error
}

// TransferRepository defines the interface for transfer persistence operations
type TransferRepository interface {
	// Create persists a single transfer (manual entry)
	Create(ctx context.Context, transfer *Transfer) error

	// CreateAll persists a batch's transfers in one transaction
	CreateAll(ctx context.Context, transfers []*Transfer) error

	// GetByID retrieves a transfer by its ID, ErrTransferNotFound if missing
	GetByID(ctx context.Context, id uuid.UUID) (*Transfer, error)

	// Update persists binding and status changes. expectedStatus is the
	// persisted status the caller based its transition on; the write is
	// guarded against it so concurrent transitions surface as
	// InvalidTransitionError instead of lost updates.
	Update(ctx context.Context, transfer *Transfer, expectedStatus TransferStatus) error

	// ListByBatch retrieves a batch's transfers ordered by row index
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*Transfer, error)
}

// GuardianRepository is the guardian lookup collaborator. Guardian records are
// owned elsewhere; reconciliation only reads them.
type GuardianRepository interface {
	// GetByID retrieves a guardian by ID, ErrGuardianNotFound if missing
	GetByID(ctx context.Context, id uuid.UUID) (*Guardian, error)

	// GetByGuardianNo resolves an external guardian number,
	// ErrGuardianNotFound if it does not resolve
	GetByGuardianNo(ctx context.Context, guardianNo string) (*Guardian, error)

	// SearchByName returns guardians whose registered name, alias or kana
	// reading could match the query. Recall over precision: scoring decides.
	SearchByName(ctx context.Context, query string) ([]*Guardian, error)
}

// InvoiceRepository reads invoices owned by the billing domain. Balance
// mutation happens only inside LedgerRepository.ApplyTransfer.
type InvoiceRepository interface {
	// GetByID retrieves an invoice by ID, ErrInvoiceNotFound if missing
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// ListOpenByGuardian retrieves the guardian's invoices with a positive
	// balance due, oldest due date first
	ListOpenByGuardian(ctx context.Context, guardianID uuid.UUID) ([]*Invoice, error)
}

// PassbookRepository reads a guardian's passbook and cached running balance.
// Appends happen only through LedgerRepository.ApplyTransfer.
type PassbookRepository interface {
	// ListByGuardian retrieves all passbook transactions for a guardian,
	// oldest first
	ListByGuardian(ctx context.Context, guardianID uuid.UUID) ([]*PassbookTransaction, error)

	// GetBalance retrieves the cached running balance; a guardian with no
	// passbook entries has a zero balance
	GetBalance(ctx context.Context, guardianID uuid.UUID) (*GuardianAccountBalance, error)
}

// LedgerRepository executes one transfer application as a single atomic unit:
// compare-and-swap the transfer status MATCHED to APPLIED, lock the invoice
// and guardian account rows, and write the invoice update, the passbook
// entries and the cached balance together or not at all.
type LedgerRepository interface {
	// ApplyTransfer applies a matched transfer's amount. invoiceID overrides
	// the binding made at match time; nil keeps the bound invoice (and a
	// transfer with no invoice posts the full amount as a guardian credit).
	// Returns ErrAlreadyApplied when the status CAS finds APPLIED, and
	// ErrInvoiceNotFound when the invoice reference went stale; in both
	// cases no balance is touched.
	ApplyTransfer(ctx context.Context, transferID uuid.UUID, invoiceID *uuid.UUID) (*AppliedResult, error)
}
