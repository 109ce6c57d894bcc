package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/schoolpay-backend/internal/domain"
)

// Service performs the MATCHED -> APPLIED transition: the only operation that
// moves money. The atomic execution lives in domain.LedgerRepository; this
// service validates the transfer against its current persisted state and makes
// replays idempotent.
type Service struct {
	TransferRepo domain.TransferRepository
	LedgerRepo   domain.LedgerRepository
	PassbookRepo domain.PassbookRepository
}

// NewService creates a new ledger Service instance
func NewService(
	transferRepo domain.TransferRepository,
	ledgerRepo domain.LedgerRepository,
	passbookRepo domain.PassbookRepository,
) *Service {
	return &Service{
		TransferRepo: transferRepo,
		LedgerRepo:   ledgerRepo,
		PassbookRepo: passbookRepo,
	}
}

// Apply applies a matched transfer's amount to its invoice and/or the
// guardian's account. invoiceID overrides the invoice bound at match time;
// nil keeps it. Applying an already-applied transfer is a no-op success and
// never touches a balance. Failure leaves the transfer and all balances
// exactly as they were.
func (s *Service) Apply(ctx context.Context, transferID uuid.UUID, invoiceID *uuid.UUID) (*domain.AppliedResult, error) {
	transfer, err := s.TransferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}

	switch transfer.Status {
	case domain.TransferStatusApplied:
		return s.replayResult(ctx, transfer)
	case domain.TransferStatusMatched:
		// proceed
	default:
		return nil, &domain.InvalidTransitionError{From: transfer.Status, To: domain.TransferStatusApplied}
	}

	result, err := s.LedgerRepo.ApplyTransfer(ctx, transferID, invoiceID)
	if errors.Is(err, domain.ErrAlreadyApplied) {
		// Lost the status CAS to a concurrent apply; the money moved exactly once.
		transfer, err = s.TransferRepo.GetByID(ctx, transferID)
		if err != nil {
			return nil, err
		}
		return s.replayResult(ctx, transfer)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// replayResult builds the idempotent-success result for a transfer whose
// application already happened: the authoritative state, no new entries.
func (s *Service) replayResult(ctx context.Context, transfer *domain.Transfer) (*domain.AppliedResult, error) {
	balance := decimal.Zero
	if transfer.GuardianID != nil {
		acct, err := s.PassbookRepo.GetBalance(ctx, *transfer.GuardianID)
		if err != nil {
			return nil, err
		}
		balance = acct.Balance
	}
	return &domain.AppliedResult{
		Transfer:        transfer,
		InvoicePortion:  decimal.Zero,
		CreditPortion:   decimal.Zero,
		GuardianBalance: balance,
		AlreadyApplied:  true,
	}, nil
}
