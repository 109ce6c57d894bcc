package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/schoolpay-backend/internal/domain"
)

// Service governs the non-monetary transfer transitions: matching a guardian,
// marking a transfer unmatched and cancelling. Every transition is validated
// against the current persisted state, and the repository re-guards the write
// against that same state, so a stale client assumption cannot overwrite a
// concurrent transition.
type Service struct {
	TransferRepo domain.TransferRepository
	GuardianRepo domain.GuardianRepository
	InvoiceRepo  domain.InvoiceRepository
}

// NewService creates a new transfer Service instance
func NewService(
	transferRepo domain.TransferRepository,
	guardianRepo domain.GuardianRepository,
	invoiceRepo domain.InvoiceRepository,
) *Service {
	return &Service{
		TransferRepo: transferRepo,
		GuardianRepo: guardianRepo,
		InvoiceRepo:  invoiceRepo,
	}
}

// ManualTransferInput is a transfer recorded by an operator outside any batch.
type ManualTransferInput struct {
	TransferDate     time.Time
	Amount           decimal.Decimal
	PayerName        string
	PayerNameKana    string
	SourceBankName   string
	SourceBranchName string
	GuardianNoHint   string
}

// CreateManual records a manual transfer in PENDING state.
func (s *Service) CreateManual(ctx context.Context, input ManualTransferInput) (*domain.Transfer, error) {
	t := &domain.Transfer{
		ID:               uuid.New(),
		TransferDate:     input.TransferDate,
		Amount:           input.Amount,
		PayerName:        input.PayerName,
		PayerNameKana:    input.PayerNameKana,
		SourceBankName:   input.SourceBankName,
		SourceBranchName: input.SourceBranchName,
		GuardianNoHint:   input.GuardianNoHint,
		Status:           domain.TransferStatusPending,
		CreatedAt:        time.Now(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.TransferRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Match binds a guardian (and optionally one of their invoices) to a transfer.
// Binding only; no balance moves until Apply. Re-matching a MATCHED transfer
// to a different guardian overwrites the previous binding.
func (s *Service) Match(ctx context.Context, transferID, guardianID uuid.UUID, invoiceID *uuid.UUID) (*domain.Transfer, error) {
	t, err := s.TransferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}

	if _, err := s.GuardianRepo.GetByID(ctx, guardianID); err != nil {
		return nil, err
	}
	if invoiceID != nil {
		invoice, err := s.InvoiceRepo.GetByID(ctx, *invoiceID)
		if err != nil {
			return nil, err
		}
		if invoice.GuardianID != guardianID {
			return nil, &domain.ValidationError{Field: "invoice", Reason: "does not belong to the guardian"}
		}
	}

	prev := t.Status
	if err := t.Match(guardianID, invoiceID); err != nil {
		return nil, err
	}
	if err := s.TransferRepo.Update(ctx, t, prev); err != nil {
		return nil, err
	}
	return t, nil
}

// Unmatch records that no guardian could be identified, clearing any
// tentative binding.
func (s *Service) Unmatch(ctx context.Context, transferID uuid.UUID) (*domain.Transfer, error) {
	t, err := s.TransferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	prev := t.Status
	if err := t.MarkUnmatched(); err != nil {
		return nil, err
	}
	if err := s.TransferRepo.Update(ctx, t, prev); err != nil {
		return nil, err
	}
	return t, nil
}

// Cancel administratively cancels a non-terminal transfer. Already-applied
// monetary effects are never rewound here; that is the reversal workflow's job.
func (s *Service) Cancel(ctx context.Context, transferID uuid.UUID) (*domain.Transfer, error) {
	t, err := s.TransferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	prev := t.Status
	if err := t.Cancel(); err != nil {
		return nil, err
	}
	if err := s.TransferRepo.Update(ctx, t, prev); err != nil {
		return nil, err
	}
	return t, nil
}
