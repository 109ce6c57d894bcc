package importer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/schoolpay-backend/internal/domain"
	"github.com/simaogato/schoolpay-backend/internal/usecase/matcher"
)

// TransferRow is one parsed row handed over by file ingestion. Malformed rows
// are rejected by Import and reported back; they never become transfers.
type TransferRow struct {
	TransferDate     time.Time
	Amount           decimal.Decimal
	PayerName        string
	PayerNameKana    string
	SourceBankName   string
	SourceBranchName string
	GuardianNoHint   string
}

// RowError reports a rejected row by its 1-based position in the upload.
type RowError struct {
	Row int
	Err error
}

// ImportResult is the outcome of one batch upload.
type ImportResult struct {
	Batch     *domain.ImportBatch
	Transfers []*domain.Transfer
	RowErrors []RowError
}

// Service creates import batches: each row is validated, auto-scored against
// guardian/invoice candidates and persisted with its initial state. Rows
// scoring at or above the auto-match threshold go straight to MATCHED with the
// top candidate's guardian and invoice bound; the rest stay PENDING for
// manual review.
type Service struct {
	BatchRepo    domain.BatchRepository
	TransferRepo domain.TransferRepository
	Matcher      *matcher.Service
}

// NewService creates a new importer Service instance
func NewService(
	batchRepo domain.BatchRepository,
	transferRepo domain.TransferRepository,
	matcherService *matcher.Service,
) *Service {
	return &Service{
		BatchRepo:    batchRepo,
		TransferRepo: transferRepo,
		Matcher:      matcherService,
	}
}

// Import creates a batch from parsed rows. Row validation failures are
// collected into RowErrors and do not abort the batch; an upload whose rows
// all fail still produces an (empty) open batch so the operator sees what was
// rejected.
func (s *Service) Import(ctx context.Context, fileName string, rows []TransferRow) (*ImportResult, error) {
	if fileName == "" {
		return nil, &domain.ValidationError{Field: "fileName", Reason: "is required"}
	}

	batch := &domain.ImportBatch{
		ID:         uuid.New(),
		FileName:   fileName,
		Status:     domain.BatchStatusOpen,
		ImportedAt: time.Now(),
	}

	result := &ImportResult{Batch: batch}
	for i, row := range rows {
		t, err := s.buildTransfer(ctx, batch.ID, i+1, row)
		if err != nil {
			result.RowErrors = append(result.RowErrors, RowError{Row: i + 1, Err: err})
			continue
		}
		result.Transfers = append(result.Transfers, t)
	}

	batch.RecountTransfers(result.Transfers)

	if err := s.BatchRepo.Create(ctx, batch); err != nil {
		return nil, err
	}
	if len(result.Transfers) > 0 {
		if err := s.TransferRepo.CreateAll(ctx, result.Transfers); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// buildTransfer validates one row, scores it and returns the transfer in its
// initial state.
func (s *Service) buildTransfer(ctx context.Context, batchID uuid.UUID, rowNo int, row TransferRow) (*domain.Transfer, error) {
	t := &domain.Transfer{
		ID:               uuid.New(),
		BatchID:          &batchID,
		RowIndex:         rowNo,
		TransferDate:     row.TransferDate,
		Amount:           row.Amount,
		PayerName:        row.PayerName,
		PayerNameKana:    row.PayerNameKana,
		SourceBankName:   row.SourceBankName,
		SourceBranchName: row.SourceBranchName,
		GuardianNoHint:   row.GuardianNoHint,
		Status:           domain.TransferStatusPending,
		CreatedAt:        time.Now(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	candidates, err := s.Matcher.FindCandidates(ctx, t)
	if err != nil {
		return nil, err
	}
	// No candidate at all is a normal outcome: stay PENDING.
	if len(candidates) == 0 || !candidates[0].AutoMatchable() {
		return t, nil
	}

	top := candidates[0]
	var invoiceID *uuid.UUID
	if len(top.Invoices) > 0 && top.Invoices[0].BalanceDue.Equal(t.Amount) {
		id := top.Invoices[0].Invoice.ID
		invoiceID = &id
	}
	if err := t.Match(top.Guardian.ID, invoiceID); err != nil {
		return nil, err
	}
	return t, nil
}
