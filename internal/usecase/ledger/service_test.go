package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/schoolpay-backend/internal/domain"
)

// MockTransferRepository is a mock implementation of TransferRepository for testing
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) Create(ctx context.Context, transfer *domain.Transfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *MockTransferRepository) CreateAll(ctx context.Context, transfers []*domain.Transfer) error {
	args := m.Called(ctx, transfers)
	return args.Error(0)
}

func (m *MockTransferRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transfer), args.Error(1)
}

func (m *MockTransferRepository) Update(ctx context.Context, transfer *domain.Transfer, expectedStatus domain.TransferStatus) error {
	args := m.Called(ctx, transfer, expectedStatus)
	return args.Error(0)
}

func (m *MockTransferRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*domain.Transfer, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transfer), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository for testing
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) ApplyTransfer(ctx context.Context, transferID uuid.UUID, invoiceID *uuid.UUID) (*domain.AppliedResult, error) {
	args := m.Called(ctx, transferID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AppliedResult), args.Error(1)
}

// MockPassbookRepository is a mock implementation of PassbookRepository for testing
type MockPassbookRepository struct {
	mock.Mock
}

func (m *MockPassbookRepository) ListByGuardian(ctx context.Context, guardianID uuid.UUID) ([]*domain.PassbookTransaction, error) {
	args := m.Called(ctx, guardianID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PassbookTransaction), args.Error(1)
}

func (m *MockPassbookRepository) GetBalance(ctx context.Context, guardianID uuid.UUID) (*domain.GuardianAccountBalance, error) {
	args := m.Called(ctx, guardianID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GuardianAccountBalance), args.Error(1)
}

func matchedTransfer(amount int64) *domain.Transfer {
	guardianID := uuid.New()
	invoiceID := uuid.New()
	return &domain.Transfer{
		ID:           uuid.New(),
		TransferDate: time.Now(),
		Amount:       decimal.NewFromInt(amount),
		PayerName:    "Yamada Taro",
		Status:       domain.TransferStatusMatched,
		GuardianID:   &guardianID,
		InvoiceID:    &invoiceID,
	}
}

func TestApply_Success(t *testing.T) {
	ctx := context.Background()
	transferRepo := new(MockTransferRepository)
	ledgerRepo := new(MockLedgerRepository)
	passbookRepo := new(MockPassbookRepository)
	service := NewService(transferRepo, ledgerRepo, passbookRepo)

	transfer := matchedTransfer(30000)
	applied := &domain.AppliedResult{
		Transfer:        transfer,
		InvoicePortion:  decimal.NewFromInt(30000),
		CreditPortion:   decimal.Zero,
		GuardianBalance: decimal.Zero,
	}

	transferRepo.On("GetByID", ctx, transfer.ID).Return(transfer, nil)
	ledgerRepo.On("ApplyTransfer", ctx, transfer.ID, (*uuid.UUID)(nil)).Return(applied, nil)

	result, err := service.Apply(ctx, transfer.ID, nil)

	require.NoError(t, err)
	assert.False(t, result.AlreadyApplied)
	assert.True(t, result.InvoicePortion.Equal(decimal.NewFromInt(30000)))
	ledgerRepo.AssertExpectations(t)
}

func TestApply_InvoiceOverridePassedThrough(t *testing.T) {
	ctx := context.Background()
	transferRepo := new(MockTransferRepository)
	ledgerRepo := new(MockLedgerRepository)
	passbookRepo := new(MockPassbookRepository)
	service := NewService(transferRepo, ledgerRepo, passbookRepo)

	transfer := matchedTransfer(30000)
	override := uuid.New()
	applied := &domain.AppliedResult{Transfer: transfer}

	transferRepo.On("GetByID", ctx, transfer.ID).Return(transfer, nil)
	ledgerRepo.On("ApplyTransfer", ctx, transfer.ID, &override).Return(applied, nil)

	_, err := service.Apply(ctx, transfer.ID, &override)

	require.NoError(t, err)
	ledgerRepo.AssertExpectations(t)
}

func TestApply_ReplayIsIdempotentSuccess(t *testing.T) {
	ctx := context.Background()
	transferRepo := new(MockTransferRepository)
	ledgerRepo := new(MockLedgerRepository)
	passbookRepo := new(MockPassbookRepository)
	service := NewService(transferRepo, ledgerRepo, passbookRepo)

	transfer := matchedTransfer(30000)
	transfer.Status = domain.TransferStatusApplied
	balance := &domain.GuardianAccountBalance{
		GuardianID: *transfer.GuardianID,
		Balance:    decimal.NewFromInt(-5000),
	}

	transferRepo.On("GetByID", ctx, transfer.ID).Return(transfer, nil)
	passbookRepo.On("GetBalance", ctx, *transfer.GuardianID).Return(balance, nil)

	result, err := service.Apply(ctx, transfer.ID, nil)

	require.NoError(t, err)
	assert.True(t, result.AlreadyApplied)
	assert.True(t, result.InvoicePortion.IsZero())
	assert.True(t, result.CreditPortion.IsZero())
	assert.True(t, result.GuardianBalance.Equal(decimal.NewFromInt(-5000)))
	ledgerRepo.AssertNotCalled(t, "ApplyTransfer", mock.Anything, mock.Anything, mock.Anything)
}

func TestApply_LostRaceConvertsToReplaySuccess(t *testing.T) {
	ctx := context.Background()
	transferRepo := new(MockTransferRepository)
	ledgerRepo := new(MockLedgerRepository)
	passbookRepo := new(MockPassbookRepository)
	service := NewService(transferRepo, ledgerRepo, passbookRepo)

	// First read sees MATCHED, but a concurrent apply wins the status swap.
	transfer := matchedTransfer(30000)
	appliedCopy := *transfer
	appliedCopy.Status = domain.TransferStatusApplied
	balance := &domain.GuardianAccountBalance{
		GuardianID: *transfer.GuardianID,
		Balance:    decimal.Zero,
	}

	transferRepo.On("GetByID", ctx, transfer.ID).Return(transfer, nil).Once()
	ledgerRepo.On("ApplyTransfer", ctx, transfer.ID, (*uuid.UUID)(nil)).Return(nil, domain.ErrAlreadyApplied)
	transferRepo.On("GetByID", ctx, transfer.ID).Return(&appliedCopy, nil).Once()
	passbookRepo.On("GetBalance", ctx, *transfer.GuardianID).Return(balance, nil)

	result, err := service.Apply(ctx, transfer.ID, nil)

	require.NoError(t, err)
	assert.True(t, result.AlreadyApplied)
	assert.Equal(t, domain.TransferStatusApplied, result.Transfer.Status)
}

func TestApply_RejectsNonMatchedStatuses(t *testing.T) {
	for _, status := range []domain.TransferStatus{
		domain.TransferStatusPending,
		domain.TransferStatusUnmatched,
		domain.TransferStatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			ctx := context.Background()
			transferRepo := new(MockTransferRepository)
			ledgerRepo := new(MockLedgerRepository)
			service := NewService(transferRepo, ledgerRepo, new(MockPassbookRepository))

			transfer := matchedTransfer(30000)
			transfer.Status = status
			if status != domain.TransferStatusCancelled {
				transfer.GuardianID = nil
				transfer.InvoiceID = nil
			}
			transferRepo.On("GetByID", ctx, transfer.ID).Return(transfer, nil)

			_, err := service.Apply(ctx, transfer.ID, nil)

			var transitionErr *domain.InvalidTransitionError
			require.ErrorAs(t, err, &transitionErr)
			assert.Equal(t, status, transitionErr.From)
			ledgerRepo.AssertNotCalled(t, "ApplyTransfer", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestApply_TransferNotFound(t *testing.T) {
	ctx := context.Background()
	transferRepo := new(MockTransferRepository)
	service := NewService(transferRepo, new(MockLedgerRepository), new(MockPassbookRepository))

	id := uuid.New()
	transferRepo.On("GetByID", ctx, id).Return(nil, domain.ErrTransferNotFound)

	_, err := service.Apply(ctx, id, nil)

	assert.ErrorIs(t, err, domain.ErrTransferNotFound)
}

func TestApply_StaleInvoiceSurfaces(t *testing.T) {
	ctx := context.Background()
	transferRepo := new(MockTransferRepository)
	ledgerRepo := new(MockLedgerRepository)
	service := NewService(transferRepo, ledgerRepo, new(MockPassbookRepository))

	transfer := matchedTransfer(30000)
	transferRepo.On("GetByID", ctx, transfer.ID).Return(transfer, nil)
	ledgerRepo.On("ApplyTransfer", ctx, transfer.ID, (*uuid.UUID)(nil)).Return(nil, domain.ErrInvoiceNotFound)

	_, err := service.Apply(ctx, transfer.ID, nil)

	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}
