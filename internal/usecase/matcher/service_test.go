package matcher

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

// MockGuardianRepository is a mock implementation of GuardianRepository for testing
type MockGuardianRepository struct {
	mock.Mock
}

func (m *MockGuardianRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Guardian, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Guardian), args.Error(1)
}

func (m *MockGuardianRepository) GetByGuardianNo(ctx context.Context, guardianNo string) (*domain.Guardian, error) {
	args := m.Called(ctx, guardianNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Guardian), args.Error(1)
}

func (m *MockGuardianRepository) SearchByName(ctx context.Context, query string) ([]*domain.Guardian, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Guardian), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository for testing
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListOpenByGuardian(ctx context.Context, guardianID uuid.UUID) ([]*domain.Invoice, error) {
	args := m.Called(ctx, guardianID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Invoice), args.Error(1)
}

func testTransfer(amount int64, payerName string) *domain.Transfer {
	return &domain.Transfer{
		ID:           uuid.New(),
		TransferDate: time.Now(),
		Amount:       decimal.NewFromInt(amount),
		PayerName:    payerName,
		Status:       domain.TransferStatusPending,
	}
}

func testGuardian(name, kana, no string) *domain.Guardian {
	return &domain.Guardian{
		ID:         uuid.New(),
		GuardianNo: no,
		Name:       name,
		NameKana:   kana,
	}
}

func testInvoice(guardianID uuid.UUID, balanceDue int64) *domain.Invoice {
	return &domain.Invoice{
		ID:          uuid.New(),
		GuardianID:  guardianID,
		InvoiceNo:   "INV-" + uuid.NewString()[:8],
		TotalAmount: decimal.NewFromInt(balanceDue),
		PaidAmount:  decimal.Zero,
		DueDate:     time.Now().Add(14 * 24 * time.Hour),
	}
}

func TestFindCandidates_ExactNameAndAmountAutoMatches(t *testing.T) {
	ctx := context.Background()
	guardianRepo := new(MockGuardianRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewService(guardianRepo, invoiceRepo)

	guardian := testGuardian("Yamada Taro", "ヤマダタロウ", "1001")
	invoice := testInvoice(guardian.ID, 30000)
	transfer := testTransfer(30000, "Yamada Taro")

	guardianRepo.On("SearchByName", ctx, "Yamada Taro").Return([]*domain.Guardian{guardian}, nil)
	invoiceRepo.On("ListOpenByGuardian", ctx, guardian.ID).Return([]*domain.Invoice{invoice}, nil)

	candidates, err := service.FindCandidates(ctx, transfer)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	top := candidates[0]
	assert.GreaterOrEqual(t, top.MatchScore, domain.AutoMatchThreshold)
	assert.Equal(t, domain.MatchReasonAmountAndName, top.MatchReason)
	assert.True(t, top.AutoMatchable())
	require.Len(t, top.Invoices, 1)
	assert.True(t, top.Invoices[0].BalanceDue.Equal(transfer.Amount))
}

func TestFindCandidates_NameOnlyStaysBelowThreshold(t *testing.T) {
	ctx := context.Background()
	guardianRepo := new(MockGuardianRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewService(guardianRepo, invoiceRepo)

	guardian := testGuardian("Yamada Taro", "ヤマダタロウ", "1001")
	invoice := testInvoice(guardian.ID, 50000) // amount differs
	transfer := testTransfer(30000, "Yamada Taro")

	guardianRepo.On("SearchByName", ctx, "Yamada Taro").Return([]*domain.Guardian{guardian}, nil)
	invoiceRepo.On("ListOpenByGuardian", ctx, guardian.ID).Return([]*domain.Invoice{invoice}, nil)

	candidates, err := service.FindCandidates(ctx, transfer)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, service.Policy.NameExact, candidates[0].MatchScore)
	assert.Equal(t, domain.MatchReasonNameOnly, candidates[0].MatchReason)
	assert.False(t, candidates[0].AutoMatchable())
}

func TestFindCandidates_NameMatchIsWidthAndSpaceInsensitive(t *testing.T) {
	ctx := context.Background()
	guardianRepo := new(MockGuardianRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewService(guardianRepo, invoiceRepo)

	guardian := testGuardian("ヤマダ　タロウ", "", "1001")
	transfer := testTransfer(30000, "ﾔﾏﾀﾞ ﾀﾛｳ")

	guardianRepo.On("SearchByName", ctx, transfer.PayerName).Return([]*domain.Guardian{guardian}, nil)
	invoiceRepo.On("ListOpenByGuardian", ctx, guardian.ID).Return([]*domain.Invoice{}, nil)

	candidates, err := service.FindCandidates(ctx, transfer)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, service.Policy.NameExact, candidates[0].MatchScore)
}

func TestFindCandidates_AliasCountsAsNameMatch(t *testing.T) {
	ctx := context.Background()
	guardianRepo := new(MockGuardianRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewService(guardianRepo, invoiceRepo)

	guardian := testGuardian("Yamada Hanako", "", "1001")
	guardian.Aliases = []string{"Yamada Taro"} // e.g. the paying spouse
	transfer := testTransfer(30000, "Yamada Taro")

	guardianRepo.On("SearchByName", ctx, "Yamada Taro").Return([]*domain.Guardian{guardian}, nil)
	invoiceRepo.On("ListOpenByGuardian", ctx, guardian.ID).Return([]*domain.Invoice{}, nil)

	candidates, err := service.FindCandidates(ctx, transfer)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, service.Policy.NameExact, candidates[0].MatchScore)
	assert.Equal(t, domain.MatchReasonNameOnly, candidates[0].MatchReason)
}

func TestFindCandidates_KanaNotAdditiveWithExactName(t *testing.T) {
	ctx := context.Background()
	guardianRepo := new(MockGuardianRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewService(guardianRepo, invoiceRepo)

	// Name and kana both match; kana must not double-count the same evidence.
	guardian := testGuardian("ヤマダタロウ", "ヤマダタロウ", "1001")
	transfer := testTransfer(30000, "ヤマダタロウ")
	transfer.PayerNameKana = "ヤマダタロウ"

	guardianRepo.On("SearchByName", ctx, mock.Anything).Return([]*domain.Guardian{guardian}, nil)
	invoiceRepo.On("ListOpenByGuardian", ctx, guardian.ID).Return([]*domain.Invoice{}, nil)

	candidates, err := service.FindCandidates(ctx, transfer)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, service.Policy.NameExact, candidates[0].MatchScore)
}

func TestFindCandidates_KanaOnly(t *testing.T) {
	ctx := context.Background()
	guardianRepo := new(MockGuardianRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewService(guardianRepo, invoiceRepo)

	guardian := testGuardian("山田太郎", "やまだたろう", "1001")
	transfer := testTransfer(30000, "ヤマダタロウ")

	guardianRepo.On("SearchByName", ctx, "ヤマダタロウ").Return([]*domain.Guardian{guardian}, nil)
	invoiceRepo.On("ListOpenByGuardian", ctx, guardian.ID).Return([]*domain.Invoice{}, nil)

	candidates, err := service.FindCandidates(ctx, transfer)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, service.Policy.KanaMatch, candidates[0].MatchScore)
	assert.Equal(t, domain.MatchReasonKanaOnly, candidates[0].MatchReason)
}

func TestFindCandidates_GuardianNoHintOnly(t *testing.T) {
	ctx := context.Background()
	guardianRepo := new(MockGuardianRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewService(guardianRepo, invoiceRepo)

	guardian := testGuardian("Suzuki Ichiro", "スズキイチロウ", "2048")
	transfer := testTransfer(18000, "")
	transfer.GuardianNoHint = "2048"

	guardianRepo.On("GetByGuardianNo", ctx, "2048").Return(guardian, nil)
	invoiceRepo.On("ListOpenByGuardian", ctx, guardian.ID).Return([]*domain.Invoice{}, nil)

	candidates, err := service.FindCandidates(ctx, transfer)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, service.Policy.GuardianNoHint, candidates[0].MatchScore)
	assert.Equal(t, domain.MatchReasonIDHint, candidates[0].MatchReason)
}

func TestFindCandidates_UnresolvedHintIsNotAnError(t *testing.T) {
	ctx := context.Background()
	guardianRepo := new(MockGuardianRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewService(guardianRepo, invoiceRepo)

	transfer := testTransfer(18000, "")
	transfer.GuardianNoHint = "9999"

	guardianRepo.On("GetByGuardianNo", ctx, "9999").Return(nil, domain.ErrGuardianNotFound)

	candidates, err := service.FindCandidates(ctx, transfer)

	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFindCandidates_DeterministicOrdering(t *testing.T) {
	ctx := context.Background()
	guardianRepo := new(MockGuardianRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewService(guardianRepo, invoiceRepo)

	// Two guardians with identical evidence; the tie breaks on display name.
	alpha := testGuardian("Aoki Ken", "", "3001")
	beta := testGuardian("Baba Ken", "", "3002")
	alpha.Aliases = []string{"Ken"}
	beta.Aliases = []string{"Ken"}
	transfer := testTransfer(30000, "Ken")

	guardianRepo.On("SearchByName", ctx, "Ken").Return([]*domain.Guardian{beta, alpha}, nil)
	invoiceRepo.On("ListOpenByGuardian", ctx, alpha.ID).Return([]*domain.Invoice{}, nil)
	invoiceRepo.On("ListOpenByGuardian", ctx, beta.ID).Return([]*domain.Invoice{}, nil)

	for i := 0; i < 3; i++ {
		candidates, err := service.FindCandidates(ctx, transfer)
		require.NoError(t, err)
		require.Len(t, candidates, 2)
		assert.Equal(t, alpha.ID, candidates[0].Guardian.ID, "ties order by guardian name ascending")
		assert.Equal(t, beta.ID, candidates[1].Guardian.ID)
		assert.Equal(t, candidates[0].MatchScore, candidates[1].MatchScore)
	}
}

func TestFindCandidates_ExactAmountInvoiceRankedFirst(t *testing.T) {
	ctx := context.Background()
	guardianRepo := new(MockGuardianRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewService(guardianRepo, invoiceRepo)

	guardian := testGuardian("Yamada Taro", "", "1001")
	older := testInvoice(guardian.ID, 12000)
	older.DueDate = time.Now().Add(-30 * 24 * time.Hour)
	exact := testInvoice(guardian.ID, 30000)
	transfer := testTransfer(30000, "Yamada Taro")

	guardianRepo.On("SearchByName", ctx, "Yamada Taro").Return([]*domain.Guardian{guardian}, nil)
	invoiceRepo.On("ListOpenByGuardian", ctx, guardian.ID).Return([]*domain.Invoice{older, exact}, nil)

	candidates, err := service.FindCandidates(ctx, transfer)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Len(t, candidates[0].Invoices, 2)
	assert.Equal(t, exact.ID, candidates[0].Invoices[0].Invoice.ID, "the exact-amount invoice ranks first")
}

func TestFindCandidates_RejectsNonPositiveAmount(t *testing.T) {
	service := NewService(new(MockGuardianRepository), new(MockInvoiceRepository))

	transfer := testTransfer(0, "Yamada Taro")
	_, err := service.FindCandidates(context.Background(), transfer)
	assert.Error(t, err)
}

func TestFindCandidates_NoMatchIsEmptyNotError(t *testing.T) {
	ctx := context.Background()
	guardianRepo := new(MockGuardianRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewService(guardianRepo, invoiceRepo)

	transfer := testTransfer(30000, "Nobody Known")
	guardianRepo.On("SearchByName", ctx, "Nobody Known").Return([]*domain.Guardian{}, nil)

	candidates, err := service.FindCandidates(ctx, transfer)

	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestSearchGuardians(t *testing.T) {
	ctx := context.Background()
	guardianRepo := new(MockGuardianRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewService(guardianRepo, invoiceRepo)

	guardian := testGuardian("Yamada Taro", "ヤマダタロウ", "1001")
	invoice := testInvoice(guardian.ID, 30000)

	guardianRepo.On("SearchByName", ctx, "Yamada").Return([]*domain.Guardian{guardian}, nil)
	invoiceRepo.On("ListOpenByGuardian", ctx, guardian.ID).Return([]*domain.Invoice{invoice}, nil)

	results, err := service.SearchGuardians(ctx, "Yamada")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, guardian.ID, results[0].Guardian.ID)
	require.Len(t, results[0].Invoices, 1)
	assert.True(t, results[0].Invoices[0].BalanceDue.Equal(decimal.NewFromInt(30000)))
}

func TestSearchGuardians_EmptyQueryRejected(t *testing.T) {
	service := NewService(new(MockGuardianRepository), new(MockInvoiceRepository))
	_, err := service.SearchGuardians(context.Background(), "")
	assert.Error(t, err)
}
