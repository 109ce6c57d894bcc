package seeder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/schoolpay-backend/internal/domain"
)

// Fixed UUIDs so repeated seeding of the same database is a no-op
var (
	DEMO_GUARDIAN_YAMADA = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	DEMO_GUARDIAN_SUZUKI = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	DEMO_GUARDIAN_SATO   = uuid.MustParse("00000000-0000-0000-0000-000000000003")

	DEMO_INVOICE_YAMADA_TUITION = uuid.MustParse("00000000-0000-0000-0001-000000000001")
	DEMO_INVOICE_YAMADA_LUNCH   = uuid.MustParse("00000000-0000-0000-0001-000000000002")
	DEMO_INVOICE_SUZUKI_TUITION = uuid.MustParse("00000000-0000-0000-0001-000000000003")
	DEMO_INVOICE_SATO_TUITION   = uuid.MustParse("00000000-0000-0000-0001-000000000004")
)

// Store is the ensure-only write path the seeder needs. Guardian and invoice
// records are owned by other domains, so this interface lives here rather
// than next to the read-only repositories.
type Store interface {
	EnsureGuardian(ctx context.Context, guardian *domain.Guardian) error
	EnsureInvoice(ctx context.Context, invoice *domain.Invoice) error
}

// DemoSeeder provisions a small set of guardians and open invoices for local
// development, enough to exercise import, matching and confirmation end to end.
type DemoSeeder struct {
	store Store
}

// NewDemoSeeder creates a new DemoSeeder instance
func NewDemoSeeder(store Store) *DemoSeeder {
	return &DemoSeeder{
		store: store,
	}
}

// Seed ensures the demo guardians and their invoices exist in the database.
// Safe to run repeatedly; existing rows are left untouched.
func (s *DemoSeeder) Seed(ctx context.Context) error {
	dueDate := time.Now().AddDate(0, 1, 0)

	guardians := []*domain.Guardian{
		{
			ID:         DEMO_GUARDIAN_YAMADA,
			GuardianNo: "1001",
			Name:       "山田 太郎",
			NameKana:   "ヤマダ タロウ",
			Aliases:    []string{"山田 花子"},
		},
		{
			ID:         DEMO_GUARDIAN_SUZUKI,
			GuardianNo: "1002",
			Name:       "鈴木 一郎",
			NameKana:   "スズキ イチロウ",
		},
		{
			ID:         DEMO_GUARDIAN_SATO,
			GuardianNo: "1003",
			Name:       "佐藤 三郎",
			NameKana:   "サトウ サブロウ",
		},
	}

	invoices := []*domain.Invoice{
		{
			ID:           DEMO_INVOICE_YAMADA_TUITION,
			GuardianID:   DEMO_GUARDIAN_YAMADA,
			InvoiceNo:    "DEMO-TUITION-1001",
			BillingLabel: "4月分 授業料",
			TotalAmount:  decimal.NewFromInt(30000),
			PaidAmount:   decimal.Zero,
			DueDate:      dueDate,
		},
		{
			ID:           DEMO_INVOICE_YAMADA_LUNCH,
			GuardianID:   DEMO_GUARDIAN_YAMADA,
			InvoiceNo:    "DEMO-LUNCH-1001",
			BillingLabel: "4月分 給食費",
			TotalAmount:  decimal.NewFromInt(6500),
			PaidAmount:   decimal.Zero,
			DueDate:      dueDate,
		},
		{
			ID:           DEMO_INVOICE_SUZUKI_TUITION,
			GuardianID:   DEMO_GUARDIAN_SUZUKI,
			InvoiceNo:    "DEMO-TUITION-1002",
			BillingLabel: "4月分 授業料",
			TotalAmount:  decimal.NewFromInt(30000),
			PaidAmount:   decimal.Zero,
			DueDate:      dueDate,
		},
		{
			ID:           DEMO_INVOICE_SATO_TUITION,
			GuardianID:   DEMO_GUARDIAN_SATO,
			InvoiceNo:    "DEMO-TUITION-1003",
			BillingLabel: "4月分 授業料",
			TotalAmount:  decimal.NewFromInt(18000),
			PaidAmount:   decimal.Zero,
			DueDate:      dueDate,
		},
	}

	for _, g := range guardians {
		if err := s.store.EnsureGuardian(ctx, g); err != nil {
			return err
		}
	}
	for _, invoice := range invoices {
		if err := s.store.EnsureInvoice(ctx, invoice); err != nil {
			return err
		}
	}

	return nil
}
