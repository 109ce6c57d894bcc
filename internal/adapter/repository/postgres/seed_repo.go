package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/simaogato/schoolpay-backend/internal/domain"
	"github.com/simaogato/schoolpay-backend/internal/usecase/seeder"
)

// seedRepository implements seeder.Store. Guardians and invoices are owned by
// other domains; this write path exists only to provision demo data in
// development databases and is deliberately ensure-only.
type seedRepository struct {
	db *DB
}

// NewSeedRepository creates a new seed repository
func NewSeedRepository(db *DB) seeder.Store {
	return &seedRepository{db: db}
}

// EnsureGuardian inserts the guardian if its ID is not present yet.
func (r *seedRepository) EnsureGuardian(ctx context.Context, g *domain.Guardian) error {
	query := `
		INSERT INTO guardians (id, guardian_no, name, name_kana, aliases)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		g.ID,
		g.GuardianNo,
		g.Name,
		g.NameKana,
		pq.Array(g.Aliases),
	)
	if err != nil {
		return fmt.Errorf("failed to seed guardian %s: %w", g.GuardianNo, err)
	}
	return nil
}

// EnsureInvoice inserts the invoice if its ID is not present yet.
func (r *seedRepository) EnsureInvoice(ctx context.Context, invoice *domain.Invoice) error {
	query := `
		INSERT INTO invoices (id, guardian_id, invoice_no, billing_label, total_amount, paid_amount, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.GuardianID,
		invoice.InvoiceNo,
		invoice.BillingLabel,
		invoice.TotalAmount,
		invoice.PaidAmount,
		invoice.DueDate,
	)
	if err != nil {
		return fmt.Errorf("failed to seed invoice %s: %w", invoice.InvoiceNo, err)
	}
	return nil
}
