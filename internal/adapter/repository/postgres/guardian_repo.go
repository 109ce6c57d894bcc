package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/simaogato/schoolpay-backend/internal/domain"
)

// guardianRepository implements domain.GuardianRepository
type guardianRepository struct {
	db *DB
}

// NewGuardianRepository creates a new guardian repository
func NewGuardianRepository(db *DB) domain.GuardianRepository {
	return &guardianRepository{db: db}
}

// GetByID retrieves a guardian by its ID
func (r *guardianRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Guardian, error) {
	query := `
		SELECT id, guardian_no, name, name_kana, aliases
		FROM guardians
		WHERE id = $1
	`

	g, err := scanGuardian(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("guardian %s: %w", id, domain.ErrGuardianNotFound)
		}
		return nil, fmt.Errorf("failed to get guardian by ID: %w", err)
	}
	return g, nil
}

// GetByGuardianNo resolves an external guardian number
func (r *guardianRepository) GetByGuardianNo(ctx context.Context, guardianNo string) (*domain.Guardian, error) {
	query := `
		SELECT id, guardian_no, name, name_kana, aliases
		FROM guardians
		WHERE guardian_no = $1
	`

	g, err := scanGuardian(r.db.QueryRowContext(ctx, query, guardianNo))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("guardian no %q: %w", guardianNo, domain.ErrGuardianNotFound)
		}
		return nil, fmt.Errorf("failed to get guardian by guardian no: %w", err)
	}
	return g, nil
}

// SearchByName returns guardians whose name, kana reading or alias resembles
// the query. Broad recall on purpose: candidate scoring decides what actually
// matches.
func (r *guardianRepository) SearchByName(ctx context.Context, query string) ([]*domain.Guardian, error) {
	// Strip spaces on both sides of the comparison; bank rows arrive with
	// arbitrary spacing. Width folding happens in the scoring layer.
	sqlQuery := `
		SELECT id, guardian_no, name, name_kana, aliases
		FROM guardians
		WHERE replace(replace(name, ' ', ''), '　', '') ILIKE '%' || $1 || '%'
		   OR replace(replace(name_kana, ' ', ''), '　', '') ILIKE '%' || $1 || '%'
		   OR EXISTS (
			SELECT 1 FROM unnest(aliases) AS alias
			WHERE replace(replace(alias, ' ', ''), '　', '') ILIKE '%' || $1 || '%'
		   )
		ORDER BY name ASC
		LIMIT 50
	`

	needle := stripSpaces(query)
	rows, err := r.db.QueryContext(ctx, sqlQuery, needle)
	if err != nil {
		return nil, fmt.Errorf("failed to search guardians: %w", err)
	}
	defer rows.Close()

	var guardians []*domain.Guardian
	for rows.Next() {
		g, err := scanGuardian(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guardian: %w", err)
		}
		guardians = append(guardians, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate guardians: %w", err)
	}
	return guardians, nil
}

func scanGuardian(row rowScanner) (*domain.Guardian, error) {
	var g domain.Guardian
	var aliases pq.StringArray

	err := row.Scan(
		&g.ID,
		&g.GuardianNo,
		&g.Name,
		&g.NameKana,
		&aliases,
	)
	if err != nil {
		return nil, err
	}
	g.Aliases = []string(aliases)
	return &g, nil
}

func stripSpaces(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == ' ' || r == '　' || r == '\t' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
