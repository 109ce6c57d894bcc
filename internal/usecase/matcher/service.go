package matcher

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/schoolpay-backend/internal/domain"
)

// Policy holds the scoring weights. The weights are a tunable default, the
// relative order (name > amount > kana > hint) is what reason selection and
// ranking rely on.
type Policy struct {
	NameExact      int // normalized payer name equals a registered name or alias
	AmountExact    int // an open invoice's balance due equals the transfer amount
	KanaMatch      int // kana reading matches and the name match is not exact
	GuardianNoHint int // guardian number hint resolves to the candidate
	ExactPairBonus int // name and amount both exact; lifts the pair to the auto-match threshold
}

// DefaultPolicy returns the default scoring weights. Name + amount + pair
// bonus reaches exactly the auto-match threshold.
func DefaultPolicy() Policy {
	return Policy{
		NameExact:      60,
		AmountExact:    30,
		KanaMatch:      15,
		GuardianNoHint: 10,
		ExactPairBonus: 10,
	}
}

// Service produces ranked guardian/invoice candidates for a transfer.
type Service struct {
	GuardianRepo domain.GuardianRepository
	InvoiceRepo  domain.InvoiceRepository
	Policy       Policy
}

// NewService creates a matcher Service with the default scoring policy.
func NewService(guardianRepo domain.GuardianRepository, invoiceRepo domain.InvoiceRepository) *Service {
	return &Service{
		GuardianRepo: guardianRepo,
		InvoiceRepo:  invoiceRepo,
		Policy:       DefaultPolicy(),
	}
}

// FindCandidates scores guardians against the transfer and returns them
// ordered by score descending, ties broken by guardian display name ascending.
// An empty result is a normal outcome, not an error.
func (s *Service) FindCandidates(ctx context.Context, transfer *domain.Transfer) ([]*domain.MatchCandidate, error) {
	if transfer.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, &domain.ValidationError{Field: "amount", Reason: "must be positive"}
	}

	guardians, err := s.collectGuardians(ctx, transfer)
	if err != nil {
		return nil, err
	}

	candidates := make([]*domain.MatchCandidate, 0, len(guardians))
	for _, g := range guardians {
		c, err := s.score(ctx, transfer, g)
		if err != nil {
			return nil, err
		}
		if c.MatchScore > 0 {
			candidates = append(candidates, c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].MatchScore != candidates[j].MatchScore {
			return candidates[i].MatchScore > candidates[j].MatchScore
		}
		return candidates[i].Guardian.Name < candidates[j].Guardian.Name
	})
	return candidates, nil
}

// SearchGuardians exposes the guardian-lookup collaborator in candidate shape
// for manual review screens. Results carry the guardians' open invoices but no
// score, since there is no transfer to score against.
func (s *Service) SearchGuardians(ctx context.Context, query string) ([]*domain.MatchCandidate, error) {
	if query == "" {
		return nil, &domain.ValidationError{Field: "query", Reason: "is required"}
	}
	guardians, err := s.GuardianRepo.SearchByName(ctx, query)
	if err != nil {
		return nil, err
	}
	candidates := make([]*domain.MatchCandidate, 0, len(guardians))
	for _, g := range guardians {
		invoices, err := s.openInvoices(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, &domain.MatchCandidate{
			Guardian:    g,
			Invoices:    invoices,
			MatchReason: domain.MatchReasonNameOnly,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Guardian.Name < candidates[j].Guardian.Name
	})
	return candidates, nil
}

// collectGuardians gathers the candidate pool: name search, kana search and
// the guardian-number hint, deduplicated by guardian ID. A transfer with an
// empty payer name degrades to hint-only lookup.
func (s *Service) collectGuardians(ctx context.Context, transfer *domain.Transfer) ([]*domain.Guardian, error) {
	seen := make(map[uuid.UUID]bool)
	var guardians []*domain.Guardian

	add := func(gs ...*domain.Guardian) {
		for _, g := range gs {
			if g == nil || seen[g.ID] {
				continue
			}
			seen[g.ID] = true
			guardians = append(guardians, g)
		}
	}

	for _, query := range []string{transfer.PayerName, transfer.PayerNameKana} {
		if query == "" {
			continue
		}
		found, err := s.GuardianRepo.SearchByName(ctx, query)
		if err != nil {
			return nil, err
		}
		add(found...)
	}

	if transfer.GuardianNoHint != "" {
		g, err := s.GuardianRepo.GetByGuardianNo(ctx, transfer.GuardianNoHint)
		if err != nil && !errors.Is(err, domain.ErrGuardianNotFound) {
			return nil, err
		}
		add(g)
	}
	return guardians, nil
}

func (s *Service) score(ctx context.Context, transfer *domain.Transfer, g *domain.Guardian) (*domain.MatchCandidate, error) {
	invoices, err := s.openInvoices(ctx, g.ID)
	if err != nil {
		return nil, err
	}

	nameExact := s.nameMatches(transfer.PayerName, g)
	kanaHit := !nameExact && s.kanaMatches(transfer, g)
	amountExact := false
	for _, ci := range invoices {
		if ci.BalanceDue.Equal(transfer.Amount) {
			amountExact = true
			break
		}
	}
	hintHit := transfer.GuardianNoHint != "" && transfer.GuardianNoHint == g.GuardianNo

	score := 0
	if nameExact {
		score += s.Policy.NameExact
	}
	if amountExact {
		score += s.Policy.AmountExact
	}
	if nameExact && amountExact {
		score += s.Policy.ExactPairBonus
	}
	if kanaHit {
		score += s.Policy.KanaMatch
	}
	if hintHit {
		score += s.Policy.GuardianNoHint
	}

	// Rank the exact-amount invoice first so auto-match binds it.
	sort.SliceStable(invoices, func(i, j int) bool {
		ei := invoices[i].BalanceDue.Equal(transfer.Amount)
		ej := invoices[j].BalanceDue.Equal(transfer.Amount)
		if ei != ej {
			return ei
		}
		return invoices[i].Invoice.DueDate.Before(invoices[j].Invoice.DueDate)
	})

	return &domain.MatchCandidate{
		Guardian:    g,
		Invoices:    invoices,
		MatchScore:  score,
		MatchReason: reason(nameExact, amountExact, kanaHit, hintHit),
	}, nil
}

// reason picks the tag of the highest-weight signal that contributed, with the
// fixed tie order: amount+name over name, over kana, over the ID hint.
func reason(nameExact, amountExact, kanaHit, hintHit bool) domain.MatchReason {
	switch {
	case nameExact && amountExact:
		return domain.MatchReasonAmountAndName
	case nameExact:
		return domain.MatchReasonNameOnly
	case amountExact:
		// amount outweighs kana and hint; the tag names the pair signal
		return domain.MatchReasonAmountAndName
	case kanaHit:
		return domain.MatchReasonKanaOnly
	case hintHit:
		return domain.MatchReasonIDHint
	default:
		return domain.MatchReasonNameOnly
	}
}

func (s *Service) nameMatches(payerName string, g *domain.Guardian) bool {
	payer := NormalizeName(payerName)
	if payer == "" {
		return false
	}
	if payer == NormalizeName(g.Name) {
		return true
	}
	for _, alias := range g.Aliases {
		if payer == NormalizeName(alias) {
			return true
		}
	}
	return false
}

// kanaMatches compares the transfer's kana reading (falling back to the payer
// name itself, which is often transmitted in katakana) against the guardian's
// registered reading.
func (s *Service) kanaMatches(transfer *domain.Transfer, g *domain.Guardian) bool {
	registered := NormalizeKana(g.NameKana)
	if registered == "" {
		return false
	}
	for _, raw := range []string{transfer.PayerNameKana, transfer.PayerName} {
		if raw == "" {
			continue
		}
		if NormalizeKana(raw) == registered {
			return true
		}
	}
	return false
}

func (s *Service) openInvoices(ctx context.Context, guardianID uuid.UUID) ([]domain.CandidateInvoice, error) {
	invoices, err := s.InvoiceRepo.ListOpenByGuardian(ctx, guardianID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CandidateInvoice, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, domain.CandidateInvoice{Invoice: inv, BalanceDue: inv.BalanceDue()})
	}
	return out, nil
}
