package domain

import "github.com/shopspring/decimal"

// MatchReason is the machine-readable tag for the single highest-weight
// signal that contributed to a candidate's score.
type MatchReason string

const (
	MatchReasonAmountAndName MatchReason = "amount+name"
	MatchReasonNameOnly      MatchReason = "name-only"
	MatchReasonKanaOnly      MatchReason = "kana-only"
	MatchReasonIDHint        MatchReason = "id-hint"
)

// AutoMatchThreshold is the score at or above which batch import binds the
// top candidate and moves the transfer straight to MATCHED. Below it the
// transfer stays PENDING for manual review.
const AutoMatchThreshold = 100

// CandidateInvoice is an open invoice attached to a match candidate.
type CandidateInvoice struct {
	Invoice    *Invoice
	BalanceDue decimal.Decimal
}

// MatchCandidate is a scored guardian suggestion for a transfer. Query result
// only, never persisted.
type MatchCandidate struct {
	Guardian    *Guardian
	Invoices    []CandidateInvoice
	MatchScore  int
	MatchReason MatchReason
}

// AutoMatchable reports whether the candidate clears the auto-match threshold.
func (c *MatchCandidate) AutoMatchable() bool {
	return c.MatchScore >= AutoMatchThreshold
}
