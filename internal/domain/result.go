package domain

import "github.com/shopspring/decimal"

// AppliedResult is the authoritative outcome of applying one transfer. The
// engine is the source of truth: callers get the post-mutation state back
// instead of reconciling deltas themselves.
type AppliedResult struct {
	Transfer *Transfer

	// InvoicePortion is the amount applied to the invoice, zero when the
	// payment was posted entirely as a credit.
	InvoicePortion decimal.Decimal

	// CreditPortion is the amount posted to the guardian's account as a
	// credit (stored as a negative passbook entry).
	CreditPortion decimal.Decimal

	// GuardianBalance is the guardian's cached running balance after the
	// application.
	GuardianBalance decimal.Decimal

	// Entries are the passbook transactions this application appended, in
	// write order. Empty on an idempotent replay.
	Entries []*PassbookTransaction

	// AlreadyApplied is true when the transfer had been applied before and
	// this call changed nothing.
	AlreadyApplied bool
}
