package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Plan describes the monetary movements produced by applying one transfer:
// how much pays down the invoice and how much lands on the guardian's account
// as credit. Exactly one passbook entry is appended per non-zero portion.
type Plan struct {
	// InvoicePortion is applied to the invoice: paidAmount increases and
	// balanceDue decreases by this amount. Zero when there is no invoice.
	InvoicePortion decimal.Decimal

	// CreditPortion is posted to the guardian's account as a negative
	// passbook entry. Zero when the invoice absorbs the full amount.
	CreditPortion decimal.Decimal
}

// CalculatePlan splits a transfer amount between an invoice and the guardian's
// account credit.
// Logic:
//  1. No invoice: the whole amount becomes an unassigned credit.
//  2. With an invoice: min(amount, balanceDue) pays the invoice.
//  3. Any excess over balanceDue is routed as credit, never as over-payment.
//
// Safety: the two portions always sum to the transfer amount exactly (no sen lost).
func CalculatePlan(amount decimal.Decimal, balanceDue *decimal.Decimal) (Plan, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Plan{}, errors.New("transfer amount must be positive")
	}

	if balanceDue == nil {
		return Plan{InvoicePortion: decimal.Zero, CreditPortion: amount}, nil
	}

	if balanceDue.LessThan(decimal.Zero) {
		return Plan{}, errors.New("invoice balance due must not be negative")
	}

	invoicePortion := decimal.Min(amount, *balanceDue)
	creditPortion := amount.Sub(invoicePortion)

	if !invoicePortion.Add(creditPortion).Equal(amount) {
		return Plan{}, errors.New("planned portions do not sum to the transfer amount")
	}

	return Plan{InvoicePortion: invoicePortion, CreditPortion: creditPortion}, nil
}
