package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is derived from the invoice balance and due date, never stored
type InvoiceStatus string

const (
	InvoiceStatusIssued  InvoiceStatus = "ISSUED"
	InvoiceStatusPartial InvoiceStatus = "PARTIAL"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
)

// Invoice is owned by the billing domain; reconciliation mutates PaidAmount
// in place when applying a transfer and never over-pays it.
type Invoice struct {
	ID           uuid.UUID
	GuardianID   uuid.UUID
	InvoiceNo    string
	BillingLabel string
	TotalAmount  decimal.Decimal
	PaidAmount   decimal.Decimal
	DueDate      time.Time
}

// BalanceDue returns the outstanding amount on the invoice.
func (i *Invoice) BalanceDue() decimal.Decimal {
	return i.TotalAmount.Sub(i.PaidAmount)
}

// Status derives the invoice status from its balance and due date as of now.
func (i *Invoice) Status(now time.Time) InvoiceStatus {
	due := i.BalanceDue()
	if due.LessThanOrEqual(decimal.Zero) {
		return InvoiceStatusPaid
	}
	if !i.DueDate.IsZero() && now.After(i.DueDate) {
		return InvoiceStatusOverdue
	}
	if i.PaidAmount.GreaterThan(decimal.Zero) {
		return InvoiceStatusPartial
	}
	return InvoiceStatusIssued
}

// ApplyPayment increases PaidAmount by the given amount. The amount must be
// positive and must not exceed the outstanding balance; routing any excess as
// a guardian credit is the caller's job.
func (i *Invoice) ApplyPayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if amount.GreaterThan(i.BalanceDue()) {
		return &ValidationError{Field: "amount", Reason: "exceeds invoice balance due"}
	}
	i.PaidAmount = i.PaidAmount.Add(amount)
	return nil
}
