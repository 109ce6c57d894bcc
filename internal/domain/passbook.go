package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PassbookEntryType classifies a single passbook movement
type PassbookEntryType string

const (
	// PassbookEntryInvoicePayment records an applied transfer paying down an invoice.
	PassbookEntryInvoicePayment PassbookEntryType = "INVOICE_PAYMENT"
	// PassbookEntryCredit records money held on the guardian's account
	// (unassigned payment or the excess of an overpayment). Negative amount.
	PassbookEntryCredit PassbookEntryType = "CREDIT"
	// PassbookEntryCharge records an invoice charge raised by billing. Positive amount.
	PassbookEntryCharge PassbookEntryType = "CHARGE"
)

// PassbookTransaction is one immutable movement on a guardian's running
// account. Amount is signed: positive increases what the guardian owes,
// negative is credit owed to the guardian. BalanceAfter snapshots the running
// balance after the movement.
type PassbookTransaction struct {
	ID           uuid.UUID
	GuardianID   uuid.UUID
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	Type         PassbookEntryType
	InvoiceID    *uuid.UUID
	TransferID   *uuid.UUID
	CreatedAt    time.Time
}

// GuardianAccountBalance caches the signed sum of a guardian's passbook
// transactions. It is written in the same transaction as each append and must
// never diverge from the sum.
type GuardianAccountBalance struct {
	GuardianID uuid.UUID
	Balance    decimal.Decimal
	UpdatedAt  time.Time
}

// SumPassbook returns the signed sum of the given passbook transactions. Used
// to verify the cached balance.
func SumPassbook(entries []*PassbookTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}
