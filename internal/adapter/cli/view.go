package cli

import (
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/schoolpay-backend/internal/domain"
)

// One canonical serialization schema with explicit optional fields; the engine
// never emits ambiguously-cased or duck-typed payloads.

type transferView struct {
	ID            string  `json:"id"`
	BatchID       *string `json:"batchId,omitempty"`
	RowIndex      int     `json:"rowIndex,omitempty"`
	TransferDate  string  `json:"transferDate"`
	Amount        string  `json:"amount"`
	PayerName     string  `json:"payerName"`
	PayerNameKana string  `json:"payerNameKana,omitempty"`
	BankName      string  `json:"sourceBankName,omitempty"`
	BranchName    string  `json:"sourceBranchName,omitempty"`
	GuardianNo    string  `json:"guardianNoHint,omitempty"`
	Status        string  `json:"status"`
	GuardianID    *string `json:"guardianId,omitempty"`
	InvoiceID     *string `json:"invoiceId,omitempty"`
}

func newTransferView(t *domain.Transfer) transferView {
	return transferView{
		ID:            t.ID.String(),
		BatchID:       uuidString(t.BatchID),
		RowIndex:      t.RowIndex,
		TransferDate:  t.TransferDate.Format("2006-01-02"),
		Amount:        t.Amount.String(),
		PayerName:     t.PayerName,
		PayerNameKana: t.PayerNameKana,
		BankName:      t.SourceBankName,
		BranchName:    t.SourceBranchName,
		GuardianNo:    t.GuardianNoHint,
		Status:        string(t.Status),
		GuardianID:    uuidString(t.GuardianID),
		InvoiceID:     uuidString(t.InvoiceID),
	}
}

type invoiceView struct {
	InvoiceID    string `json:"invoiceId"`
	InvoiceNo    string `json:"invoiceNo"`
	BillingLabel string `json:"billingLabel,omitempty"`
	TotalAmount  string `json:"totalAmount"`
	BalanceDue   string `json:"balanceDue"`
}

type candidateView struct {
	GuardianID       string        `json:"guardianId"`
	GuardianNo       string        `json:"guardianNo"`
	GuardianName     string        `json:"guardianName"`
	GuardianNameKana string        `json:"guardianNameKana,omitempty"`
	Invoices         []invoiceView `json:"invoices"`
	MatchScore       int           `json:"matchScore"`
	MatchReason      string        `json:"matchReason"`
}

func newCandidateView(c *domain.MatchCandidate) candidateView {
	invoices := make([]invoiceView, 0, len(c.Invoices))
	for _, ci := range c.Invoices {
		invoices = append(invoices, invoiceView{
			InvoiceID:    ci.Invoice.ID.String(),
			InvoiceNo:    ci.Invoice.InvoiceNo,
			BillingLabel: ci.Invoice.BillingLabel,
			TotalAmount:  ci.Invoice.TotalAmount.String(),
			BalanceDue:   ci.BalanceDue.String(),
		})
	}
	return candidateView{
		GuardianID:       c.Guardian.ID.String(),
		GuardianNo:       c.Guardian.GuardianNo,
		GuardianName:     c.Guardian.Name,
		GuardianNameKana: c.Guardian.NameKana,
		Invoices:         invoices,
		MatchScore:       c.MatchScore,
		MatchReason:      string(c.MatchReason),
	}
}

type passbookEntryView struct {
	ID           string  `json:"id"`
	Amount       string  `json:"amount"`
	BalanceAfter string  `json:"balanceAfter"`
	Type         string  `json:"type"`
	InvoiceID    *string `json:"invoiceId,omitempty"`
	TransferID   *string `json:"transferId,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}

func newPassbookEntryView(e *domain.PassbookTransaction) passbookEntryView {
	return passbookEntryView{
		ID:           e.ID.String(),
		Amount:       e.Amount.String(),
		BalanceAfter: e.BalanceAfter.String(),
		Type:         string(e.Type),
		InvoiceID:    uuidString(e.InvoiceID),
		TransferID:   uuidString(e.TransferID),
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
	}
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
