package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/simaogato/schoolpay-backend/internal/domain"
)

func newMatchCommand(app *App) *cobra.Command {
	var invoiceFlag string

	cmd := &cobra.Command{
		Use:   "match <transfer-id> <guardian-id>",
		Short: "Bind a guardian (and optionally an invoice) to a transfer",
		Long: `Binds the guardian to the transfer and moves it to MATCHED. Binding only:
no balance moves until apply. Re-matching an unapplied transfer overwrites the
previous binding.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			transferID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid transfer id: %w", err)
			}
			guardianID, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid guardian id: %w", err)
			}
			invoiceID, err := parseOptionalUUID(invoiceFlag)
			if err != nil {
				return fmt.Errorf("invalid invoice id: %w", err)
			}

			t, err := app.Transfers.Match(cmd.Context(), transferID, guardianID, invoiceID)
			if err != nil {
				return err
			}
			return printTransfer(t)
		},
	}
	cmd.Flags().StringVar(&invoiceFlag, "invoice", "", "invoice to bind (optional)")
	return cmd
}

func newUnmatchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unmatch <transfer-id>",
		Short: "Mark a transfer as unmatchable, clearing any tentative binding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transferID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid transfer id: %w", err)
			}
			t, err := app.Transfers.Unmatch(cmd.Context(), transferID)
			if err != nil {
				return err
			}
			return printTransfer(t)
		},
	}
}

func newCancelCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <transfer-id>",
		Short: "Administratively cancel a non-terminal transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transferID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid transfer id: %w", err)
			}
			t, err := app.Transfers.Cancel(cmd.Context(), transferID)
			if err != nil {
				return err
			}
			return printTransfer(t)
		},
	}
}

func newApplyCommand(app *App) *cobra.Command {
	var invoiceFlag string

	cmd := &cobra.Command{
		Use:   "apply <transfer-id>",
		Short: "Apply a matched transfer as a payment",
		Long: `Applies the transfer amount to its invoice, routing any excess to the
guardian's account as credit. Without an invoice the whole amount is posted as
an unassigned credit. Safe to retry: an already-applied transfer is a no-op
success.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transferID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid transfer id: %w", err)
			}
			invoiceID, err := parseOptionalUUID(invoiceFlag)
			if err != nil {
				return fmt.Errorf("invalid invoice id: %w", err)
			}

			result, err := app.Ledger.Apply(cmd.Context(), transferID, invoiceID)
			if err != nil {
				return err
			}

			view := struct {
				Transfer        transferView        `json:"transfer"`
				InvoicePortion  string              `json:"invoicePortion"`
				CreditPortion   string              `json:"creditPortion"`
				GuardianBalance string              `json:"guardianBalance"`
				AlreadyApplied  bool                `json:"alreadyApplied"`
				Entries         []passbookEntryView `json:"entries"`
			}{
				Transfer:        newTransferView(result.Transfer),
				InvoicePortion:  result.InvoicePortion.String(),
				CreditPortion:   result.CreditPortion.String(),
				GuardianBalance: result.GuardianBalance.String(),
				AlreadyApplied:  result.AlreadyApplied,
				Entries:         []passbookEntryView{},
			}
			for _, e := range result.Entries {
				view.Entries = append(view.Entries, newPassbookEntryView(e))
			}

			if jsonOutput {
				return printJSON(view)
			}
			if result.AlreadyApplied {
				fmt.Printf("transfer %s was already applied; nothing changed\n", transferID)
				return nil
			}
			fmt.Printf("applied transfer %s: %s to invoice, %s as credit, guardian balance %s\n",
				transferID, view.InvoicePortion, view.CreditPortion, view.GuardianBalance)
			return nil
		},
	}
	cmd.Flags().StringVar(&invoiceFlag, "invoice", "", "invoice to pay (overrides the matched invoice)")
	return cmd
}

func printTransfer(t *domain.Transfer) error {
	view := newTransferView(t)
	if jsonOutput {
		return printJSON(view)
	}
	fmt.Printf("transfer %s: %s (payer %q, amount %s)\n", view.ID, view.Status, view.PayerName, view.Amount)
	return nil
}

func parseOptionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
