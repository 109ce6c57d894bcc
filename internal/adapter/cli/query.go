package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/simaogato/schoolpay-backend/internal/domain"
)

func newCandidatesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <transfer-id>",
		Short: "Score guardian/invoice candidates for a transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transferID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid transfer id: %w", err)
			}

			t, err := app.TransferRepo.GetByID(cmd.Context(), transferID)
			if err != nil {
				return err
			}
			candidates, err := app.Matcher.FindCandidates(cmd.Context(), t)
			if err != nil {
				return err
			}
			return printCandidates(candidates)
		},
	}
}

func newSearchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search guardians by name for manual matching",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates, err := app.Matcher.SearchGuardians(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printCandidates(candidates)
		},
	}
}

func newPassbookCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "passbook <guardian-id>",
		Short: "Show a guardian's passbook and running balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			guardianID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid guardian id: %w", err)
			}

			entries, err := app.PassbookRepo.ListByGuardian(cmd.Context(), guardianID)
			if err != nil {
				return err
			}
			acct, err := app.PassbookRepo.GetBalance(cmd.Context(), guardianID)
			if err != nil {
				return err
			}

			view := struct {
				GuardianID string              `json:"guardianId"`
				Balance    string              `json:"balance"`
				Entries    []passbookEntryView `json:"entries"`
			}{
				GuardianID: guardianID.String(),
				Balance:    acct.Balance.String(),
				Entries:    []passbookEntryView{},
			}
			for _, e := range entries {
				view.Entries = append(view.Entries, newPassbookEntryView(e))
			}

			if jsonOutput {
				return printJSON(view)
			}
			fmt.Printf("guardian %s balance: %s\n", view.GuardianID, view.Balance)
			for _, e := range view.Entries {
				fmt.Printf("  %s %-15s %10s (balance %s)\n", e.CreatedAt, e.Type, e.Amount, e.BalanceAfter)
			}
			return nil
		},
	}
}

func printCandidates(candidates []*domain.MatchCandidate) error {
	views := make([]candidateView, 0, len(candidates))
	for _, c := range candidates {
		views = append(views, newCandidateView(c))
	}
	if jsonOutput {
		return printJSON(struct {
			Candidates []candidateView `json:"candidates"`
		}{Candidates: views})
	}
	if len(views) == 0 {
		fmt.Println("no candidates")
		return nil
	}
	for _, v := range views {
		fmt.Printf("%3d  %-10s %s (%s)  invoices: %d\n",
			v.MatchScore, v.MatchReason, v.GuardianName, v.GuardianNo, len(v.Invoices))
	}
	return nil
}
