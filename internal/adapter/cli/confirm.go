package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newConfirmCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <batch-id>",
		Short: "Apply every matched transfer in a batch and mark it confirmed",
		Long: `Walks the batch's matched transfers in import row order, applying each as
its own atomic unit. A failing transfer stays matched and is reported; the
rest of the batch proceeds and the batch is still marked confirmed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batchID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid batch id: %w", err)
			}

			result, err := app.Confirmer.Confirm(cmd.Context(), batchID)
			if err != nil {
				return err
			}

			type failureView struct {
				TransferID string `json:"transferId"`
				Row        int    `json:"row"`
				Reason     string `json:"reason"`
			}
			view := struct {
				BatchID             string        `json:"batchId"`
				AppliedCount        int           `json:"appliedCount"`
				AlreadyAppliedCount int           `json:"alreadyAppliedCount"`
				SkippedCount        int           `json:"skippedCount"`
				MatchedCount        int           `json:"matchedCount"`
				UnmatchedCount      int           `json:"unmatchedCount"`
				ConfirmedAt         string        `json:"confirmedAt"`
				Failures            []failureView `json:"failures"`
			}{
				BatchID:             result.Batch.ID.String(),
				AppliedCount:        result.AppliedCount,
				AlreadyAppliedCount: result.AlreadyAppliedCount,
				SkippedCount:        result.SkippedCount,
				MatchedCount:        result.Batch.MatchedCount,
				UnmatchedCount:      result.Batch.UnmatchedCount,
				Failures:            []failureView{},
			}
			if result.Batch.ConfirmedAt != nil {
				view.ConfirmedAt = result.Batch.ConfirmedAt.Format("2006-01-02T15:04:05Z07:00")
			}
			for _, f := range result.Failures {
				view.Failures = append(view.Failures, failureView{
					TransferID: f.TransferID.String(),
					Row:        f.RowIndex,
					Reason:     f.Err.Error(),
				})
			}

			if jsonOutput {
				return printJSON(view)
			}
			fmt.Printf("batch %s confirmed: %d applied, %d already applied, %d skipped, %d failed\n",
				view.BatchID, view.AppliedCount, view.AlreadyAppliedCount, view.SkippedCount, len(view.Failures))
			for _, f := range view.Failures {
				fmt.Printf("  row %d (%s): %s\n", f.Row, f.TransferID, f.Reason)
			}
			return nil
		},
	}
}
