package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simaogato/schoolpay-backend/internal/adapter/csvimport"
)

func newImportCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a bank transfer CSV as a new batch",
		Long: `Parses the given CSV, scores every row against guardian and invoice
candidates and persists the batch. Rows scoring at or above the auto-match
threshold are bound to their top candidate; the rest stay pending for manual
review. Malformed rows are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			rows, parseErrs, err := csvimport.ParseFile(path)
			if err != nil {
				return err
			}

			result, err := app.Importer.Import(cmd.Context(), filepath.Base(path), rows)
			if err != nil {
				return err
			}

			app.Log.WithField("batch_id", result.Batch.ID).Info("Batch imported")

			type rowErrorView struct {
				Row   int    `json:"row"`
				Error string `json:"error"`
			}
			view := struct {
				BatchID        string         `json:"batchId"`
				FileName       string         `json:"fileName"`
				TotalCount     int            `json:"totalCount"`
				MatchedCount   int            `json:"matchedCount"`
				UnmatchedCount int            `json:"unmatchedCount"`
				RowErrors      []rowErrorView `json:"rowErrors"`
			}{
				BatchID:        result.Batch.ID.String(),
				FileName:       result.Batch.FileName,
				TotalCount:     result.Batch.TotalCount,
				MatchedCount:   result.Batch.MatchedCount,
				UnmatchedCount: result.Batch.UnmatchedCount,
				RowErrors:      []rowErrorView{},
			}
			for _, re := range parseErrs {
				view.RowErrors = append(view.RowErrors, rowErrorView{Row: re.Row, Error: re.Err.Error()})
			}
			for _, re := range result.RowErrors {
				view.RowErrors = append(view.RowErrors, rowErrorView{Row: re.Row, Error: re.Err.Error()})
			}

			if jsonOutput {
				return printJSON(view)
			}

			fmt.Printf("batch %s: %d transfers (%d matched, %d unmatched)\n",
				view.BatchID, view.TotalCount, view.MatchedCount, view.UnmatchedCount)
			for _, re := range view.RowErrors {
				fmt.Printf("  row %d rejected: %s\n", re.Row, re.Error)
			}
			return nil
		},
	}
}
