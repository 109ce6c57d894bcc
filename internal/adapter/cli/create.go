package cli

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simaogato/schoolpay-backend/internal/usecase/transfer"
)

func newCreateCommand(app *App) *cobra.Command {
	var (
		dateFlag   string
		kanaFlag   string
		bankFlag   string
		branchFlag string
		hintFlag   string
	)

	cmd := &cobra.Command{
		Use:   "create <amount> <payer-name>",
		Short: "Record a transfer manually, outside any batch",
		Long: `Records a single transfer in PENDING state, for payments that arrived
outside the regular CSV uploads (counter deposits, corrections). The payer
name may be empty when a guardian number is given with --guardian-no.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount: %w", err)
			}

			date := time.Now()
			if dateFlag != "" {
				date, err = time.Parse("2006-01-02", dateFlag)
				if err != nil {
					return fmt.Errorf("invalid date: %w", err)
				}
			}

			t, err := app.Transfers.CreateManual(cmd.Context(), transfer.ManualTransferInput{
				TransferDate:     date,
				Amount:           amount,
				PayerName:        args[1],
				PayerNameKana:    kanaFlag,
				SourceBankName:   bankFlag,
				SourceBranchName: branchFlag,
				GuardianNoHint:   hintFlag,
			})
			if err != nil {
				return err
			}
			return printTransfer(t)
		},
	}
	cmd.Flags().StringVar(&dateFlag, "date", "", "transfer date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&kanaFlag, "kana", "", "payer name kana reading")
	cmd.Flags().StringVar(&bankFlag, "bank", "", "source bank name")
	cmd.Flags().StringVar(&branchFlag, "branch", "", "source branch name")
	cmd.Flags().StringVar(&hintFlag, "guardian-no", "", "guardian number noted by the payer")
	return cmd
}
