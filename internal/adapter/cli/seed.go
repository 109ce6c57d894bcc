package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Provision demo guardians and invoices in a development database",
		Long: `Inserts a small fixed set of guardians and open invoices, enough to
exercise import, matching and confirmation end to end. Safe to run
repeatedly; existing rows are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Seeder.Seed(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("demo guardians and invoices seeded")
			return nil
		},
	}
}
