// Package cli wires the reconciliation services into the operator command
// tree. Each subcommand maps to one engine operation; the engine's returned
// state is printed as the authoritative result.
package cli

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/simaogato/schoolpay-backend/internal/domain"
	"github.com/simaogato/schoolpay-backend/internal/usecase/confirmer"
	"github.com/simaogato/schoolpay-backend/internal/usecase/importer"
	"github.com/simaogato/schoolpay-backend/internal/usecase/ledger"
	"github.com/simaogato/schoolpay-backend/internal/usecase/matcher"
	"github.com/simaogato/schoolpay-backend/internal/usecase/seeder"
	"github.com/simaogato/schoolpay-backend/internal/usecase/transfer"
)

// App bundles the services the commands call into.
type App struct {
	Log *logrus.Logger

	Importer  *importer.Service
	Matcher   *matcher.Service
	Transfers *transfer.Service
	Ledger    *ledger.Service
	Confirmer *confirmer.Service
	Seeder    *seeder.DemoSeeder

	TransferRepo domain.TransferRepository
	BatchRepo    domain.BatchRepository
	PassbookRepo domain.PassbookRepository
}

var jsonOutput bool

// NewRootCommand builds the recon command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "recon",
		Short: "Bank transfer reconciliation for guardian invoices",
		Long: `recon imports bank transfer batches, scores them against guardians and
invoices, applies matched transfers as payments and confirms batches.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(
		newImportCommand(app),
		newCreateCommand(app),
		newCandidatesCommand(app),
		newSearchCommand(app),
		newMatchCommand(app),
		newUnmatchCommand(app),
		newCancelCommand(app),
		newApplyCommand(app),
		newConfirmCommand(app),
		newPassbookCommand(app),
		newSeedCommand(app),
	)
	return root
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
