package main

import (
	"os"

	"github.com/simaogato/schoolpay-backend/internal/adapter/cli"
	"github.com/simaogato/schoolpay-backend/internal/adapter/csvimport"
	"github.com/simaogato/schoolpay-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/schoolpay-backend/internal/config"
	"github.com/simaogato/schoolpay-backend/internal/usecase/confirmer"
	"github.com/simaogato/schoolpay-backend/internal/usecase/importer"
	"github.com/simaogato/schoolpay-backend/internal/usecase/ledger"
	"github.com/simaogato/schoolpay-backend/internal/usecase/matcher"
	"github.com/simaogato/schoolpay-backend/internal/usecase/seeder"
	"github.com/simaogato/schoolpay-backend/internal/usecase/transfer"
)

func main() {
	// 1. Configuration and logging
	cfg := config.Load()
	log := cfg.NewLogger()
	csvimport.SetLogger(log)

	// 2. Database
	db, err := postgres.NewDB(cfg.DBConnStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 3. Repositories (Postgres)
	batchRepo := postgres.NewBatchRepository(db)
	transferRepo := postgres.NewTransferRepository(db)
	guardianRepo := postgres.NewGuardianRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)
	passbookRepo := postgres.NewPassbookRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)

	// 4. Services (Use Cases)
	matcherService := matcher.NewService(guardianRepo, invoiceRepo)
	transferService := transfer.NewService(transferRepo, guardianRepo, invoiceRepo)
	ledgerService := ledger.NewService(transferRepo, ledgerRepo, passbookRepo)
	importerService := importer.NewService(batchRepo, transferRepo, matcherService)
	confirmerService := confirmer.NewService(batchRepo, transferRepo, ledgerService)
	demoSeeder := seeder.NewDemoSeeder(postgres.NewSeedRepository(db))

	// 5. Command tree
	app := &cli.App{
		Log:          log,
		Importer:     importerService,
		Matcher:      matcherService,
		Transfers:    transferService,
		Ledger:       ledgerService,
		Confirmer:    confirmerService,
		Seeder:       demoSeeder,
		TransferRepo: transferRepo,
		BatchRepo:    batchRepo,
		PassbookRepo: passbookRepo,
	}

	if err := cli.NewRootCommand(app).Execute(); err != nil {
		os.Exit(1)
	}
}
