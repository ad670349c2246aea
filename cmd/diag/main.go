package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"climdiag/adapters/excel"
	"climdiag/adapters/fieldstore"
	"climdiag/adapters/vault"
	"climdiag/app"
	"climdiag/internal/config"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	reader := fieldstore.NewReader(cfg.DataDir)
	v := vault.NewVault(cfg.WorkDir)
	service := app.NewDiagnosticService(cfg, reader, v)

	results, err := service.Run(context.Background())
	if err != nil {
		log.Fatalf("Diagnostic %s failed: %v", cfg.DiagnosticID, err)
	}

	log.Printf("Diagnostic %s: %d arrays, %d datasets, period %s",
		cfg.DiagnosticID, len(results.Diagnostics), len(results.Datasets), results.Periods.Label())

	if cfg.ExportFile != "" {
		writer := excel.NewWriter(cfg.ExportFile)
		if err := writer.Export(results); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		log.Printf("Exported results to %s", cfg.ExportFile)
	}
}
