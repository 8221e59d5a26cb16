package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"election-service/internal/config"
	"election-service/internal/database"
	"election-service/internal/repositories/postgres"
	"election-service/internal/services"
)

// Recomputes the denormalized candidate counts from the vote ledger. Run
// after a partial failure or as a startup consistency check; the ledger is
// always the ground truth.
func main() {
	electionID := flag.Uint("election", 0, "reconcile a single election (default: all)")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}

	tallyService := services.NewTallyService(
		postgres.NewTallyRepository(db),
		postgres.NewElectionRepository(db),
	)

	ctx := context.Background()
	if *electionID != 0 {
		err = tallyService.Reconcile(ctx, *electionID)
	} else {
		err = tallyService.ReconcileAll(ctx)
	}
	if err != nil {
		slog.Error("Reconciliation failed", "error", err)
		os.Exit(1)
	}
}
