package main

import (
	"context"
	"log/slog"
	"os"

	"election-service/internal/config"
	"election-service/internal/database"
	"election-service/internal/models"
	"election-service/internal/repositories/postgres"
	"election-service/internal/services"
)

// Seeds a demo election with two candidates and a small roster.
func main() {
	cfg := config.Load()

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}

	electionRepo := postgres.NewElectionRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	electionService := services.NewElectionService(electionRepo, voteRepo)

	ctx := context.Background()
	const adminID = 1

	election, err := electionService.Create(ctx, adminID, models.CreateElectionRequest{
		Title:       "Student Council President 2026",
		Description: "Annual student council presidential election",
		VoterIDs:    []uint{2, 3, 4, 5},
	})
	if err != nil {
		slog.Error("Failed to seed election", "error", err)
		os.Exit(1)
	}

	candidates := []struct{ name, party string }{
		{"Alice Johnson", "Progress Party"},
		{"Bob Martinez", "Unity Alliance"},
	}
	for _, c := range candidates {
		if _, err := electionService.AddCandidate(ctx, adminID, election.ID, c.name, c.party, ""); err != nil {
			slog.Error("Failed to seed candidate", "name", c.name, "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Seed complete", "electionID", election.ID)
}
