package services

import (
	"context"
	"log/slog"

	"election-service/internal/models"
	"election-service/internal/repositories/postgres"
)

// TallyService serves read queries over the denormalized counts and owns
// the reconciliation repair path. Access policy on results (for example
// hiding them from voters until the election ends) belongs to the caller.
type TallyService struct {
	tallies   *postgres.TallyRepository
	elections *postgres.ElectionRepository
}

func NewTallyService(tallies *postgres.TallyRepository, elections *postgres.ElectionRepository) *TallyService {
	return &TallyService{tallies: tallies, elections: elections}
}

// Results returns the election and its snapshot, sorted by count descending.
func (s *TallyService) Results(ctx context.Context, electionID uint) (*models.Election, []models.CandidateCount, error) {
	election, err := s.elections.GetByID(ctx, electionID)
	if err != nil {
		return nil, nil, err
	}
	snapshot, err := s.tallies.Snapshot(ctx, electionID)
	if err != nil {
		return nil, nil, err
	}
	return election, snapshot, nil
}

func (s *TallyService) TotalVotes(ctx context.Context, electionID uint) (uint, error) {
	return s.tallies.TotalVotes(ctx, electionID)
}

// Reconcile recomputes the counts of one election from the ledger.
func (s *TallyService) Reconcile(ctx context.Context, electionID uint) error {
	updated, err := s.tallies.Reconcile(ctx, electionID)
	if err != nil {
		return err
	}
	slog.Info("tally reconciled", "electionID", electionID, "candidates", updated)
	return nil
}

// ReconcileAll recomputes every candidate count from the ledger. Run at
// startup or after a partial failure.
func (s *TallyService) ReconcileAll(ctx context.Context) error {
	updated, err := s.tallies.ReconcileAll(ctx)
	if err != nil {
		return err
	}
	slog.Info("tallies reconciled", "candidates", updated)
	return nil
}
