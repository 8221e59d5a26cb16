package postgres

import (
	"context"
	"fmt"

	"election-service/internal/models"

	"gorm.io/gorm"
)

// TallyRepository maintains the denormalized per-candidate vote counts.
type TallyRepository struct {
	db *gorm.DB
}

func NewTallyRepository(db *gorm.DB) *TallyRepository {
	return &TallyRepository{db: db}
}

// Increment bumps a candidate's count with a single atomic UPDATE and
// returns the new value. Never read-modify-write: concurrent increments for
// the same candidate must compose without lost updates.
func (r *TallyRepository) Increment(ctx context.Context, candidateID uint) (uint, error) {
	var count uint
	res := r.db.WithContext(ctx).
		Raw("UPDATE candidates SET vote_count = vote_count + 1 WHERE id = ? AND deleted_at IS NULL RETURNING vote_count", candidateID).
		Scan(&count)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to increment tally for candidate %d: %w", candidateID, res.Error)
	}
	if res.RowsAffected == 0 {
		// Candidate deleted concurrently; never report a zero count as real.
		return 0, models.ErrCandidateNotFound
	}
	return count, nil
}

// Snapshot returns the candidates of an election with their counts, ordered
// by count descending with ties broken by creation order.
func (r *TallyRepository) Snapshot(ctx context.Context, electionID uint) ([]models.CandidateCount, error) {
	var candidates []models.Candidate
	err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("vote_count DESC, id ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot tally for election %d: %w", electionID, err)
	}

	snapshot := make([]models.CandidateCount, 0, len(candidates))
	for _, c := range candidates {
		snapshot = append(snapshot, models.CandidateCount{Candidate: c, Count: c.VoteCount})
	}
	return snapshot, nil
}

// TotalVotes returns the sum of all candidate counts for an election.
func (r *TallyRepository) TotalVotes(ctx context.Context, electionID uint) (uint, error) {
	var total uint
	err := r.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("election_id = ?", electionID).
		Select("COALESCE(SUM(vote_count), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to total votes for election %d: %w", electionID, err)
	}
	return total, nil
}

// Reconcile recomputes every candidate count of an election from the vote
// ledger. The counts are a derived cache; after a partial failure (a ledger
// append whose increment never landed) this restores the invariant
// count == ledger rows. Safe to run at startup or any quiescent point.
func (r *TallyRepository) Reconcile(ctx context.Context, electionID uint) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE candidates
		SET vote_count = (
			SELECT COUNT(*) FROM votes
			WHERE votes.candidate_id = candidates.id AND votes.deleted_at IS NULL
		)
		WHERE candidates.election_id = ? AND candidates.deleted_at IS NULL`, electionID)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to reconcile tally for election %d: %w", electionID, res.Error)
	}
	return res.RowsAffected, nil
}

// ReconcileAll runs Reconcile across every election.
func (r *TallyRepository) ReconcileAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE candidates
		SET vote_count = (
			SELECT COUNT(*) FROM votes
			WHERE votes.candidate_id = candidates.id AND votes.deleted_at IS NULL
		)
		WHERE candidates.deleted_at IS NULL`)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to reconcile tallies: %w", res.Error)
	}
	return res.RowsAffected, nil
}
