package postgres

import (
	"context"
	"errors"
	"fmt"

	"election-service/internal/models"

	"gorm.io/gorm"
)

// VoteRepository is the append-only vote ledger. The unique index on
// (election_id, voter_id) is the final authority for double-vote prevention:
// when concurrent casts race past the eligibility pre-check, the store
// accepts exactly one insert and every loser surfaces as ErrAlreadyVoted.
type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Append inserts one ledger row and returns its ID. A duplicate-key
// rejection is the expected outcome of a lost race, not a fault.
func (r *VoteRepository) Append(ctx context.Context, electionID, candidateID, voterID uint) (uint, error) {
	vote := &models.Vote{
		ElectionID:  electionID,
		CandidateID: candidateID,
		VoterID:     voterID,
	}
	if err := r.db.WithContext(ctx).Create(vote).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, models.ErrAlreadyVoted
		}
		return 0, fmt.Errorf("failed to append vote: %w", err)
	}
	return vote.ID, nil
}

// HasVoted is the advisory fast-path check used by the eligibility gate.
func (r *VoteRepository) HasVoted(ctx context.Context, electionID, voterID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("election_id = ? AND voter_id = ?", electionID, voterID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return count > 0, nil
}

// CountForCandidate returns the number of ledger rows for one candidate,
// the ground truth behind the denormalized tally.
func (r *VoteRepository) CountForCandidate(ctx context.Context, candidateID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("candidate_id = ?", candidateID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count votes for candidate %d: %w", candidateID, err)
	}
	return count, nil
}

// CountForOwner returns the total number of ledger rows across all
// elections created by adminID. Used by the admin stats endpoint; scoping
// the join by created_by keeps one administrator's totals invisible to
// another.
func (r *VoteRepository) CountForOwner(ctx context.Context, adminID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Joins("JOIN elections ON elections.id = votes.election_id").
		Where("elections.created_by = ? AND elections.deleted_at IS NULL", adminID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count votes for owner %d: %w", adminID, err)
	}
	return count, nil
}
