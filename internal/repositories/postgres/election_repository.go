package postgres

import (
	"context"
	"errors"
	"fmt"

	"election-service/internal/models"

	"gorm.io/gorm"
)

// ElectionRepository is the durable record store for elections, their
// candidate sets and their eligibility rosters.
type ElectionRepository struct {
	db *gorm.DB
}

func NewElectionRepository(db *gorm.DB) *ElectionRepository {
	return &ElectionRepository{db: db}
}

// GetByID loads an election with its candidates and roster.
func (r *ElectionRepository) GetByID(ctx context.Context, id uint) (*models.Election, error) {
	var election models.Election
	err := r.db.WithContext(ctx).
		Preload("Candidates").
		Preload("Roster").
		First(&election, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrElectionNotFound
		}
		return nil, fmt.Errorf("failed to load election %d: %w", id, err)
	}
	return &election, nil
}

func (r *ElectionRepository) Create(ctx context.Context, election *models.Election) error {
	if err := r.db.WithContext(ctx).Create(election).Error; err != nil {
		return fmt.Errorf("failed to create election: %w", err)
	}
	return nil
}

// Update persists title/description edits. Lifecycle gating is enforced by
// the service layer before calling this.
func (r *ElectionRepository) Update(ctx context.Context, election *models.Election) error {
	if err := r.db.WithContext(ctx).Save(election).Error; err != nil {
		return fmt.Errorf("failed to update election %d: %w", election.ID, err)
	}
	return nil
}

func (r *ElectionRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Election{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete election %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrElectionNotFound
	}
	return nil
}

// TransitionStatus moves an election from one lifecycle state to the next
// with an optimistic guard: the UPDATE only matches rows still in the
// expected previous state, so two administrators racing the same transition
// cannot both win.
func (r *ElectionRepository) TransitionStatus(ctx context.Context, id uint, from, to models.ElectionStatus) (*models.Election, error) {
	if !from.CanTransitionTo(to) {
		return nil, models.ErrInvalidTransition
	}

	res := r.db.WithContext(ctx).
		Model(&models.Election{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to transition election %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the election is gone or another transition got there first.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, models.ErrInvalidTransition
	}

	return r.GetByID(ctx, id)
}

// ListForOwner returns the elections created by adminID, newest first.
func (r *ElectionRepository) ListForOwner(ctx context.Context, adminID uint) ([]models.Election, error) {
	var elections []models.Election
	err := r.db.WithContext(ctx).
		Preload("Candidates").
		Where("created_by = ?", adminID).
		Order("created_at DESC").
		Find(&elections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list elections for owner %d: %w", adminID, err)
	}
	return elections, nil
}

// ListForVoter returns the elections a voter may see: those whose roster
// includes the voter plus those the voter already has a ledger row for. A
// voter removed from a roster after voting keeps visibility into that
// election through the vote join.
func (r *ElectionRepository) ListForVoter(ctx context.Context, voterID uint) ([]models.Election, error) {
	var elections []models.Election
	err := r.db.WithContext(ctx).
		Preload("Candidates").
		Distinct("elections.*").
		Joins("LEFT JOIN roster_entries re ON re.election_id = elections.id AND re.voter_id = ?", voterID).
		Joins("LEFT JOIN votes v ON v.election_id = elections.id AND v.voter_id = ?", voterID).
		Where("re.id IS NOT NULL OR v.id IS NOT NULL").
		Order("elections.created_at DESC").
		Find(&elections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list elections for voter %d: %w", voterID, err)
	}
	return elections, nil
}

// AddToRoster marks a voter as eligible. Duplicate entries are rejected by
// the composite unique index.
func (r *ElectionRepository) AddToRoster(ctx context.Context, electionID, voterID uint) error {
	entry := &models.RosterEntry{ElectionID: electionID, VoterID: voterID}
	err := r.db.WithContext(ctx).Create(entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Already on the roster, nothing to do.
			return nil
		}
		return fmt.Errorf("failed to add voter %d to roster of election %d: %w", voterID, electionID, err)
	}
	return nil
}

func (r *ElectionRepository) RemoveFromRoster(ctx context.Context, electionID, voterID uint) error {
	res := r.db.WithContext(ctx).
		Where("election_id = ? AND voter_id = ?", electionID, voterID).
		Delete(&models.RosterEntry{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove voter %d from roster of election %d: %w", voterID, electionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrVoterNotOnRoster
	}
	return nil
}

func (r *ElectionRepository) AddCandidate(ctx context.Context, candidate *models.Candidate) error {
	if err := r.db.WithContext(ctx).Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to add candidate to election %d: %w", candidate.ElectionID, err)
	}
	return nil
}

func (r *ElectionRepository) GetCandidate(ctx context.Context, id uint) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.db.WithContext(ctx).First(&candidate, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to load candidate %d: %w", id, err)
	}
	return &candidate, nil
}

func (r *ElectionRepository) DeleteCandidate(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Candidate{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete candidate %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrCandidateNotFound
	}
	return nil
}

// CountByOwner returns total and active election counts for one
// administrator only.
func (r *ElectionRepository) CountByOwner(ctx context.Context, adminID uint) (total, active int64, err error) {
	base := r.db.WithContext(ctx).Model(&models.Election{}).Where("created_by = ?", adminID)
	if err = base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count elections for owner %d: %w", adminID, err)
	}
	if err = base.Session(&gorm.Session{}).Where("status = ?", models.StatusActive).Count(&active).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count active elections for owner %d: %w", adminID, err)
	}
	return total, active, nil
}
