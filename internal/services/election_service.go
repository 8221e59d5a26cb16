package services

import (
	"context"
	"fmt"

	"election-service/internal/models"
	"election-service/internal/repositories/postgres"
)

// ElectionService owns the administrative side of an election's lifecycle:
// creation, edits while upcoming, roster and candidate management, and the
// explicit status transitions. Every mutation checks ownership first.
type ElectionService struct {
	elections *postgres.ElectionRepository
	votes     *postgres.VoteRepository
}

func NewElectionService(elections *postgres.ElectionRepository, votes *postgres.VoteRepository) *ElectionService {
	return &ElectionService{elections: elections, votes: votes}
}

func (s *ElectionService) Create(ctx context.Context, adminID uint, req models.CreateElectionRequest) (*models.Election, error) {
	election := &models.Election{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.StatusUpcoming,
		CreatedBy:   adminID,
	}
	for _, voterID := range req.VoterIDs {
		election.Roster = append(election.Roster, models.RosterEntry{VoterID: voterID})
	}
	if err := s.elections.Create(ctx, election); err != nil {
		return nil, err
	}
	return election, nil
}

// GetForIdentity loads one election, applying the visibility rules of the
// caller's role: owners see their own elections, voters see elections they
// are on the roster of or have already voted in.
func (s *ElectionService) GetForIdentity(ctx context.Context, id uint, identity models.Identity) (*models.Election, error) {
	election, err := s.elections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch identity.Role {
	case models.RoleAdmin:
		if election.CreatedBy != identity.UserID {
			return nil, models.ErrNotOwner
		}
	case models.RoleVoter:
		if !election.IsEligible(identity.UserID) {
			voted, err := s.votes.HasVoted(ctx, id, identity.UserID)
			if err != nil {
				return nil, err
			}
			if !voted {
				return nil, models.ErrNotEligible
			}
		}
		// Voters never see the roster.
		election.Roster = nil
	}
	return election, nil
}

// ListForIdentity returns the elections visible to the caller, newest first.
func (s *ElectionService) ListForIdentity(ctx context.Context, identity models.Identity) ([]models.Election, error) {
	switch identity.Role {
	case models.RoleAdmin:
		return s.elections.ListForOwner(ctx, identity.UserID)
	case models.RoleVoter:
		return s.elections.ListForVoter(ctx, identity.UserID)
	}
	return []models.Election{}, nil
}

func (s *ElectionService) Update(ctx context.Context, adminID, id uint, req models.UpdateElectionRequest) (*models.Election, error) {
	election, err := s.ownedEditable(ctx, adminID, id)
	if err != nil {
		return nil, err
	}
	if req.Title != "" {
		election.Title = req.Title
	}
	if req.Description != "" {
		election.Description = req.Description
	}
	if err := s.elections.Update(ctx, election); err != nil {
		return nil, err
	}
	return election, nil
}

func (s *ElectionService) Delete(ctx context.Context, adminID, id uint) error {
	election, err := s.elections.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if election.CreatedBy != adminID {
		return models.ErrNotOwner
	}
	return s.elections.Delete(ctx, id)
}

// Start transitions an election from upcoming to active.
func (s *ElectionService) Start(ctx context.Context, adminID, id uint) (*models.Election, error) {
	return s.transition(ctx, adminID, id, models.StatusUpcoming, models.StatusActive)
}

// End transitions an election from active to ended.
func (s *ElectionService) End(ctx context.Context, adminID, id uint) (*models.Election, error) {
	return s.transition(ctx, adminID, id, models.StatusActive, models.StatusEnded)
}

func (s *ElectionService) transition(ctx context.Context, adminID, id uint, from, to models.ElectionStatus) (*models.Election, error) {
	election, err := s.elections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if election.CreatedBy != adminID {
		return nil, models.ErrNotOwner
	}
	return s.elections.TransitionStatus(ctx, id, from, to)
}

func (s *ElectionService) AddVoter(ctx context.Context, adminID, electionID, voterID uint) error {
	if _, err := s.ownedEditable(ctx, adminID, electionID); err != nil {
		return err
	}
	return s.elections.AddToRoster(ctx, electionID, voterID)
}

func (s *ElectionService) RemoveVoter(ctx context.Context, adminID, electionID, voterID uint) error {
	if _, err := s.ownedEditable(ctx, adminID, electionID); err != nil {
		return err
	}
	return s.elections.RemoveFromRoster(ctx, electionID, voterID)
}

func (s *ElectionService) AddCandidate(ctx context.Context, adminID, electionID uint, name, party, photoURL string) (*models.Candidate, error) {
	if _, err := s.ownedEditable(ctx, adminID, electionID); err != nil {
		return nil, err
	}
	candidate := &models.Candidate{
		ElectionID: electionID,
		Name:       name,
		Party:      party,
		PhotoURL:   photoURL,
	}
	if err := s.elections.AddCandidate(ctx, candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}

func (s *ElectionService) RemoveCandidate(ctx context.Context, adminID, electionID, candidateID uint) error {
	if _, err := s.ownedEditable(ctx, adminID, electionID); err != nil {
		return err
	}
	candidate, err := s.elections.GetCandidate(ctx, candidateID)
	if err != nil {
		return err
	}
	if candidate.ElectionID != electionID {
		return models.ErrCandidateNotFound
	}
	return s.elections.DeleteCandidate(ctx, candidateID)
}

// ownedEditable loads an election and verifies it belongs to adminID and is
// still upcoming. Candidates and the roster are frozen once the election
// leaves that state.
func (s *ElectionService) ownedEditable(ctx context.Context, adminID, id uint) (*models.Election, error) {
	election, err := s.elections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if election.CreatedBy != adminID {
		return nil, models.ErrNotOwner
	}
	if election.Status != models.StatusUpcoming {
		return nil, models.ErrElectionNotEditable
	}
	return election, nil
}

// DashboardStats are the aggregate counts shown on an administrator's
// dashboard, scoped strictly to their own elections.
type DashboardStats struct {
	TotalElections  int64 `json:"total_elections"`
	ActiveElections int64 `json:"active_elections"`
	TotalVotes      int64 `json:"total_votes"`
}

func (s *ElectionService) Stats(ctx context.Context, adminID uint) (*DashboardStats, error) {
	total, active, err := s.elections.CountByOwner(ctx, adminID)
	if err != nil {
		return nil, err
	}
	votes, err := s.votes.CountForOwner(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vote stats: %w", err)
	}
	return &DashboardStats{
		TotalElections:  total,
		ActiveElections: active,
		TotalVotes:      votes,
	}, nil
}
