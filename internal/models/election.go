package models

import (
	"time"

	"gorm.io/gorm"
)

// ElectionStatus is the lifecycle state of an election. Transitions are
// one-directional: upcoming -> active -> ended.
type ElectionStatus string

const (
	StatusUpcoming ElectionStatus = "upcoming"
	StatusActive   ElectionStatus = "active"
	StatusEnded    ElectionStatus = "ended"
)

// Valid reports whether s is one of the known lifecycle states.
func (s ElectionStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusActive, StatusEnded:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// No state may be skipped and no transition goes backwards.
func (s ElectionStatus) CanTransitionTo(next ElectionStatus) bool {
	switch s {
	case StatusUpcoming:
		return next == StatusActive
	case StatusActive:
		return next == StatusEnded
	}
	return false
}

type Election struct {
	gorm.Model
	Title       string         `gorm:"column:title;size:255;not null" json:"title"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	Status      ElectionStatus `gorm:"column:status;size:16;not null;default:upcoming;index" json:"status"`
	CreatedBy   uint           `gorm:"column:created_by;not null;index" json:"created_by"`
	Candidates  []Candidate    `gorm:"foreignKey:ElectionID" json:"candidates"`
	Roster      []RosterEntry  `gorm:"foreignKey:ElectionID" json:"roster,omitempty"`
}

// TableName specifies the table name for Election
func (Election) TableName() string {
	return "elections"
}

// RosterEntry marks a voter as eligible for an election. The roster may only
// be edited while the election is upcoming. Removal is a hard delete: a
// soft-deleted row would keep occupying the composite unique index and block
// re-adding the voter.
type RosterEntry struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	ElectionID uint      `gorm:"column:election_id;not null;uniqueIndex:idx_roster_election_voter" json:"election_id"`
	VoterID    uint      `gorm:"column:voter_id;not null;uniqueIndex:idx_roster_election_voter" json:"voter_id"`
}

// TableName specifies the table name for RosterEntry
func (RosterEntry) TableName() string {
	return "roster_entries"
}

// IsEligible reports whether voterID appears in the election's roster.
// Requires Roster to be preloaded.
func (e *Election) IsEligible(voterID uint) bool {
	for _, entry := range e.Roster {
		if entry.VoterID == voterID {
			return true
		}
	}
	return false
}

// CreateElectionRequest defines the input for creating an election
type CreateElectionRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	VoterIDs    []uint `json:"voter_ids"`
}

// UpdateElectionRequest defines the input for editing an upcoming election
type UpdateElectionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AddVoterRequest defines the input for adding a voter to the roster
type AddVoterRequest struct {
	VoterID uint `json:"voter_id" binding:"required"`
}
