package models

import (
	"gorm.io/gorm"
)

// Vote is one row of the append-only ledger. The composite unique index on
// (election_id, voter_id) is the sole correctness authority for "already
// voted": concurrent casts for the same pair race on it and the store accepts
// exactly one. Rows are never updated or deleted by the service.
type Vote struct {
	gorm.Model
	ElectionID  uint `gorm:"column:election_id;not null;uniqueIndex:idx_votes_election_voter" json:"election_id"`
	CandidateID uint `gorm:"column:candidate_id;not null;index" json:"candidate_id"`
	VoterID     uint `gorm:"column:voter_id;not null;uniqueIndex:idx_votes_election_voter" json:"voter_id"`
}

// TableName specifies the table name for Vote
func (Vote) TableName() string {
	return "votes"
}

// CastVoteRequest defines the input for casting a vote
type CastVoteRequest struct {
	CandidateID uint `json:"candidate_id" binding:"required"`
}

// TallyUpdate is the event delivered to live-result subscribers and to the
// vote event feed after a successful cast.
type TallyUpdate struct {
	ElectionID  uint `json:"election_id"`
	CandidateID uint `json:"candidate_id"`
	VoteCount   uint `json:"vote_count"`
}

// CandidateCount is one row of a results snapshot, ordered by count
// descending with ties broken by candidate creation order.
type CandidateCount struct {
	Candidate Candidate `json:"candidate"`
	Count     uint      `json:"count"`
}
