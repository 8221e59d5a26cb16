package models

import "errors"

var (
	ErrElectionNotFound    = errors.New("election not found")
	ErrCandidateNotFound   = errors.New("candidate not found")
	ErrVoterNotOnRoster    = errors.New("voter not on roster")
	ErrNotEligible         = errors.New("not eligible to vote in this election")
	ErrElectionNotActive   = errors.New("election is not active")
	ErrAlreadyVoted        = errors.New("already voted in this election")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrElectionNotEditable = errors.New("election can no longer be edited")
	ErrNotOwner            = errors.New("not the owner of this election")
)
