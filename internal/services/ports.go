package services

import (
	"context"

	"election-service/internal/models"
)

// ElectionStore is the slice of the election record store the vote path
// depends on.
type ElectionStore interface {
	GetByID(ctx context.Context, id uint) (*models.Election, error)
}

// VoteLedger is the append-only record of accepted votes. Append must be
// guarded by a storage-level unique constraint on (electionID, voterID) and
// report a lost race as models.ErrAlreadyVoted.
type VoteLedger interface {
	Append(ctx context.Context, electionID, candidateID, voterID uint) (uint, error)
	HasVoted(ctx context.Context, electionID, voterID uint) (bool, error)
}

// TallyCounter increments a candidate's denormalized count atomically and
// returns the new value.
type TallyCounter interface {
	Increment(ctx context.Context, candidateID uint) (uint, error)
}

// TallyPublisher delivers tally updates to live observers of an election.
// Delivery is best-effort; implementations never block the caller on a slow
// observer.
type TallyPublisher interface {
	Publish(update models.TallyUpdate)
}

// VoteEventSink receives a record of every accepted vote for downstream
// consumers (audit, analytics). Best-effort, like the publisher.
type VoteEventSink interface {
	Emit(ctx context.Context, update models.TallyUpdate) error
}
