package services

import (
	"context"
	"log/slog"

	"election-service/internal/models"
)

// VoteService orchestrates a single cast-vote request: load election, gate,
// append to the ledger, bump the tally, fan out the update. The ledger
// append and tally increment are strict (any failure fails the request);
// the broadcast and event feed are best-effort and never undo a recorded
// vote.
type VoteService struct {
	elections ElectionStore
	ledger    VoteLedger
	tally     TallyCounter
	gate      *EligibilityGate
	publisher TallyPublisher
	events    VoteEventSink
}

func NewVoteService(
	elections ElectionStore,
	ledger VoteLedger,
	tally TallyCounter,
	publisher TallyPublisher,
	events VoteEventSink,
) *VoteService {
	return &VoteService{
		elections: elections,
		ledger:    ledger,
		tally:     tally,
		gate:      NewEligibilityGate(ledger),
		publisher: publisher,
		events:    events,
	}
}

// CastVote records one vote and returns the ledger row ID. No lock is held
// across the I/O steps; concurrent casts for the same (election, voter)
// pair are resolved by the ledger's unique constraint, and whichever write
// the store accepts first wins. Retrying an already-successful cast is safe
// and yields ErrAlreadyVoted.
func (s *VoteService) CastVote(ctx context.Context, voterID, electionID, candidateID uint) (uint, error) {
	election, err := s.elections.GetByID(ctx, electionID)
	if err != nil {
		return 0, err
	}

	if err := s.gate.Authorize(ctx, voterID, election); err != nil {
		return 0, err
	}

	if !candidateBelongsTo(election, candidateID) {
		return 0, models.ErrCandidateNotFound
	}

	voteID, err := s.ledger.Append(ctx, electionID, candidateID, voterID)
	if err != nil {
		return 0, err
	}

	newCount, err := s.tally.Increment(ctx, candidateID)
	if err != nil {
		// The vote is durably recorded; the count is repaired by
		// reconciliation, not by rolling back the ledger.
		slog.Error("tally increment failed after ledger append",
			"electionID", electionID, "candidateID", candidateID, "voteID", voteID, "error", err)
		return 0, err
	}

	update := models.TallyUpdate{
		ElectionID:  electionID,
		CandidateID: candidateID,
		VoteCount:   newCount,
	}

	// Best-effort from here on: a recorded vote is never undone because a
	// notification failed.
	s.publisher.Publish(update)

	if s.events != nil {
		if err := s.events.Emit(ctx, update); err != nil {
			slog.Error("vote event emit failed", "electionID", electionID, "voteID", voteID, "error", err)
		}
	}

	return voteID, nil
}

func candidateBelongsTo(election *models.Election, candidateID uint) bool {
	for _, c := range election.Candidates {
		if c.ID == candidateID {
			return true
		}
	}
	return false
}
