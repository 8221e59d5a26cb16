package services

import (
	"context"

	"election-service/internal/models"
)

// EligibilityGate decides whether a vote attempt may proceed. It is a
// fast-path check only: two concurrent requests can both pass it before
// either writes, so the ledger's unique constraint remains the final
// authority. The gate exists to fail the common cases cheaply and with a
// precise reason.
type EligibilityGate struct {
	ledger VoteLedger
}

func NewEligibilityGate(ledger VoteLedger) *EligibilityGate {
	return &EligibilityGate{ledger: ledger}
}

// Authorize returns nil when the voter may attempt a cast, or one of
// ErrAlreadyVoted, ErrNotEligible, ErrElectionNotActive. The election must
// have its roster preloaded.
//
// Checks run in that order deliberately: a voter with an existing ledger
// row always hears AlreadyVoted (even after removal from the roster or
// after the election ended), a voter with no standing hears NotEligible
// (never timing details), and only an eligible voter is told about the
// window. An empty roster means no new voters are eligible.
func (g *EligibilityGate) Authorize(ctx context.Context, voterID uint, election *models.Election) error {
	voted, err := g.ledger.HasVoted(ctx, election.ID, voterID)
	if err != nil {
		return err
	}
	if voted {
		return models.ErrAlreadyVoted
	}

	if !election.IsEligible(voterID) {
		return models.ErrNotEligible
	}

	if election.Status != models.StatusActive {
		return models.ErrElectionNotActive
	}
	return nil
}
