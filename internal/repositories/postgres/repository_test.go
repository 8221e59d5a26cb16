package postgres

import (
	"context"
	"testing"

	"election-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory database with the same gorm configuration the
// service uses, in particular TranslateError so unique-constraint rejections
// surface as gorm.ErrDuplicatedKey.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection, or each pooled connection gets its own :memory: db.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Election{},
		&models.Candidate{},
		&models.RosterEntry{},
		&models.Vote{},
	))
	return db
}

func createElection(t *testing.T, repo *ElectionRepository, ownerID uint) *models.Election {
	t.Helper()
	election := &models.Election{
		Title:     "Board Election",
		Status:    models.StatusUpcoming,
		CreatedBy: ownerID,
	}
	require.NoError(t, repo.Create(context.Background(), election))
	return election
}

func TestRosterRemoveThenReAdd(t *testing.T) {
	db := newTestDB(t)
	repo := NewElectionRepository(db)
	ctx := context.Background()

	election := createElection(t, repo, 1)

	require.NoError(t, repo.AddToRoster(ctx, election.ID, 100))
	require.NoError(t, repo.RemoveFromRoster(ctx, election.ID, 100))

	// Re-adding after removal must actually restore eligibility, not
	// silently collide with a leftover row under the unique index.
	require.NoError(t, repo.AddToRoster(ctx, election.ID, 100))

	loaded, err := repo.GetByID(ctx, election.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsEligible(100))
	assert.Len(t, loaded.Roster, 1)
}

func TestRosterDuplicateAddIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewElectionRepository(db)
	ctx := context.Background()

	election := createElection(t, repo, 1)

	require.NoError(t, repo.AddToRoster(ctx, election.ID, 100))
	require.NoError(t, repo.AddToRoster(ctx, election.ID, 100))

	loaded, err := repo.GetByID(ctx, election.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Roster, 1)
}

func TestVoteAppendDuplicatePair(t *testing.T) {
	db := newTestDB(t)
	votes := NewVoteRepository(db)
	ctx := context.Background()

	voteID, err := votes.Append(ctx, 1, 10, 100)
	require.NoError(t, err)
	assert.NotZero(t, voteID)

	_, err = votes.Append(ctx, 1, 11, 100)
	require.ErrorIs(t, err, models.ErrAlreadyVoted)

	count, err := votes.CountForCandidate(ctx, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestTallyIncrement(t *testing.T) {
	db := newTestDB(t)
	elections := NewElectionRepository(db)
	tallies := NewTallyRepository(db)
	ctx := context.Background()

	election := createElection(t, elections, 1)
	candidate := &models.Candidate{ElectionID: election.ID, Name: "Alice", Party: "Unity"}
	require.NoError(t, elections.AddCandidate(ctx, candidate))

	count, err := tallies.Increment(ctx, candidate.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = tallies.Increment(ctx, candidate.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestTallyIncrementMissingCandidate(t *testing.T) {
	db := newTestDB(t)
	tallies := NewTallyRepository(db)

	// A concurrently deleted candidate must surface as an error, never as
	// a successful zero count.
	_, err := tallies.Increment(context.Background(), 999)
	require.ErrorIs(t, err, models.ErrCandidateNotFound)
}

func TestCountForOwnerExcludesDeletedElections(t *testing.T) {
	db := newTestDB(t)
	elections := NewElectionRepository(db)
	votes := NewVoteRepository(db)
	ctx := context.Background()

	kept := createElection(t, elections, 1)
	removed := createElection(t, elections, 1)

	_, err := votes.Append(ctx, kept.ID, 10, 100)
	require.NoError(t, err)
	_, err = votes.Append(ctx, removed.ID, 20, 100)
	require.NoError(t, err)
	_, err = votes.Append(ctx, removed.ID, 20, 101)
	require.NoError(t, err)

	require.NoError(t, elections.Delete(ctx, removed.ID))

	count, err := votes.CountForOwner(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "votes of deleted elections must not count")
}
