package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"election-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type votePair struct {
	electionID uint
	voterID    uint
}

// fakeLedger reproduces the storage contract the real ledger gets from its
// unique index: concurrent appends for the same pair admit exactly one.
type fakeLedger struct {
	mu     sync.Mutex
	nextID uint
	rows   map[votePair]uint
	byCand map[uint]int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rows: make(map[votePair]uint), byCand: make(map[uint]int)}
}

func (l *fakeLedger) Append(_ context.Context, electionID, candidateID, voterID uint) (uint, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pair := votePair{electionID, voterID}
	if _, exists := l.rows[pair]; exists {
		return 0, models.ErrAlreadyVoted
	}
	l.nextID++
	l.rows[pair] = l.nextID
	l.byCand[candidateID]++
	return l.nextID, nil
}

func (l *fakeLedger) HasVoted(_ context.Context, electionID, voterID uint) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, exists := l.rows[votePair{electionID, voterID}]
	return exists, nil
}

func (l *fakeLedger) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}

func (l *fakeLedger) countFor(candidateID uint) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.byCand[candidateID]
}

type fakeElectionStore struct {
	mu        sync.Mutex
	elections map[uint]*models.Election
}

func newFakeElectionStore(elections ...*models.Election) *fakeElectionStore {
	s := &fakeElectionStore{elections: make(map[uint]*models.Election)}
	for _, e := range elections {
		s.elections[e.ID] = e
	}
	return s
}

func (s *fakeElectionStore) GetByID(_ context.Context, id uint) (*models.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	election, ok := s.elections[id]
	if !ok {
		return nil, models.ErrElectionNotFound
	}
	copied := *election
	return &copied, nil
}

func (s *fakeElectionStore) setStatus(id uint, status models.ElectionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[id].Status = status
}

func (s *fakeElectionStore) setRoster(id uint, voterIDs ...uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roster := make([]models.RosterEntry, 0, len(voterIDs))
	for _, v := range voterIDs {
		roster = append(roster, models.RosterEntry{ElectionID: id, VoterID: v})
	}
	s.elections[id].Roster = roster
}

type fakeTally struct {
	mu     sync.Mutex
	counts map[uint]uint
	fail   bool
}

func newFakeTally() *fakeTally {
	return &fakeTally{counts: make(map[uint]uint)}
}

func (t *fakeTally) Increment(_ context.Context, candidateID uint) (uint, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fail {
		return 0, errors.New("store unavailable")
	}
	t.counts[candidateID]++
	return t.counts[candidateID], nil
}

func (t *fakeTally) total() uint {
	t.mu.Lock()
	defer t.mu.Unlock()
	var sum uint
	for _, c := range t.counts {
		sum += c
	}
	return sum
}

type fakePublisher struct {
	mu      sync.Mutex
	updates []models.TallyUpdate
}

func (p *fakePublisher) Publish(update models.TallyUpdate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, update)
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.updates)
}

type fakeEventSink struct {
	mu   sync.Mutex
	fail bool
	seen int
}

func (s *fakeEventSink) Emit(_ context.Context, _ models.TallyUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen++
	if s.fail {
		return errors.New("broker unreachable")
	}
	return nil
}

func activeElection(id uint, candidateIDs []uint, voterIDs ...uint) *models.Election {
	election := &models.Election{Status: models.StatusActive}
	election.ID = id
	for _, cid := range candidateIDs {
		candidate := models.Candidate{ElectionID: id}
		candidate.ID = cid
		election.Candidates = append(election.Candidates, candidate)
	}
	for _, vid := range voterIDs {
		election.Roster = append(election.Roster, models.RosterEntry{ElectionID: id, VoterID: vid})
	}
	return election
}

type voteFixture struct {
	store     *fakeElectionStore
	ledger    *fakeLedger
	tally     *fakeTally
	publisher *fakePublisher
	events    *fakeEventSink
	service   *VoteService
}

func newVoteFixture(elections ...*models.Election) *voteFixture {
	f := &voteFixture{
		store:     newFakeElectionStore(elections...),
		ledger:    newFakeLedger(),
		tally:     newFakeTally(),
		publisher: &fakePublisher{},
		events:    &fakeEventSink{},
	}
	f.service = NewVoteService(f.store, f.ledger, f.tally, f.publisher, f.events)
	return f
}

func TestCastVoteSuccess(t *testing.T) {
	f := newVoteFixture(activeElection(1, []uint{10, 11}, 100))

	voteID, err := f.service.CastVote(context.Background(), 100, 1, 10)
	require.NoError(t, err)
	assert.NotZero(t, voteID)
	assert.Equal(t, 1, f.ledger.size())
	assert.Equal(t, uint(1), f.tally.total())
	assert.Equal(t, 1, f.publisher.count())
}

func TestCastVoteConcurrentSamePair(t *testing.T) {
	// N concurrent casts for one (election, voter) pair across both
	// candidates: exactly one may win, regardless of interleaving.
	const attempts = 64
	f := newVoteFixture(activeElection(1, []uint{10, 11}, 100))

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			candidateID := uint(10 + i%2)
			_, errs[i] = f.service.CastVote(context.Background(), 100, 1, candidateID)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			require.ErrorIs(t, err, models.ErrAlreadyVoted)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, f.ledger.size())
	assert.Equal(t, uint(1), f.tally.total(), "tally must grow by exactly one across all candidates")
	assert.Equal(t, 1, f.publisher.count())
}

func TestCastVoteConcurrentDistinctVoters(t *testing.T) {
	const voters = 50
	f := newVoteFixture(activeElection(1, []uint{10}, rosterIDs(voters)...))

	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(voterID uint) {
			defer wg.Done()
			_, err := f.service.CastVote(context.Background(), voterID, 1, 10)
			assert.NoError(t, err)
		}(uint(1000 + i))
	}
	wg.Wait()

	assert.Equal(t, voters, f.ledger.size())
	assert.Equal(t, uint(voters), f.tally.total())
	assert.Equal(t, voters, f.ledger.countFor(10), "tally must equal ledger rows per candidate")
}

func rosterIDs(n int) []uint {
	ids := make([]uint, n)
	for i := range ids {
		ids[i] = uint(1000 + i)
	}
	return ids
}

func TestCastVoteLifecycleGating(t *testing.T) {
	for _, status := range []models.ElectionStatus{models.StatusUpcoming, models.StatusEnded} {
		t.Run(string(status), func(t *testing.T) {
			election := activeElection(1, []uint{10}, 100)
			election.Status = status
			f := newVoteFixture(election)

			_, err := f.service.CastVote(context.Background(), 100, 1, 10)
			require.ErrorIs(t, err, models.ErrElectionNotActive)
			assert.Zero(t, f.ledger.size(), "gated cast must never create a ledger row")
			assert.Zero(t, f.tally.total())
			assert.Zero(t, f.publisher.count())
		})
	}
}

func TestCastVoteEligibilityEnforcement(t *testing.T) {
	f := newVoteFixture(activeElection(1, []uint{10}, 100))

	// Voter 200 is not on the roster and has never voted.
	_, err := f.service.CastVote(context.Background(), 200, 1, 10)
	require.ErrorIs(t, err, models.ErrNotEligible)
	assert.Zero(t, f.ledger.size())

	// Once added, the same voter succeeds exactly once.
	f.store.setRoster(1, 100, 200)
	_, err = f.service.CastVote(context.Background(), 200, 1, 10)
	require.NoError(t, err)
	_, err = f.service.CastVote(context.Background(), 200, 1, 10)
	require.ErrorIs(t, err, models.ErrAlreadyVoted)
	assert.Equal(t, 1, f.ledger.size())
}

func TestCastVoteIdempotentRetry(t *testing.T) {
	f := newVoteFixture(activeElection(1, []uint{10, 11}, 100))

	_, err := f.service.CastVote(context.Background(), 100, 1, 10)
	require.NoError(t, err)

	_, err = f.service.CastVote(context.Background(), 100, 1, 10)
	require.ErrorIs(t, err, models.ErrAlreadyVoted)

	assert.Equal(t, 1, f.ledger.size())
	assert.Equal(t, uint(1), f.tally.total())
	assert.Equal(t, 1, f.publisher.count())
}

func TestCastVoteVoterRemovedFromRosterAfterVoting(t *testing.T) {
	f := newVoteFixture(activeElection(1, []uint{10}, 100))

	_, err := f.service.CastVote(context.Background(), 100, 1, 10)
	require.NoError(t, err)

	// Removal from the roster must not change the retry outcome from
	// AlreadyVoted to NotEligible.
	f.store.setRoster(1)
	_, err = f.service.CastVote(context.Background(), 100, 1, 10)
	require.ErrorIs(t, err, models.ErrAlreadyVoted)
}

func TestCastVoteUnknownElection(t *testing.T) {
	f := newVoteFixture()

	_, err := f.service.CastVote(context.Background(), 100, 42, 10)
	require.ErrorIs(t, err, models.ErrElectionNotFound)
}

func TestCastVoteUnknownCandidate(t *testing.T) {
	f := newVoteFixture(activeElection(1, []uint{10}, 100))

	_, err := f.service.CastVote(context.Background(), 100, 1, 99)
	require.ErrorIs(t, err, models.ErrCandidateNotFound)
	assert.Zero(t, f.ledger.size(), "a vote for a foreign candidate must not reach the ledger")
}

func TestCastVoteEventSinkFailureIsNonFatal(t *testing.T) {
	f := newVoteFixture(activeElection(1, []uint{10}, 100))
	f.events.fail = true

	voteID, err := f.service.CastVote(context.Background(), 100, 1, 10)
	require.NoError(t, err, "a recorded vote is never failed by a notification error")
	assert.NotZero(t, voteID)
	assert.Equal(t, 1, f.ledger.size())
}

func TestCastVoteTallyFailureAfterAppend(t *testing.T) {
	f := newVoteFixture(activeElection(1, []uint{10}, 100))
	f.tally.fail = true

	_, err := f.service.CastVote(context.Background(), 100, 1, 10)
	require.Error(t, err)

	// The ledger row stands; reconciliation repairs the count, and the
	// caller's retry reports the vote as already recorded.
	assert.Equal(t, 1, f.ledger.size())
	assert.Zero(t, f.publisher.count(), "no publish without a confirmed increment")
	_, err = f.service.CastVote(context.Background(), 100, 1, 10)
	require.ErrorIs(t, err, models.ErrAlreadyVoted)
}

func TestCastVoteScenario(t *testing.T) {
	// Election with candidates A and B, voter V on the roster.
	election := activeElection(1, []uint{10, 11}, 100)
	election.Status = models.StatusUpcoming
	f := newVoteFixture(election)

	ctx := context.Background()

	_, err := f.service.CastVote(ctx, 100, 1, 10)
	require.ErrorIs(t, err, models.ErrElectionNotActive, "no votes before the election starts")

	f.store.setStatus(1, models.StatusActive)

	voteID, err := f.service.CastVote(ctx, 100, 1, 10)
	require.NoError(t, err)
	assert.NotZero(t, voteID)
	assert.Equal(t, 1, f.ledger.countFor(10))
	assert.Equal(t, 0, f.ledger.countFor(11))

	// A second cast, now for B, is rejected and changes nothing.
	_, err = f.service.CastVote(ctx, 100, 1, 11)
	require.ErrorIs(t, err, models.ErrAlreadyVoted)
	assert.Equal(t, 1, f.ledger.countFor(10))
	assert.Equal(t, 0, f.ledger.countFor(11))

	f.store.setStatus(1, models.StatusEnded)

	// W was never on the roster and never voted: the answer is about
	// standing, not timing.
	_, err = f.service.CastVote(ctx, 200, 1, 11)
	require.ErrorIs(t, err, models.ErrNotEligible)
	assert.Equal(t, 1, f.ledger.size())
}
