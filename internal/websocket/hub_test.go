package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"election-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID uint) *Client {
	return &Client{
		id:     "test-client",
		userID: userID,
		send:   make(chan []byte, 16),
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil)
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func receiveUpdate(t *testing.T, client *Client) models.TallyUpdate {
	t.Helper()
	select {
	case payload := <-client.send:
		var update models.TallyUpdate
		require.NoError(t, json.Unmarshal(payload, &update))
		return update
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tally update")
		return models.TallyUpdate{}
	}
}

func assertNoUpdate(t *testing.T, client *Client) {
	t.Helper()
	select {
	case payload := <-client.send:
		t.Fatalf("unexpected delivery: %s", payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubRoomScoping(t *testing.T) {
	hub := startHub(t)

	observerA := newTestClient(1)
	observerB := newTestClient(2)
	hub.register <- observerA
	hub.register <- observerB
	hub.join <- subscription{client: observerA, electionID: 1}
	hub.join <- subscription{client: observerB, electionID: 2}

	hub.Publish(models.TallyUpdate{ElectionID: 1, CandidateID: 10, VoteCount: 5})

	update := receiveUpdate(t, observerA)
	assert.Equal(t, uint(1), update.ElectionID)
	assert.Equal(t, uint(10), update.CandidateID)
	assert.Equal(t, uint(5), update.VoteCount)

	// An observer of election 2 never sees election 1 updates.
	assertNoUpdate(t, observerB)
}

func TestHubPerElectionOrdering(t *testing.T) {
	hub := startHub(t)

	observer := newTestClient(1)
	hub.register <- observer
	hub.join <- subscription{client: observer, electionID: 1}

	const publishes = 10
	for i := 1; i <= publishes; i++ {
		hub.Publish(models.TallyUpdate{ElectionID: 1, CandidateID: 10, VoteCount: uint(i)})
	}

	for i := 1; i <= publishes; i++ {
		update := receiveUpdate(t, observer)
		assert.Equal(t, uint(i), update.VoteCount, "updates must arrive in publish order")
	}
}

func TestHubLeaveStopsDelivery(t *testing.T) {
	hub := startHub(t)

	observer := newTestClient(1)
	hub.register <- observer
	hub.join <- subscription{client: observer, electionID: 1}

	hub.Publish(models.TallyUpdate{ElectionID: 1, CandidateID: 10, VoteCount: 1})
	receiveUpdate(t, observer)

	hub.leave <- subscription{client: observer, electionID: 1}
	hub.Publish(models.TallyUpdate{ElectionID: 1, CandidateID: 10, VoteCount: 2})
	assertNoUpdate(t, observer)
}

func TestHubMultipleObserversSameRoom(t *testing.T) {
	hub := startHub(t)

	observers := []*Client{newTestClient(1), newTestClient(2), newTestClient(3)}
	for _, o := range observers {
		hub.register <- o
		hub.join <- subscription{client: o, electionID: 7}
	}
	// A channel send returns before the hub processes it; wait for the
	// room to settle instead of asserting immediately.
	require.Eventually(t, func() bool {
		return hub.RoomSize(7) == 3
	}, 2*time.Second, 10*time.Millisecond)

	hub.Publish(models.TallyUpdate{ElectionID: 7, CandidateID: 10, VoteCount: 1})
	for _, o := range observers {
		update := receiveUpdate(t, o)
		assert.Equal(t, uint(7), update.ElectionID)
	}
}

func TestHubUnregisterCleansRooms(t *testing.T) {
	hub := startHub(t)

	observer := newTestClient(1)
	hub.register <- observer
	hub.join <- subscription{client: observer, electionID: 1}
	hub.join <- subscription{client: observer, electionID: 2}

	hub.unregister <- observer

	// Force a synchronization point so the unregister is processed.
	hub.Publish(models.TallyUpdate{ElectionID: 1, CandidateID: 10, VoteCount: 1})
	require.Eventually(t, func() bool {
		return hub.RoomSize(1) == 0 && hub.RoomSize(2) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubSlowObserverIsDroppedNotWaitedOn(t *testing.T) {
	hub := startHub(t)

	slow := &Client{id: "slow", userID: 1, send: make(chan []byte, 1)}
	hub.register <- slow
	hub.join <- subscription{client: slow, electionID: 1}

	// The second and third publishes overflow the observer's buffer; the
	// hub must drop them for this observer without blocking.
	done := make(chan struct{})
	go func() {
		for i := 1; i <= 3; i++ {
			hub.Publish(models.TallyUpdate{ElectionID: 1, CandidateID: 10, VoteCount: uint(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow observer")
	}

	update := receiveUpdate(t, slow)
	assert.Equal(t, uint(1), update.VoteCount)
}

func TestHubStopWithPendingDeliveries(t *testing.T) {
	hub := startHub(t)

	observer := newTestClient(1)
	hub.register <- observer
	hub.join <- subscription{client: observer, electionID: 1}

	// Queue more deliveries than the hub can have processed, then stop.
	// Pending deliveries racing the shutdown must never panic on a closed
	// send channel; the hub closes it from its own goroutine only.
	for i := 1; i <= 64; i++ {
		hub.Publish(models.TallyUpdate{ElectionID: 1, CandidateID: 10, VoteCount: uint(i)})
	}
	hub.Stop()

	require.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-observer.send:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, 2*time.Second, 10*time.Millisecond, "send channel must be closed on shutdown")
}

func TestHubJoinRequiresRegistration(t *testing.T) {
	hub := startHub(t)

	ghost := newTestClient(1)
	hub.join <- subscription{client: ghost, electionID: 1}

	hub.Publish(models.TallyUpdate{ElectionID: 1, CandidateID: 10, VoteCount: 1})
	assertNoUpdate(t, ghost)
	assert.Zero(t, hub.RoomSize(1))
}
