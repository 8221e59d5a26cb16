package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"election-service/internal/models"

	"github.com/redis/go-redis/v9"
)

const electionChannelPrefix = "election:"

type subscription struct {
	client     *Client
	electionID uint
}

// Hub owns the live-result rooms: one room per election, observers join and
// leave explicitly, and a published tally update reaches only the room of
// its election. The hub goroutine serializes deliveries, which gives FIFO
// ordering per election. Delivery is best-effort: a slow or disconnected
// observer is dropped, never waited on.
//
// When a redis client is provided the hub publishes through redis pub/sub
// and feeds rooms from its subscription, so updates reach rooms on every
// instance exactly once. Without redis it delivers locally.
type Hub struct {
	rooms   map[uint]map[*Client]bool
	clients map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	join        chan subscription
	leave       chan subscription
	deliveries  chan models.TallyUpdate
	redisClient *redis.Client

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
}

// NewHub builds a hub. redisClient may be nil for single-instance setups.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		rooms:       make(map[uint]map[*Client]bool),
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		join:        make(chan subscription),
		leave:       make(chan subscription),
		deliveries:  make(chan models.TallyUpdate, 256),
		redisClient: redisClient,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Run is the hub's event loop. Start it in its own goroutine.
func (h *Hub) Run() {
	if h.redisClient != nil {
		go h.redisListener()
	}

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case sub := <-h.join:
			h.addToRoom(sub.client, sub.electionID)

		case sub := <-h.leave:
			h.removeFromRoom(sub.client, sub.electionID)

		case update := <-h.deliveries:
			h.deliver(update)

		case <-h.ctx.Done():
			slog.Info("websocket hub shutting down")
			h.disconnectAll()
			return
		}
	}
}

// Stop signals shutdown. The hub goroutine closes the client send channels
// itself: it is the only sender on them, so a delivery racing the shutdown
// can never hit a closed channel.
func (h *Hub) Stop() {
	h.cancel()
}

func (h *Hub) disconnectAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.closeSend()
	}
}

// Publish hands a tally update to the hub. It never blocks the caller: if
// the hub is saturated the update is dropped and logged, because a recorded
// vote must not wait on its notification.
func (h *Hub) Publish(update models.TallyUpdate) {
	if h.redisClient != nil {
		payload, err := json.Marshal(update)
		if err != nil {
			slog.Error("failed to marshal tally update", "error", err)
			return
		}
		channel := electionChannelPrefix + strconv.FormatUint(uint64(update.ElectionID), 10)
		if err := h.redisClient.Publish(h.ctx, channel, payload).Err(); err != nil {
			slog.Error("redis publish failed", "channel", channel, "error", err)
		}
		return
	}

	select {
	case h.deliveries <- update:
	default:
		slog.Warn("hub delivery queue full, dropping tally update",
			"electionID", update.ElectionID, "candidateID", update.CandidateID)
	}
}

// redisListener feeds rooms from the redis pattern subscription, so every
// instance (including the publisher's own) delivers through the same path.
func (h *Hub) redisListener() {
	pubsub := h.redisClient.PSubscribe(h.ctx, electionChannelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var update models.TallyUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				slog.Error("malformed tally update from redis", "channel", msg.Channel, "error", err)
				continue
			}
			if id, err := electionIDFromChannel(msg.Channel); err == nil && id != update.ElectionID {
				slog.Warn("tally update channel mismatch", "channel", msg.Channel, "electionID", update.ElectionID)
				continue
			}
			select {
			case h.deliveries <- update:
			case <-h.ctx.Done():
				return
			}
		case <-h.ctx.Done():
			return
		}
	}
}

func electionIDFromChannel(channel string) (uint, error) {
	raw := strings.TrimPrefix(channel, electionChannelPrefix)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad election channel %q: %w", channel, err)
	}
	return uint(id), nil
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	slog.Info("observer connected", "clientID", client.id, "userID", client.userID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for electionID, room := range h.rooms {
		if room[client] {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, electionID)
			}
		}
	}
	client.closeSend()
	slog.Info("observer disconnected", "clientID", client.id, "userID", client.userID)
}

func (h *Hub) addToRoom(client *Client, electionID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[client] {
		return
	}
	if h.rooms[electionID] == nil {
		h.rooms[electionID] = make(map[*Client]bool)
	}
	h.rooms[electionID][client] = true
	slog.Debug("observer joined election room", "clientID", client.id, "electionID", electionID)
}

func (h *Hub) removeFromRoom(client *Client, electionID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[electionID]
	if room == nil {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, electionID)
	}
	slog.Debug("observer left election room", "clientID", client.id, "electionID", electionID)
}

// deliver pushes one update to every observer of its election's room.
// Observers of other elections never see it.
func (h *Hub) deliver(update models.TallyUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		slog.Error("failed to marshal tally update", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[update.ElectionID] {
		select {
		case client.send <- payload:
		default:
			// Slow consumer; drop the update for this observer.
			slog.Warn("observer send buffer full, dropping update",
				"clientID", client.id, "electionID", update.ElectionID)
		}
	}
}

// RoomSize reports the number of observers in an election's room.
func (h *Hub) RoomSize(electionID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[electionID])
}
