// Package events publishes a record of every accepted vote to Kafka for
// downstream consumers (auditing, analytics). The feed is best-effort and
// sits outside the correctness path: the ledger, not this stream, is the
// ground truth.
package events

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"election-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// VoteEventProducer writes tally updates to a Kafka topic. Messages are
// keyed by election ID so all events of one election land on one partition
// and stay ordered.
type VoteEventProducer struct {
	writer *kafka.Writer
}

func NewVoteEventProducer(brokers []string, topic string) *VoteEventProducer {
	return &VoteEventProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Emit publishes one vote-recorded event.
func (p *VoteEventProducer) Emit(ctx context.Context, update models.TallyUpdate) error {
	value, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal vote event: %w", err)
	}

	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(update.ElectionID))

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		return fmt.Errorf("failed to write vote event: %w", err)
	}
	return nil
}

func (p *VoteEventProducer) Close() error {
	return p.writer.Close()
}
