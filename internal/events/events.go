// Package events publishes inventory changes to downstream collaborators
// (notification delivery, search indexing). Publishing is fire-and-forget:
// a failed publish is logged and never fails the mutation that caused it.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/segmentio/kafka-go"
)

// Publisher sends committed inventory events.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
	Close() error
}

// KafkaPublisher writes events to one topic, keyed by shop id so every event
// for a shop lands on the same partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaPublisher creates an asynchronous publisher. Delivery failures are
// reported to the logger by the writer's completion callback.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{logger: logger}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("failed to deliver inventory events", "error", err, "count", len(messages), "topic", topic)
			}
		},
	}
	return p
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, event domain.Event) error {
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ShopID.String()),
		Value: v,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
}

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher records events in the application log. It is used when no
// broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish implements Publisher.
func (p *LogPublisher) Publish(ctx context.Context, event domain.Event) error {
	p.logger.Debug("inventory event",
		"type", event.Type,
		"shop_id", event.ShopID,
		"occurred_at", event.OccurredAt,
	)
	return nil
}

// Close implements Publisher.
func (p *LogPublisher) Close() error { return nil }
