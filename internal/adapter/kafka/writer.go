// Package kafka publishes dashboard activity to Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/config"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces activity events to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured activity topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaActivityTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes events in a single WriteMessages call. Events are
// keyed by type so each activity type stays ordered within its partition.
func (w *Writer) LoadBatch(ctx context.Context, events []domain.ActivityEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d activity events: %w", len(msgs), err)
	}
	w.logger.Debug("activity batch written", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeToMessage(event domain.ActivityEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize activity event %s: %w", event.ID, err)
	}
	return kafkago.Message{
		Key:   []byte(event.Type),
		Value: data,
		Time:  event.RecordedAt,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "recorded_at", Value: []byte(event.RecordedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
