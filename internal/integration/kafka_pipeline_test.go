//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/adapter/kafka"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/config"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/history"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/observability"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/pipeline"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kafkatc "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testActivityTopic = "test-activity"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := kafkatc.Run(ctx, "confluentinc/confluent-local:7.5.0", kafkatc.WithClusterID("resqwatch-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// activityMessage is a message read back from the activity topic.
type activityMessage struct {
	Event   domain.ActivityEvent
	Key     string
	Headers map[string]string
}

func readActivity(ctx context.Context, t *testing.T, consumer *kafkago.Reader) activityMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from activity topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var event domain.ActivityEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event), "unmarshal activity message")

	return activityMessage{Event: event, Key: string(msg.Key), Headers: headers}
}

// TestActivityPublisher_HistoryToKafka records history items and verifies
// they arrive on the activity topic through the publisher and kafka.Writer.
func TestActivityPublisher_HistoryToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testActivityTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaActivityTopic: testActivityTopic,
		BatchSize:          2,
		BatchFlushInterval: 200 * time.Millisecond,
	}

	metrics := observability.NewMetricsForTesting()
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	publisher := pipeline.New(writer, pipeline.Options{
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.BatchFlushInterval,
	}, clockwork.NewRealClock(), discardLogger(), metrics)

	log := history.NewLog(clockwork.NewRealClock(), discardLogger(), metrics)
	log.Subscribe(publisher.Enqueue)

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- publisher.Run(runCtx) }()

	report, err := log.Record(domain.HistoryReport, "Tree down report submitted",
		&domain.NamedLocation{Lat: 12.9716, Lng: 77.5946, Name: "MG Road"},
		map[string]any{"severity": "high"})
	require.NoError(t, err)
	view, err := log.Record(domain.HistoryView, "Emergency checklist viewed", nil,
		map[string]any{"completionRate": 17})
	require.NoError(t, err)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testActivityTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	first := readActivity(ctx, t, consumer)
	second := readActivity(ctx, t, consumer)

	assert.Equal(t, report.ID, first.Event.ID)
	assert.Equal(t, "report", first.Key)
	assert.Equal(t, "report", first.Headers["event_type"])
	assert.Equal(t, report.ID, first.Headers["event_id"])
	require.NotNil(t, first.Event.Location)
	assert.Equal(t, "MG Road", first.Event.Location.Name)
	assert.Equal(t, domain.ActivitySource, first.Event.Source)

	assert.Equal(t, view.ID, second.Event.ID)
	assert.Equal(t, domain.HistoryView, second.Event.Type)
	assert.Nil(t, second.Event.Location)

	require.NoError(t, publisher.CheckReadiness(ctx))

	stop()
	require.NoError(t, <-done)
}

// TestKafkaWriter_LoadBatch verifies the writer alone round-trips a batch.
func TestKafkaWriter_LoadBatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testActivityTopic)

	writer := kafka.NewWriter(&config.Config{
		KafkaBrokers:       []string{broker},
		KafkaActivityTopic: testActivityTopic,
		BatchSize:          10,
	}, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	recorded := time.Date(2024, time.July, 14, 10, 0, 0, 0, time.UTC)
	events := []domain.ActivityEvent{
		{ID: "a", Type: domain.HistorySearch, Query: "flood risk bangalore", RecordedAt: recorded, Source: domain.ActivitySource},
		{ID: "b", Type: domain.HistoryLocation, Query: "Current location acquired", RecordedAt: recorded, Source: domain.ActivitySource},
	}
	require.NoError(t, writer.LoadBatch(ctx, events))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testActivityTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got := []activityMessage{readActivity(ctx, t, consumer), readActivity(ctx, t, consumer)}
	assert.Equal(t, "a", got[0].Event.ID)
	assert.Equal(t, "2024-07-14T10:00:00Z", got[0].Headers["recorded_at"])
	assert.Equal(t, "b", got[1].Event.ID)
	assert.Equal(t, "location", got[1].Key)
}
