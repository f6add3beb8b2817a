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

	"github.com/couchcryptid/ocean-series-service/internal/adapter/kafka"
	"github.com/couchcryptid/ocean-series-service/internal/cache"
	"github.com/couchcryptid/ocean-series-service/internal/config"
	"github.com/couchcryptid/ocean-series-service/internal/dashboard"
	"github.com/couchcryptid/ocean-series-service/internal/domain"
	"github.com/couchcryptid/ocean-series-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTopic = "test-synthetic-series"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("ocean-series-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

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

func buildView(ctx context.Context, t *testing.T, metrics *observability.Metrics) dashboard.View {
	t.Helper()
	g, err := domain.NewGenerator(domain.DefaultCatalog())
	require.NoError(t, err)
	svc := dashboard.New(g, cache.New(4, 0, nil, metrics), nil, nil, discardLogger(), metrics, dashboard.Options{
		Range: domain.YearRange{Start: 2015, End: 2020},
		Seed:  42,
	})
	view, err := svc.Build(ctx, dashboard.Query{
		Range:    domain.YearRange{Start: 2015, End: 2020},
		Scenario: domain.Worsening,
		Seed:     42,
		Labels:   []string{domain.SeaLevelLabel, "catch/squid"},
	})
	require.NoError(t, err)
	return view
}

// TestPublishRoundTrip publishes a view and reads every point back.
func TestPublishRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	metrics := observability.NewMetricsForTesting()
	view := buildView(ctx, t, metrics)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	pub := kafka.NewPublisher(cfg, discardLogger(), metrics)
	t.Cleanup(func() { _ = pub.Close() })

	n, err := pub.Publish(ctx, view)
	require.NoError(t, err)
	require.Equal(t, 12, n)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	t.Cleanup(func() { _ = reader.Close() })
	require.NoError(t, reader.SetOffset(kafkago.FirstOffset))

	want := make(map[string]float64)
	for _, s := range view.Series {
		for _, p := range s.Points {
			want[kafka.MessageKey(s.Label, p.Year)] = p.Value
		}
	}

	got := make(map[string]float64)
	for range n {
		readCtx, cancelRead := context.WithTimeout(ctx, 30*time.Second)
		msg, err := reader.ReadMessage(readCtx)
		cancelRead()
		require.NoError(t, err, "read published point")

		var pm kafka.PointMessage
		require.NoError(t, json.Unmarshal(msg.Value, &pm))
		assert.Equal(t, kafka.MessageKey(pm.Label, pm.Year), string(msg.Key))
		assert.Equal(t, domain.Worsening, pm.Scenario)
		assert.Equal(t, uint64(42), pm.Seed)

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, pm.Label, headers["label"])
		assert.Equal(t, "worsening", headers["scenario"])

		got[string(msg.Key)] = pm.Value
	}

	assert.Equal(t, want, got, "every point arrives once with its exact value")
}
