//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-map-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map-service/internal/config"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/couchcryptid/quake-map-service/internal/pipeline"
	"github.com/couchcryptid/quake-map-service/internal/store"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTopic = "test-earthquake-markers"

const feedBody = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "ci40", "properties": {"mag": 3.2, "place": "8km SW of Ridgecrest, CA", "time": 1700000000000}, "geometry": {"type": "Point", "coordinates": [-117.6, 35.7, 4.1]}},
    {"type": "Feature", "id": "bad", "properties": {"mag": null, "place": "nowhere", "time": 1700000000000}, "geometry": {"type": "Point", "coordinates": [0, 0]}},
    {"type": "Feature", "id": "us99", "properties": {"mag": 6.4, "place": "Kermadec Islands", "time": 1700000500000}, "geometry": {"type": "Point", "coordinates": [-177.9, -29.4, 30]}}
  ]
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("quake-map-test"))
	require.NoError(t, err)
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

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
}

// TestPipelinePublishesMarkers runs the full pipeline against a fake feed and
// a real broker, and checks that only well-formed features reach the topic.
func TestPipelinePublishesMarkers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(feedBody))
	}))
	t.Cleanup(feedSrv.Close)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	metrics := observability.NewMetricsForTesting()

	writer := kafka.NewWriter(cfg, metrics, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	st := store.New(feedSrv.URL)

	feed := usgs.NewClient(feedSrv.URL, 5*time.Second, metrics, discardLogger())
	p := pipeline.New(feed, pipeline.NewTransformer(nil, discardLogger()),
		[]pipeline.BatchLoader{st, writer}, time.UTC, discardLogger(), metrics)

	result, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	require.NoError(t, st.CheckReadiness(ctx))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got := map[string]map[string]any{}
	for len(got) < 2 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from marker topic")

		var value map[string]any
		require.NoError(t, json.Unmarshal(msg.Value, &value))
		got[string(msg.Key)] = value
	}

	require.Contains(t, got, "ci40")
	require.Contains(t, got, "us99")
	assert.NotContains(t, got, "bad")

	ridgecrest := got["ci40"]["style"].(map[string]any)
	assert.Equal(t, "#FFBB33", ridgecrest["color"])
	assert.Equal(t, 32000.0, ridgecrest["radius"])

	kermadec := got["us99"]["style"].(map[string]any)
	assert.Equal(t, "#FF4933", kermadec["color"])
}
