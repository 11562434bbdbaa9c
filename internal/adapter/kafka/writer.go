package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/config"
	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes rendered markers to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured marker topic.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// LoadBatch serializes and publishes all markers in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, markers []domain.RenderableMarker) error {
	if len(markers) == 0 {
		return nil
	}
	fetchedAt := domain.Now()
	msgs := make([]kafkago.Message, len(markers))
	for i := range markers {
		msg, err := serializeToMessage(markers[i], fetchedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish markers: %w", err)
	}
	w.metrics.MarkersPublished.Add(float64(len(msgs)))
	w.logger.Info("markers published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// markerMessage is the JSON value written for each marker.
type markerMessage struct {
	ID          string             `json:"id"`
	SourceIndex int                `json:"sourceIndex"`
	Lon         float64            `json:"lon"`
	Lat         float64            `json:"lat"`
	Magnitude   float64            `json:"mag"`
	Style       domain.MarkerStyle `json:"style"`
	Place       string             `json:"place"`
	Date        string             `json:"date"`
	Popup       string             `json:"popup"`
	FetchedAt   time.Time          `json:"fetchedAt"`
}

// serializeToMessage marshals a marker into a Kafka message keyed by feature ID.
func serializeToMessage(m domain.RenderableMarker, fetchedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(markerMessage{
		ID:          m.FeatureID,
		SourceIndex: m.SourceIndex,
		Lon:         m.Point.Lon(),
		Lat:         m.Point.Lat(),
		Magnitude:   m.Magnitude,
		Style:       m.Style,
		Place:       m.Place,
		Date:        m.Date,
		Popup:       m.Popup,
		FetchedAt:   fetchedAt,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize marker: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(m.FeatureID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "color", Value: []byte(m.Style.Color)},
			{Key: "fetched_at", Value: []byte(fetchedAt.Format(time.RFC3339))},
		},
	}, nil
}
