package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/ocean-series-service/internal/config"
	"github.com/couchcryptid/ocean-series-service/internal/dashboard"
	"github.com/couchcryptid/ocean-series-service/internal/domain"
	"github.com/couchcryptid/ocean-series-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// batchSize bounds the messages handed to one WriteMessages call.
const batchSize = 500

// PointMessage is the JSON value of one published message.
type PointMessage struct {
	Label       string          `json:"label"`
	Kind        domain.Kind     `json:"kind"`
	Unit        string          `json:"unit"`
	Year        int             `json:"year"`
	Value       float64         `json:"value"`
	Scenario    domain.Scenario `json:"scenario"`
	Seed        uint64          `json:"seed"`
	GeneratedAt time.Time       `json:"generated_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes every point of a view to a Kafka topic.
type Publisher struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates a Kafka producer for the configured topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger, metrics: metrics}
}

// Publish sends one message per point, keyed by label and year so each
// point lands on a stable partition. It returns the number of points sent.
func (p *Publisher) Publish(ctx context.Context, view dashboard.View) (int, error) {
	msgs, err := buildMessages(view)
	if err != nil {
		return 0, err
	}

	sent := 0
	for start := 0; start < len(msgs); start += batchSize {
		end := min(start+batchSize, len(msgs))
		if err := p.writer.WriteMessages(ctx, msgs[start:end]...); err != nil {
			return sent, fmt.Errorf("publish points: %w", err)
		}
		sent += end - start
		p.metrics.PointsPublished.Add(float64(end - start))
	}

	p.logger.Info("series published",
		"points", sent,
		"series", len(view.Series),
		"scenario", view.Query.Scenario,
		"seed", view.Query.Seed,
	)
	return sent, nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// MessageKey is the partition key of a point.
func MessageKey(label string, year int) string {
	return label + "|" + strconv.Itoa(year)
}

func buildMessages(view dashboard.View) ([]kafkago.Message, error) {
	var msgs []kafkago.Message
	for _, s := range view.Series {
		for _, pt := range s.Points {
			data, err := json.Marshal(PointMessage{
				Label:       s.Label,
				Kind:        s.Kind,
				Unit:        s.Unit,
				Year:        pt.Year,
				Value:       pt.Value,
				Scenario:    view.Query.Scenario,
				Seed:        view.Query.Seed,
				GeneratedAt: view.GeneratedAt,
			})
			if err != nil {
				return nil, fmt.Errorf("serialize point %s: %w", MessageKey(s.Label, pt.Year), err)
			}
			msgs = append(msgs, kafkago.Message{
				Key:   []byte(MessageKey(s.Label, pt.Year)),
				Value: data,
				Headers: []kafkago.Header{
					{Key: "label", Value: []byte(s.Label)},
					{Key: "scenario", Value: []byte(view.Query.Scenario)},
				},
			})
		}
	}
	return msgs, nil
}
