package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"activity-insights/internal/analysis"
)

// SchemaVersion tags every published snapshot
const SchemaVersion = "v1"

// ScoreSnapshot is the message published for one user and activity type
type ScoreSnapshot struct {
	SchemaVersion   string                                   `json:"schema_version"`
	UserID          string                                   `json:"user_id"`
	ActivityType    string                                   `json:"activity_type"`
	TotalScore      int                                      `json:"total_score"`
	Level           analysis.Level                           `json:"level"`
	TotalActivities int                                      `json:"total_activities"`
	TotalDistance   float64                                  `json:"total_distance"`
	Breakdown       map[analysis.Metric]analysis.ScoreDetail `json:"breakdown"`
	ComputedAt      time.Time                                `json:"computed_at"`
}

// Key is the Kafka message key; snapshots of one user and type share a partition
func (s ScoreSnapshot) Key() string {
	return s.UserID + ":" + s.ActivityType
}

// Snapshots builds one snapshot per activity type, ordered by type
func Snapshots(userID uuid.UUID, aggs map[string]analysis.AggregationDTO, at time.Time) []ScoreSnapshot {
	types := make([]string, 0, len(aggs))
	for t := range aggs {
		types = append(types, t)
	}
	sort.Strings(types)

	snaps := make([]ScoreSnapshot, 0, len(types))
	for _, t := range types {
		agg := aggs[t]
		snaps = append(snaps, ScoreSnapshot{
			SchemaVersion:   SchemaVersion,
			UserID:          userID.String(),
			ActivityType:    t,
			TotalScore:      agg.Scores.TotalScore,
			Level:           agg.Scores.Level,
			TotalActivities: agg.Basic.TotalActivities,
			TotalDistance:   agg.Basic.TotalDistance,
			Breakdown:       agg.Scores.Breakdown,
			ComputedAt:      at.UTC(),
		})
	}
	return snaps
}

// Config encapsulates the options required to publish snapshots
type Config struct {
	Brokers []string
	Topic   string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var errNilLogger = errors.New("publisher requires a logger")

// Publisher writes score snapshots to Kafka. Without brokers it is a no-op.
type Publisher struct {
	topic   string
	log     *slog.Logger
	writer  messageWriter
	enabled bool
}

// NewPublisher constructs a Publisher backed by a kafka-go writer
func NewPublisher(cfg Config, log *slog.Logger) (*Publisher, error) {
	if log == nil {
		return nil, errNilLogger
	}
	if len(cfg.Brokers) == 0 {
		log.Info("score_publisher_disabled", slog.String("reason", "no brokers"))
		return &Publisher{log: log}, nil
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, fmt.Errorf("score topic must not be empty")
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	return newPublisherWithWriter(cfg.Topic, log, w), nil
}

// newPublisherWithWriter wires the provided writer into the publisher. It is used in tests.
func newPublisherWithWriter(topic string, log *slog.Logger, w messageWriter) *Publisher {
	return &Publisher{
		topic:   topic,
		log:     log.With(slog.String("component", "score_publisher")),
		writer:  w,
		enabled: true,
	}
}

// Enabled reports whether snapshots are actually sent
func (p *Publisher) Enabled() bool {
	return p != nil && p.enabled
}

// Publish sends the snapshots in one batch
func (p *Publisher) Publish(ctx context.Context, snaps []ScoreSnapshot) error {
	if !p.Enabled() || len(snaps) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(snaps))
	for _, s := range snaps {
		value, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encoding snapshot: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(s.Key()),
			Value: value,
			Time:  s.ComputedAt,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.log.Error("score_publish_failed", slog.Int("count", len(msgs)), slog.Any("err", err))
		return fmt.Errorf("writing %d snapshots: %w", len(msgs), err)
	}
	p.log.Debug("score_published", slog.Int("count", len(msgs)), slog.String("topic", p.topic))
	return nil
}

// Close flushes and closes the underlying writer
func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}
