package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"activity-insights/internal/analysis"
	"activity-insights/internal/events"
)

// SnapshotPublisher delivers score snapshots; *events.Publisher implements it
type SnapshotPublisher interface {
	Enabled() bool
	Publish(ctx context.Context, snaps []events.ScoreSnapshot) error
}

// Notifier publishes a user's current scores after their activities change
type Notifier struct {
	query     *QueryService
	publisher SnapshotPublisher
	now       analysis.Clock
	log       *slog.Logger
}

// NewNotifier creates a notifier. A nil clock uses the system clock.
func NewNotifier(query *QueryService, publisher SnapshotPublisher, now analysis.Clock, log *slog.Logger) *Notifier {
	if now == nil {
		now = analysis.SystemClock
	}
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{
		query:     query,
		publisher: publisher,
		now:       now,
		log:       log.With(slog.String("component", "notifier")),
	}
}

// Notify recomputes and publishes the user's score snapshots.
// A nil notifier or a disabled publisher does nothing.
func (n *Notifier) Notify(ctx context.Context, userID uuid.UUID) error {
	if n == nil || n.publisher == nil || !n.publisher.Enabled() {
		return nil
	}

	aggs, err := n.query.Aggregations(userID)
	if err != nil {
		return fmt.Errorf("aggregating scores: %w", err)
	}

	snaps := events.Snapshots(userID, aggs, n.now())
	if err := n.publisher.Publish(ctx, snaps); err != nil {
		return err
	}
	n.log.Info("scores_published", slog.String("user_id", userID.String()), slog.Int("types", len(snaps)))
	return nil
}
