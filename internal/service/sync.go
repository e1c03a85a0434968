package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"activity-insights/internal/auth"
	"activity-insights/internal/ingest"
	"activity-insights/internal/store"
	"activity-insights/internal/strava"
)

// ActivitySource is the part of the Strava client the sync needs
type ActivitySource interface {
	GetAllActivities(ctx context.Context, after time.Time, onProgress func(fetched int)) ([]strava.Activity, error)
	GetActivityStreams(ctx context.Context, activityID int64) (*strava.Streams, error)
}

// rateLimited is implemented by clients that track the Strava request quota
type rateLimited interface {
	RateLimitStatus() (shortRemaining, dailyRemaining int)
}

// ClientFactory returns an authorized activity source for a user
type ClientFactory func(ctx context.Context, userID uuid.UUID) (ActivitySource, error)

// StravaClients builds Strava clients whose tokens refresh and persist through the store
func StravaClients(oauthCfg *oauth2.Config, db *store.DB) ClientFactory {
	return func(ctx context.Context, userID uuid.UUID) (ActivitySource, error) {
		ts, err := auth.NewStoreTokenSource(oauthCfg, db, userID)
		if err != nil {
			return nil, err
		}
		return strava.NewClient(ts), nil
	}
}

// SyncService pulls activities from Strava into the store
type SyncService struct {
	store    *store.DB
	clients  ClientFactory
	notifier *Notifier
	log      *slog.Logger
	now      func() time.Time
}

// NewSyncService creates a new sync service. notifier may be nil.
func NewSyncService(db *store.DB, clients ClientFactory, notifier *Notifier, log *slog.Logger) *SyncService {
	if log == nil {
		log = slog.Default()
	}
	return &SyncService{
		store:    db,
		clients:  clients,
		notifier: notifier,
		log:      log.With(slog.String("component", "sync")),
		now:      time.Now,
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase           string // "activities", "streams"
	Total           int
	Completed       int
	CurrentActivity string
}

// SyncResult contains the results of syncing one user
type SyncResult struct {
	UserID            uuid.UUID
	ActivitiesFetched int
	ActivitiesStored  int
	ActivitiesSkipped int
	StreamsFetched    int
	TrackPoints       int
	Errors            []error
}

// SyncUser fetches a user's new Strava activities and their GPS streams.
// progress, if non-nil, is closed when the sync returns.
func (s *SyncService) SyncUser(ctx context.Context, userID uuid.UUID, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{UserID: userID}

	client, err := s.clients(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("creating client: %w", err)
	}

	// Phase 1: activity summaries
	fetched, err := s.syncActivities(ctx, client, userID, progress, result)
	if err != nil {
		return result, fmt.Errorf("syncing activities: %w", err)
	}

	// Phase 2: GPS streams for the newly stored activities
	if err := s.syncStreams(ctx, client, fetched, progress, result); err != nil {
		return result, fmt.Errorf("syncing streams: %w", err)
	}

	attrs := []any{
		slog.String("user_id", userID.String()),
		slog.Int("fetched", result.ActivitiesFetched),
		slog.Int("stored", result.ActivitiesStored),
		slog.Int("streams", result.StreamsFetched),
		slog.Int("errors", len(result.Errors)),
	}
	if rl, ok := client.(rateLimited); ok {
		short, daily := rl.RateLimitStatus()
		attrs = append(attrs, slog.Int("quota_15min", short), slog.Int("quota_daily", daily))
	}
	s.log.Info("sync_completed", attrs...)

	if result.ActivitiesStored > 0 {
		if err := s.notifier.Notify(ctx, userID); err != nil {
			s.log.Warn("score_notify_failed", slog.String("user_id", userID.String()), slog.Any("err", err))
		}
	}

	return result, nil
}

// SyncAll syncs every user with stored Strava tokens. A failing user does not stop the others.
func (s *SyncService) SyncAll(ctx context.Context) ([]*SyncResult, error) {
	users, err := s.store.ListStravaUsers()
	if err != nil {
		return nil, fmt.Errorf("listing strava users: %w", err)
	}

	results := make([]*SyncResult, 0, len(users))
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := s.SyncUser(ctx, userID, nil)
		if err != nil {
			s.log.Error("sync_failed", slog.String("user_id", userID.String()), slog.Any("err", err))
			result.Errors = append(result.Errors, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// newActivity pairs a stored activity with the Strava activity it came from
type newActivity struct {
	stravaID int64
	stored   store.Activity
	start    time.Time
}

func (s *SyncService) syncActivities(ctx context.Context, client ActivitySource, userID uuid.UUID, progress chan<- SyncProgress, result *SyncResult) ([]newActivity, error) {
	key := LastSyncKeyPrefix + userID.String()

	var after time.Time
	if last, err := s.store.GetSyncState(key); err != nil {
		return nil, fmt.Errorf("reading sync state: %w", err)
	} else if last != "" {
		if after, err = time.Parse(time.RFC3339, last); err != nil {
			s.log.Warn("sync_state_invalid", slog.String("key", key), slog.String("value", last))
			after = time.Time{}
		}
	}

	syncStarted := s.now()
	sendProgress(progress, SyncProgress{Phase: "activities"})

	remote, err := client.GetAllActivities(ctx, after, func(fetched int) {
		sendProgress(progress, SyncProgress{Phase: "activities", Total: fetched, Completed: fetched})
	})
	if err != nil {
		return nil, err
	}
	result.ActivitiesFetched = len(remote)

	converted := make([]store.Activity, len(remote))
	for i, a := range remote {
		converted[i] = ingest.FromStrava(a)
	}

	inserted, err := s.store.InsertActivities(userID, converted)
	if err != nil {
		return nil, err
	}
	result.ActivitiesStored = inserted.Inserted
	result.ActivitiesSkipped = inserted.Skipped

	isNew := make(map[uuid.UUID]bool, len(inserted.InsertedIDs))
	for _, id := range inserted.InsertedIDs {
		isNew[id] = true
	}

	var fresh []newActivity
	for i, a := range remote {
		if isNew[converted[i].ID] {
			fresh = append(fresh, newActivity{stravaID: a.ID, stored: converted[i], start: a.StartDate})
		}
	}

	if err := s.store.SetSyncState(key, syncStarted.UTC().Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("saving sync state: %w", err)
	}
	return fresh, nil
}

func (s *SyncService) syncStreams(ctx context.Context, client ActivitySource, fresh []newActivity, progress chan<- SyncProgress, result *SyncResult) error {
	if len(fresh) > StreamBatchLimit {
		fresh = fresh[:StreamBatchLimit]
	}

	var points []store.TrackPoint
	for i, a := range fresh {
		if err := ctx.Err(); err != nil {
			return err
		}

		sendProgress(progress, SyncProgress{
			Phase:           "streams",
			Total:           len(fresh),
			Completed:       i,
			CurrentActivity: a.stored.Name,
		})

		streams, err := client.GetActivityStreams(ctx, a.stravaID)
		if errors.Is(err, strava.ErrNotFound) {
			continue // manual and indoor activities have no GPS
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("activity %d (%s): %w", a.stravaID, a.stored.Name, err))
			continue
		}

		result.StreamsFetched++
		points = append(points, ingest.TrackFromStreams(a.stored.ID, a.start, streams)...)
	}

	if len(points) == 0 {
		return nil
	}
	n, err := s.store.InsertTrackPoints(points)
	result.TrackPoints = n
	return err
}

// sendProgress never blocks the sync on a slow reader
func sendProgress(progress chan<- SyncProgress, p SyncProgress) {
	if progress == nil {
		return
	}
	select {
	case progress <- p:
	default:
	}
}
