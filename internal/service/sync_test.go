package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"activity-insights/internal/ingest"
	"activity-insights/internal/store"
	"activity-insights/internal/strava"
)

// fakeSource serves canned Strava data
type fakeSource struct {
	mu         sync.Mutex
	activities []strava.Activity
	streams    map[int64]*strava.Streams
	afters     []time.Time
	streamErr  error
}

func (f *fakeSource) GetAllActivities(_ context.Context, after time.Time, onProgress func(int)) ([]strava.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.afters = append(f.afters, after)

	var out []strava.Activity
	for _, a := range f.activities {
		if after.IsZero() || a.StartDate.After(after) {
			out = append(out, a)
		}
	}
	if onProgress != nil {
		onProgress(len(out))
	}
	return out, nil
}

func (f *fakeSource) GetActivityStreams(_ context.Context, id int64) (*strava.Streams, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	s, ok := f.streams[id]
	if !ok {
		return nil, strava.ErrNotFound
	}
	return s, nil
}

func stravaRun(id int64, start time.Time, meters float64) strava.Activity {
	return strava.Activity{
		ID:             id,
		Name:           "Morning Run",
		SportType:      "Run",
		StartDate:      start,
		StartDateLocal: start.Add(time.Hour),
		Distance:       meters,
		MovingTime:     int(meters / 1000 * 330),
		AverageSpeed:   3.03,
	}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		activities: []strava.Activity{
			stravaRun(101, time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC), 10000),
			stravaRun(102, time.Date(2024, 3, 3, 6, 0, 0, 0, time.UTC), 5000),
		},
		streams: map[int64]*strava.Streams{
			101: {
				Time:     &strava.StreamData[int]{Data: []int{0, 5, 10}},
				LatLng:   &strava.StreamData[[2]float64]{Data: [][2]float64{{52.52, 13.40}, {52.53, 13.41}, {52.54, 13.42}}},
				Altitude: &strava.StreamData[float64]{Data: []float64{34, 35, 36}},
			},
		},
	}
}

func factoryFor(src ActivitySource) ClientFactory {
	return func(context.Context, uuid.UUID) (ActivitySource, error) {
		return src, nil
	}
}

func TestSyncUser(t *testing.T) {
	db, user := setupTestDB(t)
	src := newFakeSource()
	pub := &recordingPublisher{}
	svc := NewSyncService(db, factoryFor(src), NewNotifier(newTestQuery(db), pub, fixedClock, discardLogger()), discardLogger())
	svc.now = fixedClock

	progress := make(chan SyncProgress, 16)
	result, err := svc.SyncUser(context.Background(), user.ID, progress)
	if err != nil {
		t.Fatalf("SyncUser failed: %v", err)
	}
	if result.ActivitiesFetched != 2 || result.ActivitiesStored != 2 {
		t.Errorf("result = %+v, want 2 fetched and stored", result)
	}
	if result.StreamsFetched != 1 || result.TrackPoints != 3 {
		t.Errorf("streams = %d, points = %d, want 1 and 3", result.StreamsFetched, result.TrackPoints)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v", result.Errors)
	}

	for range progress {
	}

	stored, err := db.GetActivity(ingest.StravaActivityID(101))
	if err != nil {
		t.Fatalf("GetActivity failed: %v", err)
	}
	if stored.ActivityType != "Run" || stored.Distance != 10 || stored.UserID != user.ID {
		t.Errorf("stored = %+v", stored)
	}
	if stored.Date.Hour() != 7 {
		t.Errorf("Date = %v, want the local start hour 7", stored.Date)
	}

	state, err := db.GetSyncState(LastSyncKeyPrefix + user.ID.String())
	if err != nil {
		t.Fatalf("GetSyncState failed: %v", err)
	}
	if state != fixedClock().Format(time.RFC3339) {
		t.Errorf("sync state = %q", state)
	}

	if got := len(pub.published()); got != 1 {
		t.Errorf("published %d snapshots, want 1", got)
	}
}

func TestSyncUserIncremental(t *testing.T) {
	db, user := setupTestDB(t)
	src := newFakeSource()
	svc := NewSyncService(db, factoryFor(src), nil, discardLogger())
	svc.now = func() time.Time { return time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC) }

	if _, err := svc.SyncUser(context.Background(), user.ID, nil); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	result, err := svc.SyncUser(context.Background(), user.ID, nil)
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if !src.afters[1].Equal(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("second sync after = %v", src.afters[1])
	}
	if result.ActivitiesFetched != 1 || result.ActivitiesStored != 0 || result.ActivitiesSkipped != 1 {
		t.Errorf("result = %+v, want the refetched activity skipped", result)
	}
	if result.StreamsFetched != 0 {
		t.Errorf("StreamsFetched = %d, want 0 for skipped activities", result.StreamsFetched)
	}
}

func TestSyncUserStreamErrors(t *testing.T) {
	db, user := setupTestDB(t)
	src := newFakeSource()
	src.streamErr = errors.New("rate limited")
	svc := NewSyncService(db, factoryFor(src), nil, discardLogger())

	result, err := svc.SyncUser(context.Background(), user.ID, nil)
	if err != nil {
		t.Fatalf("SyncUser failed: %v", err)
	}
	if result.ActivitiesStored != 2 || len(result.Errors) != 2 {
		t.Errorf("result = %+v, want activities stored and both stream errors recorded", result)
	}
}

func TestSyncUserClientError(t *testing.T) {
	db, user := setupTestDB(t)
	failing := func(context.Context, uuid.UUID) (ActivitySource, error) {
		return nil, store.ErrNoAuth
	}
	svc := NewSyncService(db, failing, nil, discardLogger())

	_, err := svc.SyncUser(context.Background(), user.ID, nil)
	if !errors.Is(err, store.ErrNoAuth) {
		t.Errorf("err = %v, want ErrNoAuth", err)
	}
}

func TestSyncAll(t *testing.T) {
	db, user := setupTestDB(t)
	auth := &store.StravaAuth{
		UserID:       user.ID,
		AthleteID:    42,
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	if err := db.SaveStravaAuth(auth); err != nil {
		t.Fatalf("SaveStravaAuth failed: %v", err)
	}

	svc := NewSyncService(db, factoryFor(newFakeSource()), nil, discardLogger())
	results, err := svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll failed: %v", err)
	}
	if len(results) != 1 || results[0].UserID != user.ID || results[0].ActivitiesStored != 2 {
		t.Errorf("results = %+v", results)
	}
}
