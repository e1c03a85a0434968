package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"activity-insights/internal/analysis"
	"activity-insights/internal/events"
	"activity-insights/internal/store"
)

const csvHeader = "Activity Id,Date,Type,Route Name,Distance (km),Duration,Average Pace,Average Speed (km/h),Calories Burned,Climb (m),Average Heart Rate (bpm),Friend's Tagged,Notes,GPX File\n"

const exportCSV = csvHeader +
	"0d7d8e5a-2f4b-4d3c-9f0e-1a2b3c4d5e6f,2024-03-02 07:15:00,Running,Park loop,10,52:30,5:15,11.43,712,54,,,,2024-03-02-071500.gpx\n" +
	"7a1c5a2e-8d9b-4f0a-b1c2-d3e4f5a6b7c8,2024-03-03 18:00:05,Cycling,,32.5,1:05:12,2:00,29.9,890,210,,,,\n" +
	"not-a-uuid,2024-03-04 07:00:00,Running,,5,25:00,5:00,12,300,10,,,,\n"

const exportGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="Runkeeper" xmlns="http://www.topografix.com/GPX/1/1">
  <trk><trkseg>
    <trkpt lat="52.520008" lon="13.404954"><ele>34.1</ele><time>2024-03-02T07:15:00Z</time></trkpt>
    <trkpt lat="52.520100" lon="13.405100"><ele>34.6</ele><time>2024-03-02T07:15:05Z</time></trkpt>
  </trkseg></trk>
</gpx>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestDB creates an in-memory database with one user
func setupTestDB(t *testing.T) (*store.DB, *store.User) {
	t.Helper()

	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	user, err := db.CreateUser("google-123", "runner@example.com")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return db, user
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
}

func newTestQuery(db *store.DB) *QueryService {
	return NewQueryService(db, analysis.NewEngine(analysis.DefaultScoringConfig(), fixedClock))
}

// recordingPublisher collects published snapshots
type recordingPublisher struct {
	mu    sync.Mutex
	snaps []events.ScoreSnapshot
}

func (p *recordingPublisher) Enabled() bool { return true }

func (p *recordingPublisher) Publish(_ context.Context, snaps []events.ScoreSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snaps = append(p.snaps, snaps...)
	return nil
}

func (p *recordingPublisher) published() []events.ScoreSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.ScoreSnapshot(nil), p.snaps...)
}
