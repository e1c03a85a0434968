package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestInsertAndListTrackPoints(t *testing.T) {
	db, user := setupTestDB(t)

	activities := []Activity{testActivity(time.Date(2024, 4, 1, 7, 0, 0, 0, time.UTC), "Running", 5)}
	if _, err := db.InsertActivities(user.ID, activities); err != nil {
		t.Fatalf("InsertActivities failed: %v", err)
	}
	activityID := activities[0].ID

	points := []TrackPoint{
		{ID: uuid.New(), ActivityID: activityID, Latitude: "52.5200", Longitude: "13.4050", Elevation: 34, Time: "2024-04-01T07:00:00Z"},
		{ID: uuid.New(), ActivityID: activityID, Latitude: "52.5201", Longitude: "13.4052", Elevation: 35, Time: "2024-04-01T07:00:05Z"},
		{ID: uuid.New(), ActivityID: activityID, Latitude: "52.5203", Longitude: "13.4055", Elevation: 35.5, Time: "2024-04-01T07:00:10Z"},
	}

	n, err := db.InsertTrackPoints(points)
	if err != nil {
		t.Fatalf("InsertTrackPoints failed: %v", err)
	}
	if n != 3 {
		t.Errorf("inserted = %d, want 3", n)
	}

	// Re-inserting the same points is a no-op
	n, err = db.InsertTrackPoints(points)
	if err != nil {
		t.Fatalf("second InsertTrackPoints failed: %v", err)
	}
	if n != 0 {
		t.Errorf("second insert = %d, want 0", n)
	}

	got, err := db.ListTrackPoints(activityID)
	if err != nil {
		t.Fatalf("ListTrackPoints failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(points) = %d, want 3", len(got))
	}
	if got[0].Time != "2024-04-01T07:00:10Z" {
		t.Errorf("first point time = %s, want latest first", got[0].Time)
	}
}

func TestInsertTrackPointsBatches(t *testing.T) {
	db, user := setupTestDB(t)

	start := time.Date(2023, 1, 1, 7, 0, 0, 0, time.UTC)
	activities := make([]Activity, TrackPointBatchSize+5)
	for i := range activities {
		activities[i] = testActivity(start.AddDate(0, 0, i), "Running", 5)
	}
	if _, err := db.InsertActivities(user.ID, activities); err != nil {
		t.Fatalf("InsertActivities failed: %v", err)
	}

	var points []TrackPoint
	for _, a := range activities {
		points = append(points, TrackPoint{ActivityID: a.ID, Latitude: "1", Longitude: "2", Time: a.Date.Format(time.RFC3339)})
	}

	n, err := db.InsertTrackPoints(points)
	if err != nil {
		t.Fatalf("InsertTrackPoints failed: %v", err)
	}
	if n != len(activities) {
		t.Errorf("inserted = %d, want %d", n, len(activities))
	}
}

func TestListTrackPointsEmpty(t *testing.T) {
	db, _ := setupTestDB(t)

	got, err := db.ListTrackPoints(uuid.New())
	if err != nil {
		t.Fatalf("ListTrackPoints failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}
