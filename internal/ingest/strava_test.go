package ingest

import (
	"math"
	"testing"
	"time"

	"activity-insights/internal/strava"
)

func TestFromStrava(t *testing.T) {
	a := strava.Activity{
		ID:                 123456789,
		Name:               "Evening Run",
		Type:               "Run",
		SportType:          "TrailRun",
		StartDateLocal:     time.Date(2024, 5, 4, 18, 30, 0, 0, time.UTC),
		Distance:           10000,
		MovingTime:         3000,
		TotalElevationGain: 120.5,
		AverageSpeed:       3.3333,
	}

	got := FromStrava(a)

	if got.ID != StravaActivityID(123456789) {
		t.Errorf("ID not derived from strava id")
	}
	if got.ActivityType != "TrailRun" {
		t.Errorf("ActivityType = %q, want TrailRun", got.ActivityType)
	}
	if !got.Date.Equal(time.Date(2024, 5, 4, 18, 30, 0, 0, time.UTC)) {
		t.Errorf("Date = %v", got.Date)
	}
	if got.Distance != 10 || got.Duration != "00:50:00" || got.Climb != 120.5 {
		t.Errorf("got %+v", got)
	}
	// 300 s/km
	if math.Abs(got.AveragePace-5.0) > 1e-9 {
		t.Errorf("AveragePace = %v, want 5.0", got.AveragePace)
	}
	if math.Abs(got.AverageSpeed-12.0) > 1e-9 {
		t.Errorf("AverageSpeed = %v, want 12.0", got.AverageSpeed)
	}
}

func TestFromStravaFallbacks(t *testing.T) {
	got := FromStrava(strava.Activity{ID: 1, Type: "Ride", Kilojoules: 612.4})

	if got.ActivityType != "Ride" {
		t.Errorf("ActivityType = %q, want Ride", got.ActivityType)
	}
	if got.AveragePace != 0 {
		t.Errorf("AveragePace = %v, want 0 for zero distance", got.AveragePace)
	}
	if got.Calories != 612 {
		t.Errorf("Calories = %v, want 612", got.Calories)
	}
}

func TestStravaActivityIDStable(t *testing.T) {
	if StravaActivityID(42) != StravaActivityID(42) {
		t.Error("ids differ across calls")
	}
	if StravaActivityID(42) == StravaActivityID(43) {
		t.Error("distinct strava ids collide")
	}
}

func TestTrackFromStreams(t *testing.T) {
	start := time.Date(2024, 5, 4, 16, 30, 0, 0, time.UTC)
	streams := &strava.Streams{
		Time:     &strava.StreamData[int]{Data: []int{0, 10}},
		LatLng:   &strava.StreamData[[2]float64]{Data: [][2]float64{{52.52, 13.4}, {52.53, 13.41}}},
		Altitude: &strava.StreamData[float64]{Data: []float64{30, 31}},
	}

	id := StravaActivityID(7)
	points := TrackFromStreams(id, start, streams)
	if len(points) != 2 {
		t.Fatalf("len = %d, want 2", len(points))
	}
	if points[1].Time != "2024-05-04T16:30:10Z" || points[1].Elevation != 31 {
		t.Errorf("point = %+v", points[1])
	}
	if points[0].Latitude != "52.52" || points[0].ActivityID != id {
		t.Errorf("point = %+v", points[0])
	}

	again := TrackFromStreams(id, start, streams)
	if again[0].ID != points[0].ID {
		t.Error("track point ids are not stable")
	}

	if got := TrackFromStreams(id, start, &strava.Streams{}); got != nil {
		t.Errorf("empty streams = %v, want nil", got)
	}
}
