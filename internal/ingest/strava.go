package ingest

import (
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"activity-insights/internal/analysis"
	"activity-insights/internal/store"
	"activity-insights/internal/strava"
)

// stravaNamespace seeds deterministic activity IDs so re-syncs are idempotent
var stravaNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://www.strava.com/activities"))

// StravaActivityID returns the stable activity ID for a Strava activity
func StravaActivityID(stravaID int64) uuid.UUID {
	return uuid.NewSHA1(stravaNamespace, []byte(strconv.FormatInt(stravaID, 10)))
}

// FromStrava converts a Strava summary activity into a store activity.
// Calories are estimated from kilojoules when the activity has power data.
func FromStrava(a strava.Activity) store.Activity {
	distanceKm := a.Distance / 1000

	activityType := a.SportType
	if activityType == "" {
		activityType = a.Type
	}

	// start_date_local carries a bogus Z; keep the wall clock as a naive time
	local := a.StartDateLocal
	date := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), local.Second(), 0, time.UTC)

	var pace float64
	if distanceKm > 0 && a.MovingTime > 0 {
		pace = analysis.EncodePace(float64(a.MovingTime) / distanceKm)
	}

	return store.Activity{
		ID:           StravaActivityID(a.ID),
		Date:         date,
		Name:         a.Name,
		ActivityType: activityType,
		Distance:     distanceKm,
		Duration:     analysis.FormatDuration(a.MovingTime),
		AveragePace:  pace,
		AverageSpeed: roundTo(a.AverageSpeed*3.6, 2),
		Calories:     math.Round(a.Kilojoules),
		Climb:        a.TotalElevationGain,
	}
}

// TrackFromStreams turns Strava GPS streams into track points
func TrackFromStreams(activityID uuid.UUID, start time.Time, s *strava.Streams) []store.TrackPoint {
	n := s.Len()
	if n == 0 {
		return nil
	}

	points := make([]store.TrackPoint, 0, n)
	for i, ll := range s.LatLng.Data {
		tp := store.TrackPoint{
			ID:         uuid.NewSHA1(activityID, []byte(strconv.Itoa(i))),
			ActivityID: activityID,
			Latitude:   strconv.FormatFloat(ll[0], 'f', -1, 64),
			Longitude:  strconv.FormatFloat(ll[1], 'f', -1, 64),
		}
		if s.Altitude != nil && i < len(s.Altitude.Data) {
			tp.Elevation = s.Altitude.Data[i]
		}
		if s.Time != nil && i < len(s.Time.Data) {
			tp.Time = start.Add(time.Duration(s.Time.Data[i]) * time.Second).UTC().Format(time.RFC3339)
		}
		points = append(points, tp)
	}
	return points
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
