package strava

import "time"

// Activity is the summary representation returned by /athlete/activities
type Activity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          string    `json:"sport_type"`
	StartDate          time.Time `json:"start_date"`
	StartDateLocal     time.Time `json:"start_date_local"` // wall clock time, the zone marker is meaningless
	Distance           float64   `json:"distance"`         // meters
	MovingTime         int       `json:"moving_time"`      // seconds
	ElapsedTime        int       `json:"elapsed_time"`     // seconds
	TotalElevationGain float64   `json:"total_elevation_gain"`
	AverageSpeed       float64   `json:"average_speed"` // m/s
	MaxSpeed           float64   `json:"max_speed"`     // m/s
	Kilojoules         float64   `json:"kilojoules"`    // rides with power data only
}

// Streams holds the GPS streams of an activity, keyed by type
type Streams struct {
	Time     *StreamData[int]        `json:"time"`
	LatLng   *StreamData[[2]float64] `json:"latlng"`
	Altitude *StreamData[float64]    `json:"altitude"`
}

// StreamData represents a single stream type
type StreamData[T any] struct {
	Data         []T    `json:"data"`
	SeriesType   string `json:"series_type"`
	OriginalSize int    `json:"original_size"`
	Resolution   string `json:"resolution"`
}

// Len returns the number of GPS samples, or 0 when there is no route
func (s *Streams) Len() int {
	if s == nil || s.LatLng == nil {
		return 0
	}
	return len(s.LatLng.Data)
}
