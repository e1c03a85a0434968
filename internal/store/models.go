package store

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that owns activities
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	GoogleID  string    `db:"google_id" json:"google_id"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Activity represents a single recorded session.
// Date is a naive local timestamp; its location is ignored.
type Activity struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	Date         time.Time `db:"date" json:"date"`
	Name         string    `db:"name" json:"name"`
	ActivityType string    `db:"activity_type" json:"activity_type"`
	Distance     float64   `db:"distance" json:"distance"`           // kilometers
	Duration     string    `db:"duration" json:"duration"`           // HH:MM:SS
	AveragePace  float64   `db:"average_pace" json:"average_pace"`   // minutes + seconds/100 per km
	AverageSpeed float64   `db:"average_speed" json:"average_speed"` // km/h
	Calories     float64   `db:"calories" json:"calories"`
	Climb        float64   `db:"climb" json:"climb"` // meters
	GPSFile      string    `db:"gps_file" json:"gps_file"`
}

// TrackPoint represents a single GPS sample belonging to an activity
type TrackPoint struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ActivityID uuid.UUID `db:"activity_id" json:"activity_id"`
	Latitude   string    `db:"lat" json:"latitude"`
	Longitude  string    `db:"lon" json:"longitude"`
	Elevation  float64   `db:"elevation" json:"elevation"`
	Time       string    `db:"time" json:"time"` // RFC 3339
}

// StravaAuth holds OAuth tokens for pulling a user's Strava activities
type StravaAuth struct {
	UserID       uuid.UUID `db:"user_id"`
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}
