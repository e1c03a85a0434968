package analysis

import (
	"time"

	"activity-insights/internal/store"
)

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func run(date time.Time, distance, pace float64) store.Activity {
	return store.Activity{
		Date:         date,
		ActivityType: "Running",
		Distance:     distance,
		Duration:     "00:30:00",
		AveragePace:  pace,
		AverageSpeed: 10,
	}
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
