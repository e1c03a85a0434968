package analysis

import "time"

const (
	SecondsPerMinute = 60

	// Highlight list sizes
	TopWeekdayCount = 3
	TopSpeedCount   = 3

	// Pace formulas score relative to this reference pace (min/km)
	ReferencePace = 6.0
	// Pace deviations above this no longer earn consistency points
	MaxRewardedPaceStdDev = 3.0

	// Per-metric scores are clamped to this range
	MinMetricScore = 0
	MaxMetricScore = 1000

	// MonthKeyLayout formats the monthly bucket key, e.g. "2024-03"
	MonthKeyLayout = "2006-01"
	// DateKeyLayout formats the calendar-day bucket key
	DateKeyLayout = "2006-01-02"
)

// Clock supplies the current time. The engine never reads the wall clock directly.
type Clock func() time.Time

// SystemClock is the production Clock
func SystemClock() time.Time {
	return time.Now()
}
