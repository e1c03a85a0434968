package analysis

import (
	"encoding/json"
	"fmt"
)

// BasicAggregation summarizes totals, averages and extremes of a group of activities
type BasicAggregation struct {
	TotalActivities int     `json:"total_activities"`
	TotalDistance   float64 `json:"total_distance"`
	AveragePace     float64 `json:"average_pace"` // distance-weighted, minutes.seconds encoding
	AverageDistance float64 `json:"average_distance"`
	BestDistance    float64 `json:"best_distance"`
	BestPace        float64 `json:"best_pace"` // never better than AveragePace
}

// WeekdayPace pairs a weekday name with the mean pace recorded on it
type WeekdayPace struct {
	Weekday string
	Pace    float64
}

// MarshalJSON encodes the pair as a ["Tue", 4.5] tuple
func (w WeekdayPace) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{w.Weekday, w.Pace})
}

// UnmarshalJSON decodes a ["Tue", 4.5] tuple
func (w *WeekdayPace) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if len(tuple) != 2 {
		return fmt.Errorf("weekday pace: want 2 elements, got %d", len(tuple))
	}
	if err := json.Unmarshal(tuple[0], &w.Weekday); err != nil {
		return fmt.Errorf("weekday pace name: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &w.Pace); err != nil {
		return fmt.Errorf("weekday pace value: %w", err)
	}
	return nil
}

// AdvancedAggregation holds streaks, calendar buckets and highlight statistics
// for a group of activities. Optional labels are nil when the group is empty.
type AdvancedAggregation struct {
	LongestStreakDays   int           `json:"longest_streak_days"`
	LongestStreakWeeks  int           `json:"longest_streak_weeks"`
	CurrentWeeklyStreak int           `json:"current_weekly_streak"`
	FastestWeekdays     []WeekdayPace `json:"top_3_fastest_weekdays"`
	MostConsistentWeek  *string       `json:"most_consistent_week"`
	MaxDailyCalories    float64       `json:"max_daily_calories"`
	TopSpeeds           []float64     `json:"top_speeds"`
	MaxClimb            float64       `json:"max_climb"`
	MostFrequentWeekday *string       `json:"most_frequent_weekday"`
	SlowestPace         float64       `json:"slowest_pace"`
	SpeedDemonHour      *string       `json:"speed_demon_hour"`
	SweatiestWeek       *string       `json:"sweatiest_week"`
	MostSkippedWeekday  *string       `json:"most_skipped_weekday"`
	WeekendRatio        float64       `json:"weekend_ratio"`
	PaceStdDev          float64       `json:"pace_std_dev"`
	MaxEffortCalPerMin  float64       `json:"max_effort_cal_per_min"`
}

// ScoreDetail is the score and rank of a single metric
type ScoreDetail struct {
	Score int   `json:"score"`
	Level Level `json:"level"`
}

// ScoreSummary is the overall rank of a group plus its per-metric breakdown
type ScoreSummary struct {
	TotalScore int                    `json:"total_score"`
	Level      Level                  `json:"level"`
	Breakdown  map[Metric]ScoreDetail `json:"breakdown"`
}

// AggregationDTO is the complete result for one activity type
type AggregationDTO struct {
	Basic    BasicAggregation     `json:"basic"`
	Advanced *AdvancedAggregation `json:"advanced,omitempty"`
	Scores   ScoreSummary         `json:"scores"`
}

// MonthlyAggregations maps activity type -> "YYYY-MM" -> basic summary
type MonthlyAggregations map[string]map[string]BasicAggregation
