package analysis

import (
	"activity-insights/internal/store"
)

// Engine groups activities and runs the aggregators and scoring per group.
// It holds no mutable state; one Engine can serve concurrent callers.
type Engine struct {
	Scoring ScoringConfig
	Now     Clock
}

// NewEngine returns an engine with the given scoring rules and clock.
// A nil clock falls back to SystemClock.
func NewEngine(scoring ScoringConfig, now Clock) *Engine {
	if now == nil {
		now = SystemClock
	}
	return &Engine{Scoring: scoring, Now: now}
}

// Aggregate partitions activities by type and by type and month.
// Each type gets basic, advanced and scores; each month gets basic only.
func (e *Engine) Aggregate(activities []store.Activity) (map[string]AggregationDTO, MonthlyAggregations) {
	byType, byMonth := groupActivities(activities)

	now := SystemClock
	if e.Now != nil {
		now = e.Now
	}
	current := now()

	aggregations := make(map[string]AggregationDTO, len(byType))
	for activityType, group := range byType {
		basic := AggregateBasic(group)
		adv := ComputeAdvanced(group, current)
		aggregations[activityType] = AggregationDTO{
			Basic:    basic,
			Advanced: &adv,
			Scores:   CalculateScoreSummary(basic, &adv, e.Scoring),
		}
	}

	monthly := make(MonthlyAggregations, len(byMonth))
	for activityType, months := range byMonth {
		monthly[activityType] = make(map[string]BasicAggregation, len(months))
		for month, group := range months {
			monthly[activityType][month] = AggregateBasic(group)
		}
	}

	return aggregations, monthly
}

// groupActivities builds both partitions in one pass. Groups hold copies,
// so callers never see aliasing between partitions.
func groupActivities(activities []store.Activity) (map[string][]store.Activity, map[string]map[string][]store.Activity) {
	byType := make(map[string][]store.Activity)
	byMonth := make(map[string]map[string][]store.Activity)

	for _, a := range activities {
		byType[a.ActivityType] = append(byType[a.ActivityType], a)

		months, ok := byMonth[a.ActivityType]
		if !ok {
			months = make(map[string][]store.Activity)
			byMonth[a.ActivityType] = months
		}
		key := MonthKey(a)
		months[key] = append(months[key], a)
	}

	return byType, byMonth
}

// MonthKey returns the "YYYY-MM" bucket an activity belongs to
func MonthKey(a store.Activity) string {
	return a.Date.Format(MonthKeyLayout)
}
