package analysis

import (
	"math"

	"activity-insights/internal/store"
)

// AggregateBasic reduces a group of same-type activities into totals, averages and bests
func AggregateBasic(activities []store.Activity) BasicAggregation {
	agg := BasicAggregation{TotalActivities: len(activities)}
	if len(activities) == 0 {
		return agg
	}

	// Paces are weighted by distance so long sessions count for more
	var totalSeconds float64
	bestPace := math.Inf(1)
	for _, a := range activities {
		agg.TotalDistance += a.Distance
		totalSeconds += a.AveragePace * a.Distance * SecondsPerMinute
		agg.BestDistance = math.Max(agg.BestDistance, a.Distance)
		bestPace = math.Min(bestPace, a.AveragePace)
	}

	if agg.TotalDistance > 0 {
		agg.AveragePace = EncodePace(totalSeconds / agg.TotalDistance)
	}
	agg.AverageDistance = agg.TotalDistance / float64(agg.TotalActivities)

	// The reported best pace is capped at the average
	agg.BestPace = math.Min(bestPace, agg.AveragePace)

	return agg
}
