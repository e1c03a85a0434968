package analysis

import (
	"math"
	"reflect"
	"testing"
	"time"

	"activity-insights/internal/store"
)

func sampleActivities() []store.Activity {
	ride := run(at(2024, time.January, 20, 9), 40, 2.0)
	ride.ActivityType = "Cycling"
	ride.AverageSpeed = 30

	return []store.Activity{
		run(at(2024, time.January, 1, 7), 5, 5.30),
		run(at(2024, time.January, 2, 7), 8, 5.10),
		run(at(2024, time.February, 3, 7), 10.5, 5.45),
		run(at(2024, time.March, 15, 18), 21.1, 5.55),
		ride,
	}
}

func TestAggregateEmpty(t *testing.T) {
	engine := NewEngine(DefaultScoringConfig(), fixedClock(at(2024, time.January, 1, 0)))

	aggs, monthly := engine.Aggregate(nil)
	if aggs == nil || monthly == nil {
		t.Fatal("expected non-nil empty maps")
	}
	if len(aggs) != 0 || len(monthly) != 0 {
		t.Errorf("expected empty results, got %d types and %d monthly", len(aggs), len(monthly))
	}
}

func TestAggregateGroupsByTypeAndMonth(t *testing.T) {
	engine := NewEngine(DefaultScoringConfig(), fixedClock(at(2024, time.March, 16, 12)))

	aggs, monthly := engine.Aggregate(sampleActivities())

	if len(aggs) != 2 {
		t.Fatalf("len(aggs) = %d, want 2", len(aggs))
	}
	running, ok := aggs["Running"]
	if !ok {
		t.Fatal("missing Running aggregation")
	}
	if running.Basic.TotalActivities != 4 {
		t.Errorf("Running TotalActivities = %d, want 4", running.Basic.TotalActivities)
	}
	if running.Advanced == nil {
		t.Fatal("Running Advanced is nil")
	}
	if running.Advanced.CurrentWeeklyStreak != 1 {
		t.Errorf("CurrentWeeklyStreak = %d, want 1", running.Advanced.CurrentWeeklyStreak)
	}
	if len(running.Scores.Breakdown) != 13 {
		t.Errorf("len(Breakdown) = %d, want 13", len(running.Scores.Breakdown))
	}

	wantMonths := []string{"2024-01", "2024-02", "2024-03"}
	for _, m := range wantMonths {
		if _, ok := monthly["Running"][m]; !ok {
			t.Errorf("missing Running month %s", m)
		}
	}
	if len(monthly["Cycling"]) != 1 {
		t.Errorf("Cycling months = %d, want 1", len(monthly["Cycling"]))
	}
}

func TestMonthlyTotalsSumToTypeTotals(t *testing.T) {
	engine := NewEngine(DefaultScoringConfig(), fixedClock(at(2024, time.June, 1, 0)))

	aggs, monthly := engine.Aggregate(sampleActivities())

	for activityType, agg := range aggs {
		var distance float64
		var count int
		for _, m := range monthly[activityType] {
			distance += m.TotalDistance
			count += m.TotalActivities
		}
		if math.Abs(distance-agg.Basic.TotalDistance) > 1e-9 {
			t.Errorf("%s monthly distance %v != total %v", activityType, distance, agg.Basic.TotalDistance)
		}
		if count != agg.Basic.TotalActivities {
			t.Errorf("%s monthly count %d != total %d", activityType, count, agg.Basic.TotalActivities)
		}
	}
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	input := sampleActivities()
	snapshot := append([]store.Activity(nil), input...)

	NewEngine(DefaultScoringConfig(), fixedClock(at(2024, time.June, 1, 0))).Aggregate(input)

	if !reflect.DeepEqual(input, snapshot) {
		t.Error("Aggregate modified its input")
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	engine := NewEngine(DefaultScoringConfig(), fixedClock(at(2024, time.June, 1, 0)))

	first, firstMonthly := engine.Aggregate(sampleActivities())
	second, secondMonthly := engine.Aggregate(sampleActivities())

	if !reflect.DeepEqual(first, second) || !reflect.DeepEqual(firstMonthly, secondMonthly) {
		t.Error("repeated aggregation produced different results")
	}
}

func TestNewEngineDefaultsClock(t *testing.T) {
	engine := NewEngine(DefaultScoringConfig(), nil)
	if engine.Now == nil {
		t.Fatal("expected SystemClock fallback")
	}
}

func TestMonthKey(t *testing.T) {
	if got := MonthKey(run(at(2024, time.March, 9, 7), 5, 5.0)); got != "2024-03" {
		t.Errorf("MonthKey = %q, want 2024-03", got)
	}
}
