package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"activity-insights/internal/store"
)

// weekdayOrder fixes iteration order so ties resolve the same way on every run
var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// paceBucket accumulates paces for a calendar bucket (weekday, hour, ...)
type paceBucket struct {
	sum   float64
	count int
}

func (b paceBucket) mean() float64 {
	if b.count == 0 {
		return 0
	}
	return b.sum / float64(b.count)
}

// ComputeAdvanced derives streaks, calendar buckets and highlight statistics
// from a group of same-type activities. now anchors the current weekly streak.
func ComputeAdvanced(activities []store.Activity, now time.Time) AdvancedAggregation {
	adv := AdvancedAggregation{
		FastestWeekdays: []WeekdayPace{},
		TopSpeeds:       []float64{},
	}
	if len(activities) == 0 {
		return adv
	}

	var (
		days         = make(map[time.Time]bool)
		weeks        = make(map[ISOWeek]bool)
		byWeekday    = make(map[time.Weekday]paceBucket)
		byHour       = make(map[int]paceBucket)
		weekPaces    = make(map[ISOWeek][]float64)
		weekCalories = make(map[ISOWeek]float64)
		dayCalories  = make(map[time.Time]float64)
		speeds       = make([]float64, 0, len(activities))
		paces        = make([]float64, 0, len(activities))
		weekend      int
	)

	for _, a := range activities {
		day := civilDay(a.Date)
		week := WeekOf(a.Date)

		days[day] = true
		weeks[week] = true

		wd := byWeekday[a.Date.Weekday()]
		wd.sum += a.AveragePace
		wd.count++
		byWeekday[a.Date.Weekday()] = wd

		hr := byHour[a.Date.Hour()]
		hr.sum += a.AveragePace
		hr.count++
		byHour[a.Date.Hour()] = hr

		weekPaces[week] = append(weekPaces[week], a.AveragePace)
		weekCalories[week] += a.Calories
		dayCalories[day] += a.Calories

		speeds = append(speeds, a.AverageSpeed)
		paces = append(paces, a.AveragePace)

		adv.MaxClimb = math.Max(adv.MaxClimb, a.Climb)
		adv.SlowestPace = math.Max(adv.SlowestPace, a.AveragePace)

		if isWeekend(a.Date) {
			weekend++
		}

		if perMin, ok := caloriesPerMinute(a); ok {
			adv.MaxEffortCalPerMin = math.Max(adv.MaxEffortCalPerMin, perMin)
		}
	}

	sortedDays := sortedDayKeys(days)
	sortedWeeks := sortedWeekKeys(weeks)

	adv.LongestStreakDays = longestDayStreak(sortedDays)
	adv.LongestStreakWeeks = longestWeekStreak(sortedWeeks)
	adv.CurrentWeeklyStreak = currentWeeklyStreak(weeks, now)

	adv.FastestWeekdays = fastestWeekdays(byWeekday, TopWeekdayCount)
	adv.MostFrequentWeekday, adv.MostSkippedWeekday = weekdayFrequency(byWeekday)
	adv.SpeedDemonHour = speedDemonHour(byHour)

	adv.MostConsistentWeek = mostConsistentWeek(sortedWeeks, weekPaces)
	adv.SweatiestWeek = sweatiestWeek(sortedWeeks, weekCalories)

	for _, cal := range dayCalories {
		adv.MaxDailyCalories = math.Max(adv.MaxDailyCalories, cal)
	}

	adv.TopSpeeds = topValues(speeds, TopSpeedCount)
	adv.WeekendRatio = float64(weekend) / float64(len(activities))
	adv.PaceStdDev = stdDev(paces)

	return adv
}

// longestDayStreak counts the longest run of consecutive calendar days.
// A run needs at least two days; isolated days leave the streak at 0.
func longestDayStreak(days []time.Time) int {
	longest, current := 0, 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
			current++
			longest = max(longest, current)
		} else {
			current = 1
		}
	}
	return longest
}

// longestWeekStreak counts the longest run of consecutive ISO weeks
func longestWeekStreak(weeks []ISOWeek) int {
	longest, current := 0, 1
	for i := 1; i < len(weeks); i++ {
		if weeks[i-1].Next() == weeks[i] {
			current++
			longest = max(longest, current)
		} else {
			current = 1
		}
	}
	return longest
}

// currentWeeklyStreak walks back from the week containing now while each week has activity.
// Activity dates are naive local times, so now is read on its own wall clock, not in UTC.
func currentWeeklyStreak(weeks map[ISOWeek]bool, now time.Time) int {
	streak := 0
	for w := WeekOf(now); weeks[w]; w = w.Prev() {
		streak++
	}
	return streak
}

func fastestWeekdays(byWeekday map[time.Weekday]paceBucket, limit int) []WeekdayPace {
	result := make([]WeekdayPace, 0, len(byWeekday))
	for _, d := range weekdayOrder {
		if b, ok := byWeekday[d]; ok {
			result = append(result, WeekdayPace{Weekday: weekdayName(d), Pace: b.mean()})
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Pace < result[j].Pace
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

// weekdayFrequency returns the weekdays with the most and fewest activities
func weekdayFrequency(byWeekday map[time.Weekday]paceBucket) (most, least *string) {
	mostCount, leastCount := 0, math.MaxInt
	for _, d := range weekdayOrder {
		b, ok := byWeekday[d]
		if !ok {
			continue
		}
		name := weekdayName(d)
		if b.count > mostCount {
			mostCount = b.count
			most = &name
		}
		if b.count < leastCount {
			leastCount = b.count
			least = &name
		}
	}
	return most, least
}

// speedDemonHour labels the hour of day with the lowest mean pace
func speedDemonHour(byHour map[int]paceBucket) *string {
	bestHour, bestPace := -1, math.Inf(1)
	for h := 0; h < 24; h++ {
		b, ok := byHour[h]
		if !ok {
			continue
		}
		if p := b.mean(); p < bestPace {
			bestHour, bestPace = h, p
		}
	}
	if bestHour < 0 {
		return nil
	}
	label := fmt.Sprintf("%02d:00", bestHour)
	return &label
}

// mostConsistentWeek labels the week whose paces have the lowest population variance
func mostConsistentWeek(weeks []ISOWeek, weekPaces map[ISOWeek][]float64) *string {
	var best *ISOWeek
	bestVar := math.Inf(1)
	for i := range weeks {
		if v := variance(weekPaces[weeks[i]]); v < bestVar {
			bestVar = v
			best = &weeks[i]
		}
	}
	if best == nil {
		return nil
	}
	label := best.String()
	return &label
}

// sweatiestWeek labels the week with the highest total calories
func sweatiestWeek(weeks []ISOWeek, weekCalories map[ISOWeek]float64) *string {
	var best *ISOWeek
	bestCal := math.Inf(-1)
	for i := range weeks {
		if c := weekCalories[weeks[i]]; c > bestCal {
			bestCal = c
			best = &weeks[i]
		}
	}
	if best == nil {
		return nil
	}
	label := best.String()
	return &label
}

// caloriesPerMinute skips activities whose duration is unparsable or zero
func caloriesPerMinute(a store.Activity) (float64, bool) {
	seconds, err := ParseDuration(a.Duration)
	if err != nil || seconds <= 0 {
		return 0, false
	}
	return a.Calories / (float64(seconds) / SecondsPerMinute), true
}

// topValues returns up to n values in descending order without touching the input
func topValues(values []float64, n int) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance is the population variance (divides by N)
func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	return math.Sqrt(variance(values))
}

// civilDay drops the time of day, keeping the naive calendar date
func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// weekdayName returns the short English name, e.g. "Mon"
func weekdayName(d time.Weekday) string {
	return d.String()[:3]
}

func sortedDayKeys(days map[time.Time]bool) []time.Time {
	keys := make([]time.Time, 0, len(days))
	for d := range days {
		keys = append(keys, d)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Before(keys[j])
	})
	return keys
}

func sortedWeekKeys(weeks map[ISOWeek]bool) []ISOWeek {
	keys := make([]ISOWeek, 0, len(weeks))
	for w := range weeks {
		keys = append(keys, w)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Before(keys[j])
	})
	return keys
}
