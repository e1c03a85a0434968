package analysis

import (
	"math"
	"sort"
	"strings"
)

// Level is a rank label derived from an integer score
type Level string

const (
	LevelUnranked Level = "Unranked"
	LevelBronze   Level = "Bronze"
	LevelSilver   Level = "Silver"
	LevelGold     Level = "Gold"
	LevelPlatinum Level = "Platinum"
	LevelTitanium Level = "Titanium"
)

// levelThresholds lists the lower bound of each level, highest first
var levelThresholds = []struct {
	min   int
	level Level
}{
	{1000, LevelTitanium},
	{700, LevelPlatinum},
	{500, LevelGold},
	{300, LevelSilver},
	{100, LevelBronze},
}

// ClassifyScore maps a score to its level. Used for single metrics and totals alike.
func ClassifyScore(score int) Level {
	for _, t := range levelThresholds {
		if score >= t.min {
			return t.level
		}
	}
	return LevelUnranked
}

// NextLevel returns the level above score's and the points still needed.
// ok is false at the top level.
func NextLevel(score int) (next Level, needed int, ok bool) {
	for i := len(levelThresholds) - 1; i >= 0; i-- {
		if t := levelThresholds[i]; score < t.min {
			return t.level, t.min - score, true
		}
	}
	return "", 0, false
}

// Metric names a scored statistic
type Metric string

const (
	MetricAveragePace         Metric = "average_pace"
	MetricBestPace            Metric = "best_pace"
	MetricTotalDistance       Metric = "total_distance"
	MetricAverageDistance     Metric = "average_distance"
	MetricBestDistance        Metric = "best_distance"
	MetricTotalActivities     Metric = "total_activities"
	MetricMaxClimb            Metric = "max_climb"
	MetricLongestStreakDays   Metric = "longest_streak_days"
	MetricLongestStreakWeeks  Metric = "longest_streak_weeks"
	MetricCurrentWeeklyStreak Metric = "current_weekly_streak"
	MetricMaxEffortCalPerMin  Metric = "max_effort_cal_per_min"
	MetricPaceStdDev          Metric = "pace_std_dev"
	MetricMaxDailyCalories    Metric = "max_daily_calories"
)

// Label turns "longest_streak_days" into "Longest streak days"
func (m Metric) Label() string {
	s := strings.ReplaceAll(string(m), "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ScoringRule turns a metric value into points
type ScoringRule struct {
	Base       int     `json:"base"`
	Multiplier float64 `json:"multiplier"`
}

// formulaKind selects how a rule is applied to a value
type formulaKind int

const (
	// base + (ReferencePace - v) * multiplier; faster paces score higher
	formulaPace formulaKind = iota
	// base + v * multiplier
	formulaReward
	// base + max(MaxRewardedPaceStdDev - v, 0) * multiplier; steadier is better
	formulaInverse
)

// formula binds a metric to its value source and formula.
// Exactly one of basic/advanced is set.
type formula struct {
	kind     formulaKind
	basic    func(BasicAggregation) float64
	advanced func(AdvancedAggregation) float64
}

var formulas = map[Metric]formula{
	MetricAveragePace: {kind: formulaPace, basic: func(b BasicAggregation) float64 { return b.AveragePace }},
	MetricBestPace:    {kind: formulaPace, basic: func(b BasicAggregation) float64 { return b.BestPace }},

	MetricTotalDistance:   {kind: formulaReward, basic: func(b BasicAggregation) float64 { return b.TotalDistance }},
	MetricAverageDistance: {kind: formulaReward, basic: func(b BasicAggregation) float64 { return b.AverageDistance }},
	MetricBestDistance:    {kind: formulaReward, basic: func(b BasicAggregation) float64 { return b.BestDistance }},
	MetricTotalActivities: {kind: formulaReward, basic: func(b BasicAggregation) float64 { return float64(b.TotalActivities) }},

	MetricMaxClimb:            {kind: formulaReward, advanced: func(a AdvancedAggregation) float64 { return a.MaxClimb }},
	MetricLongestStreakDays:   {kind: formulaReward, advanced: func(a AdvancedAggregation) float64 { return float64(a.LongestStreakDays) }},
	MetricLongestStreakWeeks:  {kind: formulaReward, advanced: func(a AdvancedAggregation) float64 { return float64(a.LongestStreakWeeks) }},
	MetricCurrentWeeklyStreak: {kind: formulaReward, advanced: func(a AdvancedAggregation) float64 { return float64(a.CurrentWeeklyStreak) }},
	MetricMaxEffortCalPerMin:  {kind: formulaReward, advanced: func(a AdvancedAggregation) float64 { return a.MaxEffortCalPerMin }},
	MetricMaxDailyCalories:    {kind: formulaReward, advanced: func(a AdvancedAggregation) float64 { return a.MaxDailyCalories }},

	MetricPaceStdDev: {kind: formulaInverse, advanced: func(a AdvancedAggregation) float64 { return a.PaceStdDev }},
}

// KnownMetrics returns every metric with a formula, sorted by name
func KnownMetrics() []Metric {
	metrics := make([]Metric, 0, len(formulas))
	for m := range formulas {
		metrics = append(metrics, m)
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i] < metrics[j] })
	return metrics
}

// score computes the unclamped points for m. ok is false when the metric
// is unknown or needs advanced data that is missing.
func (f formula) score(rule ScoringRule, basic BasicAggregation, adv *AdvancedAggregation) (float64, bool) {
	var v float64
	switch {
	case f.basic != nil:
		v = f.basic(basic)
	case f.advanced != nil && adv != nil:
		v = f.advanced(*adv)
	default:
		return 0, false
	}

	base := float64(rule.Base)
	switch f.kind {
	case formulaPace:
		return base + (ReferencePace-v)*rule.Multiplier, true
	case formulaReward:
		return base + v*rule.Multiplier, true
	case formulaInverse:
		return base + math.Max(MaxRewardedPaceStdDev-v, 0)*rule.Multiplier, true
	}
	return 0, false
}

// ScoringConfig maps each scored metric to its rule. Treat it as read-only;
// WithOverrides returns a modified copy.
type ScoringConfig struct {
	rules map[Metric]ScoringRule
}

// NewScoringConfig builds a config from an explicit rule table
func NewScoringConfig(rules map[Metric]ScoringRule) ScoringConfig {
	cp := make(map[Metric]ScoringRule, len(rules))
	for m, r := range rules {
		cp[m] = r
	}
	return ScoringConfig{rules: cp}
}

// DefaultScoringConfig returns the stock rule table
func DefaultScoringConfig() ScoringConfig {
	return NewScoringConfig(map[Metric]ScoringRule{
		MetricAveragePace:         {Base: 100, Multiplier: 250.0},
		MetricBestPace:            {Base: 100, Multiplier: 300.0},
		MetricTotalDistance:       {Base: 0, Multiplier: 0.5},
		MetricAverageDistance:     {Base: 0, Multiplier: 50.0},
		MetricBestDistance:        {Base: 100, Multiplier: 25.0},
		MetricMaxClimb:            {Base: 0, Multiplier: 1.0},
		MetricLongestStreakDays:   {Base: 0, Multiplier: 100.0},
		MetricLongestStreakWeeks:  {Base: 0, Multiplier: 50.0},
		MetricCurrentWeeklyStreak: {Base: 0, Multiplier: 50.0},
		MetricMaxEffortCalPerMin:  {Base: 0, Multiplier: 20.0},
		MetricPaceStdDev:          {Base: 0, Multiplier: 200.0},
		MetricMaxDailyCalories:    {Base: 0, Multiplier: 0.25},
		MetricTotalActivities:     {Base: 0, Multiplier: 5.0},
	})
}

// WithOverrides returns a copy with the given rules added or replaced.
// Names without a known formula are kept and score 0.
func (c ScoringConfig) WithOverrides(overrides map[string]ScoringRule) ScoringConfig {
	merged := NewScoringConfig(c.rules)
	for name, r := range overrides {
		merged.rules[Metric(name)] = r
	}
	return merged
}

// Rule returns the rule configured for m
func (c ScoringConfig) Rule(m Metric) (ScoringRule, bool) {
	r, ok := c.rules[m]
	return r, ok
}

// Metrics returns the configured metric names, sorted
func (c ScoringConfig) Metrics() []Metric {
	metrics := make([]Metric, 0, len(c.rules))
	for m := range c.rules {
		metrics = append(metrics, m)
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i] < metrics[j] })
	return metrics
}

// CalculateScores scores every configured metric. Each score is clamped to
// [MinMetricScore, MaxMetricScore] and truncated.
func CalculateScores(basic BasicAggregation, adv *AdvancedAggregation, cfg ScoringConfig) map[Metric]int {
	scores := make(map[Metric]int, len(cfg.rules))
	for m, rule := range cfg.rules {
		raw, ok := formulas[m].score(rule, basic, adv)
		if !ok {
			scores[m] = 0
			continue
		}
		scores[m] = clampScore(raw)
	}
	return scores
}

// CalculateScoreSummary scores every metric and ranks the unclamped total
func CalculateScoreSummary(basic BasicAggregation, adv *AdvancedAggregation, cfg ScoringConfig) ScoreSummary {
	scores := CalculateScores(basic, adv, cfg)

	summary := ScoreSummary{Breakdown: make(map[Metric]ScoreDetail, len(scores))}
	for m, s := range scores {
		summary.TotalScore += s
		summary.Breakdown[m] = ScoreDetail{Score: s, Level: ClassifyScore(s)}
	}
	summary.Level = ClassifyScore(summary.TotalScore)
	return summary
}

func clampScore(raw float64) int {
	if math.IsNaN(raw) {
		return MinMetricScore
	}
	clamped := math.Max(MinMetricScore, math.Min(MaxMetricScore, raw))
	return int(clamped)
}
