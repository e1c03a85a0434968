package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"activity-insights/internal/analysis"
	"activity-insights/internal/service"
)

const scoreBarWidth = 30

// HighlightsModel shows streaks, highlight statistics and the score breakdown
// of the selected activity type
type HighlightsModel struct {
	units    Units
	report   *service.ActivitiesReport
	types    []string
	selected int
	viewport viewport.Model
	ready    bool
	loading  bool
	err      error
}

// NewHighlightsModel creates a new highlights model
func NewHighlightsModel(units Units) HighlightsModel {
	return HighlightsModel{units: units, loading: true}
}

// SetReport replaces the data shown
func (m HighlightsModel) SetReport(msg reportLoadedMsg) HighlightsModel {
	m.loading = false
	m.err = msg.err
	m.report = msg.report
	m.selected = reselect(m.types, m.selected, msg.types)
	m.types = msg.types
	m.refresh()
	return m
}

// Update handles messages
func (m HighlightsModel) Update(msg tea.Msg) (HighlightsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Reserve space for header, nav and type tabs
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-8)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 8
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if next := cycleSelection(msg.String(), m.selected, len(m.types)); next != m.selected {
			m.selected = next
			m.refresh()
			m.viewport.GotoTop()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *HighlightsModel) refresh() {
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
}

// View renders the highlights screen
func (m HighlightsModel) View() string {
	if m.loading {
		return "\n  Loading highlights..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if len(m.types) == 0 {
		return "\n  No activities yet."
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  tab/←/→: activity type  j/k: scroll")
	return lipgloss.JoinVertical(lipgloss.Left, renderTypeTabs(m.types, m.selected), m.viewport.View(), footer)
}

func (m HighlightsModel) renderContent() string {
	if m.report == nil || len(m.types) == 0 {
		return ""
	}

	agg := m.report.Aggregation[m.types[m.selected]]
	sections := []string{}
	if agg.Advanced != nil {
		sections = append(sections, m.renderStreaks(*agg.Advanced), m.renderStats(*agg.Advanced))
	}
	sections = append(sections, m.renderScores(agg.Scores))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m HighlightsModel) renderStreaks(a analysis.AdvancedAggregation) string {
	lines := []string{sectionStyle.Render("Streaks")}
	lines = append(lines, "  "+RenderMetric("Longest daily", fmt.Sprintf("%d days", a.LongestStreakDays)))
	lines = append(lines, "  "+RenderMetric("Longest weekly", fmt.Sprintf("%d weeks", a.LongestStreakWeeks)))
	lines = append(lines, "  "+RenderMetric("Current weekly", fmt.Sprintf("%d weeks", a.CurrentWeeklyStreak)))
	return strings.Join(lines, "\n")
}

func (m HighlightsModel) renderStats(a analysis.AdvancedAggregation) string {
	fastest := make([]string, len(a.FastestWeekdays))
	for i, wd := range a.FastestWeekdays {
		fastest[i] = fmt.Sprintf("%s %s", wd.Weekday, m.units.FormatPace(wd.Pace))
	}
	speeds := make([]string, len(a.TopSpeeds))
	for i, s := range a.TopSpeeds {
		speeds[i] = fmt.Sprintf("%.1f", s)
	}

	lines := []string{"", sectionStyle.Render("Highlights")}
	rows := []struct{ label, value string }{
		{"Fastest days", orDash(strings.Join(fastest, ", "))},
		{"Favourite day", derefOr(a.MostFrequentWeekday)},
		{"Most skipped", derefOr(a.MostSkippedWeekday)},
		{"Speed demon hour", derefOr(a.SpeedDemonHour)},
		{"Steadiest week", derefOr(a.MostConsistentWeek)},
		{"Sweatiest week", derefOr(a.SweatiestWeek)},
		{"Top speeds", orDash(strings.Join(speeds, ", ")) + " km/h"},
		{"Biggest climb", fmt.Sprintf("%.0f m", a.MaxClimb)},
		{"Max daily burn", fmt.Sprintf("%.0f kcal", a.MaxDailyCalories)},
		{"Max effort", fmt.Sprintf("%.1f kcal/min", a.MaxEffortCalPerMin)},
		{"Slowest pace", m.units.FormatPace(a.SlowestPace)},
		{"Pace std dev", fmt.Sprintf("%.2f", a.PaceStdDev)},
		{"Weekend share", fmt.Sprintf("%.0f%%", a.WeekendRatio*100)},
	}
	for _, r := range rows {
		lines = append(lines, "  "+RenderMetric(r.label, r.value))
	}
	return strings.Join(lines, "\n")
}

func (m HighlightsModel) renderScores(s analysis.ScoreSummary) string {
	lines := []string{"", sectionStyle.Render(fmt.Sprintf("Score breakdown  %d  ", s.TotalScore) + RenderLevel(s.Level))}

	for _, metric := range analysis.KnownMetrics() {
		detail, ok := s.Breakdown[metric]
		if !ok {
			continue
		}
		bar := RenderProgressBar(float64(detail.Score)/analysis.MaxMetricScore, scoreBarWidth)
		lines = append(lines, fmt.Sprintf("  %-24s %s %4d  %s", metric.Label(), bar, detail.Score, RenderLevel(detail.Level)))
	}
	return strings.Join(lines, "\n")
}

func derefOr(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
