package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"activity-insights/internal/analysis"
	"activity-insights/internal/service"
	"activity-insights/internal/store"
)

const recentActivityCount = 5

// DashboardModel shows totals, rank and monthly trend for one activity type at a time
type DashboardModel struct {
	units    Units
	report   *service.ActivitiesReport
	types    []string
	selected int
	loading  bool
	err      error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(units Units) DashboardModel {
	return DashboardModel{units: units, loading: true}
}

// SetReport replaces the data shown, keeping the selected type when it still exists
func (m DashboardModel) SetReport(msg reportLoadedMsg) DashboardModel {
	m.loading = false
	m.err = msg.err
	m.report = msg.report
	m.selected = reselect(m.types, m.selected, msg.types)
	m.types = msg.types
	return m
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		m.selected = cycleSelection(msg.String(), m.selected, len(m.types))
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.types) == 0 {
		return "\n  No activities yet. Import an export or press 's' to sync with Strava."
	}

	activityType := m.types[m.selected]
	agg := m.report.Aggregation[activityType]

	var sections []string
	sections = append(sections, renderTypeTabs(m.types, m.selected))

	// Top row: totals and rank side by side
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderTotalsCard(agg.Basic), "  ", m.renderRankCard(agg.Scores))
	sections = append(sections, topRow)

	if chart := m.renderMonthlyChart(activityType); chart != "" {
		sections = append(sections, chart)
	}

	sections = append(sections, m.renderRecentActivities(activityType))
	sections = append(sections, statusStyle.Render("tab/shift+tab: switch type  r: refresh  s: sync  3: highlights"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderTotalsCard(b analysis.BasicAggregation) string {
	title := cardTitleStyle.Render("Totals")

	lines := []string{
		RenderMetric("Activities", humanize.Comma(int64(b.TotalActivities))),
		RenderMetric("Total distance", humanizeDistance(m.units, b.TotalDistance)),
		RenderMetric("Average distance", m.units.FormatDistance(b.AverageDistance)),
		RenderMetric("Longest", m.units.FormatDistance(b.BestDistance)),
		RenderMetric("Average pace", m.units.FormatPace(b.AveragePace)),
		RenderMetric("Best pace", m.units.FormatPace(b.BestPace)),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderRankCard(s analysis.ScoreSummary) string {
	title := cardTitleStyle.Render("Rank")

	lines := []string{
		RenderMetric("Level", RenderLevel(s.Level)),
		RenderMetric("Total score", humanize.Comma(int64(s.TotalScore))),
	}
	if next, needed, ok := analysis.NextLevel(s.TotalScore); ok {
		lines = append(lines, RenderMetric("Next level", fmt.Sprintf("%s in %s pts", next, humanize.Comma(int64(needed)))))
	} else {
		lines = append(lines, RenderMetric("Next level", "top rank reached"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

// renderMonthlyChart plots distance per month; it needs at least two months
func (m DashboardModel) renderMonthlyChart(activityType string) string {
	months := m.report.TimeAggregations[activityType]
	if len(months) < 2 {
		return ""
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := make([]float64, len(keys))
	for i, k := range keys {
		data[i] = m.units.Distance(months[k].TotalDistance)
	}

	title := cardTitleStyle.Render(fmt.Sprintf("Monthly Distance (%s)", m.units.DistanceLabel()))
	graph := asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(1),
		asciigraph.Caption(keys[0]+" to "+keys[len(keys)-1]),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m DashboardModel) renderRecentActivities(activityType string) string {
	title := cardTitleStyle.Render("Recent Activities")

	var recent []store.Activity
	for _, a := range m.report.Activities {
		if a.ActivityType == activityType {
			recent = append(recent, a)
			if len(recent) == recentActivityCount {
				break
			}
		}
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-24s  %10s  %10s  %8s",
		"Date", "Name", "Distance", "Pace", "Duration"))

	rows := []string{header}
	for _, a := range recent {
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-10s  %-24s  %10s  %10s  %8s",
			a.Date.Format("Jan 02"),
			truncateName(displayName(a), 24),
			m.units.FormatDistance(a.Distance),
			m.units.FormatPace(a.AveragePace),
			a.Duration,
		)))
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

func renderTypeTabs(types []string, selected int) string {
	tabs := make([]string, len(types))
	for i, t := range types {
		if i == selected {
			tabs[i] = navActiveStyle.Render("[" + t + "]")
		} else {
			tabs[i] = navInactiveStyle.Render(" " + t + " ")
		}
	}
	return strings.Join(tabs, " ")
}

// cycleSelection moves the type selection for tab/shift+tab and the arrow keys
func cycleSelection(key string, selected, n int) int {
	if n == 0 {
		return 0
	}
	switch key {
	case "tab", "right", "l":
		return (selected + 1) % n
	case "shift+tab", "left", "h":
		return (selected - 1 + n) % n
	}
	return selected
}

// reselect keeps the previously selected type selected after a reload
func reselect(oldTypes []string, selected int, newTypes []string) int {
	if selected < len(oldTypes) {
		for i, t := range newTypes {
			if t == oldTypes[selected] {
				return i
			}
		}
	}
	return 0
}

func displayName(a store.Activity) string {
	if a.Name != "" {
		return a.Name
	}
	return a.ActivityType
}

// humanizeDistance uses thousands separators for large totals
func humanizeDistance(u Units, km float64) string {
	return humanize.CommafWithDigits(u.Distance(km), 1) + " " + u.DistanceLabel()
}
