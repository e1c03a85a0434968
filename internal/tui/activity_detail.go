package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/guptarohit/asciigraph"

	"activity-insights/internal/analysis"
	"activity-insights/internal/service"
)

// ActivityDetailModel is the activity detail screen model
type ActivityDetailModel struct {
	queryService *service.QueryService
	units        Units
	activityID   uuid.UUID
	detail       *service.ActivityDetail
	viewport     viewport.Model
	loading      bool
	err          error
	ready        bool
}

// NewActivityDetailModel creates a new activity detail model
func NewActivityDetailModel(qs *service.QueryService, units Units, activityID uuid.UUID, width, height int) ActivityDetailModel {
	m := ActivityDetailModel{
		queryService: qs,
		units:        units,
		activityID:   activityID,
		loading:      true,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6) // Reserve space for header/footer
		m.ready = true
	}

	return m
}

// Init initializes the activity detail screen
func (m ActivityDetailModel) Init() tea.Cmd {
	return m.loadDetail
}

type activityDetailLoadedMsg struct {
	detail *service.ActivityDetail
	err    error
}

func (m ActivityDetailModel) loadDetail() tea.Msg {
	detail, err := m.queryService.ActivityDetail(m.activityID)
	return activityDetailLoadedMsg{detail: detail, err: err}
}

// Update handles messages
func (m ActivityDetailModel) Update(msg tea.Msg) (ActivityDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case activityDetailLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.detail = msg.detail
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.detail != nil {
			m.viewport.SetContent(m.renderContent())
		}
	}

	// Handle viewport scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the activity detail screen
func (m ActivityDetailModel) View() string {
	if m.loading {
		return "\n  Loading activity details..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  esc: back to list  j/k or arrows: scroll")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m ActivityDetailModel) renderContent() string {
	if m.detail == nil {
		return "No data"
	}

	sections := []string{m.renderHeader(), m.renderSummary()}
	if chart := m.renderElevationChart(); chart != "" {
		sections = append(sections, chart)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ActivityDetailModel) renderHeader() string {
	a := m.detail.Activity
	title := cardTitleStyle.Render(displayName(a))

	subtitle := mutedStyle.Render(a.Date.Format("Monday, January 2, 2006 at 3:04 PM") + "  •  " + a.ActivityType)

	stats := fmt.Sprintf("%s  •  %s  •  %s", m.units.FormatDistance(a.Distance), a.Duration, m.units.FormatPace(a.AveragePace))
	statsLine := metricValueStyle.Render(stats)

	return lipgloss.JoinVertical(lipgloss.Left, "", title, subtitle, statsLine, "")
}

func (m ActivityDetailModel) renderSummary() string {
	a := m.detail.Activity

	lines := []string{sectionStyle.Render("Summary")}
	lines = append(lines, "  "+RenderMetric("Average speed", fmt.Sprintf("%.1f km/h", a.AverageSpeed)))
	lines = append(lines, "  "+RenderMetric("Calories", fmt.Sprintf("%.0f kcal", a.Calories)))
	lines = append(lines, "  "+RenderMetric("Climb", fmt.Sprintf("%.0f m", a.Climb)))
	if secs, err := analysis.ParseDuration(a.Duration); err == nil && secs > 0 {
		lines = append(lines, "  "+RenderMetric("Effort", fmt.Sprintf("%.1f kcal/min", a.Calories/(float64(secs)/analysis.SecondsPerMinute))))
	}
	lines = append(lines, "  "+RenderMetric("GPS samples", strconv.Itoa(len(m.detail.TrackPoints))))
	if a.GPSFile != "" {
		lines = append(lines, "  "+RenderMetric("Track file", a.GPSFile))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// renderElevationChart plots elevation along the track in time order
func (m ActivityDetailModel) renderElevationChart() string {
	points := m.detail.TrackPoints
	if len(points) < 5 {
		return ""
	}

	// points arrive newest first
	data := make([]float64, len(points))
	for i, p := range points {
		data[len(points)-1-i] = p.Elevation
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(0),
		asciigraph.Caption("Elevation (m)"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sectionStyle.Render("Elevation"), graph, "")
}
