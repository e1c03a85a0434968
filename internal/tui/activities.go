package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"activity-insights/internal/store"
)

// ActivitiesModel is the activities list screen model
type ActivitiesModel struct {
	units      Units
	activities []store.Activity
	cursor     int
	offset     int
	pageSize   int
	loading    bool
	err        error
}

// NewActivitiesModel creates a new activities model
func NewActivitiesModel(units Units) ActivitiesModel {
	return ActivitiesModel{
		units:    units,
		pageSize: 15,
		loading:  true,
	}
}

// SetReport replaces the listed activities
func (m ActivitiesModel) SetReport(msg reportLoadedMsg) ActivitiesModel {
	m.loading = false
	m.err = msg.err
	if msg.report != nil {
		m.activities = msg.report.Activities
	}
	if m.offset+m.cursor >= len(m.activities) {
		m.offset, m.cursor = 0, 0
	}
	return m
}

func (m ActivitiesModel) page() []store.Activity {
	end := min(m.offset+m.pageSize, len(m.activities))
	return m.activities[m.offset:end]
}

// Update handles messages
func (m ActivitiesModel) Update(msg tea.Msg) (ActivitiesModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	page := m.page()
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		} else if m.offset > 0 {
			// Go to previous page
			m.offset -= m.pageSize
			m.cursor = m.pageSize - 1
		}
	case "down", "j":
		if m.cursor < len(page)-1 {
			m.cursor++
		} else if m.offset+len(page) < len(m.activities) {
			// Go to next page
			m.offset += m.pageSize
			m.cursor = 0
		}
	case "pgup":
		if m.offset > 0 {
			m.offset = max(0, m.offset-m.pageSize)
			m.cursor = 0
		}
	case "pgdown":
		if m.offset+m.pageSize < len(m.activities) {
			m.offset += m.pageSize
			m.cursor = 0
		}
	case "enter":
		if m.cursor < len(page) {
			activityID := page[m.cursor].ID
			return m, func() tea.Msg {
				return OpenActivityDetailMsg{ActivityID: activityID}
			}
		}
	}
	return m, nil
}

// View renders the activities list
func (m ActivitiesModel) View() string {
	if m.loading {
		return "\n  Loading activities..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.activities) == 0 {
		return "\n  No activities found. Import an export or press 's' to sync with Strava."
	}

	var sections []string
	page := m.page()

	// Title with pagination info
	title := cardTitleStyle.Render(fmt.Sprintf("Activities (%d-%d of %d)", m.offset+1, m.offset+len(page), len(m.activities)))
	sections = append(sections, title)

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-10s  %-10s  %-24s  %10s  %10s  %8s  %6s",
		"Date", "Type", "Name", "Distance", "Pace", "Duration", "kcal"))
	sections = append(sections, header)

	for i, a := range page {
		// Cursor indicator
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		row := fmt.Sprintf("%s%-10s  %-10s  %-24s  %10s  %10s  %8s  %6.0f",
			cursor,
			a.Date.Format("2006-01-02"),
			truncateName(a.ActivityType, 10),
			truncateName(displayName(a), 24),
			m.units.FormatDistance(a.Distance),
			m.units.FormatPace(a.AveragePace),
			a.Duration,
			a.Calories,
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	help := statusStyle.Render("\n  enter: view details  j/k: navigate  pgup/pgdn: page  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
