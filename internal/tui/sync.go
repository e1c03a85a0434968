package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"activity-insights/internal/service"
)

// SyncModel is the sync screen model
type SyncModel struct {
	syncService *service.SyncService
	userID      uuid.UUID
	syncing     bool
	result      *service.SyncResult
	err         error
	done        bool
}

// NewSyncModel creates a new sync model. ss may be nil.
func NewSyncModel(ss *service.SyncService, userID uuid.UUID) SyncModel {
	return SyncModel{
		syncService: ss,
		userID:      userID,
	}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

// SyncDoneMsg is sent when sync finishes
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (SyncModel, tea.Cmd) {
	switch msg := msg.(type) {
	case SyncDoneMsg:
		m.syncing = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, func() tea.Msg { return SyncCompleteMsg{} }

	case tea.KeyMsg:
		if m.syncService == nil || m.syncing {
			return m, nil
		}
		switch msg.String() {
		case "enter", "s":
			m.syncing = true
			m.done = false
			m.err = nil
			m.result = nil
			return m, m.runSync
		}
	}
	return m, nil
}

func (m SyncModel) runSync() tea.Msg {
	// nil progress channel: the screen only shows the final result
	result, err := m.syncService.SyncUser(context.Background(), m.userID, nil)
	return SyncDoneMsg{Result: result, Err: err}
}

// View renders the sync screen
func (m SyncModel) View() string {
	sections := []string{cardTitleStyle.Render("Strava Sync")}

	if m.syncService == nil {
		sections = append(sections, mutedStyle.Render("\n  Strava not connected. Run 'activity-insights connect' first."))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	switch {
	case m.done:
		sections = append(sections, successStyle.Render("\n  Sync complete!"))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' to go to dashboard"))
	case m.syncing:
		sections = append(sections, m.renderProgress())
	default:
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderStartPrompt() string {
	lines := []string{
		"",
		"  This will sync your Strava activities:",
		"",
		"  1. Fetch activities since the last sync",
		fmt.Sprintf("  2. Download GPS tracks (up to %d per run)", service.StreamBatchLimit),
		"  3. Recompute aggregations and scores",
		"",
		statusStyle.Render("  Press 's' or Enter to start sync"),
	}
	return strings.Join(lines, "\n")
}

func (m SyncModel) renderProgress() string {
	lines := []string{
		"",
		"  Syncing with Strava...",
		"",
		statusStyle.Render("  This may take a moment..."),
	}
	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	if m.result == nil {
		return ""
	}

	r := m.result
	lines := []string{""}

	if r.ActivitiesStored > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d activities synced", r.ActivitiesStored)))
	} else {
		lines = append(lines, statusStyle.Render("  No new activities"))
	}
	if r.ActivitiesSkipped > 0 {
		lines = append(lines, statusStyle.Render(fmt.Sprintf("  %d already stored", r.ActivitiesSkipped)))
	}
	if r.StreamsFetched > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d tracks downloaded (%d points)", r.StreamsFetched, r.TrackPoints)))
	}

	if len(r.Errors) > 0 {
		lines = append(lines, "")
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d errors occurred", len(r.Errors))))
	}

	return strings.Join(lines, "\n")
}
