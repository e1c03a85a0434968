package tui

import (
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"activity-insights/internal/service"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenActivities
	ScreenActivityDetail
	ScreenHighlights
	ScreenSync
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	dashboard      DashboardModel
	activities     ActivitiesModel
	activityDetail ActivityDetailModel
	highlights     HighlightsModel
	syncScreen     SyncModel
	help           HelpModel

	// Services
	queryService *service.QueryService
	userID       uuid.UUID
	units        Units

	// Window dimensions
	width  int
	height int

	// Status message
	status string
}

// NewApp creates a new App for one user. syncService may be nil when Strava isn't configured.
func NewApp(queryService *service.QueryService, syncService *service.SyncService, userID uuid.UUID, units Units) *App {
	return &App{
		screen:       ScreenDashboard,
		queryService: queryService,
		userID:       userID,
		units:        units,
		dashboard:    NewDashboardModel(units),
		activities:   NewActivitiesModel(units),
		highlights:   NewHighlightsModel(units),
		syncScreen:   NewSyncModel(syncService, userID),
		help:         NewHelpModel(),
	}
}

// reportLoadedMsg carries a freshly computed report to every screen that shows it
type reportLoadedMsg struct {
	report *service.ActivitiesReport
	types  []string
	err    error
}

// loadReport aggregates all of the user's activities
func (a *App) loadReport() tea.Msg {
	report, err := a.queryService.ActivitiesReport(a.userID, time.Time{}, time.Time{})
	if err != nil {
		return reportLoadedMsg{err: err}
	}

	types := make([]string, 0, len(report.Aggregation))
	for t := range report.Aggregation {
		types = append(types, t)
	}
	sort.Strings(types)
	return reportLoadedMsg{report: report, types: types}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.loadReport
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings (unless in sync mode)
		if a.screen != ScreenSync || !a.syncScreen.syncing {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				a.screen = ScreenDashboard
				return a, nil
			case "2":
				a.screen = ScreenActivities
				return a, nil
			case "3":
				a.screen = ScreenHighlights
				return a, nil
			case "4", "s":
				if a.screen != ScreenSync {
					a.screen = ScreenSync
					return a, a.syncScreen.Init()
				}
				// Let 's' fall through to sync screen when already there
			case "r":
				if a.screen != ScreenActivityDetail {
					a.status = "Refreshing..."
					return a, a.loadReport
				}
			case "?":
				a.prevScreen = a.screen
				a.screen = ScreenHelp
				return a, nil
			case "esc":
				switch a.screen {
				case ScreenHelp:
					a.screen = a.prevScreen
					return a, nil
				case ScreenActivityDetail:
					a.screen = ScreenActivities
					return a, nil
				}
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		var cmd tea.Cmd
		a.highlights, cmd = a.highlights.Update(msg)
		if a.screen == ScreenActivityDetail {
			var detailCmd tea.Cmd
			a.activityDetail, detailCmd = a.activityDetail.Update(msg)
			cmd = tea.Batch(cmd, detailCmd)
		}
		return a, cmd

	case reportLoadedMsg:
		a.status = ""
		a.dashboard = a.dashboard.SetReport(msg)
		a.activities = a.activities.SetReport(msg)
		a.highlights = a.highlights.SetReport(msg)
		return a, nil

	case OpenActivityDetailMsg:
		a.screen = ScreenActivityDetail
		a.activityDetail = NewActivityDetailModel(a.queryService, a.units, msg.ActivityID, a.width, a.height)
		return a, a.activityDetail.Init()

	case SyncCompleteMsg:
		// Refresh every screen after sync
		return a, a.loadReport
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	case ScreenActivities:
		a.activities, cmd = a.activities.Update(msg)
	case ScreenActivityDetail:
		a.activityDetail, cmd = a.activityDetail.Update(msg)
	case ScreenHighlights:
		a.highlights, cmd = a.highlights.Update(msg)
	case ScreenSync:
		a.syncScreen, cmd = a.syncScreen.Update(msg)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	header := headerStyle.Render("Activity Insights")
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenActivities:
		content = a.activities.View()
	case ScreenActivityDetail:
		content = a.activityDetail.View()
	case ScreenHighlights:
		content = a.highlights.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content, a.renderFooter())
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Dashboard", ScreenDashboard},
		{"2", "Activities", ScreenActivities},
		{"3", "Highlights", ScreenHighlights},
		{"4", "Sync", ScreenSync},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		active := a.screen == item.screen ||
			(a.screen == ScreenActivityDetail && item.screen == ScreenActivities)
		if active {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}

// SyncCompleteMsg is sent when sync finishes
type SyncCompleteMsg struct{}

// OpenActivityDetailMsg opens the detail screen for an activity
type OpenActivityDetailMsg struct {
	ActivityID uuid.UUID
}
