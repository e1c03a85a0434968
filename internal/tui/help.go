package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"activity-insights/internal/analysis"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// View renders the help screen
func (m HelpModel) View() string {
	sections := []string{cardTitleStyle.Render("Keyboard Shortcuts")}

	sections = append(sections, m.renderSection("Navigation", []keyHelp{
		{"1", "Dashboard"},
		{"2", "Activities list"},
		{"3", "Highlights and scores"},
		{"4 or s", "Sync screen"},
		{"?", "Help (this screen)"},
		{"q", "Quit"},
		{"esc", "Back / close help"},
	}))

	sections = append(sections, m.renderSection("Dashboard and Highlights", []keyHelp{
		{"tab / →", "Next activity type"},
		{"shift+tab / ←", "Previous activity type"},
		{"r", "Refresh data"},
	}))

	sections = append(sections, m.renderSection("Activities List", []keyHelp{
		{"j / down", "Move cursor down"},
		{"k / up", "Move cursor up"},
		{"pgdn", "Next page"},
		{"pgup", "Previous page"},
		{"enter", "Activity details"},
	}))

	sections = append(sections, m.renderSection("Sync Screen", []keyHelp{
		{"s / enter", "Start sync"},
	}))

	sections = append(sections, m.renderScoringHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	lines := []string{"", sectionStyle.Render(title)}
	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}
	return strings.Join(lines, "\n")
}

func (m HelpModel) renderScoringHelp() string {
	lines := []string{"", sectionStyle.Render("Scores Explained"), ""}

	lines = append(lines, "  "+mutedStyle.Render(fmt.Sprintf(
		"Each metric earns 0-%d points. Pace metrics reward paces under %.0f min/km,",
		analysis.MaxMetricScore, analysis.ReferencePace)))
	lines = append(lines, "  "+mutedStyle.Render("pace std dev rewards steady training, the rest reward larger values."))
	lines = append(lines, "")

	levels := []struct {
		level analysis.Level
		from  int
	}{
		{analysis.LevelTitanium, 1000},
		{analysis.LevelPlatinum, 700},
		{analysis.LevelGold, 500},
		{analysis.LevelSilver, 300},
		{analysis.LevelBronze, 100},
		{analysis.LevelUnranked, 0},
	}
	for _, l := range levels {
		lines = append(lines, fmt.Sprintf("  %-20s %s", RenderLevel(l.level), mutedStyle.Render(fmt.Sprintf("%d+", l.from))))
	}

	return strings.Join(lines, "\n")
}
