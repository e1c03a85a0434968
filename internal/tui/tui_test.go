package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"activity-insights/internal/config"
	"activity-insights/internal/service"
	"activity-insights/internal/store"
)

func TestUnitsFormatPace(t *testing.T) {
	tests := []struct {
		unit string
		pace float64
		want string
	}{
		{"km", 5.30, "5:30/km"},
		{"km", 0, "-"},
		// 330 s/km * 1.609344 = 531.08 s/mi
		{"mi", 5.30, "8:51/mi"},
	}
	for _, tt := range tests {
		u := NewUnits(config.DisplayConfig{DistanceUnit: tt.unit})
		if got := u.FormatPace(tt.pace); got != tt.want {
			t.Errorf("%s FormatPace(%v) = %q, want %q", tt.unit, tt.pace, got, tt.want)
		}
	}
}

func TestUnitsFormatDistance(t *testing.T) {
	km := NewUnits(config.DisplayConfig{DistanceUnit: "km"})
	if got := km.FormatDistance(10); got != "10.0 km" {
		t.Errorf("km = %q", got)
	}
	mi := NewUnits(config.DisplayConfig{DistanceUnit: "mi"})
	if got := mi.FormatDistance(16.09344); got != "10.0 mi" {
		t.Errorf("mi = %q", got)
	}
}

func TestCycleSelection(t *testing.T) {
	tests := []struct {
		key      string
		selected int
		n        int
		want     int
	}{
		{"tab", 0, 3, 1},
		{"tab", 2, 3, 0},
		{"shift+tab", 0, 3, 2},
		{"left", 1, 3, 0},
		{"x", 1, 3, 1},
		{"tab", 0, 0, 0},
	}
	for _, tt := range tests {
		if got := cycleSelection(tt.key, tt.selected, tt.n); got != tt.want {
			t.Errorf("cycleSelection(%q, %d, %d) = %d, want %d", tt.key, tt.selected, tt.n, got, tt.want)
		}
	}
}

func TestReselect(t *testing.T) {
	old := []string{"Cycling", "Running"}
	if got := reselect(old, 1, []string{"Cycling", "Hiking", "Running"}); got != 2 {
		t.Errorf("reselect kept index %d, want 2", got)
	}
	if got := reselect(old, 1, []string{"Cycling"}); got != 0 {
		t.Errorf("reselect of a vanished type = %d, want 0", got)
	}
}

func TestTruncateName(t *testing.T) {
	if got := truncateName("Morning run", 24); got != "Morning run" {
		t.Errorf("short name = %q", got)
	}
	if got := truncateName("Über langer Waldlauf am Morgen", 10); got != "Über la..." {
		t.Errorf("long name = %q", got)
	}
}

func TestActivitiesModelPagingAndOpen(t *testing.T) {
	activities := make([]store.Activity, 20)
	start := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)
	for i := range activities {
		activities[i] = store.Activity{
			ID:           uuid.New(),
			Date:         start.AddDate(0, 0, -i),
			ActivityType: "Running",
			Distance:     5,
		}
	}

	m := NewActivitiesModel(NewUnits(config.DisplayConfig{}))
	m = m.SetReport(reportLoadedMsg{report: &service.ActivitiesReport{Activities: activities}})

	key := func(s string) tea.KeyMsg {
		switch s {
		case "down":
			return tea.KeyMsg{Type: tea.KeyDown}
		case "pgdown":
			return tea.KeyMsg{Type: tea.KeyPgDown}
		case "enter":
			return tea.KeyMsg{Type: tea.KeyEnter}
		}
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}

	m, _ = m.Update(key("pgdown"))
	if m.offset != 15 || m.cursor != 0 {
		t.Fatalf("after pgdown offset=%d cursor=%d", m.offset, m.cursor)
	}
	m, _ = m.Update(key("down"))

	_, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("enter should open the detail screen")
	}
	msg, ok := cmd().(OpenActivityDetailMsg)
	if !ok {
		t.Fatalf("cmd returned %T", cmd())
	}
	if msg.ActivityID != activities[16].ID {
		t.Errorf("opened %s, want %s", msg.ActivityID, activities[16].ID)
	}
}

func TestSyncModelWithoutStrava(t *testing.T) {
	m := NewSyncModel(nil, uuid.New())
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.syncing {
		t.Error("sync should not start without a sync service")
	}
}
