package report

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"activity-insights/internal/analysis"
	"activity-insights/internal/store"
)

func sampleData() Data {
	activities := []store.Activity{
		{Date: time.Date(2024, 2, 28, 7, 0, 0, 0, time.UTC), ActivityType: "Running", Distance: 5, Duration: "00:27:30", AveragePace: 5.30, AverageSpeed: 10.9, Calories: 350},
		{Date: time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC), ActivityType: "Running", Distance: 10, Duration: "00:55:00", AveragePace: 5.30, AverageSpeed: 10.9, Calories: 700},
		{Date: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), ActivityType: "Cycling", Distance: 30, Duration: "01:00:00", AveragePace: 2.00, AverageSpeed: 30, Calories: 800},
	}
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	engine := analysis.NewEngine(analysis.DefaultScoringConfig(), func() time.Time { return now })
	aggs, monthly := engine.Aggregate(activities)

	return Data{
		UserEmail:    "runner@example.com",
		Aggregations: aggs,
		Monthly:      monthly,
		Generated:    now,
	}
}

func TestBuild(t *testing.T) {
	f, err := Build(sampleData())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer f.Close()

	want := []string{SheetSummary, SheetMonthly, SheetScores, SheetHighlights}
	sheets := f.GetSheetList()
	if len(sheets) != len(want) {
		t.Fatalf("sheets = %v, want %v", sheets, want)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Errorf("sheet %d = %q, want %q", i, sheets[i], want[i])
		}
	}

	summary, err := f.GetRows(SheetSummary)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if summary[0][0] != "Activity Report - runner@example.com" {
		t.Errorf("title = %q", summary[0][0])
	}
	// header on row 4, then Cycling before Running
	if summary[4][0] != "Cycling" || summary[5][0] != "Running" {
		t.Errorf("summary types = %q, %q", summary[4][0], summary[5][0])
	}
	// encoded 5.30 averages as 318 s/km, and best pace is clamped to the average
	if summary[5][1] != "2" || summary[5][2] != "15" || summary[5][5] != "5:18" || summary[5][6] != "5:18" {
		t.Errorf("running row = %v", summary[5])
	}

	monthly, err := f.GetRows(SheetMonthly)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(monthly) != 4 {
		t.Fatalf("monthly rows = %d, want header + 3", len(monthly))
	}
	if monthly[2][0] != "Running" || monthly[2][1] != "2024-02" || monthly[3][1] != "2024-03" {
		t.Errorf("monthly = %v", monthly)
	}

	scores, err := f.GetRows(SheetScores)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if got, want := len(scores), 1+2*len(analysis.KnownMetrics()); got != want {
		t.Errorf("score rows = %d, want %d", got, want)
	}

	highlights, err := f.GetRows(SheetHighlights)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	found := false
	for _, row := range highlights {
		if len(row) == 3 && row[0] == "Running" && row[1] == "Longest streak (weeks)" {
			found = true
			if row[2] != "2" {
				t.Errorf("weekly streak = %q, want 2", row[2])
			}
		}
	}
	if !found {
		t.Error("missing weekly streak highlight")
	}
}

func TestBuildEmpty(t *testing.T) {
	f, err := Build(Data{Generated: time.Now()})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetSummary)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("summary rows = %d, want title, subtitle, blank and header", len(rows))
	}
}

func TestExportAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := Export(path, sampleData()); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	f.Close()

	var buf bytes.Buffer
	if err := Write(&buf, sampleData()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Write produced no bytes")
	}
}
