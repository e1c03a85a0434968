package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/xuri/excelize/v2"

	"activity-insights/internal/analysis"
)

// Sheet names
const (
	SheetSummary    = "Summary"
	SheetMonthly    = "Monthly"
	SheetScores     = "Scores"
	SheetHighlights = "Highlights"
)

// Data is everything an export needs
type Data struct {
	UserEmail    string
	Aggregations map[string]analysis.AggregationDTO
	Monthly      analysis.MonthlyAggregations
	Generated    time.Time
}

type styles struct {
	title  int
	header int
	label  int
}

// Build renders the workbook
func Build(d Data) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	for _, name := range []string{SheetMonthly, SheetScores, SheetHighlights} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	types := sortedTypes(d.Aggregations)
	steps := []func() error{
		func() error { return writeSummary(f, st, d, types) },
		func() error { return writeMonthly(f, st, d.Monthly) },
		func() error { return writeScores(f, st, d.Aggregations, types) },
		func() error { return writeHighlights(f, st, d.Aggregations, types) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Export writes the workbook to path
func Export(path string, d Data) error {
	f, err := Build(d)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// Write streams the workbook to w
func Write(w io.Writer, d Data) error {
	f, err := Build(d)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteTo(w)
	return err
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	st.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16, Color: "1F4E79"},
	})
	if err != nil {
		return st, fmt.Errorf("creating title style: %w", err)
	}

	st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2E75B6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "bottom", Color: "1F4E79", Style: 1},
		},
	})
	if err != nil {
		return st, fmt.Errorf("creating header style: %w", err)
	}

	st.label, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E2EFDA"}, Pattern: 1},
	})
	if err != nil {
		return st, fmt.Errorf("creating label style: %w", err)
	}
	return st, nil
}

// writeRow fills a row starting at column A
func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeHeader(f *excelize.File, st styles, sheet string, row int, headers ...any) error {
	if err := writeRow(f, sheet, row, headers...); err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(headers), row)
	if err := f.SetCellStyle(sheet, first, last, st.header); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

func writeSummary(f *excelize.File, st styles, d Data, types []string) error {
	sheet := SheetSummary

	total := 0
	for _, agg := range d.Aggregations {
		total += agg.Basic.TotalActivities
	}

	title := "Activity Report"
	if d.UserEmail != "" {
		title += " - " + d.UserEmail
	}
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", st.title); err != nil {
		return err
	}
	subtitle := fmt.Sprintf("%s activities, generated %s", humanize.Comma(int64(total)), d.Generated.Format("2006-01-02 15:04"))
	if err := f.SetCellValue(sheet, "A2", subtitle); err != nil {
		return err
	}

	if err := writeHeader(f, st, sheet, 4,
		"Type", "Activities", "Total Distance (km)", "Average Distance (km)", "Best Distance (km)",
		"Average Pace", "Best Pace", "Total Score", "Level",
	); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}

	for i, t := range types {
		agg := d.Aggregations[t]
		b := agg.Basic
		err := writeRow(f, sheet, 5+i,
			t, b.TotalActivities, round2(b.TotalDistance), round2(b.AverageDistance), round2(b.BestDistance),
			analysis.FormatPace(b.AveragePace), analysis.FormatPace(b.BestPace),
			agg.Scores.TotalScore, string(agg.Scores.Level),
		)
		if err != nil {
			return fmt.Errorf("writing summary row %s: %w", t, err)
		}
	}
	return nil
}

func writeMonthly(f *excelize.File, st styles, monthly analysis.MonthlyAggregations) error {
	sheet := SheetMonthly
	if err := writeHeader(f, st, sheet, 1, "Type", "Month", "Activities", "Distance (km)", "Average Pace"); err != nil {
		return fmt.Errorf("writing monthly header: %w", err)
	}

	types := make([]string, 0, len(monthly))
	for t := range monthly {
		types = append(types, t)
	}
	sort.Strings(types)

	row := 2
	for _, t := range types {
		months := make([]string, 0, len(monthly[t]))
		for m := range monthly[t] {
			months = append(months, m)
		}
		sort.Strings(months)

		for _, m := range months {
			b := monthly[t][m]
			if err := writeRow(f, sheet, row, t, m, b.TotalActivities, round2(b.TotalDistance), analysis.FormatPace(b.AveragePace)); err != nil {
				return fmt.Errorf("writing monthly row: %w", err)
			}
			row++
		}
	}
	return nil
}

func writeScores(f *excelize.File, st styles, aggs map[string]analysis.AggregationDTO, types []string) error {
	sheet := SheetScores
	if err := writeHeader(f, st, sheet, 1, "Type", "Metric", "Score", "Level"); err != nil {
		return fmt.Errorf("writing scores header: %w", err)
	}

	row := 2
	for _, t := range types {
		breakdown := aggs[t].Scores.Breakdown
		metrics := make([]analysis.Metric, 0, len(breakdown))
		for m := range breakdown {
			metrics = append(metrics, m)
		}
		sort.Slice(metrics, func(i, j int) bool { return metrics[i] < metrics[j] })

		for _, m := range metrics {
			detail := breakdown[m]
			if err := writeRow(f, sheet, row, t, m.Label(), detail.Score, string(detail.Level)); err != nil {
				return fmt.Errorf("writing score row: %w", err)
			}
			row++
		}
	}
	return nil
}

func writeHighlights(f *excelize.File, st styles, aggs map[string]analysis.AggregationDTO, types []string) error {
	sheet := SheetHighlights
	if err := writeHeader(f, st, sheet, 1, "Type", "Statistic", "Value"); err != nil {
		return fmt.Errorf("writing highlights header: %w", err)
	}

	row := 2
	for _, t := range types {
		adv := aggs[t].Advanced
		if adv == nil {
			continue
		}
		for _, h := range highlights(*adv) {
			if err := writeRow(f, sheet, row, t, h.label, h.value); err != nil {
				return fmt.Errorf("writing highlight row: %w", err)
			}
			labelCell, _ := excelize.CoordinatesToCellName(2, row)
			if err := f.SetCellStyle(sheet, labelCell, labelCell, st.label); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

type highlight struct {
	label string
	value any
}

// highlights flattens the advanced statistics into label/value pairs
func highlights(a analysis.AdvancedAggregation) []highlight {
	fastest := make([]string, len(a.FastestWeekdays))
	for i, wd := range a.FastestWeekdays {
		fastest[i] = fmt.Sprintf("%s (%s)", wd.Weekday, analysis.FormatPace(wd.Pace))
	}
	speeds := make([]string, len(a.TopSpeeds))
	for i, s := range a.TopSpeeds {
		speeds[i] = fmt.Sprintf("%.2f", s)
	}

	return []highlight{
		{"Longest streak (days)", a.LongestStreakDays},
		{"Longest streak (weeks)", a.LongestStreakWeeks},
		{"Current weekly streak", a.CurrentWeeklyStreak},
		{"Fastest weekdays", strings.Join(fastest, ", ")},
		{"Most frequent weekday", deref(a.MostFrequentWeekday)},
		{"Most skipped weekday", deref(a.MostSkippedWeekday)},
		{"Speed demon hour", deref(a.SpeedDemonHour)},
		{"Most consistent week", deref(a.MostConsistentWeek)},
		{"Sweatiest week", deref(a.SweatiestWeek)},
		{"Max daily calories", round2(a.MaxDailyCalories)},
		{"Max effort (cal/min)", round2(a.MaxEffortCalPerMin)},
		{"Top speeds (km/h)", strings.Join(speeds, ", ")},
		{"Max climb (m)", round2(a.MaxClimb)},
		{"Slowest pace", analysis.FormatPace(a.SlowestPace)},
		{"Weekend ratio", round2(a.WeekendRatio)},
		{"Pace std dev", round2(a.PaceStdDev)},
	}
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sortedTypes(aggs map[string]analysis.AggregationDTO) []string {
	types := make([]string, 0, len(aggs))
	for t := range aggs {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
