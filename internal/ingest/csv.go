package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"activity-insights/internal/analysis"
	"activity-insights/internal/store"
)

// ActivitiesFile is the activity export inside an upload or import folder
const ActivitiesFile = "cardioActivities.csv"

// CSVColumns is the number of columns in an activity export row
const CSVColumns = 14

// Column positions in cardioActivities.csv
const (
	colID = iota
	colDate
	colType
	colRouteName
	colDistance
	colDuration
	colPace
	colSpeed
	colCalories
	colClimb
	colHeartRate
	colFriends
	colNotes
	colGPXFile
)

// ErrColumnCount is returned for rows that don't have CSVColumns fields
var ErrColumnCount = errors.New("unexpected column count")

// RowError reports why a CSV row was skipped
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// CSVResult holds the parsed activities and the rows that were rejected
type CSVResult struct {
	Activities []store.Activity
	Errors     []RowError
}

// ParseCSV reads an activity export. Rows that fail to parse are reported in
// Errors and left out; the header is recognised by its non-UUID first column.
func ParseCSV(r io.Reader) (*CSVResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	result := &CSVResult{}
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Errors = append(result.Errors, RowError{Line: line, Err: err})
				continue
			}
			return result, fmt.Errorf("reading csv: %w", err)
		}

		if isBlank(record) {
			continue
		}
		if line == 1 && isHeader(record) {
			continue
		}

		a, err := parseRow(record)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Line: line, Err: err})
			continue
		}
		result.Activities = append(result.Activities, a)
	}

	return result, nil
}

func parseRow(record []string) (store.Activity, error) {
	if len(record) != CSVColumns {
		return store.Activity{}, fmt.Errorf("%w: expected %d, got %d", ErrColumnCount, CSVColumns, len(record))
	}

	id, err := uuid.Parse(strings.TrimSpace(record[colID]))
	if err != nil {
		return store.Activity{}, fmt.Errorf("activity id: %w", err)
	}

	date, err := time.Parse(store.DateLayout, strings.TrimSpace(record[colDate]))
	if err != nil {
		return store.Activity{}, fmt.Errorf("date: %w", err)
	}

	duration, err := NormalizeDuration(record[colDuration])
	if err != nil {
		return store.Activity{}, fmt.Errorf("duration: %w", err)
	}

	pace, err := analysis.ParsePace(record[colPace])
	if err != nil {
		return store.Activity{}, fmt.Errorf("average pace: %w", err)
	}

	a := store.Activity{
		ID:           id,
		Date:         date,
		Name:         strings.TrimSpace(record[colRouteName]),
		ActivityType: strings.TrimSpace(record[colType]),
		Duration:     duration,
		AveragePace:  pace,
		GPSFile:      strings.TrimSpace(record[colGPXFile]),
	}
	if a.ActivityType == "" {
		return store.Activity{}, errors.New("activity type is empty")
	}

	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"distance", record[colDistance], &a.Distance},
		{"average speed", record[colSpeed], &a.AverageSpeed},
		{"calories", record[colCalories], &a.Calories},
		{"climb", record[colClimb], &a.Climb},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.raw), 64)
		if err != nil {
			return store.Activity{}, fmt.Errorf("%s: %w", f.name, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return store.Activity{}, fmt.Errorf("%s: not a finite number %q", f.name, strings.TrimSpace(f.raw))
		}
		if v < 0 {
			return store.Activity{}, fmt.Errorf("%s: negative value %v", f.name, v)
		}
		*f.dst = v
	}

	return a, nil
}

// NormalizeDuration turns "MM:SS" or "H:MM:SS" into "HH:MM:SS"
func NormalizeDuration(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.Count(raw, ":") == 1 {
		raw = "0:" + raw
	}

	seconds, err := analysis.ParseDuration(raw)
	if err != nil {
		return "", err
	}
	return analysis.FormatDuration(seconds), nil
}

func isHeader(record []string) bool {
	_, err := uuid.Parse(strings.TrimSpace(record[0]))
	return err != nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
