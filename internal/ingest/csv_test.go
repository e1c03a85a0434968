package ingest

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

const csvHeader = "Activity Id,Date,Type,Route Name,Distance (km),Duration,Average Pace,Average Speed (km/h),Calories Burned,Climb (m),Average Heart Rate (bpm),Friend's Tagged,Notes,GPX File\n"

func TestParseCSV(t *testing.T) {
	input := csvHeader +
		"0d7d8e5a-2f4b-4d3c-9f0e-1a2b3c4d5e6f,2024-03-02 07:15:00,Running,Park loop,10.02,52:31,5:15,11.45,712,54,,,,2024-03-02-071500.gpx\n" +
		"7a1c5a2e-8d9b-4f0a-b1c2-d3e4f5a6b7c8,2024-03-03 18:00:05,Cycling,,32.5,1:05:12,2:00,29.9,890,210,,,,\n"

	result, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected row errors: %v", result.Errors)
	}
	if len(result.Activities) != 2 {
		t.Fatalf("len(Activities) = %d, want 2", len(result.Activities))
	}

	run := result.Activities[0]
	if run.ID.String() != "0d7d8e5a-2f4b-4d3c-9f0e-1a2b3c4d5e6f" {
		t.Errorf("ID = %s", run.ID)
	}
	if !run.Date.Equal(time.Date(2024, 3, 2, 7, 15, 0, 0, time.UTC)) {
		t.Errorf("Date = %v", run.Date)
	}
	if run.ActivityType != "Running" || run.Name != "Park loop" {
		t.Errorf("type/name = %q/%q", run.ActivityType, run.Name)
	}
	if run.Duration != "00:52:31" {
		t.Errorf("Duration = %q, want 00:52:31", run.Duration)
	}
	if math.Abs(run.AveragePace-5.15) > 1e-9 {
		t.Errorf("AveragePace = %v, want 5.15", run.AveragePace)
	}
	if run.Distance != 10.02 || run.Calories != 712 || run.Climb != 54 || run.AverageSpeed != 11.45 {
		t.Errorf("numbers = %+v", run)
	}
	if run.GPSFile != "2024-03-02-071500.gpx" {
		t.Errorf("GPSFile = %q", run.GPSFile)
	}

	if ride := result.Activities[1]; ride.Duration != "01:05:12" || ride.GPSFile != "" {
		t.Errorf("ride = %+v", ride)
	}
}

func TestParseCSVRowErrors(t *testing.T) {
	input := csvHeader +
		"not-a-uuid,2024-03-02 07:15:00,Running,,5,30:00,6:00,10,300,10,,,,\n" +
		"0d7d8e5a-2f4b-4d3c-9f0e-1a2b3c4d5e6f,2024/03/02,Running,,5,30:00,6:00,10,300,10,,,,\n" +
		"0d7d8e5a-2f4b-4d3c-9f0e-1a2b3c4d5e6f,2024-03-02 07:15:00,Running,,five,30:00,6:00,10,300,10,,,,\n" +
		"0d7d8e5a-2f4b-4d3c-9f0e-1a2b3c4d5e6f,2024-03-02 07:15:00,Running,,5,30:00\n" +
		"0d7d8e5a-2f4b-4d3c-9f0e-1a2b3c4d5e6f,2024-03-02 07:15:00,Running,,5,30:99,6:00,10,300,10,,,,\n" +
		"\n" +
		"7a1c5a2e-8d9b-4f0a-b1c2-d3e4f5a6b7c8,2024-03-04 07:00:00,Running,,5,30:00,6:00,10,300,10,,,,\n"

	result, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(result.Activities) != 1 {
		t.Errorf("len(Activities) = %d, want 1", len(result.Activities))
	}
	if len(result.Errors) != 5 {
		t.Fatalf("len(Errors) = %d, want 5: %v", len(result.Errors), result.Errors)
	}

	wantLines := []int{2, 3, 4, 5, 6}
	for i, e := range result.Errors {
		if e.Line != wantLines[i] {
			t.Errorf("error %d line = %d, want %d", i, e.Line, wantLines[i])
		}
	}
	if !errors.Is(result.Errors[3], ErrColumnCount) {
		t.Errorf("short row error = %v, want ErrColumnCount", result.Errors[3])
	}
}

func TestParseCSVRejectsNonFiniteNumbers(t *testing.T) {
	input := csvHeader +
		"0d7d8e5a-2f4b-4d3c-9f0e-1a2b3c4d5e6f,2024-03-02 07:15:00,Running,,NaN,30:00,6:00,10,300,10,,,,\n" +
		"1d7d8e5a-2f4b-4d3c-9f0e-1a2b3c4d5e6f,2024-03-03 07:15:00,Running,,5,30:00,6:00,Inf,300,10,,,,\n" +
		"2d7d8e5a-2f4b-4d3c-9f0e-1a2b3c4d5e6f,2024-03-04 07:15:00,Running,,5,30:00,6:00,10,-Inf,10,,,,\n" +
		"3d7d8e5a-2f4b-4d3c-9f0e-1a2b3c4d5e6f,2024-03-05 07:15:00,Running,,5,30:00,NaN,10,300,10,,,,\n" +
		"7a1c5a2e-8d9b-4f0a-b1c2-d3e4f5a6b7c8,2024-03-06 07:00:00,Running,,5,30:00,6:00,10,300,10,,,,\n"

	result, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(result.Activities) != 1 {
		t.Fatalf("len(Activities) = %d, want 1", len(result.Activities))
	}
	if len(result.Errors) != 4 {
		t.Fatalf("len(Errors) = %d, want 4: %v", len(result.Errors), result.Errors)
	}
	a := result.Activities[0]
	for _, v := range []float64{a.Distance, a.AverageSpeed, a.Calories, a.Climb, a.AveragePace} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("stored activity carries non-finite value: %+v", a)
		}
	}
}

func TestNormalizeDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"31:05", "00:31:05", false},
		{"1:02:03", "01:02:03", false},
		{"01:02:03", "01:02:03", false},
		{"100:00:00", "100:00:00", false},
		{"61:00", "", true},
		{"", "", true},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeDuration(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeDuration(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
