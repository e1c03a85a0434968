package analysis

import (
	"errors"
	"math"
	"testing"
)

func TestParsePace(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"5:30", 5.30, false},
		{"5.30", 5.30, false},
		{" 10:05 ", 10.05, false},
		{"", 0, true},
		{"fast", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"-5:30", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePace(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePace(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParsePace(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatPace(t *testing.T) {
	tests := []struct {
		pace float64
		want string
	}{
		{5.30, "5:30"},
		{5.05, "5:05"},
		{12.0, "12:00"},
		{0, "-"},
		{-1, "-"},
	}

	for _, tt := range tests {
		if got := FormatPace(tt.pace); got != tt.want {
			t.Errorf("FormatPace(%v) = %q, want %q", tt.pace, got, tt.want)
		}
	}
}

func TestEncodePace(t *testing.T) {
	tests := []struct {
		name         string
		secondsPerKm float64
		want         float64
	}{
		{"5:18 per km", 318, 5.18},
		{"whole minutes", 300, 5.0},
		{"zero", 0, 0},
		{"negative", -10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodePace(tt.secondsPerKm)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("EncodePace(%v) = %v, want %v", tt.secondsPerKm, got, tt.want)
			}
		})
	}
}

func TestPaceSeconds(t *testing.T) {
	tests := []struct {
		pace float64
		want float64
	}{
		{5.30, 330},
		{5.18, 318},
		{0, 0},
	}

	for _, tt := range tests {
		if got := PaceSeconds(tt.pace); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("PaceSeconds(%v) = %v, want %v", tt.pace, got, tt.want)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"01:02:03", 3723, false},
		{"00:00:00", 0, false},
		{"25:00:00", 90000, false},
		{"00:60:00", 0, true},
		{"00:00:60", 0, true},
		{"30:00", 0, true},
		{"a:b:c", 0, true},
		{"-1:00:00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDuration) {
					t.Errorf("ParseDuration(%q) error = %v, want ErrInvalidDuration", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDuration(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(3723); got != "01:02:03" {
		t.Errorf("FormatDuration(3723) = %q, want 01:02:03", got)
	}
	if got := FormatDuration(-5); got != "00:00:00" {
		t.Errorf("FormatDuration(-5) = %q, want 00:00:00", got)
	}
}
