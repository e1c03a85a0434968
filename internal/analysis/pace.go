package analysis

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidDuration is returned when a duration is not in HH:MM:SS form
var ErrInvalidDuration = errors.New("invalid duration")

// Paces are stored as minutes + seconds/100, so 5.30 means 5:30 per km.

// ParsePace converts "5:30" (or an already encoded "5.30") to the stored encoding
func ParsePace(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parsing pace: empty value")
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ":", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing pace %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("parsing pace %q: not a finite non-negative number", s)
	}
	return v, nil
}

// FormatPace renders an encoded pace as "M:SS"
func FormatPace(pace float64) string {
	if pace <= 0 {
		return "-"
	}
	mins := math.Floor(pace)
	secs := int(math.Round((pace - mins) * 100))
	if secs >= 60 {
		mins += float64(secs / 60)
		secs %= 60
	}
	return fmt.Sprintf("%d:%02d", int(mins), secs)
}

// EncodePace converts seconds per kilometer to the minutes.seconds encoding
func EncodePace(secondsPerKm float64) float64 {
	if secondsPerKm <= 0 {
		return 0
	}
	minutes := math.Floor(secondsPerKm / 60)
	seconds := math.Mod(secondsPerKm, 60) / 100
	return minutes + seconds
}

// PaceSeconds decodes an encoded pace back to seconds per kilometer
func PaceSeconds(pace float64) float64 {
	if pace <= 0 {
		return 0
	}
	mins := math.Floor(pace)
	return mins*60 + math.Round((pace-mins)*100)
}

// ParseDuration parses "HH:MM:SS" into total seconds.
// Hours may exceed 23; minutes and seconds must be below 60.
func ParseDuration(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	var fields [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		fields[i] = n
	}
	if fields[1] >= 60 || fields[2] >= 60 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	return fields[0]*3600 + fields[1]*60 + fields[2], nil
}

// FormatDuration renders seconds as "HH:MM:SS"
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
