package tui

import (
	"fmt"

	"activity-insights/internal/analysis"
	"activity-insights/internal/config"
)

const kmPerMile = 1.609344

// Units converts stored kilometre values into the configured display unit
type Units struct {
	cfg config.DisplayConfig
}

// NewUnits creates a new Units helper with the given display config
func NewUnits(cfg config.DisplayConfig) Units {
	return Units{cfg: cfg}
}

// IsMiles returns true if distance unit is miles
func (u Units) IsMiles() bool {
	return u.cfg.DistanceUnit == "mi"
}

// Distance converts kilometres to the display unit
func (u Units) Distance(km float64) float64 {
	if u.IsMiles() {
		return km / kmPerMile
	}
	return km
}

// FormatDistance formats a distance in kilometres with the unit label
func (u Units) FormatDistance(km float64) string {
	return fmt.Sprintf("%.1f %s", u.Distance(km), u.DistanceLabel())
}

// FormatPace formats an encoded min/km pace in the display unit
func (u Units) FormatPace(pace float64) string {
	if pace <= 0 {
		return "-"
	}
	if u.IsMiles() {
		secs := analysis.PaceSeconds(pace) * kmPerMile
		pace = analysis.EncodePace(secs)
	}
	return analysis.FormatPace(pace) + "/" + u.DistanceLabel()
}

// DistanceLabel returns the short unit label ("mi" or "km")
func (u Units) DistanceLabel() string {
	if u.IsMiles() {
		return "mi"
	}
	return "km"
}
