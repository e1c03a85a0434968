package ingest

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"activity-insights/internal/store"
)

// gpxFile mirrors the parts of GPX 1.1 we read
type gpxFile struct {
	Tracks []struct {
		Segments []struct {
			Points []gpxPoint `xml:"trkpt"`
		} `xml:"trkseg"`
	} `xml:"trk"`
}

type gpxPoint struct {
	Lat       string   `xml:"lat,attr"`
	Lon       string   `xml:"lon,attr"`
	Elevation *float64 `xml:"ele"`
	Time      string   `xml:"time"`
}

// ParseGPX converts every track point of a GPX document into a TrackPoint of
// activityID. A document without tracks yields no points.
func ParseGPX(r io.Reader, activityID uuid.UUID) ([]store.TrackPoint, error) {
	var doc gpxFile
	decoder := xml.NewDecoder(r)
	decoder.Strict = false
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding gpx: %w", err)
	}

	var points []store.TrackPoint
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				tp, err := convertPoint(p, activityID)
				if err != nil {
					return nil, err
				}
				points = append(points, tp)
			}
		}
	}
	return points, nil
}

func convertPoint(p gpxPoint, activityID uuid.UUID) (store.TrackPoint, error) {
	lat, lon := strings.TrimSpace(p.Lat), strings.TrimSpace(p.Lon)
	if _, err := strconv.ParseFloat(lat, 64); err != nil {
		return store.TrackPoint{}, fmt.Errorf("track point latitude %q: %w", lat, err)
	}
	if _, err := strconv.ParseFloat(lon, 64); err != nil {
		return store.TrackPoint{}, fmt.Errorf("track point longitude %q: %w", lon, err)
	}

	tp := store.TrackPoint{
		ID:         uuid.New(),
		ActivityID: activityID,
		Latitude:   lat,
		Longitude:  lon,
	}
	if p.Elevation != nil {
		tp.Elevation = *p.Elevation
	}
	if ts := strings.TrimSpace(p.Time); ts != "" {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return store.TrackPoint{}, fmt.Errorf("track point time %q: %w", ts, err)
		}
		tp.Time = t.UTC().Format(time.RFC3339)
	}
	return tp, nil
}
