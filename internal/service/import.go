package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"activity-insights/internal/ingest"
	"activity-insights/internal/store"
)

// ErrMissingActivities is returned when an import has no cardioActivities.csv
var ErrMissingActivities = fmt.Errorf("missing %s", ingest.ActivitiesFile)

// ErrTooManyFiles is returned when an upload exceeds MaxUploadFiles
var ErrTooManyFiles = errors.New("too many files in upload")

// ImportResult summarizes an import
type ImportResult struct {
	Parsed      int      `json:"parsed"`
	Inserted    int      `json:"inserted"`
	Skipped     int      `json:"skipped"`
	TrackPoints int      `json:"track_points"`
	Errors      []string `json:"errors,omitempty"`
}

// ImportService loads activity exports (CSV plus GPX tracks) into the store
type ImportService struct {
	store    *store.DB
	notifier *Notifier
	log      *slog.Logger
}

// NewImportService creates an import service. notifier may be nil.
func NewImportService(db *store.DB, notifier *Notifier, log *slog.Logger) *ImportService {
	if log == nil {
		log = slog.Default()
	}
	return &ImportService{
		store:    db,
		notifier: notifier,
		log:      log.With(slog.String("component", "import")),
	}
}

// openFunc opens a GPX file referenced by an activity
type openFunc func(name string) (io.ReadCloser, error)

// ImportFolder imports cardioActivities.csv and the GPX files it references from a directory
func (s *ImportService) ImportFolder(ctx context.Context, userID uuid.UUID, folder string) (*ImportResult, error) {
	f, err := os.Open(filepath.Join(folder, ingest.ActivitiesFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrMissingActivities
	}
	if err != nil {
		return nil, fmt.Errorf("opening activities: %w", err)
	}
	defer f.Close()

	open := func(name string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(folder, SanitizeFilename(name)))
	}
	return s.importActivities(ctx, userID, f, open)
}

// ImportFiles imports an uploaded file set keyed by client filename
func (s *ImportService) ImportFiles(ctx context.Context, userID uuid.UUID, files map[string][]byte) (*ImportResult, error) {
	if len(files) > MaxUploadFiles {
		return nil, ErrTooManyFiles
	}

	sanitized := make(map[string][]byte, len(files))
	for name, data := range files {
		if clean := SanitizeFilename(name); clean != "" {
			sanitized[clean] = data
		}
	}

	csvData, ok := sanitized[ingest.ActivitiesFile]
	if !ok {
		return nil, ErrMissingActivities
	}

	open := func(name string) (io.ReadCloser, error) {
		data, ok := sanitized[SanitizeFilename(name)]
		if !ok {
			return nil, os.ErrNotExist
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return s.importActivities(ctx, userID, bytes.NewReader(csvData), open)
}

func (s *ImportService) importActivities(ctx context.Context, userID uuid.UUID, csv io.Reader, open openFunc) (*ImportResult, error) {
	if _, err := s.store.GetUser(userID); err != nil {
		return nil, err
	}

	parsed, err := ingest.ParseCSV(csv)
	if err != nil {
		return nil, fmt.Errorf("parsing activities: %w", err)
	}

	result := &ImportResult{Parsed: len(parsed.Activities)}
	for _, rowErr := range parsed.Errors {
		result.Errors = append(result.Errors, rowErr.Error())
	}

	inserted, err := s.store.InsertActivities(userID, parsed.Activities)
	if err != nil {
		return nil, fmt.Errorf("storing activities: %w", err)
	}
	result.Inserted = inserted.Inserted
	result.Skipped = inserted.Skipped

	isNew := make(map[uuid.UUID]bool, len(inserted.InsertedIDs))
	for _, id := range inserted.InsertedIDs {
		isNew[id] = true
	}

	var points []store.TrackPoint
	for _, a := range parsed.Activities {
		if !isNew[a.ID] || a.GPSFile == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		track, err := readTrack(open, a)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		points = append(points, track...)
	}

	if len(points) > 0 {
		n, err := s.store.InsertTrackPoints(points)
		result.TrackPoints = n
		if err != nil {
			return result, fmt.Errorf("storing track points: %w", err)
		}
	}

	s.log.Info("import_completed",
		slog.String("user_id", userID.String()),
		slog.Int("inserted", result.Inserted),
		slog.Int("skipped", result.Skipped),
		slog.Int("track_points", result.TrackPoints),
		slog.Int("errors", len(result.Errors)),
	)

	if result.Inserted > 0 {
		if err := s.notifier.Notify(ctx, userID); err != nil {
			s.log.Warn("score_notify_failed", slog.String("user_id", userID.String()), slog.Any("err", err))
		}
	}

	return result, nil
}

func readTrack(open openFunc, a store.Activity) ([]store.TrackPoint, error) {
	f, err := open(a.GPSFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.GPSFile, err)
	}
	defer f.Close()

	points, err := ingest.ParseGPX(f, a.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.GPSFile, err)
	}
	return points, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename reduces a client-supplied name to a safe base name.
// Directory parts are dropped; an empty result means the name is unusable.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")
	return name
}

// IsGPX reports whether a filename looks like a GPX track
func IsGPX(name string) bool {
	return strings.EqualFold(filepath.Ext(name), GPXExtension)
}
