package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// TrackPointBatchSize is how many activities' points are committed per transaction
const TrackPointBatchSize = 50

// InsertTrackPoints stores GPS samples, skipping points whose ID already exists.
// Points are grouped by activity and committed in batches of TrackPointBatchSize activities.
// Returns the number of points actually inserted.
func (db *DB) InsertTrackPoints(points []TrackPoint) (int, error) {
	var order []uuid.UUID
	byActivity := make(map[uuid.UUID][]TrackPoint)
	for _, p := range points {
		if _, ok := byActivity[p.ActivityID]; !ok {
			order = append(order, p.ActivityID)
		}
		byActivity[p.ActivityID] = append(byActivity[p.ActivityID], p)
	}

	inserted := 0
	for start := 0; start < len(order); start += TrackPointBatchSize {
		end := min(start+TrackPointBatchSize, len(order))

		err := db.withTx(func(tx *sql.Tx) error {
			stmt, err := tx.Prepare(db.rebind(`
				INSERT INTO trackpoints (id, activity_id, lat, lon, elevation, time)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO NOTHING
			`))
			if err != nil {
				return fmt.Errorf("preparing insert: %w", err)
			}
			defer stmt.Close()

			for _, activityID := range order[start:end] {
				for _, p := range byActivity[activityID] {
					if p.ID == uuid.Nil {
						p.ID = uuid.New()
					}
					res, err := stmt.Exec(p.ID.String(), p.ActivityID.String(), p.Latitude, p.Longitude, p.Elevation, p.Time)
					if err != nil {
						return fmt.Errorf("inserting track point for %s: %w", activityID, err)
					}
					if n, err := res.RowsAffected(); err == nil {
						inserted += int(n)
					}
				}
			}
			return nil
		})
		if err != nil {
			return inserted, err
		}
	}

	return inserted, nil
}

// ListTrackPoints returns the GPS samples of an activity, latest first
func (db *DB) ListTrackPoints(activityID uuid.UUID) ([]TrackPoint, error) {
	rows, err := db.query(`
		SELECT id, activity_id, lat, lon, elevation, time
		FROM trackpoints
		WHERE activity_id = ?
		ORDER BY time DESC
	`, activityID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []TrackPoint
	for rows.Next() {
		var p TrackPoint
		var id, actID string
		if err := rows.Scan(&id, &actID, &p.Latitude, &p.Longitude, &p.Elevation, &p.Time); err != nil {
			return nil, err
		}
		if p.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing track point id %q: %w", id, err)
		}
		if p.ActivityID, err = uuid.Parse(actID); err != nil {
			return nil, fmt.Errorf("parsing activity id %q: %w", actID, err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
