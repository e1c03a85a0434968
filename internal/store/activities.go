package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrActivityNotFound is returned when an activity doesn't exist
var ErrActivityNotFound = errors.New("activity not found")

// DateLayout is the storage format of Activity.Date
const DateLayout = "2006-01-02 15:04:05"

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

const activityColumns = `id, user_id, date, name, activity_type, distance, duration,
	average_pace, average_speed, calories, climb, gps_file`

// InsertResult counts what InsertActivities did
type InsertResult struct {
	Inserted    int
	Skipped     int
	InsertedIDs []uuid.UUID // in input order
}

// InsertActivities stores activities for a user in one transaction.
// An activity whose ID is already stored, or whose date already exists for
// the user, is skipped, so re-uploading the same export is harmless.
// Activities without an ID get one; IDs and UserID are set in place.
func (db *DB) InsertActivities(userID uuid.UUID, activities []Activity) (InsertResult, error) {
	var result InsertResult

	err := db.withTx(func(tx *sql.Tx) error {
		exists, err := tx.Prepare(db.rebind(`SELECT COUNT(*) FROM activities WHERE id = ? OR (user_id = ? AND date = ?)`))
		if err != nil {
			return fmt.Errorf("preparing duplicate check: %w", err)
		}
		defer exists.Close()

		insert, err := tx.Prepare(db.rebind(`
			INSERT INTO activities (` + activityColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`))
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer insert.Close()

		for i := range activities {
			a := &activities[i]
			a.UserID = userID
			if a.ID == uuid.Nil {
				a.ID = uuid.New()
			}
			date := a.Date.Format(DateLayout)

			var n int
			if err := exists.QueryRow(a.ID.String(), userID.String(), date).Scan(&n); err != nil {
				return fmt.Errorf("checking activity %s: %w", date, err)
			}
			if n > 0 {
				result.Skipped++
				continue
			}

			_, err := insert.Exec(
				a.ID.String(), userID.String(), date, a.Name, a.ActivityType,
				a.Distance, a.Duration, a.AveragePace, a.AverageSpeed,
				a.Calories, a.Climb, a.GPSFile,
			)
			if err != nil {
				return fmt.Errorf("inserting activity %s: %w", date, err)
			}
			result.Inserted++
			result.InsertedIDs = append(result.InsertedIDs, a.ID)
		}
		return nil
	})
	if err != nil {
		return InsertResult{}, err
	}
	return result, nil
}

// GetActivity retrieves an activity by ID
func (db *DB) GetActivity(id uuid.UUID) (*Activity, error) {
	row := db.queryRow(`
		SELECT `+activityColumns+`
		FROM activities
		WHERE id = ?
	`, id.String())

	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	return a, err
}

// ListActivities returns a user's activities ordered by date descending.
// from and to are calendar days, both inclusive; a zero value leaves that side open.
func (db *DB) ListActivities(userID uuid.UUID, from, to time.Time) ([]Activity, error) {
	conds := []string{"user_id = ?"}
	args := []any{userID.String()}

	if !from.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, startOfDay(from).Format(DateLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "date < ?")
		args = append(args, startOfDay(to).AddDate(0, 0, 1).Format(DateLayout))
	}

	rows, err := db.query(`
		SELECT `+activityColumns+`
		FROM activities
		WHERE `+strings.Join(conds, " AND ")+`
		ORDER BY date DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// CountActivities returns the number of activities stored for a user
func (db *DB) CountActivities(userID uuid.UUID) (int, error) {
	var count int
	err := db.queryRow("SELECT COUNT(*) FROM activities WHERE user_id = ?", userID.String()).Scan(&count)
	return count, err
}

// LatestActivityDate returns the most recent activity date for a user,
// or the zero time when the user has none
func (db *DB) LatestActivityDate(userID uuid.UUID) (time.Time, error) {
	var latest sql.NullString
	err := db.queryRow("SELECT MAX(date) FROM activities WHERE user_id = ?", userID.String()).Scan(&latest)
	if err != nil || !latest.Valid {
		return time.Time{}, err
	}
	return time.Parse(DateLayout, latest.String)
}

func scanActivity(row scanner) (*Activity, error) {
	var a Activity
	var id, userID, date string

	err := row.Scan(
		&id, &userID, &date, &a.Name, &a.ActivityType, &a.Distance, &a.Duration,
		&a.AveragePace, &a.AverageSpeed, &a.Calories, &a.Climb, &a.GPSFile,
	)
	if err != nil {
		return nil, err
	}

	if a.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing activity id %q: %w", id, err)
	}
	if a.UserID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("parsing user id %q: %w", userID, err)
	}
	if a.Date, err = time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("parsing activity date %q: %w", date, err)
	}
	return &a, nil
}

func scanActivities(rows *sql.Rows) ([]Activity, error) {
	var activities []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
