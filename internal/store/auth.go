package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNoAuth is returned when no Strava authentication is stored for a user
var ErrNoAuth = errors.New("no authentication stored")

// GetStravaAuth retrieves the stored Strava tokens of a user
func (db *DB) GetStravaAuth(userID uuid.UUID) (*StravaAuth, error) {
	row := db.queryRow(`
		SELECT athlete_id, access_token, refresh_token, expires_at
		FROM strava_auth
		WHERE user_id = ?
	`, userID.String())

	auth := StravaAuth{UserID: userID}
	var expiresAt int64
	err := row.Scan(&auth.AthleteID, &auth.AccessToken, &auth.RefreshToken, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoAuth
	}
	if err != nil {
		return nil, err
	}

	auth.ExpiresAt = time.Unix(expiresAt, 0)
	return &auth, nil
}

// SaveStravaAuth stores or updates the Strava tokens of a user
func (db *DB) SaveStravaAuth(auth *StravaAuth) error {
	_, err := db.exec(`
		INSERT INTO strava_auth (user_id, athlete_id, access_token, refresh_token, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`, auth.UserID.String(), auth.AthleteID, auth.AccessToken, auth.RefreshToken, auth.ExpiresAt.Unix())
	return err
}

// UpdateStravaTokens updates just the access and refresh tokens
func (db *DB) UpdateStravaTokens(userID uuid.UUID, accessToken, refreshToken string, expiresAt time.Time) error {
	result, err := db.exec(`
		UPDATE strava_auth
		SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`, accessToken, refreshToken, expiresAt.Unix(), userID.String())
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoAuth
	}
	return nil
}

// ListStravaUsers returns the IDs of users with stored Strava tokens
func (db *DB) ListStravaUsers() ([]uuid.UUID, error) {
	rows, err := db.query(`SELECT user_id FROM strava_auth ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
