package store

// migrate runs all database migrations. The schema sticks to types both
// SQLite and Postgres accept.
func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			google_id TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		)`,

		// Dates are naive local timestamps stored as "YYYY-MM-DD HH:MM:SS",
		// so string order is chronological order
		`CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			date TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			activity_type TEXT NOT NULL,
			distance DOUBLE PRECISION NOT NULL,
			duration TEXT NOT NULL,
			average_pace DOUBLE PRECISION NOT NULL,
			average_speed DOUBLE PRECISION NOT NULL,
			calories DOUBLE PRECISION NOT NULL,
			climb DOUBLE PRECISION NOT NULL,
			gps_file TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_user_date ON activities(user_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_type ON activities(activity_type)`,

		`CREATE TABLE IF NOT EXISTS trackpoints (
			id TEXT PRIMARY KEY,
			activity_id TEXT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
			lat TEXT NOT NULL,
			lon TEXT NOT NULL,
			elevation DOUBLE PRECISION NOT NULL,
			time TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_trackpoints_activity ON trackpoints(activity_id)`,

		// Sync state (key-value store)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Strava tokens, one row per user
		`CREATE TABLE IF NOT EXISTS strava_auth (
			user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			athlete_id BIGINT NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at BIGINT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
