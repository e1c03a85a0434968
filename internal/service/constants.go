package service

const (
	// Sync state keys are suffixed with the user ID
	LastSyncKeyPrefix = "last_activity_sync:"

	// Streams fetched per user per sync run, to stay inside the Strava rate limit
	StreamBatchLimit = 50

	// Upload limits
	MaxUploadFiles = 500
	GPXExtension   = ".gpx"
)
