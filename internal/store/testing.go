package store

// OpenMemory opens a migrated in-memory SQLite database.
// This is only intended for use in tests.
func OpenMemory() (*DB, error) {
	return OpenSQLite(":memory:")
}
