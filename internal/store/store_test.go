package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// setupTestDB creates an in-memory database with one user
func setupTestDB(t *testing.T) (*DB, *User) {
	t.Helper()

	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	user, err := db.CreateUser("google-123", "runner@example.com")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return db, user
}

func testActivity(date time.Time, activityType string, distance float64) Activity {
	return Activity{
		Date:         date,
		Name:         "Morning " + activityType,
		ActivityType: activityType,
		Distance:     distance,
		Duration:     "00:30:00",
		AveragePace:  5.30,
		AverageSpeed: 10.9,
		Calories:     350,
		Climb:        42,
	}
}

func TestRebind(t *testing.T) {
	query := "SELECT * FROM activities WHERE user_id = ? AND date >= ? AND date < ?"

	sqlite := &DB{dialect: DialectSQLite}
	if got := sqlite.rebind(query); got != query {
		t.Errorf("sqlite rebind changed query: %q", got)
	}

	pg := &DB{dialect: DialectPostgres}
	want := "SELECT * FROM activities WHERE user_id = $1 AND date >= $2 AND date < $3"
	if got := pg.rebind(query); got != want {
		t.Errorf("postgres rebind = %q, want %q", got, want)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestCreateAndGetUser(t *testing.T) {
	db, user := setupTestDB(t)

	got, err := db.GetUser(user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Email != "runner@example.com" || got.GoogleID != "google-123" {
		t.Errorf("GetUser = %+v", got)
	}

	byEmail, err := db.GetUserByEmail("runner@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("GetUserByEmail ID = %v, want %v", byEmail.ID, user.ID)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db, _ := setupTestDB(t)

	_, err := db.CreateUser("google-456", "runner@example.com")
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("CreateUser duplicate error = %v, want ErrUserExists", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	db, _ := setupTestDB(t)

	if _, err := db.GetUser(uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUser error = %v, want ErrUserNotFound", err)
	}
}

func TestListUsers(t *testing.T) {
	db, _ := setupTestDB(t)

	if _, err := db.CreateUser("google-456", "cyclist@example.com"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	users, err := db.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("len(users) = %d, want 2", len(users))
	}
}
