package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user doesn't exist
var ErrUserNotFound = errors.New("user not found")

// ErrUserExists is returned when the email is already registered
var ErrUserExists = errors.New("user already exists")

// CreateUser registers a new user
func (db *DB) CreateUser(googleID, email string) (*User, error) {
	email = strings.TrimSpace(email)
	if _, err := db.GetUserByEmail(email); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, email)
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	u := &User{
		ID:        uuid.New(),
		GoogleID:  googleID,
		Email:     email,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	_, err := db.exec(`
		INSERT INTO users (id, google_id, email, created_at)
		VALUES (?, ?, ?, ?)
	`, u.ID.String(), u.GoogleID, u.Email, u.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return u, nil
}

// GetUser retrieves a user by ID
func (db *DB) GetUser(id uuid.UUID) (*User, error) {
	row := db.queryRow(`
		SELECT id, google_id, email, created_at
		FROM users
		WHERE id = ?
	`, id.String())
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email address
func (db *DB) GetUserByEmail(email string) (*User, error) {
	row := db.queryRow(`
		SELECT id, google_id, email, created_at
		FROM users
		WHERE email = ?
	`, email)
	return scanUser(row)
}

// ListUsers returns all users ordered by creation time
func (db *DB) ListUsers() ([]User, error) {
	rows, err := db.query(`
		SELECT id, google_id, email, created_at
		FROM users
		ORDER BY created_at, email
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func scanUser(row scanner) (*User, error) {
	var u User
	var id, createdAt string

	err := row.Scan(&id, &u.GoogleID, &u.Email, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if u.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing user id %q: %w", id, err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &u, nil
}
