package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"weather-bot/models"
)

const schema = `CREATE TABLE IF NOT EXISTS user_preferences (
	user_id    INTEGER PRIMARY KEY,
	units      TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLiteStore keeps preferences across restarts in a single SQLite file
// (pure Go driver modernc.org/sqlite).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}

	// a single connection serialises writers; the table is tiny
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the stored units or Celsius when the user has no row
func (s *SQLiteStore) Get(ctx context.Context, userID int64) (models.Units, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT units FROM user_preferences WHERE user_id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultUnits, nil
	}
	if err != nil {
		return models.DefaultUnits, fmt.Errorf("failed to read preference for %d: %w", userID, err)
	}

	units := models.Units(raw)
	if !units.Valid() {
		return models.DefaultUnits, nil
	}
	return units, nil
}

// Set upserts the user's units
func (s *SQLiteStore) Set(ctx context.Context, userID int64, units models.Units) error {
	if !units.Valid() {
		return fmt.Errorf("%w: got %q", ErrInvalidUnits, units)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_preferences(user_id, units, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET units = excluded.units, updated_at = excluded.updated_at`,
		userID, string(units), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save preference for %d: %w", userID, err)
	}
	return nil
}

// Len returns how many users have an explicit preference
func (s *SQLiteStore) Len() int {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM user_preferences`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
