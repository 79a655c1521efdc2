package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no survey exists for a user.
var ErrNotFound = errors.New("user profile not found")

// Profile is a stored survey answer set, keyed by user.
type Profile struct {
	UserID     string `db:"user_id" json:"user_id"`
	Theme      string `db:"theme" json:"theme"`
	Experience string `db:"experience" json:"experience"`
	Region     string `db:"region" json:"region"`
}

// Store is the persistence interface for user surveys.
type Store interface {
	UpsertProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	HasProfile(ctx context.Context, userID string) (bool, error)
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertProfile inserts or replaces the survey for a user. Last write wins.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, p *Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profile (user_id, theme, experience, region)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			theme = excluded.theme,
			experience = excluded.experience,
			region = excluded.region
	`, p.UserID, p.Theme, p.Experience, p.Region)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.UserID, err)
	}
	return nil
}

func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	err := s.db.GetContext(ctx, &p, "SELECT * FROM user_profile WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	return &p, nil
}

func (s *SQLiteStore) HasProfile(ctx context.Context, userID string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM user_profile WHERE user_id = ?", userID)
	if err != nil {
		return false, fmt.Errorf("has profile %s: %w", userID, err)
	}
	return n > 0, nil
}
