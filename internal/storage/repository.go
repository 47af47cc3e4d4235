// Package storage implements the SQLite persistence layer. All rows are
// scoped by user id; dates travel as RFC 3339 text, money as integer cents.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"spendwise/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist for the given user.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// User is an account row; APIKey authenticates both the web client and the
// bank import feed.
type User struct {
	ID        string
	Name      string
	APIKey    string
	CreatedAt time.Time
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, api_key) VALUES (?, ?, ?)`,
		u.ID, u.Name, u.APIKey)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetUserByAPIKey(ctx context.Context, apiKey string) (*User, error) {
	u := &User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, api_key, created_at FROM users WHERE api_key = ?`,
		apiKey).Scan(&u.ID, &u.Name, &u.APIKey, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by api key: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, api_key, created_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.APIKey, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetPeriodConfig returns the user's cycle boundaries, falling back to the
// 25th-to-24th default when the user never saved settings.
func (r *SQLiteRepository) GetPeriodConfig(ctx context.Context, userID string) (core.PeriodConfig, error) {
	var cfg core.PeriodConfig
	err := r.db.QueryRowContext(ctx,
		`SELECT start_day, end_day FROM period_settings WHERE user_id = ?`,
		userID).Scan(&cfg.StartDay, &cfg.EndDay)
	if err == sql.ErrNoRows {
		return core.DefaultPeriodConfig, nil
	}
	if err != nil {
		return core.PeriodConfig{}, fmt.Errorf("get period config: %w", err)
	}
	return cfg, nil
}

func (r *SQLiteRepository) SavePeriodConfig(ctx context.Context, userID string, cfg core.PeriodConfig) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO period_settings (user_id, start_day, end_day, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(user_id) DO UPDATE SET
		   start_day = excluded.start_day,
		   end_day = excluded.end_day,
		   updated_at = CURRENT_TIMESTAMP`,
		userID, cfg.StartDay, cfg.EndDay)
	if err != nil {
		return fmt.Errorf("save period config: %w", err)
	}
	return nil
}

// GetLastPeriodKey returns the start-date key of the last period the user was
// seen in; empty when never recorded.
func (r *SQLiteRepository) GetLastPeriodKey(ctx context.Context, userID string) (string, error) {
	var key string
	err := r.db.QueryRowContext(ctx,
		`SELECT last_period_key FROM period_settings WHERE user_id = ?`,
		userID).Scan(&key)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get last period key: %w", err)
	}
	return key, nil
}

func (r *SQLiteRepository) SetLastPeriodKey(ctx context.Context, userID, key string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO period_settings (user_id, last_period_key, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(user_id) DO UPDATE SET
		   last_period_key = excluded.last_period_key,
		   updated_at = CURRENT_TIMESTAMP`,
		userID, key)
	if err != nil {
		return fmt.Errorf("set last period key: %w", err)
	}
	return nil
}
