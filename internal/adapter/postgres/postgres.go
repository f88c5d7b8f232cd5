// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and creates any missing tables.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.bootstrap(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

var bootstrapStmts = []string{
	"CREATE TABLE IF NOT EXISTS habits (id UUID PRIMARY KEY, title TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
	"CREATE INDEX IF NOT EXISTS idx_habits_created_at ON habits(created_at);",
	"CREATE TABLE IF NOT EXISTS habit_week_days (id UUID PRIMARY KEY, habit_id UUID NOT NULL REFERENCES habits(id) ON DELETE CASCADE, week_day SMALLINT NOT NULL CHECK(week_day BETWEEN 0 AND 6), UNIQUE(habit_id, week_day));",
	"CREATE TABLE IF NOT EXISTS days (id UUID PRIMARY KEY, date TIMESTAMPTZ NOT NULL UNIQUE);",
	"CREATE TABLE IF NOT EXISTS day_habits (id UUID PRIMARY KEY, day_id UUID NOT NULL REFERENCES days(id) ON DELETE CASCADE, habit_id UUID NOT NULL REFERENCES habits(id) ON DELETE CASCADE, UNIQUE(day_id, habit_id));",
}

func (d *DB) bootstrap(ctx context.Context) error {
	for _, stmt := range bootstrapStmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
	}
	return nil
}
