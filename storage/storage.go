package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers "sqlite" driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	method      TEXT NOT NULL,
	started_at  INTEGER NOT NULL,
	elapsed_ms  INTEGER NOT NULL,
	num_authors INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS recommendations (
	run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	user_id  TEXT NOT NULL,
	rank     INTEGER NOT NULL,
	currency TEXT NOT NULL,
	score    REAL NOT NULL,
	PRIMARY KEY (run_id, user_id, rank)
);
`

// Run describes a single recommendation pass
type Run struct {
	ID         string `db:"id"`
	Method     string `db:"method"`
	StartedAt  int64  `db:"started_at"` // unix seconds
	ElapsedMs  int64  `db:"elapsed_ms"`
	NumAuthors int    `db:"num_authors"`
}

// Recommendation is a single currency recommended to a user
type Recommendation struct {
	RunID    string  `db:"run_id"`
	UserID   string  `db:"user_id"`
	Rank     int     `db:"rank"`
	Currency string  `db:"currency"`
	Score    float64 `db:"score"`
}

// Storage keeps run results in a sqlite database
type Storage struct {
	db *sqlx.DB
}

// Open connects to the database file and creates the schema
func Open(ctx context.Context, path string) (*Storage, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open storage %s: %w", path, err)
	}
	// single connection keeps ":memory:" databases consistent
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveRun stores run together with its recommendations in one transaction
func (s *Storage) SaveRun(ctx context.Context, run Run, recs []Recommendation) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO runs (id, method, started_at, elapsed_ms, num_authors)
		VALUES (:id, :method, :started_at, :elapsed_ms, :num_authors)`, run)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO recommendations (run_id, user_id, rank, currency, score)
		VALUES (:run_id, :user_id, :rank, :currency, :score)`)
	if err != nil {
		return fmt.Errorf("prepare recommendations insert: %w", err)
	}
	defer stmt.Close()
	for _, rec := range recs {
		rec.RunID = run.ID
		if _, err := stmt.ExecContext(ctx, rec); err != nil {
			return fmt.Errorf("insert recommendation for %s: %w", rec.UserID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	return nil
}

// Runs returns all stored runs, oldest first
func (s *Storage) Runs(ctx context.Context) ([]Run, error) {
	runs := make([]Run, 0)
	err := s.db.SelectContext(ctx, &runs,
		`SELECT id, method, started_at, elapsed_ms, num_authors FROM runs ORDER BY started_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	return runs, nil
}

// Recommendations returns recommendations of the run ordered by user and rank
func (s *Storage) Recommendations(ctx context.Context, runID string) ([]Recommendation, error) {
	recs := make([]Recommendation, 0)
	err := s.db.SelectContext(ctx, &recs, `
		SELECT run_id, user_id, rank, currency, score FROM recommendations
		WHERE run_id = ? ORDER BY user_id, rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("select recommendations of %s: %w", runID, err)
	}
	return recs, nil
}
