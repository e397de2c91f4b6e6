// Package store persists attempt history to sqlite so a run can be
// audited after the fact. Persistence is optional: a nil *Store is a
// valid no-op collaborator.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/use-agent/quizpilot/models"
)

// Store wraps the sqlite connection.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			url TEXT NOT NULL,
			depth INTEGER NOT NULL,
			retry INTEGER NOT NULL,
			correct INTEGER,
			reason TEXT,
			next_url TEXT,
			exit_code INTEGER NOT NULL,
			timed_out INTEGER NOT NULL,
			stdout_bytes INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			run_id TEXT PRIMARY KEY,
			start_url TEXT NOT NULL,
			outcome TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_run ON attempts(run_id)`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("store: create schema: %w", err)
		}
	}
	return nil
}

// RecordAttempt inserts one scrape-generate-execute cycle.
func (s *Store) RecordAttempt(ctx context.Context, runID string, attempt *models.QuizAttempt, verdict models.SubmissionVerdict, exec models.ExecResult) error {
	if s == nil {
		return nil
	}

	var correct sql.NullBool
	if verdict.Correct != nil {
		correct = sql.NullBool{Bool: *verdict.Correct, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts
			(run_id, url, depth, retry, correct, reason, next_url, exit_code, timed_out, stdout_bytes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, attempt.URL, attempt.Depth, attempt.RetryCount,
		correct, verdict.Reason, verdict.NextURL,
		exec.ExitCode, exec.TimedOut, len(exec.Stdout), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("store: insert attempt: %w", err)
	}
	return nil
}

// RecordOutcome upserts the terminal outcome for a run.
func (s *Store) RecordOutcome(ctx context.Context, runID, startURL string, outcome *models.QuizOutcome) error {
	if s == nil {
		return nil
	}

	payload, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("store: marshal outcome: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO outcomes (run_id, start_url, outcome, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET outcome = excluded.outcome`,
		runID, startURL, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("store: insert outcome: %w", err)
	}
	return nil
}
