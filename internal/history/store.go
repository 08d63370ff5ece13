// Package history keeps the practice CLI's attempts in a local SQLite file.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"phonics-coach/internal/models"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Entry is one stored attempt.
type Entry struct {
	ID            int64
	Target        string
	ExpectedWord  string
	Transcription string
	Accuracy      int
	Degraded      bool
	Feedback      string
	CreatedAt     time.Time
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies migrations.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY,
			target TEXT NOT NULL,
			expected_word TEXT NOT NULL,
			transcription TEXT NOT NULL,
			accuracy INTEGER NOT NULL,
			degraded INTEGER NOT NULL,
			feedback TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_created_at ON attempts(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_target ON attempts(target);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate history: %w", err)
		}
	}
	return nil
}

// Insert stores a under target and returns its row id.
func (s *Store) Insert(ctx context.Context, target string, a models.Attempt) (int64, error) {
	degraded := 0
	if a.Degraded {
		degraded = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (target, expected_word, transcription, accuracy, degraded, feedback, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		target, a.ExpectedWord, a.Transcription, a.Accuracy, degraded, a.Feedback,
		a.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, target, expected_word, transcription, accuracy, degraded, feedback, created_at
		 FROM attempts ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e        Entry
			degraded int
			created  string
		)
		if err := rows.Scan(&e.ID, &e.Target, &e.ExpectedWord, &e.Transcription, &e.Accuracy, &degraded, &e.Feedback, &created); err != nil {
			return nil, err
		}
		e.Degraded = degraded == 1
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats summarises stored attempts per target. Degraded attempts are counted
// but left out of the accuracy figures.
func (s *Store) Stats(ctx context.Context) ([]models.TargetStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT target,
		        COUNT(*),
		        SUM(degraded),
		        COALESCE(AVG(CASE WHEN degraded = 0 THEN accuracy END), 0),
		        COALESCE(MAX(CASE WHEN degraded = 0 THEN accuracy END), 0)
		 FROM attempts GROUP BY target ORDER BY target`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []models.TargetStats{}
	for rows.Next() {
		var st models.TargetStats
		if err := rows.Scan(&st.Target, &st.Attempts, &st.DegradedAttempts, &st.AverageAccuracy, &st.BestAccuracy); err != nil {
			return nil, err
		}
		st.AverageAccuracy = math.Round(st.AverageAccuracy*100) / 100
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
