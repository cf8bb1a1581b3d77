package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a single-file local history store.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the SQLite database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("history: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func initSQLiteSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS analyses (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id         TEXT NOT NULL,
		url              TEXT NOT NULL,
		word_count       INTEGER NOT NULL,
		char_count       INTEGER NOT NULL,
		duration_minutes INTEGER NOT NULL,
		analysis         TEXT,
		model            TEXT,
		created_at       TEXT NOT NULL
	)`)
	return err
}

// Save inserts rec and returns its ID. A zero CreatedAt is set to now.
func (s *SQLite) Save(ctx context.Context, rec Record) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (video_id, url, word_count, char_count, duration_minutes, analysis, model, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.VideoID, rec.URL, rec.WordCount, rec.CharCount, rec.DurationMinutes,
		rec.Analysis, rec.Model, rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("history: insert: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent records first.
func (s *SQLite) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, video_id, url, word_count, char_count, duration_minutes, analysis, model, created_at
		 FROM analyses ORDER BY id DESC LIMIT ?`, normLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	recs := []Record{}
	for rows.Next() {
		var r Record
		var analysis, model sql.NullString
		var created string
		if err := rows.Scan(&r.ID, &r.VideoID, &r.URL, &r.WordCount, &r.CharCount,
			&r.DurationMinutes, &analysis, &model, &created); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		r.Analysis = analysis.String
		r.Model = model.String
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			r.CreatedAt = t
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }
