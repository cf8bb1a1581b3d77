// Package history persists finished analyzer runs, locally in SQLite or
// shared in PostgreSQL.
package history

import (
	"context"
	"time"
)

// DefaultListLimit is used when List is called with limit <= 0.
const DefaultListLimit = 20

// MaxListLimit caps List.
const MaxListLimit = 100

// Record is one saved analyzer run.
type Record struct {
	ID              int64     `json:"id"`
	VideoID         string    `json:"video_id"`
	URL             string    `json:"url"`
	WordCount       int       `json:"word_count"`
	CharCount       int       `json:"char_count"`
	DurationMinutes int       `json:"estimated_duration_minutes"`
	Analysis        string    `json:"analysis,omitempty"`
	Model           string    `json:"model,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Store saves and lists records. Implementations are safe for concurrent use.
type Store interface {
	Save(ctx context.Context, rec Record) (int64, error)
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// Open picks a backend: PostgreSQL when dsn is set, SQLite when sqlitePath
// is set, otherwise (nil, nil) meaning history is off.
func Open(ctx context.Context, dsn, sqlitePath string) (Store, error) {
	switch {
	case dsn != "":
		pg, err := ConnectPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case sqlitePath != "":
		s, err := OpenSQLite(sqlitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, nil
	}
}

func normLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return min(limit, MaxListLimit)
}
