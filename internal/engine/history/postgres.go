package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS yt_analyses (
	id               BIGSERIAL PRIMARY KEY,
	video_id         TEXT NOT NULL,
	url              TEXT NOT NULL,
	word_count       INTEGER NOT NULL,
	char_count       INTEGER NOT NULL,
	duration_minutes INTEGER NOT NULL,
	analysis         TEXT NOT NULL DEFAULT '',
	model            TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS yt_analyses_video_id_idx ON yt_analyses (video_id)`

// Postgres is a shared history store backed by a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres creates a pgx pool and runs the schema migration.
func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 4
	config.MinConns = 0

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Save inserts rec and returns its ID.
func (p *Postgres) Save(ctx context.Context, rec Record) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx,
		`INSERT INTO yt_analyses (video_id, url, word_count, char_count, duration_minutes, analysis, model, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()))
		 RETURNING id`,
		rec.VideoID, rec.URL, rec.WordCount, rec.CharCount, rec.DurationMinutes,
		rec.Analysis, rec.Model, nullTime(rec),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("history: insert: %w", err)
	}
	return id, nil
}

// List returns the most recent records first.
func (p *Postgres) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, video_id, url, word_count, char_count, duration_minutes, analysis, model, created_at
		 FROM yt_analyses ORDER BY id DESC LIMIT $1`, normLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var r Record
		err := row.Scan(&r.ID, &r.VideoID, &r.URL, &r.WordCount, &r.CharCount,
			&r.DurationMinutes, &r.Analysis, &r.Model, &r.CreatedAt)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("history: scan: %w", err)
	}
	if recs == nil {
		recs = []Record{}
	}
	return recs, nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func nullTime(rec Record) any {
	if rec.CreatedAt.IsZero() {
		return nil
	}
	return rec.CreatedAt
}
