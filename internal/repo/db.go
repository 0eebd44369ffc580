package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB represents a database connection
type DB struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS query_log (
    id            BIGSERIAL PRIMARY KEY,
    query         TEXT        NOT NULL,
    location      TEXT        NOT NULL DEFAULT '',
    needs_weather BOOLEAN     NOT NULL DEFAULT FALSE,
    needs_places  BOOLEAN     NOT NULL DEFAULT FALSE,
    success       BOOLEAN     NOT NULL DEFAULT FALSE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS query_log_created_at_idx ON query_log (created_at DESC);
`

// NewDB connects to Postgres and makes sure the query_log table exists.
func NewDB(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &DB{pool: pool}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

// QueryRecord is one orchestrated query and its outcome.
type QueryRecord struct {
	ID           int64     `json:"id"`
	Query        string    `json:"query"`
	Location     string    `json:"location"`
	NeedsWeather bool      `json:"needs_weather"`
	NeedsPlaces  bool      `json:"needs_places"`
	Success      bool      `json:"success"`
	CreatedAt    time.Time `json:"created_at"`
}

type RecordQueryParams struct {
	Query        string
	Location     string
	NeedsWeather bool
	NeedsPlaces  bool
	Success      bool
}

// Repository interface for database operations
type Repository interface {
	RecordQuery(ctx context.Context, arg RecordQueryParams) (QueryRecord, error)
	RecentQueries(ctx context.Context, limit int32) ([]QueryRecord, error)
}

type repository struct {
	db *DB
}

func NewRepository(db *DB) Repository {
	return &repository{db: db}
}

// RecordQuery appends one query outcome to the history.
func (r *repository) RecordQuery(ctx context.Context, arg RecordQueryParams) (QueryRecord, error) {
	rec := QueryRecord{
		Query:        arg.Query,
		Location:     arg.Location,
		NeedsWeather: arg.NeedsWeather,
		NeedsPlaces:  arg.NeedsPlaces,
		Success:      arg.Success,
	}

	err := r.db.pool.QueryRow(ctx,
		`INSERT INTO query_log (query, location, needs_weather, needs_places, success)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		arg.Query, arg.Location, arg.NeedsWeather, arg.NeedsPlaces, arg.Success,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return QueryRecord{}, fmt.Errorf("failed to record query: %w", err)
	}
	return rec, nil
}

// RecentQueries returns the newest entries, newest first.
func (r *repository) RecentQueries(ctx context.Context, limit int32) ([]QueryRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.pool.Query(ctx,
		`SELECT id, query, location, needs_weather, needs_places, success, created_at
		 FROM query_log
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent queries: %w", err)
	}
	defer rows.Close()

	var records []QueryRecord
	for rows.Next() {
		var rec QueryRecord
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.Location,
			&rec.NeedsWeather, &rec.NeedsPlaces, &rec.Success, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan query record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
