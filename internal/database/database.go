package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of *pgxpool.Pool the services use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

func Connect(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS athlete (
		athlete_id BIGINT PRIMARY KEY,
		firstname  TEXT NOT NULL DEFAULT '',
		lastname   TEXT,
		photo_url  TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS athlete_activity (
		activity_id          BIGINT PRIMARY KEY,
		athlete_id           BIGINT NOT NULL,
		name                 TEXT NOT NULL DEFAULT '',
		start_date           TIMESTAMPTZ NOT NULL,
		utc_offset           INTEGER NOT NULL DEFAULT 0,
		type                 TEXT NOT NULL,
		distance             DOUBLE PRECISION NOT NULL DEFAULT 0,
		moving_time          DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_elevation_gain DOUBLE PRECISION NOT NULL DEFAULT 0,
		elapsed_time         DOUBLE PRECISION,
		average_speed        DOUBLE PRECISION,
		max_speed            DOUBLE PRECISION,
		average_cadence      DOUBLE PRECISION,
		has_heartrate        BOOLEAN NOT NULL DEFAULT FALSE,
		average_heartrate    DOUBLE PRECISION,
		max_heartrate        DOUBLE PRECISION,
		achievement_count    INTEGER NOT NULL DEFAULT 0,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_athlete_activity_start ON athlete_activity (start_date)`,
	`CREATE TABLE IF NOT EXISTS agg_monthly_stats (
		timestamp            DATE NOT NULL,
		athlete_id           BIGINT NOT NULL,
		total_distance       DOUBLE PRECISION NOT NULL,
		total_moving_time    DOUBLE PRECISION NOT NULL,
		total_elevation_gain DOUBLE PRECISION NOT NULL,
		avg_pace             DOUBLE PRECISION,
		distance_rank        INTEGER NOT NULL,
		time_rank            INTEGER NOT NULL,
		elevation_rank       INTEGER NOT NULL,
		pace_rank            INTEGER NOT NULL,
		PRIMARY KEY (timestamp, athlete_id)
	)`,
}

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
