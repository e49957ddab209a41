package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"stravaLeaderboardAPI/internal/athlete"
	"stravaLeaderboardAPI/internal/database"
	"stravaLeaderboardAPI/internal/period"
	"stravaLeaderboardAPI/internal/snapshot"
)

type SnapshotService struct {
	db database.DB
}

func NewSnapshotService(db database.DB) *SnapshotService {
	return &SnapshotService{db: db}
}

const snapshotColumns = `
	s.timestamp, s.athlete_id, s.total_distance, s.total_moving_time,
	s.total_elevation_gain, s.avg_pace, s.distance_rank, s.time_rank,
	s.elevation_rank, s.pace_rank,
	COALESCE(a.firstname, ''), a.lastname, a.photo_url
`

// ReplaceGeneration swaps every snapshot stamped day for snaps in a single
// transaction. Readers see either the old generation or the new one.
func (s *SnapshotService) ReplaceGeneration(ctx context.Context, day time.Time, snaps []snapshot.Snapshot) error {
	day = period.Day(day)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM agg_monthly_stats WHERE timestamp = $1`, day); err != nil {
		return fmt.Errorf("failed to clear generation %s: %w", day.Format(period.DayLayout), err)
	}

	batch := &pgx.Batch{}
	for _, snap := range snaps {
		batch.Queue(`
			INSERT INTO agg_monthly_stats (
				timestamp, athlete_id, total_distance, total_moving_time,
				total_elevation_gain, avg_pace, distance_rank, time_rank,
				elevation_rank, pace_rank
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (timestamp, athlete_id) DO UPDATE SET
				total_distance = EXCLUDED.total_distance,
				total_moving_time = EXCLUDED.total_moving_time,
				total_elevation_gain = EXCLUDED.total_elevation_gain,
				avg_pace = EXCLUDED.avg_pace,
				distance_rank = EXCLUDED.distance_rank,
				time_rank = EXCLUDED.time_rank,
				elevation_rank = EXCLUDED.elevation_rank,
				pace_rank = EXCLUDED.pace_rank
		`,
			day, snap.AthleteID, snap.TotalDistance, snap.TotalMovingTime,
			snap.TotalElevationGain, snap.AvgPace, snap.DistanceRank, snap.TimeRank,
			snap.ElevationRank, snap.PaceRank,
		)
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to write snapshots: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit generation: %w", err)
	}
	return nil
}

// Latest is the newest generation of ref's month; empty when none exists.
func (s *SnapshotService) Latest(ctx context.Context, ref time.Time) (snapshot.Generation, error) {
	query := `
	SELECT` + snapshotColumns + `
	FROM agg_monthly_stats s
	LEFT JOIN athlete a ON a.athlete_id = s.athlete_id
	WHERE s.timestamp = (
		SELECT MAX(timestamp) FROM agg_monthly_stats
		WHERE timestamp >= $1 AND timestamp < $2
	)
	ORDER BY s.athlete_id
	`

	gens, err := s.generations(ctx, query, period.MonthStart(ref), period.MonthEnd(ref))
	if err != nil {
		return snapshot.Generation{}, fmt.Errorf("failed to load latest generation: %w", err)
	}
	if len(gens) == 0 {
		return snapshot.Generation{}, nil
	}
	return gens[0], nil
}

// Previous is the generation written before the latest one of ref's month.
func (s *SnapshotService) Previous(ctx context.Context, ref time.Time) (snapshot.Generation, error) {
	query := `
	SELECT` + snapshotColumns + `
	FROM agg_monthly_stats s
	LEFT JOIN athlete a ON a.athlete_id = s.athlete_id
	WHERE s.timestamp = (
		SELECT MAX(timestamp) FROM agg_monthly_stats
		WHERE timestamp >= $1 AND timestamp < (
			SELECT MAX(timestamp) FROM agg_monthly_stats
			WHERE timestamp >= $1 AND timestamp < $2
		)
	)
	ORDER BY s.athlete_id
	`

	gens, err := s.generations(ctx, query, period.MonthStart(ref), period.MonthEnd(ref))
	if err != nil {
		return snapshot.Generation{}, fmt.Errorf("failed to load previous generation: %w", err)
	}
	if len(gens) == 0 {
		return snapshot.Generation{}, nil
	}
	return gens[0], nil
}

// History returns every generation of ref's month, oldest first.
func (s *SnapshotService) History(ctx context.Context, ref time.Time) ([]snapshot.Generation, error) {
	query := `
	SELECT` + snapshotColumns + `
	FROM agg_monthly_stats s
	LEFT JOIN athlete a ON a.athlete_id = s.athlete_id
	WHERE s.timestamp >= $1 AND s.timestamp < $2
	ORDER BY s.timestamp, s.athlete_id
	`

	gens, err := s.generations(ctx, query, period.MonthStart(ref), period.MonthEnd(ref))
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot history: %w", err)
	}
	return gens, nil
}

func (s *SnapshotService) generations(ctx context.Context, query string, args ...any) ([]snapshot.Generation, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gens []snapshot.Generation
	for rows.Next() {
		var snap snapshot.Snapshot
		var who athlete.Athlete
		if err := rows.Scan(
			&snap.Timestamp, &snap.AthleteID, &snap.TotalDistance, &snap.TotalMovingTime,
			&snap.TotalElevationGain, &snap.AvgPace, &snap.DistanceRank, &snap.TimeRank,
			&snap.ElevationRank, &snap.PaceRank,
			&who.FirstName, &who.LastName, &who.PhotoURL,
		); err != nil {
			return nil, err
		}
		who.ID = snap.AthleteID

		if n := len(gens); n == 0 || !gens[n-1].Timestamp.Equal(snap.Timestamp) {
			gens = append(gens, snapshot.Generation{
				Timestamp: snap.Timestamp,
				Athletes:  athlete.Directory{},
			})
		}
		gen := &gens[len(gens)-1]
		gen.Snapshots = append(gen.Snapshots, snap)
		gen.Athletes[who.ID] = who
	}

	return gens, rows.Err()
}
