package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"stravaLeaderboardAPI/internal/activity"
	"stravaLeaderboardAPI/internal/athlete"
	"stravaLeaderboardAPI/internal/database"
	"stravaLeaderboardAPI/internal/notification"
	"stravaLeaderboardAPI/internal/period"
)

var ErrInvalidInput = errors.New("invalid input")

// Notifier queues notifications for delivery.
type Notifier interface {
	DispatchNotification(ctx context.Context, n *notification.Notification)
}

type ActivityService struct {
	db       database.DB
	notifier Notifier
	announce activity.TypeFilter
	cache    ViewCache
	logger   *zap.Logger
}

type ActivityOption func(*ActivityService)

// WithViewCache drops the cached views of an activity's month when it is first recorded.
func WithViewCache(c ViewCache) ActivityOption {
	return func(s *ActivityService) {
		if c != nil {
			s.cache = c
		}
	}
}

func NewActivityService(db database.DB, notifier Notifier, announce activity.TypeFilter, logger *zap.Logger, opts ...ActivityOption) *ActivityService {
	s := &ActivityService{db: db, notifier: notifier, announce: announce, cache: noopCache{}, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordActivity stores a. Activities are immutable once ingested, so a
// repeated id is ignored and reported as not new.
func (s *ActivityService) RecordActivity(ctx context.Context, a activity.Activity) (bool, error) {
	if a.ID == 0 || a.AthleteID == 0 {
		return false, fmt.Errorf("%w: activity_id and athlete_id are required", ErrInvalidInput)
	}
	if a.StartDate.IsZero() {
		return false, fmt.Errorf("%w: start_date is required", ErrInvalidInput)
	}
	if a.Type == "" {
		return false, fmt.Errorf("%w: type is required", ErrInvalidInput)
	}

	query := `
	INSERT INTO athlete_activity (
		activity_id, athlete_id, name, start_date, utc_offset, type,
		distance, moving_time, total_elevation_gain, elapsed_time,
		average_speed, max_speed, average_cadence, has_heartrate,
		average_heartrate, max_heartrate, achievement_count
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	ON CONFLICT (activity_id) DO NOTHING
	`

	tag, err := s.db.Exec(ctx, query,
		a.ID, a.AthleteID, a.Name, a.StartDate.UTC(), a.UTCOffset, a.Type,
		a.Distance, a.MovingTime, a.ElevationGain, a.ElapsedTime,
		a.AverageSpeed, a.MaxSpeed, a.AverageCadence, a.HasHeartRate,
		a.AverageHeartRate, a.MaxHeartRate, a.AchievementCount,
	)
	if err != nil {
		return false, fmt.Errorf("failed to record activity: %w", err)
	}

	created := tag.RowsAffected() > 0
	if !created {
		return false, nil
	}

	// charts are built from raw activities
	month := period.MonthKey(a.LocalDate())
	if err := s.cache.InvalidateMonth(ctx, month); err != nil {
		s.logger.Warn("failed to invalidate cached views", zap.String("month", month), zap.Error(err))
	}

	if s.announce.Allows(a.Type) {
		s.announceActivity(ctx, a)
	}
	return true, nil
}

func (s *ActivityService) announceActivity(ctx context.Context, a activity.Activity) {
	who, err := s.GetAthlete(ctx, a.AthleteID)
	if err != nil {
		s.logger.Warn("athlete lookup failed for announcement",
			zap.Int64("athlete_id", a.AthleteID), zap.Error(err))
		who = athlete.Athlete{ID: a.AthleteID}
	}
	s.notifier.DispatchNotification(ctx, notification.FromActivity(a, who))
}

// ListMonth returns the activities whose local start date falls in ref's
// month and whose type passes filter.
func (s *ActivityService) ListMonth(ctx context.Context, ref time.Time, filter activity.TypeFilter) ([]activity.Activity, error) {
	query := `
	SELECT activity_id, athlete_id, name, start_date, utc_offset, type,
		   distance, moving_time, total_elevation_gain, elapsed_time,
		   average_speed, max_speed, average_cadence, has_heartrate,
		   average_heartrate, max_heartrate, achievement_count
	FROM athlete_activity
	WHERE (start_date AT TIME ZONE 'UTC' + make_interval(secs => utc_offset))::date >= $1
	  AND (start_date AT TIME ZONE 'UTC' + make_interval(secs => utc_offset))::date < $2
	  AND (COALESCE(cardinality($3::text[]), 0) = 0 OR type = ANY($3::text[]))
	ORDER BY start_date, activity_id
	`

	rows, err := s.db.Query(ctx, query, period.MonthStart(ref), period.MonthEnd(ref), []string(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []activity.Activity
	for rows.Next() {
		var a activity.Activity
		if err := rows.Scan(
			&a.ID, &a.AthleteID, &a.Name, &a.StartDate, &a.UTCOffset, &a.Type,
			&a.Distance, &a.MovingTime, &a.ElevationGain, &a.ElapsedTime,
			&a.AverageSpeed, &a.MaxSpeed, &a.AverageCadence, &a.HasHeartRate,
			&a.AverageHeartRate, &a.MaxHeartRate, &a.AchievementCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

func (s *ActivityService) UpsertAthlete(ctx context.Context, req *athlete.UpsertAthleteRequest) (*athlete.Athlete, error) {
	if req.ID == 0 {
		return nil, fmt.Errorf("%w: athlete_id is required", ErrInvalidInput)
	}

	query := `
	INSERT INTO athlete (athlete_id, firstname, lastname, photo_url, updated_at)
	VALUES ($1, $2, $3, $4, NOW())
	ON CONFLICT (athlete_id) DO UPDATE SET
		firstname = EXCLUDED.firstname,
		lastname = EXCLUDED.lastname,
		photo_url = EXCLUDED.photo_url,
		updated_at = NOW()
	RETURNING athlete_id, firstname, lastname, photo_url, updated_at
	`

	who := &athlete.Athlete{}
	err := s.db.QueryRow(ctx, query, req.ID, req.FirstName, req.LastName, req.PhotoURL).Scan(
		&who.ID, &who.FirstName, &who.LastName, &who.PhotoURL, &who.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert athlete: %w", err)
	}
	return who, nil
}

func (s *ActivityService) GetAthlete(ctx context.Context, id int64) (athlete.Athlete, error) {
	var who athlete.Athlete
	err := s.db.QueryRow(ctx, `
		SELECT athlete_id, firstname, lastname, photo_url, updated_at
		FROM athlete WHERE athlete_id = $1
	`, id).Scan(&who.ID, &who.FirstName, &who.LastName, &who.PhotoURL, &who.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return athlete.Athlete{ID: id}, nil
	}
	if err != nil {
		return athlete.Athlete{}, fmt.Errorf("failed to get athlete: %w", err)
	}
	return who, nil
}

// Athletes loads display metadata for every known athlete.
func (s *ActivityService) Athletes(ctx context.Context) (athlete.Directory, error) {
	rows, err := s.db.Query(ctx, `SELECT athlete_id, firstname, lastname, photo_url, updated_at FROM athlete`)
	if err != nil {
		return nil, fmt.Errorf("failed to list athletes: %w", err)
	}
	defer rows.Close()

	dir := athlete.Directory{}
	for rows.Next() {
		var who athlete.Athlete
		if err := rows.Scan(&who.ID, &who.FirstName, &who.LastName, &who.PhotoURL, &who.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan athlete: %w", err)
		}
		dir[who.ID] = who
	}
	return dir, rows.Err()
}
