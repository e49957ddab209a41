package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stravaLeaderboardAPI/internal/activity"
	"stravaLeaderboardAPI/internal/aggregation"
	"stravaLeaderboardAPI/internal/athlete"
	"stravaLeaderboardAPI/internal/cache"
	"stravaLeaderboardAPI/internal/chart"
	"stravaLeaderboardAPI/internal/leaderboard"
	"stravaLeaderboardAPI/internal/metric"
	"stravaLeaderboardAPI/internal/metrics"
	"stravaLeaderboardAPI/internal/notification"
	"stravaLeaderboardAPI/internal/period"
	"stravaLeaderboardAPI/internal/rankdiff"
	"stravaLeaderboardAPI/internal/snapshot"
)

var ErrRunInProgress = errors.New("leaderboard run already in progress")

type ActivityStore interface {
	ListMonth(ctx context.Context, ref time.Time, filter activity.TypeFilter) ([]activity.Activity, error)
	Athletes(ctx context.Context) (athlete.Directory, error)
}

type SnapshotStore interface {
	ReplaceGeneration(ctx context.Context, day time.Time, snaps []snapshot.Snapshot) error
	Latest(ctx context.Context, ref time.Time) (snapshot.Generation, error)
	Previous(ctx context.Context, ref time.Time) (snapshot.Generation, error)
	History(ctx context.Context, ref time.Time) ([]snapshot.Generation, error)
}

// ViewCache holds rendered views; *cache.Cache satisfies it.
type ViewCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	InvalidateMonth(ctx context.Context, month string) error
}

type noopCache struct{}

func (noopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (noopCache) Set(context.Context, string, any) error         { return nil }
func (noopCache) InvalidateMonth(context.Context, string) error  { return nil }

type LeaderboardService struct {
	activities ActivityStore
	snapshots  SnapshotStore
	notifier   Notifier
	cache      ViewCache
	engine     *aggregation.Engine
	location   *time.Location
	now        func() time.Time
	logger     *zap.Logger
	running    atomic.Bool
}

type RunResult struct {
	RunID     uuid.UUID        `json:"run_id"`
	Day       string           `json:"day"`
	Snapshots int              `json:"snapshots"`
	Events    []rankdiff.Event `json:"events"`
	Duration  time.Duration    `json:"duration"`
}

type LeaderboardOption func(*LeaderboardService)

// WithCache serves reads through c and drops a month's views after each run.
func WithCache(c ViewCache) LeaderboardOption {
	return func(s *LeaderboardService) {
		if c != nil {
			s.cache = c
		}
	}
}

func WithLocation(loc *time.Location) LeaderboardOption {
	return func(s *LeaderboardService) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithClock(now func() time.Time) LeaderboardOption {
	return func(s *LeaderboardService) { s.now = now }
}

func NewLeaderboardService(activities ActivityStore, snapshots SnapshotStore, notifier Notifier, engine *aggregation.Engine, logger *zap.Logger, opts ...LeaderboardOption) *LeaderboardService {
	s := &LeaderboardService{
		activities: activities,
		snapshots:  snapshots,
		notifier:   notifier,
		cache:      noopCache{},
		engine:     engine,
		location:   time.UTC,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the current instant in the leaderboard's timezone.
func (s *LeaderboardService) Today() time.Time {
	return s.now().In(s.location)
}

// Run recomputes ref's month, replaces ref's generation and announces every
// overtake relative to the generation that was visible before the write.
func (s *LeaderboardService) Run(ctx context.Context, ref time.Time) (*RunResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	start := time.Now()
	result := &RunResult{RunID: uuid.New(), Day: period.Day(ref).Format(period.DayLayout)}
	logger := s.logger.With(zap.String("run_id", result.RunID.String()), zap.String("day", result.Day))

	err := s.run(ctx, ref, result, logger)
	result.Duration = time.Since(start)
	metrics.AggregationDuration.Observe(result.Duration.Seconds())

	if err != nil {
		metrics.AggregationRuns.WithLabelValues("failed").Inc()
		logger.Error("leaderboard run failed", zap.Error(err), zap.Duration("duration", result.Duration))
		return nil, err
	}

	metrics.AggregationRuns.WithLabelValues("success").Inc()
	metrics.SnapshotsWritten.Set(float64(result.Snapshots))
	logger.Info("leaderboard run completed",
		zap.Int("snapshots", result.Snapshots),
		zap.Int("events", len(result.Events)),
		zap.Duration("duration", result.Duration))
	return result, nil
}

func (s *LeaderboardService) run(ctx context.Context, ref time.Time, result *RunResult, logger *zap.Logger) error {
	before, err := s.snapshots.Latest(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to load current standings: %w", err)
	}

	activities, err := s.activities.ListMonth(ctx, ref, s.engine.Filter())
	if err != nil {
		return fmt.Errorf("failed to load activities: %w", err)
	}

	snaps := s.engine.Aggregate(ref, activities)
	if len(snaps) == 0 {
		logger.Info("no qualifying activities this month")
		return nil
	}

	if err := s.snapshots.ReplaceGeneration(ctx, ref, snaps); err != nil {
		return fmt.Errorf("failed to store snapshots: %w", err)
	}
	result.Snapshots = len(snaps)

	after, err := s.snapshots.Latest(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to load new standings: %w", err)
	}

	result.Events = rankdiff.Diff(before, after)
	for _, e := range result.Events {
		metrics.RankChangeEvents.WithLabelValues(e.Metric.Slug()).Inc()
		s.notifier.DispatchNotification(ctx, notification.FromRankChange(e))
	}

	if err := s.cache.InvalidateMonth(ctx, period.MonthKey(ref)); err != nil {
		logger.Warn("failed to invalidate cached views", zap.Error(err))
	}
	return nil
}

func (s *LeaderboardService) GetLeaderboard(ctx context.Context, m metric.Metric, ref time.Time) (*leaderboard.Leaderboard, error) {
	month := period.MonthKey(ref)
	key := cache.Key("board", month, m.Slug())

	board := &leaderboard.Leaderboard{}
	if s.cached(ctx, key, board) {
		return board, nil
	}

	gen, err := s.snapshots.Latest(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	board = leaderboard.Build(gen, m, month)
	s.store(ctx, key, board)
	return board, nil
}

// GetPrevious renders the generation before the latest one, the standings
// the last run compared against. Reruns of the same day replace in place, so
// this stays the prior day's board.
func (s *LeaderboardService) GetPrevious(ctx context.Context, m metric.Metric, ref time.Time) (*leaderboard.Leaderboard, error) {
	month := period.MonthKey(ref)
	key := cache.Key("previous", month, m.Slug())

	board := &leaderboard.Leaderboard{}
	if s.cached(ctx, key, board) {
		return board, nil
	}

	gen, err := s.snapshots.Previous(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get previous leaderboard: %w", err)
	}

	board = leaderboard.Build(gen, m, month)
	s.store(ctx, key, board)
	return board, nil
}

// GetChart builds the daily series of ref's month as seen on today.
func (s *LeaderboardService) GetChart(ctx context.Context, m metric.Metric, ref, today time.Time) (*chart.Chart, error) {
	month := period.MonthKey(ref)
	key := cache.Key("chart", month, m.Slug(), period.Day(today).Format(period.DayLayout))

	c := &chart.Chart{}
	if s.cached(ctx, key, c) {
		return c, nil
	}

	activities, err := s.activities.ListMonth(ctx, ref, s.engine.Filter())
	if err != nil {
		return nil, fmt.Errorf("failed to get chart activities: %w", err)
	}
	athletes, err := s.activities.Athletes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chart athletes: %w", err)
	}

	c = chart.Build(m, ref, today, activities, athletes)
	s.store(ctx, key, c)
	return c, nil
}

// GetHistory renders one leaderboard per stored generation of ref's month.
func (s *LeaderboardService) GetHistory(ctx context.Context, m metric.Metric, ref time.Time) ([]*leaderboard.Leaderboard, error) {
	gens, err := s.snapshots.History(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard history: %w", err)
	}

	month := period.MonthKey(ref)
	boards := make([]*leaderboard.Leaderboard, 0, len(gens))
	for _, gen := range gens {
		boards = append(boards, leaderboard.Build(gen, m, month))
	}
	return boards, nil
}

// MonthlyResults announces the winners of every metric for ref's month.
func (s *LeaderboardService) MonthlyResults(ctx context.Context, ref time.Time) ([]leaderboard.Winner, error) {
	gen, err := s.snapshots.Latest(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get final standings: %w", err)
	}

	winners := leaderboard.Winners(gen)
	if len(winners) == 0 {
		s.logger.Info("no monthly results to announce", zap.String("month", period.MonthKey(ref)))
		return nil, nil
	}

	s.notifier.DispatchNotification(ctx, notification.FromMonthlyResults(period.MonthStart(ref), winners))
	return winners, nil
}

func (s *LeaderboardService) cached(ctx context.Context, key string, dst any) bool {
	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *LeaderboardService) store(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
