package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled unit of work. Each run gets its own Timeout-bounded context.
type Job struct {
	Name       string
	Spec       string
	Timeout    time.Duration
	RunOnStart bool
	Run        func(ctx context.Context) error
}

type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	jobs   []Job
	ctx    context.Context
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}

// NewScheduler evaluates every spec in loc, the zone the jobs compute their
// reference day in.
func NewScheduler(ctx context.Context, loc *time.Location, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{logger: logger.Sugar()}
	return &Scheduler{
		// Seconds field, optional
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		ctx:    ctx,
	}
}

func (s *Scheduler) Add(job Job) error {
	if job.Timeout <= 0 {
		job.Timeout = 2 * time.Minute
	}

	if _, err := s.cron.AddFunc(job.Spec, func() { s.execute(job) }); err != nil {
		return fmt.Errorf("failed to schedule %s with %q: %w", job.Name, job.Spec, err)
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) execute(job Job) {
	// keep each run bounded
	ctx, cancel := context.WithTimeout(s.ctx, job.Timeout)
	defer cancel()

	start := time.Now()
	err := job.Run(ctx)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("job failed", zap.String("job", job.Name), zap.Duration("duration", duration), zap.Error(err))
		return
	}
	s.logger.Info("job finished", zap.String("job", job.Name), zap.Duration("duration", duration))
}

// Start runs RunOnStart jobs once in the background and starts the cron loop.
func (s *Scheduler) Start() {
	for _, job := range s.jobs {
		if job.RunOnStart {
			go s.execute(job)
		}
		s.logger.Info("job scheduled", zap.String("job", job.Name), zap.String("spec", job.Spec))
	}
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
