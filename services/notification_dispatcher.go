package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"stravaLeaderboardAPI/internal/metrics"
	"stravaLeaderboardAPI/internal/notification"
	"stravaLeaderboardAPI/internal/retry"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, n *notification.Notification) error
}

// NotificationDispatcher delivers notifications through the push provider on
// a pool of workers. Delivery order is not guaranteed.
type NotificationDispatcher struct {
	pushProvider PushNotificationProvider
	retryConfig  retry.Config
	logger       *zap.Logger
	workers      int
	jobQueue     chan *DispatchJob
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	queueTimeout time.Duration
	sendTimeout  time.Duration
}

type DispatchJob struct {
	Notification *notification.Notification
}

type DispatcherOption func(*NotificationDispatcher)

func WithRetryConfig(cfg retry.Config) DispatcherOption {
	return func(d *NotificationDispatcher) { d.retryConfig = cfg }
}

func WithQueueTimeout(timeout time.Duration) DispatcherOption {
	return func(d *NotificationDispatcher) { d.queueTimeout = timeout }
}

func NewNotificationDispatcher(provider PushNotificationProvider, workers, queueSize int, logger *zap.Logger, opts ...DispatcherOption) *NotificationDispatcher {
	if workers < 1 {
		workers = 5
	}
	if queueSize < 1 {
		queueSize = 100
	}

	dispatcher := &NotificationDispatcher{
		pushProvider: provider,
		retryConfig:  retry.DefaultConfig(),
		logger:       logger,
		workers:      workers,
		jobQueue:     make(chan *DispatchJob, queueSize),
		stopChan:     make(chan struct{}),
		queueTimeout: 5 * time.Second,
		sendTimeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(dispatcher)
	}

	dispatcher.startWorkers()
	return dispatcher
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

func (d *NotificationDispatcher) worker(id int) {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			// Drain whatever was queued before the stop.
			for {
				select {
				case job := <-d.jobQueue:
					d.processJob(job)
				default:
					return
				}
			}
		}
	}
}

func (d *NotificationDispatcher) processJob(job *DispatchJob) {
	n := job.Notification

	err := retry.WithBackoff(context.Background(), d.retryConfig, d.logger, "send push", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		defer cancel()
		return d.pushProvider.SendPush(ctx, n)
	})
	if err != nil {
		metrics.NotificationsDispatched.WithLabelValues(string(n.Type), "failed").Inc()
		d.logger.Error("Push failed",
			zap.String("notification_id", n.ID.String()),
			zap.String("type", string(n.Type)),
			zap.Error(err))
		return
	}

	metrics.NotificationsDispatched.WithLabelValues(string(n.Type), "sent").Inc()
}

// DispatchNotification queues n. It gives up when the queue stays full past
// the queue timeout, ctx is done or the dispatcher is stopped.
func (d *NotificationDispatcher) DispatchNotification(ctx context.Context, n *notification.Notification) {
	job := &DispatchJob{Notification: n}

	timer := time.NewTimer(d.queueTimeout)
	defer timer.Stop()

	select {
	case d.jobQueue <- job:
		d.logger.Debug("Notification queued for dispatch", zap.String("notification_id", n.ID.String()))
	case <-timer.C:
		metrics.NotificationsDispatched.WithLabelValues(string(n.Type), "dropped").Inc()
		d.logger.Warn("Failed to queue notification: queue full", zap.String("notification_id", n.ID.String()))
	case <-ctx.Done():
		metrics.NotificationsDispatched.WithLabelValues(string(n.Type), "dropped").Inc()
		d.logger.Warn("Failed to queue notification", zap.String("notification_id", n.ID.String()), zap.Error(ctx.Err()))
	case <-d.stopChan:
		metrics.NotificationsDispatched.WithLabelValues(string(n.Type), "dropped").Inc()
		d.logger.Warn("Dispatcher stopped, notification dropped", zap.String("notification_id", n.ID.String()))
	}
}

func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.logger.Info("Stopping notification dispatcher...")
		close(d.stopChan)
		d.wg.Wait()
		d.logger.Info("Notification dispatcher stopped")
	})
}
