package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stravaLeaderboardAPI/internal/notification"
	"stravaLeaderboardAPI/internal/retry"
)

type flakyProvider struct {
	mu       sync.Mutex
	failures int
	attempts int
	sent     []string
	release  chan struct{}
}

func (p *flakyProvider) SendPush(ctx context.Context, n *notification.Notification) error {
	if p.release != nil {
		<-p.release
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.attempts++
	if p.failures > 0 {
		p.failures--
		return errors.New("fcm unavailable")
	}
	p.sent = append(p.sent, n.Title)
	return nil
}

func (p *flakyProvider) snapshot() (int, []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts, append([]string(nil), p.sent...)
}

var fastRetry = retry.Config{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}

func note(title string) *notification.Notification {
	return &notification.Notification{Type: notification.NotificationOvertake, Title: title}
}

func TestDispatcherDeliversEverything(t *testing.T) {
	provider := &flakyProvider{}
	d := NewNotificationDispatcher(provider, 3, 10, zap.NewNop(), WithRetryConfig(fastRetry))

	for _, title := range []string{"a", "b", "c", "d"} {
		d.DispatchNotification(context.Background(), note(title))
	}
	d.Stop()

	_, sent := provider.snapshot()
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, sent)
}

func TestDispatcherRetriesFailedPush(t *testing.T) {
	provider := &flakyProvider{failures: 2}
	d := NewNotificationDispatcher(provider, 1, 10, zap.NewNop(), WithRetryConfig(fastRetry))

	d.DispatchNotification(context.Background(), note("retry me"))
	d.Stop()

	attempts, sent := provider.snapshot()
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []string{"retry me"}, sent)
}

func TestDispatcherGivesUpAfterMaxRetries(t *testing.T) {
	provider := &flakyProvider{failures: 10}
	d := NewNotificationDispatcher(provider, 1, 10, zap.NewNop(), WithRetryConfig(fastRetry))

	d.DispatchNotification(context.Background(), note("lost"))
	d.Stop()

	attempts, sent := provider.snapshot()
	assert.Equal(t, 3, attempts)
	assert.Empty(t, sent)
}

func TestDispatcherDropsWhenQueueStaysFull(t *testing.T) {
	provider := &flakyProvider{release: make(chan struct{})}
	d := NewNotificationDispatcher(provider, 1, 1, zap.NewNop(),
		WithRetryConfig(fastRetry),
		WithQueueTimeout(20*time.Millisecond),
	)

	d.DispatchNotification(context.Background(), note("in flight"))
	require.Eventually(t, func() bool { return len(d.jobQueue) == 0 }, time.Second, time.Millisecond)

	d.DispatchNotification(context.Background(), note("queued"))
	d.DispatchNotification(context.Background(), note("dropped"))

	close(provider.release)
	d.Stop()

	_, sent := provider.snapshot()
	assert.ElementsMatch(t, []string{"in flight", "queued"}, sent)
}

func TestDispatcherStopIsIdempotent(t *testing.T) {
	d := NewNotificationDispatcher(&flakyProvider{}, 1, 1, zap.NewNop())
	d.Stop()
	d.Stop()

	// after stop nothing blocks
	d.DispatchNotification(context.Background(), note("late"))
}
