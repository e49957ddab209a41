package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"stravaLeaderboardAPI/internal/activity"
	"stravaLeaderboardAPI/internal/athlete"
	"stravaLeaderboardAPI/internal/notification"
	"stravaLeaderboardAPI/internal/period"
	"stravaLeaderboardAPI/internal/snapshot"
)

type fakeActivityStore struct {
	mu         sync.Mutex
	activities []activity.Activity
	athletes   athlete.Directory
	block      chan struct{}
	entered    chan struct{}
}

func (f *fakeActivityStore) add(a ...activity.Activity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activities = append(f.activities, a...)
}

func (f *fakeActivityStore) ListMonth(ctx context.Context, ref time.Time, filter activity.TypeFilter) ([]activity.Activity, error) {
	if f.block != nil {
		f.entered <- struct{}{}
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var out []activity.Activity
	for _, a := range f.activities {
		if filter.Allows(a.Type) && period.Contains(ref, a.LocalDate()) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeActivityStore) Athletes(ctx context.Context) (athlete.Directory, error) {
	return f.athletes, nil
}

type fakeSnapshotStore struct {
	mu         sync.Mutex
	days       map[time.Time][]snapshot.Snapshot
	athletes   athlete.Directory
	replaceErr error
	latestHits int
}

func newFakeSnapshotStore(athletes athlete.Directory) *fakeSnapshotStore {
	return &fakeSnapshotStore{days: map[time.Time][]snapshot.Snapshot{}, athletes: athletes}
}

func (f *fakeSnapshotStore) ReplaceGeneration(ctx context.Context, day time.Time, snaps []snapshot.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.replaceErr != nil {
		return f.replaceErr
	}
	stored := make([]snapshot.Snapshot, len(snaps))
	copy(stored, snaps)
	f.days[period.Day(day)] = stored
	return nil
}

func (f *fakeSnapshotStore) monthDays(ref time.Time) []time.Time {
	var days []time.Time
	for d := range f.days {
		if period.Contains(ref, d) {
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

func (f *fakeSnapshotStore) generation(day time.Time) snapshot.Generation {
	snaps := make([]snapshot.Snapshot, len(f.days[day]))
	copy(snaps, f.days[day])
	return snapshot.Generation{Timestamp: day, Snapshots: snaps, Athletes: f.athletes}
}

func (f *fakeSnapshotStore) Latest(ctx context.Context, ref time.Time) (snapshot.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.latestHits++
	days := f.monthDays(ref)
	if len(days) == 0 {
		return snapshot.Generation{}, nil
	}
	return f.generation(days[len(days)-1]), nil
}

func (f *fakeSnapshotStore) Previous(ctx context.Context, ref time.Time) (snapshot.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	days := f.monthDays(ref)
	if len(days) < 2 {
		return snapshot.Generation{}, nil
	}
	return f.generation(days[len(days)-2]), nil
}

func (f *fakeSnapshotStore) History(ctx context.Context, ref time.Time) ([]snapshot.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var gens []snapshot.Generation
	for _, d := range f.monthDays(ref) {
		gens = append(gens, f.generation(d))
	}
	return gens, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []*notification.Notification
}

func (r *recordingNotifier) DispatchNotification(ctx context.Context, n *notification.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.sent))
	for _, n := range r.sent {
		out = append(out, n.Message)
	}
	return out
}

var errCacheDown = errors.New("cache down")

type memoryCache struct {
	mu          sync.Mutex
	items       map[string][]byte
	invalidated []string
	fail        bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fail {
		return false, errCacheDown
	}
	raw, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memoryCache) Set(ctx context.Context, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fail {
		return errCacheDown
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = raw
	return nil
}

func (c *memoryCache) InvalidateMonth(ctx context.Context, month string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.invalidated = append(c.invalidated, month)
	c.items = map[string][]byte{}
	return nil
}
