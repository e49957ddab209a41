package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stravaLeaderboardAPI/internal/metric"
)

func TestLocalDateUsesOffset(t *testing.T) {
	a := Activity{
		StartDate: time.Date(2024, time.April, 30, 23, 30, 0, 0, time.UTC),
		UTCOffset: 7200,
	}
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), a.LocalDate())

	a.UTCOffset = -3600
	assert.Equal(t, time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC), a.LocalDate())
}

func TestPace(t *testing.T) {
	p, ok := Activity{Distance: 5000, MovingTime: 1500}.Pace()
	assert.True(t, ok)
	assert.InDelta(t, 5.0, p, 1e-9)

	_, ok = Activity{Distance: 0, MovingTime: 600}.Pace()
	assert.False(t, ok)
}

func TestValue(t *testing.T) {
	a := Activity{Distance: 10000, MovingTime: 3000, ElevationGain: 120}

	v, ok := a.Value(metric.ElevationGain)
	assert.True(t, ok)
	assert.Equal(t, 120.0, v)

	v, ok = a.Value(metric.Pace)
	assert.True(t, ok)
	assert.InDelta(t, 5.0, v, 1e-9)

	_, ok = a.Value(metric.Metric(42))
	assert.False(t, ok)
}

func TestSortChronologically(t *testing.T) {
	day := time.Date(2024, time.May, 2, 8, 0, 0, 0, time.UTC)
	acts := []Activity{
		{ID: 3, StartDate: day.Add(time.Hour)},
		{ID: 2, StartDate: day},
		{ID: 1, StartDate: day},
	}
	SortChronologically(acts)

	assert.Equal(t, []int64{1, 2, 3}, []int64{acts[0].ID, acts[1].ID, acts[2].ID})
}

func TestTypeFilter(t *testing.T) {
	assert.True(t, TypeFilter(nil).Allows("Ride"))
	assert.True(t, TypeFilter{"Run", "Walk"}.Allows("Walk"))
	assert.False(t, TypeFilter{"Run"}.Allows("Ride"))
}
