package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stravaLeaderboardAPI/internal/activity"
	"stravaLeaderboardAPI/internal/athlete"
	"stravaLeaderboardAPI/internal/metric"
)

var athletes = athlete.Directory{
	1: {ID: 1, FirstName: "Alice"},
	2: {ID: 2, FirstName: "Bob"},
	3: {ID: 3, FirstName: "Carol"},
}

func mayActivity(id, athleteID int64, day int, distance, movingTime float64) activity.Activity {
	return activity.Activity{
		ID:         id,
		AthleteID:  athleteID,
		Type:       "Run",
		StartDate:  time.Date(2024, time.May, day, 6, 0, 0, 0, time.UTC),
		Distance:   distance,
		MovingTime: movingTime,
	}
}

func values(data []*float64) []any {
	out := make([]any, len(data))
	for i, v := range data {
		if v == nil {
			out[i] = nil
			continue
		}
		out[i] = *v
	}
	return out
}

func assertSeries(t *testing.T, want []float64, got []*float64, msgAndArgs ...any) {
	t.Helper()
	require.GreaterOrEqual(t, len(got), len(want))
	for i, w := range want {
		require.NotNil(t, got[i], msgAndArgs...)
		assert.InDelta(t, w, *got[i], 1e-9, msgAndArgs...)
	}
}

func TestBuildDayOneDistances(t *testing.T) {
	ref := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)
	today := time.Date(2024, time.May, 4, 15, 0, 0, 0, time.UTC)

	c := Build(metric.Distance, ref, today, []activity.Activity{
		mayActivity(1, 1, 1, 10000, 3000),
		mayActivity(2, 2, 1, 20000, 6000),
		mayActivity(3, 3, 1, 20000, 6500),
	}, athletes)

	require.Len(t, c.Labels, 31)
	assert.Equal(t, "2024-05-01", c.Labels[0])
	assert.Equal(t, "2024-05-31", c.Labels[30])
	assert.Equal(t, "2024-05", c.Month)
	assert.Equal(t, "Distance (km)", c.AxisTitle)
	require.Len(t, c.Datasets, 3)

	want := map[string]float64{"Alice": 10, "Bob": 20, "Carol": 20}
	for _, ds := range c.Datasets {
		v := want[ds.Label]
		assertSeries(t, []float64{v, v, v}, ds.Data, ds.Label)
		// today's index and later stay empty
		for i := 3; i < len(ds.Data); i++ {
			assert.Nil(t, ds.Data[i], "%s day %d", ds.Label, i+1)
		}
	}
}

func TestBuildCumulativeSum(t *testing.T) {
	ref := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC)

	c := Build(metric.MovingTime, ref, today, []activity.Activity{
		mayActivity(2, 1, 3, 5000, 1800),
		mayActivity(1, 1, 1, 5000, 3600),
		mayActivity(3, 1, 3, 5000, 1800),
	}, athletes)
	require.Len(t, c.Datasets, 1)

	data := c.Datasets[0].Data
	assertSeries(t, []float64{1, 1, 2}, data)
	// a past month is filled to the end
	require.NotNil(t, data[30])
	assert.InDelta(t, 2.0, *data[30], 1e-9)
}

func TestBuildPaceRunningMean(t *testing.T) {
	ref := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	c := Build(metric.Pace, ref, today, []activity.Activity{
		mayActivity(1, 1, 2, 0, 600),
		mayActivity(2, 1, 3, 5000, 1500),
		mayActivity(3, 1, 5, 5000, 2100),
	}, athletes)
	require.Len(t, c.Datasets, 1)

	data := c.Datasets[0].Data
	assert.Nil(t, data[0])
	// zero-distance activity carries no pace yet
	assert.Nil(t, data[1])
	require.NotNil(t, data[2])
	assert.InDelta(t, 5.0, *data[2], 1e-9)
	assert.InDelta(t, 5.0, *data[3], 1e-9)
	assert.InDelta(t, 6.0, *data[4], 1e-9)
}

func TestBuildIgnoresOtherMonthsAndKeepsColours(t *testing.T) {
	ref := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	april := mayActivity(9, 2, 1, 1000, 300)
	april.StartDate = time.Date(2024, time.April, 30, 12, 0, 0, 0, time.UTC)

	c := Build(metric.Distance, ref, ref, []activity.Activity{mayActivity(1, 1, 1, 1000, 300), april}, athletes)
	require.Len(t, c.Datasets, 1)

	ds := c.Datasets[0]
	assert.Equal(t, "Alice", ds.Label)
	assert.Equal(t, "rgb(31, 119, 180)", ds.BorderColor)
	assert.Equal(t, "rgba(31, 119, 180, 0.4)", ds.BackgroundColor)
	assert.Equal(t, BorderColor(0), BorderColor(len(palette)))
}

func TestForwardFill(t *testing.T) {
	one, three := 1.0, 3.0
	data := []*float64{nil, &one, nil, &three, nil, nil}

	ForwardFill(data, 5)
	assert.Equal(t, []any{nil, 1.0, 1.0, 3.0, 3.0, nil}, values(data))

	// filled points are copies
	*data[2] = 9
	assert.Equal(t, 1.0, *data[1])

	ForwardFill(data, 100)
	assert.Equal(t, 3.0, *data[5])
}
