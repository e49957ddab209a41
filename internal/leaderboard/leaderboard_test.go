package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stravaLeaderboardAPI/internal/athlete"
	"stravaLeaderboardAPI/internal/metric"
	"stravaLeaderboardAPI/internal/snapshot"
)

func generation() snapshot.Generation {
	pace := 5.25
	return snapshot.Generation{
		Timestamp: time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC),
		Athletes: athlete.Directory{
			1: {ID: 1, FirstName: "Alice"},
			2: {ID: 2, FirstName: "Bob"},
			3: {ID: 3, FirstName: "Carol"},
		},
		Snapshots: []snapshot.Snapshot{
			{AthleteID: 3, TotalDistance: 20000, TotalMovingTime: 7200, DistanceRank: 1, TimeRank: 1, PaceRank: 2},
			{AthleteID: 1, TotalDistance: 10000, TotalMovingTime: 3000, DistanceRank: 3, TimeRank: 3, AvgPace: &pace, PaceRank: 1},
			{AthleteID: 2, TotalDistance: 20000, TotalMovingTime: 6000, DistanceRank: 1, TimeRank: 2, PaceRank: 2},
		},
	}
}

func TestBuildPositionsFollowRanks(t *testing.T) {
	board := Build(generation(), metric.Distance, "2024-05")

	require.Len(t, board.Entries, 3)
	assert.Equal(t, 3, board.TotalUsers)
	assert.Equal(t, "Distance leaderboard", board.Title)
	require.NotNil(t, board.Timestamp)

	names := []string{board.Entries[0].Name, board.Entries[1].Name, board.Entries[2].Name}
	assert.Equal(t, []string{"Bob", "Carol", "Alice"}, names)

	assert.Equal(t, []int{1, 2, 3}, []int{board.Entries[0].Position, board.Entries[1].Position, board.Entries[2].Position})
	assert.Equal(t, []int{1, 1, 3}, []int{board.Entries[0].Rank, board.Entries[1].Rank, board.Entries[2].Rank})

	alice := board.Entries[2]
	assert.Equal(t, "10.00 km", alice.Distance)
	assert.Equal(t, "0.83 h", alice.Time)
	assert.Equal(t, "5:15 /km", alice.Pace)
	assert.Equal(t, "N/A", board.Entries[0].Pace)
}

func TestBuildPaceHasNoValueForMissing(t *testing.T) {
	board := Build(generation(), metric.Pace, "2024-05")

	require.Len(t, board.Entries, 3)
	assert.Equal(t, "Alice", board.Entries[0].Name)
	require.NotNil(t, board.Entries[0].Value)
	assert.Nil(t, board.Entries[1].Value)
}

func TestBuildEmpty(t *testing.T) {
	board := Build(snapshot.Generation{}, metric.Distance, "2024-05")

	assert.Empty(t, board.Entries)
	assert.NotNil(t, board.Entries)
	assert.Nil(t, board.Timestamp)
}

func TestWinners(t *testing.T) {
	winners := Winners(generation())

	require.Len(t, winners, 4)
	assert.Equal(t, Winner{Metric: metric.Distance, Name: "Bob", Value: 20000}, winners[0])
	assert.Equal(t, Winner{Metric: metric.MovingTime, Name: "Carol", Value: 7200}, winners[1])
	assert.Equal(t, metric.Pace, winners[3].Metric)
	assert.Equal(t, "Alice", winners[3].Name)

	assert.Empty(t, Winners(snapshot.Generation{}))
}
