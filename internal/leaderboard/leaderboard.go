package leaderboard

import (
	"sort"
	"time"

	"stravaLeaderboardAPI/internal/metric"
	"stravaLeaderboardAPI/internal/snapshot"
	"stravaLeaderboardAPI/utils"
)

type LeaderboardEntry struct {
	Position      int      `json:"position"`
	Rank          int      `json:"rank"`
	AthleteID     int64    `json:"athlete_id"`
	Name          string   `json:"name"`
	PhotoURL      *string  `json:"photo_url,omitempty"`
	Value         *float64 `json:"value"`
	Distance      string   `json:"distance"`
	Time          string   `json:"time"`
	ElevationGain string   `json:"elevation_gain"`
	Pace          string   `json:"pace"`
}

type Leaderboard struct {
	Metric     metric.Metric       `json:"metric"`
	Title      string              `json:"title"`
	Month      string              `json:"month"`
	Timestamp  *time.Time          `json:"timestamp,omitempty"`
	Entries    []*LeaderboardEntry `json:"entries"`
	TotalUsers int                 `json:"total_users"`
}

// Build orders gen by the stored rank of m. Position is the plain 1..n
// enumeration of that order, so tied ranks still get distinct positions.
func Build(gen snapshot.Generation, m metric.Metric, month string) *Leaderboard {
	snaps := make([]snapshot.Snapshot, len(gen.Snapshots))
	copy(snaps, gen.Snapshots)

	sort.SliceStable(snaps, func(i, j int) bool {
		if ri, rj := snaps[i].Rank(m), snaps[j].Rank(m); ri != rj {
			return ri < rj
		}
		if ni, nj := gen.Name(snaps[i].AthleteID), gen.Name(snaps[j].AthleteID); ni != nj {
			return ni < nj
		}
		return snaps[i].AthleteID < snaps[j].AthleteID
	})

	board := &Leaderboard{
		Metric:     m,
		Title:      m.String() + " leaderboard",
		Month:      month,
		Entries:    make([]*LeaderboardEntry, 0, len(snaps)),
		TotalUsers: len(snaps),
	}
	if !gen.Empty() {
		ts := gen.Timestamp
		board.Timestamp = &ts
	}

	for i, s := range snaps {
		entry := &LeaderboardEntry{
			Position:      i + 1,
			Rank:          s.Rank(m),
			AthleteID:     s.AthleteID,
			Name:          gen.Name(s.AthleteID),
			PhotoURL:      gen.Athletes.Photo(s.AthleteID),
			Distance:      utils.FormatDistance(s.TotalDistance),
			Time:          utils.FormatHours(s.TotalMovingTime),
			ElevationGain: utils.FormatElevation(s.TotalElevationGain),
			Pace:          "N/A",
		}
		if v, ok := s.Value(m); ok {
			entry.Value = &v
		}
		if s.AvgPace != nil {
			entry.Pace = utils.FormatPace(*s.AvgPace)
		}
		board.Entries = append(board.Entries, entry)
	}

	return board
}

type Winner struct {
	Metric metric.Metric `json:"metric"`
	Name   string        `json:"name"`
	Value  float64       `json:"value"`
}

// Winners returns the first ranked athlete of every metric, skipping metrics
// nobody has a value for.
func Winners(gen snapshot.Generation) []Winner {
	var winners []Winner
	for _, m := range metric.All() {
		board := Build(gen, m, "")
		if len(board.Entries) == 0 || board.Entries[0].Value == nil {
			continue
		}
		top := board.Entries[0]
		winners = append(winners, Winner{Metric: m, Name: top.Name, Value: *top.Value})
	}
	return winners
}
