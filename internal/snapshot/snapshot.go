package snapshot

import (
	"time"

	"stravaLeaderboardAPI/internal/athlete"
	"stravaLeaderboardAPI/internal/metric"
)

// Snapshot is one athlete's month-to-date totals and ranks as of Timestamp.
type Snapshot struct {
	Timestamp          time.Time `json:"timestamp" db:"timestamp"`
	AthleteID          int64     `json:"athlete_id" db:"athlete_id"`
	TotalDistance      float64   `json:"total_distance" db:"total_distance"`
	TotalMovingTime    float64   `json:"total_moving_time" db:"total_moving_time"`
	TotalElevationGain float64   `json:"total_elevation_gain" db:"total_elevation_gain"`
	AvgPace            *float64  `json:"avg_pace" db:"avg_pace"`
	DistanceRank       int       `json:"distance_rank" db:"distance_rank"`
	TimeRank           int       `json:"time_rank" db:"time_rank"`
	ElevationRank      int       `json:"elevation_rank" db:"elevation_rank"`
	PaceRank           int       `json:"pace_rank" db:"pace_rank"`
}

type field struct {
	value func(*Snapshot) (float64, bool)
	rank  func(*Snapshot) *int
}

var fields = map[metric.Metric]field{
	metric.Distance: {
		value: func(s *Snapshot) (float64, bool) { return s.TotalDistance, true },
		rank:  func(s *Snapshot) *int { return &s.DistanceRank },
	},
	metric.MovingTime: {
		value: func(s *Snapshot) (float64, bool) { return s.TotalMovingTime, true },
		rank:  func(s *Snapshot) *int { return &s.TimeRank },
	},
	metric.ElevationGain: {
		value: func(s *Snapshot) (float64, bool) { return s.TotalElevationGain, true },
		rank:  func(s *Snapshot) *int { return &s.ElevationRank },
	},
	metric.Pace: {
		value: func(s *Snapshot) (float64, bool) {
			if s.AvgPace == nil {
				return 0, false
			}
			return *s.AvgPace, true
		},
		rank: func(s *Snapshot) *int { return &s.PaceRank },
	},
}

// Value returns the metric total; false when the athlete has none (no pace).
func (s Snapshot) Value(m metric.Metric) (float64, bool) {
	return fields[m].value(&s)
}

func (s Snapshot) Rank(m metric.Metric) int {
	return *fields[m].rank(&s)
}

func (s *Snapshot) SetRank(m metric.Metric, rank int) {
	*fields[m].rank(s) = rank
}

// Generation is every athlete's Snapshot written for one day.
type Generation struct {
	Timestamp time.Time         `json:"timestamp"`
	Snapshots []Snapshot        `json:"snapshots"`
	Athletes  athlete.Directory `json:"-"`
}

func (g Generation) Empty() bool {
	return len(g.Snapshots) == 0
}

func (g Generation) Find(athleteID int64) (Snapshot, bool) {
	for _, s := range g.Snapshots {
		if s.AthleteID == athleteID {
			return s, true
		}
	}
	return Snapshot{}, false
}

func (g Generation) Name(athleteID int64) string {
	return g.Athletes.Name(athleteID)
}
