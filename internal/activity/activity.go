package activity

import (
	"sort"
	"time"

	"stravaLeaderboardAPI/internal/metric"
	"stravaLeaderboardAPI/internal/period"
	"stravaLeaderboardAPI/utils"
)

// Activity is an ingested, immutable activity record.
type Activity struct {
	ID            int64     `json:"activity_id" db:"activity_id"`
	AthleteID     int64     `json:"athlete_id" db:"athlete_id"`
	Name          string    `json:"name" db:"name"`
	StartDate     time.Time `json:"start_date" db:"start_date"`
	UTCOffset     int       `json:"utc_offset" db:"utc_offset"`
	Type          string    `json:"type" db:"type"`
	Distance      float64   `json:"distance" db:"distance"`
	MovingTime    float64   `json:"moving_time" db:"moving_time"`
	ElevationGain float64   `json:"total_elevation_gain" db:"total_elevation_gain"`

	ElapsedTime      *float64 `json:"elapsed_time,omitempty" db:"elapsed_time"`
	AverageSpeed     *float64 `json:"average_speed,omitempty" db:"average_speed"`
	MaxSpeed         *float64 `json:"max_speed,omitempty" db:"max_speed"`
	AverageCadence   *float64 `json:"average_cadence,omitempty" db:"average_cadence"`
	HasHeartRate     bool     `json:"has_heartrate" db:"has_heartrate"`
	AverageHeartRate *float64 `json:"average_heartrate,omitempty" db:"average_heartrate"`
	MaxHeartRate     *float64 `json:"max_heartrate,omitempty" db:"max_heartrate"`
	AchievementCount int      `json:"achievement_count" db:"achievement_count"`
}

// LocalDate is the civil day the activity started on in the athlete's timezone.
func (a Activity) LocalDate() time.Time {
	return period.Day(a.StartDate.UTC().Add(time.Duration(a.UTCOffset) * time.Second))
}

// Pace in minutes per km; false when the distance cannot carry a pace.
func (a Activity) Pace() (float64, bool) {
	if a.Distance <= 0 {
		return 0, false
	}
	return utils.PaceMinutesPerKm(a.MovingTime, a.Distance), true
}

var values = map[metric.Metric]func(Activity) (float64, bool){
	metric.Distance:      func(a Activity) (float64, bool) { return a.Distance, true },
	metric.MovingTime:    func(a Activity) (float64, bool) { return a.MovingTime, true },
	metric.ElevationGain: func(a Activity) (float64, bool) { return a.ElevationGain, true },
	metric.Pace:          Activity.Pace,
}

// Value is the activity's own contribution to m.
func (a Activity) Value(m metric.Metric) (float64, bool) {
	fn, ok := values[m]
	if !ok {
		return 0, false
	}
	return fn(a)
}

// SortChronologically orders by start date, then id.
func SortChronologically(activities []Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		if !activities[i].StartDate.Equal(activities[j].StartDate) {
			return activities[i].StartDate.Before(activities[j].StartDate)
		}
		return activities[i].ID < activities[j].ID
	})
}

// TypeFilter is an allow-list of activity types. Empty allows everything.
type TypeFilter []string

func (f TypeFilter) Allows(activityType string) bool {
	if len(f) == 0 {
		return true
	}
	for _, t := range f {
		if t == activityType {
			return true
		}
	}
	return false
}
