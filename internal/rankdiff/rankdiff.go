package rankdiff

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"stravaLeaderboardAPI/internal/metric"
	"stravaLeaderboardAPI/internal/snapshot"
	"stravaLeaderboardAPI/utils"
)

// Rank is an optional rank. The zero value is Unranked, which compares worse
// than every real rank.
type Rank struct {
	value int
	known bool
}

var Unranked = Rank{}

func Ranked(v int) Rank {
	return Rank{value: v, known: true}
}

func (r Rank) Int() (int, bool) {
	return r.value, r.known
}

// WorseThan reports whether a real rank v sits strictly ahead of r.
func (r Rank) WorseThan(v int) bool {
	return !r.known || v < r.value
}

func (r Rank) String() string {
	if !r.known {
		return "unranked"
	}
	return utils.Ordinal(r.value)
}

func (r Rank) MarshalJSON() ([]byte, error) {
	if !r.known {
		return []byte("null"), nil
	}
	return json.Marshal(r.value)
}

// Event describes one athlete overtaking others on one metric.
type Event struct {
	AthleteID   int64         `json:"athlete_id"`
	AthleteName string        `json:"athlete_name"`
	Metric      metric.Metric `json:"metric"`
	OldRank     Rank          `json:"old_rank"`
	NewRank     int           `json:"new_rank"`
	Value       float64       `json:"value"`
	Victims     []string      `json:"victims"`
}

// Message renders the event for the notification sink.
func (e Event) Message() string {
	def := e.Metric.Definition()
	return fmt.Sprintf("%s has overtaken %s and is now in %s place with %s %s",
		e.AthleteName,
		strings.Join(e.Victims, ", "),
		utils.Ordinal(e.NewRank),
		def.Phrase,
		def.Format(e.Value),
	)
}

// Diff compares two generations of the same month and returns an event for
// every (athlete, metric) whose rank improved past at least one competitor.
// An athlete missing from before is treated as Unranked.
func Diff(before, after snapshot.Generation) []Event {
	previous := make(map[int64]snapshot.Snapshot, len(before.Snapshots))
	for _, s := range before.Snapshots {
		previous[s.AthleteID] = s
	}

	name := func(id int64) string {
		if _, ok := after.Athletes[id]; ok {
			return after.Name(id)
		}
		return before.Name(id)
	}

	var events []Event
	for _, current := range after.Snapshots {
		old, seen := previous[current.AthleteID]
		for _, m := range metric.All() {
			oldRank := Unranked
			if seen {
				oldRank = Ranked(old.Rank(m))
			}

			e, ok := diffMetric(before, current, oldRank, m, name)
			if ok {
				events = append(events, e)
			}
		}
	}
	return events
}

func diffMetric(before snapshot.Generation, current snapshot.Snapshot, oldRank Rank, m metric.Metric, name func(int64) string) (Event, bool) {
	newRank := current.Rank(m)
	if !oldRank.WorseThan(newRank) {
		return Event{}, false
	}

	value, ok := current.Value(m)
	if !ok {
		return Event{}, false
	}

	victims := Victims(before, current.AthleteID, m, newRank, oldRank, name)
	if len(victims) == 0 {
		return Event{}, false
	}

	return Event{
		AthleteID:   current.AthleteID,
		AthleteName: name(current.AthleteID),
		Metric:      m,
		OldRank:     oldRank,
		NewRank:     newRank,
		Value:       value,
		Victims:     victims,
	}, true
}

// Victims are the athletes other than mover whose before rank on m lies in
// [newRank, oldRank), sorted by display name.
func Victims(before snapshot.Generation, mover int64, m metric.Metric, newRank int, oldRank Rank, name func(int64) string) []string {
	var victims []string
	for _, s := range before.Snapshots {
		if s.AthleteID == mover {
			continue
		}
		r := s.Rank(m)
		if newRank <= r && oldRank.WorseThan(r) {
			victims = append(victims, name(s.AthleteID))
		}
	}
	sort.Strings(victims)
	return victims
}
