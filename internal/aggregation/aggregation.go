package aggregation

import (
	"sort"
	"time"

	"github.com/alitto/pond/v2"

	"stravaLeaderboardAPI/internal/activity"
	"stravaLeaderboardAPI/internal/metric"
	"stravaLeaderboardAPI/internal/period"
	"stravaLeaderboardAPI/internal/snapshot"
)

const defaultWorkers = 4

type Engine struct {
	filter  activity.TypeFilter
	workers int
}

func NewEngine(filter activity.TypeFilter, workers int) *Engine {
	if workers < 1 {
		workers = defaultWorkers
	}
	return &Engine{filter: filter, workers: workers}
}

func (e *Engine) Filter() activity.TypeFilter {
	return e.filter
}

// Aggregate rolls the qualifying activities of ref's month into one ranked
// Snapshot per athlete, stamped with ref's day. Athletes without a qualifying
// activity are left out.
func (e *Engine) Aggregate(ref time.Time, activities []activity.Activity) []snapshot.Snapshot {
	day := period.Day(ref)

	byAthlete := make(map[int64][]activity.Activity)
	for _, a := range activities {
		if !e.filter.Allows(a.Type) || !period.Contains(ref, a.LocalDate()) {
			continue
		}
		byAthlete[a.AthleteID] = append(byAthlete[a.AthleteID], a)
	}
	if len(byAthlete) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(byAthlete))
	for id := range byAthlete {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// Each task owns one slot of results.
	results := make([]snapshot.Snapshot, len(ids))
	pool := pond.NewPool(e.workers, pond.WithQueueSize(len(ids)))
	group := pool.NewGroup()
	for i, id := range ids {
		i, id := i, id
		group.Submit(func() {
			results[i] = Totals(day, id, byAthlete[id])
		})
	}
	_ = group.Wait()
	pool.StopAndWait()

	AssignRanks(results)
	return results
}

// Totals sums one athlete's activities. Pace is the mean of per-activity
// paces, skipping activities without distance; nil when none qualify.
func Totals(day time.Time, athleteID int64, activities []activity.Activity) snapshot.Snapshot {
	ordered := make([]activity.Activity, len(activities))
	copy(ordered, activities)
	activity.SortChronologically(ordered)

	s := snapshot.Snapshot{Timestamp: day, AthleteID: athleteID}

	var paceSum float64
	var paceCount int
	for _, a := range ordered {
		s.TotalDistance += a.Distance
		s.TotalMovingTime += a.MovingTime
		s.TotalElevationGain += a.ElevationGain

		if p, ok := a.Pace(); ok {
			paceSum += p
			paceCount++
		}
	}

	if paceCount > 0 {
		avg := paceSum / float64(paceCount)
		s.AvgPace = &avg
	}

	return s
}

// AssignRanks sets every metric's competition rank on snaps in place.
func AssignRanks(snaps []snapshot.Snapshot) {
	for _, m := range metric.All() {
		ranks := CompetitionRanks(snaps, m)
		for i := range snaps {
			snaps[i].SetRank(m, ranks[i])
		}
	}
}

// CompetitionRanks ranks snaps on m with "1224" semantics: equal values share
// a rank and the next distinct value is ranked one past the number of athletes
// strictly ahead of it. Missing values rank after every present value.
func CompetitionRanks(snaps []snapshot.Snapshot, m metric.Metric) []int {
	idx := make([]int, len(snaps))
	for i := range idx {
		idx[i] = i
	}

	ahead := func(a, b snapshot.Snapshot) bool {
		av, aok := a.Value(m)
		bv, bok := b.Value(m)
		switch {
		case aok && bok:
			return m.Better(av, bv)
		case aok:
			return true
		default:
			return false
		}
	}

	sort.SliceStable(idx, func(i, j int) bool {
		return ahead(snaps[idx[i]], snaps[idx[j]])
	})

	ranks := make([]int, len(snaps))
	rank := 1
	for pos, i := range idx {
		if pos > 0 && ahead(snaps[idx[pos-1]], snaps[i]) {
			rank = pos + 1
		}
		ranks[i] = rank
	}
	return ranks
}
