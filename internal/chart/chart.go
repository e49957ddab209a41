package chart

import (
	"fmt"
	"time"

	"stravaLeaderboardAPI/internal/activity"
	"stravaLeaderboardAPI/internal/athlete"
	"stravaLeaderboardAPI/internal/metric"
	"stravaLeaderboardAPI/internal/period"
)

var palette = [][3]int{
	{31, 119, 180},
	{255, 127, 14},
	{44, 160, 44},
	{214, 39, 40},
	{148, 103, 189},
	{140, 86, 75},
	{227, 119, 194},
	{127, 127, 127},
	{188, 189, 34},
	{23, 190, 207},
}

func BackgroundColor(index int) string {
	c := palette[index%len(palette)]
	return fmt.Sprintf("rgba(%d, %d, %d, 0.4)", c[0], c[1], c[2])
}

func BorderColor(index int) string {
	c := palette[index%len(palette)]
	return fmt.Sprintf("rgb(%d, %d, %d)", c[0], c[1], c[2])
}

// Dataset is one athlete's daily series; a nil point means no value.
type Dataset struct {
	AthleteID       int64      `json:"athlete_id"`
	Label           string     `json:"label"`
	ImageURL        *string    `json:"image_url,omitempty"`
	Data            []*float64 `json:"data"`
	BackgroundColor string     `json:"background_color"`
	BorderColor     string     `json:"border_color"`
}

type Chart struct {
	Metric    metric.Metric `json:"metric"`
	Month     string        `json:"month"`
	AxisTitle string        `json:"axis_title"`
	Labels    []string      `json:"labels"`
	Datasets  []*Dataset    `json:"datasets"`
}

type accumulator struct {
	sum   float64
	count int
}

func (acc *accumulator) add(m metric.Metric, a activity.Activity) (float64, bool) {
	v, ok := a.Value(m)
	if ok {
		acc.sum += v
		acc.count++
	}

	if m.Definition().Accumulation == metric.Mean {
		if acc.count == 0 {
			return 0, false
		}
		return acc.sum / float64(acc.count), true
	}
	return acc.sum, true
}

// Build lays out every athlete's cumulative daily series for ref's month.
// Sum metrics carry a running total; mean metrics carry a running average of
// per-activity values. Gaps are forward filled up to, but not including,
// today's label; a month without today is filled end to end.
func Build(m metric.Metric, ref, today time.Time, activities []activity.Activity, athletes athlete.Directory) *Chart {
	def := m.Definition()
	days := period.DaysOfMonth(ref)

	labels := make([]string, len(days))
	index := make(map[string]int, len(days))
	for i, d := range days {
		labels[i] = d.Format(period.DayLayout)
		index[labels[i]] = i
	}

	ordered := make([]activity.Activity, len(activities))
	copy(ordered, activities)
	activity.SortChronologically(ordered)

	chart := &Chart{
		Metric:    m,
		Month:     period.MonthKey(ref),
		AxisTitle: def.AxisTitle,
		Labels:    labels,
		Datasets:  []*Dataset{},
	}

	datasets := make(map[int64]*Dataset)
	running := make(map[int64]*accumulator)

	for _, a := range ordered {
		dayIndex, ok := index[a.LocalDate().Format(period.DayLayout)]
		if !ok {
			continue
		}

		ds, exists := datasets[a.AthleteID]
		if !exists {
			n := len(chart.Datasets)
			ds = &Dataset{
				AthleteID:       a.AthleteID,
				Label:           athletes.Name(a.AthleteID),
				ImageURL:        athletes.Photo(a.AthleteID),
				Data:            make([]*float64, len(labels)),
				BackgroundColor: BackgroundColor(n),
				BorderColor:     BorderColor(n),
			}
			datasets[a.AthleteID] = ds
			running[a.AthleteID] = &accumulator{}
			chart.Datasets = append(chart.Datasets, ds)
		}

		if v, ok := running[a.AthleteID].add(m, a); ok {
			scaled := v * def.ChartScale
			ds.Data[dayIndex] = &scaled
		}
	}

	cutoff := len(labels)
	if i, ok := index[period.Day(today).Format(period.DayLayout)]; ok {
		cutoff = i
	}
	for _, ds := range chart.Datasets {
		ForwardFill(ds.Data, cutoff)
	}

	return chart
}

// ForwardFill copies the last known value into empty points before cutoff.
func ForwardFill(data []*float64, cutoff int) {
	if cutoff > len(data) {
		cutoff = len(data)
	}
	for i := 1; i < cutoff; i++ {
		if data[i] == nil && data[i-1] != nil {
			v := *data[i-1]
			data[i] = &v
		}
	}
}
