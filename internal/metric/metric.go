package metric

import (
	"errors"
	"fmt"

	"stravaLeaderboardAPI/utils"
)

type Metric int

const (
	Distance Metric = iota
	MovingTime
	ElevationGain
	Pace
)

var ErrUnknownMetric = errors.New("unknown metric")

type Direction int

const (
	HigherIsBetter Direction = iota
	LowerIsBetter
)

// Accumulation is how per-activity values roll up over a month.
type Accumulation int

const (
	Sum Accumulation = iota
	Mean
)

type Definition struct {
	Name         string
	Slug         string
	Direction    Direction
	Accumulation Accumulation
	ChartScale   float64
	AxisTitle    string
	// Phrase precedes the formatted value in overtake messages.
	Phrase string
	Format func(float64) string
}

var order = []Metric{Distance, MovingTime, ElevationGain, Pace}

var definitions = map[Metric]Definition{
	Distance: {
		Name:         "Distance",
		Slug:         "distance",
		Direction:    HigherIsBetter,
		Accumulation: Sum,
		ChartScale:   1.0 / 1000,
		AxisTitle:    "Distance (km)",
		Phrase:       "a total distance of",
		Format:       utils.FormatDistance,
	},
	MovingTime: {
		Name:         "Moving Time",
		Slug:         "moving-time",
		Direction:    HigherIsBetter,
		Accumulation: Sum,
		ChartScale:   1.0 / 3600,
		AxisTitle:    "Moving time (h)",
		Phrase:       "a total moving time of",
		Format:       utils.FormatDuration,
	},
	ElevationGain: {
		Name:         "Elevation Gain",
		Slug:         "elevation-gain",
		Direction:    HigherIsBetter,
		Accumulation: Sum,
		ChartScale:   1,
		AxisTitle:    "Elevation gain (m)",
		Phrase:       "a total elevation gain of",
		Format:       utils.FormatElevation,
	},
	Pace: {
		Name:         "Pace",
		Slug:         "pace",
		Direction:    LowerIsBetter,
		Accumulation: Mean,
		ChartScale:   1,
		AxisTitle:    "Pace /km",
		Phrase:       "an average pace of",
		Format:       utils.FormatPace,
	},
}

// All returns every metric in display order.
func All() []Metric {
	out := make([]Metric, len(order))
	copy(out, order)
	return out
}

func (m Metric) Definition() Definition {
	return definitions[m]
}

func (m Metric) Valid() bool {
	_, ok := definitions[m]
	return ok
}

func (m Metric) String() string {
	if d, ok := definitions[m]; ok {
		return d.Name
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

func (m Metric) Slug() string {
	return definitions[m].Slug
}

// Better reports whether a ranks strictly ahead of b.
func (m Metric) Better(a, b float64) bool {
	if definitions[m].Direction == LowerIsBetter {
		return a < b
	}
	return a > b
}

func (m Metric) Format(v float64) string {
	return definitions[m].Format(v)
}

func FromSlug(slug string) (Metric, error) {
	for _, m := range order {
		if definitions[m].Slug == slug {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, slug)
}

func (m Metric) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMetric, int(m))
	}
	return []byte(m.Slug()), nil
}

func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := FromSlug(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
