// Package period works with civil calendar days and months. Every value it
// returns is midnight UTC of the calendar day, whatever location the input
// was expressed in.
package period

import "time"

const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd is the first day of the following month (exclusive bound).
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0)
}

func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// Contains reports whether the civil day of t falls into the month of ref.
func Contains(ref, t time.Time) bool {
	d := Day(t)
	return !d.Before(MonthStart(ref)) && d.Before(MonthEnd(ref))
}

// DaysOfMonth lists every calendar day of ref's month in order.
func DaysOfMonth(ref time.Time) []time.Time {
	var days []time.Time
	end := MonthEnd(ref)
	for d := MonthStart(ref); d.Before(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// ParseDay parses a YYYY-MM-DD value in loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DayLayout, value, loc)
}
