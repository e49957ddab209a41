package utils

import (
	"fmt"
	"math"
)

// PaceMinutesPerKm converts moving time (s) over distance (m) into minutes per kilometer.
func PaceMinutesPerKm(movingTime, distance float64) float64 {
	return (50 * movingTime) / (3 * distance)
}

func FormatDistance(meters float64) string {
	return fmt.Sprintf("%.2f km", meters/1000)
}

func FormatHours(seconds float64) string {
	return fmt.Sprintf("%.2f h", seconds/3600)
}

// FormatDuration renders seconds as H:MM:SS.
func FormatDuration(seconds float64) string {
	total := int64(math.Round(seconds))
	if total < 0 {
		total = 0
	}

	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
}

// FormatPace renders a minutes-per-km value as M:SS /km.
func FormatPace(minutesPerKm float64) string {
	if minutesPerKm <= 0 || math.IsInf(minutesPerKm, 0) || math.IsNaN(minutesPerKm) {
		return "N/A"
	}

	minutes := math.Floor(minutesPerKm)
	seconds := math.Floor((minutesPerKm - minutes) * 60)

	return fmt.Sprintf("%d:%02d /km", int64(minutes), int64(seconds))
}

func FormatElevation(meters float64) string {
	return fmt.Sprintf("%.0f m", meters)
}

// Ordinal returns the English ordinal of n (1st, 2nd, 3rd, 4th, 11th, 21st, ...).
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}

	return fmt.Sprintf("%d%s", n, suffix)
}
