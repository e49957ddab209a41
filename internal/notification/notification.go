package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stravaLeaderboardAPI/internal/activity"
	"stravaLeaderboardAPI/internal/athlete"
	"stravaLeaderboardAPI/internal/leaderboard"
	"stravaLeaderboardAPI/internal/period"
	"stravaLeaderboardAPI/internal/rankdiff"
	"stravaLeaderboardAPI/utils"
)

type NotificationType string

const (
	NotificationOvertake        NotificationType = "overtake"
	NotificationActivityCreated NotificationType = "activity_created"
	NotificationMonthlyResults  NotificationType = "monthly_results"
)

type Notification struct {
	ID        uuid.UUID         `json:"id"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data"`
	CreatedAt time.Time         `json:"created_at"`
}

func newNotification(t NotificationType, title, message string, data map[string]string) *Notification {
	return &Notification{
		ID:        uuid.New(),
		Type:      t,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now(),
	}
}

func FromRankChange(e rankdiff.Event) *Notification {
	return newNotification(
		NotificationOvertake,
		fmt.Sprintf("%s leaderboard update", e.Metric),
		e.Message(),
		map[string]string{
			"athlete_id": fmt.Sprintf("%d", e.AthleteID),
			"metric":     e.Metric.Slug(),
			"old_rank":   e.OldRank.String(),
			"new_rank":   fmt.Sprintf("%d", e.NewRank),
			"victims":    strings.Join(e.Victims, ", "),
		},
	)
}

// FromActivity announces a newly recorded activity.
func FromActivity(a activity.Activity, who athlete.Athlete) *Notification {
	pace := "N/A"
	if p, ok := a.Pace(); ok {
		pace = utils.FormatPace(p)
	}

	message := fmt.Sprintf("%s: %s in %s (%s)",
		who.DisplayName(),
		utils.FormatDistance(a.Distance),
		utils.FormatDuration(a.MovingTime),
		pace,
	)
	if a.Name != "" {
		message = fmt.Sprintf("%s - %s", message, a.Name)
	}

	return newNotification(
		NotificationActivityCreated,
		fmt.Sprintf("New %s activity!", a.Type),
		message,
		map[string]string{
			"athlete_id":        fmt.Sprintf("%d", a.AthleteID),
			"activity_id":       fmt.Sprintf("%d", a.ID),
			"achievement_count": fmt.Sprintf("%d", a.AchievementCount),
		},
	)
}

var winnerLines = map[string]string{
	"distance":       "Most distance covered: %s with %s",
	"moving-time":    "Most time spent moving: %s with %s",
	"elevation-gain": "Most elevation gained: %s with %s",
	"pace":           "Fastest pace: %s with %s",
}

// FromMonthlyResults announces the winners of a finished month.
func FromMonthlyResults(month time.Time, winners []leaderboard.Winner) *Notification {
	lines := make([]string, 0, len(winners))
	for _, w := range winners {
		format, ok := winnerLines[w.Metric.Slug()]
		if !ok {
			format = w.Metric.String() + ": %s with %s"
		}
		lines = append(lines, fmt.Sprintf(format, w.Name, w.Metric.Format(w.Value)))
	}

	monthName := month.Month().String()
	return newNotification(
		NotificationMonthlyResults,
		fmt.Sprintf("Results for %s are in!", monthName),
		fmt.Sprintf("The month of %s concludes!\n%s", monthName, strings.Join(lines, "\n")),
		map[string]string{"month": month.Format(period.MonthLayout)},
	)
}
