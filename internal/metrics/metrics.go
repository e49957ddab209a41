package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	AggregationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_aggregation_runs_total",
			Help: "Aggregation runs by outcome",
		},
		[]string{"status"},
	)
	AggregationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "leaderboard_aggregation_duration_seconds",
			Help:    "Duration of aggregation runs",
			Buckets: prometheus.DefBuckets,
		},
	)
	SnapshotsWritten = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "leaderboard_snapshots_written",
			Help: "Snapshots written by the last successful run",
		},
	)
	RankChangeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_rank_change_events_total",
			Help: "Overtake events emitted per metric",
		},
		[]string{"metric"},
	)
	NotificationsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_notifications_total",
			Help: "Notifications handed to the push provider by outcome",
		},
		[]string{"type", "status"},
	)
)

// MustRegister registers the leaderboard collectors on reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		AggregationRuns,
		AggregationDuration,
		SnapshotsWritten,
		RankChangeEvents,
		NotificationsDispatched,
	)
}
