package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"stravaLeaderboardAPI/utils"
)

type Config struct {
	DatabaseURL string
	Port        string
	Location    *time.Location

	// LeaderboardActivityTypes restricts which activities count toward the
	// leaderboard; NotifyActivityTypes which new activities get announced.
	// Empty means every type.
	LeaderboardActivityTypes []string
	NotifyActivityTypes      []string

	LeaderboardSchedule    string
	MonthlyResultsSchedule string
	RunOnStartup           bool
	RunTimeout             time.Duration
	AggregationWorkers     int

	RedisURL string
	CacheTTL time.Duration

	FCMCredentialsFile string
	FCMTopic           string
	DispatchWorkers    int
	DispatchQueueSize  int

	MetricsUser string
	MetricsPass string
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		DatabaseURL:              utils.Env("DATABASE_URL", ""),
		Port:                     utils.Env("PORT", "3333"),
		LeaderboardActivityTypes: utils.EnvList("LEADERBOARD_ACTIVITY_TYPES", "Run"),
		NotifyActivityTypes:      utils.EnvList("ALLOWED_ACTIVITY_TYPES", ""),
		LeaderboardSchedule:      utils.Env("LEADERBOARD_SCHEDULE", "0 */10 5-23 * * *"),
		MonthlyResultsSchedule:   utils.Env("MONTHLY_RESULTS_SCHEDULE", "0 0 6 1 * *"),
		RunOnStartup:             utils.EnvBool("RUN_ON_STARTUP", true),
		RunTimeout:               utils.EnvDuration("RUN_TIMEOUT", 2*time.Minute),
		AggregationWorkers:       utils.EnvInt("AGGREGATION_WORKERS", 4),
		RedisURL:                 utils.Env("REDIS_URL", ""),
		CacheTTL:                 utils.EnvDuration("CACHE_TTL", 10*time.Minute),
		FCMCredentialsFile:       utils.Env("FCM_CREDENTIALS_FILE", "./serviceAccountKey.json"),
		FCMTopic:                 utils.Env("FCM_TOPIC", "leaderboard"),
		DispatchWorkers:          utils.EnvInt("DISPATCH_WORKERS", 5),
		DispatchQueueSize:        utils.EnvInt("DISPATCH_QUEUE_SIZE", 100),
		MetricsUser:              utils.Env("METRICS_USER", ""),
		MetricsPass:              utils.Env("METRICS_PASS", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is not set")
	}

	loc, err := time.LoadLocation(utils.Env("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
