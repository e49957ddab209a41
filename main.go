package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"stravaLeaderboardAPI/handlers"
	"stravaLeaderboardAPI/internal/activity"
	"stravaLeaderboardAPI/internal/aggregation"
	"stravaLeaderboardAPI/internal/cache"
	"stravaLeaderboardAPI/internal/config"
	"stravaLeaderboardAPI/internal/database"
	"stravaLeaderboardAPI/internal/logging"
	"stravaLeaderboardAPI/internal/notification"
	"stravaLeaderboardAPI/internal/workers"
	"stravaLeaderboardAPI/middleware"
	"stravaLeaderboardAPI/services"
)

var (
	cfg                *config.Config
	logger             *zap.Logger
	dbPool             *pgxpool.Pool
	viewCache          *cache.Cache
	dispatcher         *services.NotificationDispatcher
	activityService    *services.ActivityService
	snapshotService    *services.SnapshotService
	leaderboardService *services.LeaderboardService
)

func init() {
	var err error
	logger, err = logging.New()
	if err != nil {
		panic(err)
	}

	cfg, err = config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbPool, err = database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(ctx, dbPool); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Successfully connected to database")

	var push services.PushNotificationProvider
	fcmService, err := notification.NewFCMService(ctx, cfg.FCMCredentialsFile, cfg.FCMTopic, logger)
	if err != nil {
		logger.Warn("Could not initialize FCM, notifications will only be logged", zap.Error(err))
		push = notification.NewLogSink(logger)
	} else {
		push = fcmService
		logger.Info("FCM Push Provider initialized successfully", zap.String("topic", cfg.FCMTopic))
	}
	dispatcher = services.NewNotificationDispatcher(push, cfg.DispatchWorkers, cfg.DispatchQueueSize, logger)

	opts := []services.LeaderboardOption{services.WithLocation(cfg.Location)}
	var activityOpts []services.ActivityOption
	if cfg.RedisURL != "" {
		viewCache, err = cache.New(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			logger.Warn("Could not connect to redis, serving views uncached", zap.Error(err))
		} else {
			opts = append(opts, services.WithCache(viewCache))
			activityOpts = append(activityOpts, services.WithViewCache(viewCache))
			logger.Info("Redis view cache initialized", zap.Duration("ttl", cfg.CacheTTL))
		}
	}

	engine := aggregation.NewEngine(activity.TypeFilter(cfg.LeaderboardActivityTypes), cfg.AggregationWorkers)
	activityService = services.NewActivityService(dbPool, dispatcher, activity.TypeFilter(cfg.NotifyActivityTypes), logger, activityOpts...)
	snapshotService = services.NewSnapshotService(dbPool)
	leaderboardService = services.NewLeaderboardService(activityService, snapshotService, dispatcher, engine, logger, opts...)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		logger.Info("Closing database connection pool...")
		dbPool.Close()
		_ = logger.Sync()
	}()

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	scheduler := workers.NewScheduler(appCtx, cfg.Location, logger)
	if err := scheduler.Add(workers.Job{
		Name:       "update-leaderboard",
		Spec:       cfg.LeaderboardSchedule,
		Timeout:    cfg.RunTimeout,
		RunOnStart: cfg.RunOnStartup,
		Run: func(ctx context.Context) error {
			_, err := leaderboardService.Run(ctx, leaderboardService.Today())
			return err
		},
	}); err != nil {
		logger.Fatal("Failed to schedule leaderboard job", zap.Error(err))
	}
	if err := scheduler.Add(workers.Job{
		Name:    "monthly-results",
		Spec:    cfg.MonthlyResultsSchedule,
		Timeout: cfg.RunTimeout,
		Run: func(ctx context.Context) error {
			// Runs on the 1st, so yesterday is the month that just ended.
			_, err := leaderboardService.MonthlyResults(ctx, leaderboardService.Today().AddDate(0, 0, -1))
			return err
		},
	}); err != nil {
		logger.Fatal("Failed to schedule monthly results job", zap.Error(err))
	}
	scheduler.Start()

	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService, cfg.RunTimeout, logger)
	activityHandler := handlers.NewActivityHandler(activityService, logger)

	rateLimiter := middleware.NewRateLimiter(rate.Limit(5), 30)
	go rateLimiter.Cleanup(appCtx)

	r := mux.NewRouter()
	r.Use(rateLimiter.Middleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))
	r.HandleFunc("/health", handlers.HealthHandler(dbPool)).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/leaderboards/monthly/{metric}", leaderboardHandler.GetLeaderboard).Methods("GET")
	api.HandleFunc("/leaderboards/monthly/{metric}/previous", leaderboardHandler.GetPrevious).Methods("GET")
	api.HandleFunc("/leaderboards/monthly/{metric}/chart", leaderboardHandler.GetChart).Methods("GET")
	api.HandleFunc("/leaderboards/monthly/{metric}/history", leaderboardHandler.GetHistory).Methods("GET")
	api.HandleFunc("/leaderboards/run", leaderboardHandler.TriggerRun).Methods("POST")

	api.HandleFunc("/activities", activityHandler.RecordActivity).Methods("POST")
	api.HandleFunc("/athletes", activityHandler.UpsertAthlete).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
	)

	server := http.Server{
		Addr:         cfg.Addr(),
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RunTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("addr", cfg.Addr()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Error starting server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Got signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	appCancel()
	scheduler.Stop()
	dispatcher.Stop()
	if viewCache != nil {
		_ = viewCache.Close()
	}

	logger.Info("Server shutdown complete")
}
