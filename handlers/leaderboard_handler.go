package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"stravaLeaderboardAPI/internal/chart"
	"stravaLeaderboardAPI/internal/leaderboard"
	"stravaLeaderboardAPI/internal/metric"
	"stravaLeaderboardAPI/internal/period"
	"stravaLeaderboardAPI/services"
)

type LeaderboardReader interface {
	Today() time.Time
	Run(ctx context.Context, ref time.Time) (*services.RunResult, error)
	GetLeaderboard(ctx context.Context, m metric.Metric, ref time.Time) (*leaderboard.Leaderboard, error)
	GetPrevious(ctx context.Context, m metric.Metric, ref time.Time) (*leaderboard.Leaderboard, error)
	GetChart(ctx context.Context, m metric.Metric, ref, today time.Time) (*chart.Chart, error)
	GetHistory(ctx context.Context, m metric.Metric, ref time.Time) ([]*leaderboard.Leaderboard, error)
}

type LeaderboardHandler struct {
	leaderboardService LeaderboardReader
	runTimeout         time.Duration
	logger             *zap.Logger
}

func NewLeaderboardHandler(leaderboardService LeaderboardReader, runTimeout time.Duration, logger *zap.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		runTimeout:         runTimeout,
		logger:             logger,
	}
}

// parseQuery resolves {metric} and ?date=; date defaults to today.
func (h *LeaderboardHandler) parseQuery(w http.ResponseWriter, r *http.Request) (metric.Metric, time.Time, bool) {
	m, err := metric.FromSlug(mux.Vars(r)["metric"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Unknown metric")
		return 0, time.Time{}, false
	}

	today := h.leaderboardService.Today()
	ref := today
	if value := r.URL.Query().Get("date"); value != "" {
		ref, err = period.ParseDay(value, today.Location())
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return 0, time.Time{}, false
		}
	}

	return m, ref, true
}

// GET /api/v1/leaderboards/monthly/{metric}
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	m, ref, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	board, err := h.leaderboardService.GetLeaderboard(ctx, m, ref)
	if err != nil {
		h.logger.Error("failed to get leaderboard", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	respondWithJSON(w, http.StatusOK, board)
}

// GET /api/v1/leaderboards/monthly/{metric}/previous
func (h *LeaderboardHandler) GetPrevious(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	m, ref, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	board, err := h.leaderboardService.GetPrevious(ctx, m, ref)
	if err != nil {
		h.logger.Error("failed to get previous leaderboard", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve previous leaderboard")
		return
	}

	respondWithJSON(w, http.StatusOK, board)
}

// GET /api/v1/leaderboards/monthly/{metric}/chart
func (h *LeaderboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	m, ref, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	c, err := h.leaderboardService.GetChart(ctx, m, ref, h.leaderboardService.Today())
	if err != nil {
		h.logger.Error("failed to get chart", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve chart")
		return
	}

	respondWithJSON(w, http.StatusOK, c)
}

// GET /api/v1/leaderboards/monthly/{metric}/history
func (h *LeaderboardHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	m, ref, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	boards, err := h.leaderboardService.GetHistory(ctx, m, ref)
	if err != nil {
		h.logger.Error("failed to get leaderboard history", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve leaderboard history")
		return
	}

	respondWithJSON(w, http.StatusOK, boards)
}

// POST /api/v1/leaderboards/run
func (h *LeaderboardHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.runTimeout)
	defer cancel()

	result, err := h.leaderboardService.Run(ctx, h.leaderboardService.Today())
	if errors.Is(err, services.ErrRunInProgress) {
		respondWithError(w, http.StatusConflict, "A leaderboard run is already in progress")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Leaderboard run failed")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
