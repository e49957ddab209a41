package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"stravaLeaderboardAPI/internal/activity"
	"stravaLeaderboardAPI/internal/athlete"
	"stravaLeaderboardAPI/services"
)

type ActivityRecorder interface {
	RecordActivity(ctx context.Context, a activity.Activity) (bool, error)
	UpsertAthlete(ctx context.Context, req *athlete.UpsertAthleteRequest) (*athlete.Athlete, error)
}

type ActivityHandler struct {
	activityService ActivityRecorder
	logger          *zap.Logger
}

func NewActivityHandler(activityService ActivityRecorder, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{activityService: activityService, logger: logger}
}

// POST /api/v1/activities
func (h *ActivityHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var a activity.Activity
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.activityService.RecordActivity(ctx, a)
	if errors.Is(err, services.ErrInvalidInput) {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to record activity", zap.Int64("activity_id", a.ID), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to record activity")
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	respondWithJSON(w, code, map[string]any{
		"activity_id": a.ID,
		"created":     created,
	})
}

// POST /api/v1/athletes
func (h *ActivityHandler) UpsertAthlete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req athlete.UpsertAthleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	who, err := h.activityService.UpsertAthlete(ctx, &req)
	if errors.Is(err, services.ErrInvalidInput) {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to upsert athlete", zap.Int64("athlete_id", req.ID), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to save athlete")
		return
	}

	respondWithJSON(w, http.StatusOK, who)
}
