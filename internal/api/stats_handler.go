package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/recallkit/recall-api/internal/api/shared"
	"github.com/recallkit/recall-api/internal/platform/logger"
	"github.com/recallkit/recall-api/internal/service/scheduler"
)

// StatsHandler handles learner-statistics HTTP requests
type StatsHandler struct {
	scheduler scheduler.StatsAggregator
	logger    *slog.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(aggregator scheduler.StatsAggregator, logger *slog.Logger) *StatsHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StatsHandler")
	}

	return &StatsHandler{
		scheduler: aggregator,
		logger:    logger.With(slog.String("component", "stats_handler")),
	}
}

// GetStats handles GET /api/stats requests.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := getOwnerIDFromContext(r)
	if !ok {
		log.Warn("owner ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Owner ID not found or invalid")
		return
	}

	stats, err := h.scheduler.ComputeStats(r.Context(), ownerID, time.Now().UTC())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// GetRetention handles GET /api/stats/retention requests.
func (h *StatsHandler) GetRetention(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := getOwnerIDFromContext(r)
	if !ok {
		log.Warn("owner ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Owner ID not found or invalid")
		return
	}

	now := time.Now().UTC()
	retention, err := h.scheduler.PredictedRetention(r.Context(), ownerID, now)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RetentionResponse{
		Retention:  retention,
		ComputedAt: now,
	})
}
