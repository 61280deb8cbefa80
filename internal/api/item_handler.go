package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/recallkit/recall-api/internal/api/shared"
	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/platform/logger"
	"github.com/recallkit/recall-api/internal/redact"
	"github.com/recallkit/recall-api/internal/service/scheduler"
)

// ItemHandler handles item-related HTTP requests
type ItemHandler struct {
	scheduler scheduler.Service
	logger    *slog.Logger
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(schedulerService scheduler.Service, logger *slog.Logger) *ItemHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ItemHandler")
	}

	return &ItemHandler{
		scheduler: schedulerService,
		logger:    logger.With(slog.String("component", "item_handler")),
	}
}

// CreateItem handles POST /api/items requests.
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := getOwnerIDFromContext(r)
	if !ok {
		log.Warn("owner ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Owner ID not found or invalid")
		return
	}

	var req CreateItemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("owner_id", ownerID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	item, err := h.scheduler.AddItem(r.Context(), ownerID, req.TopicID, req.Front, req.Back)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("item created",
		slog.String("item_id", item.ID.String()),
		slog.String("owner_id", ownerID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, itemToResponse(item))
}

// RecordReview handles POST /api/items/{id}/review requests.
// It applies the review outcome to the item's memory state and returns the
// updated schedule, plus any repair warnings.
func (h *ItemHandler) RecordReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	itemID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	var req ReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("item_id", itemID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	result, err := h.scheduler.RecordReview(r.Context(), itemID, domain.Quality(req.Quality))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("review recorded",
		slog.String("item_id", itemID.String()),
		slog.Int("quality", req.Quality),
		slog.Int("warnings", len(result.Warnings)))
	shared.RespondWithJSON(w, r, http.StatusOK, ReviewResponse{
		Item:     itemToResponse(result.Item),
		Warnings: result.Warnings,
	})
}

// PostponeReview handles POST /api/items/{id}/postpone requests.
func (h *ItemHandler) PostponeReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	itemID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	var req PostponeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("item_id", itemID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	item, err := h.scheduler.PostponeReview(r.Context(), itemID, req.Days)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("review postponed",
		slog.String("item_id", itemID.String()),
		slog.Int("days", req.Days))
	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}

// DeleteItem handles DELETE /api/items/{id} requests.
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	itemID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.scheduler.DeleteItem(r.Context(), itemID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("item deleted", slog.String("item_id", itemID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// ListDue handles GET /api/items/due requests.
// The optional limit query parameter caps the page size; non-positive or
// missing values fall back to the store default.
func (h *ItemHandler) ListDue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := getOwnerIDFromContext(r)
	if !ok {
		log.Warn("owner ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Owner ID not found or invalid")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	items, err := h.scheduler.ListDue(r.Context(), ownerID, time.Now().UTC(), limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("due items listed",
		slog.String("owner_id", ownerID.String()),
		slog.Int("count", len(items)))
	shared.RespondWithJSON(w, r, http.StatusOK, itemsToResponse(items))
}
