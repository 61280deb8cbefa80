package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/domain/fsrs"
	"github.com/recallkit/recall-api/internal/platform/logger"
	"github.com/recallkit/recall-api/internal/store"
)

const secondsPerDay = 24.0 * 3600.0

// Verify interface compliance at compile time
var _ Service = (*schedulerService)(nil)

// txRunner executes fn against a transaction-scoped item store, committing
// on nil and rolling back on error. Abstracted so tests can substitute an
// in-memory store without a real database.
type txRunner func(ctx context.Context, fn func(ctx context.Context, items store.ItemStore) error) error

// schedulerService implements the Service interface.
type schedulerService struct {
	items  store.ItemStore
	stats  store.StatsStore
	model  fsrs.Service
	logger *slog.Logger
	runTx  txRunner
	now    func() time.Time
}

// NewService creates a new scheduler Service implementation backed by the
// given database handle and stores. The db handle is used only to open
// transactions for review updates; all queries go through the stores.
func NewService(
	db *sql.DB,
	items store.ItemStore,
	stats store.StatsStore,
	model fsrs.Service,
	log *slog.Logger,
) Service {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if items == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("items store cannot be nil")
	}
	if stats == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("stats store cannot be nil")
	}
	if model == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("memory model cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	runTx := func(ctx context.Context, fn func(ctx context.Context, items store.ItemStore) error) error {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return fn(ctx, items.WithTx(tx))
		})
	}

	return &schedulerService{
		items:  items,
		stats:  stats,
		model:  model,
		logger: log.With(slog.String("component", "scheduler_service")),
		runTx:  runTx,
		now:    time.Now,
	}
}

// AddItem implements Engine.AddItem.
func (s *schedulerService) AddItem(
	ctx context.Context,
	ownerID uuid.UUID,
	topicID, front, back string,
) (*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	item, err := domain.NewItem(ownerID, topicID, front, back)
	if err != nil {
		log.Warn("rejecting invalid item",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.items.Create(ctx, item); err != nil {
		log.Error("failed to persist new item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return nil, s.mapStoreError("add_item", err)
	}

	log.Info("item created",
		slog.String("item_id", item.ID.String()),
		slog.String("owner_id", ownerID.String()),
		slog.String("topic_id", topicID))
	return item, nil
}

// RecordReview implements Engine.RecordReview.
// It is the only mutation path for an item's memory state: a transition
// (reps, lapses, S, D) -> (reps+1, lapses', S', D') keyed by quality,
// executed as one transactional read-modify-write under a row lock.
func (s *schedulerService) RecordReview(
	ctx context.Context,
	itemID uuid.UUID,
	quality domain.Quality,
) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !quality.IsValid() {
		log.Warn("invalid quality rating",
			slog.String("item_id", itemID.String()),
			slog.Int("quality", int(quality)))
		return nil, fmt.Errorf("%w: quality rating %d outside 1-5", ErrInvalidInput, int(quality))
	}

	var result *ReviewResult
	err := s.runTx(ctx, func(ctx context.Context, items store.ItemStore) error {
		item, err := items.GetByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}

		now := s.now().UTC()

		// Corrupt state outside the documented invariants must not reach
		// the model, or NaN/Inf would propagate into the schedule. Reset
		// to the initial defaults and surface the repair to the caller.
		warnings := repairMemoryState(item, log)

		daysElapsed := 0.0
		if item.LastReview != nil {
			daysElapsed = now.Sub(*item.LastReview).Seconds() / secondsPerDay
		}

		state := fsrs.ReviewState{
			Stability:  item.Stability,
			Difficulty: item.Difficulty,
			Reps:       item.Reps,
			Lapses:     item.Lapses,
		}

		next, err := s.model.NextState(state, quality, daysElapsed)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		intervalHours := s.model.NextIntervalHours(next.Stability)
		nextReview := now.Add(time.Duration(intervalHours) * time.Hour)

		update := store.ReviewStateUpdate{
			Stability:  next.Stability,
			Difficulty: next.Difficulty,
			Reps:       next.Reps,
			Lapses:     next.Lapses,
			LastReview: now,
			NextReview: nextReview,
		}
		if err := items.UpdateReviewState(ctx, itemID, update); err != nil {
			return err
		}

		updated := *item
		updated.Stability = next.Stability
		updated.Difficulty = next.Difficulty
		updated.Reps = next.Reps
		updated.Lapses = next.Lapses
		updated.LastReview = &now
		updated.NextReview = nextReview

		result = &ReviewResult{Item: &updated, Warnings: warnings}

		log.Debug("review recorded",
			slog.String("item_id", itemID.String()),
			slog.String("quality", quality.String()),
			slog.Float64("stability", next.Stability),
			slog.Float64("difficulty", next.Difficulty),
			slog.Int("interval_hours", intervalHours))
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
		log.Error("failed to record review",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return nil, s.mapStoreError("record_review", err)
	}

	return result, nil
}

// PostponeReview implements Engine.PostponeReview.
func (s *schedulerService) PostponeReview(
	ctx context.Context,
	itemID uuid.UUID,
	days int,
) (*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if days < 1 {
		return nil, fmt.Errorf("%w: postpone days must be at least 1, got %d", ErrInvalidInput, days)
	}

	var updated *domain.Item
	err := s.runTx(ctx, func(ctx context.Context, items store.ItemStore) error {
		item, err := items.GetByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}

		nextReview := item.NextReview.AddDate(0, 0, days)
		if err := items.UpdateNextReview(ctx, itemID, nextReview); err != nil {
			return err
		}

		postponed := *item
		postponed.NextReview = nextReview
		updated = &postponed
		return nil
	})
	if err != nil {
		log.Error("failed to postpone review",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()),
			slog.Int("days", days))
		return nil, s.mapStoreError("postpone_review", err)
	}

	log.Debug("review postponed",
		slog.String("item_id", itemID.String()),
		slog.Int("days", days))
	return updated, nil
}

// DeleteItem implements Engine.DeleteItem.
func (s *schedulerService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.items.Delete(ctx, itemID); err != nil {
		log.Error("failed to delete item",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return s.mapStoreError("delete_item", err)
	}

	log.Info("item deleted", slog.String("item_id", itemID.String()))
	return nil
}

// ListDue implements DueSelector.ListDue.
func (s *schedulerService) ListDue(
	ctx context.Context,
	ownerID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	items, err := s.items.ListDue(ctx, ownerID, now, limit)
	if err != nil {
		log.Error("failed to list due items",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, s.mapStoreError("list_due", err)
	}

	return items, nil
}

// ComputeStats implements StatsAggregator.ComputeStats.
func (s *schedulerService) ComputeStats(
	ctx context.Context,
	ownerID uuid.UUID,
	now time.Time,
) (*domain.Stats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	stats, err := s.stats.Summary(ctx, ownerID, now)
	if err != nil {
		log.Error("failed to compute stats",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, s.mapStoreError("compute_stats", err)
	}

	return stats, nil
}

// PredictedRetention implements StatsAggregator.PredictedRetention.
// Items never reviewed contribute a retrievability of 1.0, which inflates
// the aggregate for learners with many untouched items; this matches the
// figure learners have always been shown and is kept deliberately.
func (s *schedulerService) PredictedRetention(
	ctx context.Context,
	ownerID uuid.UUID,
	now time.Time,
) (float64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.stats.RetentionRows(ctx, ownerID)
	if err != nil {
		log.Error("failed to load retention rows",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return 0, s.mapStoreError("predicted_retention", err)
	}

	if len(rows) == 0 {
		return 0.0, nil
	}

	total := 0.0
	for _, row := range rows {
		days := 0.0
		if row.LastReview != nil {
			days = now.Sub(*row.LastReview).Seconds() / secondsPerDay
		}
		total += s.model.Retrievability(row.Stability, days)
	}

	return total / float64(len(rows)), nil
}

// mapStoreError translates store-layer failures into the service taxonomy:
// missing rows become ErrItemNotFound, anything else ErrStoreUnavailable.
func (s *schedulerService) mapStoreError(operation string, err error) error {
	if store.IsNotFoundError(err) {
		return newServiceError(operation, "item not found", ErrItemNotFound)
	}
	return newServiceError(operation, "store operation failed",
		fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
}

// repairMemoryState resets corrupt stability/difficulty values to their
// initial defaults and returns a warning per repaired field.
func repairMemoryState(item *domain.Item, log *slog.Logger) []Warning {
	var warnings []Warning

	if item.Stability <= 0 || math.IsNaN(item.Stability) || math.IsInf(item.Stability, 0) {
		log.Warn("resetting corrupt stability",
			slog.String("item_id", item.ID.String()),
			slog.Float64("stability", item.Stability))
		warnings = append(warnings, Warning{
			Field: "stability",
			Message: fmt.Sprintf("stored stability %v outside documented invariants; reset to %v",
				item.Stability, domain.InitialStability),
		})
		item.Stability = domain.InitialStability
	}

	if item.Difficulty < domain.MinDifficulty || item.Difficulty > domain.MaxDifficulty ||
		math.IsNaN(item.Difficulty) {
		log.Warn("resetting corrupt difficulty",
			slog.String("item_id", item.ID.String()),
			slog.Float64("difficulty", item.Difficulty))
		warnings = append(warnings, Warning{
			Field: "difficulty",
			Message: fmt.Sprintf("stored difficulty %v outside documented invariants; reset to %v",
				item.Difficulty, domain.InitialDifficulty),
		})
		item.Difficulty = domain.InitialDifficulty
	}

	return warnings
}
