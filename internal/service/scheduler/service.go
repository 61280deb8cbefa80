// Package scheduler orchestrates spaced-repetition scheduling: it applies
// the memory model to review events, selects due items, and aggregates
// learner statistics, all against an injected item store.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/recallkit/recall-api/internal/domain"
)

// Common error types for the scheduler service. These form the engine's
// error taxonomy; callers distinguish them with errors.Is.
var (
	// ErrInvalidInput indicates a malformed quality rating, empty required
	// content, or an otherwise unusable argument. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrItemNotFound indicates the referenced item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrStoreUnavailable indicates the underlying store failed to read or
	// commit. The caller decides retry policy; no partial write is visible
	// after a failed review.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Warning reports a sanctioned silent recovery: a stored value outside the
// documented invariants that the engine reset to its initial default
// before continuing. It accompanies a successful result, never replaces one.
type Warning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ReviewResult is the outcome of recording one review: the updated item
// and any corruption warnings raised while loading its previous state.
type ReviewResult struct {
	Item     *domain.Item
	Warnings []Warning
}

// Engine records review events and manages item lifecycle. RecordReview is
// the only mutation path for an item's memory state.
type Engine interface {
	// AddItem creates a new item for the owner with the initial memory
	// state; the item is immediately due. Returns ErrInvalidInput if any
	// content field is empty or the owner ID is nil.
	AddItem(ctx context.Context, ownerID uuid.UUID, topicID, front, back string) (*domain.Item, error)

	// RecordReview applies one recall attempt to an item: computes the
	// current retrievability, advances the memory state for the given
	// quality, and schedules the next review. The read-modify-write runs
	// in a single transaction with a row-level lock, so concurrent reviews
	// of the same item apply sequentially.
	//
	// Returns ErrInvalidInput for a quality outside 1-5, ErrItemNotFound
	// if the id does not resolve, and ErrStoreUnavailable if the store
	// fails; in the latter case no partial state is committed.
	RecordReview(ctx context.Context, itemID uuid.UUID, quality domain.Quality) (*ReviewResult, error)

	// PostponeReview pushes the item's next review forward by the given
	// number of days (>= 1) without touching its memory state.
	PostponeReview(ctx context.Context, itemID uuid.UUID, days int) (*domain.Item, error)

	// DeleteItem removes an item permanently.
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
}

// DueSelector selects items ready for review. Read-only; results may be
// momentarily stale with respect to concurrent reviews.
type DueSelector interface {
	// ListDue returns the owner's items with nextReview <= now, ordered
	// ascending by nextReview then ascending by id, truncated to limit
	// (a default is applied when limit <= 0).
	ListDue(ctx context.Context, ownerID uuid.UUID, now time.Time, limit int) ([]*domain.Item, error)
}

// StatsAggregator computes summary figures over a learner's item set.
type StatsAggregator interface {
	// ComputeStats returns counts, averages and the review-day streak
	// figure for the owner at the given time.
	ComputeStats(ctx context.Context, ownerID uuid.UUID, now time.Time) (*domain.Stats, error)

	// PredictedRetention averages the modeled recall probability across
	// all of the owner's items. Items never reviewed contribute 1.0;
	// an owner with no items yields 0.0.
	PredictedRetention(ctx context.Context, ownerID uuid.UUID, now time.Time) (float64, error)
}

// Service is the full consumer-facing surface of the scheduling engine.
type Service interface {
	Engine
	DueSelector
	StatsAggregator
}

// ServiceError wraps errors from the scheduler service with additional
// context, so consumers can differentiate failures with errors.As instead
// of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "record_review").
	Operation string
	// Message is a human-readable description of the error.
	Message string
	// Err is the underlying error that caused the failure.
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// newServiceError creates a ServiceError for the given operation.
func newServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
