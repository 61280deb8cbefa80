package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/recallkit/recall-api/internal/domain"
)

// RetentionRow is the minimal per-item projection needed to compute a
// predicted-retention figure: the current stability and the last review
// time, nil for items never reviewed.
type RetentionRow struct {
	Stability  float64
	LastReview *time.Time
}

// StatsStore defines the aggregate queries backing learner statistics.
// All methods are read-only and tolerate running concurrently with
// reviews under snapshot isolation; momentarily stale reads are acceptable.
type StatsStore interface {
	// Summary computes count, sum, avg and max aggregates over the owner's
	// items in the store: totals, due and mastered counts, average
	// stability and difficulty, the most recent review time, and the
	// distinct-review-day count within the trailing 7-day window from now
	// (using the store's date truncation).
	Summary(ctx context.Context, ownerID uuid.UUID, now time.Time) (*domain.Stats, error)

	// RetentionRows returns stability and last-review time for each of the
	// owner's items.
	RetentionRows(ctx context.Context, ownerID uuid.UUID) ([]RetentionRow, error)
}
