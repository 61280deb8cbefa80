package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/recallkit/recall-api/internal/domain"
)

// DefaultDueLimit bounds ListDue results when the caller does not supply
// a positive limit.
const DefaultDueLimit = 20

// ReviewStateUpdate carries the scheduling fields written by one review.
// The fields are persisted as a single unit: an item never ends up with a
// new stability but a stale next-review timestamp.
type ReviewStateUpdate struct {
	Stability  float64
	Difficulty float64
	Reps       int
	Lapses     int
	LastReview time.Time
	NextReview time.Time
}

// ItemStore defines the interface for item data persistence.
type ItemStore interface {
	// Create saves a new item to the store.
	// It handles domain validation internally.
	// Returns validation errors from the domain Item if data is invalid.
	Create(ctx context.Context, item *domain.Item) error

	// GetByID retrieves an item by its unique ID.
	// Returns ErrItemNotFound if the item does not exist.
	// NOTE: This method does NOT provide any row locking, so it should not
	// be used when you plan to update the row and need concurrency protection.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)

	// GetByIDForUpdate retrieves an item with a row-level lock using
	// SELECT FOR UPDATE. It must be used within a transaction when the row
	// will be updated and needs protection from concurrent modifications:
	// two concurrent reviews of the same item serialize on this lock
	// rather than overwriting each other's effect.
	// Returns ErrItemNotFound if the item does not exist.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Item, error)

	// UpdateReviewState writes the post-review scheduling state for one
	// item, atomic per id. Returns ErrItemNotFound if the item does not exist.
	UpdateReviewState(ctx context.Context, id uuid.UUID, update ReviewStateUpdate) error

	// UpdateNextReview moves only the next-review timestamp, leaving the
	// memory state untouched. Used for postponing.
	// Returns ErrItemNotFound if the item does not exist.
	UpdateNextReview(ctx context.Context, id uuid.UUID, nextReview time.Time) error

	// Delete removes an item from the store by its ID.
	// Returns ErrItemNotFound if the item does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListDue returns the owner's items with nextReview <= now, ordered
	// ascending by nextReview with ties broken by ascending id, truncated
	// to limit (DefaultDueLimit when limit <= 0). Read-only.
	ListDue(ctx context.Context, ownerID uuid.UUID, now time.Time, limit int) ([]*domain.Item, error)

	// WithTx returns a new ItemStore instance that uses the provided
	// transaction. The transaction should be created and managed by the
	// caller (typically a service via RunInTransaction).
	WithTx(tx *sql.Tx) ItemStore
}
