package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/platform/logger"
	"github.com/recallkit/recall-api/internal/store"
)

// itemColumns is the canonical select list for the items table.
const itemColumns = `
	id, owner_id, topic_id, front, back,
	stability, difficulty, reps, lapses,
	last_review, next_review, created_at
`

// PostgresItemStore implements the store.ItemStore interface
// using a PostgreSQL database as the storage backend.
type PostgresItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresItemStore creates a new PostgreSQL implementation of the
// ItemStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresItemStore(db store.DBTX, log *slog.Logger) *PostgresItemStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &PostgresItemStore{
		db:     db,
		logger: log.With(slog.String("component", "item_store")),
	}
}

// Ensure PostgresItemStore implements store.ItemStore interface
var _ store.ItemStore = (*PostgresItemStore)(nil)

// Create implements store.ItemStore.Create
// It saves a new item to the database, handling domain validation.
func (s *PostgresItemStore) Create(ctx context.Context, item *domain.Item) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("item validation failed during create",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return err
	}

	query := `
		INSERT INTO items (id, owner_id, topic_id, front, back,
			stability, difficulty, reps, lapses,
			last_review, next_review, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.OwnerID,
		item.TopicID,
		item.Front,
		item.Back,
		item.Stability,
		item.Difficulty,
		item.Reps,
		item.Lapses,
		epochOrNil(item.LastReview),
		item.NextReview.Unix(),
		item.CreatedAt.Unix(),
	)
	if err != nil {
		log.Error("failed to create item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()),
			slog.String("owner_id", item.OwnerID.String()))
		return MapError(err)
	}

	log.Debug("item created",
		slog.String("item_id", item.ID.String()),
		slog.String("owner_id", item.OwnerID.String()))
	return nil
}

// GetByID implements store.ItemStore.GetByID
// Returns store.ErrItemNotFound if the item does not exist.
func (s *PostgresItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetByIDForUpdate implements store.ItemStore.GetByIDForUpdate
// It acquires a row-level lock so concurrent reviews of the same item
// serialize instead of overwriting each other. Must run inside a
// transaction; outside one the lock is released immediately.
func (s *PostgresItemStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 FOR UPDATE`
	return s.getOne(ctx, query, id)
}

func (s *PostgresItemStore) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	item, err := scanItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("item not found", slog.String("item_id", id.String()))
			return nil, store.ErrItemNotFound
		}
		log.Error("failed to get item",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return nil, MapError(err)
	}

	return item, nil
}

// UpdateReviewState implements store.ItemStore.UpdateReviewState
// All scheduling fields are written in a single statement, so the update
// is atomic per item.
func (s *PostgresItemStore) UpdateReviewState(
	ctx context.Context,
	id uuid.UUID,
	update store.ReviewStateUpdate,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE items SET
			stability = $1, difficulty = $2, reps = $3, lapses = $4,
			last_review = $5, next_review = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		update.Stability,
		update.Difficulty,
		update.Reps,
		update.Lapses,
		update.LastReview.Unix(),
		update.NextReview.Unix(),
		id,
	)
	if err != nil {
		log.Error("failed to update item review state",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, "item")
}

// UpdateNextReview implements store.ItemStore.UpdateNextReview
func (s *PostgresItemStore) UpdateNextReview(
	ctx context.Context,
	id uuid.UUID,
	nextReview time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		`UPDATE items SET next_review = $1 WHERE id = $2`,
		nextReview.Unix(),
		id,
	)
	if err != nil {
		log.Error("failed to update item next review",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, "item")
}

// Delete implements store.ItemStore.Delete
// Returns store.ErrItemNotFound if the item does not exist.
func (s *PostgresItemStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete item",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "item"); err != nil {
		return err
	}

	log.Debug("item deleted", slog.String("item_id", id.String()))
	return nil
}

// ListDue implements store.ItemStore.ListDue
// The ordering (next_review ascending, id ascending on ties) is part of
// the contract and must stay deterministic.
func (s *PostgresItemStore) ListDue(
	ctx context.Context,
	ownerID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = store.DefaultDueLimit
	}

	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE owner_id = $1 AND next_review <= $2
		ORDER BY next_review ASC, id ASC
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, ownerID, now.Unix(), limit)
	if err != nil {
		log.Error("failed to list due items",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	items := make([]*domain.Item, 0, limit)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			log.Error("failed to scan due item",
				slog.String("error", err.Error()),
				slog.String("owner_id", ownerID.String()))
			return nil, MapError(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return items, nil
}

// WithTx implements store.ItemStore.WithTx
func (s *PostgresItemStore) WithTx(tx *sql.Tx) store.ItemStore {
	return &PostgresItemStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanItem.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem reads one items row, converting epoch-second columns back to
// UTC time.Time values.
func scanItem(row rowScanner) (*domain.Item, error) {
	var item domain.Item
	var lastReview sql.NullInt64
	var nextReview, createdAt int64

	err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.TopicID,
		&item.Front,
		&item.Back,
		&item.Stability,
		&item.Difficulty,
		&item.Reps,
		&item.Lapses,
		&lastReview,
		&nextReview,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if lastReview.Valid {
		t := time.Unix(lastReview.Int64, 0).UTC()
		item.LastReview = &t
	}
	item.NextReview = time.Unix(nextReview, 0).UTC()
	item.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &item, nil
}

// epochOrNil converts an optional timestamp to a nullable epoch-second value.
func epochOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}
