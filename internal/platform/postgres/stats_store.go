package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/platform/logger"
	"github.com/recallkit/recall-api/internal/store"
)

// streakWindow is the trailing window over which distinct review days are
// counted. The resulting figure is a distinct-day count inside this
// window, not a strict consecutive-day streak.
const streakWindow = 7 * 24 * time.Hour

// PostgresStatsStore implements the store.StatsStore interface
// using a PostgreSQL database as the storage backend.
type PostgresStatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStatsStore creates a new PostgreSQL implementation of the
// StatsStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresStatsStore(db store.DBTX, log *slog.Logger) *PostgresStatsStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &PostgresStatsStore{
		db:     db,
		logger: log.With(slog.String("component", "stats_store")),
	}
}

// Ensure PostgresStatsStore implements store.StatsStore interface
var _ store.StatsStore = (*PostgresStatsStore)(nil)

// Summary implements store.StatsStore.Summary
// It computes the aggregate figures in two queries: one COUNT/SUM/AVG/MAX
// pass over the owner's items and one distinct-day streak count.
func (s *PostgresStatsStore) Summary(
	ctx context.Context,
	ownerID uuid.UUID,
	now time.Time,
) (*domain.Stats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN next_review <= $2 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN stability > $3 THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(stability), 0),
			COALESCE(AVG(difficulty), 0),
			MAX(last_review)
		FROM items
		WHERE owner_id = $1
	`

	var stats domain.Stats
	var lastStudy sql.NullInt64

	err := s.db.QueryRowContext(
		ctx,
		query,
		ownerID,
		now.Unix(),
		domain.MasteredStabilityDays,
	).Scan(
		&stats.TotalItems,
		&stats.ItemsDue,
		&stats.ItemsMastered,
		&stats.AvgStability,
		&stats.AvgDifficulty,
		&lastStudy,
	)
	if err != nil {
		log.Error("failed to compute stats summary",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError(err)
	}

	if lastStudy.Valid {
		t := time.Unix(lastStudy.Int64, 0).UTC()
		stats.LastStudy = &t
	}

	// Distinct calendar days (UTC date truncation) with at least one
	// review inside the trailing window.
	streakQuery := `
		SELECT COUNT(DISTINCT (to_timestamp(last_review) AT TIME ZONE 'UTC')::date)
		FROM items
		WHERE owner_id = $1
		  AND last_review IS NOT NULL
		  AND last_review >= $2
	`
	windowStart := now.Add(-streakWindow).Unix()

	if err := s.db.QueryRowContext(ctx, streakQuery, ownerID, windowStart).Scan(&stats.StreakDays); err != nil {
		log.Error("failed to compute streak days",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError(err)
	}

	return &stats, nil
}

// RetentionRows implements store.StatsStore.RetentionRows
func (s *PostgresStatsStore) RetentionRows(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]store.RetentionRow, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT stability, last_review FROM items WHERE owner_id = $1`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to query retention rows",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var result []store.RetentionRow
	for rows.Next() {
		var row store.RetentionRow
		var lastReview sql.NullInt64

		if err := rows.Scan(&row.Stability, &lastReview); err != nil {
			log.Error("failed to scan retention row",
				slog.String("error", err.Error()),
				slog.String("owner_id", ownerID.String()))
			return nil, MapError(err)
		}

		if lastReview.Valid {
			t := time.Unix(lastReview.Int64, 0).UTC()
			row.LastReview = &t
		}

		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return result, nil
}
