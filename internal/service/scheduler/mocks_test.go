package scheduler

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/domain/fsrs"
	"github.com/recallkit/recall-api/internal/store"
)

// fakeStore is an in-memory implementation of store.ItemStore and
// store.StatsStore. Its transaction runner holds the store mutex for the
// whole callback, mimicking the row-lock serialization the postgres
// implementation gets from SELECT ... FOR UPDATE.
type fakeStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.Item

	// failNext, when set, makes the next mutating call fail with this error.
	failNext error
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[uuid.UUID]*domain.Item)}
}

func (f *fakeStore) runTx(ctx context.Context, fn func(ctx context.Context, items store.ItemStore) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(ctx, (*lockedFakeStore)(f))
}

func (f *fakeStore) takeFailure() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func copyItem(item *domain.Item) *domain.Item {
	clone := *item
	if item.LastReview != nil {
		t := *item.LastReview
		clone.LastReview = &t
	}
	return &clone
}

// Direct (non-transactional) interface: locks per call.

func (f *fakeStore) Create(ctx context.Context, item *domain.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return (*lockedFakeStore)(f).Create(ctx, item)
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return (*lockedFakeStore)(f).GetByID(ctx, id)
}

func (f *fakeStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return (*lockedFakeStore)(f).GetByIDForUpdate(ctx, id)
}

func (f *fakeStore) UpdateReviewState(ctx context.Context, id uuid.UUID, update store.ReviewStateUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return (*lockedFakeStore)(f).UpdateReviewState(ctx, id, update)
}

func (f *fakeStore) UpdateNextReview(ctx context.Context, id uuid.UUID, nextReview time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return (*lockedFakeStore)(f).UpdateNextReview(ctx, id, nextReview)
}

func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return (*lockedFakeStore)(f).Delete(ctx, id)
}

func (f *fakeStore) ListDue(ctx context.Context, ownerID uuid.UUID, now time.Time, limit int) ([]*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return (*lockedFakeStore)(f).ListDue(ctx, ownerID, now, limit)
}

func (f *fakeStore) WithTx(tx *sql.Tx) store.ItemStore { return f }

// lockedFakeStore is the same store accessed with the mutex already held
// by the transaction runner.
type lockedFakeStore fakeStore

var _ store.ItemStore = (*lockedFakeStore)(nil)

func (f *lockedFakeStore) Create(_ context.Context, item *domain.Item) error {
	if err := (*fakeStore)(f).takeFailure(); err != nil {
		return err
	}
	if _, exists := f.items[item.ID]; exists {
		return store.ErrDuplicate
	}
	f.items[item.ID] = copyItem(item)
	return nil
}

func (f *lockedFakeStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, store.ErrItemNotFound
	}
	return copyItem(item), nil
}

func (f *lockedFakeStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return f.GetByID(ctx, id)
}

func (f *lockedFakeStore) UpdateReviewState(_ context.Context, id uuid.UUID, update store.ReviewStateUpdate) error {
	if err := (*fakeStore)(f).takeFailure(); err != nil {
		return err
	}
	item, ok := f.items[id]
	if !ok {
		return store.ErrItemNotFound
	}
	item.Stability = update.Stability
	item.Difficulty = update.Difficulty
	item.Reps = update.Reps
	item.Lapses = update.Lapses
	last := update.LastReview
	item.LastReview = &last
	item.NextReview = update.NextReview
	return nil
}

func (f *lockedFakeStore) UpdateNextReview(_ context.Context, id uuid.UUID, nextReview time.Time) error {
	if err := (*fakeStore)(f).takeFailure(); err != nil {
		return err
	}
	item, ok := f.items[id]
	if !ok {
		return store.ErrItemNotFound
	}
	item.NextReview = nextReview
	return nil
}

func (f *lockedFakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return store.ErrItemNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *lockedFakeStore) ListDue(_ context.Context, ownerID uuid.UUID, now time.Time, limit int) ([]*domain.Item, error) {
	if limit <= 0 {
		limit = store.DefaultDueLimit
	}

	var due []*domain.Item
	for _, item := range f.items {
		if item.OwnerID == ownerID && !item.NextReview.After(now) {
			due = append(due, copyItem(item))
		}
	}

	// next_review ascending, ties by ascending id, matching the SQL contract.
	for i := 1; i < len(due); i++ {
		for j := i; j > 0; j-- {
			a, b := due[j-1], due[j]
			swap := b.NextReview.Before(a.NextReview) ||
				(b.NextReview.Equal(a.NextReview) && b.ID.String() < a.ID.String())
			if !swap {
				break
			}
			due[j-1], due[j] = due[j], due[j-1]
		}
	}

	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (f *lockedFakeStore) WithTx(tx *sql.Tx) store.ItemStore { return f }

// StatsStore implementation.

var _ store.StatsStore = (*fakeStore)(nil)

func (f *fakeStore) Summary(_ context.Context, ownerID uuid.UUID, now time.Time) (*domain.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var stats domain.Stats
	var sumStability, sumDifficulty float64
	reviewDays := make(map[string]struct{})
	windowStart := now.Add(-7 * 24 * time.Hour)

	for _, item := range f.items {
		if item.OwnerID != ownerID {
			continue
		}
		stats.TotalItems++
		if !item.NextReview.After(now) {
			stats.ItemsDue++
		}
		if item.Stability > domain.MasteredStabilityDays {
			stats.ItemsMastered++
		}
		sumStability += item.Stability
		sumDifficulty += item.Difficulty

		if item.LastReview != nil {
			if stats.LastStudy == nil || item.LastReview.After(*stats.LastStudy) {
				t := *item.LastReview
				stats.LastStudy = &t
			}
			if !item.LastReview.Before(windowStart) {
				reviewDays[item.LastReview.UTC().Format("2006-01-02")] = struct{}{}
			}
		}
	}

	if stats.TotalItems > 0 {
		stats.AvgStability = sumStability / float64(stats.TotalItems)
		stats.AvgDifficulty = sumDifficulty / float64(stats.TotalItems)
	}
	stats.StreakDays = len(reviewDays)

	return &stats, nil
}

func (f *fakeStore) RetentionRows(_ context.Context, ownerID uuid.UUID) ([]store.RetentionRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var rows []store.RetentionRow
	for _, item := range f.items {
		if item.OwnerID != ownerID {
			continue
		}
		row := store.RetentionRow{Stability: item.Stability}
		if item.LastReview != nil {
			t := *item.LastReview
			row.LastReview = &t
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// newTestService wires a scheduler service onto a fake store with a
// controllable clock.
func newTestService(fs *fakeStore, now func() time.Time) *schedulerService {
	if now == nil {
		now = time.Now
	}
	return &schedulerService{
		items:  fs,
		stats:  fs,
		model:  fsrs.NewService(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		runTx:  fs.runTx,
		now:    now,
	}
}
