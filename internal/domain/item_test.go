package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/recallkit/recall-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	t.Parallel() // Enable parallel execution

	ownerID := uuid.New()

	t.Run("seeds initial memory state", func(t *testing.T) {
		t.Parallel()
		item, err := domain.NewItem(ownerID, "topic-go", "What does defer do?", "Schedules a call to run at function return")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, item.ID)
		assert.Equal(t, ownerID, item.OwnerID)
		assert.Equal(t, domain.InitialStability, item.Stability)
		assert.Equal(t, domain.InitialDifficulty, item.Difficulty)
		assert.Zero(t, item.Reps)
		assert.Zero(t, item.Lapses)
		assert.Nil(t, item.LastReview)
		assert.Equal(t, item.CreatedAt, item.NextReview, "new items are due immediately")
	})

	t.Run("validation failures", func(t *testing.T) {
		t.Parallel()
		testCases := []struct {
			name                 string
			ownerID              uuid.UUID
			topicID, front, back string
			wantErr              error
		}{
			{
				name:    "nil owner",
				ownerID: uuid.Nil,
				topicID: "t", front: "f", back: "b",
				wantErr: domain.ErrItemOwnerIDEmpty,
			},
			{
				name:    "empty topic",
				ownerID: ownerID,
				topicID: "", front: "f", back: "b",
				wantErr: domain.ErrItemTopicEmpty,
			},
			{
				name:    "empty front",
				ownerID: ownerID,
				topicID: "t", front: "", back: "b",
				wantErr: domain.ErrItemFrontEmpty,
			},
			{
				name:    "empty back",
				ownerID: ownerID,
				topicID: "t", front: "f", back: "",
				wantErr: domain.ErrItemBackEmpty,
			},
		}

		for _, tc := range testCases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()
				_, err := domain.NewItem(tc.ownerID, tc.topicID, tc.front, tc.back)
				assert.ErrorIs(t, err, tc.wantErr)
			})
		}
	})
}

func TestItemValidateMemoryState(t *testing.T) {
	t.Parallel() // Enable parallel execution

	valid := func() *domain.Item {
		item, err := domain.NewItem(uuid.New(), "t", "f", "b")
		require.NoError(t, err)
		return item
	}

	testCases := []struct {
		name    string
		mutate  func(*domain.Item)
		wantErr error
	}{
		{
			name:    "valid item passes",
			mutate:  func(*domain.Item) {},
			wantErr: nil,
		},
		{
			name:    "stability below floor",
			mutate:  func(i *domain.Item) { i.Stability = 0.01 },
			wantErr: domain.ErrItemStabilityRange,
		},
		{
			name:    "stability above ceiling",
			mutate:  func(i *domain.Item) { i.Stability = 2000 },
			wantErr: domain.ErrItemStabilityRange,
		},
		{
			name:    "stability at bounds passes",
			mutate:  func(i *domain.Item) { i.Stability = domain.MaxStability },
			wantErr: nil,
		},
		{
			name:    "negative difficulty",
			mutate:  func(i *domain.Item) { i.Difficulty = -0.1 },
			wantErr: domain.ErrItemDifficultyRange,
		},
		{
			name:    "difficulty above one",
			mutate:  func(i *domain.Item) { i.Difficulty = 1.5 },
			wantErr: domain.ErrItemDifficultyRange,
		},
		{
			name:    "negative reps",
			mutate:  func(i *domain.Item) { i.Reps = -1 },
			wantErr: domain.ErrItemCountsInvalid,
		},
		{
			name:    "lapses exceed reps",
			mutate:  func(i *domain.Item) { i.Reps = 2; i.Lapses = 3 },
			wantErr: domain.ErrItemCountsInvalid,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			item := valid()
			tc.mutate(item)

			err := item.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestItemIsDue(t *testing.T) {
	t.Parallel() // Enable parallel execution

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	item := &domain.Item{NextReview: now}

	assert.True(t, item.IsDue(now), "due exactly at next_review")
	assert.True(t, item.IsDue(now.Add(time.Minute)))
	assert.False(t, item.IsDue(now.Add(-time.Minute)))
}
