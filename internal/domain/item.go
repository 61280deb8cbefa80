package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Memory-state defaults and bounds for a reviewable item. The clamp
// boundaries are part of the portable scheduling contract.
const (
	InitialStability  = 1.0
	InitialDifficulty = 0.3

	MinStability = 0.04
	MaxStability = 1095.0

	MinDifficulty = 0.0
	MaxDifficulty = 1.0
)

// Item-specific validation errors
var (
	// ErrItemIDEmpty is returned when an item ID is empty or nil.
	ErrItemIDEmpty = errors.New("item ID cannot be empty")

	// ErrItemOwnerIDEmpty is returned when an item's owner ID is empty or nil.
	ErrItemOwnerIDEmpty = errors.New("item owner ID cannot be empty")

	// ErrItemTopicEmpty is returned when an item's topic ID is empty.
	ErrItemTopicEmpty = errors.New("item topic ID cannot be empty")

	// ErrItemFrontEmpty is returned when an item's front content is empty.
	ErrItemFrontEmpty = errors.New("item front cannot be empty")

	// ErrItemBackEmpty is returned when an item's back content is empty.
	ErrItemBackEmpty = errors.New("item back cannot be empty")

	// ErrItemStabilityRange is returned when stability is outside its
	// documented bounds.
	ErrItemStabilityRange = errors.New("item stability out of range")

	// ErrItemDifficultyRange is returned when difficulty is outside [0,1].
	ErrItemDifficultyRange = errors.New("item difficulty out of range")

	// ErrItemCountsInvalid is returned when reps or lapses are negative,
	// or lapses exceed reps.
	ErrItemCountsInvalid = errors.New("item review counts invalid")
)

// Item is a reviewable flashcard-like unit owned by a single learner.
// Content fields are immutable after creation; the memory-state fields
// (Stability, Difficulty, Reps, Lapses, LastReview, NextReview) are
// mutated exclusively by the scheduling engine as one atomic unit.
type Item struct {
	ID         uuid.UUID  `json:"id"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	TopicID    string     `json:"topic_id"`
	Front      string     `json:"front"`
	Back       string     `json:"back"`
	Stability  float64    `json:"stability"`  // memory persistence strength, in days
	Difficulty float64    `json:"difficulty"` // intrinsic hardness, 0.0 (easy) to 1.0 (hard)
	Reps       int        `json:"reps"`       // total review count
	Lapses     int        `json:"lapses"`     // count of forgot outcomes
	LastReview *time.Time `json:"last_review,omitempty"`
	NextReview time.Time  `json:"next_review"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewItem creates a new Item for the given owner with the documented
// initial memory state. The item is immediately due: NextReview is seeded
// to the creation time. Returns an error if validation fails.
func NewItem(ownerID uuid.UUID, topicID, front, back string) (*Item, error) {
	now := time.Now().UTC()
	item := &Item{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		TopicID:    topicID,
		Front:      front,
		Back:       back,
		Stability:  InitialStability,
		Difficulty: InitialDifficulty,
		Reps:       0,
		Lapses:     0,
		LastReview: nil,
		NextReview: now,
		CreatedAt:  now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the Item has valid data.
// Returns an error if any field fails validation.
func (i *Item) Validate() error {
	if i.ID == uuid.Nil {
		return ErrItemIDEmpty
	}

	if i.OwnerID == uuid.Nil {
		return ErrItemOwnerIDEmpty
	}

	if i.TopicID == "" {
		return ErrItemTopicEmpty
	}

	if i.Front == "" {
		return ErrItemFrontEmpty
	}

	if i.Back == "" {
		return ErrItemBackEmpty
	}

	if i.Stability < MinStability || i.Stability > MaxStability {
		return ErrItemStabilityRange
	}

	if i.Difficulty < MinDifficulty || i.Difficulty > MaxDifficulty {
		return ErrItemDifficultyRange
	}

	if i.Reps < 0 || i.Lapses < 0 || i.Lapses > i.Reps {
		return ErrItemCountsInvalid
	}

	return nil
}

// IsDue reports whether the item is due for review at the given time.
func (i *Item) IsDue(now time.Time) bool {
	return !i.NextReview.After(now)
}
