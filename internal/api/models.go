package api

import (
	"time"

	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/service/scheduler"
)

// Common request/response structures

// CreateItemRequest defines the payload for creating a reviewable item.
type CreateItemRequest struct {
	TopicID string `json:"topic_id" validate:"required,min=1,max=255"`
	Front   string `json:"front"    validate:"required,min=1"`
	Back    string `json:"back"     validate:"required,min=1"`
}

// ReviewRequest defines the payload for recording a review outcome.
type ReviewRequest struct {
	Quality int `json:"quality" validate:"required,min=1,max=5"`
}

// PostponeRequest defines the payload for pushing a review forward.
type PostponeRequest struct {
	Days int `json:"days" validate:"required,min=1"`
}

// ItemResponse represents the response data for an item, including its
// full memory state.
type ItemResponse struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	TopicID    string     `json:"topic_id"`
	Front      string     `json:"front"`
	Back       string     `json:"back"`
	Stability  float64    `json:"stability"`
	Difficulty float64    `json:"difficulty"`
	Reps       int        `json:"reps"`
	Lapses     int        `json:"lapses"`
	LastReview *time.Time `json:"last_review,omitempty"`
	NextReview time.Time  `json:"next_review"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ReviewResponse represents the outcome of a recorded review. Warnings
// report repaired memory-state corruption alongside the successful result.
type ReviewResponse struct {
	Item     ItemResponse        `json:"item"`
	Warnings []scheduler.Warning `json:"warnings,omitempty"`
}

// RetentionResponse represents the predicted average recall probability
// across a learner's items at the time of the request.
type RetentionResponse struct {
	Retention  float64   `json:"retention"`
	ComputedAt time.Time `json:"computed_at"`
}

// itemToResponse converts a domain.Item to an ItemResponse
func itemToResponse(item *domain.Item) ItemResponse {
	return ItemResponse{
		ID:         item.ID.String(),
		OwnerID:    item.OwnerID.String(),
		TopicID:    item.TopicID,
		Front:      item.Front,
		Back:       item.Back,
		Stability:  item.Stability,
		Difficulty: item.Difficulty,
		Reps:       item.Reps,
		Lapses:     item.Lapses,
		LastReview: item.LastReview,
		NextReview: item.NextReview,
		CreatedAt:  item.CreatedAt,
	}
}

// itemsToResponse converts a slice of items, returning an empty slice
// rather than null for no results.
func itemsToResponse(items []*domain.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, itemToResponse(item))
	}
	return out
}
