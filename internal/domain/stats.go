package domain

import "time"

// MasteredStabilityDays is the stability threshold, in days, above which
// an item counts as mastered in learner statistics.
const MasteredStabilityDays = 30.0

// Stats summarizes a learner's item set at a point in time.
//
// StreakDays counts distinct calendar days with at least one review inside
// the trailing 7-day window. It is not a strict consecutive-day streak; the
// label is kept for compatibility with the figure learners already see.
type Stats struct {
	TotalItems    int        `json:"total_items"`
	ItemsDue      int        `json:"items_due"`
	ItemsMastered int        `json:"items_mastered"`
	AvgStability  float64    `json:"avg_stability"`
	AvgDifficulty float64    `json:"avg_difficulty"`
	LastStudy     *time.Time `json:"last_study,omitempty"`
	StreakDays    int        `json:"streak_days"`
}
