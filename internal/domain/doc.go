// Package domain defines the core business entities of the scheduling
// engine: reviewable items, review quality ratings, and learner statistics,
// along with their validation rules and sentinel errors.
package domain
