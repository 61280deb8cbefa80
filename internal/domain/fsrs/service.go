package fsrs

import (
	"github.com/recallkit/recall-api/internal/domain"
)

// ReviewState is the memory state of an item as seen by the model:
// the numeric inputs of one review transition and its outputs.
type ReviewState struct {
	Stability  float64
	Difficulty float64
	Reps       int
	Lapses     int
}

// Service defines the interface for memory-model operations. The
// scheduling engine depends on this interface rather than the pure
// functions directly, so tests can substitute a fixed-schedule model.
type Service interface {
	// Retrievability returns the modeled recall probability for a memory
	// with the given stability after daysElapsed days, in [0,1].
	Retrievability(stability, daysElapsed float64) float64

	// NextState computes the state transition for one review: increments
	// reps (and lapses on a forgot outcome) and derives the new stability
	// and difficulty. Returns domain.ErrInvalidQuality if the rating is
	// outside 1-5.
	NextState(state ReviewState, quality domain.Quality, daysElapsed float64) (ReviewState, error)

	// NextIntervalHours returns the number of hours until the next review
	// for the given stability, sized to the configured desired retention.
	NextIntervalHours(stability float64) int

	// DesiredRetention returns the target recall probability used to size
	// intervals.
	DesiredRetention() float64
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewService creates a new memory-model service with default parameters.
func NewService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new memory-model service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// Retrievability implements the Service interface.
func (s *defaultService) Retrievability(stability, daysElapsed float64) float64 {
	return retrievability(stability, daysElapsed, s.params)
}

// NextState implements the Service interface.
func (s *defaultService) NextState(
	state ReviewState,
	quality domain.Quality,
	daysElapsed float64,
) (ReviewState, error) {
	if !quality.IsValid() {
		return ReviewState{}, domain.ErrInvalidQuality
	}

	r := retrievability(state.Stability, daysElapsed, s.params)

	next := ReviewState{
		Reps:   state.Reps + 1,
		Lapses: state.Lapses,
	}
	if quality.IsLapse() {
		next.Lapses++
	}

	// The stability update sees the already-incremented lapse count, so a
	// forgotten item is penalized from this review onward.
	next.Stability = nextStability(
		state.Stability,
		state.Difficulty,
		r,
		quality,
		next.Lapses,
		s.params,
	)
	next.Difficulty = nextDifficulty(state.Difficulty, quality, s.params)

	return next, nil
}

// NextIntervalHours implements the Service interface.
func (s *defaultService) NextIntervalHours(stability float64) int {
	return nextIntervalHours(stability, s.params.DesiredRetention, s.params)
}

// DesiredRetention implements the Service interface.
func (s *defaultService) DesiredRetention() float64 {
	return s.params.DesiredRetention
}
