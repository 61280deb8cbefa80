package fsrs

import (
	"testing"

	"github.com/recallkit/recall-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewService()
	require.NotNil(t, service)

	defaultSvc, ok := service.(*defaultService)
	require.True(t, ok, "expected *defaultService type")
	require.NotNil(t, defaultSvc.params)
}

func TestNewServiceWithParams(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()
	params.DesiredRetention = 0.8

	service := NewServiceWithParams(params)
	assert.Equal(t, 0.8, service.DesiredRetention())
}

func TestNextStateInvalidQuality(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewService()

	state := ReviewState{Stability: 1.0, Difficulty: 0.3}

	for _, q := range []domain.Quality{0, 6, -1, 100} {
		_, err := service.NextState(state, q, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidQuality, "quality %d must be rejected", q)
	}
}

func TestNextStateCounts(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewService()

	testCases := []struct {
		name           string
		quality        domain.Quality
		startReps      int
		startLapses    int
		expectedReps   int
		expectedLapses int
	}{
		{
			name:           "successful review increments reps only",
			quality:        domain.QualityGood,
			startReps:      3,
			startLapses:    1,
			expectedReps:   4,
			expectedLapses: 1,
		},
		{
			name:           "forgot increments both reps and lapses",
			quality:        domain.QualityForgot,
			startReps:      3,
			startLapses:    1,
			expectedReps:   4,
			expectedLapses: 2,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			state := ReviewState{
				Stability:  2.0,
				Difficulty: 0.4,
				Reps:       tc.startReps,
				Lapses:     tc.startLapses,
			}

			next, err := service.NextState(state, tc.quality, 1.0)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedReps, next.Reps)
			assert.Equal(t, tc.expectedLapses, next.Lapses)
		})
	}
}

func TestNextStateFirstReviewScenarios(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewService()

	fresh := ReviewState{
		Stability:  domain.InitialStability,
		Difficulty: domain.InitialDifficulty,
	}

	t.Run("good", func(t *testing.T) {
		t.Parallel()
		next, err := service.NextState(fresh, domain.QualityGood, 0)
		require.NoError(t, err)
		assert.InDelta(t, 1.2865, next.Stability, 0.001)
		assert.InDelta(t, 0.27, next.Difficulty, 1e-9)
		assert.Equal(t, 1, next.Reps)
		assert.Equal(t, 0, next.Lapses)
	})

	t.Run("forgot", func(t *testing.T) {
		t.Parallel()
		next, err := service.NextState(fresh, domain.QualityForgot, 0)
		require.NoError(t, err)
		assert.InDelta(t, 0.056, next.Stability, 0.001)
		assert.InDelta(t, 0.40, next.Difficulty, 1e-9)
		assert.Equal(t, 1, next.Reps)
		assert.Equal(t, 1, next.Lapses)
	})
}

func TestNextStateResultsStayInBounds(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewService()

	// Drive a single item through a long mixed review history; the state
	// must never escape the documented bounds.
	sequence := []domain.Quality{
		domain.QualityGood, domain.QualityPerfect, domain.QualityForgot,
		domain.QualityHard, domain.QualityOkay, domain.QualityGood,
		domain.QualityForgot, domain.QualityPerfect, domain.QualityGood,
		domain.QualityPerfect, domain.QualityPerfect, domain.QualityPerfect,
	}

	state := ReviewState{Stability: domain.InitialStability, Difficulty: domain.InitialDifficulty}
	for i, q := range sequence {
		var err error
		state, err = service.NextState(state, q, float64(i))
		require.NoError(t, err)

		assert.GreaterOrEqual(t, state.Stability, domain.MinStability, "step %d", i)
		assert.LessOrEqual(t, state.Stability, domain.MaxStability, "step %d", i)
		assert.GreaterOrEqual(t, state.Difficulty, domain.MinDifficulty, "step %d", i)
		assert.LessOrEqual(t, state.Difficulty, domain.MaxDifficulty, "step %d", i)
		assert.Equal(t, i+1, state.Reps)
		assert.LessOrEqual(t, state.Lapses, state.Reps)
	}
}
