package fsrs

import (
	"math"

	"github.com/recallkit/recall-api/internal/domain"
)

// retrievability computes the modeled probability of successful recall
// after daysElapsed days for a memory with the given stability.
//
// The model is a power-law forgetting curve with stability as the time
// constant: R(t) = (1 + t/(9*S))^(-1/w). A non-positive stability or a
// negative elapsed time means the state has never been relevant yet, and
// the memory is treated as fully retained.
//
// The result is clamped to [0,1] and is monotonically non-increasing in
// daysElapsed for a fixed stability.
func retrievability(stability, daysElapsed float64, params *Params) float64 {
	if stability <= 0 || daysElapsed < 0 {
		return 1.0
	}

	r := math.Pow(1.0+daysElapsed/(params.IntervalScale*stability), -1.0/params.DecaySharpness)

	return clamp(r, 0.0, 1.0)
}

// nextStability computes the post-review stability.
//
// A lapse collapses stability to S * factor * base^(D-1): the punishment is
// harsher for higher-difficulty items. A successful recall grows stability
// by S * (base^D - 1) * e^(k*(1-R)) * e^(bonus*S) * e^(-penalty*lapses),
// scaled by the rating's quality multiplier. Reviewing close to the point
// of forgetting (low R) yields the largest gains.
//
// The result is clamped to [domain.MinStability, domain.MaxStability].
func nextStability(
	s, d, r float64,
	quality domain.Quality,
	lapses int,
	params *Params,
) float64 {
	if quality == domain.QualityForgot {
		collapsed := s * params.ForgotStabilityFactor * math.Pow(params.DifficultyBase, d-1.0)
		return clamp(collapsed, domain.MinStability, domain.MaxStability)
	}

	stability := s *
		(math.Pow(params.DifficultyBase, d) - 1.0) *
		math.Exp(params.GrowthRate*(1.0-r)) *
		math.Exp(params.StabilityBonusRate*s) *
		math.Exp(-params.LapsePenaltyRate*float64(lapses))

	if multiplier, ok := params.QualityMultiplier[quality]; ok {
		stability *= multiplier
	}

	return clamp(stability, domain.MinStability, domain.MaxStability)
}

// nextDifficulty computes the post-review difficulty: the rating's additive
// delta plus mean reversion toward the baseline, clamped to [0,1].
func nextDifficulty(d float64, quality domain.Quality, params *Params) float64 {
	delta := params.DifficultyDelta[quality]

	newD := d + delta + params.MeanReversionRate*(params.DifficultyBaseline-d)

	return clamp(newD, domain.MinDifficulty, domain.MaxDifficulty)
}

// nextIntervalHours solves the forgetting curve for the time at which
// retrievability falls to desiredRetention:
//
//	t = S * ((1/r)^w - 1) * 9
//
// The result is converted to integer hours and clamped to the configured
// interval bounds, so a freshly lapsed item comes back within the hour and
// no item disappears for more than a year.
func nextIntervalHours(stability, desiredRetention float64, params *Params) int {
	days := stability *
		(math.Pow(1.0/desiredRetention, params.DecaySharpness) - 1.0) *
		params.IntervalScale

	hours := int(days * 24.0)
	if hours < params.MinIntervalHours {
		hours = params.MinIntervalHours
	}
	if hours > params.MaxIntervalHours {
		hours = params.MaxIntervalHours
	}

	return hours
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
