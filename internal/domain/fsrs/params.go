package fsrs

import (
	"github.com/recallkit/recall-api/internal/domain"
)

// Params defines all configurable parameters for the memory model.
//
// The default values, together with the clamp boundaries in the domain
// package, are the portable scheduling contract: changing them changes
// every interval the engine produces. Internally everything is evaluated
// in double precision to avoid compounding rounding error across repeated
// reviews.
type Params struct {
	// DecaySharpness is the exponent w in the power-law forgetting curve
	// R(t) = (1 + t/(9*S))^(-1/w).
	DecaySharpness float64

	// GrowthRate is the factor k controlling how strongly a low
	// retrievability at review time boosts the stability increase.
	GrowthRate float64

	// DifficultyBase is the base of the exponential difficulty term in
	// the stability update.
	DifficultyBase float64

	// ForgotStabilityFactor scales the stability collapse after a lapse.
	ForgotStabilityFactor float64

	// StabilityBonusRate is the coefficient of the e^(rate*S) term that
	// rewards already-stable memories with faster growth.
	StabilityBonusRate float64

	// LapsePenaltyRate is the coefficient of the e^(-rate*lapses) term
	// that slows growth for frequently forgotten items.
	LapsePenaltyRate float64

	// QualityMultiplier scales the raw stability growth per rating.
	// QualityForgot has no entry: lapses take the collapse path instead.
	QualityMultiplier map[domain.Quality]float64

	// DifficultyDelta is the additive difficulty adjustment per rating.
	DifficultyDelta map[domain.Quality]float64

	// DifficultyBaseline and MeanReversionRate pull difficulty back toward
	// a neutral value on every review, preventing drift to the extremes.
	DifficultyBaseline float64
	MeanReversionRate  float64

	// IntervalScale is the constant 9 appearing in both the forgetting
	// curve and its inversion when solving for the next interval.
	IntervalScale float64

	// DesiredRetention is the target recall probability used to size
	// review intervals.
	DesiredRetention float64

	// Interval clamp, in hours (1 hour to 1 year).
	MinIntervalHours int
	MaxIntervalHours int
}

// NewDefaultParams creates a new Params instance with the default values.
func NewDefaultParams() *Params {
	return &Params{
		DecaySharpness:        0.95,
		GrowthRate:            19.0,
		DifficultyBase:        11.0,
		ForgotStabilityFactor: 0.3,
		StabilityBonusRate:    0.2,
		LapsePenaltyRate:      0.1,

		QualityMultiplier: map[domain.Quality]float64{
			domain.QualityHard:    0.6,
			domain.QualityOkay:    0.85,
			domain.QualityGood:    1.0,
			domain.QualityPerfect: 1.3,
		},

		DifficultyDelta: map[domain.Quality]float64{
			domain.QualityForgot:  0.10,
			domain.QualityHard:    0.05,
			domain.QualityOkay:    0.0,
			domain.QualityGood:    -0.03,
			domain.QualityPerfect: -0.07,
		},

		DifficultyBaseline: domain.InitialDifficulty,
		MeanReversionRate:  0.05,

		IntervalScale:    9.0,
		DesiredRetention: 0.9,

		MinIntervalHours: 1,
		MaxIntervalHours: 365 * 24,
	}
}
