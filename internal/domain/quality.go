package domain

import "fmt"

// Quality is the learner's self-reported recall outcome for a single
// review. It is an ordinal rating transmitted as an integer 1-5 and is
// the sole input driving memory-state transitions.
type Quality int

// Possible quality ratings, from complete failure to effortless recall.
const (
	QualityForgot  Quality = 1
	QualityHard    Quality = 2
	QualityOkay    Quality = 3
	QualityGood    Quality = 4
	QualityPerfect Quality = 5
)

// IsValid reports whether the rating is within the defined 1-5 range.
func (q Quality) IsValid() bool {
	return q >= QualityForgot && q <= QualityPerfect
}

// IsLapse reports whether the rating counts as a lapse (a failed recall).
func (q Quality) IsLapse() bool {
	return q == QualityForgot
}

// String returns a human-readable name for the rating.
func (q Quality) String() string {
	switch q {
	case QualityForgot:
		return "forgot"
	case QualityHard:
		return "hard"
	case QualityOkay:
		return "okay"
	case QualityGood:
		return "good"
	case QualityPerfect:
		return "perfect"
	default:
		return fmt.Sprintf("quality(%d)", int(q))
	}
}
