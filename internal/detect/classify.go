package detect

import "github.com/justice-collab/disruption-cli/internal/model"

// Classification thresholds, evaluated top-down with closed lower
// bounds: a score exactly at a boundary takes the higher class.
const (
	thresholdMajor       = 0.75
	thresholdSignificant = 0.50
	thresholdModerate    = 0.25
	thresholdMinor       = 0.10
)

// directionDeadband is the raw-velocity band treated as neutral.
const directionDeadband = 0.1

// Classify maps a composite score to its severity label.
func Classify(score float64) model.Classification {
	switch {
	case score >= thresholdMajor:
		return model.ClassMajor
	case score >= thresholdSignificant:
		return model.ClassSignificant
	case score >= thresholdModerate:
		return model.ClassModerate
	case score >= thresholdMinor:
		return model.ClassMinor
	default:
		return model.ClassStable
	}
}

// DirectionOf labels the sign of the raw (unnormalized) ideology
// velocity. Severity and direction are reported together but computed
// from different inputs.
func DirectionOf(rawVelocity float64) model.Direction {
	switch {
	case rawVelocity > directionDeadband:
		return model.DirectionProgressive
	case rawVelocity < -directionDeadband:
		return model.DirectionTraditional
	default:
		return model.DirectionNeutral
	}
}
