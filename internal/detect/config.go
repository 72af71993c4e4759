// Package detect combines the raw disruption signals into classified
// per-unit-year disruption records: column normalization, weighted
// composite scoring, and the severity/direction classification.
package detect

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/justice-collab/disruption-cli/internal/config"
)

// weightSumTolerance absorbs floating-point drift when checking that
// the five weights sum to 1.0.
const weightSumTolerance = 1e-9

// DefaultConfig returns a config.DetectorConfig with the standard
// weights and parameters. Weights sum to 1.0.
func DefaultConfig() config.DetectorConfig {
	return config.DetectorConfig{
		MinDocs:     3,
		Lookback:    2,
		NormMethod:  string(NormMinMax),
		Concurrency: 8,

		VelocityWeight:   0.30,
		NoveltyWeight:    0.25,
		TopicShiftWeight: 0.20,
		MarginWeight:     0.15,
		TransitionWeight: 0.10,
	}
}

// WeightSum returns the sum of the five signal weights.
func WeightSum(c config.DetectorConfig) float64 {
	return c.VelocityWeight + c.NoveltyWeight + c.TopicShiftWeight +
		c.MarginWeight + c.TransitionWeight
}

// ValidateConfig checks that a DetectorConfig is internally consistent.
// A weight set that does not sum to 1.0 is rejected eagerly: silently
// accepting it would produce composite scores outside [0,1].
func ValidateConfig(c config.DetectorConfig) error {
	var errs []string

	weights := map[string]float64{
		"velocity_weight":    c.VelocityWeight,
		"novelty_weight":     c.NoveltyWeight,
		"topic_shift_weight": c.TopicShiftWeight,
		"margin_weight":      c.MarginWeight,
		"transition_weight":  c.TransitionWeight,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	if sum := WeightSum(c); math.Abs(sum-1.0) > weightSumTolerance {
		errs = append(errs, fmt.Sprintf("weights must sum to 1.0, got %g", sum))
	}

	if c.MinDocs < 1 {
		errs = append(errs, "min_docs must be >= 1")
	}
	if c.Lookback < 1 {
		errs = append(errs, "lookback must be >= 1")
	}
	if c.Concurrency < 1 {
		errs = append(errs, "concurrency must be >= 1")
	}

	switch NormMethod(c.NormMethod) {
	case NormMinMax, NormZScore:
	default:
		errs = append(errs, fmt.Sprintf("norm_method must be %s or %s, got %q",
			NormMinMax, NormZScore, c.NormMethod))
	}

	if len(errs) > 0 {
		return eris.Errorf("detect: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
