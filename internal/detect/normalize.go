package detect

import "math"

// NormMethod selects how a signal column is rescaled to [0,1].
type NormMethod string

const (
	NormMinMax NormMethod = "minmax"
	NormZScore NormMethod = "zscore"
)

// midpoint is the value every row receives when a column is constant
// and carries no ordering information.
const midpoint = 0.5

// NormalizeColumn rescales one signal's entire column of raw values to
// [0,1]. Normalization is a function of the whole column, so it must
// run only after every raw value exists.
//
// minmax maps linearly between the column extremes; zscore standardizes
// and squashes through a logistic sigmoid. Either way a degenerate
// column (all values equal) maps every row to 0.5.
func NormalizeColumn(values []float64, method NormMethod) []float64 {
	if len(values) == 0 {
		return nil
	}

	out := make([]float64, len(values))
	switch method {
	case NormZScore:
		mean, std := columnStats(values)
		if std == 0 {
			fill(out, midpoint)
			return out
		}
		for i, v := range values {
			z := (v - mean) / std
			out[i] = 1 / (1 + math.Exp(-z))
		}
	default: // minmax
		lo, hi := values[0], values[0]
		for _, v := range values[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if hi == lo {
			fill(out, midpoint)
			return out
		}
		for i, v := range values {
			out[i] = (v - lo) / (hi - lo)
		}
	}
	return out
}

// columnStats returns the mean and sample standard deviation (n-1
// divisor) of a column. A single-row column reports std 0.
func columnStats(values []float64) (mean, std float64) {
	n := float64(len(values))
	for _, v := range values {
		mean += v
	}
	mean /= n

	if len(values) < 2 {
		return mean, 0
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / (n - 1))
}

func fill(dst []float64, v float64) {
	for i := range dst {
		dst[i] = v
	}
}
