package signal

import "math"

// distEpsilon is mixed into both distributions before the divergence is
// computed, so topics present on only one side never produce a zero
// probability inside the log terms.
const distEpsilon = 1e-10

// jensenShannon returns the Jensen-Shannon distance between two
// discrete distributions over the same support: the square root of the
// JS divergence computed with natural logarithms, so the maximum is
// sqrt(ln 2). Both inputs are renormalized after epsilon mixing.
func jensenShannon(p, q []float64) float64 {
	p = mixAndRenormalize(p)
	q = mixAndRenormalize(q)

	var div float64
	for i := range p {
		m := (p[i] + q[i]) / 2
		div += klTerm(p[i], m) + klTerm(q[i], m)
	}
	div /= 2

	// Floating-point noise can push an identical-distribution result
	// fractionally below zero.
	if div < 0 {
		div = 0
	}
	return math.Sqrt(div)
}

func klTerm(p, m float64) float64 {
	if p == 0 || m == 0 {
		return 0
	}
	return p * math.Log(p/m)
}

func mixAndRenormalize(dist []float64) []float64 {
	out := make([]float64, len(dist))
	var sum float64
	for i, v := range dist {
		out[i] = v + distEpsilon
		sum += out[i]
	}
	if sum == 0 {
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
