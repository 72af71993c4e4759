package signal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJensenShannonIdentical(t *testing.T) {
	p := []float64{0.5, 0.3, 0.2}
	got := jensenShannon(p, p)
	assert.InDelta(t, 0, got, 1e-6)
}

func TestJensenShannonDisjoint(t *testing.T) {
	// Fully disjoint distributions approach the sqrt(ln 2) maximum.
	got := jensenShannon([]float64{1, 0}, []float64{0, 1})
	assert.InDelta(t, math.Sqrt(math.Ln2), got, 1e-3)
}

func TestJensenShannonSymmetric(t *testing.T) {
	p := []float64{0.7, 0.2, 0.1}
	q := []float64{0.1, 0.4, 0.5}
	assert.InDelta(t, jensenShannon(p, q), jensenShannon(q, p), 1e-12)
}

func TestJensenShannonPartialOverlap(t *testing.T) {
	p := []float64{0.5, 0.5, 0}
	q := []float64{0.5, 0, 0.5}
	got := jensenShannon(p, q)
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, math.Sqrt(math.Ln2)+1e-9)
}

func TestJensenShannonUnnormalizedInput(t *testing.T) {
	// Counts instead of frequencies must give the same distance.
	a := jensenShannon([]float64{2, 6, 2}, []float64{1, 1, 8})
	b := jensenShannon([]float64{0.2, 0.6, 0.2}, []float64{0.1, 0.1, 0.8})
	assert.InDelta(t, a, b, 1e-12)
}
