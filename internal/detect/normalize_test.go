package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeColumnMinMax(t *testing.T) {
	got := NormalizeColumn([]float64{2, 4, 6}, NormMinMax)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1}, got, 1e-9)
}

func TestNormalizeColumnConstant(t *testing.T) {
	for _, method := range []NormMethod{NormMinMax, NormZScore} {
		got := NormalizeColumn([]float64{3, 3, 3}, method)
		assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5}, got, 1e-9, "method %s", method)
	}
}

func TestNormalizeColumnEmpty(t *testing.T) {
	assert.Nil(t, NormalizeColumn(nil, NormMinMax))
}

func TestNormalizeColumnSingleValue(t *testing.T) {
	for _, method := range []NormMethod{NormMinMax, NormZScore} {
		got := NormalizeColumn([]float64{42}, method)
		assert.InDeltaSlice(t, []float64{0.5}, got, 1e-9, "method %s", method)
	}
}

func TestNormalizeColumnZScore(t *testing.T) {
	got := NormalizeColumn([]float64{1, 2, 3}, NormZScore)

	// The mean maps to exactly 0.5 and ordering is preserved.
	assert.InDelta(t, 0.5, got[1], 1e-9)
	assert.Less(t, got[0], got[1])
	assert.Less(t, got[1], got[2])
	// Sigmoid output stays strictly inside (0, 1).
	for _, v := range got {
		assert.Greater(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestColumnStatsSampleStd(t *testing.T) {
	mean, std := columnStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-9)
	// Sample std (n-1 divisor) of this set is ~2.138.
	assert.InDelta(t, 2.13809, std, 1e-4)
}
