package visualization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHistogram(t *testing.T) {
	data := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	h := NewHistogram(data, 5)

	assert.Len(t, h.Edges, 6)
	assert.Equal(t, 0.0, h.Edges[0])
	assert.Equal(t, 10.0, h.Edges[5])
	assert.Equal(t, []float64{2, 2, 2, 2, 3}, h.Counts)
}

func TestHistogramFlatData(t *testing.T) {
	h := NewHistogram([]float64{5, 5, 5}, 4)
	assert.Equal(t, 3.0, h.Counts[0])
	assert.Equal(t, 5.0, h.Edges[0])
}

func TestClampRangeNarrowsTails(t *testing.T) {
	// Mostly soft tissue around 1000 with a handful of metal voxels.
	data := make([]float64, 0, 1010)
	for i := 0; i < 1000; i++ {
		data = append(data, 900+float64(i%200))
	}
	for i := 0; i < 10; i++ {
		data = append(data, 30000)
	}

	lo, hi := ClampRange(data, 900, 30000)
	assert.GreaterOrEqual(t, lo, 900.0)
	assert.Less(t, hi, 30000.0)
	assert.Less(t, lo, hi)
}
