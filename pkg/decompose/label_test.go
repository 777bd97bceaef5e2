package decompose

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ctviewer/internal/models"
)

func TestBackwardOffsets(t *testing.T) {
	assert.Len(t, backwardOffsets(Connectivity6), 3)
	assert.Len(t, backwardOffsets(Connectivity18), 9)
	assert.Len(t, backwardOffsets(Connectivity26), 13)
}

func TestLabelConnectivity(t *testing.T) {
	// two voxels touching only at a corner
	g := newGrid(models.Dims{2, 2, 2})
	g.data[g.index(0, 0, 0)] = 1
	g.data[g.index(1, 1, 1)] = 1

	_, n := label(g, Connectivity26)
	assert.Equal(t, 1, n)

	_, n = label(g, Connectivity18)
	assert.Equal(t, 2, n)

	_, n = label(g, Connectivity6)
	assert.Equal(t, 2, n)
}

func TestLabelMergesUShape(t *testing.T) {
	// a U shape meets the second arm late in raster order
	g := newGrid(models.Dims{3, 3, 1})
	for _, p := range [][2]int{{0, 0}, {2, 0}, {0, 1}, {2, 1}, {0, 2}, {1, 2}, {2, 2}} {
		g.data[g.index(p[0], p[1], 0)] = 1
	}
	labels, n := label(g, Connectivity6)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, labels[g.index(2, 0, 0)])
}

func TestLabelOrder(t *testing.T) {
	g := newGrid(models.Dims{5, 1, 1})
	g.data[0] = 7
	g.data[2] = 7
	g.data[4] = 7
	labels, n := label(g, Connectivity26)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{1, 0, 2, 0, 3}, labels)
}

func TestFilterDilateErode(t *testing.T) {
	g := newGrid(models.Dims{6, 1, 1})
	g.data[2] = 5

	d := g.filter(2, maxOf, 1)
	assert.Equal(t, []uint32{0, 0, 5, 5, 0, 0}, d.data)

	e := d.filter(2, minOf, 1)
	assert.Equal(t, []uint32{0, 0, 0, 5, 0, 0}, e.data)

	assert.Same(t, g, g.filter(1, maxOf, 4))
}

func TestCloseErodes(t *testing.T) {
	g := newGrid(models.Dims{16, 1, 1})
	g.data[6] = 1

	dilated := g.filter(8, maxOf, 1)
	closed := g.close(8, 4, 1)
	assert.NotEqual(t, dilated.data, closed.data)

	count := func(data []uint32) int {
		n := 0
		for _, v := range data {
			if v != 0 {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 8, count(dilated.data))
	assert.Equal(t, 5, count(closed.data))
	assert.Equal(t, uint32(1), closed.data[6])
}

func TestDownsample(t *testing.T) {
	m := models.NewMask(models.Dims{5, 3, 1})
	m.Data[m.Index(4, 2, 0)] = 9
	g := maskGrid(m).downsample(2)
	assert.Equal(t, models.Dims{3, 2, 1}, g.dims)
	assert.Equal(t, uint32(9), g.data[g.index(2, 1, 0)])
}
