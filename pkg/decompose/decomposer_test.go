package decompose

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctviewer/internal/models"
)

func fillBlock(m *models.Mask, lo, hi [3]int, v uint32) {
	for z := lo[2]; z <= hi[2]; z++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for x := lo[0]; x <= hi[0]; x++ {
				m.Data[m.Index(x, y, z)] = v
			}
		}
	}
}

func TestDecomposeTwoBlocks(t *testing.T) {
	m := models.NewMask(models.Dims{50, 50, 50})
	fillBlock(m, [3]int{0, 0, 0}, [3]int{4, 4, 4}, 1)
	fillBlock(m, [3]int{40, 40, 40}, [3]int{48, 48, 48}, 2)

	objs, err := New(DefaultOptions()).Decompose(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, objs, 2)

	assert.Equal(t, 1, objs[0].ID)
	assert.Equal(t, uint32(1), objs[0].ClassLabel)
	assert.Equal(t, 2, objs[1].ID)
	assert.Equal(t, uint32(2), objs[1].ClassLabel)

	assert.Equal(t, models.BoundingBox{XMax: 4, YMax: 4, ZMax: 4}, objs[0].Box)
	assert.Equal(t, models.BoundingBox{XMin: 36, XMax: 48, YMin: 36, YMax: 48, ZMin: 36, ZMax: 48}, objs[1].Box)

	for _, o := range objs {
		b := o.Box
		for _, pair := range [][2]int{{b.XMin, b.XMax}, {b.YMin, b.YMax}, {b.ZMin, b.ZMax}} {
			assert.GreaterOrEqual(t, pair[0], 0)
			assert.Less(t, pair[0], pair[1])
			assert.LessOrEqual(t, pair[1], 50)
		}
		assert.Greater(t, o.Anchor.Z, float64(o.Box.ZMax)-1e-9, "anchor must sit above the box")
	}
}

func TestDecomposeSingleVoxel(t *testing.T) {
	m := models.NewMask(models.Dims{16, 16, 16})
	m.Data[m.Index(8, 8, 8)] = 1

	objs, err := New(DefaultOptions()).Decompose(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, objs, 1)

	// closed voxel spans [7, 11] per axis; only index 8 survives the stride
	assert.Equal(t, models.BoundingBox{XMin: 4, XMax: 8, YMin: 4, YMax: 8, ZMin: 4, ZMax: 8}, objs[0].Box)
}

func TestDecomposeBoxRoundTrip(t *testing.T) {
	const r = 4
	m := models.NewMask(models.Dims{50, 50, 50})
	fillBlock(m, [3]int{10, 10, 10}, [3]int{29, 29, 29}, 3)

	opts := DefaultOptions()
	opts.ReshapeFactor = r
	objs, err := New(opts).Decompose(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, objs, 1)

	b := objs[0].Box
	for _, pair := range [][2]int{{b.XMin, 10}, {b.YMin, 10}, {b.ZMin, 10}} {
		assert.InDelta(t, pair[1], pair[0], r)
	}
	for _, pair := range [][2]int{{b.XMax, 30}, {b.YMax, 30}, {b.ZMax, 30}} {
		assert.InDelta(t, pair[1], pair[0], r)
	}
	assert.Equal(t, uint32(3), objs[0].ClassLabel)
	assert.InDelta(t, float64(b.ZMax)+opts.AnchorOffset, objs[0].Anchor.Z, 1e-9)
}

func TestDecomposeDeterministic(t *testing.T) {
	m := models.NewMask(models.Dims{40, 30, 20})
	fillBlock(m, [3]int{0, 0, 0}, [3]int{6, 6, 6}, 1)
	fillBlock(m, [3]int{20, 4, 8}, [3]int{30, 20, 14}, 2)
	fillBlock(m, [3]int{35, 25, 0}, [3]int{39, 29, 3}, 4)

	opts := DefaultOptions()
	opts.Workers = 1
	serial, err := New(opts).Decompose(context.Background(), m)
	require.NoError(t, err)

	opts.Workers = 8
	for i := 0; i < 5; i++ {
		parallel, err := New(opts).Decompose(context.Background(), m)
		require.NoError(t, err)
		assert.Equal(t, serial, parallel)
	}
}

func TestDecomposeMajorityLabel(t *testing.T) {
	m := models.NewMask(models.Dims{20, 20, 20})
	fillBlock(m, [3]int{0, 0, 0}, [3]int{11, 11, 11}, 2)
	fillBlock(m, [3]int{0, 0, 0}, [3]int{3, 3, 3}, 1)

	opts := DefaultOptions()
	objs, err := New(opts).Decompose(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, uint32(2), objs[0].ClassLabel)

	opts.LabelPolicy = LabelFirst
	objs, err = New(opts).Decompose(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), objs[0].ClassLabel)
}

func TestDecomposeEmpty(t *testing.T) {
	m := models.NewMask(models.Dims{8, 8, 8})

	objs, err := New(DefaultOptions()).Decompose(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, uint32(1), objs[0].ClassLabel)
	assert.Equal(t, models.BoundingBox{XMax: 1, YMax: 1, ZMax: 1}, objs[0].Box)

	opts := DefaultOptions()
	opts.EmptyPolicy = EmptyNone
	objs, err = New(opts).Decompose(context.Background(), m)
	assert.ErrorIs(t, err, ErrEmptyMask)
	assert.Empty(t, objs)
}

func TestDecomposeInvalidMask(t *testing.T) {
	_, err := New(DefaultOptions()).Decompose(context.Background(), &models.Mask{Width: 2, Height: 2, Depth: 2})
	assert.Error(t, err)
}

func TestOptionsNormalized(t *testing.T) {
	o := Options{ReshapeFactor: 3}.normalized()
	assert.Equal(t, 6, o.DilateKernel)
	assert.Equal(t, 3, o.ErodeKernel)
	assert.Equal(t, Connectivity26, o.Connectivity)
}
