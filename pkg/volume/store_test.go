package volume

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"ctviewer/internal/models"
)

func TestNewStoreIsEmptySingleton(t *testing.T) {
	s := NewStore()
	assert.True(t, s.IsEmpty())
	assert.Equal(t, models.Dims{1, 1, 1}, s.Volume().Dims())
	assert.Equal(t, models.Dims{1, 1, 1}, s.Mask().Dims())
	assert.Equal(t, []float64{0}, s.Volume().Data)
	assert.True(t, s.Mask().Empty())
}

func TestSetVolumeKeepsIdentity(t *testing.T) {
	s := NewStore()
	vol := s.Volume()
	before := vol.MTime

	data := make([]float64, 4*5*6)
	data[7] = 3
	spacing := r3.Vec{X: 0.5, Y: 0.5, Z: 2}
	require.NoError(t, s.SetVolume(data, models.Dims{4, 5, 6}, spacing, r3.Vec{X: 1}))

	assert.Same(t, vol, s.Volume())
	assert.Equal(t, 4, vol.Width)
	assert.Equal(t, 5, vol.Height)
	assert.Equal(t, 6, vol.Depth)
	assert.Equal(t, spacing, vol.Spacing)
	assert.Equal(t, 3.0, vol.Data[7])
	assert.Greater(t, vol.MTime, before)
	assert.False(t, s.IsEmpty())
}

func TestSetVolumeRejectsInvalidInput(t *testing.T) {
	s := NewStore()
	vol := s.Volume()

	err := s.SetVolume(nil, models.Dims{0, 0, 0}, r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{})
	assert.Equal(t, ErrInvalidDimensions, errors.Cause(err))

	err = s.SetVolume(make([]float64, 5), models.Dims{2, 2, 2}, r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{})
	assert.Equal(t, ErrDataLength, errors.Cause(err))

	err = s.SetVolume(make([]float64, 8), models.Dims{2, 2, 2}, r3.Vec{X: 1, Y: 0, Z: 1}, r3.Vec{})
	assert.Equal(t, ErrInvalidSpacing, errors.Cause(err))

	// Rejected calls leave the store untouched.
	assert.Equal(t, models.Dims{1, 1, 1}, vol.Dims())
}

func TestSetMaskAndClear(t *testing.T) {
	s := NewStore()
	mask := s.Mask()
	require.NoError(t, s.SetVolume(make([]float64, 27), models.Dims{3, 3, 3}, r3.Vec{X: 2, Y: 2, Z: 2}, r3.Vec{}))

	// An all-zero mask is a valid "nothing detected" state.
	require.NoError(t, s.SetMask(make([]uint32, 27), models.Dims{3, 3, 3}))
	assert.Same(t, mask, s.Mask())
	assert.True(t, mask.Empty())
	assert.Equal(t, r3.Vec{X: 2, Y: 2, Z: 2}, mask.Spacing)

	data := make([]uint32, 27)
	data[13] = 4
	require.NoError(t, s.SetMask(data, models.Dims{3, 3, 3}))
	assert.False(t, mask.Empty())

	s.ClearMask()
	assert.Same(t, mask, s.Mask())
	assert.Equal(t, models.Dims{1, 1, 1}, mask.Dims())
	assert.Equal(t, models.Dims{3, 3, 3}, s.Volume().Dims())
}

func TestReset(t *testing.T) {
	s := NewStore()
	vol, mask := s.Volume(), s.Mask()
	require.NoError(t, s.SetVolume(make([]float64, 8), models.Dims{2, 2, 2}, r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{}))
	require.NoError(t, s.SetMask([]uint32{1, 0, 0, 0, 0, 0, 0, 1}, models.Dims{2, 2, 2}))

	s.Reset()
	assert.Same(t, vol, s.Volume())
	assert.Same(t, mask, s.Mask())
	assert.True(t, s.IsEmpty())
	assert.True(t, mask.Empty())
}
