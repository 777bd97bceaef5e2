// Package volume owns the intensity volume and the detection mask currently
// loaded in the viewer.
//
// Both are replaced in place: the *models.Volume and *models.Mask returned by
// a Store keep their identity for the lifetime of the store, so renderers can
// hold on to them across reloads.
package volume

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"ctviewer/internal/logging"
	"ctviewer/internal/models"
)

var (
	// ErrInvalidDimensions is returned when an axis has fewer than one sample.
	ErrInvalidDimensions = errors.New("volume dimensions must be at least 1 on every axis")

	// ErrDataLength is returned when the data does not match the dimensions.
	ErrDataLength = errors.New("data length does not match dimensions")

	// ErrInvalidSpacing is returned for zero or negative voxel spacing.
	ErrInvalidSpacing = errors.New("voxel spacing must be positive")
)

var unitSpacing = r3.Vec{X: 1, Y: 1, Z: 1}

// Store holds the current volume and mask.
type Store struct {
	volume *models.Volume
	mask   *models.Mask
}

// NewStore creates a store holding the canonical empty 1x1x1 volume and mask.
func NewStore() *Store {
	s := &Store{
		volume: &models.Volume{},
		mask:   &models.Mask{},
	}
	s.Reset()
	return s
}

// Volume returns the current intensity volume. The pointer is stable.
func (s *Store) Volume() *models.Volume {
	return s.volume
}

// Mask returns the current mask. The pointer is stable.
func (s *Store) Mask() *models.Mask {
	return s.mask
}

// SetVolume replaces the intensity data in place.
func (s *Store) SetVolume(data []float64, dims models.Dims, spacing, origin r3.Vec) error {
	if err := validate(len(data), dims, spacing); err != nil {
		return errors.Wrap(err, "set volume")
	}
	s.volume.Data = data
	s.volume.Width, s.volume.Height, s.volume.Depth = dims[0], dims[1], dims[2]
	s.volume.Spacing = spacing
	s.volume.Origin = origin
	s.volume.MTime++

	logging.Logger().Debug("volume replaced", "dims", dims, "spacing", spacing, "mtime", s.volume.MTime)
	return nil
}

// SetMask replaces the mask data in place. The mask takes the spacing and
// origin of the current volume. An all-zero mask is valid.
func (s *Store) SetMask(data []uint32, dims models.Dims) error {
	if err := validate(len(data), dims, unitSpacing); err != nil {
		return errors.Wrap(err, "set mask")
	}
	if dims != s.volume.Dims() && s.volume.Dims().Len() > 1 {
		logging.Logger().Warn("mask dimensions differ from volume",
			"mask", dims, "volume", s.volume.Dims())
	}
	s.mask.Data = data
	s.mask.Width, s.mask.Height, s.mask.Depth = dims[0], dims[1], dims[2]
	s.mask.Spacing = s.volume.Spacing
	s.mask.Origin = s.volume.Origin
	s.mask.MTime++
	return nil
}

// ClearMask puts the mask back to the empty singleton.
func (s *Store) ClearMask() {
	s.mask.Data = make([]uint32, 1)
	s.mask.Width, s.mask.Height, s.mask.Depth = 1, 1, 1
	s.mask.Spacing = unitSpacing
	s.mask.Origin = r3.Vec{}
	s.mask.MTime++
}

// Reset puts both the volume and the mask back to the empty singleton.
func (s *Store) Reset() {
	s.volume.Data = make([]float64, 1)
	s.volume.Width, s.volume.Height, s.volume.Depth = 1, 1, 1
	s.volume.Spacing = unitSpacing
	s.volume.Origin = r3.Vec{}
	s.volume.MTime++
	s.ClearMask()
}

// IsEmpty reports whether the store holds the empty singleton volume.
func (s *Store) IsEmpty() bool {
	return s.volume.Dims().Len() <= 1
}

func validate(n int, dims models.Dims, spacing r3.Vec) error {
	if !dims.Valid() {
		return errors.Wrapf(ErrInvalidDimensions, "got %v", dims)
	}
	if n != dims.Len() {
		return errors.Wrapf(ErrDataLength, "got %d values for %v", n, dims)
	}
	if spacing.X <= 0 || spacing.Y <= 0 || spacing.Z <= 0 {
		return errors.Wrapf(ErrInvalidSpacing, "got %v", spacing)
	}
	return nil
}
