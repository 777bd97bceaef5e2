package models

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Dims holds the number of samples along x, y and z.
type Dims [3]int

// Len returns the number of voxels described by d.
func (d Dims) Len() int {
	return d[0] * d[1] * d[2]
}

// Valid reports whether every axis has at least one sample.
func (d Dims) Valid() bool {
	return d[0] >= 1 && d[1] >= 1 && d[2] >= 1
}

// Volume represents a dense 3D scalar volume
type Volume struct {
	// Data is the 3D volume data as a 1D array with x varying fastest
	Data []float64

	// Width, Height, Depth are the number of samples along x, y and z
	Width, Height, Depth int

	// Spacing is the physical size of a voxel along each axis
	Spacing r3.Vec

	// Origin is the physical position of voxel (0, 0, 0)
	Origin r3.Vec

	// MTime is bumped every time the contents are replaced in place
	MTime uint64
}

// Dims returns the volume dimensions.
func (v *Volume) Dims() Dims {
	return Dims{v.Width, v.Height, v.Depth}
}

// Index returns the flat index of voxel (x, y, z).
func (v *Volume) Index(x, y, z int) int {
	return z*v.Width*v.Height + y*v.Width + x
}

// At returns the intensity at voxel (x, y, z).
func (v *Volume) At(x, y, z int) float64 {
	return v.Data[v.Index(x, y, z)]
}

// ScalarRange returns the minimum and maximum intensity.
func (v *Volume) ScalarRange() (min, max float64) {
	if len(v.Data) == 0 {
		return 0, 0
	}
	return floats.Min(v.Data), floats.Max(v.Data)
}

// Bounds returns the world-space bounding box spanned by the voxel centers.
func (v *Volume) Bounds() r3.Box {
	return bounds(v.Dims(), v.Spacing, v.Origin)
}

// WorldToIndex converts a world coordinate along axis (0=x, 1=y, 2=z) into the
// nearest voxel index. The result is not clamped.
func (v *Volume) WorldToIndex(axis int, w float64) int {
	origin := [3]float64{v.Origin.X, v.Origin.Y, v.Origin.Z}
	spacing := [3]float64{v.Spacing.X, v.Spacing.Y, v.Spacing.Z}
	if spacing[axis] == 0 {
		return 0
	}
	f := (w - origin[axis]) / spacing[axis]
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}

// IndexToWorld converts a voxel index along axis into a world coordinate.
func (v *Volume) IndexToWorld(axis, i int) float64 {
	switch axis {
	case 0:
		return v.Origin.X + float64(i)*v.Spacing.X
	case 1:
		return v.Origin.Y + float64(i)*v.Spacing.Y
	default:
		return v.Origin.Z + float64(i)*v.Spacing.Z
	}
}

// Mask is a label volume sharing the spatial domain of an intensity volume.
// Zero is background, positive values are class or object ids.
type Mask struct {
	// Data is the label array with x varying fastest
	Data []uint32

	// Width, Height, Depth are the number of samples along x, y and z
	Width, Height, Depth int

	Spacing r3.Vec
	Origin  r3.Vec

	// MTime is bumped every time the contents are replaced in place
	MTime uint64
}

// Dims returns the mask dimensions.
func (m *Mask) Dims() Dims {
	return Dims{m.Width, m.Height, m.Depth}
}

// Index returns the flat index of voxel (x, y, z).
func (m *Mask) Index(x, y, z int) int {
	return z*m.Width*m.Height + y*m.Width + x
}

// At returns the label at voxel (x, y, z).
func (m *Mask) At(x, y, z int) uint32 {
	return m.Data[m.Index(x, y, z)]
}

// Empty reports whether the mask holds no foreground voxel.
func (m *Mask) Empty() bool {
	for _, v := range m.Data {
		if v != 0 {
			return false
		}
	}
	return true
}

// Bounds returns the world-space bounding box spanned by the voxel centers.
func (m *Mask) Bounds() r3.Box {
	return bounds(m.Dims(), m.Spacing, m.Origin)
}

// NewMask allocates an all-zero mask with unit spacing.
func NewMask(d Dims) *Mask {
	return &Mask{
		Data:    make([]uint32, d.Len()),
		Width:   d[0],
		Height:  d[1],
		Depth:   d[2],
		Spacing: r3.Vec{X: 1, Y: 1, Z: 1},
	}
}

func bounds(d Dims, spacing, origin r3.Vec) r3.Box {
	extent := r3.Vec{
		X: float64(d[0]-1) * spacing.X,
		Y: float64(d[1]-1) * spacing.Y,
		Z: float64(d[2]-1) * spacing.Z,
	}
	return r3.Box{Min: origin, Max: r3.Add(origin, extent)}
}
