package models

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// BoundingBox is an axis-aligned box in voxel coordinates. Max values are
// exclusive stops.
type BoundingBox struct {
	XMin, XMax int
	YMin, YMax int
	ZMin, ZMax int
}

// Box converts b into an r3.Box.
func (b BoundingBox) Box() r3.Box {
	return r3.Box{
		Min: r3.Vec{X: float64(b.XMin), Y: float64(b.YMin), Z: float64(b.ZMin)},
		Max: r3.Vec{X: float64(b.XMax), Y: float64(b.YMax), Z: float64(b.ZMax)},
	}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[%d:%d, %d:%d, %d:%d]", b.XMin, b.XMax, b.YMin, b.YMax, b.ZMin, b.ZMax)
}

// DetectedObject is one discrete object found in a mask
type DetectedObject struct {
	// ID is the 1-based position of the object in its decomposition result
	ID int

	// ClassLabel is the mask value the object was labeled with
	ClassLabel uint32

	// Description is set when the detection came with its own text
	Description string

	// Box is the object's extent in voxel coordinates
	Box BoundingBox

	// Anchor is where the floating label is attached, above the object
	Anchor r3.Vec
}

// Voxel is an integer voxel coordinate.
type Voxel struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
	Z int `yaml:"z" json:"z"`
}

// Region is a pre-labeled detection record: an axis-aligned box given by its
// base corner and extent, with an optional per-voxel bitmap covering the box.
// Base and Extent are pointers so that missing fields can be told apart from
// zero values.
type Region struct {
	Base        *Voxel  `yaml:"base" json:"base"`
	Extent      *Voxel  `yaml:"extent" json:"extent"`
	Bitmap      []uint8 `yaml:"bitmap,omitempty" json:"bitmap,omitempty"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
}
