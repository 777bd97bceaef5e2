package decompose

import (
	"runtime"

	"ctviewer/pkg/config"
)

// Connectivity is the neighborhood used by connected-component labeling.
type Connectivity int

const (
	// Faces only.
	Connectivity6 Connectivity = 6
	// Faces and edges.
	Connectivity18 Connectivity = 18
	// Faces, edges and corners.
	Connectivity26 Connectivity = 26
)

// EmptyPolicy selects what an all-background mask decomposes into.
type EmptyPolicy string

const (
	// EmptyPlaceholder returns a single one-voxel object at the origin so that
	// the overlay always has an anchor.
	EmptyPlaceholder EmptyPolicy = "placeholder"

	// EmptyNone returns no objects together with ErrEmptyMask.
	EmptyNone EmptyPolicy = "none"
)

// LabelPolicy selects the class of a component that covers several mask values.
type LabelPolicy string

const (
	// LabelMajority picks the most frequent value, ties going to the smallest.
	LabelMajority LabelPolicy = "majority"

	// LabelFirst picks the first value met in raster order.
	LabelFirst LabelPolicy = "first"
)

// Options configures a Decomposer
type Options struct {
	// ReshapeFactor is the stride used to downsample the mask
	ReshapeFactor int

	// Connectivity is the labeling neighborhood (6, 18 or 26)
	Connectivity Connectivity

	// DilateKernel and ErodeKernel are the closing kernel sizes in full-resolution
	// voxels. Zero means 2*ReshapeFactor and ReshapeFactor.
	DilateKernel int
	ErodeKernel  int

	// AnchorOffset lifts anchors above the top face of the box
	AnchorOffset float64

	EmptyPolicy EmptyPolicy
	LabelPolicy LabelPolicy

	// Workers is the number of goroutines used by the morphology passes
	Workers int
}

// DefaultOptions returns the options used by the viewer out of the box.
func DefaultOptions() Options {
	return Options{
		ReshapeFactor: 4,
		Connectivity:  Connectivity26,
		AnchorOffset:  4,
		EmptyPolicy:   EmptyPlaceholder,
		LabelPolicy:   LabelMajority,
		Workers:       runtime.NumCPU(),
	}
}

// OptionsFromConfig builds Options from the decomposition section of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	d := cfg.Decomposition
	return Options{
		ReshapeFactor: d.ReshapeFactor,
		Connectivity:  Connectivity(d.Connectivity),
		DilateKernel:  d.DilateKernel,
		ErodeKernel:   d.ErodeKernel,
		AnchorOffset:  d.AnchorOffset,
		EmptyPolicy:   EmptyPolicy(d.EmptyPolicy),
		LabelPolicy:   LabelPolicy(d.LabelPolicy),
		Workers:       d.Workers,
	}
}

func (o Options) normalized() Options {
	if o.ReshapeFactor < 1 {
		o.ReshapeFactor = 1
	}
	switch o.Connectivity {
	case Connectivity6, Connectivity18, Connectivity26:
	default:
		o.Connectivity = Connectivity26
	}
	if o.DilateKernel <= 0 {
		o.DilateKernel = 2 * o.ReshapeFactor
	}
	if o.ErodeKernel <= 0 {
		o.ErodeKernel = o.ReshapeFactor
	}
	if o.EmptyPolicy == "" {
		o.EmptyPolicy = EmptyPlaceholder
	}
	if o.LabelPolicy == "" {
		o.LabelPolicy = LabelMajority
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	return o
}
