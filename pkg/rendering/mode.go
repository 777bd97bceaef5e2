// Package rendering switches the viewer between its mutually exclusive
// render modes: ray casting, isosurface browsing, orthogonal slicing and
// flat projection viewing.
package rendering

import (
	"strings"

	"github.com/pkg/errors"
)

// Mode is a render mode. Exactly one is active at a time.
type Mode int

const (
	NoMode Mode = iota
	RayCast
	IsoSurface
	Slicer
	ProjectionView
)

func (m Mode) String() string {
	switch m {
	case NoMode:
		return "none"
	case RayCast:
		return "raycast"
	case IsoSurface:
		return "iso"
	case Slicer:
		return "slicer"
	case ProjectionView:
		return "projection"
	default:
		return "unknown"
	}
}

// ParseMode maps a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NoMode, nil
	case "raycast", "ray-cast":
		return RayCast, nil
	case "iso", "isosurface":
		return IsoSurface, nil
	case "slicer", "slice":
		return Slicer, nil
	case "projection":
		return ProjectionView, nil
	}
	return NoMode, errors.Errorf("unknown render mode %q", s)
}

var (
	// ErrVolumeTooThin is returned when a 3D mode is requested for a volume
	// with fewer than 3 samples along z.
	ErrVolumeTooThin = errors.New("volume is too thin to render")

	// ErrFlatScalarRange is returned when the isosurface is requested for a
	// volume whose scalar range has zero width.
	ErrFlatScalarRange = errors.New("volume scalar range is flat")

	// ErrInvalidBlendMode is returned for ray-cast blend modes outside 0..4.
	ErrInvalidBlendMode = errors.New("blend mode must be between 0 and 4")
)

// Primitive names used by the controller.
const (
	NameVolume     = "Volume"
	NameMask       = "Mask"
	NameHistogram  = "Histogram"
	NameXSlice     = "XSlice"
	NameYSlice     = "YSlice"
	NameZSlice     = "ZSlice"
	NameSlicerBox  = "SlicerBox"
	NameProjection = "Projection"
	NameAxes       = "Axes"
)

// AxesStyles is the number of axes styles SwitchAxes cycles through.
const AxesStyles = 14
