package scene

import (
	"image"
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"

	"ctviewer/internal/models"
	"ctviewer/pkg/visualization"
)

// Primitive is anything that can be placed in a Scene.
type Primitive interface {
	Name() string
}

// Bounded primitives contribute to the visible bounds of a scene.
type Bounded interface {
	Primitive
	Bounds() (r3.Box, bool)
}

// BlendMode is the volume compositing mode.
type BlendMode int

const (
	BlendComposite BlendMode = iota
	BlendMaxIntensity
	BlendMinIntensity
	BlendAverageIntensity
	BlendAdditive
	BlendIsoSurface
)

func (b BlendMode) String() string {
	switch b {
	case BlendComposite:
		return "composite"
	case BlendMaxIntensity:
		return "max"
	case BlendMinIntensity:
		return "min"
	case BlendAverageIntensity:
		return "average"
	case BlendAdditive:
		return "additive"
	case BlendIsoSurface:
		return "isosurface"
	default:
		return "unknown"
	}
}

// OpacityPoint is one node of a scalar opacity transfer function.
type OpacityPoint struct {
	Value float64
	Alpha float64
}

// ColorPoint is one node of a scalar color transfer function.
type ColorPoint struct {
	Value float64
	Color color.Color
}

// VolumeActor renders the intensity volume. Modes mutate it in place and
// call Render.
type VolumeActor struct {
	ID       string
	Volume   *models.Volume
	Blend    BlendMode
	Alpha    []float64
	Opacity  []OpacityPoint
	Colors   []ColorPoint
	IsoValue float64
	Visible  bool
}

func (a *VolumeActor) Name() string { return a.ID }

func (a *VolumeActor) Bounds() (r3.Box, bool) {
	if !a.Visible || a.Volume == nil {
		return r3.Box{}, false
	}
	return a.Volume.Bounds(), true
}

// MaskActor renders the mask as a translucent label volume.
type MaskActor struct {
	ID      string
	Mask    *models.Mask
	Colors  map[uint32]color.Color
	Alpha   map[uint32]float64
	Visible bool
}

func (a *MaskActor) Name() string { return a.ID }

func (a *MaskActor) Bounds() (r3.Box, bool) {
	if !a.Visible || a.Mask == nil || a.Mask.Empty() {
		return r3.Box{}, false
	}
	return a.Mask.Bounds(), true
}

// Box is an axis-aligned box, drawn as a wireframe when Wireframe is set.
type Box struct {
	ID        string
	Extent    r3.Box
	Color     color.Color
	Alpha     float64
	Wireframe bool
}

func (b *Box) Name() string { return b.ID }

func (b *Box) Bounds() (r3.Box, bool) { return b.Extent, true }

// Flagpost is a floating text label on a pole from Base to Top.
type Flagpost struct {
	ID        string
	Text      string
	Base, Top r3.Vec
	Color     color.Color
}

func (f *Flagpost) Name() string { return f.ID }

func (f *Flagpost) Bounds() (r3.Box, bool) {
	return union(r3.Box{Min: f.Base, Max: f.Base}, r3.Box{Min: f.Top, Max: f.Top}), true
}

// SlicePlane is one orthogonal slice of the volume, colored over Window.
type SlicePlane struct {
	ID     string
	Axis   visualization.Axis
	Index  int
	Extent r3.Box
	Image  *image.Gray16
	Window visualization.Window
}

func (p *SlicePlane) Name() string { return p.ID }

func (p *SlicePlane) Bounds() (r3.Box, bool) { return p.Extent, true }

// Histogram is a 2D corner histogram overlay.
type Histogram struct {
	ID       string
	Hist     visualization.Histogram
	LogScale bool
}

func (h *Histogram) Name() string { return h.ID }

// Image is a flat 2D picture placed on the z = 0 plane.
type Image struct {
	ID  string
	Pix image.Image
}

func (i *Image) Name() string { return i.ID }

func (i *Image) Bounds() (r3.Box, bool) {
	if i.Pix == nil {
		return r3.Box{}, false
	}
	b := i.Pix.Bounds()
	return r3.Box{Max: r3.Vec{X: float64(b.Dx() - 1), Y: float64(b.Dy() - 1)}}, true
}

// Axes is the axes annotation sized to Extent.
type Axes struct {
	ID     string
	Extent r3.Box
	Style  int
}

func (a *Axes) Name() string { return a.ID }

// union returns the smallest box holding a and b.
func union(a, b r3.Box) r3.Box {
	return r3.Box{
		Min: r3.Vec{X: min(a.Min.X, b.Min.X), Y: min(a.Min.Y, b.Min.Y), Z: min(a.Min.Z, b.Min.Z)},
		Max: r3.Vec{X: max(a.Max.X, b.Max.X), Y: max(a.Max.Y, b.Max.Y), Z: max(a.Max.Z, b.Max.Z)},
	}
}
