// Package scene defines the retained-mode scene the viewer draws into and an
// in-memory implementation of it.
//
// Primitives are identified by name. Adding a primitive whose name is
// already present replaces it; removing an unknown name is a no-op.
package scene

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"
)

// Scene is a retained-mode 3D renderer.
type Scene interface {
	// Add inserts primitives, replacing any with the same name.
	Add(prims ...Primitive)

	// Remove drops primitives by name. Unknown names are ignored.
	Remove(names ...string)

	// Render redraws the scene.
	Render()

	// AddSlider creates a 2D slider widget.
	AddSlider(spec SliderSpec) Slider

	// AddSlider3D creates a slider widget placed in world space.
	AddSlider3D(spec Slider3DSpec) Slider

	// Background returns the scene background color.
	Background() color.Color

	// VisibleBounds returns the bounds of all visible primitives, or false
	// when nothing visible has a spatial extent.
	VisibleBounds() (r3.Box, bool)

	// ResetCamera fits the camera to the visible primitives.
	ResetCamera()
}

// Slider is a widget handle. Off hides the widget without destroying it.
type Slider interface {
	On()
	Off()
	Enabled() bool
	Value() float64

	// SetValue moves the slider without firing its callback.
	SetValue(v float64)

	SetRange(min, max float64)
	Range() (min, max float64)

	SetColor(c color.Color)
}

// SliderSpec describes a 2D slider.
type SliderSpec struct {
	Title    string
	Min, Max float64
	Value    float64

	// Pos is a preset screen position, or the two corners of the slider in
	// normalized viewport coordinates when Corners is set.
	Pos     int
	Corners [2][2]float64

	Color     color.Color
	ShowValue bool

	// Delayed fires OnChange only when the drag ends.
	Delayed bool

	OnChange func(v float64)
}

// Slider3DSpec describes a slider laid along a world-space segment.
type Slider3DSpec struct {
	Title      string
	Start, End r3.Vec
	Min, Max   float64
	Value      float64
	Thickness  float64
	Color      color.Color
	OnChange   func(v float64)
}

// IsDark reports whether c is a dark color, using the sum of the normalized
// channels.
func IsDark(c color.Color) bool {
	if c == nil {
		return false
	}
	r, g, b, _ := c.RGBA()
	return float64(r+g+b)/0xffff < 1.5
}
