package scene

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"

	"ctviewer/internal/logging"
)

// Recorder is an in-memory Scene. It keeps primitives in insertion order and
// records every slider it hands out. It backs headless runs and tests.
type Recorder struct {
	background color.Color
	order      []string
	prims      map[string]Primitive
	sliders    []*RecordedSlider
	renders    int
	resets     int
}

// NewRecorder creates an empty Recorder with the given background color.
func NewRecorder(bg color.Color) *Recorder {
	if bg == nil {
		bg = color.White
	}
	return &Recorder{
		background: bg,
		prims:      make(map[string]Primitive),
	}
}

func (r *Recorder) Add(prims ...Primitive) {
	for _, p := range prims {
		if p == nil {
			continue
		}
		name := p.Name()
		if _, ok := r.prims[name]; !ok {
			r.order = append(r.order, name)
		}
		r.prims[name] = p
	}
}

func (r *Recorder) Remove(names ...string) {
	for _, name := range names {
		if _, ok := r.prims[name]; !ok {
			continue
		}
		delete(r.prims, name)
		for i, n := range r.order {
			if n == name {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
}

func (r *Recorder) Render() {
	r.renders++
	logging.Logger().Debug("scene rendered", "primitives", len(r.order), "renders", r.renders)
}

func (r *Recorder) AddSlider(spec SliderSpec) Slider {
	s := &RecordedSlider{
		title:    spec.Title,
		min:      spec.Min,
		max:      spec.Max,
		value:    spec.Value,
		color:    spec.Color,
		enabled:  true,
		onChange: spec.OnChange,
	}
	r.sliders = append(r.sliders, s)
	return s
}

func (r *Recorder) AddSlider3D(spec Slider3DSpec) Slider {
	s := &RecordedSlider{
		title:    spec.Title,
		min:      spec.Min,
		max:      spec.Max,
		value:    spec.Value,
		color:    spec.Color,
		start:    spec.Start,
		end:      spec.End,
		in3D:     true,
		enabled:  true,
		onChange: spec.OnChange,
	}
	r.sliders = append(r.sliders, s)
	return s
}

func (r *Recorder) Background() color.Color {
	return r.background
}

func (r *Recorder) VisibleBounds() (r3.Box, bool) {
	var (
		out   r3.Box
		found bool
	)
	for _, name := range r.order {
		b, ok := r.prims[name].(Bounded)
		if !ok {
			continue
		}
		box, visible := b.Bounds()
		if !visible {
			continue
		}
		if !found {
			out, found = box, true
			continue
		}
		out = union(out, box)
	}
	return out, found
}

func (r *Recorder) ResetCamera() {
	r.resets++
}

// Names returns the names of the current primitives in insertion order.
func (r *Recorder) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the primitive with the given name.
func (r *Recorder) Get(name string) (Primitive, bool) {
	p, ok := r.prims[name]
	return p, ok
}

// Has reports whether a primitive with the given name is present.
func (r *Recorder) Has(name string) bool {
	_, ok := r.prims[name]
	return ok
}

// Sliders returns every slider ever created, in creation order.
func (r *Recorder) Sliders() []*RecordedSlider {
	return r.sliders
}

// EnabledSliders returns the sliders currently shown.
func (r *Recorder) EnabledSliders() []*RecordedSlider {
	var out []*RecordedSlider
	for _, s := range r.sliders {
		if s.enabled {
			out = append(out, s)
		}
	}
	return out
}

// Renders returns how many times Render was called.
func (r *Recorder) Renders() int { return r.renders }

// CameraResets returns how many times ResetCamera was called.
func (r *Recorder) CameraResets() int { return r.resets }

// RecordedSlider is the Slider handed out by a Recorder.
type RecordedSlider struct {
	title      string
	min, max   float64
	value      float64
	color      color.Color
	start, end r3.Vec
	in3D       bool
	enabled    bool
	onChange   func(float64)
}

func (s *RecordedSlider) On()            { s.enabled = true }
func (s *RecordedSlider) Off()           { s.enabled = false }
func (s *RecordedSlider) Enabled() bool  { return s.enabled }
func (s *RecordedSlider) Value() float64 { return s.value }

func (s *RecordedSlider) SetValue(v float64) { s.value = v }

func (s *RecordedSlider) SetRange(min, max float64) {
	s.min, s.max = min, max
}

func (s *RecordedSlider) Range() (float64, float64) { return s.min, s.max }

// Title returns the slider title.
func (s *RecordedSlider) Title() string { return s.title }

// Color returns the slider color.
func (s *RecordedSlider) Color() color.Color { return s.color }

func (s *RecordedSlider) SetColor(c color.Color) { s.color = c }

// Is3D reports whether the slider was created with AddSlider3D.
func (s *RecordedSlider) Is3D() bool { return s.in3D }

// Segment returns the world-space segment of a 3D slider.
func (s *RecordedSlider) Segment() (r3.Vec, r3.Vec) { return s.start, s.end }

// Drag simulates the user moving the slider: the value is clamped to the
// range and the callback fires.
func (s *RecordedSlider) Drag(v float64) {
	s.value = max(s.min, min(s.max, v))
	if s.onChange != nil {
		s.onChange(s.value)
	}
}
