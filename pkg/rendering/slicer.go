package rendering

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"ctviewer/pkg/scene"
	"ctviewer/pkg/visualization"
)

var planeNames = [3]string{NameXSlice, NameYSlice, NameZSlice}

type slicerWidgets struct {
	sliders [3]scene.Slider
	planes  [3]*scene.SlicePlane
	box     *scene.Box
	window  visualization.Window
	clamp   bool
	mtime   uint64
}

// sliderColors returns the x, y and z slider colors, light on dark
// backgrounds.
func sliderColors(bg color.Color) [3]color.Color {
	if scene.IsDark(bg) {
		return [3]color.Color{scene.NamedColor("lr"), scene.NamedColor("lg"), scene.NamedColor("lb")}
	}
	return [3]color.Color{scene.NamedColor("dr"), scene.NamedColor("dg"), scene.NamedColor("db")}
}

func (c *Controller) activateSlicer(clamp bool) error {
	c.showVolume()
	c.hideVolume()
	c.volumeActor.Blend = scene.BlendMaxIntensity

	if c.slicer == nil {
		return c.buildSlicer(clamp)
	}

	for _, s := range c.slicer.sliders {
		s.On()
	}
	if c.volumeChanged(c.slicer.mtime) || c.slicer.clamp != clamp {
		if err := c.refreshSlicer(clamp); err != nil {
			return err
		}
	}
	c.addSlicerGeometry()
	return nil
}

func (c *Controller) buildSlicer(clamp bool) error {
	vol := c.volume()
	w := &slicerWidgets{}
	c.slicer = w

	if err := c.refreshSlicer(clamp); err != nil {
		c.slicer = nil
		return err
	}

	b := vol.Bounds()
	colors := sliderColors(c.scene.Background())
	ends := [3]r3.Vec{
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
	}
	starts := [3]r3.Vec{
		b.Min,
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		b.Min,
	}
	diag := r3.Norm(r3.Sub(b.Max, b.Min))
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for axis := range w.sliders {
		axis := axis
		thickness := 0.6
		if span := hi[axis] - lo[axis]; span > 0 {
			thickness = diag / span * 0.6
		}
		w.sliders[axis] = c.scene.AddSlider3D(scene.Slider3DSpec{
			Start:     starts[axis],
			End:       ends[axis],
			Min:       lo[axis],
			Max:       hi[axis],
			Value:     vol.IndexToWorld(axis, w.planes[axis].Index),
			Thickness: thickness,
			Color:     colors[axis],
			OnChange: func(v float64) {
				c.moveSlice(visualization.Axis(axis), v)
			},
		})
	}

	c.addSlicerGeometry()
	return nil
}

// refreshSlicer recomputes the color window, the planes and the box for the
// current volume, and resets the slider ranges if the sliders exist.
func (c *Controller) refreshSlicer(clamp bool) error {
	vol := c.volume()
	w := c.slicer

	rmin, rmax := vol.ScalarRange()
	if clamp {
		rmin, rmax = visualization.ClampRange(vol.Data, rmin, rmax)
	}
	w.window = visualization.Window{Lo: rmin, Hi: rmax}
	w.clamp = clamp

	initial := [3]int{vol.Width / 2, int(float64(vol.Height) / 1.5), vol.Depth / 2}
	for axis := range w.planes {
		idx := initial[axis]
		if w.planes[axis] != nil && !c.volumeChanged(w.mtime) {
			idx = w.planes[axis].Index
		}
		p, err := c.slicePlane(visualization.Axis(axis), idx)
		if err != nil {
			return err
		}
		w.planes[axis] = p
	}

	b := vol.Bounds()
	w.box = &scene.Box{ID: NameSlicerBox, Extent: b, Color: color.Gray{Y: 128}, Alpha: 0.2}

	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}
	for axis, s := range w.sliders {
		if s == nil {
			continue
		}
		s.SetRange(lo[axis], hi[axis])
		s.SetValue(vol.IndexToWorld(axis, w.planes[axis].Index))
	}

	w.mtime = vol.MTime
	return nil
}

// slicePlane builds the plane at idx, clamped to the volume.
func (c *Controller) slicePlane(axis visualization.Axis, idx int) (*scene.SlicePlane, error) {
	vol := c.volume()
	n := visualization.AxisLen(vol, axis)
	idx = max(0, min(n-1, idx))

	img, err := visualization.ExtractSlice(vol, axis, idx, c.slicer.window)
	if err != nil {
		return nil, err
	}

	ext := vol.Bounds()
	pos := vol.IndexToWorld(int(axis), idx)
	switch axis {
	case visualization.AxisX:
		ext.Min.X, ext.Max.X = pos, pos
	case visualization.AxisY:
		ext.Min.Y, ext.Max.Y = pos, pos
	default:
		ext.Min.Z, ext.Max.Z = pos, pos
	}

	return &scene.SlicePlane{
		ID:     planeNames[axis],
		Axis:   axis,
		Index:  idx,
		Extent: ext,
		Image:  img,
		Window: c.slicer.window,
	}, nil
}

// moveSlice handles a slider drag: the world position is mapped to a voxel
// index through the volume spacing and origin.
func (c *Controller) moveSlice(axis visualization.Axis, world float64) {
	if c.slicer == nil || c.mode != Slicer {
		return
	}
	idx := c.volume().WorldToIndex(int(axis), world)
	if cur := c.slicer.planes[axis]; cur != nil && cur.Index == idx {
		return
	}
	n := visualization.AxisLen(c.volume(), axis)
	if idx < 0 || idx >= n {
		return
	}
	p, err := c.slicePlane(axis, idx)
	if err != nil {
		return
	}
	c.slicer.planes[axis] = p
	c.scene.Add(p)
	c.scene.Render()
}

// SliceIndex returns the current slice index along axis.
func (c *Controller) SliceIndex(axis visualization.Axis) (int, bool) {
	if c.slicer == nil || c.slicer.planes[axis] == nil {
		return 0, false
	}
	return c.slicer.planes[axis].Index, true
}

// SliceWindow returns the color window of the slice planes.
func (c *Controller) SliceWindow() (visualization.Window, bool) {
	if c.slicer == nil {
		return visualization.Window{Lo: math.NaN(), Hi: math.NaN()}, false
	}
	return c.slicer.window, true
}

func (c *Controller) updateSlicer(clamp bool) error {
	if clamp == c.slicer.clamp && !c.volumeChanged(c.slicer.mtime) {
		return nil
	}
	if err := c.refreshSlicer(clamp); err != nil {
		return err
	}
	c.addSlicerGeometry()
	return nil
}

func (c *Controller) addSlicerGeometry() {
	w := c.slicer
	c.scene.Add(w.planes[0], w.planes[1], w.planes[2], w.box)
}

func (c *Controller) deactivateSlicer() {
	if c.slicer == nil {
		return
	}
	for _, s := range c.slicer.sliders {
		if s != nil {
			s.Off()
		}
	}
	c.scene.Remove(NameXSlice, NameYSlice, NameZSlice, NameSlicerBox)
}

func (c *Controller) dropSlicer() {
	c.deactivateSlicer()
	c.slicer = nil
}
