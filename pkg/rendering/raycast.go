package rendering

import (
	"ctviewer/pkg/scene"
	"ctviewer/pkg/visualization"
)

// histogramBins is the bin count of the ray-cast corner histogram.
const histogramBins = 50

var (
	compositeOpacity  = [3]float64{0.1, 0.4, 1.0}
	projectionOpacity = [3]float64{0.75, 0.75, 0.9}
)

// sliderCorners are the screen corners of the three opacity sliders.
var sliderCorners = [3][2][2]float64{
	{{0.80, 0.1}, {0.80, 0.26}},
	{{0.85, 0.1}, {0.85, 0.26}},
	{{0.90, 0.1}, {0.90, 0.26}},
}

type rayCastWidgets struct {
	sliders [3]scene.Slider
	values  [3]float64
	hist    *scene.Histogram
	mtime   uint64
}

func defaultOpacity(blend scene.BlendMode) [3]float64 {
	if blend == scene.BlendComposite {
		return compositeOpacity
	}
	return projectionOpacity
}

func (c *Controller) activateRayCast(blend scene.BlendMode) error {
	if c.rayCast == nil {
		c.buildRayCast()
	} else {
		for _, s := range c.rayCast.sliders {
			s.On()
		}
		if c.volumeChanged(c.rayCast.mtime) {
			c.rayCast.hist.Hist = visualization.NewHistogram(c.volume().Data, histogramBins)
			c.rayCast.mtime = c.volume().MTime
		}
	}
	c.showVolume()
	c.updateRayCast(blend)
	c.scene.Add(c.rayCast.hist)
	return nil
}

// refreshRayCast rebuilds the histogram and the transfer function for a
// replaced volume, keeping the slider values.
func (c *Controller) refreshRayCast() {
	if c.volumeChanged(c.rayCast.mtime) {
		c.rayCast.hist.Hist = visualization.NewHistogram(c.volume().Data, histogramBins)
		c.rayCast.mtime = c.volume().MTime
		c.scene.Add(c.rayCast.hist)
	}
	c.applyOpacity()
}

func (c *Controller) buildRayCast() {
	w := &rayCastWidgets{
		hist: &scene.Histogram{
			ID:       NameHistogram,
			Hist:     visualization.NewHistogram(c.volume().Data, histogramBins),
			LogScale: true,
		},
		mtime: c.volume().MTime,
	}
	for i := range w.sliders {
		i := i
		spec := scene.SliderSpec{
			Min:     0,
			Max:     1,
			Corners: sliderCorners[i],
			Color:   c.opts.Bands[i].Color,
			OnChange: func(v float64) {
				w.values[i] = v
				c.applyOpacity()
				c.scene.Render()
			},
		}
		if i == 2 {
			spec.Title = "Opacity levels"
		}
		w.sliders[i] = c.scene.AddSlider(spec)
	}
	c.rayCast = w
}

// updateRayCast sets the blend mode and resets the opacity sliders to the
// defaults of that blend mode.
func (c *Controller) updateRayCast(blend scene.BlendMode) {
	c.volumeActor.Blend = blend
	c.volumeActor.Alpha = append([]float64(nil), c.opts.Alpha...)
	c.rayCast.values = defaultOpacity(blend)
	for i, s := range c.rayCast.sliders {
		s.SetValue(c.rayCast.values[i])
	}
	c.rayCastColors()
	c.applyOpacity()
}

// applyOpacity rebuilds the opacity transfer function from the sliders.
func (c *Controller) applyOpacity() {
	if c.rayCast == nil {
		return
	}
	lo, hi := c.volume().ScalarRange()
	v := c.rayCast.values
	b := c.opts.Bands
	c.volumeActor.Opacity = []scene.OpacityPoint{
		{Value: lo, Alpha: 0},
		{Value: lo + (hi-lo)*0.1, Alpha: 0},
		{Value: b[0].Threshold, Alpha: v[0]},
		{Value: b[1].Threshold, Alpha: v[1]},
		{Value: b[2].Threshold, Alpha: v[2]},
	}
}

func (c *Controller) rayCastColors() {
	colors := make([]scene.ColorPoint, 0, len(c.opts.Bands))
	for _, b := range c.opts.Bands {
		colors = append(colors, scene.ColorPoint{Value: b.Threshold, Color: b.Color})
	}
	c.volumeActor.Colors = colors
}

func (c *Controller) deactivateRayCast() {
	if c.rayCast == nil {
		return
	}
	for _, s := range c.rayCast.sliders {
		if s != nil {
			s.Off()
		}
	}
	c.scene.Remove(NameHistogram)
	c.hideVolume()
}

// dropRayCast forgets the cached ray-cast widgets.
func (c *Controller) dropRayCast() {
	if c.rayCast == nil {
		return
	}
	for _, s := range c.rayCast.sliders {
		if s != nil {
			s.Off()
		}
	}
	c.scene.Remove(NameHistogram)
	c.rayCast = nil
}
