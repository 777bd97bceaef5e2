package rendering

import (
	"ctviewer/pkg/scene"
)

type isoWidgets struct {
	slider scene.Slider
	value  float64
	mtime  uint64
}

// isoRange returns the slider range and the default isovalue for the
// current volume.
func (c *Controller) isoRange() (lo, hi, def float64) {
	smin, smax := c.volume().ScalarRange()
	delta := smax - smin
	def = smin + delta/3
	if c.opts.IsoValue != nil {
		def = *c.opts.IsoValue
	}
	return smin + 0.02*delta, smax - 0.02*delta, def
}

func (c *Controller) activateIso(value *float64) error {
	lo, hi, def := c.isoRange()
	if value != nil {
		def = *value
	}

	switch {
	case c.iso == nil:
		w := &isoWidgets{value: def, mtime: c.volume().MTime}
		w.slider = c.scene.AddSlider(scene.SliderSpec{
			Title:     "scalar value",
			Min:       lo,
			Max:       hi,
			Value:     def,
			Pos:       c.opts.SliderPos,
			ShowValue: true,
			Delayed:   c.opts.Delayed,
			OnChange: func(v float64) {
				w.value = v
				c.volumeActor.IsoValue = v
				c.scene.Render()
			},
		})
		c.iso = w
	case c.volumeChanged(c.iso.mtime):
		c.iso.slider.SetRange(lo, hi)
		c.iso.value = def
		c.iso.mtime = c.volume().MTime
		c.iso.slider.On()
	default:
		if value != nil {
			c.iso.value = *value
		}
		c.iso.slider.On()
	}

	c.showVolume()
	c.volumeActor.Blend = scene.BlendIsoSurface
	c.volumeActor.Alpha = []float64{1}
	c.setIsoValue(c.iso.value)
	return nil
}

// refreshIso resets the slider range and the isovalue for a replaced volume.
func (c *Controller) refreshIso() {
	if !c.volumeChanged(c.iso.mtime) {
		return
	}
	lo, hi, def := c.isoRange()
	c.iso.slider.SetRange(lo, hi)
	c.iso.mtime = c.volume().MTime
	c.setIsoValue(def)
}

func (c *Controller) setIsoValue(v float64) {
	c.iso.value = v
	c.iso.slider.SetValue(v)
	c.volumeActor.IsoValue = v
}

// IsoValue returns the current isovalue and whether the isosurface widgets
// exist.
func (c *Controller) IsoValue() (float64, bool) {
	if c.iso == nil {
		return 0, false
	}
	return c.iso.value, true
}

func (c *Controller) deactivateIso() {
	if c.iso == nil {
		return
	}
	c.iso.slider.Off()
}

func (c *Controller) dropIso() {
	if c.iso == nil {
		return
	}
	c.iso.slider.Off()
	c.iso = nil
}
