package rendering

import (
	"image/color"

	"github.com/pkg/errors"

	"ctviewer/internal/logging"
	"ctviewer/internal/models"
	"ctviewer/pkg/scene"
	"ctviewer/pkg/volume"
)

// Controller owns the active render mode. It is the only place that knows
// which mode is active; the modes themselves are plain widget sets built and
// torn down by the controller.
//
// A Controller is not safe for concurrent use.
type Controller struct {
	store *volume.Store
	scene scene.Scene
	opts  Options

	mode      Mode
	axesStyle int

	volumeActor *scene.VolumeActor
	maskActor   *scene.MaskActor

	// cached widget sets, built on first activation and reused afterwards
	rayCast    *rayCastWidgets
	iso        *isoWidgets
	slicer     *slicerWidgets
	projection *projectionWidgets
}

// NewController creates a controller drawing the volume and mask of store
// into sc. It starts in NoMode.
func NewController(store *volume.Store, sc scene.Scene, opts Options) *Controller {
	return &Controller{
		store:     store,
		scene:     sc,
		opts:      opts,
		axesStyle: opts.AxesStyle,
		volumeActor: &scene.VolumeActor{
			ID:      NameVolume,
			Volume:  store.Volume(),
			Blend:   scene.BlendMaxIntensity,
			Alpha:   append([]float64(nil), opts.Alpha...),
			Visible: true,
		},
		maskActor: &scene.MaskActor{
			ID:      NameMask,
			Mask:    store.Mask(),
			Visible: true,
		},
	}
}

// Active returns the active mode.
func (c *Controller) Active() Mode {
	return c.mode
}

// IsActive reports whether m is the active mode.
func (c *Controller) IsActive(m Mode) bool {
	return m != NoMode && c.mode == m
}

// VolumeActor returns the actor drawing the intensity volume.
func (c *Controller) VolumeActor() *scene.VolumeActor {
	return c.volumeActor
}

// Options returns the current options.
func (c *Controller) Options() Options {
	return c.opts
}

// SetOptions applies new user options. Widgets of the active mode pick the
// new bands and ramp up immediately; cached widgets of inactive modes are
// rebuilt on their next activation.
func (c *Controller) SetOptions(opts Options) {
	c.opts = opts
	c.volumeActor.Alpha = append([]float64(nil), opts.Alpha...)
	c.rayCastColors()
	if c.mode != RayCast {
		c.dropRayCast()
	}
	if c.mode != IsoSurface {
		c.dropIso()
	}
	if c.mode == RayCast {
		for i, sl := range c.rayCast.sliders {
			sl.SetColor(opts.Bands[i].Color)
		}
		c.applyOpacity()
	}
	if !c.store.Mask().Empty() {
		c.ShowMask()
	}
	c.scene.Render()
}

// RayCast activates ray casting with the given blend mode: 0 composite,
// 1 maximum intensity, 2 minimum intensity, 3 average, 4 additive.
func (c *Controller) RayCast(blend int) error {
	if blend < 0 || blend > 4 {
		return c.refuse(RayCast, errors.Wrapf(ErrInvalidBlendMode, "got %d", blend))
	}
	return c.switchTo(RayCast, func() error {
		c.updateRayCast(scene.BlendMode(blend))
		return nil
	}, func() error {
		return c.activateRayCast(scene.BlendMode(blend))
	})
}

// IsoSurface activates isosurface browsing at the configured isovalue, or at
// a third of the scalar range when none is configured. If the mode is
// already active the current isovalue is kept.
func (c *Controller) IsoSurface() error {
	return c.switchTo(IsoSurface, func() error {
		return nil
	}, func() error {
		return c.activateIso(nil)
	})
}

// IsoSurfaceAt activates isosurface browsing at value.
func (c *Controller) IsoSurfaceAt(value float64) error {
	return c.switchTo(IsoSurface, func() error {
		c.setIsoValue(value)
		return nil
	}, func() error {
		return c.activateIso(&value)
	})
}

// Slicer activates the three orthogonal slice planes. With clamp set the
// color window is narrowed around the log-histogram mean.
func (c *Controller) Slicer(clamp bool) error {
	return c.switchTo(Slicer, func() error {
		return c.updateSlicer(clamp)
	}, func() error {
		return c.activateSlicer(clamp)
	})
}

// ProjectionView shows the volume as a flat 2D image.
func (c *Controller) ProjectionView() error {
	return c.switchTo(ProjectionView, func() error {
		return c.updateProjection()
	}, func() error {
		return c.activateProjection()
	})
}

// Refresh brings the active mode up to date after the volume was replaced
// in place. If the new volume cannot be shown in the active mode, the mode
// is quit and the refusal returned.
func (c *Controller) Refresh() error {
	m := c.mode
	if m == NoMode {
		return nil
	}
	if err := c.check(m); err != nil {
		c.Quit()
		return c.refuse(m, err)
	}

	var err error
	switch m {
	case RayCast:
		c.refreshRayCast()
	case IsoSurface:
		c.refreshIso()
	case Slicer:
		err = c.updateSlicer(c.slicer.clamp)
	case ProjectionView:
		err = c.updateProjection()
	}
	if err != nil {
		c.Quit()
		return err
	}

	switch m {
	case RayCast, IsoSurface:
		c.showVolume()
	case Slicer:
		c.showVolume()
		c.hideVolume()
	}
	c.RefreshAxes()
	c.scene.Render()
	return nil
}

// Quit deactivates the active mode.
func (c *Controller) Quit() {
	if c.mode == NoMode {
		return
	}
	c.deactivate()
	c.scene.Render()
}

// Close quits the active mode and removes every primitive and widget the
// controller created.
func (c *Controller) Close() {
	c.deactivate()
	c.dropRayCast()
	c.dropIso()
	c.dropSlicer()
	c.projection = nil
	c.scene.Remove(NameVolume, NameMask, NameAxes)
	c.scene.Render()
}

// switchTo runs a transition. Requesting the active mode calls update;
// otherwise the target geometry is checked, the current mode is torn down
// and activate builds the target. A refused request leaves the current mode
// untouched; a failure after teardown leaves NoMode.
func (c *Controller) switchTo(target Mode, update, activate func() error) error {
	if err := c.check(target); err != nil {
		return c.refuse(target, err)
	}

	log := logging.Logger()

	if c.mode == target {
		if err := update(); err != nil {
			log.Error("updating render mode failed", "mode", target, "error", err)
			return err
		}
		c.scene.Render()
		return nil
	}

	from := c.mode
	c.deactivate()

	if err := activate(); err != nil {
		c.mode = target
		c.deactivate()
		log.Error("activating render mode failed", "mode", target, "error", err)
		c.scene.Render()
		return err
	}
	c.mode = target

	c.RefreshAxes()
	c.scene.Render()
	log.Info("render mode switched", "from", from, "to", target)
	return nil
}

func (c *Controller) refuse(target Mode, err error) error {
	logging.Logger().Info("render mode refused", "mode", target, "active", c.mode, "reason", err)
	return err
}

// check validates the current volume for target.
func (c *Controller) check(target Mode) error {
	vol := c.store.Volume()
	switch target {
	case RayCast, Slicer:
		if vol.Depth < 3 {
			return errors.Wrapf(ErrVolumeTooThin, "%d samples along z", vol.Depth)
		}
	case IsoSurface:
		if vol.Depth < 3 {
			return errors.Wrapf(ErrVolumeTooThin, "%d samples along z", vol.Depth)
		}
		if lo, hi := vol.ScalarRange(); hi == lo {
			return errors.Wrapf(ErrFlatScalarRange, "range [%g, %g]", lo, hi)
		}
	case ProjectionView:
		if !vol.Dims().Valid() || len(vol.Data) != vol.Dims().Len() {
			return errors.New("no volume loaded")
		}
	}
	return nil
}

// deactivate tears down the active mode and leaves NoMode. Sliders are
// hidden, never destroyed.
func (c *Controller) deactivate() {
	switch c.mode {
	case RayCast:
		c.deactivateRayCast()
	case IsoSurface:
		c.deactivateIso()
	case Slicer:
		c.deactivateSlicer()
	case ProjectionView:
		c.deactivateProjection()
	}
	if c.mode != NoMode {
		logging.Logger().Debug("render mode deactivated", "mode", c.mode)
	}
	c.mode = NoMode
}

// showVolume puts the volume actor into the scene.
func (c *Controller) showVolume() {
	c.volumeActor.Volume = c.store.Volume()
	c.volumeActor.Visible = true
	c.scene.Add(c.volumeActor)
}

// hideVolume zeroes the volume opacity. The actor stays in the scene.
func (c *Controller) hideVolume() {
	if c.rayCast != nil {
		c.rayCast.values = [3]float64{}
		for _, s := range c.rayCast.sliders {
			s.SetValue(0)
		}
	}
	lo, hi := c.store.Volume().ScalarRange()
	c.volumeActor.Opacity = []scene.OpacityPoint{{Value: lo}, {Value: hi}}
}

// ShowMask adds the mask actor, styled by class, or removes it when the
// mask is empty.
func (c *Controller) ShowMask() {
	m := c.store.Mask()
	if m.Empty() {
		c.scene.Remove(NameMask)
		return
	}
	c.maskActor.Mask = m
	c.maskActor.Colors = make(map[uint32]color.Color, len(c.opts.Classes))
	c.maskActor.Alpha = make(map[uint32]float64, len(c.opts.Classes))
	for id, st := range c.opts.Classes {
		c.maskActor.Colors[id] = st.Color
		c.maskActor.Alpha[id] = st.Alpha
	}
	c.maskActor.Visible = true
	c.scene.Add(c.maskActor)
}

// HideMask removes the mask actor.
func (c *Controller) HideMask() {
	c.scene.Remove(NameMask)
}

// volumeChanged reports whether the volume was replaced after mtime.
func (c *Controller) volumeChanged(mtime uint64) bool {
	return c.store.Volume().MTime != mtime
}

func (c *Controller) volume() *models.Volume {
	return c.store.Volume()
}
