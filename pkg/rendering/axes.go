package rendering

import (
	"ctviewer/internal/logging"
	"ctviewer/pkg/scene"
)

// RefreshAxes removes the axes and rebuilds them against the current
// visible bounds. Nothing is drawn when the scene has no visible extent.
func (c *Controller) RefreshAxes() {
	c.scene.Remove(NameAxes)
	b, ok := c.scene.VisibleBounds()
	if !ok {
		return
	}
	c.scene.Add(&scene.Axes{ID: NameAxes, Extent: b, Style: c.axesStyle})
}

// DeleteAxes removes the axes.
func (c *Controller) DeleteAxes() {
	c.scene.Remove(NameAxes)
}

// AxesStyle returns the current axes style.
func (c *Controller) AxesStyle() int {
	return c.axesStyle
}

// SwitchAxes moves to the next axes style, wrapping after the last one, and
// redraws the axes.
func (c *Controller) SwitchAxes() int {
	c.axesStyle = (c.axesStyle + 1) % AxesStyles
	logging.Logger().Debug("axes style switched", "style", c.axesStyle)
	c.RefreshAxes()
	c.scene.Render()
	return c.axesStyle
}
