package rendering

import (
	"github.com/pkg/errors"

	"ctviewer/pkg/scene"
	"ctviewer/pkg/visualization"
)

type projectionWidgets struct {
	image *scene.Image
	mtime uint64
}

func (c *Controller) activateProjection() error {
	if c.projection == nil || c.volumeChanged(c.projection.mtime) {
		img, err := c.projectionImage()
		if err != nil {
			return err
		}
		c.projection = &projectionWidgets{image: img, mtime: c.volume().MTime}
	}
	c.volumeActor.Visible = false
	c.scene.Add(c.projection.image)
	c.scene.ResetCamera()
	return nil
}

func (c *Controller) projectionImage() (*scene.Image, error) {
	vol := c.volume()
	lo, hi := vol.ScalarRange()
	pix, err := visualization.ProjectionImage(vol, c.opts.ProjectionSize, visualization.Window{Lo: lo, Hi: hi})
	if err != nil {
		return nil, errors.Wrap(err, "build projection image")
	}
	return &scene.Image{ID: NameProjection, Pix: pix}, nil
}

// updateProjection rebuilds the image when the volume was replaced while
// the projection was shown.
func (c *Controller) updateProjection() error {
	if !c.volumeChanged(c.projection.mtime) {
		return nil
	}
	img, err := c.projectionImage()
	if err != nil {
		return err
	}
	c.projection.image = img
	c.projection.mtime = c.volume().MTime
	c.scene.Add(img)
	c.scene.ResetCamera()
	return nil
}

func (c *Controller) deactivateProjection() {
	c.scene.Remove(NameProjection)
	c.volumeActor.Visible = true
}
