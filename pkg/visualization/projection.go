package visualization

import (
	"image"

	"golang.org/x/image/draw"

	"ctviewer/internal/models"
)

// ProjectionImage renders the z=0 plane of vol as a flat 2D image, scaled to
// fit inside a size x size viewport while keeping its aspect ratio. A size of
// zero keeps the native resolution.
func ProjectionImage(vol *models.Volume, size int, w Window) (*image.Gray16, error) {
	src, err := ExtractSlice(vol, AxisZ, 0, w)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return src, nil
	}

	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()
	dw, dh := size, size
	if sw > sh {
		dh = max(1, size*sh/sw)
	} else if sh > sw {
		dw = max(1, size*sw/sh)
	}

	dst := image.NewGray16(image.Rect(0, 0, dw, dh))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}
