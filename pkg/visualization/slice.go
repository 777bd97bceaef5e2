package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	"ctviewer/internal/models"
)

// Axis identifies one of the three volume axes
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// ParseAxis converts "x", "y" or "z" (any case) into an Axis.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("invalid axis: %s (must be x, y, or z)", s)
}

// AxisLen returns the number of samples of vol along a.
func AxisLen(vol *models.Volume, a Axis) int {
	return vol.Dims()[a]
}

// Window maps intensities into [0, 1] using a linear ramp between Lo and Hi.
// Values outside the window are clamped.
type Window struct {
	Lo, Hi float64
}

func (w Window) gray(v float64) uint16 {
	if w.Hi <= w.Lo {
		if v > w.Lo {
			return 65535
		}
		return 0
	}
	t := (v - w.Lo) / (w.Hi - w.Lo)
	return uint16(math.Max(0, math.Min(65535, t*65535)))
}

// ExtractSlice extracts a 2D slice from the volume perpendicular to axis.
//
// The X slice is laid out as (z, y), the Y slice as (x, z) and the Z slice as
// (x, y), matching the orientation of the slice planes in the 3D view.
func ExtractSlice(vol *models.Volume, axis Axis, position int, w Window) (*image.Gray16, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}
	n := AxisLen(vol, axis)
	if position >= n {
		return nil, fmt.Errorf("position %d exceeds %s size %d", position, axis, n)
	}

	var img *image.Gray16

	switch axis {
	case AxisX:
		img = image.NewGray16(image.Rect(0, 0, vol.Depth, vol.Height))
		for y := 0; y < vol.Height; y++ {
			for z := 0; z < vol.Depth; z++ {
				img.SetGray16(z, y, color.Gray16{Y: w.gray(vol.At(position, y, z))})
			}
		}

	case AxisY:
		img = image.NewGray16(image.Rect(0, 0, vol.Width, vol.Depth))
		for z := 0; z < vol.Depth; z++ {
			for x := 0; x < vol.Width; x++ {
				img.SetGray16(x, z, color.Gray16{Y: w.gray(vol.At(x, position, z))})
			}
		}

	case AxisZ:
		img = image.NewGray16(image.Rect(0, 0, vol.Width, vol.Height))
		for y := 0; y < vol.Height; y++ {
			for x := 0; x < vol.Width; x++ {
				img.SetGray16(x, y, color.Gray16{Y: w.gray(vol.At(x, y, position))})
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s", axis)
	}

	return img, nil
}

// SaveSlice saves an extracted slice as a JPEG image
func SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveSliceSequence extracts and saves every slice along axis into outputDir.
func SaveSliceSequence(vol *models.Volume, axis Axis, w Window, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for pos := 0; pos < AxisLen(vol, axis); pos++ {
		img, err := ExtractSlice(vol, axis, pos, w)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.jpg", axis, pos))
		if err := SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
