package decompose

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"ctviewer/internal/logging"
	"ctviewer/internal/models"
)

// Limits on the mask built from detection records. Records beyond them are
// rejected instead of allocated.
const (
	maxRegionAxis   = 1 << 16
	maxRegionVoxels = 1 << 30
)

// RegionError reports a malformed detection record.
type RegionError struct {
	Index  int
	Field  string
	Reason string
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("detection %d: %s %s", e.Index, e.Field, e.Reason)
}

// FromRegions builds objects from pre-labeled detections instead of a mask.
// Each region's box is [base, base+extent); its bitmap, when present, is
// OR-ed into a shared mask sized to cover every region. Overlapping regions
// produce value 1, never a sum.
func (d *Decomposer) FromRegions(regions []models.Region) ([]models.DetectedObject, *models.Mask, error) {
	dims := models.Dims{1, 1, 1}
	for i, reg := range regions {
		if err := validateRegion(i, reg); err != nil {
			return nil, nil, err
		}
		dims[0] = max(dims[0], reg.Base.X+reg.Extent.X)
		dims[1] = max(dims[1], reg.Base.Y+reg.Extent.Y)
		dims[2] = max(dims[2], reg.Base.Z+reg.Extent.Z)
		if dims.Len() > maxRegionVoxels {
			return nil, nil, &RegionError{
				Index:  i,
				Field:  "extent",
				Reason: fmt.Sprintf("grows the mask past %d voxels", maxRegionVoxels),
			}
		}
	}

	mask := models.NewMask(dims)
	objects := make([]models.DetectedObject, 0, len(regions))

	for i, reg := range regions {
		b, e := *reg.Base, *reg.Extent
		if len(reg.Bitmap) > 0 {
			k := 0
			for z := 0; z < e.Z; z++ {
				for y := 0; y < e.Y; y++ {
					for x := 0; x < e.X; x++ {
						if reg.Bitmap[k] != 0 {
							mask.Data[mask.Index(b.X+x, b.Y+y, b.Z+z)] = 1
						}
						k++
					}
				}
			}
		}

		objects = append(objects, models.DetectedObject{
			ID:          i + 1,
			ClassLabel:  1,
			Description: reg.Description,
			Box: models.BoundingBox{
				XMin: b.X, XMax: b.X + e.X,
				YMin: b.Y, YMax: b.Y + e.Y,
				ZMin: b.Z, ZMax: b.Z + e.Z,
			},
			Anchor: r3.Vec{
				X: float64(b.X) + float64(e.X)/2,
				Y: float64(b.Y) + float64(e.Y)/2,
				Z: float64(b.Z+e.Z) + d.opts.AnchorOffset,
			},
		})
	}

	if mask.Empty() && d.opts.EmptyPolicy == EmptyPlaceholder {
		logging.Logger().Warn("detections carry no bitmap voxels, using placeholder voxel")
		mask.Data[0] = 1
	}

	if len(objects) == 0 {
		objs, err := d.empty()
		return objs, mask, err
	}
	return objects, mask, nil
}

func validateRegion(i int, reg models.Region) error {
	switch {
	case reg.Base == nil:
		return &RegionError{Index: i, Field: "base", Reason: "is missing"}
	case reg.Extent == nil:
		return &RegionError{Index: i, Field: "extent", Reason: "is missing"}
	case reg.Base.X < 0 || reg.Base.Y < 0 || reg.Base.Z < 0:
		return &RegionError{Index: i, Field: "base", Reason: "is negative"}
	case reg.Extent.X < 0 || reg.Extent.Y < 0 || reg.Extent.Z < 0:
		return &RegionError{Index: i, Field: "extent", Reason: "is negative"}
	case reg.Base.X > maxRegionAxis || reg.Base.Y > maxRegionAxis || reg.Base.Z > maxRegionAxis:
		return &RegionError{Index: i, Field: "base", Reason: fmt.Sprintf("exceeds %d", maxRegionAxis)}
	case reg.Extent.X > maxRegionAxis || reg.Extent.Y > maxRegionAxis || reg.Extent.Z > maxRegionAxis:
		return &RegionError{Index: i, Field: "extent", Reason: fmt.Sprintf("exceeds %d", maxRegionAxis)}
	}
	if n := reg.Extent.X * reg.Extent.Y * reg.Extent.Z; len(reg.Bitmap) > 0 && len(reg.Bitmap) != n {
		return &RegionError{
			Index:  i,
			Field:  "bitmap",
			Reason: fmt.Sprintf("has %d values, extent needs %d", len(reg.Bitmap), n),
		}
	}
	return nil
}
