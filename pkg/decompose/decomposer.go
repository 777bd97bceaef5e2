// Package decompose splits a labeled segmentation mask into discrete objects,
// each with a class label, a bounding box and a label anchor.
package decompose

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gonum.org/v1/gonum/spatial/r3"

	"ctviewer/internal/logging"
	"ctviewer/internal/models"
)

// ErrEmptyMask is returned when the mask holds no foreground and the empty
// policy is EmptyNone.
var ErrEmptyMask = errors.New("mask has no foreground voxels")

var tracer = otel.Tracer("ctviewer/pkg/decompose")

// Decomposer turns masks into object lists. It holds no state between calls
// and is safe for concurrent use.
type Decomposer struct {
	opts Options
}

// New creates a Decomposer. Zero-valued options fall back to their defaults.
func New(opts Options) *Decomposer {
	return &Decomposer{opts: opts.normalized()}
}

// Options returns the effective options.
func (d *Decomposer) Options() Options {
	return d.opts
}

// component accumulates per-object statistics on the downsampled grid.
type component struct {
	count      int
	sum        r3.Vec
	min, max   [3]int
	votes      map[uint32]int
	first      uint32
	closedOnly uint32
}

// Decompose finds the objects of m. The mask is closed to merge fragments,
// downsampled by the reshape factor, labeled into connected components and
// mapped back to full-resolution voxel coordinates. ctx only carries tracing.
func (d *Decomposer) Decompose(ctx context.Context, m *models.Mask) ([]models.DetectedObject, error) {
	_, span := tracer.Start(ctx, "decompose.Decompose", trace.WithAttributes(
		attribute.Int("reshape_factor", d.opts.ReshapeFactor),
		attribute.Int("connectivity", int(d.opts.Connectivity)),
	))
	defer span.End()

	if m == nil || !m.Dims().Valid() || len(m.Data) != m.Dims().Len() {
		return nil, errors.New("decompose: invalid mask")
	}

	log := logging.Logger()
	r := d.opts.ReshapeFactor

	full := maskGrid(m)
	raw := full.downsample(r)
	closed := full.close(d.opts.DilateKernel, d.opts.ErodeKernel, d.opts.Workers).downsample(r)

	labels, n := label(closed, d.opts.Connectivity)
	span.SetAttributes(attribute.Int("objects", n))

	if n == 0 {
		return d.empty()
	}

	comps := make([]component, n)
	for i := range comps {
		comps[i].min = [3]int{1 << 30, 1 << 30, 1 << 30}
		comps[i].max = [3]int{-1, -1, -1}
		comps[i].votes = make(map[uint32]int)
	}

	dims := closed.dims
	for z := 0; z < dims[2]; z++ {
		for y := 0; y < dims[1]; y++ {
			for x := 0; x < dims[0]; x++ {
				i := closed.index(x, y, z)
				l := labels[i]
				if l == 0 {
					continue
				}
				c := &comps[l-1]
				c.count++
				c.sum = r3.Add(c.sum, r3.Vec{X: float64(x), Y: float64(y), Z: float64(z)})
				for a, v := range [3]int{x, y, z} {
					c.min[a] = min(c.min[a], v)
					c.max[a] = max(c.max[a], v)
				}
				if v := raw.data[i]; v != 0 {
					if len(c.votes) == 0 {
						c.first = v
					}
					c.votes[v]++
				} else if c.closedOnly == 0 {
					c.closedOnly = closed.data[i]
				}
			}
		}
	}

	objects := make([]models.DetectedObject, 0, n)
	for i := range comps {
		c := &comps[i]
		class := d.classOf(c)
		if len(c.votes) > 1 {
			log.Warn("object covers several mask values", "object", i+1, "values", len(c.votes), "class", class)
		}
		box := d.rescaleBox(c, m.Dims())
		centroid := r3.Scale(1/float64(c.count), c.sum)
		anchor := r3.Vec{
			X: centroid.X*float64(r) - float64(r),
			Y: centroid.Y*float64(r) - float64(r),
			Z: float64(box.ZMax) + d.opts.AnchorOffset,
		}
		objects = append(objects, models.DetectedObject{
			ID:         i + 1,
			ClassLabel: class,
			Box:        box,
			Anchor:     anchor,
		})
	}

	log.Debug("mask decomposed", "objects", len(objects), "downsampled", dims)
	return objects, nil
}

// classOf picks the class of a component according to the label policy.
func (d *Decomposer) classOf(c *component) uint32 {
	if len(c.votes) == 0 {
		return c.closedOnly
	}
	if d.opts.LabelPolicy == LabelFirst {
		return c.first
	}
	values := make([]uint32, 0, len(c.votes))
	for v := range c.votes {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	best := values[0]
	for _, v := range values[1:] {
		if c.votes[v] > c.votes[best] {
			best = v
		}
	}
	return best
}

// rescaleBox maps a downsampled extent back to full-resolution voxels. The closing
// grows objects toward +axis, so coordinates shift by one stride; the result
// is clamped to the mask.
func (d *Decomposer) rescaleBox(c *component, dims models.Dims) models.BoundingBox {
	r := d.opts.ReshapeFactor
	var lo, hi [3]int
	for a := 0; a < 3; a++ {
		lo[a] = max(c.min[a]*r-r, 0)
		hi[a] = min((c.max[a]+1)*r-r, dims[a])
		if hi[a] <= lo[a] {
			hi[a] = min(lo[a]+1, dims[a])
		}
	}
	return models.BoundingBox{
		XMin: lo[0], XMax: hi[0],
		YMin: lo[1], YMax: hi[1],
		ZMin: lo[2], ZMax: hi[2],
	}
}

// empty applies the empty policy.
func (d *Decomposer) empty() ([]models.DetectedObject, error) {
	if d.opts.EmptyPolicy == EmptyNone {
		return []models.DetectedObject{}, ErrEmptyMask
	}
	logging.Logger().Warn("mask is empty, using placeholder object")
	return []models.DetectedObject{placeholder(d.opts.AnchorOffset)}, nil
}

// placeholder is a one-voxel object of class 1 at the origin.
func placeholder(anchorOffset float64) models.DetectedObject {
	return models.DetectedObject{
		ID:         1,
		ClassLabel: 1,
		Box:        models.BoundingBox{XMax: 1, YMax: 1, ZMax: 1},
		Anchor:     r3.Vec{Z: 1 + anchorOffset},
	}
}
