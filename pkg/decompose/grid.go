package decompose

import (
	"sync"

	"ctviewer/internal/models"
)

// grid is a dense label volume used as scratch space by the pipeline.
type grid struct {
	data []uint32
	dims models.Dims
}

func newGrid(d models.Dims) *grid {
	return &grid{data: make([]uint32, d.Len()), dims: d}
}

// maskGrid views the mask data as a grid. The filters never write to their
// source, so the data is shared rather than copied.
func maskGrid(m *models.Mask) *grid {
	return &grid{data: m.Data, dims: m.Dims()}
}

func (g *grid) index(x, y, z int) int {
	return z*g.dims[0]*g.dims[1] + y*g.dims[0] + x
}

// downsample keeps every r-th voxel along each axis, starting at 0.
func (g *grid) downsample(r int) *grid {
	d := models.Dims{
		(g.dims[0] + r - 1) / r,
		(g.dims[1] + r - 1) / r,
		(g.dims[2] + r - 1) / r,
	}
	out := newGrid(d)
	for z := 0; z < d[2]; z++ {
		for y := 0; y < d[1]; y++ {
			for x := 0; x < d[0]; x++ {
				out.data[out.index(x, y, z)] = g.data[g.index(x*r, y*r, z*r)]
			}
		}
	}
	return out
}

// close applies a grey-level dilation followed by an erosion.
func (g *grid) close(dilate, erode, workers int) *grid {
	return g.filter(dilate, maxOf, workers).filter(erode, minOf, workers)
}

func maxOf(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func minOf(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// filter runs a box filter of size k with the given reduction. The box is
// separable, so it is applied one axis at a time. The window of output i is
// [i-k/2, i-k/2+k-1]; positions outside the grid are ignored.
func (g *grid) filter(k int, op func(a, b uint32) uint32, workers int) *grid {
	if k <= 1 {
		return g
	}
	src := g
	for axis := 0; axis < 3; axis++ {
		dst := newGrid(g.dims)
		src.pass(dst, axis, k, op, workers)
		src = dst
	}
	return src
}

// pass filters every line along axis. Lines are split into contiguous
// chunks, one per worker; each output voxel depends only on its own line so
// the result does not depend on scheduling.
func (g *grid) pass(dst *grid, axis, k int, op func(a, b uint32) uint32, workers int) {
	w, h := g.dims[0], g.dims[1]
	n := g.dims[axis]
	stride := [3]int{1, w, w * h}[axis]
	lines := g.dims.Len() / n

	start := func(id int) int {
		switch axis {
		case 0:
			return (id%h)*w + (id/h)*w*h
		case 1:
			return id%w + (id/w)*w*h
		default:
			return id%w + (id/w)*w
		}
	}

	lo := k / 2
	hi := k - 1 - lo

	run := func(from, to int) {
		for id := from; id < to; id++ {
			base := start(id)
			for i := 0; i < n; i++ {
				a, b := i-lo, i+hi
				if a < 0 {
					a = 0
				}
				if b > n-1 {
					b = n - 1
				}
				acc := g.data[base+a*stride]
				for j := a + 1; j <= b; j++ {
					acc = op(acc, g.data[base+j*stride])
				}
				dst.data[base+i*stride] = acc
			}
		}
	}

	if workers <= 1 || lines < workers {
		run(0, lines)
		return
	}

	var wg sync.WaitGroup
	chunk := (lines + workers - 1) / workers
	for from := 0; from < lines; from += chunk {
		to := min(from+chunk, lines)
		wg.Add(1)
		go func(from, to int) {
			defer wg.Done()
			run(from, to)
		}(from, to)
	}
	wg.Wait()
}
