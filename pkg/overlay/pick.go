package overlay

import (
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	"ctviewer/internal/models"
)

// anchorPoint is an object anchor in the pick index.
type anchorPoint struct {
	r3.Vec
	obj int
}

func (p anchorPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(anchorPoint)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	case 2:
		return p.Z - q.Z
	default:
		panic("illegal dimension")
	}
}

func (p anchorPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance.
func (p anchorPoint) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(p.Vec, c.(anchorPoint).Vec))
}

type anchorPoints []anchorPoint

func (p anchorPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p anchorPoints) Len() int                              { return len(p) }
func (p anchorPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p anchorPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(anchorPlane{anchorPoints: p, Dim: d}, kdtree.MedianOfRandoms(anchorPlane{anchorPoints: p, Dim: d}, 100))
}

// anchorPlane sorts anchors along one dimension.
type anchorPlane struct {
	anchorPoints
	kdtree.Dim
}

func (p anchorPlane) Less(i, j int) bool {
	return p.anchorPoints[i].Compare(p.anchorPoints[j], p.Dim) < 0
}

func (p anchorPlane) Slice(start, end int) kdtree.SortSlicer {
	return anchorPlane{anchorPoints: p.anchorPoints[start:end], Dim: p.Dim}
}

func (p anchorPlane) Swap(i, j int) {
	p.anchorPoints[i], p.anchorPoints[j] = p.anchorPoints[j], p.anchorPoints[i]
}

// buildIndex indexes the anchors of objects. It returns nil for no objects.
func buildIndex(objects []models.DetectedObject) *kdtree.Tree {
	if len(objects) == 0 {
		return nil
	}
	pts := make(anchorPoints, len(objects))
	for i, o := range objects {
		pts[i] = anchorPoint{Vec: o.Anchor, obj: i}
	}
	return kdtree.New(pts, false)
}

// Pick returns the shown object whose anchor is nearest to p. With a
// positive maxDist, objects further away than maxDist are not picked. The
// index is built on the first pick after Show.
func (o *Overlay) Pick(p r3.Vec, maxDist float64) (models.DetectedObject, bool) {
	if o.index == nil {
		o.index = buildIndex(o.objects)
	}
	if o.index == nil {
		return models.DetectedObject{}, false
	}
	got, d := o.index.Nearest(anchorPoint{Vec: p})
	if got == nil || (maxDist > 0 && d > maxDist*maxDist) {
		return models.DetectedObject{}, false
	}
	return o.objects[got.(anchorPoint).obj], true
}
