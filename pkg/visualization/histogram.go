package visualization

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Histogram is a binned count of scalar values.
type Histogram struct {
	// Edges has len(Counts)+1 entries; bin i covers [Edges[i], Edges[i+1]).
	// The last bin is closed on the right.
	Edges  []float64
	Counts []float64
}

// NewHistogram bins data into n equal-width bins spanning its range.
func NewHistogram(data []float64, n int) Histogram {
	if n < 1 {
		n = 1
	}
	h := Histogram{
		Edges:  make([]float64, n+1),
		Counts: make([]float64, n),
	}
	if len(data) == 0 {
		return h
	}

	lo, hi := floats.Min(data), floats.Max(data)
	if hi == lo {
		hi = lo + 1
	}
	floats.Span(h.Edges, lo, hi)

	width := (hi - lo) / float64(n)
	for _, v := range data {
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		h.Counts[i]++
	}
	return h
}

// LogCounts returns log(count+1) for every bin.
func (h Histogram) LogCounts() []float64 {
	out := make([]float64, len(h.Counts))
	for i, c := range h.Counts {
		out[i] = math.Log(c + 1)
	}
	return out
}

// LogMean returns the mean of the lower bin edges weighted by the log counts.
func (h Histogram) LogMean() float64 {
	weights := h.LogCounts()
	if floats.Sum(weights) == 0 {
		return h.Edges[0]
	}
	return stat.Mean(h.Edges[:len(h.Edges)-1], weights)
}

// ClampRange narrows [rmin, rmax] around the log-histogram mean so that
// intensity tails (bone, metal) do not dominate the color map. The upper
// bound is clamped first and the lower bound uses the clamped upper bound.
func ClampRange(data []float64, rmin, rmax float64) (float64, float64) {
	meanlog := NewHistogram(data, 20).LogMean()
	rmax = math.Min(rmax, meanlog+(meanlog-rmin)*0.9)
	rmin = math.Max(rmin, meanlog-(rmax-meanlog)*0.9)
	return rmin, rmax
}
