package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"ctviewer/internal/models"
)

func TestRenderWithObjects(t *testing.T) {
	out := Render(Summary{
		Mode:   "slicer",
		Volume: models.Dims{100, 100, 50},
		Range:  [2]float64{0, 4095},
		Objects: []models.DetectedObject{
			{ID: 1, ClassLabel: 2, Box: models.BoundingBox{XMin: 8, XMax: 32, YMin: 8, YMax: 32, ZMin: 8, ZMax: 32}, Anchor: r3.Vec{X: 18, Y: 18, Z: 36}},
		},
		Labels:     []string{"Explosive"},
		Primitives: []string{"Volume", "XSlice"},
	})

	assert.Contains(t, out, "slicer")
	assert.Contains(t, out, "100 x 100 x 50")
	assert.Contains(t, out, "Explosive")
	assert.Contains(t, out, "[8:32, 8:32, 8:32]")
	assert.Contains(t, out, "(18.0, 18.0, 36.0)")
}

func TestRenderEmpty(t *testing.T) {
	out := Render(Summary{Mode: "none", Volume: models.Dims{1, 1, 1}})
	assert.Contains(t, out, "no detections")
}
