package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"ctviewer/internal/models"
	"ctviewer/pkg/config"
	"ctviewer/pkg/scene"
)

// countingScene counts Remove calls on top of a Recorder.
type countingScene struct {
	*scene.Recorder
	removes int
}

func (c *countingScene) Remove(names ...string) {
	c.removes++
	c.Recorder.Remove(names...)
}

func testObjects() []models.DetectedObject {
	return []models.DetectedObject{
		{ID: 1, ClassLabel: 2, Box: models.BoundingBox{XMax: 4, YMax: 4, ZMax: 4}, Anchor: r3.Vec{X: 2, Y: 2, Z: 8}},
		{ID: 2, ClassLabel: 99, Box: models.BoundingBox{XMin: 10, XMax: 12, YMin: 10, YMax: 12, ZMin: 10, ZMax: 12}, Anchor: r3.Vec{X: 11, Y: 11, Z: 16}},
		{ID: 3, ClassLabel: 2, Description: "Scissors"},
	}
}

func TestShow(t *testing.T) {
	rec := scene.NewRecorder(nil)
	o := New(rec, OptionsFromConfig(config.DefaultConfig()))

	o.Show(testObjects())
	assert.Len(t, rec.Names(), 6)
	assert.Len(t, o.Objects(), 3)

	p, ok := rec.Get("DetectionFlag-1")
	require.True(t, ok)
	flag := p.(*scene.Flagpost)
	assert.Equal(t, "Explosive", flag.Text)
	assert.Equal(t, r3.Vec{X: 2, Y: 2, Z: 68}, flag.Top)

	p, _ = rec.Get("DetectionFlag-2")
	assert.Equal(t, "Threat", p.(*scene.Flagpost).Text)
	p, _ = rec.Get("DetectionFlag-3")
	assert.Equal(t, "Scissors", p.(*scene.Flagpost).Text)

	p, _ = rec.Get("DetectionBox-2")
	box := p.(*scene.Box)
	assert.True(t, box.Wireframe)
	assert.Equal(t, r3.Vec{X: 12, Y: 12, Z: 12}, box.Extent.Max)
}

func TestShowReplacesPrevious(t *testing.T) {
	rec := scene.NewRecorder(nil)
	o := New(rec, Options{})

	o.Show(testObjects())
	o.Show(testObjects()[:1])
	assert.Equal(t, []string{"DetectionBox-1", "DetectionFlag-1"}, rec.Names())

	o.Show(o.Objects())
	assert.Len(t, rec.Names(), 2)
}

func TestClearIdempotent(t *testing.T) {
	cs := &countingScene{Recorder: scene.NewRecorder(nil)}
	o := New(cs, Options{})

	o.Clear()
	assert.Equal(t, 0, cs.removes)

	o.Show(testObjects())
	o.Clear()
	assert.Equal(t, 1, cs.removes)
	assert.Empty(t, cs.Names())

	o.Clear()
	assert.Equal(t, 1, cs.removes)
	assert.Empty(t, o.Objects())
}

func TestSetOptionsRedraws(t *testing.T) {
	rec := scene.NewRecorder(nil)
	o := New(rec, Options{})
	o.Show(testObjects()[:1])

	p, _ := rec.Get("DetectionFlag-1")
	assert.Equal(t, "Threat", p.(*scene.Flagpost).Text)

	o.SetOptions(Options{Flags: map[uint32]string{2: "Liquid"}})
	p, _ = rec.Get("DetectionFlag-1")
	assert.Equal(t, "Liquid", p.(*scene.Flagpost).Text)
}

func TestPick(t *testing.T) {
	o := New(scene.NewRecorder(nil), Options{})
	_, ok := o.Pick(r3.Vec{}, 0)
	assert.False(t, ok)

	o.Show(testObjects())
	got, ok := o.Pick(r3.Vec{X: 10, Y: 10, Z: 15}, 0)
	require.True(t, ok)
	assert.Equal(t, 2, got.ID)

	got, ok = o.Pick(r3.Vec{X: 1, Y: 1, Z: 1}, 2)
	require.True(t, ok)
	assert.Equal(t, 3, got.ID)

	_, ok = o.Pick(r3.Vec{X: 100, Y: 100, Z: 100}, 5)
	assert.False(t, ok)

	moved := testObjects()[:1]
	moved[0].Anchor = r3.Vec{X: 100, Y: 100, Z: 100}
	o.Show(moved)
	got, ok = o.Pick(r3.Vec{X: 100, Y: 100, Z: 100}, 5)
	require.True(t, ok)
	assert.Equal(t, moved[0].ID, got.ID)

	o.Clear()
	_, ok = o.Pick(r3.Vec{}, 0)
	assert.False(t, ok)
}
