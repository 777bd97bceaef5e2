// Package overlay draws detected objects as wireframe boxes with floating
// labels.
package overlay

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	"ctviewer/internal/logging"
	"ctviewer/internal/models"
	"ctviewer/pkg/config"
	"ctviewer/pkg/scene"
)

// Options configures an Overlay.
type Options struct {
	// Flags maps class ids to label text
	Flags map[uint32]string

	// FlagOffset is the vector from an anchor to the top of its flagpost
	FlagOffset r3.Vec

	// DefaultLabel is used for classes missing from Flags
	DefaultLabel string
}

// OptionsFromConfig builds Options from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	off := cfg.Overlay.FlagOffset
	return Options{
		Flags:        cfg.ClassFlags(),
		FlagOffset:   r3.Vec{X: off[0], Y: off[1], Z: off[2]},
		DefaultLabel: cfg.Overlay.DefaultLabel,
	}
}

// Overlay owns the box and flag primitives of the last Show call.
type Overlay struct {
	scene   scene.Scene
	opts    Options
	objects []models.DetectedObject
	names   []string
	index   *kdtree.Tree
}

// New creates an empty overlay drawing into sc.
func New(sc scene.Scene, opts Options) *Overlay {
	if opts.DefaultLabel == "" {
		opts.DefaultLabel = "Threat"
	}
	return &Overlay{scene: sc, opts: opts}
}

// SetOptions replaces the label table and flag offset. Objects already shown
// are redrawn.
func (o *Overlay) SetOptions(opts Options) {
	if opts.DefaultLabel == "" {
		opts.DefaultLabel = o.opts.DefaultLabel
	}
	o.opts = opts
	if len(o.objects) > 0 {
		o.Show(o.objects)
	}
}

// Show replaces the current overlay with one box and one flag per object.
func (o *Overlay) Show(objects []models.DetectedObject) {
	shown := append([]models.DetectedObject(nil), objects...)
	o.Clear()

	for i, obj := range shown {
		box := &scene.Box{
			ID:        fmt.Sprintf("DetectionBox-%d", i+1),
			Extent:    obj.Box.Box(),
			Color:     color.Black,
			Alpha:     1,
			Wireframe: true,
		}
		flag := &scene.Flagpost{
			ID:    fmt.Sprintf("DetectionFlag-%d", i+1),
			Text:  o.Label(obj),
			Base:  obj.Anchor,
			Top:   r3.Add(obj.Anchor, o.opts.FlagOffset),
			Color: color.Black,
		}
		o.scene.Add(box, flag)
		o.names = append(o.names, box.ID, flag.ID)
	}
	o.objects = shown
	o.index = nil

	logging.Logger().Debug("overlay shown", "objects", len(shown))
	o.scene.Render()
}

// Label resolves the text shown for obj: its own description, else the
// class flag, else the default label.
func (o *Overlay) Label(obj models.DetectedObject) string {
	if obj.Description != "" {
		return obj.Description
	}
	if flag, ok := o.opts.Flags[obj.ClassLabel]; ok && flag != "" {
		return flag
	}
	return o.opts.DefaultLabel
}

// Clear removes every primitive added by Show. Clearing an empty overlay
// does nothing.
func (o *Overlay) Clear() {
	if len(o.names) == 0 {
		return
	}
	o.scene.Remove(o.names...)
	o.names = nil
	o.objects = nil
	o.index = nil
	o.scene.Render()
}

// Objects returns the objects currently shown.
func (o *Overlay) Objects() []models.DetectedObject {
	return o.objects
}
