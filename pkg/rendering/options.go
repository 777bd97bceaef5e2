package rendering

import (
	"image/color"

	"ctviewer/pkg/config"
	"ctviewer/pkg/scene"
)

// Band is one ray-cast transfer function band.
type Band struct {
	Threshold float64
	Color     color.Color
}

// ClassStyle is how one mask value is drawn.
type ClassStyle struct {
	Color color.Color
	Alpha float64
}

// Options configures a Controller
type Options struct {
	// Bands are the low, mid and high opacity bands
	Bands [3]Band

	// Alpha is the base opacity ramp of the volume
	Alpha []float64

	// IsoValue overrides the initial isosurface value when set
	IsoValue *float64

	SliderPos int
	Delayed   bool

	// ProjectionSize is the longest side of the projection image in pixels
	ProjectionSize int

	// AxesStyle is the initial axes style
	AxesStyle int

	// Classes styles the mask actor by mask value
	Classes map[uint32]ClassStyle
}

// DefaultOptions returns the options matching config.DefaultConfig.
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultConfig())
}

// OptionsFromConfig builds Options from the rendering and mask class
// sections of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	r := cfg.Rendering
	o := Options{
		Alpha:          append([]float64(nil), r.Alpha...),
		SliderPos:      r.SliderPos,
		Delayed:        r.Delayed,
		ProjectionSize: r.ProjectionSize,
		AxesStyle:      r.AxesStyle,
		Classes:        make(map[uint32]ClassStyle, len(cfg.MaskClasses)),
	}
	if r.IsoValue != nil {
		v := *r.IsoValue
		o.IsoValue = &v
	}
	for i := 0; i < 3 && i < len(r.OGB); i++ {
		o.Bands[i] = Band{Threshold: r.OGB[i].Threshold, Color: scene.NamedColor(r.OGB[i].Color)}
	}
	for _, mc := range cfg.MaskClasses {
		c, ok := scene.ParseColor(mc.Name)
		if !ok {
			c = scene.NamedColor(classPalette[int(mc.ID)%len(classPalette)])
		}
		o.Classes[mc.ID] = ClassStyle{Color: c, Alpha: mc.Alpha}
	}
	if o.ProjectionSize <= 0 {
		o.ProjectionSize = 800
	}
	o.AxesStyle = ((o.AxesStyle % AxesStyles) + AxesStyles) % AxesStyles
	return o
}

// classPalette colors mask classes whose name is not a color.
var classPalette = []string{"black", "red", "yellow", "cyan", "purple", "orange", "green", "blue"}
