package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"ctviewer/internal/logging"
	"ctviewer/internal/report"
	"ctviewer/internal/tracing"
	"ctviewer/pkg/config"
	"ctviewer/pkg/rendering"
	"ctviewer/pkg/scene"
	"ctviewer/pkg/session"
	"ctviewer/pkg/visualization"
)

// options holds the parsed command line.
type options struct {
	configPath     string
	volumePath     string
	maskPath       string
	detectionsPath string
	modeName       string
	blend          int
	clamp          bool
	iso            float64
	dark           bool
	slicesDir      string
	pick           string
}

func main() {
	// Parse command line arguments
	var opts options
	flag.StringVar(&opts.configPath, "config", "ctviewer.yaml", "Configuration file (defaults are used if it does not exist)")
	initConfig := flag.String("init-config", "", "Write a default configuration file to this path and exit")
	flag.StringVar(&opts.volumePath, "volume", "", "Volume file (.mhd/.mha)")
	flag.StringVar(&opts.maskPath, "mask", "", "Mask file (.mhd/.mha)")
	flag.StringVar(&opts.detectionsPath, "detections", "", "Detection records (.yaml/.yml/.json)")
	flag.StringVar(&opts.modeName, "mode", "raycast", "Render mode: raycast, iso, slicer, projection")
	flag.IntVar(&opts.blend, "blend", 1, "Ray-cast blend mode: 0 composite, 1 max, 2 min, 3 average, 4 additive")
	flag.BoolVar(&opts.clamp, "clamp", false, "Clamp the slicer color range around the log-histogram mean")
	flag.Float64Var(&opts.iso, "iso", 0, "Isosurface value (0 derives it from the scalar range)")
	flag.BoolVar(&opts.dark, "dark", false, "Use a dark scene background")
	flag.StringVar(&opts.slicesDir, "slices-dir", "", "Directory to save slices along all axes")
	flag.StringVar(&opts.pick, "pick", "", "Report the detection nearest to this x,y,z point")
	flag.Parse()

	if *initConfig != "" {
		if err := config.CreateDefaultConfigFile(*initConfig); err != nil {
			log.Fatalf("Failed to write default configuration: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", *initConfig)
		return
	}

	if opts.volumePath == "" && opts.maskPath == "" && opts.detectionsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

// run loads the inputs, activates the requested mode and prints the report.
func run(opts options) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}

	logging.SetLogger(logging.New(os.Stderr, cfg.Logging.Format, cfg.Logging.Level))
	logger := logging.Logger()

	ctx := context.Background()
	shutdown, err := tracing.Setup(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)
	if err != nil {
		return errors.Wrap(err, "set up tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	mode, err := rendering.ParseMode(opts.modeName)
	if err != nil {
		return errors.Wrap(err, "invalid mode")
	}

	var pickAt *r3.Vec
	if opts.pick != "" {
		p, err := parsePoint(opts.pick)
		if err != nil {
			return err
		}
		pickAt = &p
	}

	var bg color.Color = color.White
	if opts.dark {
		bg = color.Black
	}
	rec := scene.NewRecorder(bg)
	sess := session.New(cfg, rec)
	defer sess.Close()

	// Volume first so that masks take its spacing and origin
	for _, path := range []string{opts.volumePath, opts.maskPath, opts.detectionsPath} {
		if path == "" {
			continue
		}
		if err := sess.Load(ctx, path); err != nil {
			return errors.Wrapf(err, "load %s", path)
		}
	}

	ctrl := sess.Controller()
	switch mode {
	case rendering.RayCast:
		err = ctrl.RayCast(opts.blend)
	case rendering.IsoSurface:
		if opts.iso != 0 {
			err = ctrl.IsoSurfaceAt(opts.iso)
		} else {
			err = ctrl.IsoSurface()
		}
	case rendering.Slicer:
		err = ctrl.Slicer(opts.clamp)
	case rendering.ProjectionView:
		err = ctrl.ProjectionView()
	case rendering.NoMode:
		ctrl.Quit()
	}
	if err != nil {
		logger.Warn("render mode not activated", "mode", mode, "error", err)
	}

	vol := sess.Store().Volume()
	lo, hi := vol.ScalarRange()
	objects := sess.Overlay().Objects()
	labels := make([]string, len(objects))
	for i, o := range objects {
		labels[i] = sess.Overlay().Label(o)
	}
	fmt.Print(report.Render(report.Summary{
		Mode:       ctrl.Active().String(),
		Volume:     vol.Dims(),
		Range:      [2]float64{lo, hi},
		Objects:    objects,
		Labels:     labels,
		Primitives: rec.Names(),
		Sliders:    rec.Sliders(),
	}))

	// Extract and save slices if requested
	if opts.slicesDir != "" && !sess.Store().IsEmpty() {
		w := visualization.Window{Lo: lo, Hi: hi}
		for _, axis := range []visualization.Axis{visualization.AxisX, visualization.AxisY, visualization.AxisZ} {
			axisDir := filepath.Join(opts.slicesDir, axis.String())
			fmt.Printf("Saving %s-axis slices to: %s\n", axis, axisDir)
			if err := visualization.SaveSliceSequence(vol, axis, w, axisDir); err != nil {
				log.Printf("Warning: Failed to save %s-axis slices: %v", axis, err)
			}
		}
	}

	if pickAt != nil {
		if obj, label, ok := sess.PickDetection(*pickAt); ok {
			fmt.Printf("Nearest detection to %s: #%d %s %s\n", opts.pick, obj.ID, label, obj.Box)
		} else {
			fmt.Printf("No detection near %s\n", opts.pick)
		}
	}
	return nil
}

// parsePoint parses "x,y,z" into a point.
func parsePoint(s string) (r3.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return r3.Vec{}, errors.Errorf("point %q must be x,y,z", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return r3.Vec{}, errors.Wrapf(err, "parse point %q", s)
		}
		v[i] = f
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}
