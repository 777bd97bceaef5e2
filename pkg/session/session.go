// Package session ties the viewer together: it loads files into the volume
// store, decomposes masks, drives the render modes and keeps the detection
// overlay in sync.
package session

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gonum.org/v1/gonum/spatial/r3"

	"ctviewer/internal/logging"
	"ctviewer/internal/models"
	"ctviewer/pkg/config"
	"ctviewer/pkg/decompose"
	"ctviewer/pkg/overlay"
	"ctviewer/pkg/reader"
	"ctviewer/pkg/rendering"
	"ctviewer/pkg/scene"
	"ctviewer/pkg/volume"
)

var tracer = otel.Tracer("ctviewer/pkg/session")

// Session is one viewer instance. It is not safe for concurrent use.
type Session struct {
	cfg        *config.Config
	store      *volume.Store
	scene      scene.Scene
	controller *rendering.Controller
	overlay    *overlay.Overlay
	decomposer *decompose.Decomposer
	reader     *reader.Reader
}

// New creates a session drawing into sc with an empty volume.
func New(cfg *config.Config, sc scene.Scene) *Session {
	store := volume.NewStore()
	dec := decompose.New(decompose.OptionsFromConfig(cfg))
	return &Session{
		cfg:        cfg,
		store:      store,
		scene:      sc,
		controller: rendering.NewController(store, sc, rendering.OptionsFromConfig(cfg)),
		overlay:    overlay.New(sc, overlay.OptionsFromConfig(cfg)),
		decomposer: dec,
		reader:     reader.New(dec, cfg.Reader.Extensions),
	}
}

// Store returns the volume store.
func (s *Session) Store() *volume.Store { return s.store }

// Controller returns the render mode controller.
func (s *Session) Controller() *rendering.Controller { return s.controller }

// Overlay returns the detection overlay.
func (s *Session) Overlay() *overlay.Overlay { return s.overlay }

// Config returns the active configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// Load reads path and shows it. Projections replace the view and switch to
// the projection mode; masks and detection files replace the overlay;
// volumes replace the intensity data and fall back to ray casting when no
// mode is active.
func (s *Session) Load(ctx context.Context, path string) (err error) {
	ctx, span := tracer.Start(ctx, "session.Load", trace.WithAttributes(attribute.String("path", path)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	res, err := s.reader.Read(path)
	if err != nil {
		return errors.Wrapf(err, "load %s", path)
	}
	span.SetAttributes(
		attribute.Bool("mask", res.Properties.IsMask),
		attribute.Bool("projection", res.Properties.IsProjection),
	)

	switch {
	case res.Properties.IsMask:
		err = s.loadMask(ctx, res)
	case res.Properties.IsProjection:
		err = s.loadProjection(res)
	default:
		err = s.loadVolume(res)
	}
	if err != nil {
		return errors.Wrapf(err, "load %s", path)
	}

	s.controller.RefreshAxes()
	s.scene.Render()
	return nil
}

func (s *Session) loadProjection(res *reader.Result) error {
	s.overlay.Clear()
	s.store.ClearMask()
	s.controller.HideMask()

	p := res.Properties
	if err := s.store.SetVolume(res.Volume, res.Dims, p.Spacing, p.Origin); err != nil {
		return err
	}
	if s.controller.IsActive(rendering.ProjectionView) {
		return s.controller.Refresh()
	}
	return s.controller.ProjectionView()
}

func (s *Session) loadVolume(res *reader.Result) error {
	p := res.Properties
	if err := s.store.SetVolume(res.Volume, res.Dims, p.Spacing, p.Origin); err != nil {
		return err
	}

	log := logging.Logger()
	if s.controller.IsActive(rendering.ProjectionView) {
		s.controller.Quit()
	}
	if s.controller.Active() != rendering.NoMode {
		if err := s.controller.Refresh(); err != nil {
			log.Info("active mode cannot show the new volume", "error", err)
		}
	}
	if s.controller.Active() == rendering.NoMode {
		if err := s.controller.RayCast(int(scene.BlendMaxIntensity)); err != nil {
			log.Info("volume loaded without a render mode", "error", err)
		}
	}
	return nil
}

func (s *Session) loadMask(ctx context.Context, res *reader.Result) error {
	s.overlay.Clear()
	if err := s.store.SetMask(res.Mask, res.Dims); err != nil {
		return err
	}
	s.controller.ShowMask()

	objects := res.Properties.Objects
	if len(objects) == 0 {
		var err error
		objects, err = s.decomposer.Decompose(ctx, s.store.Mask())
		if errors.Is(err, decompose.ErrEmptyMask) {
			logging.Logger().Info("mask has no detections")
			return nil
		}
		if err != nil {
			return err
		}
	}

	s.overlay.Show(objects)
	logging.Logger().Info("detections shown", "objects", len(objects))
	return nil
}

// CleanView quits the active mode and resets everything to the empty view.
func (s *Session) CleanView() {
	s.controller.Quit()
	s.overlay.Clear()
	s.store.Reset()
	s.controller.HideMask()
	s.controller.DeleteAxes()
	s.scene.Render()
}

// DeleteMask removes the mask and its overlay, keeping the volume.
func (s *Session) DeleteMask() {
	s.overlay.Clear()
	s.store.ClearMask()
	s.controller.HideMask()
	if s.controller.Active() == rendering.NoMode {
		s.controller.DeleteAxes()
	}
	s.scene.Render()
}

// PickDetection returns the shown detection whose label anchor is nearest to
// p, within the configured pick radius, and the text of its flag.
func (s *Session) PickDetection(p r3.Vec) (models.DetectedObject, string, bool) {
	obj, ok := s.overlay.Pick(p, s.cfg.Overlay.PickRadius)
	if !ok {
		logging.Logger().Debug("no detection picked", "point", p)
		return models.DetectedObject{}, "", false
	}
	return obj, s.overlay.Label(obj), true
}

// UpdateUserConfig applies a new configuration to the running session.
func (s *Session) UpdateUserConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "update config")
	}
	s.cfg = cfg
	s.decomposer = decompose.New(decompose.OptionsFromConfig(cfg))
	s.reader = reader.New(s.decomposer, cfg.Reader.Extensions)
	s.controller.SetOptions(rendering.OptionsFromConfig(cfg))
	s.overlay.SetOptions(overlay.OptionsFromConfig(cfg))
	logging.Logger().Info("configuration updated")
	return nil
}

// Close tears down every primitive the session created.
func (s *Session) Close() {
	s.overlay.Clear()
	s.controller.Close()
}
