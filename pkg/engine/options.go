package engine

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/layout/transform"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/theme"
	"github.com/matzehuels/arbor/pkg/viewport"
)

// Option configures an Engine.
type Option func(*settings)

type settings struct {
	logger   *log.Logger
	clock    func() time.Duration
	theme    theme.Provider
	layout   layout.Options
	passes   transform.Options
	render   render.Options
	bounds   viewport.Bounds
	padding  float64
	zoomStep float64
	fitMode  viewport.FitMode

	exportPadding     float64
	exportScale       float64
	exportTransparent bool
}

func defaults() settings {
	start := time.Now()
	return settings{
		logger:        log.Default(),
		clock:         func() time.Duration { return time.Since(start) },
		theme:         theme.Static(theme.Light),
		layout:        layout.DefaultOptions(),
		passes:        transform.DefaultOptions(),
		render:        render.DefaultOptions(),
		bounds:        viewport.DefaultBounds,
		padding:       40,
		zoomStep:      1.2,
		fitMode:       viewport.FitContent,
		exportPadding: 24,
		exportScale:   2,
	}
}

// WithLogger sets the logger. Structural no-ops log at debug, bad node
// references at warn.
func WithLogger(l *log.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces the monotonic clock that timestamps transitions.
func WithClock(now func() time.Duration) Option {
	return func(s *settings) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithTheme sets the color provider.
func WithTheme(p theme.Provider) Option {
	return func(s *settings) {
		if p != nil {
			s.theme = p
		}
	}
}

// WithLayout sets the layout options.
func WithLayout(o layout.Options) Option { return func(s *settings) { s.layout = o } }

// WithPasses sets the collision and stagger options.
func WithPasses(o transform.Options) Option { return func(s *settings) { s.passes = o } }

// WithRender sets the driver options. Its Duration and Ease also drive
// animated viewport changes.
func WithRender(o render.Options) Option { return func(s *settings) { s.render = o } }

// WithViewport sets zoom limits, fit padding and the zoom step. A step of
// 1 or less keeps the default of 1.2.
func WithViewport(b viewport.Bounds, padding, zoomStep float64) Option {
	return func(s *settings) {
		s.bounds, s.padding, s.zoomStep = b, padding, zoomStep
	}
}

// WithFitMode selects the fit used by Fit and Resize.
func WithFitMode(m viewport.FitMode) Option { return func(s *settings) { s.fitMode = m } }

// WithExport sets the crop padding and raster scale of exports.
func WithExport(padding, scale float64) Option {
	return func(s *settings) {
		s.exportPadding = padding
		if scale > 0 {
			s.exportScale = scale
		}
	}
}

// WithTransparentExport drops the background from exports.
func WithTransparentExport(on bool) Option {
	return func(s *settings) { s.exportTransparent = on }
}
