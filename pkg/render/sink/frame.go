package sink

import (
	"math"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/geom"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/viewport"
)

// Option configures every sink.
type Option func(*config)

type config struct {
	padding     float64
	scale       float64
	transparent bool
	view        bool
}

func newConfig(opts []Option) config {
	c := config{padding: 24, scale: 1}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// WithPadding sets the margin around the cropped content.
func WithPadding(p float64) Option { return func(c *config) { c.padding = max(0, p) } }

// WithScale multiplies output pixels per world unit (raster sinks only).
func WithScale(s float64) Option {
	return func(c *config) {
		if s > 0 {
			c.scale = s
		}
	}
}

// WithTransparent omits the background fill.
func WithTransparent() Option { return func(c *config) { c.transparent = true } }

// WithView renders the scene as it appears on screen: viewport size, view
// transform and pan hit target included.
func WithView() Option { return func(c *config) { c.view = true } }

// frame is the resolved output geometry of one export.
type frame struct {
	width, height int
	transform     viewport.Transform
	screen        bool
}

// resolve computes output size and transform for s.
func (c config) resolve(s render.Scene, scale float64) (frame, error) {
	if c.view {
		if s.Size.W <= 0 || s.Size.H <= 0 {
			return frame{}, errors.New(errors.ErrCodeDegenerateGeometry, "scene has no viewport size")
		}
		t := s.Transform
		t.Scale *= scale
		t.X *= scale
		t.Y *= scale
		return frame{
			width:     int(math.Ceil(s.Size.W * scale)),
			height:    int(math.Ceil(s.Size.H * scale)),
			transform: t,
			screen:    true,
		}, nil
	}

	bbox, ok := s.ContentBounds()
	if !ok {
		return frame{}, errors.New(errors.ErrCodeDegenerateGeometry, "scene has no content")
	}
	box := bbox.Inset(c.padding)
	return frame{
		width:  int(math.Ceil(box.W * scale)),
		height: int(math.Ceil(box.H * scale)),
		transform: viewport.Transform{
			Scale: scale,
			X:     -box.X * scale,
			Y:     -box.Y * scale,
		},
	}, nil
}

// CropBox returns the world rectangle an export of s covers.
func CropBox(s render.Scene, opts ...Option) (geom.Rect, bool) {
	c := newConfig(opts)
	bbox, ok := s.ContentBounds()
	if !ok {
		return geom.Rect{}, false
	}
	return bbox.Inset(c.padding), true
}
