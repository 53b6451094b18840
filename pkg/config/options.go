package config

import (
	"github.com/matzehuels/arbor/pkg/anim"
	"github.com/matzehuels/arbor/pkg/engine"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/geom"
	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/layout/transform"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/theme"
	"github.com/matzehuels/arbor/pkg/viewport"
)

// LayoutOptions converts the layout section.
func (c *Config) LayoutOptions() layout.Options {
	o := layout.DefaultOptions()
	l := c.Layout
	o.NodeSize = layout.Cell{Breadth: l.NodeBreadth, Depth: l.NodeDepth}
	o.NarrowNodeSize = layout.Cell{Breadth: l.NarrowBreadth, Depth: l.NarrowDepth}
	o.NarrowBelow = l.NarrowBelow
	o.SiblingSeparation = l.SiblingSeparation
	o.CousinSeparation = l.CousinSeparation
	o.BoxWidth = l.BoxWidth
	o.InteriorExtra = l.InteriorExtra
	o.LineHeight = l.LineHeight
	o.BoxPadding = l.BoxPadding
	return o
}

// PassOptions converts the collision and stagger sections.
func (c *Config) PassOptions() transform.Options {
	return transform.Options{
		MinGap:         c.Collision.MinGap,
		StaggerBase:    c.Stagger.Base,
		StaggerStride:  c.Stagger.Stride,
		StaggerCycle:   c.Stagger.Cycle,
		MultilineExtra: c.Stagger.MultilineExtra,
	}
}

// RenderOptions converts the animation section.
func (c *Config) RenderOptions() (render.Options, error) {
	o := render.DefaultOptions()
	d, err := c.Animation.duration()
	if err != nil {
		return o, err
	}
	fn, err := anim.Ease(c.Animation.Ease)
	if err != nil {
		return o, errors.Wrap(errors.ErrCodeInvalidConfig, err, "animation.ease")
	}
	o.Duration = d
	o.Ease = fn
	o.CurveJitter = c.Animation.CurveJitter
	o.NodeRadius = c.Animation.NodeRadius
	o.FontSize = c.Animation.FontSize
	o.LinkWidth = c.Animation.LinkWidth
	o.LineHeight = c.Layout.LineHeight
	return o, nil
}

// ViewportSize returns the configured initial viewport.
func (c *Config) ViewportSize() geom.Size {
	return geom.Size{W: c.Viewport.Width, H: c.Viewport.Height}
}

// Bounds returns the zoom limits.
func (c *Config) Bounds() viewport.Bounds {
	return viewport.Bounds{Min: c.Viewport.MinScale, Max: c.Viewport.MaxScale}
}

// EngineOptions converts every section an engine reads. Callers append
// their own logger and clock options.
func (c *Config) EngineOptions() ([]engine.Option, error) {
	ro, err := c.RenderOptions()
	if err != nil {
		return nil, err
	}
	pal, err := c.Palette()
	if err != nil {
		return nil, err
	}
	return []engine.Option{
		engine.WithLayout(c.LayoutOptions()),
		engine.WithPasses(c.PassOptions()),
		engine.WithRender(ro),
		engine.WithTheme(theme.Static(pal)),
		engine.WithViewport(c.Bounds(), c.Viewport.Padding, c.Viewport.ZoomStep),
		engine.WithFitMode(viewport.FitMode(c.Viewport.Fit)),
		engine.WithExport(c.Export.Padding, c.Export.Scale),
		engine.WithTransparentExport(c.Export.Transparent),
	}, nil
}
