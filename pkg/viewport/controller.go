package viewport

import "github.com/matzehuels/arbor/pkg/geom"

// FitMode selects how the controller fits content after a resize.
type FitMode string

const (
	FitContent FitMode = "content"
	FitWidth   FitMode = "width"
)

// Controller holds the transform of one viewport together with its size
// and limits. Every method that can fail leaves the transform untouched and
// reports false.
type Controller struct {
	size     geom.Size
	bounds   Bounds
	padding  float64
	zoomStep float64
	current  Transform
}

// NewController creates a controller at the identity transform.
func NewController(size geom.Size, bounds Bounds, padding, zoomStep float64) *Controller {
	if zoomStep <= 1 {
		zoomStep = 1.2
	}
	return &Controller{size: size, bounds: bounds, padding: padding, zoomStep: zoomStep, current: Identity}
}

// Transform returns the current transform.
func (c *Controller) Transform() Transform { return c.current }

// Set replaces the transform, clamping its scale.
func (c *Controller) Set(t Transform) {
	t.Scale = c.bounds.Clamp(t.Scale)
	c.current = t
}

// Size returns the viewport size.
func (c *Controller) Size() geom.Size { return c.size }

// Resize changes the viewport size without moving the content.
func (c *Controller) Resize(size geom.Size) { c.size = size }

// Bounds returns the zoom limits.
func (c *Controller) Bounds() Bounds { return c.bounds }

// Padding returns the fit padding.
func (c *Controller) Padding() float64 { return c.padding }

// ZoomStep returns the factor applied by one zoom step, always above 1.
func (c *Controller) ZoomStep() float64 { return c.zoomStep }

// Fit computes the target for a fit in the given mode.
func (c *Controller) Fit(bbox geom.Rect, mode FitMode) (Transform, bool) {
	if mode == FitWidth {
		return FitToWidth(bbox, c.size, c.current, c.bounds)
	}
	return FitToContent(bbox, c.size, c.padding, c.bounds)
}

// Reset computes the default transform for bbox.
func (c *Controller) Reset(bbox geom.Rect) (Transform, bool) {
	return Reset(bbox, c.size, c.padding, c.bounds)
}

// Center computes a translation that centers bbox.
func (c *Controller) Center(bbox geom.Rect) (Transform, bool) {
	return Center(bbox, c.size, c.current)
}

// CenterOn computes a translation that centers a world point.
func (c *Controller) CenterOn(p geom.Point) (Transform, bool) {
	return CenterOn(p, c.size, c.current)
}

// ZoomIn computes one zoom step in.
func (c *Controller) ZoomIn() (Transform, bool) {
	return ZoomBy(c.current, c.zoomStep, c.size, c.bounds)
}

// ZoomOut computes one zoom step out.
func (c *Controller) ZoomOut() (Transform, bool) {
	return ZoomBy(c.current, 1/c.zoomStep, c.size, c.bounds)
}

// PanBy moves the view immediately.
func (c *Controller) PanBy(dx, dy float64) {
	c.current = PanBy(c.current, dx, dy)
}

// HitTarget returns the full-viewport pan rectangle.
func (c *Controller) HitTarget() geom.Rect { return HitTarget(c.size) }

// Visible returns the world-space rectangle currently on screen.
func (c *Controller) Visible() geom.Rect {
	tl := c.current.Invert(geom.Point{})
	br := c.current.Invert(geom.Point{X: c.size.W, Y: c.size.H})
	return geom.Rect{X: tl.X, Y: tl.Y, W: br.X - tl.X, H: br.Y - tl.Y}
}

// Drag pans by the pointer movement from one screen point to another.
func (c *Controller) Drag(from, to geom.Point) {
	d := to.Sub(from)
	c.PanBy(d.X, d.Y)
}

// Apply maps a world point to the screen through the current transform.
func (c *Controller) Apply(p geom.Point) geom.Point { return c.current.Apply(p) }

// Invert maps a screen point to world space, e.g. to find the node under
// the pointer.
func (c *Controller) Invert(p geom.Point) geom.Point { return c.current.Invert(p) }
