// Package viewport maps laid-out world coordinates onto the screen.
//
// A [Transform] is a uniform scale followed by a translation:
//
//	screen = world*Scale + (X, Y)
//
// The fit and zoom functions are pure: they take the current transform and
// return a new one. A false second result marks degenerate input (an empty
// bounding box, a zero-sized viewport, a non-positive factor); callers keep
// their previous transform in that case. Nothing here triggers a relayout.
package viewport

import (
	"math"

	"github.com/matzehuels/arbor/pkg/geom"
)

// Transform is a uniform scale plus translation.
type Transform struct {
	Scale float64 `json:"scale"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Identity is the transform that maps world to screen unchanged.
var Identity = Transform{Scale: 1}

// Apply maps a world point to the screen.
func (t Transform) Apply(p geom.Point) geom.Point {
	return geom.Point{X: p.X*t.Scale + t.X, Y: p.Y*t.Scale + t.Y}
}

// ApplyRect maps a world rectangle to the screen.
func (t Transform) ApplyRect(r geom.Rect) geom.Rect {
	o := t.Apply(geom.Point{X: r.X, Y: r.Y})
	return geom.Rect{X: o.X, Y: o.Y, W: r.W * t.Scale, H: r.H * t.Scale}
}

// Invert maps a screen point back to world space.
func (t Transform) Invert(p geom.Point) geom.Point {
	return geom.Point{X: (p.X - t.X) / t.Scale, Y: (p.Y - t.Y) / t.Scale}
}

// Lerp interpolates every component; f=1 yields u exactly.
func (t Transform) Lerp(u Transform, f float64) Transform {
	if f >= 1 {
		return u
	}
	return Transform{
		Scale: t.Scale + (u.Scale-t.Scale)*f,
		X:     t.X + (u.X-t.X)*f,
		Y:     t.Y + (u.Y-t.Y)*f,
	}
}

// Bounds limits the scale of a transform.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultBounds is the zoom range used when none is configured.
var DefaultBounds = Bounds{Min: 0.4, Max: 2.5}

// Clamp restricts s to [Min, Max].
func (b Bounds) Clamp(s float64) float64 {
	return math.Max(b.Min, math.Min(b.Max, s))
}

func validViewport(vp geom.Size) bool {
	return vp.W > 0 && vp.H > 0 && !math.IsInf(vp.W, 0) && !math.IsInf(vp.H, 0)
}

func validRect(r geom.Rect) bool {
	for _, v := range [...]float64{r.X, r.Y, r.W, r.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.W >= 0 && r.H >= 0
}

// FitToContent scales the content box to fill the viewport minus padding on
// every side and centers it:
//
//	scale = clamp(min((Vw-2P)/W, (Vh-2P)/H))
//
// A box without area on either axis is degenerate and reports false.
func FitToContent(bbox geom.Rect, vp geom.Size, padding float64, b Bounds) (Transform, bool) {
	if bbox.Degenerate() || !validViewport(vp) {
		return Transform{}, false
	}
	availW, availH := vp.W-2*padding, vp.H-2*padding
	if availW <= 0 || availH <= 0 {
		return Transform{}, false
	}

	scale := math.Min(availW/bbox.W, availH/bbox.H)
	scale = b.Clamp(scale)
	return centerAt(bbox.Center(), scale, vp), true
}

// FitToWidth keeps the scale at 1 (clamped) and recenters horizontally. The
// vertical translation of current is preserved.
func FitToWidth(bbox geom.Rect, vp geom.Size, current Transform, b Bounds) (Transform, bool) {
	if !validRect(bbox) || !validViewport(vp) {
		return Transform{}, false
	}
	scale := b.Clamp(1)
	return Transform{
		Scale: scale,
		X:     vp.W/2 - bbox.Center().X*scale,
		Y:     current.Y,
	}, true
}

// Center translates so the content center lands on the viewport center,
// keeping the current scale.
func Center(bbox geom.Rect, vp geom.Size, current Transform) (Transform, bool) {
	if !validRect(bbox) {
		return Transform{}, false
	}
	return CenterOn(bbox.Center(), vp, current)
}

// CenterOn translates so the world point p lands on the viewport center,
// keeping the current scale.
func CenterOn(p geom.Point, vp geom.Size, current Transform) (Transform, bool) {
	if !validViewport(vp) || math.IsNaN(p.X) || math.IsNaN(p.Y) || current.Scale <= 0 {
		return Transform{}, false
	}
	return centerAt(p, current.Scale, vp), true
}

// Reset returns scale 1 (clamped) with the content centered horizontally
// and its top edge aligned to the padding.
func Reset(bbox geom.Rect, vp geom.Size, padding float64, b Bounds) (Transform, bool) {
	if !validRect(bbox) || !validViewport(vp) {
		return Transform{}, false
	}
	scale := b.Clamp(1)
	return Transform{
		Scale: scale,
		X:     vp.W/2 - bbox.Center().X*scale,
		Y:     padding - bbox.Y*scale,
	}, true
}

// ZoomBy multiplies the scale by factor about the viewport center, so the
// world point under the center stays put. The result is clamped.
func ZoomBy(current Transform, factor float64, vp geom.Size, b Bounds) (Transform, bool) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) || !validViewport(vp) || current.Scale <= 0 {
		return Transform{}, false
	}
	c := geom.Point{X: vp.W / 2, Y: vp.H / 2}
	anchor := current.Invert(c)
	scale := b.Clamp(current.Scale * factor)
	return Transform{
		Scale: scale,
		X:     c.X - anchor.X*scale,
		Y:     c.Y - anchor.Y*scale,
	}, true
}

// PanBy translates by a screen-space delta.
func PanBy(current Transform, dx, dy float64) Transform {
	current.X += dx
	current.Y += dy
	return current
}

// HitTarget is the screen-space rectangle that must receive pointer input
// for dragging anywhere in the viewport to pan.
func HitTarget(vp geom.Size) geom.Rect {
	return geom.Rect{W: vp.W, H: vp.H}
}

func centerAt(p geom.Point, scale float64, vp geom.Size) Transform {
	return Transform{
		Scale: scale,
		X:     vp.W/2 - p.X*scale,
		Y:     vp.H/2 - p.Y*scale,
	}
}
