package viewport

import (
	"math"
	"testing"

	"github.com/matzehuels/arbor/pkg/geom"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestFitToContent(t *testing.T) {
	tests := []struct {
		name      string
		bbox      geom.Rect
		vp        geom.Size
		padding   float64
		wantScale float64
	}{
		{"width bound", geom.Rect{X: -100, Y: 0, W: 400, H: 100}, geom.Size{W: 440, H: 440}, 20, 1.0},
		{"height bound", geom.Rect{X: 0, Y: 0, W: 100, H: 400}, geom.Size{W: 840, H: 440}, 20, 1.0},
		{"clamped up", geom.Rect{W: 10, H: 10}, geom.Size{W: 1000, H: 1000}, 0, DefaultBounds.Max},
		{"clamped down", geom.Rect{W: 10000, H: 10000}, geom.Size{W: 100, H: 100}, 0, DefaultBounds.Min},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FitToContent(tt.bbox, tt.vp, tt.padding, DefaultBounds)
			if !ok {
				t.Fatal("FitToContent() reported degenerate input")
			}
			if !near(got.Scale, tt.wantScale) {
				t.Errorf("Scale = %v, want %v", got.Scale, tt.wantScale)
			}
			center := got.Apply(tt.bbox.Center())
			if !near(center.X, tt.vp.W/2) || !near(center.Y, tt.vp.H/2) {
				t.Errorf("content center maps to %v, want viewport center", center)
			}
		})
	}
}

func TestFitToContentFormula(t *testing.T) {
	bbox := geom.Rect{X: 3, Y: 7, W: 300, H: 200}
	vp := geom.Size{W: 500, H: 300}
	const p = 10
	got, _ := FitToContent(bbox, vp, p, Bounds{Min: 0.01, Max: 100})
	want := math.Min((vp.W-2*p)/bbox.W, (vp.H-2*p)/bbox.H)
	if !near(got.Scale, want) {
		t.Errorf("Scale = %v, want %v", got.Scale, want)
	}
}

func TestDegenerateInputs(t *testing.T) {
	vp := geom.Size{W: 800, H: 600}
	cur := Transform{Scale: 1.5, X: 3, Y: 4}

	if _, ok := FitToContent(geom.Rect{}, vp, 10, DefaultBounds); ok {
		t.Error("FitToContent(zero bbox) ok = true")
	}
	for _, flat := range []geom.Rect{{W: 200}, {H: 200}} {
		if _, ok := FitToContent(flat, vp, 10, DefaultBounds); ok {
			t.Errorf("FitToContent(%v) ok = true, want degenerate", flat)
		}
	}
	if _, ok := FitToContent(geom.Rect{W: 10, H: 10}, geom.Size{}, 0, DefaultBounds); ok {
		t.Error("FitToContent(zero viewport) ok = true")
	}
	if _, ok := FitToContent(geom.Rect{W: 10, H: 10}, geom.Size{W: 10, H: 10}, 10, DefaultBounds); ok {
		t.Error("FitToContent(padding exceeds viewport) ok = true")
	}
	if _, ok := FitToContent(geom.Rect{W: math.NaN(), H: 1}, vp, 0, DefaultBounds); ok {
		t.Error("FitToContent(NaN) ok = true")
	}
	if _, ok := ZoomBy(cur, 0, vp, DefaultBounds); ok {
		t.Error("ZoomBy(0) ok = true")
	}
	if _, ok := CenterOn(geom.Point{X: math.NaN()}, vp, cur); ok {
		t.Error("CenterOn(NaN) ok = true")
	}
}

func TestFitToWidth(t *testing.T) {
	bbox := geom.Rect{X: -50, Y: 0, W: 2000, H: 900}
	vp := geom.Size{W: 800, H: 600}
	cur := Transform{Scale: 0.5, X: 10, Y: 42}

	got, ok := FitToWidth(bbox, vp, cur, DefaultBounds)
	if !ok {
		t.Fatal("FitToWidth() ok = false")
	}
	if got.Scale != 1 {
		t.Errorf("Scale = %v, want 1", got.Scale)
	}
	if got.Y != cur.Y {
		t.Errorf("Y = %v, want unchanged %v", got.Y, cur.Y)
	}
	if c := got.Apply(bbox.Center()); !near(c.X, vp.W/2) {
		t.Errorf("horizontal center = %v, want %v", c.X, vp.W/2)
	}
}

func TestCenterKeepsScale(t *testing.T) {
	bbox := geom.Rect{X: 100, Y: 100, W: 50, H: 50}
	vp := geom.Size{W: 400, H: 400}
	cur := Transform{Scale: 2, X: -999, Y: 999}

	got, ok := Center(bbox, vp, cur)
	if !ok {
		t.Fatal("Center() ok = false")
	}
	if got.Scale != 2 {
		t.Errorf("Scale = %v, want 2", got.Scale)
	}
	c := got.Apply(bbox.Center())
	if !near(c.X, 200) || !near(c.Y, 200) {
		t.Errorf("center maps to %v, want (200, 200)", c)
	}
}

func TestZoomByKeepsViewportCenter(t *testing.T) {
	vp := geom.Size{W: 800, H: 600}
	cur := Transform{Scale: 1, X: 120, Y: -40}
	anchor := cur.Invert(geom.Point{X: 400, Y: 300})

	got, ok := ZoomBy(cur, 1.5, vp, DefaultBounds)
	if !ok {
		t.Fatal("ZoomBy() ok = false")
	}
	if !near(got.Scale, 1.5) {
		t.Errorf("Scale = %v, want 1.5", got.Scale)
	}
	p := got.Apply(anchor)
	if !near(p.X, 400) || !near(p.Y, 300) {
		t.Errorf("anchor moved to %v", p)
	}
}

func TestZoomByClamps(t *testing.T) {
	vp := geom.Size{W: 100, H: 100}
	cur := Identity
	for range 20 {
		cur, _ = ZoomBy(cur, 1.5, vp, DefaultBounds)
	}
	if cur.Scale != DefaultBounds.Max {
		t.Errorf("Scale = %v, want %v", cur.Scale, DefaultBounds.Max)
	}
	for range 40 {
		cur, _ = ZoomBy(cur, 0.5, vp, DefaultBounds)
	}
	if cur.Scale != DefaultBounds.Min {
		t.Errorf("Scale = %v, want %v", cur.Scale, DefaultBounds.Min)
	}
}

func TestReset(t *testing.T) {
	bbox := geom.Rect{X: -200, Y: -10, W: 400, H: 300}
	got, ok := Reset(bbox, geom.Size{W: 1000, H: 800}, 24, DefaultBounds)
	if !ok {
		t.Fatal("Reset() ok = false")
	}
	if got.Scale != 1 {
		t.Errorf("Scale = %v, want 1", got.Scale)
	}
	top := got.Apply(geom.Point{X: bbox.Center().X, Y: bbox.Y})
	if !near(top.X, 500) || !near(top.Y, 24) {
		t.Errorf("top center maps to %v, want (500, 24)", top)
	}
}

func TestApplyInvert(t *testing.T) {
	tr := Transform{Scale: 1.75, X: -12, Y: 33}
	p := geom.Point{X: 42, Y: -7}
	back := tr.Invert(tr.Apply(p))
	if !near(back.X, p.X) || !near(back.Y, p.Y) {
		t.Errorf("Invert(Apply(p)) = %v, want %v", back, p)
	}
}

func TestController(t *testing.T) {
	c := NewController(geom.Size{W: 800, H: 600}, DefaultBounds, 20, 0)
	c.Set(Transform{Scale: 10})
	if c.Transform().Scale != DefaultBounds.Max {
		t.Errorf("Set() did not clamp: %v", c.Transform().Scale)
	}

	before := c.Transform()
	if _, ok := c.Fit(geom.Rect{}, FitContent); ok {
		t.Error("Fit(empty) ok = true")
	}
	if c.Transform() != before {
		t.Error("failed fit changed the transform")
	}

	c.Set(Identity)
	c.PanBy(5, -5)
	if got := c.Transform(); got.X != 5 || got.Y != -5 {
		t.Errorf("PanBy() = %v", got)
	}

	in, _ := c.ZoomIn()
	if !near(in.Scale, 1.2) {
		t.Errorf("ZoomIn scale = %v, want 1.2", in.Scale)
	}
	if hit := c.HitTarget(); hit != (geom.Rect{W: 800, H: 600}) {
		t.Errorf("HitTarget() = %v", hit)
	}
}

func TestControllerDrag(t *testing.T) {
	c := NewController(geom.Size{W: 800, H: 600}, DefaultBounds, 20, 0)
	c.Set(Transform{Scale: 2})
	world := geom.Point{X: 10, Y: 10}
	grab := c.Apply(world)

	c.Drag(grab, grab.Add(geom.Point{X: 30, Y: -12}))
	if got := c.Transform(); got.X != 30 || got.Y != -12 || got.Scale != 2 {
		t.Errorf("Drag() transform = %+v, want {2 30 -12}", got)
	}
	if got := c.Invert(c.Apply(world)); !near(got.X, world.X) || !near(got.Y, world.Y) {
		t.Errorf("Invert(Apply()) = %v, want %v", got, world)
	}
}
