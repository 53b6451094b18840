package sink

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/arbor/pkg/geom"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/theme"
)

// RenderSVG serializes the scene as a standalone SVG document.
func RenderSVG(s render.Scene, opts ...Option) ([]byte, error) {
	c := newConfig(opts)
	f, err := c.resolve(s, 1)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(f.width, f.height, `font-family="system-ui, -apple-system, sans-serif"`)
	if !c.transparent {
		canvas.Rect(0, 0, f.width, f.height, "fill:"+theme.CSS(s.Background))
	}
	canvas.Gid("tree")
	render.ReplayWith(s, f.transform, &svgSurface{canvas: canvas}, f.screen)
	canvas.Gend()
	canvas.End()
	return buf.Bytes(), nil
}

type svgSurface struct {
	canvas *svg.SVG
	id     string
	role   render.Role
	seen   map[string]bool
}

// Identify tags the next element. Multi-line labels emit several elements
// for one command id; only the first keeps the DOM id.
func (s *svgSurface) Identify(c render.Command) {
	s.id, s.role = render.ElementID(c), c.Role
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[s.id] {
		s.id = ""
	} else if s.id != "" {
		s.seen[s.id] = true
	}
}

// attrs returns the id and class attributes of the pending element and
// clears them.
func (s *svgSurface) attrs() []string {
	var out []string
	if s.id != "" {
		out = append(out, fmt.Sprintf("id=%q", s.id))
	}
	if s.role != "" {
		out = append(out, fmt.Sprintf("class=%q", s.role))
	}
	if s.role == render.RoleHitTarget {
		out = append(out, `pointer-events="all"`)
	}
	s.id, s.role = "", ""
	return out
}

func (s *svgSurface) DrawRect(r geom.Rect, st render.Style) {
	x, y := round(r.X), round(r.Y)
	w, h := round(r.W), round(r.H)
	s.canvas.Rect(x, y, w, h, append(s.attrs(), shapeStyle(st))...)
}

func (s *svgSurface) DrawCircle(c geom.Point, radius float64, st render.Style) {
	s.canvas.Circle(round(c.X), round(c.Y), max(1, round(radius)), append(s.attrs(), shapeStyle(st))...)
}

func (s *svgSurface) DrawPath(c render.Curve, st render.Style) {
	st.Fill = render.Paint{}
	s.canvas.Path(c.D(), append(s.attrs(), shapeStyle(st))...)
}

func (s *svgSurface) DrawText(at geom.Point, text string, ts render.TextStyle) {
	s.canvas.Text(round(at.X), round(at.Y), text, append(s.attrs(), textStyle(ts))...)
}

func shapeStyle(st render.Style) string {
	var b strings.Builder
	b.WriteString("fill:" + paint(st.Fill))
	if !st.Fill.None() && st.Fill.Alpha < 1 {
		fmt.Fprintf(&b, ";fill-opacity:%.3f", st.Fill.Alpha)
	}
	b.WriteString(";stroke:" + paint(st.Stroke))
	if !st.Stroke.None() {
		fmt.Fprintf(&b, ";stroke-width:%.2f", st.StrokeWidth)
		if st.Stroke.Alpha < 1 {
			fmt.Fprintf(&b, ";stroke-opacity:%.3f", st.Stroke.Alpha)
		}
	}
	return b.String()
}

func textStyle(ts render.TextStyle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "fill:%s;font-size:%.1fpx", paint(ts.Fill), ts.Size)
	if !ts.Fill.None() && ts.Fill.Alpha < 1 {
		fmt.Fprintf(&b, ";fill-opacity:%.3f", ts.Fill.Alpha)
	}
	if ts.Centered {
		b.WriteString(";text-anchor:middle")
	}
	if ts.Bold {
		b.WriteString(";font-weight:bold")
	}
	return b.String()
}

func paint(p render.Paint) string {
	if p.None() {
		return "none"
	}
	return theme.CSS(p.Color)
}

func round(v float64) int { return int(math.Round(v)) }
