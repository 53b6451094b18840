package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/arbor/pkg/geom"
	"github.com/matzehuels/arbor/pkg/tree"
	"github.com/matzehuels/arbor/pkg/viewport"
)

// Kind is the primitive a command draws.
type Kind int

const (
	KindRect Kind = iota
	KindCircle
	KindPath
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindRect:
		return "rect"
	case KindCircle:
		return "circle"
	case KindPath:
		return "path"
	case KindText:
		return "text"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Role tells sinks what a command depicts.
type Role string

const (
	RoleHitTarget Role = "hit"
	RoleEdge      Role = "edge"
	RoleHighlight Role = "highlight"
	RoleNode      Role = "node"
	RoleLabel     Role = "label"
)

// Paint is a color with opacity. Alpha zero means "none".
type Paint struct {
	Color colorful.Color `json:"color"`
	Alpha float64        `json:"alpha"`
}

// None reports whether the paint is invisible.
func (p Paint) None() bool { return p.Alpha <= 0 }

// Solid returns an opaque paint.
func Solid(c colorful.Color) Paint { return Paint{Color: c, Alpha: 1} }

// Style describes how a shape is filled and stroked.
type Style struct {
	Fill        Paint   `json:"fill"`
	Stroke      Paint   `json:"stroke"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
}

// TextStyle describes a label.
type TextStyle struct {
	Fill     Paint   `json:"fill"`
	Size     float64 `json:"size"`
	Centered bool    `json:"centered"`
	Bold     bool    `json:"bold,omitempty"`
}

// Curve is a cubic Bézier segment.
type Curve struct {
	From geom.Point `json:"from"`
	C1   geom.Point `json:"c1"`
	C2   geom.Point `json:"c2"`
	To   geom.Point `json:"to"`
}

// D formats the curve as SVG path data.
func (c Curve) D() string {
	return fmt.Sprintf("M%.2f,%.2f C%.2f,%.2f %.2f,%.2f %.2f,%.2f",
		c.From.X, c.From.Y, c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.To.X, c.To.Y)
}

// Bounds returns the box of the control polygon, which contains the curve.
func (c Curve) Bounds() geom.Rect {
	minX := min(c.From.X, c.C1.X, c.C2.X, c.To.X)
	maxX := max(c.From.X, c.C1.X, c.C2.X, c.To.X)
	minY := min(c.From.Y, c.C1.Y, c.C2.Y, c.To.Y)
	maxY := max(c.From.Y, c.C1.Y, c.C2.Y, c.To.Y)
	return geom.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Transform maps every point through t.
func (c Curve) Transform(t viewport.Transform) Curve {
	return Curve{From: t.Apply(c.From), C1: t.Apply(c.C1), C2: t.Apply(c.C2), To: t.Apply(c.To)}
}

// Command is one draw primitive. Only the fields for its Kind are set.
type Command struct {
	Kind   Kind    `json:"kind"`
	Role   Role    `json:"role"`
	ID     tree.ID `json:"id,omitempty"`
	Screen bool    `json:"screen,omitempty"` // coordinates are already in screen space

	Rect   geom.Rect  `json:"rect,omitzero"`
	Center geom.Point `json:"center,omitzero"`
	Radius float64    `json:"radius,omitempty"`
	Curve  Curve      `json:"curve,omitzero"`
	Text   string     `json:"text,omitempty"`
	At     geom.Point `json:"at,omitzero"`

	Style     Style     `json:"style,omitzero"`
	TextStyle TextStyle `json:"text_style,omitzero"`
}

// Bounds returns the world-space extent of the command. Text is estimated
// from its rune count.
func (c Command) Bounds() geom.Rect {
	switch c.Kind {
	case KindRect:
		return c.Rect
	case KindCircle:
		r := c.Radius + c.Style.StrokeWidth/2
		return geom.RectFromCenter(c.Center, 2*r, 2*r)
	case KindPath:
		return c.Curve.Bounds()
	case KindText:
		w := float64(utf8.RuneCountInString(c.Text)) * c.TextStyle.Size * 0.6
		h := c.TextStyle.Size
		x := c.At.X
		if c.TextStyle.Centered {
			x -= w / 2
		}
		return geom.Rect{X: x, Y: c.At.Y - h, W: w, H: h * 1.25}
	}
	return geom.Rect{}
}

// Scene is an immutable frame: commands in draw order plus the view
// transform that maps their world coordinates to the screen.
type Scene struct {
	Size       geom.Size          `json:"size"`
	Transform  viewport.Transform `json:"transform"`
	Background colorful.Color     `json:"background"`
	Commands   []Command          `json:"commands"`
}

// ContentBounds is the union of all world-space commands. The second
// result is false when the scene has no content.
func (s Scene) ContentBounds() (geom.Rect, bool) {
	var r geom.Rect
	found := false
	for _, c := range s.Commands {
		if c.Screen {
			continue
		}
		b := c.Bounds()
		if !found {
			r, found = b, true
			continue
		}
		r = r.Union(b)
	}
	return r, found
}

// NodeIDs returns the ids of all node markers in draw order.
func (s Scene) NodeIDs() []tree.ID {
	var out []tree.ID
	for _, c := range s.Commands {
		if c.Role == RoleNode {
			out = append(out, c.ID)
		}
	}
	return out
}

// ElementID is the identifier sinks attach to a command, e.g. "node-12".
func ElementID(c Command) string {
	if c.ID == 0 {
		return ""
	}
	return fmt.Sprintf("%s-%d", c.Role, c.ID)
}

// Labels joins the text of every label command; handy in tests and logs.
func (s Scene) Labels() string {
	var b strings.Builder
	for _, c := range s.Commands {
		if c.Role == RoleLabel {
			b.WriteString(c.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
