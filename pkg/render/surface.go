package render

import (
	"github.com/matzehuels/arbor/pkg/geom"
	"github.com/matzehuels/arbor/pkg/viewport"
)

// Surface accepts draw primitives in screen space.
type Surface interface {
	DrawRect(r geom.Rect, s Style)
	DrawCircle(c geom.Point, radius float64, s Style)
	DrawPath(c Curve, s Style)
	DrawText(at geom.Point, text string, s TextStyle)
}

// Identifier is implemented by surfaces that can tag the next primitive,
// such as SVG where every node gets a DOM id.
type Identifier interface {
	Identify(c Command)
}

// Replay draws every command of s onto dst, applying the scene transform to
// world-space commands.
func Replay(s Scene, dst Surface) {
	ReplayWith(s, s.Transform, dst, true)
}

// ReplayWith draws s through an explicit transform. Screen-space commands
// are skipped unless includeScreen is set, which export paths use to leave
// out the pan hit target.
func ReplayWith(s Scene, t viewport.Transform, dst Surface, includeScreen bool) {
	ident, _ := dst.(Identifier)
	for _, c := range s.Commands {
		if c.Screen && !includeScreen {
			continue
		}
		tf := t
		if c.Screen {
			tf = viewport.Identity
		}
		if ident != nil {
			ident.Identify(c)
		}
		switch c.Kind {
		case KindRect:
			dst.DrawRect(tf.ApplyRect(c.Rect), scaleStyle(c.Style, tf.Scale))
		case KindCircle:
			dst.DrawCircle(tf.Apply(c.Center), c.Radius*tf.Scale, scaleStyle(c.Style, tf.Scale))
		case KindPath:
			dst.DrawPath(c.Curve.Transform(tf), scaleStyle(c.Style, tf.Scale))
		case KindText:
			ts := c.TextStyle
			ts.Size *= tf.Scale
			dst.DrawText(tf.Apply(c.At), c.Text, ts)
		}
	}
}

func scaleStyle(s Style, scale float64) Style {
	s.StrokeWidth *= scale
	return s
}

// Recorder is a Surface that keeps everything drawn on it. Tests and the
// terminal viewer use it.
type Recorder struct {
	Ops []Op

	next string
}

// Op is one recorded primitive in screen space.
type Op struct {
	Kind   Kind
	ID     string // element id from Identify, if any
	Rect   geom.Rect
	Center geom.Point // circle center or text anchor
	Radius float64
	Curve  Curve
	Text   string
	Style  Style
	Font   TextStyle
}

// Identify tags the next recorded primitive.
func (r *Recorder) Identify(c Command) { r.next = ElementID(c) }

func (r *Recorder) push(op Op) {
	op.ID, r.next = r.next, ""
	r.Ops = append(r.Ops, op)
}

func (r *Recorder) DrawRect(rect geom.Rect, s Style) {
	r.push(Op{Kind: KindRect, Rect: rect, Style: s})
}

func (r *Recorder) DrawCircle(c geom.Point, radius float64, s Style) {
	r.push(Op{Kind: KindCircle, Center: c, Radius: radius, Style: s})
}

func (r *Recorder) DrawPath(c Curve, s Style) {
	r.push(Op{Kind: KindPath, Curve: c, Style: s})
}

func (r *Recorder) DrawText(at geom.Point, text string, s TextStyle) {
	r.push(Op{Kind: KindText, Center: at, Text: text, Font: s})
}
