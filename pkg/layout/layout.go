package layout

import (
	"github.com/matzehuels/arbor/pkg/geom"
	"github.com/matzehuels/arbor/pkg/tree"
)

// Node is the per-pass position overlay for one visible tree node.
//
// X and Y are the center of the node marker. The bounding box extends half
// the width to either side and half the height above and below.
type Node struct {
	ID       tree.ID
	ParentID tree.ID // zero for the root
	Name     string
	Branch   string
	Depth    int
	Order    int // pre-order index among visible nodes
	Size     int // visible subtree size including this node

	X, Y          float64
	Width, Height float64
	Lines         int

	Leaf       bool // no children at all
	Expandable bool // has collapsed children
	Expanded   bool // shows children
}

// Box returns the bounding box of n.
func (n Node) Box() geom.Rect {
	return geom.RectFromCenter(geom.Point{X: n.X, Y: n.Y}, n.Width, n.Height)
}

// Pos returns the marker position of n.
func (n Node) Pos() geom.Point { return geom.Point{X: n.X, Y: n.Y} }

// Left returns the left edge of the bounding box.
func (n Node) Left() float64 { return n.X - n.Width/2 }

// Right returns the right edge of the bounding box.
func (n Node) Right() float64 { return n.X + n.Width/2 }

// Edge links a visible parent to a visible child. Edges carry no identity of
// their own; the target id identifies the edge.
type Edge struct {
	Source tree.ID `json:"source"`
	Target tree.ID `json:"target"`
}

// Layout is the result of one layout pass.
type Layout struct {
	Nodes         []Node // pre-order
	Edges         []Edge
	ViewportWidth float64

	index map[tree.ID]int
}

// New assembles a layout from nodes already in pre-order. Size and Order
// must be consistent with that order.
func New(nodes []Node, edges []Edge, viewportWidth float64) *Layout {
	l := &Layout{Nodes: nodes, Edges: edges, ViewportWidth: viewportWidth}
	l.reindex()
	return l
}

func (l *Layout) reindex() {
	l.index = make(map[tree.ID]int, len(l.Nodes))
	for i, n := range l.Nodes {
		l.index[n.ID] = i
	}
}

// Node returns the entry for id. The pointer aliases the layout and may be
// modified by post-processing passes.
func (l *Layout) Node(id tree.ID) (*Node, bool) {
	i, ok := l.index[id]
	if !ok {
		return nil, false
	}
	return &l.Nodes[i], true
}

// Has reports whether id is part of the layout.
func (l *Layout) Has(id tree.ID) bool {
	_, ok := l.index[id]
	return ok
}

// Subtree returns the node for id followed by its visible descendants.
func (l *Layout) Subtree(id tree.ID) []Node {
	i, ok := l.index[id]
	if !ok {
		return nil
	}
	return l.Nodes[i : i+l.Nodes[i].Size]
}

// Bounds returns the union of every node's bounding box. It is degenerate
// for an empty layout.
func (l *Layout) Bounds() geom.Rect {
	if len(l.Nodes) == 0 {
		return geom.Rect{}
	}
	r := l.Nodes[0].Box()
	for _, n := range l.Nodes[1:] {
		r = r.Union(n.Box())
	}
	return r
}

// Clone returns a deep copy of l.
func (l *Layout) Clone() *Layout {
	return New(append([]Node(nil), l.Nodes...), append([]Edge(nil), l.Edges...), l.ViewportWidth)
}

// IDs returns the node ids in pre-order.
func (l *Layout) IDs() []tree.ID {
	out := make([]tree.ID, len(l.Nodes))
	for i, n := range l.Nodes {
		out[i] = n.ID
	}
	return out
}
