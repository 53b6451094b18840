package layout

import "github.com/matzehuels/arbor/pkg/tree"

// Cell is the spacing unit of the layout grid: Breadth between adjacent
// siblings at separation 1, Depth between consecutive levels.
type Cell struct {
	Breadth float64
	Depth   float64
}

// Options configures [Compute].
type Options struct {
	// NodeSize is the grid cell for wide viewports.
	NodeSize Cell
	// NarrowNodeSize replaces NodeSize when the viewport is narrower than
	// NarrowBelow.
	NarrowNodeSize Cell
	NarrowBelow    float64

	// SiblingSeparation and CousinSeparation are multiples of the breadth
	// cell between adjacent nodes that do or do not share a parent.
	SiblingSeparation float64
	CousinSeparation  float64

	// Separation overrides the sibling/cousin rule when set.
	Separation func(a, b *tree.Node) float64

	// Box sizing.
	BoxWidth      float64 // width of a leaf box
	InteriorExtra float64 // added width for nodes with children
	LineHeight    float64 // per label line
	BoxPadding    float64 // added to the label height
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		NodeSize:          Cell{Breadth: 140, Depth: 160},
		NarrowNodeSize:    Cell{Breadth: 90, Depth: 120},
		NarrowBelow:       640,
		SiblingSeparation: 1,
		CousinSeparation:  1.5,
		BoxWidth:          100,
		InteriorExtra:     16,
		LineHeight:        16,
		BoxPadding:        12,
	}
}

// cell picks the grid cell for the viewport width. A non-positive width is
// treated as wide.
func (o Options) cell(viewportWidth float64) Cell {
	if viewportWidth > 0 && viewportWidth < o.NarrowBelow && o.NarrowNodeSize.Breadth > 0 {
		return o.NarrowNodeSize
	}
	return o.NodeSize
}

func (o Options) separation(a, b *tree.Node) float64 {
	if o.Separation != nil {
		return o.Separation(a, b)
	}
	if a.Parent() == b.Parent() {
		return o.SiblingSeparation
	}
	return o.CousinSeparation
}

func (o Options) boxSize(n *tree.Node, lines int) (w, h float64) {
	w = o.BoxWidth
	if !n.IsLeaf() {
		w += o.InteriorExtra
	}
	h = o.LineHeight*float64(lines) + o.BoxPadding
	return w, h
}
