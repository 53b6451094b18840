package layout

import (
	"github.com/matzehuels/arbor/pkg/tree"
)

// wnode carries the bookkeeping of the tidy tree walk for one visible node.
type wnode struct {
	src      *tree.Node
	parent   *wnode
	children []*wnode
	index    int // position among siblings

	prelim   float64
	mod      float64
	change   float64
	shift    float64
	thread   *wnode
	ancestor *wnode
	defAnc   *wnode // default ancestor used while apportioning children
}

// Compute lays out the visible part of the tree rooted at root.
//
// The returned layout lists nodes in pre-order. The root sits at X=0, Y=0;
// a childless root yields a single node at the origin.
func Compute(root *tree.Node, viewportWidth float64, opts Options) *Layout {
	cell := opts.cell(viewportWidth)

	w := wrap(root)
	sentinel := &wnode{children: []*wnode{w}}
	w.parent = sentinel

	postOrder(w, func(v *wnode) { firstWalk(v, opts) })
	sentinel.mod = -w.prelim
	x := make(map[*wnode]float64)
	preOrder(w, func(v *wnode) {
		x[v] = v.prelim + v.parent.mod
		v.mod += v.parent.mod
	})

	l := &Layout{ViewportWidth: viewportWidth, index: make(map[tree.ID]int)}
	var emit func(v *wnode) int
	emit = func(v *wnode) int {
		n := v.src
		lines := len(n.Lines())
		width, height := opts.boxSize(n, lines)
		ln := Node{
			ID:         n.ID,
			Name:       n.Name,
			Branch:     n.Branch(),
			Depth:      n.Depth() - root.Depth(),
			Order:      len(l.Nodes),
			X:          x[v] * cell.Breadth,
			Y:          float64(n.Depth()-root.Depth()) * cell.Depth,
			Width:      width,
			Height:     height,
			Lines:      lines,
			Leaf:       n.IsLeaf(),
			Expandable: n.IsCollapsed(),
			Expanded:   n.IsExpanded(),
		}
		if v.parent.src != nil {
			ln.ParentID = v.parent.src.ID
			l.Edges = append(l.Edges, Edge{Source: ln.ParentID, Target: n.ID})
		}
		i := len(l.Nodes)
		l.index[n.ID] = i
		l.Nodes = append(l.Nodes, ln)

		size := 1
		for _, c := range v.children {
			size += emit(c)
		}
		l.Nodes[i].Size = size
		return size
	}
	emit(w)
	return l
}

func wrap(n *tree.Node) *wnode {
	v := &wnode{src: n}
	v.ancestor = v
	for i, c := range n.Children() {
		cw := wrap(c)
		cw.parent = v
		cw.index = i
		v.children = append(v.children, cw)
	}
	return v
}

func postOrder(v *wnode, fn func(*wnode)) {
	for _, c := range v.children {
		postOrder(c, fn)
	}
	fn(v)
}

func preOrder(v *wnode, fn func(*wnode)) {
	fn(v)
	for _, c := range v.children {
		preOrder(c, fn)
	}
}

// firstWalk computes a preliminary x for v relative to its left sibling and
// records how far its subtree must move.
func firstWalk(v *wnode, opts Options) {
	siblings := v.parent.children
	var left *wnode
	if v.index > 0 {
		left = siblings[v.index-1]
	}

	if len(v.children) > 0 {
		executeShifts(v)
		first, last := v.children[0], v.children[len(v.children)-1]
		mid := (first.prelim + last.prelim) / 2
		if left != nil {
			v.prelim = left.prelim + opts.separation(v.src, left.src)
			v.mod = v.prelim - mid
		} else {
			v.prelim = mid
		}
	} else if left != nil {
		v.prelim = left.prelim + opts.separation(v.src, left.src)
	}

	anc := v.parent.defAnc
	if anc == nil {
		anc = siblings[0]
	}
	v.parent.defAnc = apportion(v, left, anc, opts)
}

// apportion pushes the subtree of v right until its left contour clears the
// right contour of every subtree to its left, spreading the shift over the
// intermediate siblings.
func apportion(v, left, anc *wnode, opts Options) *wnode {
	if left == nil {
		return anc
	}

	vip, vop := v, v // inner and outer right contour
	vim := left      // inner left contour
	vom := vip.parent.children[0]
	sip, sop, sim, som := vip.mod, vop.mod, vim.mod, vom.mod

	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.ancestor = v

		shift := vim.prelim + sim - vip.prelim - sip + opts.separation(vim.src, vip.src)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, anc), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.mod
		sip += vip.mod
		som += vom.mod
		sop += vop.mod
	}

	if vim != nil && nextRight(vop) == nil {
		vop.thread = vim
		vop.mod += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.thread = vip
		vom.mod += sip - som
		anc = v
	}
	return anc
}

func nextLeft(v *wnode) *wnode {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func nextRight(v *wnode) *wnode {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.thread
}

func moveSubtree(wm, wp *wnode, shift float64) {
	change := shift / float64(wp.index-wm.index)
	wp.change -= change
	wp.shift += shift
	wm.change += change
	wp.prelim += shift
	wp.mod += shift
}

func executeShifts(v *wnode) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.prelim += shift
		w.mod += shift
		change += w.change
		shift += w.shift + change
	}
}

func nextAncestor(vim, v, anc *wnode) *wnode {
	if vim.ancestor.parent == v.parent {
		return vim.ancestor
	}
	return anc
}
