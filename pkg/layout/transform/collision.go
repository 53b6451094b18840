package transform

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/arbor/pkg/layout"
)

// Options configures both post-processing passes.
type Options struct {
	// MinGap is the smallest allowed distance between the boxes of two
	// nodes in the same depth band.
	MinGap float64

	// StaggerBase is added to the depth coordinate of every leaf.
	StaggerBase float64
	// StaggerStride is multiplied by the leaf's index among its leaf siblings.
	StaggerStride float64
	// StaggerCycle wraps the index when positive, so long rows of leaves
	// alternate between a few offsets instead of descending forever.
	StaggerCycle int
	// MultilineExtra is added per label line beyond the first.
	MultilineExtra float64
}

// DefaultOptions returns the default pass configuration.
func DefaultOptions() Options {
	return Options{
		MinGap:         12,
		StaggerBase:    0,
		StaggerStride:  18,
		MultilineExtra: 8,
	}
}

// Resolve applies collision resolution followed by leaf staggering.
func Resolve(l *layout.Layout, opts Options) *layout.Layout {
	ResolveCollisions(l, opts)
	StaggerLeaves(l, opts)
	return l
}

// ResolveCollisions enforces MinGap between neighbouring boxes of every
// depth band, processing bands from the root down. A node that is too close
// to the right edge of everything already placed in its band is moved right
// by the deficit together with its visible subtree.
func ResolveCollisions(l *layout.Layout, opts Options) *layout.Layout {
	for _, band := range bands(l) {
		slices.SortFunc(band, func(a, b int) int {
			if c := cmp.Compare(l.Nodes[a].X, l.Nodes[b].X); c != 0 {
				return c
			}
			return cmp.Compare(l.Nodes[a].Order, l.Nodes[b].Order)
		})

		frontier := math.Inf(-1)
		for _, i := range band {
			n := &l.Nodes[i]
			if deficit := frontier + opts.MinGap - n.Left(); deficit > 0 {
				shiftSubtree(l, i, deficit)
			}
			frontier = max(frontier, n.Right())
		}
	}
	return l
}

// bands groups node indices by depth, shallowest first.
func bands(l *layout.Layout) [][]int {
	var out [][]int
	for i, n := range l.Nodes {
		for len(out) <= n.Depth {
			out = append(out, nil)
		}
		out[n.Depth] = append(out[n.Depth], i)
	}
	return out
}

// shiftSubtree moves the node at index i and all its visible descendants,
// which follow it contiguously in pre-order.
func shiftSubtree(l *layout.Layout, i int, dx float64) {
	end := i + l.Nodes[i].Size
	for j := i; j < end; j++ {
		l.Nodes[j].X += dx
	}
}
