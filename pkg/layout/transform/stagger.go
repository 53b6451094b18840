package transform

import (
	"cmp"
	"slices"

	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/tree"
)

// StaggerLeaves offsets the depth coordinate of every true leaf (a node with
// neither visible nor collapsed children) by
//
//	StaggerBase + index*StaggerStride + (lines-1)*MultilineExtra
//
// where index is the leaf's rank by X among the leaves sharing its parent.
// A childless root is left in place.
func StaggerLeaves(l *layout.Layout, opts Options) *layout.Layout {
	groups := make(map[tree.ID][]int)
	var parents []tree.ID
	for i, n := range l.Nodes {
		if !n.Leaf || n.ParentID == 0 {
			continue
		}
		if _, seen := groups[n.ParentID]; !seen {
			parents = append(parents, n.ParentID)
		}
		groups[n.ParentID] = append(groups[n.ParentID], i)
	}

	for _, p := range parents {
		group := groups[p]
		slices.SortFunc(group, func(a, b int) int {
			if c := cmp.Compare(l.Nodes[a].X, l.Nodes[b].X); c != 0 {
				return c
			}
			return cmp.Compare(l.Nodes[a].Order, l.Nodes[b].Order)
		})
		for rank, i := range group {
			if opts.StaggerCycle > 0 {
				rank %= opts.StaggerCycle
			}
			n := &l.Nodes[i]
			n.Y += opts.StaggerBase + float64(rank)*opts.StaggerStride + float64(n.Lines-1)*opts.MultilineExtra
		}
	}
	return l
}
