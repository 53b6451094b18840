// Package tree models the collapsible hierarchy that arbor lays out.
//
// A [Tree] owns every [Node] and hands out stable [ID] values. Each node keeps
// its children in exactly one of two lists: visible children or collapsed
// children. Toggling moves the list wholesale, so the order of children and
// the identity of every descendant survive any number of expand/collapse
// cycles.
//
// # Building
//
//	t := tree.Build(tree.Spec{
//	    Name: "root",
//	    Children: []tree.Spec{{Name: "a"}, {Name: "b"}},
//	}, tree.WithExpandDepth(1))
//
// # Operations
//
//   - [Tree.Toggle] swaps a node between expanded and collapsed. Leaves are a no-op.
//   - [Tree.ExpandPath] expands every ancestor of a node so that it becomes visible.
//   - [Tree.ExpandAll] and [Tree.CollapseAll] are the bulk forms.
//
// Ids are assigned once, increase monotonically and are never reused, not even
// after [Tree.Remove].
package tree
