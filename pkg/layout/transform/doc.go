// Package transform post-processes a layout.
//
// Two passes run in a fixed order after the tidy tree layout:
//
//  1. [ResolveCollisions] sweeps every depth band from left to right and
//     shifts any node (with its visible subtree) that sits closer than the
//     minimum gap to its left neighbour. The tidy layout only knows grid
//     units; this pass accounts for the real box widths.
//  2. [StaggerLeaves] pushes leaf labels of the same parent down by a
//     growing offset so neighbouring labels fan out instead of stacking.
//
// Staggering only moves nodes along the depth axis, so it never undoes the
// guarantee of the first pass. [Resolve] runs both.
package transform
