// Package layout computes node positions for the visible part of a tree.
//
// [Compute] implements the Reingold–Tilford tidy tree algorithm with the
// linear-time apportioning of Walker as improved by Buchheim, Jünger and
// Leipert. Subtrees are placed as close together as the separation function
// allows, parents are centered over their children, and identical subtrees
// get identical shapes.
//
// Coordinates use a top-down orientation: X runs along the breadth axis and
// Y along the depth axis. Y depends only on depth, so rows line up.
//
// The result is a plain value. Post-processing (collision resolution, leaf
// staggering) lives in the transform subpackage and mutates a [Layout] in
// place.
package layout
