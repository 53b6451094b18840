// Package nodelink renders a tree as a static Graphviz node-link diagram.
//
// # Overview
//
// The interactive renderer positions nodes with its own tidy-tree layout.
// This package hands the same structure to Graphviz instead, which is
// useful for documents that are laid out once and embedded elsewhere.
//
// # Usage
//
//	dot := nodelink.ToDOT(t, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Only visible nodes are emitted unless [Options].All is set, in which case
// collapsed descendants appear dashed and grey.
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//   - Rendered with [RenderSVG] or [RenderPDF]
//   - Saved to a file for use with the dot command-line tool
//   - Edited manually for custom styling
//
// Node identifiers are "n<id>" so labels may contain any text.
package nodelink
