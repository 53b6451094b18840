// Package sink serializes a [render.Scene] for export.
//
// Exports are synchronous snapshots. Unless [WithView] is given, the scene
// is cropped to the bounding box of its content plus padding and the
// screen-space pan hit target is left out.
//
//	svg, err := sink.RenderSVG(scene, sink.WithPadding(24))
//	png, err := sink.RenderPNG(scene, sink.WithScale(2))
//	js, err  := sink.RenderJSON(scene)
//	pdf, err := sink.RenderPDF(ctx, scene)
//
// SVG output carries an element id per node ("node-<id>", "label-<id>",
// "edge-<id>"), so exported documents can be matched back to the tree.
package sink
