// Package render turns successive layouts into animated draw commands.
//
// # Overview
//
// A [Driver] keeps one [Item] per node it has ever drawn and not yet
// retired, keyed by node id and kept in draw order. Every call to
// [Driver.Update] diffs the new layout against that map:
//
//   - Enter: ids new to the layout start at the drawn position of their
//     nearest previously drawn ancestor and fade in.
//   - Update: ids present before and after move from wherever they are
//     drawn right now (possibly mid-flight) to their new position.
//   - Exit: ids that vanished collapse toward their nearest surviving
//     ancestor's new position, fade out, and are then deleted.
//
// Each pass is one transition. A newer pass supersedes an older one by
// bumping a generation counter, so there is no cancellation protocol: the
// new pass simply starts from the current drawn positions.
//
// # Frames
//
// [Driver.Frame] produces a [Scene]: an ordered list of [Command] values
// (a screen-space pan hit target, edges, search highlights, node markers,
// labels). Edges are recomputed from drawn endpoints every frame so curves
// deform in lock-step with the nodes they connect.
//
// A Scene is a plain value. [Replay] feeds it to any [Surface]; the sink
// subpackage serializes it to SVG, PNG, JSON and PDF.
package render
