// Package engine runs one interactive tree view.
//
// An [Engine] owns everything a rendered tree needs: the [tree.Tree], the
// latest layout, a viewport controller, an animation scheduler and a render
// driver. Nothing is shared between engines. Methods are synchronous and
// must be called from one goroutine; the caller advances animations by
// calling [Engine.Tick] once per frame.
//
// Every structural command follows the same pipeline:
//
//	tree mutation -> layout.Compute -> transform.Resolve -> Driver.Update
//
// Viewport commands never relayout, and relayout never moves the viewport
// unless the command asks for it (Search centers on its first match, Resize
// refits).
//
// # Commands
//
// The named command surface shared by the CLI, the terminal viewer and the
// HTTP server is [Engine.Do]:
//
//	res, err := e.Do(engine.Command{Name: engine.CmdSearch, Query: "cluster"})
package engine
