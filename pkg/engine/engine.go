package engine

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/arbor/pkg/anim"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/geom"
	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/layout/transform"
	"github.com/matzehuels/arbor/pkg/observability"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/search"
	"github.com/matzehuels/arbor/pkg/theme"
	"github.com/matzehuels/arbor/pkg/tree"
	"github.com/matzehuels/arbor/pkg/viewport"
)

const viewKey = "engine.viewport"

// Engine is one rendered tree. It is not safe for concurrent use.
type Engine struct {
	id     string
	cfg    settings
	logger *log.Logger

	tree    *tree.Tree
	current *layout.Layout
	view    *viewport.Controller
	target  *viewport.Transform // end of the running viewport animation
	sched   *anim.Scheduler
	driver  *render.Driver
	search  search.State
}

// New creates an engine for t with the given viewport size. No layout pass
// runs until [Engine.Start].
func New(t *tree.Tree, size geom.Size, opts ...Option) *Engine {
	cfg := defaults()
	for _, o := range opts {
		o(&cfg)
	}
	id := uuid.NewString()
	sched := anim.NewScheduler()
	return &Engine{
		id:     id,
		cfg:    cfg,
		logger: cfg.logger.With("engine", id[:8]),
		tree:   t,
		view:   viewport.NewController(size, cfg.bounds, cfg.padding, cfg.zoomStep),
		sched:  sched,
		driver: render.NewDriver(sched, cfg.theme, cfg.render),
	}
}

// ID returns the instance id.
func (e *Engine) ID() string { return e.id }

// Tree returns the model. Mutating it directly requires a call to
// [Engine.Relayout] afterwards.
func (e *Engine) Tree() *tree.Tree { return e.tree }

// Layout returns the latest layout, or nil before the first pass.
func (e *Engine) Layout() *layout.Layout { return e.current }

// Transform returns the current view transform.
func (e *Engine) Transform() viewport.Transform { return e.view.Transform() }

// Viewport returns the viewport controller.
func (e *Engine) Viewport() *viewport.Controller { return e.view }

// SearchState returns the result of the last search.
func (e *Engine) SearchState() search.State { return e.search }

// Start runs the first layout pass and fits the content without animating
// the viewport.
func (e *Engine) Start() {
	e.Relayout()
	e.refit()
}

// Relayout recomputes positions for the visible tree and starts the
// transition to them.
func (e *Engine) Relayout() render.Diff {
	start := time.Now()
	l := layout.Compute(e.tree.Root(), e.view.Size().W, e.cfg.layout)
	transform.Resolve(l, e.cfg.passes)
	e.current = l
	diff := e.driver.Update(l, e.cfg.clock())

	d := time.Since(start)
	observability.Engine().OnLayout(e.id, len(l.Nodes), d)
	e.logger.Debug("layout", "nodes", len(l.Nodes),
		"entered", len(diff.Entered), "updated", len(diff.Updated), "exited", len(diff.Exited),
		"duration", d)
	return diff
}

// Toggle expands or collapses a node. Toggling a leaf does nothing.
func (e *Engine) Toggle(id tree.ID) error {
	n, err := e.tree.Toggle(id)
	if err != nil {
		e.logger.Warn("toggle ignored", "error", err)
		return err
	}
	if n.IsLeaf() {
		e.logger.Debug("toggle on leaf", "id", id)
		return nil
	}
	e.Relayout()
	return nil
}

// ExpandPath makes id visible by expanding its ancestors.
func (e *Engine) ExpandPath(id tree.ID) error {
	if err := e.tree.ExpandPath(id); err != nil {
		e.logger.Warn("expand path ignored", "error", err)
		return err
	}
	e.Relayout()
	return nil
}

// ExpandAll expands every node.
func (e *Engine) ExpandAll() {
	e.tree.ExpandAll()
	e.Relayout()
}

// CollapseAll collapses everything below the root.
func (e *Engine) CollapseAll() {
	e.tree.CollapseAll()
	e.Relayout()
}

// Search highlights every node matching query. The first match in
// pre-order is revealed and centered at the current scale. A blank query or
// no match leaves the structure and the view alone.
func (e *Engine) Search(query string) (search.State, error) {
	st, err := search.Run(e.tree, query)
	if err != nil {
		return e.search, err
	}
	e.search = st
	e.driver.SetHighlights(st.Matches)

	first, ok := st.First()
	if !ok {
		e.logger.Debug("search found nothing", "query", query)
		return st, nil
	}
	if err := e.tree.ExpandPath(first); err != nil {
		return st, err
	}
	e.Relayout()
	e.logger.Debug("search", "query", query, "matches", len(st.Matches), "first", first)
	return st, e.centerOnNode(first)
}

// NextMatch moves the search cursor forward and reveals that match.
func (e *Engine) NextMatch() error {
	id, ok := e.search.Next()
	if !ok {
		return nil
	}
	if err := e.tree.ExpandPath(id); err != nil {
		return err
	}
	e.Relayout()
	return e.centerOnNode(id)
}

// ClearSearch drops matches and highlights. Expand state is kept.
func (e *Engine) ClearSearch() {
	e.search = search.State{}
	e.driver.SetHighlights(nil)
}

// Fit frames the content with the configured fit mode.
func (e *Engine) Fit() {
	e.animateView("fit", func(base viewport.Transform) (viewport.Transform, bool) {
		return e.fitTarget(base)
	})
}

// Reset returns to scale 1 with the top of the content in view.
func (e *Engine) Reset() {
	e.animateView("reset", func(viewport.Transform) (viewport.Transform, bool) {
		if e.current == nil {
			return viewport.Transform{}, false
		}
		return viewport.Reset(e.current.Bounds(), e.view.Size(), e.view.Padding(), e.view.Bounds())
	})
}

// Center recenters the content at the current scale.
func (e *Engine) Center() {
	e.animateView("center", func(base viewport.Transform) (viewport.Transform, bool) {
		if e.current == nil {
			return viewport.Transform{}, false
		}
		return viewport.Center(e.current.Bounds(), e.view.Size(), base)
	})
}

// CenterOn centers the view on a visible node.
func (e *Engine) CenterOn(id tree.ID) error {
	if _, ok := e.tree.Node(id); !ok {
		err := &errors.NodeRefError{Op: "center", ID: uint64(id)}
		e.logger.Warn("center ignored", "error", err)
		return err
	}
	return e.centerOnNode(id)
}

func (e *Engine) centerOnNode(id tree.ID) error {
	if e.current == nil {
		return nil
	}
	n, ok := e.current.Node(id)
	if !ok {
		e.logger.Debug("center on hidden node", "id", id)
		return nil
	}
	p := n.Pos()
	e.animateView("center-on", func(base viewport.Transform) (viewport.Transform, bool) {
		return viewport.CenterOn(p, e.view.Size(), base)
	})
	return nil
}

// ZoomIn zooms one step about the viewport center.
func (e *Engine) ZoomIn() { e.zoom("zoom-in", e.view.ZoomStep()) }

// ZoomOut zooms one step out about the viewport center.
func (e *Engine) ZoomOut() { e.zoom("zoom-out", 1/e.view.ZoomStep()) }

func (e *Engine) zoom(op string, factor float64) {
	e.animateView(op, func(base viewport.Transform) (viewport.Transform, bool) {
		return viewport.ZoomBy(base, factor, e.view.Size(), e.view.Bounds())
	})
}

// PanBy moves the view immediately by a screen-space delta. A running
// viewport animation is dropped.
func (e *Engine) PanBy(dx, dy float64) {
	e.stopView()
	e.view.PanBy(dx, dy)
}

// Resize changes the viewport, relayouts for the new width and refits.
// Collapse state is untouched.
func (e *Engine) Resize(size geom.Size) {
	e.view.Resize(size)
	e.Relayout()
	e.refit()
}

// Tick advances running transitions to the clock's current time and
// reports whether any are still running.
func (e *Engine) Tick() bool {
	return e.sched.Advance(e.cfg.clock()) > 0
}

// Settle finishes every running transition at once.
func (e *Engine) Settle() { e.sched.Settle() }

// Animating reports whether a transition is in flight.
func (e *Engine) Animating() bool { return e.sched.Active() > 0 }

// Frame renders the drawn state through the current transform.
func (e *Engine) Frame() render.Scene {
	return e.driver.Frame(e.view.Transform(), e.view.Size())
}

// ThemeChanged re-queries the theme provider. Positions are untouched.
func (e *Engine) ThemeChanged() { e.driver.ThemeChanged() }

// SetTheme swaps the theme provider.
func (e *Engine) SetTheme(p theme.Provider) { e.driver.SetTheme(p) }

// Palette returns the colors of the next frame.
func (e *Engine) Palette() theme.Palette { return e.driver.Palette() }

// refit applies the configured fit immediately.
func (e *Engine) refit() {
	e.stopView()
	t, ok := e.fitTarget(e.view.Transform())
	if !ok {
		e.logger.Debug("fit skipped: degenerate geometry")
		return
	}
	e.view.Set(t)
}

func (e *Engine) fitTarget(base viewport.Transform) (viewport.Transform, bool) {
	if e.current == nil {
		return viewport.Transform{}, false
	}
	bbox := e.current.Bounds()
	if e.cfg.fitMode == viewport.FitWidth {
		return viewport.FitToWidth(bbox, e.view.Size(), base, e.view.Bounds())
	}
	return viewport.FitToContent(bbox, e.view.Size(), e.view.Padding(), e.view.Bounds())
}

// animateView tweens the transform to the target computed from base, which
// is the end of any running viewport animation so repeated commands
// compose. Degenerate targets leave the view alone.
func (e *Engine) animateView(op string, target func(base viewport.Transform) (viewport.Transform, bool)) {
	base := e.view.Transform()
	if e.target != nil {
		base = *e.target
	}
	to, ok := target(base)
	if !ok {
		e.logger.Debug("viewport unchanged: degenerate geometry", "op", op)
		return
	}
	from := e.view.Transform()
	e.target = &to
	e.sched.Add(anim.Entry{
		Key:      viewKey,
		Start:    e.cfg.clock(),
		Duration: e.cfg.render.Duration,
		Ease:     e.cfg.render.Ease,
		Step:     func(p float64) { e.view.Set(from.Lerp(to, p)) },
		Done:     func() { e.target = nil },
	})
}

func (e *Engine) stopView() {
	e.sched.Cancel(viewKey)
	e.target = nil
}
