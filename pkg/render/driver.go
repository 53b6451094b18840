package render

import (
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/tanema/gween/ease"

	"github.com/matzehuels/arbor/pkg/anim"
	"github.com/matzehuels/arbor/pkg/geom"
	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/theme"
	"github.com/matzehuels/arbor/pkg/tree"
	"github.com/matzehuels/arbor/pkg/viewport"
)

// Options configures drawing and transitions.
type Options struct {
	Duration time.Duration
	Ease     ease.TweenFunc

	NodeRadius   float64
	FontSize     float64
	LineHeight   float64
	LinkWidth    float64
	HighlightPad float64

	// CurveJitter displaces edge control points by up to this many world
	// units. The displacement is a pure function of the child id.
	CurveJitter float64
}

// DefaultOptions returns the standard drawing options.
func DefaultOptions() Options {
	return Options{
		Duration:     750 * time.Millisecond,
		Ease:         ease.InOutCubic,
		NodeRadius:   6,
		FontSize:     12,
		LineHeight:   16,
		LinkWidth:    1.5,
		HighlightPad: 4,
	}
}

// Phase is the lifecycle stage of an item within the current pass.
type Phase int

const (
	PhaseSettled Phase = iota
	PhaseEnter
	PhaseUpdate
	PhaseExit
)

func (p Phase) String() string {
	return [...]string{"settled", "enter", "update", "exit"}[p]
}

// Item is the drawn state of one node.
type Item struct {
	ID       tree.ID
	ParentID tree.ID
	Node     layout.Node // most recent layout entry
	Phase    Phase

	From, To, Pos geom.Point
	FromAlpha     float64
	ToAlpha       float64
	Alpha         float64

	gen uint64
}

// Diff lists the ids touched by one pass, grouped by phase.
type Diff struct {
	Entered []tree.ID
	Updated []tree.ID
	Exited  []tree.ID
}

const transitionKey = "render.layout"

// Driver owns the drawn items of one tree view. It is not safe for
// concurrent use.
type Driver struct {
	opts    Options
	sched   *anim.Scheduler
	theme   theme.Provider
	palette theme.Palette

	items map[tree.ID]*Item
	order []tree.ID
	gen   uint64

	highlights map[tree.ID]bool
}

// NewDriver creates a driver that schedules its transitions on sched and
// pulls colors from provider.
func NewDriver(sched *anim.Scheduler, provider theme.Provider, opts Options) *Driver {
	if provider == nil {
		provider = theme.Static(theme.Light)
	}
	if opts.Ease == nil {
		opts.Ease = ease.InOutCubic
	}
	return &Driver{
		opts:    opts,
		sched:   sched,
		theme:   provider,
		palette: provider.Colors(),
		items:   make(map[tree.ID]*Item),
	}
}

// Update starts the transition to l at time now and returns what changed.
func (d *Driver) Update(l *layout.Layout, now time.Duration) Diff {
	d.gen++
	gen := d.gen
	prev := d.items
	next := make(map[tree.ID]*Item, len(l.Nodes))
	var diff Diff

	order := make([]tree.ID, 0, len(l.Nodes))
	for _, n := range l.Nodes {
		target := n.Pos()
		it, existed := prev[n.ID]
		if existed {
			it.From, it.FromAlpha = it.Pos, it.Alpha
			it.Phase = PhaseUpdate
			diff.Updated = append(diff.Updated, n.ID)
		} else {
			origin := target
			if p, ok := prev[n.ParentID]; ok {
				origin = p.Pos
			} else if p, ok := next[n.ParentID]; ok {
				origin = p.From
			}
			it = &Item{ID: n.ID, From: origin, Pos: origin, Phase: PhaseEnter}
			diff.Entered = append(diff.Entered, n.ID)
		}
		it.ParentID = n.ParentID
		it.Node = n
		it.To, it.ToAlpha = target, 1
		it.gen = gen
		next[n.ID] = it
		order = append(order, n.ID)
	}

	var exiting []tree.ID
	for _, id := range d.order {
		if _, kept := next[id]; kept {
			continue
		}
		it := prev[id]
		target := it.Pos
		if anc := survivor(it, prev, next); anc != nil {
			target = anc.To
		}
		it.From, it.FromAlpha = it.Pos, it.Alpha
		it.To, it.ToAlpha = target, 0
		it.Phase = PhaseExit
		it.gen = gen
		next[id] = it
		exiting = append(exiting, id)
	}
	diff.Exited = exiting

	d.items = next
	d.order = append(exiting, order...)

	d.sched.Add(anim.Entry{
		Key:      transitionKey,
		Start:    now,
		Duration: d.opts.Duration,
		Ease:     d.opts.Ease,
		Step:     func(p float64) { d.step(gen, p) },
		Done:     func() { d.finish(gen) },
	})
	return diff
}

// survivor finds the nearest ancestor of an exiting item that is part of
// the new layout.
func survivor(it *Item, prev, next map[tree.ID]*Item) *Item {
	for id := it.ParentID; id != 0; {
		if n, ok := next[id]; ok && n.Phase != PhaseExit {
			return n
		}
		p, ok := prev[id]
		if !ok {
			return nil
		}
		id = p.ParentID
	}
	return nil
}

func (d *Driver) step(gen uint64, p float64) {
	for _, it := range d.items {
		if it.gen != gen {
			continue
		}
		it.Pos = it.From.Lerp(it.To, p)
		if p >= 1 {
			it.Alpha = it.ToAlpha
		} else {
			it.Alpha = it.FromAlpha + (it.ToAlpha-it.FromAlpha)*p
		}
	}
}

// finish makes the targets of pass gen the new baseline and retires exited
// items. A superseded pass does nothing.
func (d *Driver) finish(gen uint64) {
	if gen != d.gen {
		return
	}
	d.order = slices.DeleteFunc(d.order, func(id tree.ID) bool {
		it := d.items[id]
		if it.Phase == PhaseExit {
			delete(d.items, id)
			return true
		}
		it.Pos, it.Alpha = it.To, it.ToAlpha
		it.Phase = PhaseSettled
		return false
	})
}

// Animating reports whether any item is mid-transition.
func (d *Driver) Animating() bool {
	for _, it := range d.items {
		if it.Phase != PhaseSettled {
			return true
		}
	}
	return false
}

// Item returns a copy of the drawn state for id.
func (d *Driver) Item(id tree.ID) (Item, bool) {
	it, ok := d.items[id]
	if !ok {
		return Item{}, false
	}
	return *it, true
}

// IDs returns the ids currently drawn, exiting ones included, in draw order.
func (d *Driver) IDs() []tree.ID { return slices.Clone(d.order) }

// Clear drops every item without animating.
func (d *Driver) Clear() {
	d.gen++
	d.sched.Cancel(transitionKey)
	d.items = make(map[tree.ID]*Item)
	d.order = nil
}

// SetHighlights marks ids as search matches. Styling only.
func (d *Driver) SetHighlights(ids []tree.ID) {
	if len(ids) == 0 {
		d.highlights = nil
		return
	}
	d.highlights = make(map[tree.ID]bool, len(ids))
	for _, id := range ids {
		d.highlights[id] = true
	}
}

// SetTheme swaps the color provider and re-queries it.
func (d *Driver) SetTheme(p theme.Provider) {
	if p != nil {
		d.theme = p
	}
	d.ThemeChanged()
}

// ThemeChanged re-queries the provider. The next frame uses the new colors;
// positions are untouched.
func (d *Driver) ThemeChanged() { d.palette = d.theme.Colors() }

// Palette returns the colors the next frame will use.
func (d *Driver) Palette() theme.Palette { return d.palette }

// Frame renders the current drawn state. The first command is always the
// screen-space pan hit target covering the whole viewport.
func (d *Driver) Frame(t viewport.Transform, vp geom.Size) Scene {
	pal := d.palette
	s := Scene{Size: vp, Transform: t, Background: pal.Background}
	s.Commands = append(s.Commands, Command{
		Kind:   KindRect,
		Role:   RoleHitTarget,
		Screen: true,
		Rect:   viewport.HitTarget(vp),
		Style:  Style{Fill: Paint{Color: pal.Background}},
	})

	for _, id := range d.order {
		it := d.items[id]
		parent, ok := d.items[it.ParentID]
		if !ok {
			continue
		}
		s.Commands = append(s.Commands, Command{
			Kind:  KindPath,
			Role:  RoleEdge,
			ID:    id,
			Curve: d.curve(id, parent.Pos, it.Pos),
			Style: Style{
				Stroke:      Paint{Color: pal.Link, Alpha: it.Alpha},
				StrokeWidth: d.opts.LinkWidth,
			},
		})
	}

	for _, id := range d.order {
		it := d.items[id]
		if !d.highlights[id] || it.Phase == PhaseExit {
			continue
		}
		box := geom.RectFromCenter(it.Pos, it.Node.Width, it.Node.Height).Inset(d.opts.HighlightPad)
		s.Commands = append(s.Commands, Command{
			Kind:  KindRect,
			Role:  RoleHighlight,
			ID:    id,
			Rect:  box,
			Style: Style{Fill: Paint{Color: pal.Highlight, Alpha: it.Alpha}},
		})
	}

	for _, id := range d.order {
		it := d.items[id]
		fill := pal.Node
		if it.Node.Expandable {
			fill = pal.Collapsed
		}
		s.Commands = append(s.Commands, Command{
			Kind:   KindCircle,
			Role:   RoleNode,
			ID:     id,
			Center: it.Pos,
			Radius: d.opts.NodeRadius,
			Style: Style{
				Fill:        Paint{Color: fill, Alpha: it.Alpha},
				Stroke:      Paint{Color: pal.Branch(it.Node.Branch), Alpha: it.Alpha},
				StrokeWidth: 2,
			},
		})
	}

	for _, id := range d.order {
		it := d.items[id]
		for i, line := range splitLines(it.Node.Name) {
			s.Commands = append(s.Commands, Command{
				Kind: KindText,
				Role: RoleLabel,
				ID:   id,
				Text: line,
				At: geom.Point{
					X: it.Pos.X,
					Y: it.Pos.Y + d.opts.NodeRadius + d.opts.LineHeight*float64(i+1) - 2,
				},
				TextStyle: TextStyle{
					Fill:     Paint{Color: pal.Text, Alpha: it.Alpha},
					Size:     d.opts.FontSize,
					Centered: true,
					Bold:     d.highlights[id],
				},
			})
		}
	}
	return s
}

// curve builds the vertical S-shaped link from a parent to a child.
func (d *Driver) curve(id tree.ID, from, to geom.Point) Curve {
	midY := (from.Y + to.Y) / 2
	j1, j2 := jitter(id, d.opts.CurveJitter)
	return Curve{
		From: from,
		C1:   geom.Point{X: from.X + j1, Y: midY},
		C2:   geom.Point{X: to.X + j2, Y: midY},
		To:   to,
	}
}

func jitter(id tree.ID, amount float64) (float64, float64) {
	if amount == 0 {
		return 0, 0
	}
	seed := uint64(id)
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	return (rng.Float64()*2 - 1) * amount, (rng.Float64()*2 - 1) * amount
}

func splitLines(name string) []string { return strings.Split(name, "\n") }
