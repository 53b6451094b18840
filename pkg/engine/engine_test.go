package engine

import (
	"bytes"
	"context"
	"io"
	"math"
	"regexp"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/geom"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/theme"
	"github.com/matzehuels/arbor/pkg/tree"
	"github.com/matzehuels/arbor/pkg/viewport"
)

var screen = geom.Size{W: 1024, H: 768}

type fakeClock struct{ now time.Duration }

func (c *fakeClock) Now() time.Duration { return c.now }

func newEngine(t *testing.T, spec tree.Spec, depth int, opts ...Option) (*Engine, *fakeClock) {
	t.Helper()
	clk := &fakeClock{}
	base := []Option{
		WithClock(clk.Now),
		WithLogger(log.New(io.Discard)),
	}
	e := New(tree.Build(spec, tree.WithExpandDepth(depth)), screen, append(base, opts...)...)
	return e, clk
}

func chain() tree.Spec {
	return tree.Spec{Name: "root", Children: []tree.Spec{
		{Name: "A", Children: []tree.Spec{
			{Name: "B", Children: []tree.Spec{{Name: "C"}}},
		}},
	}}
}

func find(t *testing.T, e *Engine, name string) tree.ID {
	t.Helper()
	var id tree.ID
	e.Tree().Walk(func(n *tree.Node) bool {
		if n.Name == name {
			id = n.ID
		}
		return true
	})
	if id == 0 {
		t.Fatalf("node %q not found", name)
	}
	return id
}

func frameNodes(s render.Scene) []tree.ID {
	return s.NodeIDs()
}

func frameEdges(s render.Scene) []tree.ID {
	var out []tree.ID
	for _, c := range s.Commands {
		if c.Role == render.RoleEdge {
			out = append(out, c.ID)
		}
	}
	return out
}

func TestChainExpandPathThenToggle(t *testing.T) {
	e, _ := newEngine(t, chain(), 1)
	e.Start()
	e.Settle()

	a, b, c := find(t, e, "A"), find(t, e, "B"), find(t, e, "C")
	if got := frameNodes(e.Frame()); len(got) != 2 {
		t.Fatalf("initial nodes = %v, want root and A", got)
	}

	if err := e.ExpandPath(c); err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	e.Settle()
	got := frameNodes(e.Frame())
	if want := []tree.ID{1, a, b, c}; !slices.Equal(got, want) {
		t.Fatalf("after ExpandPath nodes = %v, want %v", got, want)
	}

	if err := e.Toggle(a); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	e.Settle()
	s := e.Frame()
	if got := frameNodes(s); !slices.Equal(got, []tree.ID{1, a}) {
		t.Errorf("after Toggle nodes = %v, want [1 %d]", got, a)
	}
	if got := frameEdges(s); !slices.Equal(got, []tree.ID{a}) {
		t.Errorf("after Toggle edges = %v, want [%d]", got, a)
	}
}

func TestToggleExitsAnimateBeforeRemoval(t *testing.T) {
	e, clk := newEngine(t, chain(), -1)
	e.Start()
	e.Settle()

	e.Toggle(find(t, e, "A"))
	clk.now = 100 * time.Millisecond
	if !e.Tick() {
		t.Fatal("Tick() = false mid transition")
	}
	if got := len(frameNodes(e.Frame())); got != 4 {
		t.Errorf("mid-exit nodes = %d, want 4", got)
	}
	clk.now = time.Second
	if e.Tick() {
		t.Error("Tick() = true after the transition ended")
	}
	if got := len(frameNodes(e.Frame())); got != 2 {
		t.Errorf("settled nodes = %d, want 2", got)
	}
}

func deepSpec() tree.Spec {
	return tree.Spec{Name: "root", Children: []tree.Spec{
		{Name: "x", Children: []tree.Spec{
			{Name: "y", Children: []tree.Spec{
				{Name: "z", Children: []tree.Spec{{Name: "Needle"}, {Name: "hay"}}},
			}},
			{Name: "w", Children: []tree.Spec{{Name: "straw"}}},
		}},
		{Name: "v", Children: []tree.Spec{{Name: "chaff"}}},
	}}
}

func TestSearchRevealsAndCenters(t *testing.T) {
	e, _ := newEngine(t, deepSpec(), 1)
	e.Start()
	e.Settle()

	st, err := e.Search("needle")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	needle := find(t, e, "Needle")
	if !slices.Equal(st.Matches, []tree.ID{needle}) {
		t.Fatalf("matches = %v, want [%d]", st.Matches, needle)
	}
	e.Settle()

	for _, name := range []string{"x", "y", "z"} {
		n, _ := e.Tree().Node(find(t, e, name))
		if !n.IsExpanded() {
			t.Errorf("ancestor %s not expanded", name)
		}
	}
	for _, name := range []string{"w", "v"} {
		n, _ := e.Tree().Node(find(t, e, name))
		if n.IsExpanded() {
			t.Errorf("unrelated node %s expanded", name)
		}
	}

	var pos geom.Point
	for _, c := range e.Frame().Commands {
		if c.Role == render.RoleNode && c.ID == needle {
			pos = e.Transform().Apply(c.Center)
		}
	}
	if math.Abs(pos.X-screen.W/2) > 1 || math.Abs(pos.Y-screen.H/2) > 1 {
		t.Errorf("needle on screen at %v, want within 1px of (%v,%v)", pos, screen.W/2, screen.H/2)
	}
}

func TestSearchKeepsScale(t *testing.T) {
	e, _ := newEngine(t, deepSpec(), 1)
	e.Start()
	e.ZoomIn()
	e.Settle()
	scale := e.Transform().Scale

	e.Search("straw")
	e.Settle()
	if got := e.Transform().Scale; got != scale {
		t.Errorf("scale after search = %v, want %v", got, scale)
	}
}

func TestSearchNoMatchLeavesStructure(t *testing.T) {
	e, _ := newEngine(t, deepSpec(), 1)
	e.Start()
	e.Settle()
	before := e.Layout()
	tr := e.Transform()

	for _, q := range []string{"", "   ", "nothing-here"} {
		st, err := e.Search(q)
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if !st.Empty() {
			t.Errorf("Search(%q) matches = %v", q, st.Matches)
		}
	}
	e.Settle()
	if e.Layout() != before {
		t.Error("search without matches relayouted")
	}
	if e.Transform() != tr {
		t.Error("search without matches moved the view")
	}
}

func TestClearSearchKeepsExpandState(t *testing.T) {
	e, _ := newEngine(t, deepSpec(), 1)
	e.Start()
	e.Search("needle")
	e.Settle()
	visible := len(e.Tree().Visible())

	e.ClearSearch()
	e.Settle()
	if got := len(e.Tree().Visible()); got != visible {
		t.Errorf("visible after clear = %d, want %d", got, visible)
	}
	for _, c := range e.Frame().Commands {
		if c.Role == render.RoleHighlight {
			t.Fatalf("highlight %d survived ClearSearch", c.ID)
		}
	}
}

var nodeIDRe = regexp.MustCompile(`id="node-(\d+)"`)

func svgNodeIDs(t *testing.T, svg []byte) []tree.ID {
	t.Helper()
	var out []tree.ID
	for _, m := range nodeIDRe.FindAllSubmatch(svg, -1) {
		n, err := strconv.ParseUint(string(m[1]), 10, 64)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, tree.ID(n))
	}
	slices.Sort(out)
	return out
}

func TestExportAfterExpandAll(t *testing.T) {
	e, _ := newEngine(t, deepSpec(), 1)
	e.Start()
	e.Settle()

	e.ExpandAll()
	svg, err := e.ExportVector()
	if err != nil {
		t.Fatalf("ExportVector: %v", err)
	}

	var want []tree.ID
	e.Tree().Walk(func(n *tree.Node) bool {
		want = append(want, n.ID)
		return true
	})
	slices.Sort(want)
	if got := svgNodeIDs(t, svg); !slices.Equal(got, want) {
		t.Errorf("exported ids = %v, want %v", got, want)
	}
}

func TestExportAfterCollapseHasNoStaleIDs(t *testing.T) {
	e, _ := newEngine(t, deepSpec(), -1)
	e.Start()
	e.Settle()
	e.CollapseAll()
	e.Settle()

	svg, err := e.ExportVector()
	if err != nil {
		t.Fatal(err)
	}
	want := e.Layout().IDs()
	slices.Sort(want)
	if got := svgNodeIDs(t, svg); !slices.Equal(got, want) {
		t.Errorf("exported ids = %v, want %v", got, want)
	}
}

func TestExportBeforeLayoutIsNoop(t *testing.T) {
	e, _ := newEngine(t, chain(), -1)
	for _, f := range Formats {
		data, err := e.Export(context.Background(), f)
		if data != nil || err != nil {
			t.Errorf("Export(%s) before layout = (%d bytes, %v), want (nil, nil)", f, len(data), err)
		}
	}
	img, err := e.ExportRaster()
	if img != nil || err != nil {
		t.Errorf("ExportRaster() before layout = (%v, %v)", img, err)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	e, _ := newEngine(t, chain(), -1)
	e.Start()
	_, err := e.Export(context.Background(), "gif")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestExportAll(t *testing.T) {
	e, _ := newEngine(t, deepSpec(), -1)
	e.Start()
	e.Settle()

	out, err := e.ExportAll(context.Background(), []string{FormatSVG, FormatJSON, FormatDOT, FormatPNG})
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	single, err := e.ExportVector()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out[FormatSVG], single) {
		t.Error("concurrent SVG differs from a single export of the same frame")
	}
	if !bytes.HasPrefix(out[FormatPNG], []byte("\x89PNG")) {
		t.Error("png export lacks the PNG signature")
	}
	if !bytes.Contains(out[FormatDOT], []byte("digraph")) {
		t.Error("dot export is not a digraph")
	}
	if len(out[FormatJSON]) == 0 {
		t.Error("json export is empty")
	}

	if _, err := e.ExportAll(context.Background(), []string{FormatSVG, "gif"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ExportAll with gif = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestInvalidNodeReference(t *testing.T) {
	e, _ := newEngine(t, chain(), 1)
	e.Start()
	e.Settle()
	before := e.Layout()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"toggle", func() error { return e.Toggle(99) }},
		{"expand path", func() error { return e.ExpandPath(99) }},
		{"center", func() error { return e.CenterOn(99) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			if !errors.Is(err, errors.ErrCodeInvalidNodeReference) {
				t.Errorf("err = %v, want %s", err, errors.ErrCodeInvalidNodeReference)
			}
			if e.Layout() != before {
				t.Error("failed command relayouted")
			}
		})
	}
}

func TestToggleLeafIsNoop(t *testing.T) {
	e, _ := newEngine(t, chain(), -1)
	e.Start()
	e.Settle()
	before := e.Layout()
	if err := e.Toggle(find(t, e, "C")); err != nil {
		t.Fatalf("Toggle(leaf) = %v", err)
	}
	if e.Layout() != before || e.Animating() {
		t.Error("toggling a leaf started a layout pass")
	}
}

func TestZoomComposes(t *testing.T) {
	e, clk := newEngine(t, chain(), -1)
	e.Start()
	e.Settle()
	e.PanBy(0, 0)
	e.Viewport().Set(viewport.Transform{Scale: 1})

	e.ZoomIn()
	clk.now = 10 * time.Millisecond
	e.Tick()
	e.ZoomIn()
	e.Settle()
	if got := e.Transform().Scale; math.Abs(got-1.44) > 1e-9 {
		t.Errorf("scale after two zoom steps = %v, want 1.44", got)
	}

	for range 20 {
		e.ZoomIn()
	}
	e.Settle()
	if got := e.Transform().Scale; got != viewport.DefaultBounds.Max {
		t.Errorf("scale = %v, want clamp %v", got, viewport.DefaultBounds.Max)
	}
}

func TestZoomStepFallsBackToDefault(t *testing.T) {
	for _, step := range []float64{0, 1, -2} {
		e, _ := newEngine(t, chain(), -1, WithViewport(viewport.DefaultBounds, 20, step))
		e.Start()
		e.Settle()
		e.Viewport().Set(viewport.Transform{Scale: 1})

		e.ZoomIn()
		e.Settle()
		if got := e.Transform().Scale; math.Abs(got-1.2) > 1e-9 {
			t.Errorf("step %v: scale after zoom in = %v, want 1.2", step, got)
		}
		e.ZoomOut()
		e.Settle()
		if got := e.Transform().Scale; math.Abs(got-1) > 1e-9 {
			t.Errorf("step %v: scale after zoom out = %v, want 1", step, got)
		}
	}
}

func TestPanStopsViewAnimation(t *testing.T) {
	e, _ := newEngine(t, chain(), -1)
	e.Start()
	e.Settle()
	e.ZoomIn()
	before := e.Transform()
	e.PanBy(10, 5)
	if e.Animating() {
		t.Error("view animation still running after pan")
	}
	got := e.Transform()
	if got.X != before.X+10 || got.Y != before.Y+5 || got.Scale != before.Scale {
		t.Errorf("PanBy() = %+v, want %+v shifted by (10,5)", got, before)
	}
}

func TestResizeKeepsCollapseState(t *testing.T) {
	e, _ := newEngine(t, deepSpec(), 1)
	e.Start()
	e.Settle()
	visible := len(e.Tree().Visible())

	e.Resize(geom.Size{W: 480, H: 800})
	e.Settle()
	if got := len(e.Tree().Visible()); got != visible {
		t.Errorf("visible after resize = %d, want %d", got, visible)
	}
	if got := e.Layout().ViewportWidth; got != 480 {
		t.Errorf("layout width = %v, want 480", got)
	}
	bbox := e.Layout().Bounds()
	c := e.Transform().Apply(bbox.Center())
	if math.Abs(c.X-240) > 1e-6 || math.Abs(c.Y-400) > 1e-6 {
		t.Errorf("content center on screen = %v, want (240,400)", c)
	}
}

func TestDegenerateResizeKeepsTransform(t *testing.T) {
	e, _ := newEngine(t, chain(), -1)
	e.Start()
	e.Settle()
	before := e.Transform()
	e.Resize(geom.Size{})
	if e.Transform() != before {
		t.Errorf("transform = %+v after zero resize, want %+v", e.Transform(), before)
	}
}

func TestFitWidthMode(t *testing.T) {
	e, _ := newEngine(t, deepSpec(), -1, WithFitMode(viewport.FitWidth))
	e.Start()
	if got := e.Transform().Scale; got != 1 {
		t.Errorf("fit-width scale = %v, want 1", got)
	}
}

func TestThemeChanged(t *testing.T) {
	dark := false
	p := theme.Func(func() theme.Palette {
		if dark {
			return theme.Dark
		}
		return theme.Light
	})
	e, _ := newEngine(t, chain(), -1, WithTheme(p))
	e.Start()
	e.Settle()
	before := e.Layout()

	dark = true
	if e.Frame().Background != theme.Light.Background {
		t.Error("palette changed before ThemeChanged")
	}
	e.ThemeChanged()
	if e.Frame().Background != theme.Dark.Background {
		t.Error("palette not applied after ThemeChanged")
	}
	if e.Layout() != before {
		t.Error("theme change relayouted")
	}
}

func TestDo(t *testing.T) {
	e, _ := newEngine(t, deepSpec(), 1)
	e.Start()

	res, err := e.Do(Command{Name: CmdSearch, Query: "hay"})
	if err != nil || len(res.Matches) != 1 {
		t.Errorf("Do(search) = %+v, %v", res, err)
	}
	res, err = e.Do(Command{Name: CmdExportVector})
	if err != nil || !bytes.HasPrefix(bytes.TrimSpace(res.Data), []byte("<?xml")) {
		t.Errorf("Do(export-vector) = %d bytes, %v", len(res.Data), err)
	}
	if _, err := e.Do(Command{Name: CmdResize}); !errors.Is(err, errors.ErrCodeInvalidCommand) {
		t.Errorf("Do(resize 0x0) err = %v", err)
	}
	if _, err := e.Do(Command{Name: "dance"}); !errors.Is(err, errors.ErrCodeInvalidCommand) {
		t.Errorf("Do(unknown) err = %v", err)
	}
	for _, name := range Commands {
		if !ValidCommand(name) {
			t.Errorf("ValidCommand(%q) = false", name)
		}
	}
}

func TestEnginesAreIndependent(t *testing.T) {
	a, _ := newEngine(t, chain(), -1)
	b, _ := newEngine(t, chain(), -1)
	if a.ID() == b.ID() {
		t.Fatal("engines share an id")
	}
	a.Start()
	b.Start()
	a.CollapseAll()
	if len(b.Tree().Visible()) != 4 {
		t.Error("collapsing one engine changed the other")
	}
}
