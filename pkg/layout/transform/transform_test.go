package transform

import (
	"math"
	"slices"
	"sort"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/tree"
)

// crowded returns layout options whose grid is narrower than the boxes, so
// the tidy layout alone produces overlaps.
func crowded() layout.Options {
	o := layout.DefaultOptions()
	o.NodeSize = layout.Cell{Breadth: 60, Depth: 100}
	return o
}

func leaves(names ...string) []tree.Spec {
	out := make([]tree.Spec, len(names))
	for i, n := range names {
		out[i] = tree.Spec{Name: n}
	}
	return out
}

func assertGaps(t interface{ Fatalf(string, ...any) }, l *layout.Layout, gap float64) {
	rows := map[int][]layout.Node{}
	for _, n := range l.Nodes {
		rows[n.Depth] = append(rows[n.Depth], n)
	}
	for depth, row := range rows {
		sort.Slice(row, func(i, j int) bool { return row[i].X < row[j].X })
		for i := 1; i < len(row); i++ {
			if got := row[i].Left() - row[i-1].Right(); got < gap-1e-6 {
				t.Fatalf("depth %d: gap between %q and %q = %v, want >= %v",
					depth, row[i-1].Name, row[i].Name, got, gap)
			}
		}
	}
}

func TestResolveCollisionsSeparatesBoxes(t *testing.T) {
	tr := tree.Build(tree.Spec{Name: "root", Children: []tree.Spec{
		{Name: "a", Children: leaves("a1", "a2", "a3")},
		{Name: "b", Children: leaves("b1")},
		{Name: "c"},
	}})
	l := layout.Compute(tr.Root(), 1024, crowded())
	opts := DefaultOptions()

	ResolveCollisions(l, opts)
	assertGaps(t, l, opts.MinGap)
}

func TestResolveCollisionsMovesSubtree(t *testing.T) {
	tr := tree.Build(tree.Spec{Name: "root", Children: []tree.Spec{
		{Name: "a"},
		{Name: "b", Children: leaves("b1")},
	}})
	l := layout.Compute(tr.Root(), 1024, crowded())
	b, _ := l.Node(tr.Root().Children()[1].ID)
	b1, _ := l.Node(tr.Root().Children()[1].Children()[0].ID)
	offset := b1.X - b.X

	ResolveCollisions(l, DefaultOptions())

	b, _ = l.Node(tr.Root().Children()[1].ID)
	b1, _ = l.Node(tr.Root().Children()[1].Children()[0].ID)
	if got := b1.X - b.X; math.Abs(got-offset) > 1e-9 {
		t.Errorf("child offset = %v, want %v (subtree should move as a unit)", got, offset)
	}
}

func TestResolveCollisionsKeepsSpaciousLayout(t *testing.T) {
	tr := tree.Build(tree.Spec{Name: "root", Children: leaves("a", "b", "c")})
	l := layout.Compute(tr.Root(), 1024, layout.DefaultOptions())
	before := slices.Clone(l.Nodes)

	ResolveCollisions(l, DefaultOptions())
	if !slices.Equal(before, l.Nodes) {
		t.Error("collision pass moved nodes that already had room")
	}
}

func TestStaggerLeaves(t *testing.T) {
	tr := tree.Build(tree.Spec{Name: "root", Children: []tree.Spec{
		{Name: "a"},
		{Name: "b\nsecond line"},
		{Name: "c", Children: leaves("c1")},
	}})
	opts := DefaultOptions()
	opts.StaggerBase = 4
	l := layout.Compute(tr.Root(), 1024, layout.DefaultOptions())
	base := map[string]float64{}
	for _, n := range l.Nodes {
		base[n.Name] = n.Y
	}

	StaggerLeaves(l, opts)

	got := map[string]float64{}
	for _, n := range l.Nodes {
		got[n.Name] = n.Y - base[n.Name]
	}
	want := map[string]float64{
		"root":          0,
		"a":             4,
		"b\nsecond line": 4 + opts.StaggerStride + opts.MultilineExtra,
		"c":             0,
		"c1":            4,
	}
	for name, w := range want {
		if math.Abs(got[name]-w) > 1e-9 {
			t.Errorf("offset(%q) = %v, want %v", name, got[name], w)
		}
	}
}

func TestStaggerCycle(t *testing.T) {
	tr := tree.Build(tree.Spec{Name: "root", Children: leaves("a", "b", "c", "d")})
	opts := DefaultOptions()
	opts.StaggerCycle = 2
	l := layout.Compute(tr.Root(), 1024, layout.DefaultOptions())
	y0 := l.Nodes[1].Y

	StaggerLeaves(l, opts)

	var offsets []float64
	for _, n := range l.Nodes[1:] {
		offsets = append(offsets, n.Y-y0)
	}
	want := []float64{0, opts.StaggerStride, 0, opts.StaggerStride}
	if !slices.Equal(offsets, want) {
		t.Errorf("offsets = %v, want %v", offsets, want)
	}
}

func TestStaggerSkipsLonelyRoot(t *testing.T) {
	tr := tree.Build(tree.Spec{Name: "root"})
	l := Resolve(layout.Compute(tr.Root(), 1024, layout.DefaultOptions()), DefaultOptions())
	if l.Nodes[0].Y != 0 {
		t.Errorf("root.Y = %v, want 0", l.Nodes[0].Y)
	}
}

func genSpec(rt *rapid.T, depth int) tree.Spec {
	s := tree.Spec{Name: rapid.StringMatching(`[a-z]{1,4}`).Draw(rt, "name")}
	if depth == 0 {
		return s
	}
	for range rapid.IntRange(0, 4).Draw(rt, "children") {
		s.Children = append(s.Children, genSpec(rt, depth-1))
	}
	return s
}

func TestResolveProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		spec := genSpec(rt, 4)
		expand := rapid.IntRange(-1, 4).Draw(rt, "expand")
		opts := DefaultOptions()
		opts.MinGap = rapid.Float64Range(0, 40).Draw(rt, "gap")

		run := func() *layout.Layout {
			tr := tree.Build(spec, tree.WithExpandDepth(expand))
			return Resolve(layout.Compute(tr.Root(), 900, crowded()), opts)
		}
		a, b := run(), run()

		if !slices.Equal(a.Nodes, b.Nodes) {
			rt.Fatalf("resolve is not deterministic")
		}
		assertGaps(rt, a, opts.MinGap)
	})
}
