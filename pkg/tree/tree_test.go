package tree

import (
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/arbor/pkg/errors"
)

// chain builds root -> A -> B -> C.
func chain() Spec {
	return Spec{Name: "root", Children: []Spec{
		{Name: "A", Children: []Spec{
			{Name: "B", Children: []Spec{
				{Name: "C"},
			}},
		}},
	}}
}

func sample() Spec {
	return Spec{Name: "root", Children: []Spec{
		{Name: "a", Category: "tools", Children: []Spec{{Name: "a1"}, {Name: "a2"}}},
		{Name: "b", Children: []Spec{{Name: "b1", Children: []Spec{{Name: "b1x"}}}}},
		{Name: "c"},
	}}
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func find(t *testing.T, tr *Tree, name string) *Node {
	t.Helper()
	var found *Node
	tr.Walk(func(n *Node) bool {
		if n.Name == name {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		t.Fatalf("node %q not found", name)
	}
	return found
}

func TestBuildAssignsPreorderIDs(t *testing.T) {
	tr := Build(sample())

	if tr.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", tr.Len())
	}
	var ids []ID
	tr.Walk(func(n *Node) bool {
		ids = append(ids, n.ID)
		return true
	})
	want := []ID{1, 2, 3, 4, 5, 6, 7, 8}
	if !slices.Equal(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestBuildExpandDepth(t *testing.T) {
	tests := []struct {
		depth int
		want  []string
	}{
		{-1, []string{"root", "a", "a1", "a2", "b", "b1", "b1x", "c"}},
		{0, []string{"root"}},
		{1, []string{"root", "a", "b", "c"}},
		{2, []string{"root", "a", "a1", "a2", "b", "b1", "c"}},
	}
	for _, tt := range tests {
		tr := Build(sample(), WithExpandDepth(tt.depth))
		if got := names(tr.Visible()); !slices.Equal(got, tt.want) {
			t.Errorf("WithExpandDepth(%d) visible = %v, want %v", tt.depth, got, tt.want)
		}
	}
}

func TestChildrenXorCollapsed(t *testing.T) {
	tr := Build(sample(), WithExpandDepth(1))
	tr.Toggle(find(t, tr, "b").ID)
	tr.ExpandAll()
	tr.CollapseAll()
	tr.Walk(func(n *Node) bool {
		if len(n.Children()) > 0 && len(n.Collapsed()) > 0 {
			t.Errorf("node %q has both visible and collapsed children", n.Name)
		}
		return true
	})
}

func TestToggle(t *testing.T) {
	tr := Build(sample())
	a := find(t, tr, "a")

	got, err := tr.Toggle(a.ID)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if got != a || !a.IsCollapsed() {
		t.Fatalf("Toggle() did not collapse %q", a.Name)
	}
	if n := len(tr.Visible()); n != 6 {
		t.Errorf("visible after collapse = %d, want 6", n)
	}

	tr.Toggle(a.ID)
	if !slices.Equal(names(a.Children()), []string{"a1", "a2"}) {
		t.Errorf("children after round trip = %v", names(a.Children()))
	}
}

func TestToggleLeafIsNoop(t *testing.T) {
	tr := Build(sample())
	c := find(t, tr, "c")
	before := names(tr.Visible())

	got, err := tr.Toggle(c.ID)
	if err != nil {
		t.Fatalf("Toggle(leaf) error = %v", err)
	}
	if got != c {
		t.Errorf("Toggle(leaf) returned %v, want %v", got, c)
	}
	if after := names(tr.Visible()); !slices.Equal(before, after) {
		t.Errorf("visible changed: %v -> %v", before, after)
	}
}

func TestUnknownIDs(t *testing.T) {
	tr := Build(sample())
	const bogus ID = 999

	if _, err := tr.Toggle(bogus); !errors.Is(err, errors.ErrCodeInvalidNodeReference) {
		t.Errorf("Toggle(bogus) error = %v, want INVALID_NODE_REFERENCE", err)
	}
	if err := tr.ExpandPath(bogus); !errors.Is(err, errors.ErrCodeInvalidNodeReference) {
		t.Errorf("ExpandPath(bogus) error = %v, want INVALID_NODE_REFERENCE", err)
	}
	if _, err := tr.Insert(bogus, Spec{Name: "x"}); !errors.Is(err, errors.ErrCodeInvalidNodeReference) {
		t.Errorf("Insert(bogus) error = %v, want INVALID_NODE_REFERENCE", err)
	}
}

func TestExpandPathChain(t *testing.T) {
	tr := Build(chain(), WithExpandDepth(1))
	if got := names(tr.Visible()); !slices.Equal(got, []string{"root", "A"}) {
		t.Fatalf("initial visible = %v, want [root A]", got)
	}

	c := find(t, tr, "C")
	if err := tr.ExpandPath(c.ID); err != nil {
		t.Fatalf("ExpandPath() error = %v", err)
	}
	want := []string{"root", "A", "B", "C"}
	if got := names(tr.Visible()); !slices.Equal(got, want) {
		t.Errorf("visible after ExpandPath = %v, want %v", got, want)
	}

	// Idempotent.
	tr.ExpandPath(c.ID)
	if got := names(tr.Visible()); !slices.Equal(got, want) {
		t.Errorf("visible after second ExpandPath = %v, want %v", got, want)
	}

	tr.Toggle(find(t, tr, "A").ID)
	if got := names(tr.Visible()); !slices.Equal(got, []string{"root", "A"}) {
		t.Errorf("visible after Toggle(A) = %v, want [root A]", got)
	}
}

func TestExpandPathLeavesTargetAlone(t *testing.T) {
	tr := Build(sample(), WithExpandDepth(1))
	b := find(t, tr, "b")
	if err := tr.ExpandPath(b.ID); err != nil {
		t.Fatal(err)
	}
	if !b.IsCollapsed() {
		t.Error("ExpandPath expanded the target node itself")
	}
}

func TestCollapseAllKeepsRootExpanded(t *testing.T) {
	tr := Build(sample())
	tr.CollapseAll()
	want := []string{"root", "a", "b", "c"}
	if got := names(tr.Visible()); !slices.Equal(got, want) {
		t.Errorf("visible after CollapseAll = %v, want %v", got, want)
	}

	tr.ExpandAll()
	if got := len(tr.Visible()); got != tr.Len() {
		t.Errorf("visible after ExpandAll = %d, want %d", got, tr.Len())
	}
}

func TestIDsNeverReused(t *testing.T) {
	tr := Build(sample())
	b := find(t, tr, "b")
	removed := map[ID]bool{}
	tr.Walk(func(n *Node) bool {
		if n == b || slices.Contains(mustAncestors(t, tr, n.ID), b) {
			removed[n.ID] = true
		}
		return true
	})

	if err := tr.Remove(b.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok := tr.Node(b.ID); ok {
		t.Error("removed node still indexed")
	}

	n, err := tr.Insert(tr.Root().ID, Spec{Name: "d", Children: []Spec{{Name: "d1"}}})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	for _, id := range []ID{n.ID, n.Children()[0].ID} {
		if removed[id] {
			t.Errorf("id %d reused after removal", id)
		}
	}
	if n.ID != 9 {
		t.Errorf("new id = %d, want 9", n.ID)
	}
}

func TestRemoveRoot(t *testing.T) {
	tr := Build(sample())
	if err := tr.Remove(tr.Root().ID); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Remove(root) error = %v, want INVALID_INPUT", err)
	}
}

func TestInsertUnderCollapsedParent(t *testing.T) {
	tr := Build(sample(), WithExpandDepth(1))
	a := find(t, tr, "a")
	n, _ := tr.Insert(a.ID, Spec{Name: "a3"})
	if slices.Contains(tr.Visible(), n) {
		t.Error("node inserted under collapsed parent is visible")
	}
	if n.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", n.Depth())
	}
}

func TestBranch(t *testing.T) {
	tr := Build(sample())
	tests := map[string]string{
		"root": "",
		"a":    "tools",
		"a1":   "a",
		"b":    "b",
		"b1x":  "b",
	}
	for name, want := range tests {
		if got := find(t, tr, name).Branch(); got != want {
			t.Errorf("Branch(%s) = %q, want %q", name, got, want)
		}
	}
}

func TestLines(t *testing.T) {
	n := &Node{Name: "first\nsecond"}
	if got := n.Lines(); !slices.Equal(got, []string{"first", "second"}) {
		t.Errorf("Lines() = %v", got)
	}
}

func TestSpecRoundTrip(t *testing.T) {
	tr := Build(sample(), WithExpandDepth(1))
	got := Build(tr.Spec())
	if got.Len() != tr.Len() {
		t.Errorf("Len() = %d, want %d", got.Len(), tr.Len())
	}
}

func mustAncestors(t *testing.T, tr *Tree, id ID) []*Node {
	t.Helper()
	a, err := tr.Ancestors(id)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func genSpec(rt *rapid.T, depth int) Spec {
	s := Spec{Name: rapid.StringMatching(`[a-z]{1,6}`).Draw(rt, "name")}
	if depth == 0 {
		return s
	}
	n := rapid.IntRange(0, 3).Draw(rt, "children")
	for range n {
		s.Children = append(s.Children, genSpec(rt, depth-1))
	}
	return s
}

func TestToggleRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tr := Build(genSpec(rt, 4), WithExpandDepth(rapid.IntRange(-1, 4).Draw(rt, "expand")))
		var ids []ID
		tr.Walk(func(n *Node) bool {
			ids = append(ids, n.ID)
			return true
		})
		id := rapid.SampledFrom(ids).Draw(rt, "target")
		n, _ := tr.Node(id)

		before := slices.Clone(n.AllChildren())
		wasExpanded := n.IsExpanded()
		tr.Toggle(id)
		tr.Toggle(id)

		if !slices.Equal(before, n.AllChildren()) {
			rt.Fatalf("children changed after double toggle")
		}
		if n.IsExpanded() != wasExpanded {
			rt.Fatalf("expanded state changed after double toggle")
		}
	})
}
