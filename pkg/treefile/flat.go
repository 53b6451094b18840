package treefile

import (
	"strconv"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/tree"
)

// FlatNode is one row of a flat document. Name defaults to Key.
type FlatNode struct {
	Key      string `json:"key" yaml:"key" toml:"key"`
	Parent   string `json:"parent,omitempty" yaml:"parent,omitempty" toml:"parent,omitempty"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty" toml:"category,omitempty"`
}

// fromFlat assembles a nested spec. The parent links are checked as a
// directed graph: exactly one node without a parent, every parent known,
// and no cycles.
func fromFlat(rows []FlatNode) (tree.Spec, error) {
	g := simple.NewDirectedGraph()
	index := make(map[string]int64, len(rows))
	for i, r := range rows {
		if r.Key == "" {
			return tree.Spec{}, errors.New(errors.ErrCodeInvalidTree, "node %d has no key", i)
		}
		if _, dup := index[r.Key]; dup {
			return tree.Spec{}, errors.New(errors.ErrCodeInvalidTree, "duplicate key %q", r.Key)
		}
		name := r.Name
		if name == "" {
			name = r.Key
		}
		if err := errors.ValidateNodeName(name); err != nil {
			return tree.Spec{}, err
		}
		index[r.Key] = int64(i)
		g.AddNode(simple.Node(int64(i)))
	}

	root := -1
	children := make(map[int][]int, len(rows))
	for i, r := range rows {
		if r.Parent == "" {
			if root >= 0 {
				return tree.Spec{}, errors.New(errors.ErrCodeInvalidTree,
					"multiple roots: %q and %q", rows[root].Key, r.Key)
			}
			root = i
			continue
		}
		if r.Parent == r.Key {
			return tree.Spec{}, errors.New(errors.ErrCodeInvalidTree, "node %q is its own parent", r.Key)
		}
		p, ok := index[r.Parent]
		if !ok {
			return tree.Spec{}, errors.New(errors.ErrCodeInvalidTree, "node %q has unknown parent %q", r.Key, r.Parent)
		}
		g.SetEdge(g.NewEdge(simple.Node(p), simple.Node(int64(i))))
		children[int(p)] = append(children[int(p)], i)
	}
	if root < 0 {
		return tree.Spec{}, errors.New(errors.ErrCodeInvalidTree, "no root: every node has a parent")
	}
	if _, err := topo.Sort(g); err != nil {
		return tree.Spec{}, errors.Wrap(errors.ErrCodeInvalidTree, err, "parent links contain a cycle")
	}

	var build func(i int) tree.Spec
	build = func(i int) tree.Spec {
		r := rows[i]
		s := tree.Spec{Name: r.Name, Category: r.Category}
		if s.Name == "" {
			s.Name = r.Key
		}
		for _, c := range children[i] {
			s.Children = append(s.Children, build(c))
		}
		return s
	}
	return build(root), nil
}

// Flatten converts a spec into flat rows with generated keys ("1", "1.2",
// ...), parents before children.
func Flatten(s tree.Spec) []FlatNode {
	var out []FlatNode
	var visit func(s tree.Spec, key, parent string)
	visit = func(s tree.Spec, key, parent string) {
		out = append(out, FlatNode{Key: key, Parent: parent, Name: s.Name, Category: s.Category})
		for i, c := range s.Children {
			visit(c, key+"."+strconv.Itoa(i+1), key)
		}
	}
	visit(s, "1", "")
	return out
}
