package tree

import (
	"slices"

	"github.com/matzehuels/arbor/pkg/errors"
)

// Tree owns a hierarchy of nodes and the id allocator for it.
type Tree struct {
	root   *Node
	index  map[ID]*Node
	nextID ID
}

// BuildOption configures [Build].
type BuildOption func(*buildConfig)

type buildConfig struct {
	expandDepth int // -1 expands everything
}

// WithExpandDepth collapses the children of every node at depth >= d, so
// only nodes up to depth d are visible after construction. d=1 shows the
// root and its direct children. Negative values expand everything.
func WithExpandDepth(d int) BuildOption {
	return func(c *buildConfig) { c.expandDepth = d }
}

// Build assigns ids in pre-order starting at 1 and applies the initial
// collapse state.
func Build(spec Spec, opts ...BuildOption) *Tree {
	cfg := buildConfig{expandDepth: -1}
	for _, o := range opts {
		o(&cfg)
	}

	t := &Tree{index: make(map[ID]*Node, spec.Count())}
	t.root = t.attach(nil, spec, 0)
	if cfg.expandDepth >= 0 {
		t.walkAll(t.root, func(n *Node) bool {
			if n.depth >= cfg.expandDepth {
				n.collapse()
			}
			return true
		})
	}
	return t
}

func (t *Tree) attach(parent *Node, s Spec, depth int) *Node {
	t.nextID++
	n := &Node{
		ID:       t.nextID,
		Name:     s.Name,
		Category: s.Category,
		parent:   parent,
		depth:    depth,
	}
	t.index[n.ID] = n
	for _, cs := range s.Children {
		n.children = append(n.children, t.attach(n, cs, depth+1))
	}
	return n
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Len returns the number of nodes, collapsed ones included.
func (t *Tree) Len() int { return len(t.index) }

// Node looks up a node by id.
func (t *Tree) Node(id ID) (*Node, bool) {
	n, ok := t.index[id]
	return n, ok
}

func (t *Tree) lookup(op string, id ID) (*Node, error) {
	n, ok := t.index[id]
	if !ok {
		return nil, &errors.NodeRefError{Op: op, ID: uint64(id)}
	}
	return n, nil
}

// Toggle swaps n between expanded and collapsed and returns it. Toggling a
// leaf returns the leaf unchanged.
func (t *Tree) Toggle(id ID) (*Node, error) {
	n, err := t.lookup("toggle", id)
	if err != nil {
		return nil, err
	}
	if !n.expand() {
		n.collapse()
	}
	return n, nil
}

// ExpandPath expands every collapsed ancestor of id so that the node is
// visible. The node itself keeps its state. Calling it again is a no-op.
func (t *Tree) ExpandPath(id ID) error {
	n, err := t.lookup("expand path", id)
	if err != nil {
		return err
	}
	for p := n.parent; p != nil; p = p.parent {
		p.expand()
	}
	return nil
}

// Ancestors returns the ancestors of id ordered from the root down,
// excluding the node itself.
func (t *Tree) Ancestors(id ID) ([]*Node, error) {
	n, err := t.lookup("ancestors", id)
	if err != nil {
		return nil, err
	}
	var out []*Node
	for p := n.parent; p != nil; p = p.parent {
		out = append(out, p)
	}
	slices.Reverse(out)
	return out, nil
}

// ExpandAll expands every node.
func (t *Tree) ExpandAll() {
	t.walkAll(t.root, func(n *Node) bool {
		n.expand()
		return true
	})
}

// CollapseAll collapses every node except the root, leaving the root and
// its direct children visible.
func (t *Tree) CollapseAll() {
	t.root.expand()
	t.walkAll(t.root, func(n *Node) bool {
		if n != t.root {
			n.collapse()
		}
		return true
	})
}

// Visible returns the visible nodes in pre-order.
func (t *Tree) Visible() []*Node {
	var out []*Node
	var visit func(n *Node)
	visit = func(n *Node) {
		out = append(out, n)
		for _, c := range n.children {
			visit(c)
		}
	}
	visit(t.root)
	return out
}

// Walk calls fn for every node in pre-order, collapsed subtrees included.
// Returning false from fn skips the node's descendants.
func (t *Tree) Walk(fn func(n *Node) bool) {
	t.walkAll(t.root, fn)
}

func (t *Tree) walkAll(n *Node, fn func(n *Node) bool) {
	// Snapshot the list first: fn may move children between lists.
	kids := n.AllChildren()
	if !fn(n) {
		return
	}
	for _, c := range kids {
		t.walkAll(c, fn)
	}
}

// Insert adds a subtree under parent. If the parent is collapsed the new
// subtree is hidden with its siblings.
func (t *Tree) Insert(parent ID, s Spec) (*Node, error) {
	p, err := t.lookup("insert", parent)
	if err != nil {
		return nil, err
	}
	n := t.attach(p, s, p.depth+1)
	if p.IsCollapsed() {
		p.collapsed = append(p.collapsed, n)
	} else {
		p.children = append(p.children, n)
	}
	return n, nil
}

// Remove detaches the subtree rooted at id. The root cannot be removed.
// Removed ids are never handed out again.
func (t *Tree) Remove(id ID) error {
	n, err := t.lookup("remove", id)
	if err != nil {
		return err
	}
	if n.parent == nil {
		return errors.New(errors.ErrCodeInvalidInput, "remove: cannot remove the root")
	}
	p := n.parent
	p.children = slices.DeleteFunc(p.children, func(c *Node) bool { return c == n })
	p.collapsed = slices.DeleteFunc(p.collapsed, func(c *Node) bool { return c == n })
	if len(p.children) == 0 {
		p.children = nil
	}
	if len(p.collapsed) == 0 {
		p.collapsed = nil
	}
	t.walkAll(n, func(d *Node) bool {
		delete(t.index, d.ID)
		return true
	})
	n.parent = nil
	return nil
}

// Spec returns the full hierarchy as a Spec, ignoring collapse state.
func (t *Tree) Spec() Spec { return t.root.spec() }
