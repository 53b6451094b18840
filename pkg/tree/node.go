package tree

import "strings"

// ID identifies a node for the lifetime of its tree. Zero is never assigned.
type ID uint64

// Spec describes a subtree before ids are assigned. It is the shape decoded
// from tree documents.
type Spec struct {
	Name     string `json:"name" yaml:"name" toml:"name"`
	Category string `json:"category,omitempty" yaml:"category,omitempty" toml:"category,omitempty"`
	Children []Spec `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
}

// Count returns the number of nodes in s including s itself.
func (s Spec) Count() int {
	n := 1
	for _, c := range s.Children {
		n += c.Count()
	}
	return n
}

// Node is a single element of a [Tree].
//
// At most one of the visible and collapsed child lists is populated.
type Node struct {
	ID       ID
	Name     string
	Category string

	children  []*Node
	collapsed []*Node
	parent    *Node
	depth     int
}

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Depth returns the number of edges between n and the root.
func (n *Node) Depth() int { return n.depth }

// Children returns the visible children. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Collapsed returns the hidden children. The slice must not be modified.
func (n *Node) Collapsed() []*Node { return n.collapsed }

// AllChildren returns the children regardless of collapse state.
func (n *Node) AllChildren() []*Node {
	if len(n.children) > 0 {
		return n.children
	}
	return n.collapsed
}

// IsLeaf reports whether n has no children at all, visible or collapsed.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 && len(n.collapsed) == 0 }

// IsExpanded reports whether n currently shows its children.
func (n *Node) IsExpanded() bool { return len(n.children) > 0 }

// IsCollapsed reports whether n hides children that could be expanded.
func (n *Node) IsCollapsed() bool { return len(n.collapsed) > 0 }

// Lines returns the label split on line breaks. An empty name yields one
// empty line so every node occupies at least one text row.
func (n *Node) Lines() []string { return strings.Split(n.Name, "\n") }

// Branch names the top-level branch n belongs to, used for coloring. An
// explicit category wins; otherwise it is the name of the depth-1 ancestor.
// The root has no branch.
func (n *Node) Branch() string {
	if n.Category != "" {
		return n.Category
	}
	cur := n
	for cur.parent != nil && cur.parent.parent != nil {
		cur = cur.parent
	}
	if cur.parent == nil {
		return ""
	}
	return cur.Lines()[0]
}

// expand moves collapsed children to the visible list. Reports whether
// anything changed.
func (n *Node) expand() bool {
	if len(n.collapsed) == 0 {
		return false
	}
	n.children, n.collapsed = n.collapsed, nil
	return true
}

// collapse moves visible children to the collapsed list. Reports whether
// anything changed.
func (n *Node) collapse() bool {
	if len(n.children) == 0 {
		return false
	}
	n.collapsed, n.children = n.children, nil
	return true
}

// spec converts the subtree back into a Spec, collapsed children included.
func (n *Node) spec() Spec {
	s := Spec{Name: n.Name, Category: n.Category}
	for _, c := range n.AllChildren() {
		s.Children = append(s.Children, c.spec())
	}
	return s
}
