// Package search finds tree nodes by name.
//
// Matching is a case-insensitive substring test over every node, collapsed
// ones included, in pre-order. The engine reveals the first match; this
// package only finds.
package search

import (
	"strings"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/tree"
)

// Normalize trims the query and folds case. An empty result matches nothing.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Match returns the ids of nodes whose name contains query, in pre-order.
// A blank query returns nil.
func Match(t *tree.Tree, query string) []tree.ID {
	q := Normalize(query)
	if q == "" {
		return nil
	}
	var out []tree.ID
	t.Walk(func(n *tree.Node) bool {
		if strings.Contains(strings.ToLower(n.Name), q) {
			out = append(out, n.ID)
		}
		return true
	})
	return out
}

// State is the result of the last search.
type State struct {
	Query   string
	Matches []tree.ID
	current int
}

// Run validates query and records its matches against t.
func Run(t *tree.Tree, query string) (State, error) {
	if err := errors.ValidateQuery(query); err != nil {
		return State{}, err
	}
	return State{Query: query, Matches: Match(t, query)}, nil
}

// Empty reports whether the search found nothing.
func (s State) Empty() bool { return len(s.Matches) == 0 }

// First returns the first match in pre-order.
func (s State) First() (tree.ID, bool) {
	if s.Empty() {
		return 0, false
	}
	return s.Matches[0], true
}

// Current returns the match the cursor points at.
func (s State) Current() (tree.ID, bool) {
	if s.Empty() {
		return 0, false
	}
	return s.Matches[s.current], true
}

// Next advances the cursor, wrapping around, and returns the new match.
func (s *State) Next() (tree.ID, bool) {
	if s.Empty() {
		return 0, false
	}
	s.current = (s.current + 1) % len(s.Matches)
	return s.Matches[s.current], true
}

// Prev moves the cursor back, wrapping around.
func (s *State) Prev() (tree.ID, bool) {
	if s.Empty() {
		return 0, false
	}
	s.current = (s.current - 1 + len(s.Matches)) % len(s.Matches)
	return s.Matches[s.current], true
}

// Position returns the 1-based cursor index and the match count, for
// status lines like "2/5".
func (s State) Position() (int, int) {
	if s.Empty() {
		return 0, 0
	}
	return s.current + 1, len(s.Matches)
}
