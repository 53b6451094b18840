package search

import (
	"slices"
	"testing"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/tree"
)

func sample() *tree.Tree {
	return tree.Build(tree.Spec{Name: "Root", Children: []tree.Spec{
		{Name: "Flare", Children: []tree.Spec{{Name: "AgglomerativeCluster"}, {Name: "Clusterer"}}},
		{Name: "Display", Children: []tree.Spec{{Name: "DirtySprite"}}},
	}}, tree.WithExpandDepth(1))
}

func TestMatch(t *testing.T) {
	tr := sample()
	tests := []struct {
		query string
		want  []tree.ID
	}{
		{"cluster", []tree.ID{3, 4}},
		{"  CLUSTER ", []tree.ID{3, 4}},
		{"sprite", []tree.ID{6}},
		{"r", []tree.ID{1, 2, 3, 4, 6}},
		{"", nil},
		{"   ", nil},
		{"nope", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := Match(tr, tt.query); !slices.Equal(got, tt.want) {
				t.Errorf("Match(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestMatchDoesNotChangeTree(t *testing.T) {
	tr := sample()
	before := len(tr.Visible())
	Match(tr, "cluster")
	if got := len(tr.Visible()); got != before {
		t.Errorf("visible = %d after Match, want %d", got, before)
	}
}

func TestRunRejectsControlCharacters(t *testing.T) {
	_, err := Run(sample(), "a\x00b")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestStateCursor(t *testing.T) {
	s, err := Run(sample(), "cluster")
	if err != nil {
		t.Fatal(err)
	}
	if id, _ := s.First(); id != 3 {
		t.Errorf("First() = %d, want 3", id)
	}
	if id, _ := s.Next(); id != 4 {
		t.Errorf("Next() = %d, want 4", id)
	}
	if id, _ := s.Next(); id != 3 {
		t.Errorf("Next() wrap = %d, want 3", id)
	}
	if id, _ := s.Prev(); id != 4 {
		t.Errorf("Prev() wrap = %d, want 4", id)
	}
	if i, n := s.Position(); i != 2 || n != 2 {
		t.Errorf("Position() = %d/%d, want 2/2", i, n)
	}

	var empty State
	if _, ok := empty.Next(); ok {
		t.Error("Next() on empty state ok = true")
	}
}
