package server

import (
	"strconv"
	"sync"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/engine"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/geom"
	"github.com/matzehuels/arbor/pkg/tree"
)

// instance is one engine plus the bookkeeping needed to cache its exports.
// revision increments on every state change so cached exports of an older
// state are never served.
type instance struct {
	mu       sync.Mutex
	id       string
	engine   *engine.Engine
	keys     cache.Keyer
	docHash  string
	revision int
}

func (s *Server) newInstance(spec tree.Spec, docHash string) (*instance, error) {
	if spec.Name == "" && len(spec.Children) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidTree, "empty tree document")
	}
	e := s.newEngine(spec, s.cfg.Viewport)
	id := e.ID()
	return &instance{
		id:      id,
		engine:  e,
		keys:    cache.NewScopedKeyer(cache.NewDefaultKeyer(), "instance:"+id+":"),
		docHash: docHash,
	}, nil
}

func (s *Server) newEngine(spec tree.Spec, size geom.Size) *engine.Engine {
	t := tree.Build(spec, tree.WithExpandDepth(s.cfg.ExpandDepth))
	opts := append([]engine.Option{engine.WithLogger(s.cfg.Logger)}, s.cfg.Engine...)
	e := engine.New(t, size, opts...)
	e.Start()
	e.Settle()
	return e
}

// exportKey identifies an export of the instance's current state.
func (inst *instance) exportKey(format string) string {
	return inst.keys.ArtifactKey(inst.docHash, cache.ArtifactKeyOpts{
		LayoutKeyOpts: cache.LayoutKeyOpts{State: strconv.Itoa(inst.revision)},
		Format:        format,
	})
}

// summary describes the instance for list and get responses. Callers hold
// inst.mu.
func (inst *instance) summary() instanceSummary {
	e := inst.engine
	st := e.SearchState()
	out := instanceSummary{
		ID:        inst.id,
		Nodes:     e.Tree().Len(),
		Revision:  inst.revision,
		Transform: e.Transform(),
		Query:     st.Query,
		Matches:   st.Matches,
	}
	if l := e.Layout(); l != nil {
		out.Visible = len(l.Nodes)
	}
	return out
}
