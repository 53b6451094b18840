package cli

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/config"
	"github.com/matzehuels/arbor/pkg/engine"
	"github.com/matzehuels/arbor/pkg/tree"
	"github.com/matzehuels/arbor/pkg/treefile"
)

// document is a parsed tree file plus the content hash used in cache keys.
type document struct {
	path string
	spec tree.Spec
	hash string
}

func loadDocument(path string) (*document, error) {
	spec, data, err := treefile.ReadFileRaw(path)
	if err != nil {
		return nil, fmt.Errorf("load tree %s: %w", path, err)
	}
	return &document{path: path, spec: spec, hash: cache.Hash(data)}, nil
}

// treeOptions controls the initial collapse state.
type treeOptions struct {
	expandDepth int
	expandAll   bool
	collapseAll bool
	search      string
}

// newEngine builds and starts an engine for doc. Initial collapse
// commands and the search are applied before the first frame settles.
func (c *CLI) newEngine(cfg *config.Config, doc *document, topts treeOptions) (*engine.Engine, error) {
	opts, err := c.engineOptions(cfg)
	if err != nil {
		return nil, err
	}
	t := tree.Build(doc.spec, tree.WithExpandDepth(topts.expandDepth))
	e := engine.New(t, cfg.ViewportSize(), opts...)
	e.Start()

	switch {
	case topts.expandAll:
		e.ExpandAll()
	case topts.collapseAll:
		e.CollapseAll()
	}
	if topts.search != "" {
		st, err := e.Search(topts.search)
		if err != nil {
			return nil, err
		}
		if st.Empty() {
			printWarning("No node matches %q", topts.search)
		}
	}
	e.Settle()
	return e, nil
}

// configHash fingerprints every setting that can change rendered output.
func configHash(cfg *config.Config) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
