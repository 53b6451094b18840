// Package pkg provides the core libraries for Arbor collapsible-tree rendering.
//
// # Overview
//
// Arbor lays out hierarchical documents as tidy trees whose subtrees can be
// collapsed, searched and animated. The pkg directory is organized into four
// main areas:
//
//  1. Model - [tree] (collapse state) and [treefile] (JSON, YAML, TOML documents)
//  2. Layout - [layout] (tidy tree) and [layout/transform] (collision, stagger)
//  3. Render - [render] (scene driver), [render/sink] and [render/nodelink]
//  4. Orchestration - [engine], plus [viewport], [anim], [search] and [theme]
//
// # Architecture
//
// Every structural change flows through the same pipeline:
//
//	tree mutation
//	     ↓
//	[layout] Compute (node positions for the visible tree)
//	     ↓
//	[layout/transform] Resolve (collision pass, then stagger pass)
//	     ↓
//	[render] Driver (enter/update/exit transitions)
//	     ↓
//	Scene → SVG/PNG/PDF/JSON/DOT
//
// # Quick Start
//
//	spec, _ := treefile.ReadFile("flare.json")
//	t := tree.Build(spec, tree.WithExpandDepth(2))
//	e := engine.New(t, geom.Size{W: 1280, H: 800})
//	e.Start()
//
//	// Reveal and highlight a node, then finish the animations.
//	e.Do(engine.Command{Name: engine.CmdSearch, Query: "cluster"})
//	e.Settle()
//
//	svg, _ := e.Export(ctx, engine.FormatSVG)
//
// # Supporting Packages
//
// [config] - YAML configuration via koanf with ARBOR_* environment overrides.
//
// [cache] - File, Redis and no-op caches for rendered artifacts, with
// content-hash keys.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [observability] - Hook interfaces for engine, cache and HTTP events.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/tree
// [treefile]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/treefile
// [layout]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/layout
// [layout/transform]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/layout/transform
// [render]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/render/nodelink
// [engine]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/engine
// [viewport]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/viewport
// [anim]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/anim
// [search]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/search
// [theme]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/theme
// [config]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/config
// [cache]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/arbor/pkg/buildinfo
package pkg
