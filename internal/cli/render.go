package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/config"
	"github.com/matzehuels/arbor/pkg/engine"
)

// artifactTTL bounds how long rendered artifacts stay in the local cache.
const artifactTTL = 7 * 24 * time.Hour

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file (single format) or base path
	formats []string // svg, png, json, pdf, dot
	tree    treeOptions
	fit     string  // content or width
	theme   string  // builtin palette name
	width   float64 // viewport width override
	height  float64 // viewport height override
	noCache bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [tree]",
		Short: "Render a tree document to SVG, PNG, PDF, JSON or DOT",
		Long: `Render a tree document (JSON, YAML or TOML) as a tidy tree.

The tree opens collapsed below --expand-depth. --expand-all, --collapse-all
and --search change the visible nodes before export; --search expands the
path to the first match and highlights every match.

Several formats are encoded concurrently from one frame. Results are cached
locally, keyed by document content and settings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("expand-depth") {
				opts.tree.expandDepth = cfg.Tree.ExpandDepth
			}
			opts.formats = parseFormats(formatsStr, cfg.Export.Formats)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if err := applyOverrides(cfg, opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cfg, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg, png, json, pdf, dot (comma-separated)")
	cmd.Flags().IntVar(&opts.tree.expandDepth, "expand-depth", 0, "collapse nodes at this depth and below (-1 expands all)")
	cmd.Flags().BoolVar(&opts.tree.expandAll, "expand-all", false, "expand every node")
	cmd.Flags().BoolVar(&opts.tree.collapseAll, "collapse-all", false, "collapse everything below the root")
	cmd.Flags().StringVar(&opts.tree.search, "search", "", "reveal and highlight nodes matching this text")
	cmd.Flags().StringVar(&opts.fit, "fit", "", "viewport fit: content, width")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "color theme: light, dark")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "viewport width")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "viewport height")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.MarkFlagsMutuallyExclusive("expand-all", "collapse-all")

	return cmd
}

// applyOverrides copies flag values onto the loaded configuration and
// re-validates it.
func applyOverrides(cfg *config.Config, opts renderOpts) error {
	if opts.fit != "" {
		cfg.Viewport.Fit = opts.fit
	}
	if opts.theme != "" {
		cfg.Theme.Name = opts.theme
	}
	if opts.width > 0 {
		cfg.Viewport.Width = opts.width
	}
	if opts.height > 0 {
		cfg.Viewport.Height = opts.height
	}
	return cfg.Validate()
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !engine.ValidFormat(f) {
			return fmt.Errorf("invalid format: %s (must be one of %s)", f, strings.Join(engine.Formats, ", "))
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if engine.ValidFormat(strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath names the file for one format. A single format with an
// explicit output path is written there unchanged. A derived path never
// overwrites the input document.
func outputPath(output, input, format string, single bool) string {
	if single && output != "" && filepath.Ext(output) != "" {
		return output
	}
	base := basePath(output, input)
	if path := base + "." + format; path != input {
		return path
	}
	return base + ".render." + format
}

// runRender loads the document, serves what it can from the cache and
// renders the rest from one settled engine frame.
func (c *CLI) runRender(ctx context.Context, cfg *config.Config, input string, opts renderOpts) error {
	doc, err := loadDocument(input)
	if err != nil {
		return err
	}

	store, err := newCache(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer store.Close()

	keys := cache.NewDefaultKeyer()
	base := cache.LayoutKeyOpts{
		ConfigHash:  configHash(cfg),
		ExpandDepth: opts.tree.expandDepth,
		ExpandAll:   opts.tree.expandAll,
		CollapseAll: opts.tree.collapseAll,
		Search:      opts.tree.search,
	}
	keyFor := func(format string) string {
		return keys.ArtifactKey(doc.hash, cache.ArtifactKeyOpts{LayoutKeyOpts: base, Format: format, Fit: cfg.Viewport.Fit})
	}

	results := make(map[string][]byte, len(opts.formats))
	var missing []string
	for _, f := range opts.formats {
		if data, ok, err := store.Get(ctx, keyFor(f)); err == nil && ok {
			results[f] = data
			continue
		}
		missing = append(missing, f)
	}
	cached := len(missing) == 0
	visible := 0

	if len(missing) > 0 {
		sp := startSpinner(ctx, os.Stderr, "Laying out tree...")
		prog := newProgress(c.Logger)

		e, err := c.newEngine(cfg, doc, opts.tree)
		if err != nil {
			sp.Fail("Render failed")
			return err
		}
		sp.SetMessage(fmt.Sprintf("Encoding %s...", strings.Join(missing, ", ")))
		out, err := e.ExportAll(ctx, missing)
		if err != nil {
			sp.Fail("Render failed")
			return fmt.Errorf("render %s: %w", input, err)
		}
		sp.Stop()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		prog.done(fmt.Sprintf("Rendered %s", strings.Join(missing, ", ")))
		visible = len(e.Layout().Nodes)

		for f, data := range out {
			results[f] = data
			if err := store.Set(ctx, keyFor(f), data, artifactTTL); err != nil {
				c.Logger.Warn("cache write failed", "format", f, "error", err)
			}
		}
	}

	printSuccess("Render complete")
	single := len(opts.formats) == 1
	for _, f := range opts.formats {
		path := outputPath(opts.output, input, f, single)
		if err := writeOutput(path, results[f]); err != nil {
			return err
		}
		printFile(path)
	}
	printStats(doc.spec.Count(), visible, cached)
	return nil
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
