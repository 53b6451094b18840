package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/config"
	"github.com/matzehuels/arbor/pkg/render/sink"
)

// layoutCommand creates the layout command for computing tree layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		topts  treeOptions
	)

	cmd := &cobra.Command{
		Use:   "layout [tree]",
		Short: "Compute the settled layout of a tree document",
		Long: `Compute the settled layout of a tree document.

The output is JSON listing every visible node with its position and box,
plus the parent-child edges, after the collision and stagger passes. Use
-o - to print to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("expand-depth") {
				topts.expandDepth = cfg.Tree.ExpandDepth
			}
			return c.runLayout(cmd.Context(), cfg, args[0], output, topts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, - for stdout)")
	cmd.Flags().IntVar(&topts.expandDepth, "expand-depth", 0, "collapse nodes at this depth and below (-1 expands all)")
	cmd.Flags().BoolVar(&topts.expandAll, "expand-all", false, "expand every node")
	cmd.Flags().BoolVar(&topts.collapseAll, "collapse-all", false, "collapse everything below the root")
	cmd.Flags().StringVar(&topts.search, "search", "", "expand the path to the first node matching this text")
	cmd.MarkFlagsMutuallyExclusive("expand-all", "collapse-all")

	return cmd
}

// runLayout loads the document, settles an engine and writes its layout.
func (c *CLI) runLayout(ctx context.Context, cfg *config.Config, input, output string, topts treeOptions) error {
	doc, err := loadDocument(input)
	if err != nil {
		return err
	}
	prog := newProgress(c.Logger)
	e, err := c.newEngine(cfg, doc, topts)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	data, err := sink.RenderLayoutJSON(e.Layout())
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}

	if output == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := writeOutput(output, data); err != nil {
		return err
	}
	prog.done("Layout complete")
	printFile(output)
	printStats(doc.spec.Count(), len(e.Layout().Nodes), false)
	printNewline()
	printNextStep("Render", "arbor render "+input)
	return nil
}
