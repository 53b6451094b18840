package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/treefile"
)

// convertCommand creates the convert command for re-encoding tree documents.
func (c *CLI) convertCommand() *cobra.Command {
	var output, to string

	cmd := &cobra.Command{
		Use:   "convert [tree]",
		Short: "Re-encode a tree document as nested JSON, YAML or TOML",
		Long: `Re-encode a tree document as nested JSON, YAML or TOML.

Flat documents (rows with parent keys) are written in nested form. The
target format comes from --to, or from the extension of -o.

Examples:
  arbor convert flare.json --to yaml
  arbor convert rows.json -o flare.toml
  arbor convert flare.yaml --to json -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(args[0], output, to)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>, - for stdout)")
	cmd.Flags().StringVar(&to, "to", "", "target format: json, yaml or toml")

	return cmd
}

// convertTarget resolves the output format and path.
func convertTarget(input, output, to string) (treefile.Format, string, error) {
	var (
		f   treefile.Format
		err error
	)
	switch {
	case to != "":
		f, err = treefile.ParseFormat(to)
	case output != "" && output != "-":
		f, err = treefile.FormatFromPath(output)
	default:
		return "", "", fmt.Errorf("convert: set --to or an output file with a known extension")
	}
	if err != nil {
		return "", "", err
	}

	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		output = base + "." + string(f)
		if filepath.Clean(output) == filepath.Clean(input) {
			output = base + ".nested." + string(f)
		}
	}
	if output != "-" && filepath.Clean(output) == filepath.Clean(input) {
		return "", "", fmt.Errorf("convert: output %s would overwrite the input", output)
	}
	return f, output, nil
}

func (c *CLI) runConvert(input, output, to string) error {
	f, output, err := convertTarget(input, output, to)
	if err != nil {
		return err
	}
	doc, err := loadDocument(input)
	if err != nil {
		return err
	}

	data, err := treefile.Marshal(doc.spec, f)
	if err != nil {
		return err
	}
	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := writeOutput(output, data); err != nil {
		return err
	}
	c.Logger.Debug("converted", "input", input, "format", f, "bytes", len(data))
	printSuccess("Converted %s", input)
	printFile(output)
	printStats(doc.spec.Count(), 0, false)
	return nil
}
