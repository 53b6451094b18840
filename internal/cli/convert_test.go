package cli

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/treefile"
)

func TestConvertTarget(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		output     string
		to         string
		wantFormat treefile.Format
		wantPath   string
		wantErr    bool
	}{
		{"to flag", "flare.json", "", "yaml", treefile.FormatYAML, "flare.yaml", false},
		{"from extension", "flare.json", "out/flare.toml", "", treefile.FormatTOML, "out/flare.toml", false},
		{"stdout", "flare.json", "-", "toml", treefile.FormatTOML, "-", false},
		{"same format", "flare.json", "", "json", treefile.FormatJSON, "flare.nested.json", false},
		{"no target", "flare.json", "", "", "", "", true},
		{"stdout without format", "flare.json", "-", "", "", "", true},
		{"unknown format", "flare.json", "", "xml", "", "", true},
		{"overwrite input", "flare.json", "flare.json", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, path, err := convertTarget(tt.input, tt.output, tt.to)
			if (err != nil) != tt.wantErr {
				t.Fatalf("convertTarget() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if f != tt.wantFormat || path != tt.wantPath {
				t.Errorf("convertTarget() = (%q, %q), want (%q, %q)", f, path, tt.wantFormat, tt.wantPath)
			}
		})
	}
}

func TestRunConvert(t *testing.T) {
	input := writeSample(t)
	src, err := treefile.ReadFile(input)
	if err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, log.InfoLevel)
	for _, f := range treefile.Formats {
		t.Run(string(f), func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "sample."+string(f))
			if err := c.runConvert(input, out, ""); err != nil {
				t.Fatalf("runConvert() error: %v", err)
			}
			info, err := os.Stat(out)
			if err != nil {
				t.Fatal(err)
			}
			if info.Size() > 1024 {
				t.Errorf("converted document is %d bytes, want a compact document", info.Size())
			}
			got, err := treefile.ReadFile(out)
			if err != nil {
				t.Fatalf("ReadFile() error: %v", err)
			}
			if !reflect.DeepEqual(got, src) {
				t.Errorf("converted tree = %+v, want %+v", got, src)
			}
		})
	}
}
