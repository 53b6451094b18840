// Package treefile reads and writes tree documents.
//
// Two shapes are accepted in JSON, YAML and TOML:
//
// Nested documents mirror [tree.Spec]:
//
//	{"name": "flare", "children": [{"name": "analytics"}, {"name": "vis"}]}
//
// Flat documents list nodes with parent keys, the shape most exports from
// spreadsheets and databases take:
//
//	nodes:
//	  - {key: flare}
//	  - {key: analytics, parent: flare}
//
// Flat documents must have exactly one root and no cycles. Children keep
// their document order in both shapes.
package treefile

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/tree"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML}

// MaxDocumentSize bounds how much of a document is read.
const MaxDocumentSize = 64 << 20

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer format of %q (use .json, .yaml, .yml or .toml)", path)
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown document format %q", s)
}

// document is the union of both shapes.
type document struct {
	Name     string      `json:"name" yaml:"name" toml:"name"`
	Category string      `json:"category" yaml:"category" toml:"category"`
	Children []tree.Spec `json:"children" yaml:"children" toml:"children"`
	Nodes    []FlatNode  `json:"nodes" yaml:"nodes" toml:"nodes"`
}

// ReadFile reads a document, inferring the format from the extension.
func ReadFile(path string) (tree.Spec, error) {
	spec, _, err := ReadFileRaw(path)
	return spec, err
}

// ReadFileRaw is ReadFile that also returns the document bytes, for
// callers that key caches on content.
func ReadFileRaw(path string) (tree.Spec, []byte, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return tree.Spec{}, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return tree.Spec{}, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return tree.Spec{}, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	spec, err := Read(bytes.NewReader(data), f)
	if err != nil {
		return tree.Spec{}, nil, errors.Wrap(errors.GetCode(err), err, "%s", path)
	}
	return spec, data, nil
}

// Read decodes a document of the given format.
func Read(r io.Reader, f Format) (tree.Spec, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return tree.Spec{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read document")
	}
	if len(data) > MaxDocumentSize {
		return tree.Spec{}, errors.New(errors.ErrCodeInvalidInput, "document larger than %d bytes", MaxDocumentSize)
	}

	var doc document
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		_, err = toml.Decode(string(data), &doc)
	default:
		return tree.Spec{}, errors.New(errors.ErrCodeInvalidFormat, "unknown document format %q", f)
	}
	if err != nil {
		return tree.Spec{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", f)
	}

	if len(doc.Nodes) > 0 {
		if doc.Name != "" || len(doc.Children) > 0 {
			return tree.Spec{}, errors.New(errors.ErrCodeInvalidTree, "document mixes nested and flat shapes")
		}
		return fromFlat(doc.Nodes)
	}
	spec := tree.Spec{Name: doc.Name, Category: doc.Category, Children: doc.Children}
	if err := validate(spec); err != nil {
		return tree.Spec{}, err
	}
	return spec, nil
}

func validate(s tree.Spec) error {
	if err := errors.ValidateNodeName(s.Name); err != nil {
		return err
	}
	for _, c := range s.Children {
		if err := validate(c); err != nil {
			return err
		}
	}
	return nil
}

// Write encodes spec as a nested document.
func Write(w io.Writer, spec tree.Spec, f Format) error {
	var err error
	switch f {
	case FormatJSON:
		// MarshalIndent on the recursive Spec type compounds indentation,
		// so the compact encoding is indented in a second step.
		var raw []byte
		if raw, err = json.Marshal(spec); err == nil {
			var buf bytes.Buffer
			if err = json.Indent(&buf, raw, "", "  "); err == nil {
				buf.WriteByte('\n')
				_, err = buf.WriteTo(w)
			}
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(spec); err == nil {
			err = enc.Close()
		}
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(spec)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown document format %q", f)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", f)
	}
	return nil
}

// Marshal is Write into a byte slice.
func Marshal(spec tree.Spec, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, spec, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
