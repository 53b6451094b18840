package treefile

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/tree"
)

var want = tree.Spec{Name: "flare", Children: []tree.Spec{
	{Name: "analytics", Category: "data", Children: []tree.Spec{{Name: "cluster"}, {Name: "graph"}}},
	{Name: "vis"},
}}

func TestReadNested(t *testing.T) {
	docs := map[Format]string{
		FormatJSON: `{"name":"flare","children":[
			{"name":"analytics","category":"data","children":[{"name":"cluster"},{"name":"graph"}]},
			{"name":"vis"}]}`,
		FormatYAML: `
name: flare
children:
  - name: analytics
    category: data
    children:
      - name: cluster
      - name: graph
  - name: vis
`,
		FormatTOML: `
name = "flare"

[[children]]
name = "analytics"
category = "data"

  [[children.children]]
  name = "cluster"

  [[children.children]]
  name = "graph"

[[children]]
name = "vis"
`,
	}
	for f, doc := range docs {
		t.Run(string(f), func(t *testing.T) {
			got, err := Read(strings.NewReader(doc), f)
			if err != nil {
				t.Fatalf("Read() = %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Read() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestReadFlat(t *testing.T) {
	doc := `
nodes:
  - {key: vis, parent: flare}
  - {key: flare}
  - {key: analytics, parent: flare, category: data}
  - {key: c, parent: analytics, name: cluster}
  - {key: graph, parent: analytics}
`
	got, err := Read(strings.NewReader(doc), FormatYAML)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	// Children keep document order: vis comes first.
	exp := tree.Spec{Name: "flare", Children: []tree.Spec{
		{Name: "vis"},
		{Name: "analytics", Category: "data", Children: []tree.Spec{{Name: "cluster"}, {Name: "graph"}}},
	}}
	if !reflect.DeepEqual(got, exp) {
		t.Errorf("Read() = %+v, want %+v", got, exp)
	}
}

func TestReadFlatErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"cycle", `{"nodes":[{"key":"r"},{"key":"a","parent":"b"},{"key":"b","parent":"a"}]}`},
		{"two roots", `{"nodes":[{"key":"r"},{"key":"s"}]}`},
		{"no root", `{"nodes":[{"key":"a","parent":"b"},{"key":"b","parent":"a"}]}`},
		{"unknown parent", `{"nodes":[{"key":"r"},{"key":"a","parent":"x"}]}`},
		{"self parent", `{"nodes":[{"key":"r"},{"key":"a","parent":"a"}]}`},
		{"duplicate", `{"nodes":[{"key":"r"},{"key":"r","parent":"r"}]}`},
		{"missing key", `{"nodes":[{"name":"r"}]}`},
		{"mixed", `{"name":"r","nodes":[{"key":"r"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.doc), FormatJSON)
			if !errors.Is(err, errors.ErrCodeInvalidTree) {
				t.Errorf("Read() = %v, want %s", err, errors.ErrCodeInvalidTree)
			}
		})
	}
}

func TestReadInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		f    Format
		code errors.Code
	}{
		{"syntax", `{"name":`, FormatJSON, errors.ErrCodeInvalidFormat},
		{"empty name", `{"name":"r","children":[{"name":"  "}]}`, FormatJSON, errors.ErrCodeInvalidTree},
		{"empty doc", ``, FormatYAML, errors.ErrCodeInvalidTree},
		{"format", `{}`, Format("xml"), errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.doc), tt.f)
			if !errors.Is(err, tt.code) {
				t.Errorf("Read() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			data, err := Marshal(want, f)
			if err != nil {
				t.Fatalf("Marshal() = %v", err)
			}
			got, err := Read(strings.NewReader(string(data)), f)
			if err != nil {
				t.Fatalf("Read() = %v\n%s", err, data)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip = %+v, want %+v", got, want)
			}
		})
	}
}

func TestWriteJSONIndent(t *testing.T) {
	data, err := Marshal(want, FormatJSON)
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	if len(data) > 512 {
		t.Fatalf("Marshal() = %d bytes, want a compact document", len(data))
	}
	// root > children > analytics > children > cluster
	if !strings.Contains(string(data), "\n          \"name\": \"cluster\"") {
		t.Errorf("cluster is not indented by depth:\n%s", data)
	}
	if !strings.HasSuffix(string(data), "}\n") {
		t.Errorf("document should end with a newline:\n%s", data)
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	rows := Flatten(want)
	if len(rows) != want.Count() {
		t.Fatalf("Flatten() = %d rows, want %d", len(rows), want.Count())
	}
	if rows[2].Key != "1.1.1" || rows[2].Parent != "1.1" {
		t.Errorf("rows[2] = %+v", rows[2])
	}
	got, err := fromFlat(rows)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("fromFlat(Flatten()) = %+v, want %+v", got, want)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yml")
	if err := os.WriteFile(path, []byte("name: solo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil || got.Name != "solo" {
		t.Errorf("ReadFile() = %+v, %v", got, err)
	}

	if _, err := ReadFile(filepath.Join(dir, "absent.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}
	if _, err := ReadFile(filepath.Join(dir, "tree.txt")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad extension err = %v", err)
	}
}
