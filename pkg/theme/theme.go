// Package theme supplies colors to the renderer.
//
// The renderer never stores colors. It asks a [Provider] for a [Palette]
// when a frame is produced, so swapping the provider (or calling
// ThemeChanged on the driver) recolors the next frame without a relayout.
package theme

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is the set of colors for one frame.
type Palette struct {
	Text       colorful.Color
	Background colorful.Color
	Link       colorful.Color
	Node       colorful.Color // fill of expanded or leaf nodes
	Collapsed  colorful.Color // fill of nodes hiding children
	Highlight  colorful.Color // search matches

	// Chroma and luminance used for branch hues.
	BranchChroma float64
	BranchLight  float64
}

// Branch returns a stable color for a top-level branch name. The empty name
// (the root) gets the link color.
func (p Palette) Branch(name string) colorful.Color {
	if name == "" {
		return p.Link
	}
	h := fnv.New32a()
	h.Write([]byte(name))
	hue := float64(h.Sum32()%360) + 0.5
	return colorful.Hcl(hue, p.BranchChroma, p.BranchLight).Clamped()
}

// Provider supplies the current palette.
type Provider interface {
	Colors() Palette
}

// Static is a Provider that always returns the same palette.
type Static Palette

// Colors implements Provider.
func (s Static) Colors() Palette { return Palette(s) }

// Func adapts a function to Provider.
type Func func() Palette

// Colors implements Provider.
func (f Func) Colors() Palette { return f() }

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("theme: bad builtin color %q: %v", s, err))
	}
	return c
}

// Light is the default palette.
var Light = Palette{
	Text:         mustHex("#1f2328"),
	Background:   mustHex("#ffffff"),
	Link:         mustHex("#8c959f"),
	Node:         mustHex("#ffffff"),
	Collapsed:    mustHex("#57606a"),
	Highlight:    mustHex("#fff8c5"),
	BranchChroma: 0.55,
	BranchLight:  0.55,
}

// Dark suits dark backgrounds.
var Dark = Palette{
	Text:         mustHex("#e6edf3"),
	Background:   mustHex("#0d1117"),
	Link:         mustHex("#6e7681"),
	Node:         mustHex("#161b22"),
	Collapsed:    mustHex("#8b949e"),
	Highlight:    mustHex("#5a4a00"),
	BranchChroma: 0.45,
	BranchLight:  0.7,
}

var builtin = map[string]Palette{
	"light": Light,
	"dark":  Dark,
}

// Named returns a builtin palette by name.
func Named(name string) (Palette, error) {
	if name == "" {
		return Light, nil
	}
	p, ok := builtin[name]
	if !ok {
		return Palette{}, fmt.Errorf("unknown theme %q (valid: %v)", name, Names())
	}
	return p, nil
}

// Names lists the builtin palette names.
func Names() []string {
	out := make([]string, 0, len(builtin))
	for n := range builtin {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Overrides replaces individual palette colors with hex strings. Empty
// fields keep the base color.
type Overrides struct {
	Text       string `koanf:"text" yaml:"text,omitempty"`
	Background string `koanf:"background" yaml:"background,omitempty"`
	Link       string `koanf:"link" yaml:"link,omitempty"`
	Highlight  string `koanf:"highlight" yaml:"highlight,omitempty"`
}

// Apply returns base with the overrides applied.
func (o Overrides) Apply(base Palette) (Palette, error) {
	set := func(dst *colorful.Color, hex string) error {
		if hex == "" {
			return nil
		}
		c, err := colorful.Hex(hex)
		if err != nil {
			return fmt.Errorf("invalid color %q: %w", hex, err)
		}
		*dst = c
		return nil
	}
	for _, f := range []struct {
		dst *colorful.Color
		hex string
	}{
		{&base.Text, o.Text},
		{&base.Background, o.Background},
		{&base.Link, o.Link},
		{&base.Highlight, o.Highlight},
	} {
		if err := set(f.dst, f.hex); err != nil {
			return Palette{}, err
		}
	}
	return base, nil
}

// CSS formats c as a hex string for SVG attributes.
func CSS(c colorful.Color) string { return c.Clamped().Hex() }
