// Package config loads arbor settings.
//
// Values come from three layers, later ones winning:
//
//  1. [DefaultConfig]
//  2. a YAML file (missing files are fine)
//  3. ARBOR_* environment variables, with "__" separating the section
//     from the key: ARBOR_VIEWPORT__MAX_SCALE=4
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/matzehuels/arbor/pkg/anim"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/theme"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ARBOR_"

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Layout: LayoutConfig{
			NodeBreadth:       140,
			NodeDepth:         160,
			NarrowBreadth:     90,
			NarrowDepth:       120,
			NarrowBelow:       640,
			SiblingSeparation: 1,
			CousinSeparation:  1.5,
			BoxWidth:          100,
			InteriorExtra:     16,
			LineHeight:        16,
			BoxPadding:        12,
		},
		Collision: CollisionConfig{MinGap: 12},
		Stagger:   StaggerConfig{Stride: 18, MultilineExtra: 8},
		Viewport: ViewportConfig{
			Width:    1280,
			Height:   800,
			MinScale: 0.4,
			MaxScale: 2.5,
			Padding:  40,
			ZoomStep: 1.2,
			Fit:      "content",
		},
		Animation: AnimationConfig{
			Duration:   "750ms",
			Ease:       "cubic",
			NodeRadius: 6,
			FontSize:   12,
			LinkWidth:  1.5,
		},
		Theme:  ThemeConfig{Name: "light"},
		Tree:   TreeConfig{ExpandDepth: 2},
		Export: ExportConfig{Padding: 24, Scale: 2, Formats: []string{"svg"}},
		Server: ServerConfig{Addr: "localhost:8080", AllowedOrigins: []string{"*"}},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/arbor/config.yaml, falling back to
// ~/.config.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "arbor", "config.yaml")
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading config %s", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "accessing config %s", path)
		}
	}

	// ARBOR_VIEWPORT__MAX_SCALE -> viewport.max_scale
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "loading env overrides")
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "unmarshalling config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the given YAML file path, creating the
// directory if needed.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshalling config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating config dir")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing config to %s", path)
	}
	return nil
}

var validFits = []string{"content", "width"}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidConfig, format, args...)
	}

	l := c.Layout
	if l.NodeBreadth <= 0 || l.NodeDepth <= 0 {
		return invalid("layout.node_breadth and layout.node_depth must be positive")
	}
	if l.NarrowBreadth < 0 || l.NarrowDepth < 0 || l.NarrowBelow < 0 {
		return invalid("layout narrow settings must be non-negative")
	}
	if l.SiblingSeparation <= 0 || l.CousinSeparation <= 0 {
		return invalid("layout separations must be positive")
	}
	if l.BoxWidth <= 0 || l.LineHeight <= 0 || l.BoxPadding < 0 || l.InteriorExtra < 0 {
		return invalid("layout box sizes must be positive")
	}

	if c.Collision.MinGap < 0 {
		return invalid("collision.min_gap must be non-negative")
	}
	if c.Stagger.Stride < 0 || c.Stagger.Cycle < 0 || c.Stagger.MultilineExtra < 0 {
		return invalid("stagger.stride, stagger.cycle and stagger.multiline_extra must be non-negative")
	}

	v := c.Viewport
	if v.Width <= 0 || v.Height <= 0 {
		return invalid("viewport size must be positive, got %gx%g", v.Width, v.Height)
	}
	if v.MinScale <= 0 || v.MaxScale < v.MinScale {
		return invalid("viewport scale bounds [%g, %g] are invalid", v.MinScale, v.MaxScale)
	}
	if v.Padding < 0 {
		return invalid("viewport.padding must be non-negative")
	}
	if v.ZoomStep <= 1 {
		return invalid("viewport.zoom_step must be greater than 1")
	}
	if !slices.Contains(validFits, v.Fit) {
		return invalid("invalid viewport.fit %q: must be one of %v", v.Fit, validFits)
	}

	if _, err := c.Animation.duration(); err != nil {
		return err
	}
	if _, err := anim.Ease(c.Animation.Ease); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "animation.ease")
	}
	if c.Animation.CurveJitter < 0 || c.Animation.NodeRadius <= 0 || c.Animation.FontSize <= 0 {
		return invalid("animation drawing sizes must be positive")
	}

	if _, err := c.Palette(); err != nil {
		return err
	}

	if c.Tree.ExpandDepth < -1 {
		return invalid("tree.expand_depth must be -1 or greater")
	}
	if c.Export.Padding < 0 || c.Export.Scale <= 0 {
		return invalid("export.padding must be non-negative and export.scale positive")
	}
	return nil
}

func (a AnimationConfig) duration() (time.Duration, error) {
	d, err := time.ParseDuration(a.Duration)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "animation.duration")
	}
	if d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "animation.duration must be non-negative")
	}
	return d, nil
}

// Palette resolves the theme section.
func (c *Config) Palette() (theme.Palette, error) {
	base, err := theme.Named(c.Theme.Name)
	if err != nil {
		return theme.Palette{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "theme.name")
	}
	p, err := c.Theme.Apply(base)
	if err != nil {
		return theme.Palette{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "theme")
	}
	return p, nil
}
