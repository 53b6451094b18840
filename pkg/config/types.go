package config

import "github.com/matzehuels/arbor/pkg/theme"

// Config is the top-level arbor configuration, corresponding to
// config.yaml. Every section has working defaults.
type Config struct {
	Layout    LayoutConfig    `yaml:"layout" koanf:"layout"`
	Collision CollisionConfig `yaml:"collision" koanf:"collision"`
	Stagger   StaggerConfig   `yaml:"stagger" koanf:"stagger"`
	Viewport  ViewportConfig  `yaml:"viewport" koanf:"viewport"`
	Animation AnimationConfig `yaml:"animation" koanf:"animation"`
	Theme     ThemeConfig     `yaml:"theme" koanf:"theme"`
	Tree      TreeConfig      `yaml:"tree" koanf:"tree"`
	Export    ExportConfig    `yaml:"export" koanf:"export"`
	Server    ServerConfig    `yaml:"server" koanf:"server"`
}

// LayoutConfig sizes the layout grid and node boxes.
type LayoutConfig struct {
	NodeBreadth       float64 `yaml:"node_breadth" koanf:"node_breadth"`
	NodeDepth         float64 `yaml:"node_depth" koanf:"node_depth"`
	NarrowBreadth     float64 `yaml:"narrow_breadth" koanf:"narrow_breadth"`
	NarrowDepth       float64 `yaml:"narrow_depth" koanf:"narrow_depth"`
	NarrowBelow       float64 `yaml:"narrow_below" koanf:"narrow_below"`
	SiblingSeparation float64 `yaml:"sibling_separation" koanf:"sibling_separation"`
	CousinSeparation  float64 `yaml:"cousin_separation" koanf:"cousin_separation"`
	BoxWidth          float64 `yaml:"box_width" koanf:"box_width"`
	InteriorExtra     float64 `yaml:"interior_extra" koanf:"interior_extra"`
	LineHeight        float64 `yaml:"line_height" koanf:"line_height"`
	BoxPadding        float64 `yaml:"box_padding" koanf:"box_padding"`
}

// CollisionConfig configures the depth-band sweep.
type CollisionConfig struct {
	MinGap float64 `yaml:"min_gap" koanf:"min_gap"`
}

// StaggerConfig configures leaf staggering.
type StaggerConfig struct {
	Base           float64 `yaml:"base" koanf:"base"`
	Stride         float64 `yaml:"stride" koanf:"stride"`
	Cycle          int     `yaml:"cycle" koanf:"cycle"`
	MultilineExtra float64 `yaml:"multiline_extra" koanf:"multiline_extra"`
}

// ViewportConfig holds the initial size and zoom behavior.
type ViewportConfig struct {
	Width    float64 `yaml:"width" koanf:"width"`
	Height   float64 `yaml:"height" koanf:"height"`
	MinScale float64 `yaml:"min_scale" koanf:"min_scale"`
	MaxScale float64 `yaml:"max_scale" koanf:"max_scale"`
	Padding  float64 `yaml:"padding" koanf:"padding"`
	ZoomStep float64 `yaml:"zoom_step" koanf:"zoom_step"`
	Fit      string  `yaml:"fit" koanf:"fit"` // "content" or "width"
}

// AnimationConfig configures transitions and drawing.
type AnimationConfig struct {
	Duration    string  `yaml:"duration" koanf:"duration"` // Go duration, e.g. "750ms"
	Ease        string  `yaml:"ease" koanf:"ease"`
	CurveJitter float64 `yaml:"curve_jitter" koanf:"curve_jitter"`
	NodeRadius  float64 `yaml:"node_radius" koanf:"node_radius"`
	FontSize    float64 `yaml:"font_size" koanf:"font_size"`
	LinkWidth   float64 `yaml:"link_width" koanf:"link_width"`
}

// ThemeConfig picks a builtin palette and optional color overrides.
type ThemeConfig struct {
	Name            string `yaml:"name" koanf:"name"`
	theme.Overrides `yaml:",inline" koanf:",squash"`
}

// TreeConfig controls how documents are opened.
type TreeConfig struct {
	// ExpandDepth collapses nodes at this depth and below; -1 expands all.
	ExpandDepth int `yaml:"expand_depth" koanf:"expand_depth"`
}

// ExportConfig controls export output.
type ExportConfig struct {
	Padding     float64  `yaml:"padding" koanf:"padding"`
	Scale       float64  `yaml:"scale" koanf:"scale"`
	Transparent bool     `yaml:"transparent" koanf:"transparent"`
	Formats     []string `yaml:"formats" koanf:"formats"`
}

// ServerConfig configures `arbor serve`.
type ServerConfig struct {
	Addr           string   `yaml:"addr" koanf:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	// RedisURL shares the export cache through Redis instead of local files.
	RedisURL string `yaml:"redis_url,omitempty" koanf:"redis_url"`
}
