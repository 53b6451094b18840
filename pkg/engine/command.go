package engine

import (
	"context"
	"slices"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/geom"
	"github.com/matzehuels/arbor/pkg/observability"
	"github.com/matzehuels/arbor/pkg/tree"
)

// Command names accepted by [Engine.Do].
const (
	CmdSearch       = "search"
	CmdClearSearch  = "clear-search"
	CmdNextMatch    = "next-match"
	CmdExpandAll    = "expand-all"
	CmdCollapseAll  = "collapse-all"
	CmdFit          = "fit"
	CmdReset        = "reset"
	CmdZoomIn       = "zoom-in"
	CmdZoomOut      = "zoom-out"
	CmdCenter       = "center"
	CmdExportVector = "export-vector"
	CmdExportRaster = "export-raster"
	CmdToggle       = "toggle"
	CmdExpandPath   = "expand-path"
	CmdPan          = "pan"
	CmdResize       = "resize"
	CmdThemeChanged = "theme-changed"
)

// Commands lists every command name in a stable order.
var Commands = []string{
	CmdSearch, CmdClearSearch, CmdNextMatch, CmdExpandAll, CmdCollapseAll,
	CmdFit, CmdReset, CmdZoomIn, CmdZoomOut, CmdCenter,
	CmdExportVector, CmdExportRaster,
	CmdToggle, CmdExpandPath, CmdPan, CmdResize, CmdThemeChanged,
}

// Command is one request against an engine. Only the fields the named
// command reads need to be set.
type Command struct {
	Name   string  `json:"name"`
	Query  string  `json:"query,omitempty"`  // search
	ID     tree.ID `json:"id,omitempty"`     // toggle, expand-path, center (optional)
	DX     float64 `json:"dx,omitempty"`     // pan
	DY     float64 `json:"dy,omitempty"`     // pan
	Width  float64 `json:"width,omitempty"`  // resize
	Height float64 `json:"height,omitempty"` // resize
}

// Result carries what a command produced.
type Result struct {
	Matches []tree.ID `json:"matches,omitempty"`
	Data    []byte    `json:"-"`
	Format  string    `json:"format,omitempty"`
}

// Do dispatches a named command.
func (e *Engine) Do(cmd Command) (Result, error) {
	res, err := e.do(cmd)
	observability.Engine().OnCommand(e.id, cmd.Name, err)
	return res, err
}

func (e *Engine) do(cmd Command) (Result, error) {
	switch cmd.Name {
	case CmdSearch:
		st, err := e.Search(cmd.Query)
		return Result{Matches: st.Matches}, err
	case CmdClearSearch:
		e.ClearSearch()
	case CmdNextMatch:
		return Result{Matches: e.search.Matches}, e.NextMatch()
	case CmdExpandAll:
		e.ExpandAll()
	case CmdCollapseAll:
		e.CollapseAll()
	case CmdFit:
		e.Fit()
	case CmdReset:
		e.Reset()
	case CmdZoomIn:
		e.ZoomIn()
	case CmdZoomOut:
		e.ZoomOut()
	case CmdCenter:
		if cmd.ID != 0 {
			return Result{}, e.CenterOn(cmd.ID)
		}
		e.Center()
	case CmdExportVector:
		data, err := e.Export(context.Background(), FormatSVG)
		return Result{Data: data, Format: FormatSVG}, err
	case CmdExportRaster:
		data, err := e.Export(context.Background(), FormatPNG)
		return Result{Data: data, Format: FormatPNG}, err
	case CmdToggle:
		return Result{}, e.Toggle(cmd.ID)
	case CmdExpandPath:
		return Result{}, e.ExpandPath(cmd.ID)
	case CmdPan:
		e.PanBy(cmd.DX, cmd.DY)
	case CmdResize:
		if cmd.Width <= 0 || cmd.Height <= 0 {
			return Result{}, errors.New(errors.ErrCodeInvalidCommand, "resize: size must be positive, got %gx%g", cmd.Width, cmd.Height)
		}
		e.Resize(geom.Size{W: cmd.Width, H: cmd.Height})
	case CmdThemeChanged:
		e.ThemeChanged()
	default:
		return Result{}, errors.New(errors.ErrCodeInvalidCommand, "unknown command %q", cmd.Name)
	}
	return Result{}, nil
}

// ValidCommand reports whether name is a known command.
func ValidCommand(name string) bool { return slices.Contains(Commands, name) }
