package sink

import (
	"github.com/goccy/go-json"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/layout"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/theme"
	"github.com/matzehuels/arbor/pkg/tree"
)

type sceneOutput struct {
	Width      float64          `json:"width"`
	Height     float64          `json:"height"`
	Background string           `json:"background,omitempty"`
	Nodes      []jsonNode       `json:"nodes"`
	Edges      []jsonEdge       `json:"edges,omitempty"`
	Highlights []tree.ID        `json:"highlights,omitempty"`
	Commands   []render.Command `json:"commands,omitempty"`
}

type jsonNode struct {
	ID    tree.ID `json:"id"`
	Label string  `json:"label,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color,omitempty"`
	Alpha float64 `json:"alpha"`
}

type jsonEdge struct {
	ID tree.ID `json:"id"`
	D  string  `json:"d"`
}

// RenderJSON exports the scene as a pretty-printed document with positions
// in the cropped output frame. WithView keeps screen coordinates and adds
// the raw command list.
func RenderJSON(s render.Scene, opts ...Option) ([]byte, error) {
	c := newConfig(opts)
	f, err := c.resolve(s, 1)
	if err != nil {
		return nil, err
	}

	out := sceneOutput{Width: float64(f.width), Height: float64(f.height)}
	if !c.transparent {
		out.Background = theme.CSS(s.Background)
	}
	labels := make(map[tree.ID]string)
	for _, cmd := range s.Commands {
		if cmd.Role != render.RoleLabel {
			continue
		}
		if prev, ok := labels[cmd.ID]; ok {
			labels[cmd.ID] = prev + "\n" + cmd.Text
		} else {
			labels[cmd.ID] = cmd.Text
		}
	}
	for _, cmd := range s.Commands {
		switch cmd.Role {
		case render.RoleNode:
			p := f.transform.Apply(cmd.Center)
			out.Nodes = append(out.Nodes, jsonNode{
				ID:    cmd.ID,
				Label: labels[cmd.ID],
				X:     p.X,
				Y:     p.Y,
				Color: theme.CSS(cmd.Style.Stroke.Color),
				Alpha: cmd.Style.Fill.Alpha,
			})
		case render.RoleEdge:
			out.Edges = append(out.Edges, jsonEdge{ID: cmd.ID, D: cmd.Curve.Transform(f.transform).D()})
		case render.RoleHighlight:
			out.Highlights = append(out.Highlights, cmd.ID)
		}
	}
	if c.view {
		out.Commands = s.Commands
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode scene")
	}
	return data, nil
}

type layoutOutput struct {
	ViewportWidth float64       `json:"viewport_width"`
	Bounds        boundsOutput  `json:"bounds"`
	Nodes         []layoutNode  `json:"nodes"`
	Edges         []layout.Edge `json:"edges"`
}

type boundsOutput struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

type layoutNode struct {
	ID         tree.ID `json:"id"`
	Parent     tree.ID `json:"parent,omitempty"`
	Name       string  `json:"name"`
	Branch     string  `json:"branch,omitempty"`
	Depth      int     `json:"depth"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Leaf       bool    `json:"leaf,omitempty"`
	Expandable bool    `json:"expandable,omitempty"`
}

// RenderLayoutJSON exports settled layout positions in world units.
func RenderLayoutJSON(l *layout.Layout) ([]byte, error) {
	if l == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no layout")
	}
	b := l.Bounds()
	out := layoutOutput{
		ViewportWidth: l.ViewportWidth,
		Bounds:        boundsOutput{X: b.X, Y: b.Y, W: b.W, H: b.H},
		Nodes:         make([]layoutNode, 0, len(l.Nodes)),
		Edges:         l.Edges,
	}
	for _, n := range l.Nodes {
		out.Nodes = append(out.Nodes, layoutNode{
			ID:         n.ID,
			Parent:     n.ParentID,
			Name:       n.Name,
			Branch:     n.Branch,
			Depth:      n.Depth,
			X:          n.X,
			Y:          n.Y,
			Width:      n.Width,
			Height:     n.Height,
			Leaf:       n.Leaf,
			Expandable: n.Expandable,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	return data, nil
}
