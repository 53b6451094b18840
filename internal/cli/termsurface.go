package cli

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/arbor/pkg/geom"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/theme"
	"github.com/matzehuels/arbor/pkg/tree"
)

// Terminal cells are treated as 8x16 pixel blocks.
const (
	cellW = 8
	cellH = 16
)

const (
	glyphEdge     = '·'
	glyphNode     = '●'
	glyphMatch    = '◉'
	glyphSelected = '◆'
)

type cell struct {
	r     rune
	color string
	node  bool
}

// termSurface rasterizes scene primitives onto a rune grid.
type termSurface struct {
	cols, rows int
	cells      []cell
	selected   tree.ID

	role       render.Role
	id         tree.ID
	highlights map[tree.ID]bool
}

var _ render.Identifier = (*termSurface)(nil)

func newTermSurface(cols, rows int, selected tree.ID) *termSurface {
	cols, rows = max(cols, 0), max(rows, 0)
	return &termSurface{
		cols:       cols,
		rows:       rows,
		cells:      make([]cell, cols*rows),
		selected:   selected,
		highlights: make(map[tree.ID]bool),
	}
}

func (s *termSurface) Identify(c render.Command) {
	s.role, s.id = c.Role, c.ID
}

func (s *termSurface) at(p geom.Point) (int, bool) {
	col := int(math.Floor(p.X / cellW))
	row := int(math.Floor(p.Y / cellH))
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return 0, false
	}
	return row*s.cols + col, true
}

// DrawRect only records search highlights; they change the glyph of the
// node marker drawn after them.
func (s *termSurface) DrawRect(_ geom.Rect, st render.Style) {
	if s.role == render.RoleHighlight && visible(st.Fill) {
		s.highlights[s.id] = true
	}
}

func (s *termSurface) DrawCircle(c geom.Point, _ float64, st render.Style) {
	color, ok := shapeColor(st)
	if !ok {
		return
	}
	i, ok := s.at(c)
	if !ok {
		return
	}
	r := glyphNode
	switch {
	case s.id == s.selected:
		r = glyphSelected
	case s.highlights[s.id]:
		r = glyphMatch
	}
	s.cells[i] = cell{r: r, color: color, node: true}
}

func (s *termSurface) DrawPath(c render.Curve, st render.Style) {
	if !visible(st.Stroke) {
		return
	}
	color := terminalColor(st.Stroke)
	steps := max(8, int(c.From.Dist(c.To)/(cellW/2)))
	for k := 0; k <= steps; k++ {
		i, ok := s.at(bezier(c, float64(k)/float64(steps)))
		if !ok || s.cells[i].r != 0 {
			continue
		}
		s.cells[i] = cell{r: glyphEdge, color: color}
	}
}

func (s *termSurface) DrawText(at geom.Point, text string, ts render.TextStyle) {
	if !visible(ts.Fill) {
		return
	}
	color := terminalColor(ts.Fill)
	runes := []rune(text)
	// at is the baseline; the label sits on the row above it.
	row := int(math.Floor((at.Y - 1) / cellH))
	col := int(math.Floor(at.X / cellW))
	if ts.Centered {
		col -= len(runes) / 2
	}
	if row < 0 || row >= s.rows {
		return
	}
	for k, r := range runes {
		x := col + k
		if x < 0 || x >= s.cols {
			continue
		}
		i := row*s.cols + x
		if s.cells[i].node {
			continue
		}
		s.cells[i] = cell{r: r, color: color}
	}
}

// String renders the grid, grouping runs of equal color into one style.
func (s *termSurface) String() string {
	var b strings.Builder
	for row := range s.rows {
		if row > 0 {
			b.WriteByte('\n')
		}
		line := s.cells[row*s.cols : (row+1)*s.cols]
		for start := 0; start < len(line); {
			end := start + 1
			for end < len(line) && line[end].color == line[start].color {
				end++
			}
			var run strings.Builder
			for _, c := range line[start:end] {
				if c.r == 0 {
					run.WriteByte(' ')
					continue
				}
				run.WriteRune(c.r)
			}
			if line[start].color == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(line[start].color)).Render(run.String()))
			}
			start = end
		}
	}
	return b.String()
}

func visible(p render.Paint) bool { return p.Alpha >= 0.5 }

func terminalColor(p render.Paint) string { return theme.CSS(p.Color) }

// shapeColor prefers the fill, which tells collapsed nodes apart.
func shapeColor(st render.Style) (string, bool) {
	switch {
	case visible(st.Fill):
		return terminalColor(st.Fill), true
	case visible(st.Stroke):
		return terminalColor(st.Stroke), true
	}
	return "", false
}

func bezier(c render.Curve, t float64) geom.Point {
	u := 1 - t
	a, b, cc, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return geom.Point{
		X: a*c.From.X + b*c.C1.X + cc*c.C2.X + d*c.To.X,
		Y: a*c.From.Y + b*c.C1.Y + cc*c.C2.Y + d*c.To.Y,
	}
}
