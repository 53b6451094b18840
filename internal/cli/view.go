package cli

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/engine"
	"github.com/matzehuels/arbor/pkg/geom"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/tree"
)

const (
	frameInterval = 16 * time.Millisecond
	panStep       = 40
)

// viewCommand creates the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var topts treeOptions

	cmd := &cobra.Command{
		Use:   "view [tree]",
		Short: "Explore a tree interactively in the terminal",
		Long: `Explore a tree interactively in the terminal.

Keys:
  j/k        select next/previous node
  enter      expand or collapse the selected node
  e/c        expand all / collapse all
  /          search, n for the next match
  + - arrows zoom and pan
  f r .      fit, reset, center on selection
  y          copy the current view as SVG
  q          quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("expand-depth") {
				topts.expandDepth = cfg.Tree.ExpandDepth
			}
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			// Log output would tear the alternate screen.
			quiet := &CLI{Logger: log.New(io.Discard), configPath: c.configPath, cfg: c.cfg}
			e, err := quiet.newEngine(cfg, doc, topts)
			if err != nil {
				return err
			}
			p := tea.NewProgram(newViewModel(e, clipboard.WriteAll),
				tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().IntVar(&topts.expandDepth, "expand-depth", 0, "collapse nodes at this depth and below (-1 expands all)")
	cmd.Flags().BoolVar(&topts.expandAll, "expand-all", false, "expand every node")
	cmd.Flags().BoolVar(&topts.collapseAll, "collapse-all", false, "collapse everything below the root")
	cmd.Flags().StringVar(&topts.search, "search", "", "reveal and highlight nodes matching this text")
	cmd.MarkFlagsMutuallyExclusive("expand-all", "collapse-all")

	return cmd
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// viewModel drives an engine from terminal input. The terminal grid is the
// viewport: one cell is cellW x cellH pixels.
type viewModel struct {
	engine   *engine.Engine
	clip     func(string) error
	input    textinput.Model
	search   bool
	selected tree.ID
	cols     int
	rows     int
	status   string
}

func newViewModel(e *engine.Engine, clip func(string) error) viewModel {
	ti := textinput.New()
	ti.Placeholder = "search"
	ti.Prompt = "/"
	ti.CharLimit = 256
	m := viewModel{engine: e, clip: clip, input: ti}
	if root := e.Tree().Root(); root != nil {
		m.selected = root.ID
	}
	return m
}

func (m viewModel) Init() tea.Cmd { return tick() }

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.engine.Animating() {
			m.engine.Tick()
		}
		return m, tick()

	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, max(msg.Height-1, 1)
		m.engine.Resize(geom.Size{W: float64(m.cols * cellW), H: float64(m.rows * cellH)})
		return m, nil

	case tea.KeyMsg:
		if m.search {
			return m.updateSearch(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m viewModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.search = false
		m.input.Blur()
		st, err := m.engine.Search(m.input.Value())
		switch {
		case err != nil:
			m.status = err.Error()
		case len(st.Matches) == 0:
			m.status = fmt.Sprintf("no match for %q", st.Query)
		default:
			m.status = fmt.Sprintf("%d matches", len(st.Matches))
			m.selected = st.Matches[0]
		}
		return m, nil
	case tea.KeyEsc:
		m.search = false
		m.input.Blur()
		m.input.SetValue("")
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m viewModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := m.engine
	m.status = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.search = true
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd
	case "n":
		if err := e.NextMatch(); err != nil {
			m.status = err.Error()
		}
		if id, ok := e.SearchState().Current(); ok {
			m.selected = id
		}
	case "e":
		e.ExpandAll()
	case "c":
		e.CollapseAll()
	case "f":
		e.Fit()
	case "r":
		e.Reset()
	case "+", "=":
		e.ZoomIn()
	case "-":
		e.ZoomOut()
	case "left":
		e.PanBy(panStep, 0)
	case "right":
		e.PanBy(-panStep, 0)
	case "up":
		e.PanBy(0, panStep)
	case "down":
		e.PanBy(0, -panStep)
	case "j":
		m.moveSelection(1)
	case "k":
		m.moveSelection(-1)
	case "enter", " ":
		if err := e.Toggle(m.selected); err != nil {
			m.status = err.Error()
		}
	case ".":
		if err := e.CenterOn(m.selected); err != nil {
			m.status = err.Error()
		}
	case "y":
		m.status = m.copySVG()
	}
	m.clampSelection()
	return m, nil
}

// visibleIDs returns the visible nodes in pre-order.
func (m viewModel) visibleIDs() []tree.ID {
	if l := m.engine.Layout(); l != nil {
		return l.IDs()
	}
	return nil
}

func (m *viewModel) moveSelection(delta int) {
	ids := m.visibleIDs()
	if len(ids) == 0 {
		return
	}
	i := slices.Index(ids, m.selected)
	i = min(max(i+delta, 0), len(ids)-1)
	m.selected = ids[i]
}

// clampSelection falls back to the root when the selected node was hidden.
func (m *viewModel) clampSelection() {
	ids := m.visibleIDs()
	if len(ids) > 0 && !slices.Contains(ids, m.selected) {
		m.selected = ids[0]
	}
}

func (m viewModel) copySVG() string {
	svg, err := m.engine.ExportVector()
	if err != nil {
		return err.Error()
	}
	if err := m.clip(string(svg)); err != nil {
		return "copy failed: " + err.Error()
	}
	return fmt.Sprintf("copied %d bytes of SVG", len(svg))
}

func (m viewModel) View() string {
	if m.cols == 0 {
		return ""
	}
	scene := m.engine.Frame()
	surface := newTermSurface(m.cols, m.rows, m.selected)
	render.ReplayWith(scene, scene.Transform, surface, false)
	return surface.String() + "\n" + m.statusLine()
}

func (m viewModel) statusLine() string {
	if m.search {
		return m.input.View()
	}
	line := StyleDim.Render(fmt.Sprintf("%d visible", len(m.visibleIDs())))
	if n, ok := m.engine.Tree().Node(m.selected); ok {
		line += StyleDim.Render(" · ") + StyleHighlight.Render(n.Lines()[0])
	}
	if m.status != "" {
		line += StyleDim.Render(" · ") + StyleWarning.Render(m.status)
	}
	return line
}
