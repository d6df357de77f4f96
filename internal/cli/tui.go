package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/nodegraph/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Steps - one row per evaluated node
// =============================================================================

// portRow describes one port of a step.
type portRow struct {
	Name  string
	Value string // output value, or where an input comes from
}

// inspectStep is one node of the execution path after the walk.
type inspectStep struct {
	Name     string
	Kind     string
	Category string
	Inputs   []portRow
	Outputs  []portRow
}

// buildSteps turns a pipeline result into inspectable steps in path order.
func buildSteps(res *pipeline.Result) []inspectStep {
	category := make(map[string]string)
	for _, group := range []struct {
		name  string
		nodes []string
	}{
		{"loose", res.Categories.Loose},
		{"entry", res.Categories.Entry},
		{"exit", res.Categories.Exit},
		{"net", res.Categories.Net},
	} {
		for _, n := range group.nodes {
			category[n] = group.name
		}
	}

	b := res.Built
	g := b.Graph
	steps := make([]inspectStep, 0, len(res.Path))
	for _, name := range res.Path {
		id := b.IDs[name]
		step := inspectStep{Name: name, Category: category[name]}
		if decl, ok := b.Scene.Node(name); ok {
			step.Kind = decl.Kind
		}

		for _, in := range g.InputPorts(id) {
			row := portRow{Name: in.Name, Value: "-"}
			if info, ok := g.InputPortInfo(in.ID.Ref()); ok {
				var sources []string
				for _, cid := range info.Connections {
					conn, ok := g.Connection(cid)
					if !ok {
						continue
					}
					if from, ok := g.OutputPortInfo(conn.From.Ref()); ok {
						sources = append(sources, b.Name(from.Node)+"."+from.Name)
					}
				}
				switch {
				case len(sources) > 0:
					row.Value = iconArrow + " " + strings.Join(sources, ", ")
				case info.HasDefault:
					row.Value = "default " + info.Default.String()
				}
			}
			step.Inputs = append(step.Inputs, row)
		}

		for _, out := range g.OutputPorts(id) {
			row := portRow{Name: out.Name, Value: "-"}
			if v, ok := res.Outputs[name][out.Name]; ok {
				row.Value = v.String()
			}
			step.Outputs = append(step.Outputs, row)
		}
		if v, ok := res.Recorded[name]; ok {
			step.Outputs = append(step.Outputs, portRow{Name: "recorded", Value: v.String()})
		}
		steps = append(steps, step)
	}
	return steps
}

// =============================================================================
// InspectModel - Interactive walk browser
// =============================================================================

// InspectModel is the bubbletea model for stepping through a walk.
type InspectModel struct {
	Title  string
	Steps  []inspectStep
	Cursor int
	Height int
	Offset int
}

// NewInspectModel creates a browser over the steps of res.
func NewInspectModel(res *pipeline.Result) InspectModel {
	return InspectModel{
		Title:  res.Scene,
		Steps:  buildSteps(res),
		Height: 10,
	}
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j", "n":
			if m.Cursor < len(m.Steps)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = max(len(m.Steps)-1, 0)
			m.Offset = max(m.Cursor-m.Height+1, 0)
		}
	case tea.WindowSizeMsg:
		// Leave room for the header and the detail pane.
		m.Height = max((msg.Height-6)/2, 3)
	}
	return m, nil
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Walk of " + m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ step  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Steps) == 0 {
		b.WriteString(listDimStyle.Render("  nothing to walk: the scene has no exit nodes"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Steps))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		s := m.Steps[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, fmt.Sprintf("%d", i+1), s.Name, s.Kind, s.Category, summarize(s.Outputs)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Node", "Kind", "Category", "Outputs").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Steps) {
				return lipgloss.NewStyle()
			}
			if col == 4 {
				return categoryStyles[m.Steps[idx].Category]
			}
			if idx == m.Cursor {
				return listSelectedStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(m.detail(m.Steps[m.Cursor]))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Steps))))

	return b.String()
}

// detail renders the ports of the selected step.
func (m InspectModel) detail(s inspectStep) string {
	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(s.Name))
	b.WriteString("\n")
	section := func(title string, rows []portRow) {
		if len(rows) == 0 {
			return
		}
		b.WriteString(listDimStyle.Render("  " + title))
		b.WriteString("\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "    %-10s %s\n", r.Name, listNormalStyle.Render(r.Value))
		}
	}
	section("inputs", s.Inputs)
	section("outputs", s.Outputs)
	return b.String()
}

// summarize joins output rows as "name=value".
func summarize(rows []portRow) string {
	parts := make([]string, 0, len(rows))
	for _, r := range rows {
		parts = append(parts, r.Name+"="+r.Value)
	}
	slices.Sort(parts)
	return strings.Join(parts, " ")
}
