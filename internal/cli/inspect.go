package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/flowlens/flowlens/pkg/flow"
	"github.com/flowlens/flowlens/pkg/io"
	"github.com/flowlens/flowlens/pkg/lineage"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listUpstreamStyle = lipgloss.NewStyle().Foreground(colorYellow)
	listDownStyle     = lipgloss.NewStyle().Foreground(colorGreen)
)

// inspectCommand creates the inspect command for browsing lineage in the terminal.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [flow.json]",
		Short: "Browse field-level lineage interactively in the terminal",
		Long: `Browse field-level lineage interactively in the terminal.

The inspect command loads a flow definition, infers field-level lineage,
and opens an interactive field list. Selecting a field shows everything
upstream and downstream of it, the same reachability the HTML document
highlights on click.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0])
		},
	}
}

// runInspect loads the flow, infers lineage, and runs the field browser.
func (c *CLI) runInspect(input string) error {
	f, err := io.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load flow %s: %w", input, err)
	}
	links := lineage.Infer(f)

	model := newFieldListModel(f, links)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	return nil
}

// fieldEntry is one row in the field browser.
type fieldEntry struct {
	Key      string
	NodeName string
	Alias    string
	Formula  string
}

// fieldListModel is the bubbletea model for the field browser. The field
// list follows catalog order; the selection panel is recomputed from the
// reachability graph whenever the user presses enter.
type fieldListModel struct {
	Entries   []fieldEntry
	Graph     *lineage.Graph
	Cursor    int
	Offset    int
	Height    int
	Selection *lineage.Selection
}

func newFieldListModel(f *flow.Flow, links []flow.Link) fieldListModel {
	var entries []fieldEntry
	for _, n := range f.Nodes() {
		for _, fld := range n.Fields() {
			entries = append(entries, fieldEntry{
				Key:      flow.FieldRef{NodeID: n.ID, FieldAlias: fld.Alias}.Key(),
				NodeName: n.Name,
				Alias:    fld.Alias,
				Formula:  fld.Formula,
			})
		}
	}
	return fieldListModel{
		Entries: entries,
		Graph:   lineage.NewGraph(links),
		Height:  15,
	}
}

func (m fieldListModel) Init() tea.Cmd {
	return nil
}

func (m fieldListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Entries) == 0 {
				return m, nil
			}
			sel := m.Graph.Select(m.Entries[m.Cursor].Key)
			m.Selection = &sel
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m fieldListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Inspect Lineage"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ trace  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Entries) {
		end = len(m.Entries)
	}

	for i := m.Offset; i < end; i++ {
		e := m.Entries[i]
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		line := fmt.Sprintf("%s%s.%s", cursor, e.NodeName, e.Alias)
		if m.Selection != nil {
			switch {
			case e.Key == m.Selection.Key:
				style = listSelectedStyle
			case contains(m.Selection.Ancestors, e.Key):
				style = listUpstreamStyle
			case contains(m.Selection.Descendants, e.Key):
				style = listDownStyle
			}
		}
		b.WriteString(style.Render(line))
		if e.Formula != "" {
			b.WriteString(listDimStyle.Render("  = " + e.Formula))
		}
		b.WriteString("\n")
	}

	if len(m.Entries) == 0 {
		b.WriteString(listDimStyle.Render("  no fields to inspect"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(m.selectionView())
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))

	return b.String()
}

// selectionView renders the upstream/downstream panel for the traced field.
func (m fieldListModel) selectionView() string {
	if m.Selection == nil {
		return listDimStyle.Render("  press ⏎ to trace a field") + "\n\n"
	}

	var b strings.Builder
	b.WriteString(StyleHighlight.Render("  " + displayKey(m.Selection.Key)))
	b.WriteString("\n")
	b.WriteString(listUpstreamStyle.Render("  ↑ " + joinKeys(m.Selection.Ancestors)))
	b.WriteString("\n")
	b.WriteString(listDownStyle.Render("  ↓ " + joinKeys(m.Selection.Descendants)))
	b.WriteString("\n\n")
	return b.String()
}

// displayKey renders a field key as node.alias for display.
func displayKey(key string) string {
	ref, ok := flow.ParseKey(key)
	if !ok {
		return key
	}
	return ref.NodeID + "." + ref.FieldAlias
}

func joinKeys(keys []string) string {
	if len(keys) == 0 {
		return "none"
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = displayKey(k)
	}
	return strings.Join(parts, ", ")
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
