package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dendro/pkg/cluster"
	"github.com/matzehuels/dendro/pkg/dendrogram"
	"github.com/matzehuels/dendro/pkg/heatmap"
	"github.com/matzehuels/dendro/pkg/pipeline"
)

// maxGridItems bounds the heatmap drawn in the terminal.
const maxGridItems = 40

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "explore <matrix|result.json|url>",
		Short: "Browse the dendrogram interactively in the terminal",
		Long: `Browse the dendrogram interactively in the terminal.

Branches are listed as an indented tree next to the reordered heatmap.
Selecting a branch highlights its cluster in the heatmap, exactly as a
click does in the interactive SVG.

Keys: ↑/↓ move, enter select, esc clear, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveInput(args[0], &opts); err != nil {
				return err
			}
			return c.runExplore(cmd.Context(), opts)
		},
	}

	addClusterFlags(cmd, &opts)
	cmd.Flags().StringVar(&opts.Scheme, "scheme", "", "heatmap color scheme")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, opts pipeline.Options) error {
	c.Config.Apply(&opts)
	opts.Logger = c.Logger

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Prepare(ctx, opts)
	if err != nil {
		return err
	}
	model := newExploreModel(res.Tree, res.Layout.Dendrogram, res.Layout.Grid, res.Cluster.Labels)
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// exploreModel - Interactive dendrogram browser
// =============================================================================

type exploreRow struct {
	node  int
	depth int
}

// exploreModel lists the internal nodes of a tree in preorder. Selection
// goes through a dendrogram.Widget so the terminal and the browser share
// one set of rules.
type exploreModel struct {
	tree   *cluster.Tree
	widget *dendrogram.Widget
	grid   *heatmap.Grid
	labels []string
	rows   []exploreRow
	cursor int
	offset int
	height int
}

func newExploreModel(t *cluster.Tree, l *dendrogram.Layout, grid *heatmap.Grid, labels []string) exploreModel {
	m := exploreModel{
		tree:   t,
		widget: dendrogram.NewWidget(l, nil),
		grid:   grid,
		labels: labels,
		height: 20,
	}
	stack := []exploreRow{{node: t.Root()}}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.Node(r.node)
		if n.IsLeaf() {
			continue
		}
		m.rows = append(m.rows, r)
		stack = append(stack, exploreRow{n.Right, r.depth + 1}, exploreRow{n.Left, r.depth + 1})
	}
	return m
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter", " ":
			if len(m.rows) > 0 {
				m.widget.Select(m.rows[m.cursor].node)
			}
		case "esc", "c":
			m.widget.Clear()
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Dendrogram"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ select  esc clear  q quit"))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.treeView(), "    ", m.gridView()))
	b.WriteString("\n\n")
	b.WriteString(m.selectionView())
	return b.String()
}

func (m exploreModel) treeView() string {
	state := m.widget.State()
	end := min(m.offset+m.height, len(m.rows))

	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		n := m.tree.Node(r.node)
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%s%s %d %s  %s",
			cursor, strings.Repeat("  ", r.depth), iconBranch, n.Size(),
			"items", StyleNumber.Render(fmt.Sprintf("%.3f", n.Distance)))
		switch {
		case r.node == state.Node:
			line = StyleSelected.Render(line)
		case i == m.cursor:
			line = StyleHighlight.Render(line)
		}
		lines = append(lines, line)
	}
	if len(m.rows) > m.height {
		lines = append(lines, StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rows))))
	}
	return strings.Join(lines, "\n")
}

// gridView draws the heatmap with two characters per cell. Cells outside
// the selected block are dimmed. Without a grid only the leaf labels are
// listed.
func (m exploreModel) gridView() string {
	sel := make(map[int]bool)
	for _, i := range m.widget.State().Selected {
		sel[i] = true
	}
	order := m.widget.Layout().Order()
	width := 0
	for _, i := range order {
		width = max(width, lipgloss.Width(m.labels[i]))
	}
	labelStyle := lipgloss.NewStyle().Width(width + 1)

	showGrid := m.grid != nil && m.grid.Size() <= maxGridItems
	lines := make([]string, len(order))
	for p, i := range order {
		label := labelStyle.Render(m.labels[i])
		if sel[i] {
			label = StyleSelected.Render(labelStyle.Render(m.labels[i]))
		}
		var row strings.Builder
		row.WriteString(label)
		if showGrid {
			for q, j := range order {
				style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.grid.Color(p, q)))
				if len(sel) > 0 && !(sel[i] && sel[j]) {
					style = style.Faint(true)
					row.WriteString(style.Render("░░"))
					continue
				}
				row.WriteString(style.Render("██"))
			}
		} else {
			row.WriteString(StyleDim.Render(iconLeaf))
		}
		lines[p] = row.String()
	}
	return strings.Join(lines, "\n")
}

func (m exploreModel) selectionView() string {
	sel := m.widget.State().Selected
	if len(sel) == 0 {
		return StyleDim.Render("Nothing selected")
	}
	names := make([]string, len(sel))
	for k, i := range slices.Sorted(slices.Values(sel)) {
		names[k] = m.labels[i]
	}
	return StyleSelected.Render(fmt.Sprintf("%d selected: ", len(sel))) + strings.Join(names, ", ")
}
