package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/framelens/framelens/pkg/report"
)

// inspectCommand creates the inspect command: browse a results file in an
// interactive pair table.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <results.json>",
		Short: "Browse a results file interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := report.ReadDocument(args[0])
			if err != nil {
				return err
			}
			model := NewPairListModel(doc)
			_, err = tea.NewProgram(model).Run()
			return err
		},
	}
}

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// PairListModel is the bubbletea model for browsing matched pairs, worst
// divergence first under 's', frame order under 'o'.
type PairListModel struct {
	Doc    *report.Document
	Pairs  []report.PairEntry
	Cursor int
	Height int
	Offset int
	ByFram bool
}

// NewPairListModel creates a pair list model sorted by ascending score, so
// the most diverged pairs surface first.
func NewPairListModel(doc *report.Document) PairListModel {
	m := PairListModel{
		Doc:    doc,
		Height: 15,
	}
	m.Pairs = sortedPairs(doc, false)
	return m
}

func sortedPairs(doc *report.Document, byFrame bool) []report.PairEntry {
	pairs := append([]report.PairEntry(nil), doc.Visual.Pairs...)
	if byFrame {
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].OriginalIndex < pairs[j].OriginalIndex })
	} else {
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].Score < pairs[j].Score })
	}
	return pairs
}

func (m PairListModel) Init() tea.Cmd {
	return nil
}

func (m PairListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Pairs)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "o":
			m.ByFram = true
			m.Pairs = sortedPairs(m.Doc, true)
			m.Cursor, m.Offset = 0, 0
		case "s":
			m.ByFram = false
			m.Pairs = sortedPairs(m.Doc, false)
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m PairListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Frame Pair Divergence"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  s sort by score  o sort by frame  q quit"))
	b.WriteString("\n")
	b.WriteString(m.headline())
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Pairs) {
		end = len(m.Pairs)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Pairs[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		source := iconFresh
		if p.Cached {
			source = iconCached
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprintf("%d", p.OriginalIndex),
			fmt.Sprintf("%d", p.OptimizedIndex),
			fmt.Sprintf("%.4f", p.Score),
			source,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Original", "Optimized", "Score", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			actualIdx := m.Offset + row
			if actualIdx >= len(m.Pairs) {
				return lipgloss.NewStyle()
			}
			p := m.Pairs[actualIdx]

			base := lipgloss.NewStyle()
			if col == 3 {
				base = scoreStyle(p.Score)
			} else if col == 4 {
				base = listDimStyle
			}
			if actualIdx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Pairs))))

	return b.String()
}

// headline summarizes the run above the table.
func (m PairListModel) headline() string {
	parts := []string{fmt.Sprintf("%d pairs", len(m.Pairs))}
	if m.Doc.Visual.MeanScore != nil {
		parts = append(parts, fmt.Sprintf("mean %.4f", *m.Doc.Visual.MeanScore))
	}
	if m.Doc.ImprovementPercentage != nil {
		parts = append(parts, fmt.Sprintf("%+.1f%% frame time", *m.Doc.ImprovementPercentage))
	}
	if n := len(m.Doc.Visual.Failed); n > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d failed", n)))
	}
	return listDimStyle.Render(strings.Join(parts, " · "))
}
