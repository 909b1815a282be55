package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	hio "github.com/matzehuels/hybridnet/pkg/io"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// maxNewickWidth truncates long networks in the list.
const maxNewickWidth = 72

// NetworkListModel is the bubbletea model for picking one network of a result.
type NetworkListModel struct {
	Networks []hio.NetworkDoc
	Cursor   int
	Selected int
	Height   int
	Offset   int
}

// NewNetworkListModel creates a list over the networks of doc.
func NewNetworkListModel(doc *hio.Document) NetworkListModel {
	return NetworkListModel{
		Networks: doc.Networks,
		Selected: -1,
		Height:   15,
	}
}

func (m NetworkListModel) Init() tea.Cmd {
	return nil
}

func (m NetworkListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Networks)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = len(m.Networks) - 1
			m.Offset = max(0, m.Cursor-m.Height+1)
		case "enter":
			if len(m.Networks) > 0 {
				m.Selected = m.Cursor
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m NetworkListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Network"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Networks))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		nd := m.Networks[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, fmt.Sprint(i + 1), fmt.Sprint(nd.Reticulations), truncate(nd.Newick, maxNewickWidth)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Ret", "Network").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 3 {
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorDim)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Networks))))

	return b.String()
}

// browseNetworks lets the user pick a network and returns its index.
func browseNetworks(doc *hio.Document) (int, bool, error) {
	if len(doc.Networks) == 1 {
		return 0, true, nil
	}
	final, err := tea.NewProgram(NewNetworkListModel(doc)).Run()
	if err != nil {
		return 0, false, fmt.Errorf("network picker: %w", err)
	}
	m := final.(NetworkListModel)
	return m.Selected, m.Selected >= 0, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
