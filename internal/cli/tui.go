package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/escapetime/pkg/fractal"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tableHeaderStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// PresetListModel - Interactive region selection
// =============================================================================

// PresetListModel is the bubbletea model behind "compute --pick".
type PresetListModel struct {
	Presets  []fractal.Preset
	Cursor   int
	Offset   int
	Height   int
	Selected *fractal.Preset
}

// NewPresetListModel creates a list over presets.
func NewPresetListModel(presets []fractal.Preset) PresetListModel {
	return PresetListModel{Presets: presets, Height: 10}
}

func (m PresetListModel) Init() tea.Cmd { return nil }

func (m PresetListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Presets)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Presets) == 0 {
				return m, tea.Quit
			}
			p := m.Presets[m.Cursor]
			m.Selected = &p
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 3)
	}
	return m, nil
}

func (m PresetListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Region"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Presets))
	for i := m.Offset; i < end; i++ {
		p := m.Presets[i]
		line := fmt.Sprintf("%-26s %s", p.Name, listDimStyle.Render(p.Region.String()))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Presets))))
	return b.String()
}

// =============================================================================
// Preset table
// =============================================================================

// presetTable renders presets as a bordered table.
func presetTable(presets []fractal.Preset) string {
	rows := make([][]string, len(presets))
	for i, p := range presets {
		rows[i] = []string{
			p.Name,
			p.Description,
			fmt.Sprintf("[%g, %g]", p.Region.XMin, p.Region.XMax),
			fmt.Sprintf("[%g, %g]", p.Region.YMin, p.Region.YMax),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Description", "x", "y").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return t.Render()
}
