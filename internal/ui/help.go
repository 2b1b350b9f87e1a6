package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Navigation",
			items: []helpItem{
				{"1-4", "Items/Cache/Files/Diagnostics"},
				{"tab", "Cycle views"},
				{"esc", "Clear status / back to items"},
				{"j/k", "Move down/up"},
				{"g/G", "Go to top/bottom"},
				{"ctrl+d/u", "Scroll detail"},
			},
		},
		{
			title: "Items",
			items: []helpItem{
				{"enter", "Fetch selected item"},
				{"n", "New item"},
				{"u", "Update data"},
				{"d", "Delete item"},
			},
		},
		{
			title: "Cache",
			items: []helpItem{
				{"/", "Look up key"},
				{"s", "Set key"},
				{"x", "Delete key"},
			},
		},
		{
			title: "Files",
			items: []helpItem{
				{"u", "Upload file"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"r", "Refresh now"},
				{"T", "Cycle theme"},
				{"h/?", "Toggle help"},
				{"e/ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(48).
		Render(b.String())

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
