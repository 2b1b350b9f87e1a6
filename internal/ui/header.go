package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// renderHeader renders the status bar: health badge, API location, counts
// and the last poll error.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	compact := m.width < 100

	parts := []string{
		styles.Logo.Render("ferry"),
		m.healthBadge(),
	}

	if m.config != nil && !compact {
		parts = append(parts,
			styles.MutedText.Render("API")+" "+styles.Text.Render(truncateMiddle(m.config.APIURL, 40)))
	}

	parts = append(parts,
		styles.MutedText.Render("Items:")+" "+styles.Text.Render(fmt.Sprintf("%d", len(m.snapshot.Items))),
		styles.MutedText.Render("Files:")+" "+styles.Text.Render(fmt.Sprintf("%d", len(m.snapshot.Files))),
	)

	if !compact {
		if services := m.renderServices(); services != "" {
			parts = append(parts, services)
		}
	}

	if !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts, styles.MutedText.Render(m.snapshot.LastUpdated.Format("15:04:05")))
	}

	if m.snapshot.LastError != nil {
		maxErr := 60
		if compact {
			maxErr = 30
		}
		parts = append(parts,
			styles.DangerText.Render("ERROR")+" "+
				styles.DangerText.Render(truncate(m.snapshot.LastError.Error(), maxErr)))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) healthBadge() string {
	styles := m.theme.Styles()
	switch {
	case m.snapshot.IsOffline():
		return styles.StatusStyle("offline").Render("OFFLINE")
	case !m.snapshot.HasHealth:
		return styles.StatusStyle("connecting").Render("CONNECTING")
	default:
		status := strings.TrimSpace(m.snapshot.Health.Status)
		if status == "" {
			status = "unknown"
		}
		return styles.StatusStyle(status).Render(strings.ToUpper(status))
	}
}

// renderServices lists per-service health as coloured names.
func (m Model) renderServices() string {
	if !m.snapshot.HasHealth || len(m.snapshot.Health.Services) == 0 {
		return ""
	}
	names := make([]string, 0, len(m.snapshot.Health.Services))
	for name := range m.snapshot.Health.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		color := m.theme.StatusColor(m.snapshot.Health.Services[name])
		out = append(out, lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("● "+name))
	}
	return strings.Join(out, " ")
}

// renderTabBar renders the view switcher.
func (m Model) renderTabBar() string {
	styles := m.theme.Styles()
	labels := []string{"Items", "Cache", "Files", "Diagnostics"}

	tabs := make([]string, 0, len(labels))
	for i, label := range labels {
		text := fmt.Sprintf(" %d %s ", i+1, label)
		if View(i) == m.currentView {
			tabs = append(tabs, styles.Selected.Bold(true).Render(text))
		} else {
			tabs = append(tabs, styles.MutedText.Render(text))
		}
	}
	left := strings.Join(tabs, " ")
	right := styles.FaintText.Render("h help · e quit")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderFooter shows the last action outcome, or view hints when there is
// none.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.status.text != "" {
		style := styles.SuccessText
		if m.status.isErr {
			style = styles.DangerText
		}
		line := style.Render(m.status.text) + styles.FaintText.Render(" · "+humanize.Time(m.status.at))
		return styles.Footer.Width(m.width).Render(line)
	}
	return styles.Footer.Width(m.width).Render(m.viewHints())
}

func (m Model) viewHints() string {
	switch m.currentView {
	case ViewItems:
		return "enter open · n new · u update · d delete · r refresh"
	case ViewCache:
		return "/ look up · s set · x delete · r refresh"
	case ViewFiles:
		return "u upload · r refresh"
	case ViewDiagnostics:
		return "j/k scroll · g/G top/bottom"
	}
	return ""
}
