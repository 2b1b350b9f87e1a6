package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) renderDiagnostics() string {
	styles := m.theme.Styles()
	return pane(styles.FocusPane, m.diagViewport.View(), m.width, m.contentHeight())
}

// updateDiagnosticsViewport re-renders the log tail, staying pinned to the
// bottom when the user has not scrolled up.
func (m *Model) updateDiagnosticsViewport() {
	follow := m.diagViewport.AtBottom() || m.diagViewport.TotalLineCount() == 0
	m.diagViewport.SetContent(m.renderDiagnosticsContent())
	if follow {
		m.diagViewport.GotoBottom()
	}
}

func (m Model) renderDiagnosticsContent() string {
	styles := m.theme.Styles()
	if m.diagErr != nil {
		return styles.DangerText.Render(fmt.Sprintf("read %s: %v", m.diagnosticsPath, m.diagErr))
	}
	if len(m.diagEntries) == 0 {
		if m.diagnosticsPath == "" {
			return styles.MutedText.Render("No diagnostics log configured.")
		}
		return styles.MutedText.Render("No failures logged in " + m.diagnosticsPath)
	}

	lines := make([]string, 0, len(m.diagEntries))
	for _, e := range m.diagEntries {
		stamp := "        "
		if !e.Time.IsZero() {
			stamp = e.Time.Format("15:04:05")
		}
		msgStyle := styles.Text
		if e.Failed() {
			msgStyle = styles.DangerText
		}
		lines = append(lines, styles.FaintText.Render(stamp)+"  "+msgStyle.Render(e.Message))
	}
	return strings.Join(lines, "\n")
}

func (m Model) handleDiagnosticsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.diagViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.diagViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Top):
		m.diagViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.diagViewport.GotoBottom()
	case key.Matches(msg, m.keys.PageDown):
		m.diagViewport.HalfPageDown()
	case key.Matches(msg, m.keys.PageUp):
		m.diagViewport.HalfPageUp()
	}
	return m, nil
}
