package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

const modalWidth = 60

type formField struct {
	label string
	input textinput.Model
}

func newField(label, placeholder, value string) formField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 4096
	ti.Width = modalWidth - 8
	ti.SetValue(value)
	return formField{label: label, input: ti}
}

// formModal collects one or more text values. submit validates them; a
// returned error keeps the form open and is shown inline.
type formModal struct {
	title  string
	fields []formField
	focus  int
	err    string
	submit func(values []string) (tea.Cmd, error)
}

func newFormModal(title string, submit func([]string) (tea.Cmd, error), fields ...formField) *formModal {
	m := &formModal{title: title, fields: fields, submit: submit}
	if len(m.fields) > 0 {
		m.fields[0].input.Focus()
	}
	return m
}

func (m *formModal) values() []string {
	out := make([]string, len(m.fields))
	for i, f := range m.fields {
		out[i] = f.input.Value()
	}
	return out
}

func (m *formModal) move(delta int) tea.Cmd {
	if len(m.fields) < 2 {
		return nil
	}
	m.fields[m.focus].input.Blur()
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	return m.fields[m.focus].input.Focus()
}

func (m *formModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.Escape):
			return m, nil, true
		case key.Matches(keyMsg, keys.Confirm):
			cmd, err := m.submit(m.values())
			if err != nil {
				m.err = err.Error()
				return m, nil, false
			}
			return m, cmd, true
		case key.Matches(keyMsg, keys.Tab), keyMsg.String() == "down":
			return m, m.move(1), false
		case key.Matches(keyMsg, keys.ShiftTab), keyMsg.String() == "up":
			return m, m.move(-1), false
		}
	}
	if len(m.fields) == 0 {
		return m, nil, false
	}
	var cmd tea.Cmd
	m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
	return m, cmd, false
}

func (m *formModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render(m.title))
	b.WriteString("\n\n")
	for i, f := range m.fields {
		labelStyle := styles.MutedText
		if i == m.focus {
			labelStyle = styles.AccentText
		}
		b.WriteString(labelStyle.Render(f.label))
		b.WriteString("\n")
		b.WriteString(f.input.View())
		b.WriteString("\n\n")
	}
	if m.err != "" {
		b.WriteString(styles.DangerText.Render(m.err))
		b.WriteString("\n\n")
	}
	b.WriteString(styles.FaintText.Render("enter submit · tab next field · esc cancel"))

	return placeModal(theme, width, height, b.String())
}

// confirmModal asks a yes/no question and runs onYes when accepted.
type confirmModal struct {
	question string
	onYes    tea.Cmd
}

func (m *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch {
	case keyMsg.String() == "y", key.Matches(keyMsg, keys.Confirm):
		return m, m.onYes, true
	case keyMsg.String() == "n", key.Matches(keyMsg, keys.Escape):
		return m, nil, true
	}
	return m, nil, false
}

func (m *confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	content := styles.Text.Bold(true).Render(m.question) + "\n\n" +
		styles.FaintText.Render("y/enter confirm · n/esc cancel")
	return placeModal(theme, width, height, content)
}

func placeModal(theme Theme, width, height int, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(modalWidth).
		Render(content)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
