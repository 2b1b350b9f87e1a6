package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Refresh    key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding
	Confirm    key.Binding

	// View switching
	ViewItems       key.Binding
	ViewCache       key.Binding
	ViewFiles       key.Binding
	ViewDiagnostics key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Items
	NewItem    key.Binding
	EditItem   key.Binding
	DeleteItem key.Binding

	// Cache
	CacheLookup key.Binding
	CacheSet    key.Binding
	CacheDelete key.Binding

	// Files
	Upload key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh now"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close / back to items"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open / confirm"),
		),

		ViewItems: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Items"),
		),
		ViewCache: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Cache"),
		),
		ViewFiles: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Files"),
		),
		ViewDiagnostics: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Diagnostics"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "Up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "Down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("ctrl+u", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("ctrl+d", "Page down"),
		),

		NewItem: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New item"),
		),
		EditItem: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Update item data"),
		),
		DeleteItem: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete item"),
		),

		CacheLookup: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Look up key"),
		),
		CacheSet: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Set key"),
		),
		CacheDelete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Delete key"),
		),

		Upload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Upload file"),
		),
	}
}
