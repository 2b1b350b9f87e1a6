package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/ferry/internal/api"
	"github.com/five82/ferry/internal/config"
	"github.com/five82/ferry/internal/logtail"
	"github.com/five82/ferry/internal/prefs"
	"github.com/five82/ferry/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewItems View = iota
	ViewCache
	ViewFiles
	ViewDiagnostics
)

var viewNames = []string{"items", "cache", "files", "diagnostics"}

func (v View) String() string {
	if int(v) < 0 || int(v) >= len(viewNames) {
		return viewNames[0]
	}
	return viewNames[v]
}

// parseView maps a preference name to a view, defaulting to items.
func parseView(name string) View {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range viewNames {
		if n == name {
			return View(i)
		}
	}
	return ViewItems
}

// Options configures the UI.
type Options struct {
	Context context.Context
	Client  api.Service
	Store   *state.Store
	Config  *config.Config
	// Refresh polls the API once and updates Store. Optional; without it
	// writes are reflected on the next poller tick.
	Refresh         func(context.Context) error
	PollTick        time.Duration
	ThemeName       string
	ViewName        string
	PrefsPath       string
	DiagnosticsPath string
}

// cacheRow is a key the user has looked up or set during this session. The
// API cannot enumerate keys, so the cache view lists only these.
type cacheRow struct {
	key   string
	value api.Value
	ttl   int
	op    string
	at    time.Time
}

type statusLine struct {
	text  string
	isErr bool
	at    time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx             context.Context
	client          api.Service
	store           *state.Store
	config          *config.Config
	refresh         func(context.Context) error
	prefsPath       string
	diagnosticsPath string
	pollTick        time.Duration
	keys            keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	// Items
	itemRow        int
	lookup         *api.ItemLookup
	detailViewport viewport.Model

	// Cache
	cacheRows []cacheRow
	cacheSel  int

	// Files
	fileRow int

	// Diagnostics
	diagViewport viewport.Model
	diagEntries  []logtail.Entry
	diagErr      error

	modal    Modal
	showHelp bool
	status   statusLine
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	diagnosticsPath := opts.DiagnosticsPath
	if diagnosticsPath == "" && opts.Config != nil {
		diagnosticsPath = opts.Config.DiagnosticsLogPath()
	}

	return Model{
		ctx:             ctx,
		client:          opts.Client,
		store:           opts.Store,
		config:          opts.Config,
		refresh:         opts.Refresh,
		prefsPath:       prefsPath,
		diagnosticsPath: diagnosticsPath,
		pollTick:        pollTick,
		keys:            DefaultKeyMap(),
		theme:           GetTheme(opts.ThemeName),
		currentView:     parseView(opts.ViewName),
		detailViewport:  viewport.New(0, 0),
		diagViewport:    viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewDiagnostics && m.diagnosticsPath != "" {
		cmds = append(cmds, diagnosticsCmd(m.diagnosticsPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeViewports()
		m.updateDetailViewport()
		m.updateDiagnosticsViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		m.clampSelections()
		m.updateDetailViewport()
		return m, nil

	case diagnosticsMsg:
		m.diagEntries = msg.entries
		m.diagErr = msg.err
		m.updateDiagnosticsViewport()
		return m, nil

	case itemLookupMsg:
		if msg.err != "" {
			m.setStatus(msg.err, true)
			return m, nil
		}
		m.lookup = msg.lookup
		m.setStatus("loaded "+msg.lookup.Item.ID+" from "+messageOr(msg.lookup.Source, "server"), false)
		m.updateDetailViewport()
		return m, nil

	case mutationMsg:
		if msg.err != "" {
			m.setStatus(msg.err, true)
			return m, nil
		}
		m.setStatus(msg.text, false)
		m.lookup = nil
		return m, refreshCmd(m.ctx, m.refresh, m.store)

	case cacheMsg:
		m.handleCacheResult(msg)
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.setStatus("save preferences: "+msg.err.Error(), true)
		}
		return m, nil
	}

	// Forward anything else (cursor blink and so on) to an open modal.
	if m.modal != nil {
		var cmd tea.Cmd
		m.modal, cmd, _ = m.modal.Update(msg, m.keys)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		var (
			cmd    tea.Cmd
			closed bool
		)
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Sequence(savePrefsCmd(m.prefsPath, m.currentPrefs()), tea.Quit)

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		return m, savePrefsCmd(m.prefsPath, m.currentPrefs())

	case key.Matches(msg, m.keys.Refresh):
		m.setStatus("refreshing", false)
		return m, refreshCmd(m.ctx, m.refresh, m.store)

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(View((int(m.currentView) + 1) % len(viewNames)))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(View((int(m.currentView) + len(viewNames) - 1) % len(viewNames)))

	case key.Matches(msg, m.keys.ViewItems):
		return m.switchView(ViewItems)
	case key.Matches(msg, m.keys.ViewCache):
		return m.switchView(ViewCache)
	case key.Matches(msg, m.keys.ViewFiles):
		return m.switchView(ViewFiles)
	case key.Matches(msg, m.keys.ViewDiagnostics):
		return m.switchView(ViewDiagnostics)

	case key.Matches(msg, m.keys.Escape):
		if m.status.text != "" {
			m.status = statusLine{}
			return m, nil
		}
		return m.switchView(ViewItems)
	}

	switch m.currentView {
	case ViewItems:
		return m.handleItemsKey(msg)
	case ViewCache:
		return m.handleCacheKey(msg)
	case ViewFiles:
		return m.handleFilesKey(msg)
	case ViewDiagnostics:
		return m.handleDiagnosticsKey(msg)
	}
	return m, nil
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	if v == ViewDiagnostics && m.diagnosticsPath != "" {
		return m, diagnosticsCmd(m.diagnosticsPath)
	}
	return m, nil
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewDiagnostics && m.diagnosticsPath != "" {
		cmds = append(cmds, diagnosticsCmd(m.diagnosticsPath))
	}

	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

func (m Model) currentPrefs() prefs.Prefs {
	return prefs.Prefs{Theme: m.theme.Name, View: m.currentView.String()}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = statusLine{text: text, isErr: isErr, at: time.Now()}
}

// clampSelections keeps cursors in range after the data changed underneath.
func (m *Model) clampSelections() {
	m.itemRow = clamp(m.itemRow, len(m.snapshot.Items))
	m.fileRow = clamp(m.fileRow, len(m.snapshot.Files))
	m.cacheSel = clamp(m.cacheSel, len(m.cacheRows))
}

func clamp(row, n int) int {
	if row >= n {
		row = n - 1
	}
	if row < 0 {
		row = 0
	}
	return row
}

// contentHeight is the space left for a view after header, tab bar and
// footer.
func (m Model) contentHeight() int {
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) resizeViewports() {
	_, detailWidth := m.itemsPaneWidths()
	m.detailViewport.Width = max(detailWidth-4, 1)
	m.detailViewport.Height = max(m.contentHeight()-2, 1)
	m.diagViewport.Width = max(m.width-4, 1)
	m.diagViewport.Height = max(m.contentHeight()-2, 1)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewItems:
		return m.renderItems()
	case ViewCache:
		return m.renderCache()
	case ViewFiles:
		return m.renderFiles()
	case ViewDiagnostics:
		return m.renderDiagnostics()
	default:
		return ""
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if err != nil && m.ctx.Err() != nil {
		// Cancelled from outside (signal); not a UI failure.
		return nil
	}
	return err
}
