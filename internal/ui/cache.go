package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

func (m Model) renderCache() string {
	styles := m.theme.Styles()
	height := m.contentHeight()

	if len(m.cacheRows) == 0 {
		msg := styles.MutedText.Render("No keys yet. Press / to look up a key or s to set one.")
		return pane(styles.FocusPane, msg, m.width, height)
	}

	rows := make([][]string, 0, len(m.cacheRows))
	for _, r := range m.cacheRows {
		ttl := "none"
		if r.ttl > 0 {
			ttl = fmt.Sprintf("%ds", r.ttl)
		}
		rows = append(rows, []string{r.key, r.value.String(), ttl, r.op, humanize.Time(r.at)})
	}
	cols := []column{
		{title: "Key", width: 24},
		{title: "Value"},
		{title: "TTL", width: 8},
		{title: "Via", width: 4},
		{title: "When", width: 16},
	}
	table := renderTable(styles, cols, rows, m.cacheSel, m.width-4, height-2)
	return pane(styles.FocusPane, table, m.width, height)
}

func (m Model) handleCacheKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CacheLookup):
		m.modal = m.cacheLookupForm()
		return m, nil
	case key.Matches(msg, m.keys.CacheSet):
		m.modal = m.cacheSetForm()
		return m, nil
	}

	count := len(m.cacheRows)
	if count == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cacheSel < count-1 {
			m.cacheSel++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cacheSel > 0 {
			m.cacheSel--
		}
	case key.Matches(msg, m.keys.Top):
		m.cacheSel = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cacheSel = count - 1
	case key.Matches(msg, m.keys.Confirm):
		return m, getCacheCmd(m.ctx, m.client, m.cacheRows[m.cacheSel].key)
	case key.Matches(msg, m.keys.CacheDelete):
		k := m.cacheRows[m.cacheSel].key
		m.modal = &confirmModal{
			question: fmt.Sprintf("Delete cache key %s?", k),
			onYes:    deleteCacheCmd(m.ctx, m.client, k),
		}
	}
	return m, nil
}

// handleCacheResult folds a cache call's outcome into the session list.
func (m *Model) handleCacheResult(msg cacheMsg) {
	if msg.err != "" {
		m.setStatus(msg.err, true)
		if msg.op == "get" {
			m.removeCacheRow(msg.key)
		}
		return
	}
	m.setStatus(msg.text, false)

	switch msg.op {
	case "get", "set":
		k := msg.entry.Key
		if k == "" {
			k = msg.key
		}
		m.removeCacheRow(k)
		row := cacheRow{
			key:   k,
			value: msg.entry.Value,
			ttl:   msg.entry.TTL,
			op:    msg.op,
			at:    m.status.at,
		}
		m.cacheRows = append([]cacheRow{row}, m.cacheRows...)
		m.cacheSel = 0
	case "delete":
		m.removeCacheRow(msg.key)
	}
	m.cacheSel = clamp(m.cacheSel, len(m.cacheRows))
}

func (m *Model) removeCacheRow(key string) {
	out := m.cacheRows[:0]
	for _, r := range m.cacheRows {
		if r.key != key {
			out = append(out, r)
		}
	}
	m.cacheRows = out
}

func (m Model) cacheLookupForm() Modal {
	ctx, client := m.ctx, m.client
	return newFormModal("Look up cache key", func(values []string) (tea.Cmd, error) {
		k := strings.TrimSpace(values[0])
		if k == "" {
			return nil, fmt.Errorf("key is required")
		}
		return getCacheCmd(ctx, client, k), nil
	},
		newField("Key", "session:42", ""),
	)
}

func (m Model) cacheSetForm() Modal {
	ctx, client := m.ctx, m.client
	return newFormModal("Set cache key", func(values []string) (tea.Cmd, error) {
		k := strings.TrimSpace(values[0])
		if k == "" {
			return nil, fmt.Errorf("key is required")
		}
		ttl, err := parseTTL(values[2])
		if err != nil {
			return nil, err
		}
		return setCacheCmd(ctx, client, k, parseCacheValue(values[1]), ttl), nil
	},
		newField("Key", "session:42", ""),
		newField("Value (JSON or text)", `{"user": "ada"}`, ""),
		newField("TTL seconds", "blank for none", ""),
	)
}
