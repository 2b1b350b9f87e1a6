package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/five82/ferry/internal/api"
)

func truncate(value string, limit int) string {
	value = strings.ReplaceAll(value, "\n", " ")
	if limit <= 0 {
		return ""
	}
	return runewidth.Truncate(value, limit, "…")
}

func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || value == "" {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	keep := limit - 1 // room for ellipsis rune
	prefix := keep / 2
	suffix := keep - prefix
	return string(runes[:prefix]) + "…" + string(runes[len(runes)-suffix:])
}

// fit pads or truncates value to exactly width display cells.
func fit(value string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(truncate(value, width), width)
}

type column struct {
	title string
	width int // zero takes the remaining width
}

// renderTable draws a header row and as many rows as fit in height, keeping
// the selected row visible.
func renderTable(styles Styles, cols []column, rows [][]string, selected, width, height int) string {
	widths := columnWidths(cols, width)

	var b strings.Builder
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = fit(c.title, widths[i])
	}
	b.WriteString(styles.MutedText.Bold(true).Render(strings.Join(header, " ")))

	visible := height - 1
	if visible < 1 {
		return b.String()
	}
	offset := 0
	if selected >= visible {
		offset = selected - visible + 1
	}

	for i := offset; i < len(rows) && i < offset+visible; i++ {
		cells := make([]string, len(cols))
		for j := range cols {
			cell := ""
			if j < len(rows[i]) {
				cell = rows[i][j]
			}
			cells[j] = fit(cell, widths[j])
		}
		line := strings.Join(cells, " ")
		b.WriteString("\n")
		if i == selected {
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
	}
	return b.String()
}

func columnWidths(cols []column, total int) []int {
	widths := make([]int, len(cols))
	fixed, flex := 0, -1
	for i, c := range cols {
		if c.width == 0 && flex < 0 {
			flex = i
			continue
		}
		widths[i] = c.width
		fixed += c.width
	}
	gaps := len(cols) - 1
	if flex >= 0 {
		widths[flex] = max(total-fixed-gaps, 4)
	}
	return widths
}

// pane wraps content in a bordered box of the given outer size.
func pane(style lipgloss.Style, content string, width, height int) string {
	return style.
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		Padding(0, 1).
		Render(content)
}

// prettyFields renders item data as indented JSON.
func prettyFields(f api.Fields) string {
	if f == nil {
		f = api.Fields{}
	}
	out, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Sprintf("<invalid data: %v>", err)
	}
	return string(out)
}

// parseCacheValue reads JSON when the text is JSON and treats it as a plain
// string otherwise.
func parseCacheValue(text string) api.Value {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return api.String("")
	}
	if v, err := api.Parse(trimmed); err == nil {
		return v
	}
	return api.String(text)
}

// parseTTL reads a TTL in whole seconds; blank means none.
func parseTTL(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("ttl must be a whole number of seconds")
	}
	return n, nil
}

// formatMillis renders a Unix-millisecond timestamp relative to now.
func formatMillis(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return humanize.Time(time.UnixMilli(ms))
}

// formatStamp renders an RFC 3339 string relative to now, or verbatim when it
// does not parse.
func formatStamp(raw string) string {
	if raw == "" {
		return "-"
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return humanize.Time(t)
	}
	return raw
}

// fileName extracts a display name from a server-defined file entry.
func fileName(v api.Value) string {
	if s, ok := v.AsString(); ok {
		return s
	}
	for _, k := range []string{"name", "key", "filename", "path"} {
		if f, ok := v.Get(k); ok {
			if s, ok := f.AsString(); ok {
				return s
			}
		}
	}
	return v.String()
}

func fileString(v api.Value, keys ...string) string {
	for _, k := range keys {
		if f, ok := v.Get(k); ok {
			if s, ok := f.AsString(); ok {
				return s
			}
		}
	}
	return ""
}

func fileSize(v api.Value) string {
	f, ok := v.Get("size")
	if !ok {
		return "-"
	}
	n, ok := f.AsInt()
	if !ok || n < 0 {
		return "-"
	}
	return humanize.Bytes(uint64(n))
}

// expandHome resolves a leading ~ to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
