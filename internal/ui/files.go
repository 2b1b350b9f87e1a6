package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) renderFiles() string {
	styles := m.theme.Styles()
	height := m.contentHeight()

	title := styles.MutedText.Render("Bucket ") + styles.AccentText.Render(m.bucketName())
	if len(m.snapshot.Files) == 0 {
		body := title + "\n\n" + styles.MutedText.Render("No files. Press u to upload one.")
		return pane(styles.FocusPane, body, m.width, height)
	}

	rows := make([][]string, 0, len(m.snapshot.Files))
	for _, f := range m.snapshot.Files {
		rows = append(rows, []string{
			fileName(f),
			fileSize(f),
			fileString(f, "contentType", "content_type", "type"),
			formatStamp(fileString(f, "uploadedAt", "uploaded_at", "modified")),
		})
	}
	cols := []column{
		{title: "Name"},
		{title: "Size", width: 10},
		{title: "Type", width: 24},
		{title: "Uploaded", width: 16},
	}
	table := renderTable(styles, cols, rows, m.fileRow, m.width-4, height-4)
	return pane(styles.FocusPane, title+"\n\n"+table, m.width, height)
}

func (m Model) bucketName() string {
	if b := strings.TrimSpace(m.snapshot.Bucket); b != "" {
		return b
	}
	return "-"
}

func (m Model) handleFilesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Upload) {
		m.modal = m.uploadForm()
		return m, nil
	}

	count := len(m.snapshot.Files)
	if count == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.fileRow < count-1 {
			m.fileRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.fileRow > 0 {
			m.fileRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.fileRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.fileRow = count - 1
	}
	return m, nil
}

func (m Model) uploadForm() Modal {
	ctx, client := m.ctx, m.client
	return newFormModal("Upload file", func(values []string) (tea.Cmd, error) {
		path, err := expandHome(strings.TrimSpace(values[0]))
		if err != nil {
			return nil, err
		}
		return uploadCmd(ctx, client, path), nil
	},
		newField("Path", "~/Downloads/report.csv", ""),
	)
}
