package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/five82/ferry/internal/api"
)

// itemsPaneWidths splits the width between the item table and the detail
// pane.
func (m Model) itemsPaneWidths() (table, detail int) {
	table = m.width * 2 / 5
	if table < 30 {
		table = min(30, m.width)
	}
	return table, max(m.width-table, 0)
}

func (m Model) selectedItem() *api.Item {
	if m.itemRow < 0 || m.itemRow >= len(m.snapshot.Items) {
		return nil
	}
	item := m.snapshot.Items[m.itemRow]
	return &item
}

func (m Model) renderItems() string {
	styles := m.theme.Styles()
	height := m.contentHeight()
	tableWidth, detailWidth := m.itemsPaneWidths()

	var table string
	if len(m.snapshot.Items) == 0 {
		table = styles.MutedText.Render("No items. Press n to create one.")
	} else {
		rows := make([][]string, 0, len(m.snapshot.Items))
		for _, item := range m.snapshot.Items {
			rows = append(rows, []string{
				item.ID,
				fmt.Sprintf("%d", len(item.Data)),
				formatMillis(item.Timestamp),
			})
		}
		cols := []column{{title: "ID"}, {title: "Keys", width: 4}, {title: "Modified", width: 14}}
		table = renderTable(styles, cols, rows, m.itemRow, tableWidth-4, height-2)
	}

	left := pane(styles.FocusPane, table, tableWidth, height)
	right := pane(styles.Pane, m.detailViewport.View(), detailWidth, height)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// updateDetailViewport re-renders the selected item into the detail pane.
func (m *Model) updateDetailViewport() {
	m.detailViewport.SetContent(m.renderItemDetail())
}

func (m Model) renderItemDetail() string {
	styles := m.theme.Styles()
	item := m.selectedItem()
	if item == nil {
		return styles.FaintText.Render("Select an item")
	}

	source := ""
	if m.lookup != nil && m.lookup.Item.ID == item.ID {
		// A fresh GET is more current than the last poll.
		fetched := m.lookup.Item
		item = &fetched
		source = m.lookup.Source
	}

	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("%-10s", label)))
		b.WriteString(styles.Text.Render(value))
		b.WriteString("\n")
	}

	b.WriteString(styles.AccentText.Bold(true).Render(item.ID))
	b.WriteString("\n\n")
	row("Timestamp", fmt.Sprintf("%d", item.Timestamp))
	row("Created", formatStamp(item.CreatedAt))
	if item.UpdatedAt != "" {
		row("Updated", formatStamp(item.UpdatedAt))
	}
	if source != "" {
		row("Source", source)
	}
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Data"))
	b.WriteString("\n")
	b.WriteString(styles.Text.Render(prettyFields(item.Data)))
	return b.String()
}

func (m Model) handleItemsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NewItem):
		m.modal = m.newItemForm()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.detailViewport.HalfPageDown()
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.detailViewport.HalfPageUp()
		return m, nil
	}

	count := len(m.snapshot.Items)
	if count == 0 {
		return m, nil
	}

	prev := m.itemRow
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.itemRow < count-1 {
			m.itemRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.itemRow > 0 {
			m.itemRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.itemRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.itemRow = count - 1

	case key.Matches(msg, m.keys.Confirm):
		item := m.selectedItem()
		return m, lookupItemCmd(m.ctx, m.client, item.ID)

	case key.Matches(msg, m.keys.EditItem):
		m.modal = m.editItemForm(*m.selectedItem())
		return m, nil

	case key.Matches(msg, m.keys.DeleteItem):
		item := m.selectedItem()
		m.modal = &confirmModal{
			question: fmt.Sprintf("Delete item %s?", item.ID),
			onYes:    deleteItemCmd(m.ctx, m.client, item.ID, item.Timestamp),
		}
		return m, nil
	}

	if m.itemRow != prev {
		m.detailViewport.GotoTop()
		m.updateDetailViewport()
	}
	return m, nil
}

func (m Model) newItemForm() Modal {
	ctx, client := m.ctx, m.client
	return newFormModal("New item", func(values []string) (tea.Cmd, error) {
		id := strings.TrimSpace(values[0])
		if id == "" {
			id = uuid.NewString()
		}
		data, err := parseItemData(values[1])
		if err != nil {
			return nil, err
		}
		return createItemCmd(ctx, client, id, data), nil
	},
		newField("ID", "blank generates one", ""),
		newField("Data (JSON object)", `{"name": "example"}`, ""),
	)
}

// editItemForm replaces the item's data. The timestamp captured here is sent
// back so a concurrent change is rejected rather than overwritten.
func (m Model) editItemForm(item api.Item) Modal {
	ctx, client := m.ctx, m.client
	current := api.Object(item.Data).String()
	return newFormModal(fmt.Sprintf("Update %s", item.ID), func(values []string) (tea.Cmd, error) {
		data, err := parseItemData(values[0])
		if err != nil {
			return nil, err
		}
		return updateItemCmd(ctx, client, item.ID, item.Timestamp, data), nil
	},
		newField("Data (JSON object)", "{}", current),
	)
}

func parseItemData(text string) (api.Fields, error) {
	if strings.TrimSpace(text) == "" {
		return api.Fields{}, nil
	}
	data, err := api.ParseFields(text)
	if err != nil {
		return nil, fmt.Errorf("data must be a JSON object: %v", err)
	}
	return data, nil
}
