package ui

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/ferry/internal/api"
	"github.com/five82/ferry/internal/logtail"
	"github.com/five82/ferry/internal/prefs"
	"github.com/five82/ferry/internal/state"
)

const diagnosticsLines = 500

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type diagnosticsMsg struct {
	entries []logtail.Entry
	err     error
}

type itemLookupMsg struct {
	lookup *api.ItemLookup
	err    string
}

// mutationMsg reports a write that should be followed by a refresh.
type mutationMsg struct {
	text string
	err  string
}

type cacheMsg struct {
	op      string // get, set or delete
	key     string
	entry   *api.CacheEntry
	deleted bool
	text    string
	err     string
}

type prefsSavedMsg struct {
	err error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// refreshCmd polls immediately instead of waiting for the next poller tick.
func refreshCmd(ctx context.Context, refresh func(context.Context) error, store *state.Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		if refresh != nil {
			_ = refresh(ctx)
		}
		return snapshotMsg(store.Snapshot())
	}
}

func diagnosticsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := logtail.Tail(path, diagnosticsLines)
		return diagnosticsMsg{entries: entries, err: err}
	}
}

func savePrefsCmd(path string, p prefs.Prefs) tea.Cmd {
	return func() tea.Msg {
		return prefsSavedMsg{err: prefs.Save(path, p)}
	}
}

func lookupItemCmd(ctx context.Context, client api.Service, id string) tea.Cmd {
	return func() tea.Msg {
		res := client.GetItem(ctx, id)
		if !res.OK() {
			return itemLookupMsg{err: fmt.Sprintf("get %s: %s", id, res.Error)}
		}
		return itemLookupMsg{lookup: res.Data}
	}
}

func createItemCmd(ctx context.Context, client api.Service, id string, data api.Fields) tea.Cmd {
	return func() tea.Msg {
		res := client.CreateItem(ctx, id, data)
		if !res.OK() {
			return mutationMsg{err: fmt.Sprintf("create %s: %s", id, res.Error)}
		}
		return mutationMsg{text: fmt.Sprintf("created %s", res.Data.ID)}
	}
}

func updateItemCmd(ctx context.Context, client api.Service, id string, timestamp int64, data api.Fields) tea.Cmd {
	return func() tea.Msg {
		res := client.UpdateItem(ctx, id, timestamp, data)
		if !res.OK() {
			return mutationMsg{err: fmt.Sprintf("update %s: %s", id, res.Error)}
		}
		return mutationMsg{text: messageOr(res.Data.Message, "updated "+id)}
	}
}

func deleteItemCmd(ctx context.Context, client api.Service, id string, timestamp int64) tea.Cmd {
	return func() tea.Msg {
		res := client.DeleteItem(ctx, id, timestamp)
		if !res.OK() {
			return mutationMsg{err: fmt.Sprintf("delete %s: %s", id, res.Error)}
		}
		return mutationMsg{text: messageOr(res.Data.Message, "deleted "+id)}
	}
}

func uploadCmd(ctx context.Context, client api.Service, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return mutationMsg{err: fmt.Sprintf("upload: %v", err)}
		}
		defer f.Close()

		res := client.UploadFile(ctx, path, f)
		if !res.OK() {
			return mutationMsg{err: fmt.Sprintf("upload %s: %s", path, res.Error)}
		}
		return mutationMsg{text: messageOr(res.Data.Message, "uploaded "+path)}
	}
}

func getCacheCmd(ctx context.Context, client api.Service, key string) tea.Cmd {
	return func() tea.Msg {
		res := client.GetCache(ctx, key)
		if !res.OK() {
			return cacheMsg{op: "get", key: key, err: fmt.Sprintf("cache get %s: %s", key, res.Error)}
		}
		return cacheMsg{op: "get", key: key, entry: res.Data, text: "found " + key}
	}
}

func setCacheCmd(ctx context.Context, client api.Service, key string, value api.Value, ttl int) tea.Cmd {
	return func() tea.Msg {
		res := client.SetCache(ctx, key, value, ttl)
		if !res.OK() {
			return cacheMsg{op: "set", key: key, err: fmt.Sprintf("cache set %s: %s", key, res.Error)}
		}
		entry := *res.Data
		// Servers may omit fields on set; fall back to what was sent.
		if entry.Key == "" {
			entry.Key = key
		}
		if entry.Value.IsNull() && !value.IsNull() {
			entry.Value = value
		}
		if entry.TTL == 0 {
			entry.TTL = ttl
		}
		return cacheMsg{op: "set", key: key, entry: &entry, text: "stored " + key}
	}
}

func deleteCacheCmd(ctx context.Context, client api.Service, key string) tea.Cmd {
	return func() tea.Msg {
		res := client.DeleteCache(ctx, key)
		if !res.OK() {
			return cacheMsg{op: "delete", key: key, err: fmt.Sprintf("cache delete %s: %s", key, res.Error)}
		}
		return cacheMsg{
			op:      "delete",
			key:     key,
			deleted: res.Data.Deleted,
			text:    messageOr(res.Data.Message, "deleted "+key),
		}
	}
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
