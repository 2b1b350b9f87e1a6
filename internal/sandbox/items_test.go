package sandbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/five82/ferry/internal/api"
)

func openTestStore(t *testing.T) *ItemStore {
	t.Helper()
	store, err := OpenItemStore(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenItemStore returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestItemStore_CreateAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "x1", api.Fields{"a": api.Int(1)})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Timestamp == 0 || created.CreatedAt == "" {
		t.Fatalf("Create = %#v, want timestamp and createdAt", created)
	}

	got, err := store.Get(ctx, "x1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Timestamp != created.Timestamp {
		t.Fatalf("Timestamp = %d, want %d", got.Timestamp, created.Timestamp)
	}
	if n, _ := got.Data["a"].AsInt(); n != 1 {
		t.Fatalf("Data = %v, want a=1", got.Data)
	}

	if _, err := store.Create(ctx, "x1", nil); !errors.Is(err, ErrExists) {
		t.Fatalf("duplicate Create error = %v, want ErrExists", err)
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestItemStore_UpdateRequiresCurrentTimestamp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	created, err := store.Create(ctx, "x1", api.Fields{})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := store.Update(ctx, "x1", created.Timestamp-1, api.Fields{}); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale Update error = %v, want ErrConflict", err)
	}

	// Same clock reading: the token must still advance.
	next, err := store.Update(ctx, "x1", created.Timestamp, api.Fields{"b": api.Bool(true)})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if next <= created.Timestamp {
		t.Fatalf("next timestamp = %d, want > %d", next, created.Timestamp)
	}

	got, err := store.Get(ctx, "x1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.UpdatedAt == "" {
		t.Fatalf("UpdatedAt empty after update")
	}
	if b, _ := got.Data["b"].AsBool(); !b {
		t.Fatalf("Data = %v, want b=true", got.Data)
	}

	if _, err := store.Update(ctx, "missing", 1, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestItemStore_DeleteAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a, _ := store.Create(ctx, "a", nil)
	if _, err := store.Create(ctx, "b", nil); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := store.Delete(ctx, "a", a.Timestamp+1); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale Delete error = %v, want ErrConflict", err)
	}
	if err := store.Delete(ctx, "a", a.Timestamp); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "b" {
		t.Fatalf("List = %#v, want only b", items)
	}
}

func TestItemStore_ListEmptyIsNonNil(t *testing.T) {
	items, err := openTestStore(t).List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if items == nil {
		t.Fatalf("List returned nil slice, want empty")
	}
}
