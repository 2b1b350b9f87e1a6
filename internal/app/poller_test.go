package app

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/ferry/internal/api"
	"github.com/five82/ferry/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 64; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type fakeFetcher struct {
	health api.Result[api.Health]
	items  api.Result[api.ItemList]
	files  api.Result[api.FileList]
	calls  atomic.Int32
}

func (f *fakeFetcher) CheckHealth(context.Context) api.Result[api.Health] {
	f.calls.Add(1)
	return f.health
}

func (f *fakeFetcher) ListItems(context.Context) api.Result[api.ItemList] {
	return f.items
}

func (f *fakeFetcher) ListFiles(context.Context) api.Result[api.FileList] {
	return f.files
}

func okResult[T any](v T) api.Result[T] {
	return api.Result[T]{Data: &v}
}

func TestRefresh_PopulatesStore(t *testing.T) {
	f := &fakeFetcher{
		health: okResult(api.Health{Status: "healthy"}),
		items:  okResult(api.ItemList{Count: 1, Items: []api.Item{{ID: "x1", Timestamp: 3}}}),
		files:  okResult(api.FileList{Bucket: "uploads", Files: []api.Value{api.String("a")}}),
	}
	store := &state.Store{}

	if err := refresh(context.Background(), store, f); err != nil {
		t.Fatalf("refresh returned error: %v", err)
	}
	snap := store.Snapshot()
	if !snap.HasHealth || snap.Health.Status != "healthy" {
		t.Fatalf("health = %#v, want healthy", snap.Health)
	}
	if len(snap.Items) != 1 || snap.Items[0].ID != "x1" {
		t.Fatalf("items = %#v, want x1", snap.Items)
	}
	if snap.Bucket != "uploads" || len(snap.Files) != 1 {
		t.Fatalf("files = %q %#v", snap.Bucket, snap.Files)
	}
}

func TestRefresh_AnyFailureRecordsError(t *testing.T) {
	f := &fakeFetcher{
		health: okResult(api.Health{Status: "healthy"}),
		items:  api.Result[api.ItemList]{Error: "database unavailable"},
		files:  okResult(api.FileList{}),
	}
	store := &state.Store{}
	store.Update(state.Refresh{Items: []api.Item{{ID: "old"}}}, nil)

	err := refresh(context.Background(), store, f)
	if err == nil || !strings.Contains(err.Error(), "items: database unavailable") {
		t.Fatalf("refresh error = %v, want items failure", err)
	}
	snap := store.Snapshot()
	if snap.ConsecutiveFailures != 1 {
		t.Fatalf("ConsecutiveFailures = %d, want 1", snap.ConsecutiveFailures)
	}
	if len(snap.Items) != 1 || snap.Items[0].ID != "old" {
		t.Fatalf("items = %#v, want previous data kept", snap.Items)
	}
}

func TestStartPoller_StopsOnCancel(t *testing.T) {
	f := &fakeFetcher{
		health: okResult(api.Health{Status: "healthy"}),
		items:  okResult(api.ItemList{}),
		files:  okResult(api.FileList{}),
	}
	store := &state.Store{}
	ctx, cancel := context.WithCancel(context.Background())

	StartPoller(ctx, store, f, 10*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for f.calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("poller made %d calls, want >= 2", f.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	time.Sleep(30 * time.Millisecond)
	stopped := f.calls.Load()
	time.Sleep(50 * time.Millisecond)
	if got := f.calls.Load(); got != stopped {
		t.Fatalf("poller kept running after cancel: %d -> %d calls", stopped, got)
	}
}
