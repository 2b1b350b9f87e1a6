package sandbox

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/five82/ferry/internal/api"
)

func newTestServer(t *testing.T, opts Options) (*api.Client, *httptest.Server) {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	srv := httptest.NewServer(New(openTestStore(t), opts).Handler())
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL+"/api", api.WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client, srv
}

func TestServer_ItemLifecycle(t *testing.T) {
	client, _ := newTestServer(t, Options{})
	ctx := context.Background()

	created := client.CreateItem(ctx, "x1", api.Fields{"name": api.String("first")})
	if !created.OK() {
		t.Fatalf("CreateItem error = %q", created.Error)
	}
	if dup := client.CreateItem(ctx, "x1", nil); dup.Error != "item already exists" {
		t.Fatalf("duplicate CreateItem error = %q", dup.Error)
	}

	first := client.GetItem(ctx, "x1")
	if !first.OK() || first.Data.Source != "database" {
		t.Fatalf("first GetItem = %#v %q, want database", first.Data, first.Error)
	}
	second := client.GetItem(ctx, "x1")
	if !second.OK() || second.Data.Source != "cache" {
		t.Fatalf("second GetItem = %#v %q, want cache", second.Data, second.Error)
	}

	stale := created.Data.Timestamp - 1
	if res := client.UpdateItem(ctx, "x1", stale, api.Fields{}); res.Error != "timestamp mismatch: item was modified" {
		t.Fatalf("stale UpdateItem error = %q", res.Error)
	}

	updated := client.UpdateItem(ctx, "x1", created.Data.Timestamp, api.Fields{"name": api.String("second")})
	if !updated.OK() || updated.Data.Message != "item updated" {
		t.Fatalf("UpdateItem = %#v %q", updated.Data, updated.Error)
	}

	after := client.GetItem(ctx, "x1")
	if !after.OK() || after.Data.Source != "database" {
		t.Fatalf("GetItem after update = %#v %q, want fresh database read", after.Data, after.Error)
	}
	if name, _ := after.Data.Item.Data["name"].AsString(); name != "second" {
		t.Fatalf("name = %q, want second", name)
	}

	if res := client.DeleteItem(ctx, "x1", created.Data.Timestamp); res.OK() {
		t.Fatalf("DeleteItem with old timestamp succeeded")
	}
	if res := client.DeleteItem(ctx, "x1", after.Data.Item.Timestamp); !res.OK() {
		t.Fatalf("DeleteItem error = %q", res.Error)
	}
	if res := client.GetItem(ctx, "x1"); res.Error != "item not found" {
		t.Fatalf("GetItem after delete error = %q", res.Error)
	}

	list := client.ListItems(ctx)
	if !list.OK() || list.Data.Count != 0 || list.Data.Items == nil {
		t.Fatalf("ListItems = %#v %q, want empty list", list.Data, list.Error)
	}
}

func TestServer_Cache(t *testing.T) {
	client, _ := newTestServer(t, Options{})
	ctx := context.Background()

	set := client.SetCache(ctx, "greeting", api.Object(api.Fields{"hi": api.Bool(true)}), 0)
	if !set.OK() || set.Data.Key != "greeting" {
		t.Fatalf("SetCache = %#v %q", set.Data, set.Error)
	}

	got := client.GetCache(ctx, "greeting")
	if !got.OK() {
		t.Fatalf("GetCache error = %q", got.Error)
	}
	if got.Data.Value.String() != `{"hi":true}` || got.Data.TTL != 0 {
		t.Fatalf("GetCache = %s ttl=%d", got.Data.Value, got.Data.TTL)
	}

	withTTL := client.SetCache(ctx, "a b/c", api.Int(7), 60)
	if !withTTL.OK() {
		t.Fatalf("SetCache(ttl) error = %q", withTTL.Error)
	}
	if res := client.GetCache(ctx, "a b/c"); !res.OK() || res.Data.TTL < 59 || res.Data.TTL > 60 {
		t.Fatalf("GetCache(ttl) = %#v %q", res.Data, res.Error)
	}

	del := client.DeleteCache(ctx, "greeting")
	if !del.OK() || !del.Data.Deleted {
		t.Fatalf("DeleteCache = %#v %q", del.Data, del.Error)
	}
	again := client.DeleteCache(ctx, "greeting")
	if !again.OK() || again.Data.Deleted {
		t.Fatalf("second DeleteCache = %#v %q, want deleted=false", again.Data, again.Error)
	}
	if res := client.GetCache(ctx, "greeting"); res.Error != "key not found" {
		t.Fatalf("GetCache after delete error = %q", res.Error)
	}
}

func TestServer_UploadAndList(t *testing.T) {
	client, _ := newTestServer(t, Options{Bucket: "reports"})
	ctx := context.Background()

	res := client.UploadFile(ctx, "/tmp/report.csv", strings.NewReader("a,b\n1,2\n"))
	if !res.OK() || res.Data.Message != "uploaded report.csv" {
		t.Fatalf("UploadFile = %#v %q", res.Data, res.Error)
	}

	files := client.ListFiles(ctx)
	if !files.OK() {
		t.Fatalf("ListFiles error = %q", files.Error)
	}
	if files.Data.Bucket != "reports" || files.Data.Count != 1 {
		t.Fatalf("ListFiles = %#v", files.Data)
	}
	entry := files.Data.Files[0]
	if name, _ := entry.Get("name"); name.String() != `"report.csv"` {
		t.Fatalf("file name = %s", name)
	}
	if size, _ := entry.Get("size"); size.String() != "8" {
		t.Fatalf("file size = %s", size)
	}
}

func TestServer_UploadWithoutFileField(t *testing.T) {
	_, srv := newTestServer(t, Options{})

	resp, err := http.Post(srv.URL+"/api/upload", "multipart/form-data; boundary=x", strings.NewReader("--x--\r\n"))
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestServer_Health(t *testing.T) {
	client, _ := newTestServer(t, Options{})

	res := client.CheckHealth(context.Background())
	if !res.OK() {
		t.Fatalf("CheckHealth error = %q", res.Error)
	}
	if res.Data.Status != "healthy" || res.Data.Services["database"] != "healthy" {
		t.Fatalf("CheckHealth = %#v", res.Data)
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	_, srv := newTestServer(t, Options{})

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/items", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS returned error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Allow-Origin = %q, want *", got)
	}
}

func TestServer_UnknownRouteIsJSON(t *testing.T) {
	_, srv := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/api/nope")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusNotFound || !bytes.Contains(body, []byte(`"error":"not found"`)) {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
}

func TestServer_FailureInjection(t *testing.T) {
	client, _ := newTestServer(t, Options{FailRate: 1, FailCode: http.StatusServiceUnavailable})

	if res := client.ListItems(context.Background()); res.Error != "failure injected" {
		t.Fatalf("ListItems error = %q, want failure injected", res.Error)
	}
	if res := client.CheckHealth(context.Background()); res.Error != "failure injected" {
		t.Fatalf("CheckHealth error = %q, want failure injected", res.Error)
	}
}

func TestServer_LatencyHonoursCancel(t *testing.T) {
	client, _ := newTestServer(t, Options{Latency: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	if res := client.ListItems(ctx); res.OK() {
		t.Fatalf("ListItems succeeded despite latency")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("ListItems took %v, want prompt cancel", elapsed)
	}
}

func TestRoutes_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range New(openTestStore(t), Options{}).Routes() {
		if seen[r.Id] {
			t.Fatalf("duplicate route id %s", r.Id)
		}
		seen[r.Id] = true
	}
}
