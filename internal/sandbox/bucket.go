package sandbox

import (
	"sort"
	"sync"
	"time"

	"github.com/five82/ferry/internal/api"
)

// storedFile is an uploaded object kept in memory.
type storedFile struct {
	name        string
	contentType string
	data        []byte
	uploadedAt  time.Time
}

// Bucket is an in-memory object store keyed by file name. Uploading a name
// that already exists replaces it.
type Bucket struct {
	name string

	mu    sync.RWMutex
	files map[string]storedFile
	now   func() time.Time
}

// NewBucket creates an empty bucket.
func NewBucket(name string) *Bucket {
	if name == "" {
		name = "uploads"
	}
	return &Bucket{name: name, files: make(map[string]storedFile), now: time.Now}
}

// Name returns the bucket name reported by listings.
func (b *Bucket) Name() string {
	return b.name
}

// Put stores data under name.
func (b *Bucket) Put(name, contentType string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files[name] = storedFile{
		name:        name,
		contentType: contentType,
		data:        append([]byte(nil), data...),
		uploadedAt:  b.now().UTC(),
	}
}

// Open returns a copy of the stored bytes for name.
func (b *Bucket) Open(name string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	f, ok := b.files[name]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), f.data...), true
}

// List describes every stored file, sorted by name.
func (b *Bucket) List() []api.Value {
	b.mu.RLock()
	names := make([]string, 0, len(b.files))
	for name := range b.files {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]api.Value, 0, len(names))
	for _, name := range names {
		f := b.files[name]
		out = append(out, api.Object(api.Fields{
			"name":        api.String(f.name),
			"size":        api.Int(int64(len(f.data))),
			"contentType": api.String(f.contentType),
			"uploadedAt":  api.String(f.uploadedAt.Format(time.RFC3339)),
		}))
	}
	b.mu.RUnlock()
	return out
}
