package api

// Item is a server-side record. Timestamp is the optimistic-concurrency token
// callers must echo back on update and delete.
type Item struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Data      Fields `json:"data"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// ItemLookup mirrors GET /items/{id}. Source names the backend tier that
// answered (for example "cache" or "database").
type ItemLookup struct {
	Source string `json:"source"`
	Item   Item   `json:"item"`
}

// ItemList mirrors GET /items.
type ItemList struct {
	Count int    `json:"count"`
	Items []Item `json:"items"`
}

// Message is the acknowledgement body returned by mutating calls.
type Message struct {
	Message string `json:"message"`
}

// CacheEntry is a key/value pair. A TTL of zero means no expiry.
type CacheEntry struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
	TTL   int    `json:"ttl,omitempty"`
}

// CacheDeletion mirrors DELETE /cache/{key}.
type CacheDeletion struct {
	Message string `json:"message"`
	Deleted bool   `json:"deleted"`
}

// FileList mirrors GET /files. File entries are server-defined.
type FileList struct {
	Bucket string  `json:"bucket"`
	Count  int     `json:"count"`
	Files  []Value `json:"files"`
}

// Health mirrors GET /health at the host root.
type Health struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// request bodies

type createItemBody struct {
	ID   string `json:"id"`
	Data Fields `json:"data"`
}

type updateItemBody struct {
	Timestamp int64  `json:"timestamp"`
	Data      Fields `json:"data"`
}

type deleteItemBody struct {
	Timestamp int64 `json:"timestamp"`
}

type setCacheBody struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
	TTL   int    `json:"ttl"`
}
