package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
)

// CreateItem stores a new item via POST /items.
func (c *Client) CreateItem(ctx context.Context, id string, data Fields) Result[Item] {
	if strings.TrimSpace(id) == "" {
		return failed[Item]("item id required", fallbackHTTP)
	}
	return sendJSON[Item](ctx, c, http.MethodPost, "/items", createItemBody{ID: id, Data: orEmpty(data)})
}

// GetItem fetches one item via GET /items/{id}.
func (c *Client) GetItem(ctx context.Context, id string) Result[ItemLookup] {
	if strings.TrimSpace(id) == "" {
		return failed[ItemLookup]("item id required", fallbackHTTP)
	}
	return sendJSON[ItemLookup](ctx, c, http.MethodGet, itemPath(id), nil)
}

// ListItems fetches every item via GET /items.
func (c *Client) ListItems(ctx context.Context) Result[ItemList] {
	return sendJSON[ItemList](ctx, c, http.MethodGet, "/items", nil)
}

// UpdateItem replaces an item's data via PUT /items/{id}. timestamp is the
// token the caller last observed; the server rejects stale writes.
func (c *Client) UpdateItem(ctx context.Context, id string, timestamp int64, data Fields) Result[Message] {
	if strings.TrimSpace(id) == "" {
		return failed[Message]("item id required", fallbackHTTP)
	}
	return sendJSON[Message](ctx, c, http.MethodPut, itemPath(id), updateItemBody{Timestamp: timestamp, Data: orEmpty(data)})
}

// DeleteItem removes an item via DELETE /items/{id}.
func (c *Client) DeleteItem(ctx context.Context, id string, timestamp int64) Result[Message] {
	if strings.TrimSpace(id) == "" {
		return failed[Message]("item id required", fallbackHTTP)
	}
	return sendJSON[Message](ctx, c, http.MethodDelete, itemPath(id), deleteItemBody{Timestamp: timestamp})
}

// SetCache stores value under key via POST /cache. A ttl of zero means no
// expiry and is always sent explicitly.
func (c *Client) SetCache(ctx context.Context, key string, value Value, ttl int) Result[CacheEntry] {
	if strings.TrimSpace(key) == "" {
		return failed[CacheEntry]("cache key required", fallbackHTTP)
	}
	return sendJSON[CacheEntry](ctx, c, http.MethodPost, "/cache", setCacheBody{Key: key, Value: value, TTL: ttl})
}

// GetCache reads a key via GET /cache/{key}.
func (c *Client) GetCache(ctx context.Context, key string) Result[CacheEntry] {
	if strings.TrimSpace(key) == "" {
		return failed[CacheEntry]("cache key required", fallbackHTTP)
	}
	return sendJSON[CacheEntry](ctx, c, http.MethodGet, cachePath(key), nil)
}

// DeleteCache removes a key via DELETE /cache/{key}.
func (c *Client) DeleteCache(ctx context.Context, key string) Result[CacheDeletion] {
	if strings.TrimSpace(key) == "" {
		return failed[CacheDeletion]("cache key required", fallbackHTTP)
	}
	return sendJSON[CacheDeletion](ctx, c, http.MethodDelete, cachePath(key), nil)
}

// ListFiles fetches the bucket listing via GET /files.
func (c *Client) ListFiles(ctx context.Context) Result[FileList] {
	return sendJSON[FileList](ctx, c, http.MethodGet, "/files", nil)
}

// UploadFile posts content as a multipart form with a single "file" field.
// name is used as the part's filename; blank names become "blob".
func (c *Client) UploadFile(ctx context.Context, name string, content io.Reader) Result[Message] {
	if content == nil {
		return failed[Message]("upload content required", fallbackUpload)
	}
	filename := filepath.Base(strings.TrimSpace(name))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		filename = "blob"
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err == nil {
		_, err = io.Copy(part, content)
	}
	if err == nil {
		err = form.Close()
	}
	if err != nil {
		err = fmt.Errorf("build upload form: %w", err)
		if c != nil {
			c.logf("api request failed: POST /upload: %v", err)
		}
		return failed[Message](err.Error(), fallbackUpload)
	}

	return send[Message](ctx, c, call{
		method:   http.MethodPost,
		endpoint: "/upload",
		body:     buf.Bytes(),
		header:   http.Header{"Content-Type": []string{form.FormDataContentType()}},
		fallback: fallbackUpload,
		failure:  fallbackUpload,
	})
}

// CheckHealth queries the health endpoint, which lives at the host root
// rather than under the API prefix.
func (c *Client) CheckHealth(ctx context.Context) Result[Health] {
	if c == nil {
		return failed[Health]("client is nil", fallbackHealth)
	}
	return send[Health](ctx, c, call{
		method:   http.MethodGet,
		base:     healthBase(c.baseURL),
		endpoint: "/health",
		fallback: fallbackHealth,
		failure:  fallbackHealth,
	})
}

// healthBase drops the first literal "/api" from base. This is a substring
// removal, not a path-segment strip: a host such as "http://api.example/api"
// is truncated inside the authority ("http:/.example/api").
func healthBase(base string) string {
	return strings.Replace(base, "/api", "", 1)
}

func sendJSON[T any](ctx context.Context, c *Client, method, endpoint string, body any) Result[T] {
	in := call{
		method:   method,
		endpoint: endpoint,
		fallback: fallbackHTTP,
		failure:  fallbackNetwork,
	}
	if body != nil {
		data, err := encodeJSON(body)
		if err != nil {
			err = fmt.Errorf("encode request: %w", err)
			if c != nil {
				c.logf("api request failed: %s %s: %v", method, endpoint, err)
			}
			return failed[T](err.Error(), fallbackNetwork)
		}
		in.body = data
	}
	return send[T](ctx, c, in)
}

func itemPath(id string) string {
	return "/items/" + url.PathEscape(id)
}

func cachePath(key string) string {
	return "/cache/" + url.PathEscape(key)
}

func orEmpty(f Fields) Fields {
	if f == nil {
		return Fields{}
	}
	return f
}
