package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Service is the full set of endpoint bindings. *Client implements it; tests
// and the UI can substitute their own.
type Service interface {
	CreateItem(ctx context.Context, id string, data Fields) Result[Item]
	GetItem(ctx context.Context, id string) Result[ItemLookup]
	ListItems(ctx context.Context) Result[ItemList]
	UpdateItem(ctx context.Context, id string, timestamp int64, data Fields) Result[Message]
	DeleteItem(ctx context.Context, id string, timestamp int64) Result[Message]
	SetCache(ctx context.Context, key string, value Value, ttl int) Result[CacheEntry]
	GetCache(ctx context.Context, key string) Result[CacheEntry]
	DeleteCache(ctx context.Context, key string) Result[CacheDeletion]
	ListFiles(ctx context.Context) Result[FileList]
	UploadFile(ctx context.Context, name string, content io.Reader) Result[Message]
	CheckHealth(ctx context.Context) Result[Health]
}

// Ensure Client implements Service at compile time.
var _ Service = (*Client)(nil)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL   = "http://localhost:8080/api"
	defaultUserAgent = "ferry/0.1"

	fallbackHTTP    = "An error occurred"
	fallbackNetwork = "Network error"
	fallbackUpload  = "Upload failed"
	fallbackHealth  = "Health check failed"
)

// Client talks to the items/cache/files HTTP API. It holds no mutable state
// and is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
	logger    *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger routes diagnostic output for failed calls to l.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout bounds every call. Zero leaves the transport default (none).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Transport: c.http.Transport, Timeout: d}
		}
	}
}

// NewClient builds a Client for baseURL. An empty baseURL uses
// DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// call describes one request routed through the normalizer.
type call struct {
	method   string
	base     string // empty uses the client base URL
	endpoint string
	body     []byte
	header   http.Header
	// fallback replaces a missing "error" field on non-2xx responses;
	// failure replaces a blank transport or parse error message.
	fallback string
	failure  string
}

// send performs one call and reduces every outcome to a Result. It never
// returns an error or panics on network, HTTP or JSON failures.
func send[T any](ctx context.Context, c *Client, in call) Result[T] {
	if c == nil {
		return failed[T]("client is nil", in.failure)
	}
	payload, status, err := c.exchange(ctx, in)
	if err != nil {
		c.logf("api request failed: %s %s: %v", in.method, in.endpoint, err)
		return failed[T](err.Error(), in.failure)
	}

	var envelope struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	// Non-object bodies (lists) have no envelope; that is fine.
	_ = json.Unmarshal(payload, &envelope)

	if status < 200 || status > 299 {
		msg, _ := envelope.Error.(string)
		return failed[T](msg, in.fallback)
	}

	var data T
	if err := json.Unmarshal(payload, &data); err != nil {
		err = fmt.Errorf("decode response: %w", err)
		c.logf("api request failed: %s %s: %v", in.method, in.endpoint, err)
		return failed[T](err.Error(), in.failure)
	}
	return succeeded(data, envelope.Message)
}

// exchange issues the request and parses the body as JSON regardless of
// status. The returned error covers transport and parse failures.
func (c *Client) exchange(ctx context.Context, in call) (json.RawMessage, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	base := in.base
	if base == "" {
		base = c.baseURL
	}
	var body io.Reader
	if in.body != nil {
		body = bytes.NewReader(in.body)
	}
	req, err := http.NewRequestWithContext(ctx, in.method, base+in.endpoint, body)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	for key, values := range in.header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	var payload json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return payload, resp.StatusCode, nil
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func encodeJSON(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func parseBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}
