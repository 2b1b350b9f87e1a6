package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/five82/ferry/internal/api"
)

const (
	maxUploadBytes = 32 << 20
	itemCacheTTL   = 30 * time.Second
)

// Options tune sandbox behaviour.
type Options struct {
	Bucket   string        // name reported by GET /api/files
	Latency  time.Duration // added before every request
	FailRate float64       // fraction of requests answered with FailCode
	FailCode int           // zero means 500
	Logger   *log.Logger   // nil uses the standard logger
}

// Server answers the ferry wire contract: item CRUD, cache, file bucket and
// health.
type Server struct {
	items     *ItemStore
	itemCache *TTLCache[api.Item]
	cache     *TTLCache[api.Value]
	bucket    *Bucket
	opts      Options
	logger    *log.Logger
	now       func() time.Time
}

// Route binds one handler to a method and path.
type Route struct {
	Id      string
	Path    string
	Method  string
	Handler httprouter.Handle
}

// New builds a server backed by items.
func New(items *ItemStore, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		items:     items,
		itemCache: NewTTLCache[api.Item](),
		cache:     NewTTLCache[api.Value](),
		bucket:    NewBucket(opts.Bucket),
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Routes lists every endpoint the server exposes.
func (s *Server) Routes() []Route {
	return []Route{
		{Id: "items.create", Path: "/api/items", Method: http.MethodPost, Handler: s.createItem},
		{Id: "items.list", Path: "/api/items", Method: http.MethodGet, Handler: s.listItems},
		{Id: "items.get", Path: "/api/items/:id", Method: http.MethodGet, Handler: s.getItem},
		{Id: "items.update", Path: "/api/items/:id", Method: http.MethodPut, Handler: s.updateItem},
		{Id: "items.delete", Path: "/api/items/:id", Method: http.MethodDelete, Handler: s.deleteItem},
		{Id: "cache.set", Path: "/api/cache", Method: http.MethodPost, Handler: s.setCache},
		// Keys may contain "/", so they are matched as a catch-all.
		{Id: "cache.get", Path: "/api/cache/*key", Method: http.MethodGet, Handler: s.getCache},
		{Id: "cache.delete", Path: "/api/cache/*key", Method: http.MethodDelete, Handler: s.deleteCache},
		{Id: "files.list", Path: "/api/files", Method: http.MethodGet, Handler: s.listFiles},
		{Id: "files.upload", Path: "/api/upload", Method: http.MethodPost, Handler: s.upload},
		{Id: "health", Path: "/health", Method: http.MethodGet, Handler: s.health},
	}
}

// Handler returns the routed handler wrapped in CORS, latency and failure
// injection.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	seen := make(map[string]bool)
	for _, route := range s.Routes() {
		if seen[route.Id] {
			panic(fmt.Sprintf("route already registered %s", route.Id))
		}
		seen[route.Id] = true
		router.Handle(route.Method, route.Path, route.Handler)
	}
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		s.logger.Printf("sandbox: panic serving %s %s: %v", r.Method, r.URL.Path, v)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
	return cors(s.inject(router))
}

// cors allows any origin, matching what a browser front end served from a
// different port needs.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d := s.opts.Latency; d > 0 {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
		}
		if s.opts.FailRate > 0 && rand.Float64() < s.opts.FailRate {
			code := s.opts.FailCode
			if code == 0 {
				code = http.StatusInternalServerError
			}
			writeError(w, code, "failure injected")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// items

func (s *Server) createItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		ID   string     `json:"id"`
		Data api.Fields `json:"data"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	id := strings.TrimSpace(body.ID)
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	item, err := s.items.Create(r.Context(), id, body.Data)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	items, err := s.items.List(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ItemList{Count: len(items), Items: items})
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if item, _, ok := s.itemCache.Get(id); ok {
		writeJSON(w, http.StatusOK, api.ItemLookup{Source: "cache", Item: item})
		return
	}

	item, err := s.items.Get(r.Context(), id)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.itemCache.Set(id, item, itemCacheTTL)
	writeJSON(w, http.StatusOK, api.ItemLookup{Source: "database", Item: item})
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Timestamp *int64     `json:"timestamp"`
		Data      api.Fields `json:"data"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Timestamp == nil {
		writeError(w, http.StatusBadRequest, "timestamp is required")
		return
	}

	id := ps.ByName("id")
	next, err := s.items.Update(r.Context(), id, *body.Timestamp, body.Data)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.itemCache.Delete(id)
	writeJSON(w, http.StatusOK, map[string]any{"message": "item updated", "timestamp": next})
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Timestamp *int64 `json:"timestamp"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Timestamp == nil {
		writeError(w, http.StatusBadRequest, "timestamp is required")
		return
	}

	id := ps.ByName("id")
	if err := s.items.Delete(r.Context(), id, *body.Timestamp); err != nil {
		s.storeError(w, r, err)
		return
	}
	s.itemCache.Delete(id)
	writeJSON(w, http.StatusOK, api.Message{Message: "item deleted"})
}

// cache

func (s *Server) setCache(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Key   string    `json:"key"`
		Value api.Value `json:"value"`
		TTL   int       `json:"ttl"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Key) == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	if body.TTL < 0 {
		writeError(w, http.StatusBadRequest, "ttl must not be negative")
		return
	}

	s.cache.Set(body.Key, body.Value, time.Duration(body.TTL)*time.Second)
	writeJSON(w, http.StatusOK, api.CacheEntry{Key: body.Key, Value: body.Value, TTL: body.TTL})
}

func (s *Server) getCache(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := cacheKey(ps)
	value, remaining, ok := s.cache.Get(key)
	if !ok {
		writeError(w, http.StatusNotFound, "key not found")
		return
	}
	writeJSON(w, http.StatusOK, api.CacheEntry{Key: key, Value: value, TTL: ttlSeconds(remaining)})
}

func (s *Server) deleteCache(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if s.cache.Delete(cacheKey(ps)) {
		writeJSON(w, http.StatusOK, api.CacheDeletion{Message: "key deleted", Deleted: true})
		return
	}
	writeJSON(w, http.StatusOK, api.CacheDeletion{Message: "key not found", Deleted: false})
}

// files

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	files := s.bucket.List()
	writeJSON(w, http.StatusOK, api.FileList{Bucket: s.bucket.Name(), Count: len(files), Files: files})
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid upload: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("read upload: %v", err))
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	s.bucket.Put(header.Filename, contentType, data)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("uploaded %s", header.Filename),
		"name":    header.Filename,
		"size":    len(data),
	})
}

// health

func (s *Server) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	services := map[string]string{
		"database": "healthy",
		"cache":    "healthy",
		"storage":  "healthy",
	}
	status, code := "healthy", http.StatusOK
	if err := s.items.Ping(ctx); err != nil {
		s.logger.Printf("sandbox: database ping failed: %v", err)
		services["database"] = "unhealthy"
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, api.Health{
		Status:    status,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Services:  services,
	})
}

// helpers

func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, ErrExists):
		writeError(w, http.StatusConflict, "item already exists")
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, "timestamp mismatch: item was modified")
	default:
		s.logger.Printf("sandbox: %s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return false
	}
	return true
}

func cacheKey(ps httprouter.Params) string {
	return strings.TrimPrefix(ps.ByName("key"), "/")
}

func ttlSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
