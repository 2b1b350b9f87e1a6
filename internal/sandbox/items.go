package sandbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/five82/ferry/internal/api"
)

var (
	// ErrNotFound is returned when an item or key does not exist.
	ErrNotFound = errors.New("sandbox: not found")
	// ErrExists is returned when creating an item whose id is taken.
	ErrExists = errors.New("sandbox: already exists")
	// ErrConflict is returned when the caller's timestamp is stale.
	ErrConflict = errors.New("sandbox: timestamp mismatch")
)

const itemsDDL = `
CREATE TABLE IF NOT EXISTS items (
	id         TEXT PRIMARY KEY,
	timestamp  INTEGER NOT NULL,
	data       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT ''
);`

// ItemStore persists items in SQLite. Every write bumps the item's timestamp,
// which callers must echo back to update or delete it.
type ItemStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenItemStore opens (or creates) the item table at dsn. ":memory:" keeps
// everything in process.
func OpenItemStore(ctx context.Context, dsn string) (*ItemStore, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, itemsDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create items table: %w", err)
	}
	return &ItemStore{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *ItemStore) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *ItemStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create inserts a new item.
func (s *ItemStore) Create(ctx context.Context, id string, data api.Fields) (api.Item, error) {
	if data == nil {
		data = api.Fields{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return api.Item{}, fmt.Errorf("encode item data: %w", err)
	}
	now := s.now().UTC()
	item := api.Item{
		ID:        id,
		Timestamp: now.UnixMilli(),
		Data:      data,
		CreatedAt: now.Format(time.RFC3339Nano),
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO items (id, timestamp, data, created_at) VALUES (?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		item.ID, item.Timestamp, string(encoded), item.CreatedAt)
	if err != nil {
		return api.Item{}, fmt.Errorf("insert item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return api.Item{}, ErrExists
	}
	return item, nil
}

// Get loads one item.
func (s *ItemStore) Get(ctx context.Context, id string) (api.Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, timestamp, data, created_at, updated_at FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Item{}, ErrNotFound
	}
	return item, err
}

// List returns every item ordered by creation time.
func (s *ItemStore) List(ctx context.Context) ([]api.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, data, created_at, updated_at FROM items ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []api.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Update replaces an item's data when timestamp matches the stored token and
// returns the new token.
func (s *ItemStore) Update(ctx context.Context, id string, timestamp int64, data api.Fields) (int64, error) {
	if data == nil {
		data = api.Fields{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("encode item data: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := currentTimestamp(ctx, tx, id)
	if err != nil {
		return 0, err
	}
	if current != timestamp {
		return 0, ErrConflict
	}

	now := s.now().UTC()
	next := now.UnixMilli()
	if next <= current {
		next = current + 1
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET timestamp = ?, data = ?, updated_at = ? WHERE id = ?`,
		next, string(encoded), now.Format(time.RFC3339Nano), id); err != nil {
		return 0, fmt.Errorf("update item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit update: %w", err)
	}
	return next, nil
}

// Delete removes an item when timestamp matches the stored token.
func (s *ItemStore) Delete(ctx context.Context, id string, timestamp int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := currentTimestamp(ctx, tx, id)
	if err != nil {
		return err
	}
	if current != timestamp {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

func currentTimestamp(ctx context.Context, tx *sql.Tx, id string) (int64, error) {
	var current int64
	err := tx.QueryRowContext(ctx, `SELECT timestamp FROM items WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load item timestamp: %w", err)
	}
	return current, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (api.Item, error) {
	var (
		item api.Item
		data string
	)
	if err := row.Scan(&item.ID, &item.Timestamp, &data, &item.CreatedAt, &item.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.Item{}, err
		}
		return api.Item{}, fmt.Errorf("scan item: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &item.Data); err != nil {
		return api.Item{}, fmt.Errorf("decode item %s: %w", item.ID, err)
	}
	return item, nil
}
