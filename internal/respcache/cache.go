// Package respcache stores raw HTTP response bodies keyed by request so
// metadata can be read while offline.
//
// Entries live in SQLite and are bounded by age, entry count and total body
// size. When over a bound, the least recently used entries are evicted.
package respcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultMaxEntries = 256
	defaultMaxBytes   = 16 << 20
	defaultTTL        = 24 * time.Hour
)

// ErrTooLarge is returned when a single body exceeds the byte bound.
var ErrTooLarge = errors.New("response too large to cache")

// Metadata is the response information kept alongside the body.
type Metadata struct {
	StatusCode  int
	ContentType string
}

// Entry is a cached response.
type Entry struct {
	Metadata
	Body     []byte
	StoredAt time.Time
}

// Cache is a SQLite-backed, size and age bounded LRU response cache.
type Cache struct {
	db         *sql.DB
	maxEntries int
	maxBytes   int64
	ttl        time.Duration
	now        func() time.Time

	mu sync.Mutex // serializes writes so eviction sees a consistent total
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxEntries bounds the number of cached responses.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithMaxBytes bounds the total size of cached bodies.
func WithMaxBytes(n int64) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// WithTTL sets how long an entry stays readable.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now (for testing).
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a response cache on db. The response_cache table must exist.
func New(db *sql.DB, opts ...Option) *Cache {
	c := &Cache{
		db:         db,
		maxEntries: defaultMaxEntries,
		maxBytes:   defaultMaxBytes,
		ttl:        defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key derives the cache key for a request.
func Key(req *http.Request) string {
	return KeyFor(req.Method, req.URL.String())
}

// KeyFor derives the cache key for a method and URL.
func KeyFor(method, url string) string {
	if method == "" {
		method = http.MethodGet
	}
	return strings.ToUpper(method) + " " + url
}

// Store saves a response body under key, replacing any previous entry, then
// evicts expired and least recently used entries until within bounds.
func (c *Cache) Store(ctx context.Context, key string, body []byte, meta Metadata) error {
	size := int64(len(body))
	if size > c.maxBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, size, c.maxBytes)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cache store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO response_cache (key, status_code, content_type, body, size, stored_at, accessed_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			status_code = excluded.status_code,
			content_type = excluded.content_type,
			body = excluded.body,
			size = excluded.size,
			stored_at = excluded.stored_at,
			accessed_at = excluded.accessed_at,
			expires_at = excluded.expires_at`,
		key, meta.StatusCode, meta.ContentType, body, size,
		now.UnixNano(), now.UnixNano(), now.Add(c.ttl).UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM response_cache WHERE expires_at <= ?", now.UnixNano()); err != nil {
		return fmt.Errorf("cache store: drop expired: %w", err)
	}
	if err := c.evict(ctx, tx, key); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cache store: commit: %w", err)
	}
	return nil
}

// evict removes least recently used entries, never the one just stored,
// until the cache is within its bounds.
func (c *Cache) evict(ctx context.Context, tx *sql.Tx, keep string) error {
	for {
		var count int
		var total int64
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*), COALESCE(SUM(size), 0) FROM response_cache",
		).Scan(&count, &total)
		if err != nil {
			return fmt.Errorf("cache evict: measure: %w", err)
		}
		if count <= c.maxEntries && total <= c.maxBytes {
			return nil
		}

		result, err := tx.ExecContext(ctx, `
			DELETE FROM response_cache WHERE key = (
				SELECT key FROM response_cache WHERE key != ?
				ORDER BY accessed_at ASC LIMIT 1
			)`, keep)
		if err != nil {
			return fmt.Errorf("cache evict: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return nil
		}
	}
}

// Lookup returns the cached response for key and marks it recently used.
// Returns nil, false if not found or expired.
func (c *Cache) Lookup(ctx context.Context, key string) (*Entry, bool) {
	now := c.now()

	var e Entry
	var storedAt, expiresAt int64
	err := c.db.QueryRowContext(ctx, `
		SELECT status_code, content_type, body, stored_at, expires_at
		FROM response_cache WHERE key = ?`, key,
	).Scan(&e.StatusCode, &e.ContentType, &e.Body, &storedAt, &expiresAt)
	if err != nil || now.UnixNano() >= expiresAt {
		return nil, false
	}
	e.StoredAt = time.Unix(0, storedAt)

	// Recency bump is best-effort; a failed update only skews eviction order.
	_, _ = c.db.ExecContext(ctx,
		"UPDATE response_cache SET accessed_at = ? WHERE key = ?", now.UnixNano(), key)

	return &e, true
}

// Delete removes a cached response.
func (c *Cache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM response_cache WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Prune removes all expired entries.
// Returns the number of entries removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx,
		"DELETE FROM response_cache WHERE expires_at <= ?", c.now().UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("cache prune: %w", err)
	}
	return result.RowsAffected()
}

// Stats reports the number of entries and total body bytes.
func (c *Cache) Stats(ctx context.Context) (entries int, bytes int64, err error) {
	err = c.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(size), 0) FROM response_cache",
	).Scan(&entries, &bytes)
	if err != nil {
		return 0, 0, fmt.Errorf("cache stats: %w", err)
	}
	return entries, bytes, nil
}
