package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/linktree/internal/offline"
)

// Caches exposes the Store as offline cache storage.
func (s *Store) Caches() offline.CacheStorage {
	return cacheStorage{s: s}
}

type cacheStorage struct {
	s *Store
}

func (c cacheStorage) Open(ctx context.Context, name string) (offline.Cache, error) {
	if _, err := c.s.db.ExecContext(ctx, `INSERT OR IGNORE INTO caches (name) VALUES (?)`, name); err != nil {
		return nil, fmt.Errorf("failed to register cache %s: %w", name, err)
	}
	return &cache{db: c.s.db, name: name}, nil
}

func (c cacheStorage) Keys(ctx context.Context) ([]string, error) {
	rows, err := c.s.db.QueryContext(ctx, `SELECT name FROM caches ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list caches: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan cache name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (c cacheStorage) Delete(ctx context.Context, name string) (bool, error) {
	res, err := c.s.db.ExecContext(ctx, `DELETE FROM caches WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete cache %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete cache %s: %w", name, err)
	}
	return n > 0, nil
}

type cache struct {
	db   *sql.DB
	name string
}

func (c *cache) Match(ctx context.Context, url string) (*offline.Response, bool, error) {
	var raw string
	err := c.db.QueryRowContext(ctx,
		`SELECT response_json FROM cache_entries WHERE cache_name = ? AND url = ?`,
		c.name, url).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached response: %w", err)
	}

	var resp offline.Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached response: %w", err)
	}
	return &resp, true, nil
}

func (c *cache) Put(ctx context.Context, url string, resp *offline.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO cache_entries (cache_name, url, response_json, stored_at_unixms) VALUES (?, ?, ?, ?)
		 ON CONFLICT(cache_name, url) DO UPDATE SET response_json = excluded.response_json, stored_at_unixms = excluded.stored_at_unixms`,
		c.name, url, string(data), resp.StoredAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to cache response: %w", err)
	}
	return nil
}

func (c *cache) Delete(ctx context.Context, url string) (bool, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE cache_name = ? AND url = ?`, c.name, url)
	if err != nil {
		return false, fmt.Errorf("failed to evict cached response: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to evict cached response: %w", err)
	}
	return n > 0, nil
}

func (c *cache) Entries(ctx context.Context) ([]offline.Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT url, response_json FROM cache_entries WHERE cache_name = ? ORDER BY url`, c.name)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached responses: %w", err)
	}
	defer rows.Close()

	var entries []offline.Entry
	for rows.Next() {
		var url, raw string
		if err := rows.Scan(&url, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan cached response: %w", err)
		}
		var resp offline.Response
		if err := json.Unmarshal([]byte(raw), &resp); err != nil {
			continue
		}
		entries = append(entries, offline.Entry{Key: url, Response: &resp})
	}
	return entries, rows.Err()
}
