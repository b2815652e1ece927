package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/huangsam/debrief/core/load"
	"github.com/huangsam/debrief/internal/contract"
	"github.com/huangsam/debrief/internal/telemetry"
	"github.com/huangsam/debrief/schema"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// currentCacheVersion defines the version of the cached table encoding
const currentCacheVersion = 1

type cachedTable struct {
	key   string
	table *schema.Table
}

// TableCache keeps the most recently loaded table in memory. A load with a
// different key swaps the table atomically, so readers always see either the
// old table or the new one. Concurrent loads of the same key share one read.
type TableCache struct {
	current atomic.Pointer[cachedTable]
	group   singleflight.Group
}

// tables is the process-wide table cache shared by commands and MCP tools.
var tables = &TableCache{}

// Load returns the table for path, reading and normalizing the file only when
// its content, sheet or column schema changed since the last load. The store
// is an optional persistent layer and may be nil.
func (c *TableCache) Load(ctx context.Context, path string, opts load.Options, store contract.CacheStore) (*schema.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	format, err := load.FormatFromPath(abs)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	key := generateCacheKey(abs, opts, load.Digest(data))
	if cur := c.current.Load(); cur != nil && cur.key == key {
		telemetry.Default.ObserveLoad(cur.table.Stats, telemetry.MemoryHit)
		return cur.table, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if table := checkCacheHit(store, key); table != nil {
			log.Debug("table cache hit", zap.String("source", abs))
			telemetry.Default.ObserveLoad(table.Stats, telemetry.StoreHit)
			return table, nil
		}
		table, err := computeAndStore(data, format, abs, opts, store, key)
		if err != nil {
			return nil, err
		}
		telemetry.Default.ObserveLoad(table.Stats, telemetry.CacheMiss)
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	table := v.(*schema.Table)
	c.current.Store(&cachedTable{key: key, table: table})
	return table, nil
}

// Current returns the last loaded table, or nil.
func (c *TableCache) Current() *schema.Table {
	if cur := c.current.Load(); cur != nil {
		return cur.table
	}
	return nil
}

// Invalidate drops the in-memory table so the next load reads the source again.
func (c *TableCache) Invalidate() {
	c.current.Store(nil)
}

// checkCacheHit attempts to retrieve and validate a cached table
func checkCacheHit(store contract.CacheStore, key string) *schema.Table {
	if store == nil {
		return nil
	}
	data, version, _, err := store.Get(key)
	if err != nil || version != currentCacheVersion {
		return nil // Cache miss (absent or version mismatch)
	}
	var table schema.Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil
	}
	return &table
}

// computeAndStore loads the table and stores it in cache
func computeAndStore(data []byte, format load.Format, source string, opts load.Options, store contract.CacheStore, key string) (*schema.Table, error) {
	table, err := load.Bytes(data, format, source, opts)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return table, nil
	}
	if encoded, err := json.Marshal(table); err == nil {
		if err := store.Set(key, encoded, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to store table in cache", err)
		}
	}
	return table, nil
}

// generateCacheKey creates a unique key based on the source content and how it is read
func generateCacheKey(absPath string, opts load.Options, digest string) string {
	cols := opts.Schema
	if cols.Aliases == nil {
		cols = schema.DefaultColumnSchema()
	}
	key := fmt.Sprintf("%s:%s:%s:%s", absPath, opts.Sheet, digest, cols.Fingerprint())
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
