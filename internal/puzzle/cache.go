package puzzle

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/verte-zerg/tuichess/internal/model"
)

// DefaultCacheSize bounds the number of cached puzzle records.
const DefaultCacheSize = 256

// Cache wraps a Source and keeps recently loaded puzzles in memory.
// Failed loads are not cached.
type Cache struct {
	src     Source
	records *lru.Cache[string, model.PuzzleRecord]
}

// NewCache returns a caching Source holding up to size records.
func NewCache(src Source, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	records, err := lru.New[string, model.PuzzleRecord](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create puzzle cache: %w", err)
	}
	return &Cache{src: src, records: records}, nil
}

// LoadIndex implements Source. The index is never cached.
func (c *Cache) LoadIndex(ctx context.Context) (model.Index, error) {
	return c.src.LoadIndex(ctx)
}

// LoadPuzzle implements Source.
func (c *Cache) LoadPuzzle(ctx context.Context, id string) (model.PuzzleRecord, error) {
	if rec, ok := c.records.Get(id); ok {
		return rec, nil
	}
	rec, err := c.src.LoadPuzzle(ctx, id)
	if err != nil {
		return model.PuzzleRecord{}, err
	}
	c.records.Add(id, rec)
	return rec, nil
}

// Purge drops every cached record.
func (c *Cache) Purge() {
	c.records.Purge()
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	return c.records.Len()
}
