package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/use-agent/bookmeta/models"
)

// Memory is a bounded in-memory LRU Store with a fixed TTL.
// It is safe for concurrent use.
type Memory struct {
	lru *expirable.LRU[string, *models.BookRecord]
}

// NewMemory creates a Memory cache holding at most maxEntries records for
// ttl each. A non-positive maxEntries disables caching.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	if maxEntries <= 0 {
		return &Memory{}
	}
	return &Memory{
		lru: expirable.NewLRU[string, *models.BookRecord](maxEntries, nil, ttl),
	}
}

// Get returns the cached record if it exists and has not expired.
// A hit marks the entry as most recently used.
func (c *Memory) Get(_ context.Context, key string) (*models.BookRecord, bool) {
	if c.lru == nil {
		return nil, false
	}
	rec, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return clone(rec), true
}

// Set stores a record. At capacity the least recently used entry goes first.
func (c *Memory) Set(_ context.Context, key string, rec *models.BookRecord) {
	if c.lru == nil || rec == nil {
		return
	}
	c.lru.Add(key, clone(rec))
}

// Len reports the number of stored entries.
func (c *Memory) Len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

// Close drops every entry.
func (c *Memory) Close() {
	if c.lru != nil {
		c.lru.Purge()
	}
}
