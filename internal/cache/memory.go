package cache

import (
	"bytes"
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultMemorySize = 1024
	defaultMemoryTTL  = 5 * time.Minute
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process LRU. The LRU evicts after maxTTL at the latest;
// shorter per-entry TTLs are checked on read.
type Memory struct {
	lru    *expirable.LRU[string, memoryEntry]
	maxTTL time.Duration
	now    func() time.Time
}

// NewMemory creates a cache holding at most size entries for at most maxTTL.
func NewMemory(size int, maxTTL time.Duration) *Memory {
	if size <= 0 {
		size = defaultMemorySize
	}
	if maxTTL <= 0 {
		maxTTL = defaultMemoryTTL
	}
	return &Memory{
		lru:    expirable.NewLRU[string, memoryEntry](size, nil, maxTTL),
		maxTTL: maxTTL,
		now:    time.Now,
	}
}

// Get returns a copy of the stored value.
func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if c.now().After(entry.expiresAt) {
		c.lru.Remove(key)
		return nil, false, nil
	}
	return bytes.Clone(entry.value), true, nil
}

// Set stores a copy of value. A non-positive ttl removes the key.
func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		c.lru.Remove(key)
		return nil
	}
	if ttl > c.maxTTL {
		ttl = c.maxTTL
	}
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	c.lru.Add(key, memoryEntry{value: valueCopy, expiresAt: c.now().Add(ttl)})
	return nil
}

func (c *Memory) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Len returns the number of entries, including ones not yet swept.
func (c *Memory) Len() int {
	return c.lru.Len()
}
