package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	key       string
	data      []byte
	expiresAt time.Time // zero means no expiry
}

// MemoryCache is an in-process LRU cache with optional per-entry TTL.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	max     int

	stopCh chan struct{}
	once   sync.Once
}

// NewMemoryCache creates a memory cache and starts its sweeper.
func NewMemoryCache(opts ...Option) *MemoryCache {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	c := &MemoryCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		max:     o.MaxEntries,
		stopCh:  make(chan struct{}),
	}

	go c.sweep(o.CleanupInterval)
	return c
}

func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		ent := el.Value.(*memoryEntry)
		ent.data = data
		ent.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return nil
	}

	el := c.order.PushFront(&memoryEntry{key: key, data: data, expiresAt: expiresAt})
	c.entries[key] = el

	for len(c.entries) > c.max {
		c.evictOldest()
	}
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	el, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return ErrCacheMiss
	}
	ent := el.Value.(*memoryEntry)
	if !ent.expiresAt.IsZero() && time.Now().After(ent.expiresAt) {
		c.removeLocked(el)
		c.mu.Unlock()
		return ErrCacheMiss
	}
	c.order.MoveToFront(el)
	data := ent.data
	c.mu.Unlock()

	return json.Unmarshal(data, dest)
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.removeLocked(el)
	}
	return nil
}

func (c *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	ent := el.Value.(*memoryEntry)
	if !ent.expiresAt.IsZero() && time.Now().After(ent.expiresAt) {
		c.removeLocked(el)
		return false, nil
	}
	return true, nil
}

func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stopCh) })
	return nil
}

func (c *MemoryCache) evictOldest() {
	el := c.order.Back()
	if el != nil {
		c.removeLocked(el)
	}
}

func (c *MemoryCache) removeLocked(el *list.Element) {
	ent := el.Value.(*memoryEntry)
	c.order.Remove(el)
	delete(c.entries, ent.key)
}

func (c *MemoryCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for _, el := range c.entries {
				ent := el.Value.(*memoryEntry)
				if !ent.expiresAt.IsZero() && now.After(ent.expiresAt) {
					c.removeLocked(el)
				}
			}
			c.mu.Unlock()
		}
	}
}
