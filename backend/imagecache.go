package backend

import (
	"context"
	"errors"
	"image"
	"slices"
	"sync"
	"time"
)

var ErrNotFound = errors.New("item not found")

type cacheEntry struct {
	img image.Image
	ttl time.Duration

	expiresAt    time.Time
	lastAccessed time.Time
}

// ImageCache is an in-memory thumbnail cache with the following eviction strategy:
//  1. If there are fewer than MinSize items in the cache, none will be evicted
//  2. If a new addition would make the cache exceed MaxSize, one item is evicted immediately,
//     the least recently used expired item if there is one, else the least recently used item
//  3. Between MinSize and MaxSize, expired items are evicted periodically, least recently used first
type ImageCache struct {
	MinSize    int
	MaxSize    int
	DefaultTTL time.Duration

	// called after each periodic eviction pass
	OnEvictTaskRan func()

	mu      sync.Mutex
	entries map[string]*cacheEntry
	now     func() time.Time
}

func (c *ImageCache) Init(ctx context.Context, evictionInterval time.Duration) {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	if c.now == nil {
		c.now = time.Now
	}
	c.mu.Unlock()
	if evictionInterval > 0 {
		go c.periodicallyEvict(ctx, evictionInterval)
	}
}

func (c *ImageCache) Set(key string, img image.Image) {
	c.SetWithTTL(key, img, c.DefaultTTL)
}

func (c *ImageCache) SetWithTTL(key string, img image.Image, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.entries[key]; ok {
		e.img = img
		e.ttl = ttl
		e.expiresAt = now.Add(ttl)
		e.lastAccessed = now
		return
	}
	if c.MaxSize > 0 && len(c.entries) >= c.MaxSize {
		c.evictOne(now)
	}
	c.entries[key] = &cacheEntry{
		img:          img,
		ttl:          ttl,
		expiresAt:    now.Add(ttl),
		lastAccessed: now,
	}
}

func (c *ImageCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Get returns the image and extends its expiry to at least now+ttl.
func (c *ImageCache) Get(key string) (image.Image, error) {
	return c.GetExtendTTL(key, c.DefaultTTL)
}

func (c *ImageCache) GetExtendTTL(key string, ttl time.Duration) (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	now := c.now()
	e.lastAccessed = now
	if exp := now.Add(ttl); e.expiresAt.Before(exp) {
		e.expiresAt = exp
	}
	return e.img, nil
}

func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ImageCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// must be called with the lock held
func (c *ImageCache) evictOne(now time.Time) {
	var lruKey, lruExpiredKey string
	var lruTime, lruExpiredTime time.Time
	for k, e := range c.entries {
		if lruKey == "" || e.lastAccessed.Before(lruTime) {
			lruKey, lruTime = k, e.lastAccessed
		}
		if e.expiresAt.Before(now) && (lruExpiredKey == "" || e.lastAccessed.Before(lruExpiredTime)) {
			lruExpiredKey, lruExpiredTime = k, e.lastAccessed
		}
	}
	if lruExpiredKey != "" {
		delete(c.entries, lruExpiredKey)
	} else {
		delete(c.entries, lruKey)
	}
}

// EvictExpired evicts least recently used expired items
// until none are left or the cache holds MinSize items.
func (c *ImageCache) EvictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	excess := len(c.entries) - c.MinSize
	if excess <= 0 {
		return
	}
	now := c.now()
	type expired struct {
		key          string
		lastAccessed time.Time
	}
	var exp []expired
	for k, e := range c.entries {
		if e.expiresAt.Before(now) {
			exp = append(exp, expired{k, e.lastAccessed})
		}
	}
	slices.SortFunc(exp, func(a, b expired) int {
		return a.lastAccessed.Compare(b.lastAccessed)
	})
	for i := 0; i < len(exp) && i < excess; i++ {
		delete(c.entries, exp[i].key)
	}
}

func (c *ImageCache) periodicallyEvict(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.EvictExpired()
			if c.OnEvictTaskRan != nil {
				c.OnEvictTaskRan()
			}
		}
	}
}
