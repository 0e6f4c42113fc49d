package traceability

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// RenderCache memoizes rendered fragments so repeated page loads are cheap.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// FragmentCache is an in-memory TTL cache for rendered chart HTML.
type FragmentCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]cachedFragment
}

type cachedFragment struct {
	html    string
	expires time.Time
}

// NewFragmentCache builds a cache with the provided TTL. A TTL <= 0 disables caching.
func NewFragmentCache(ttl time.Duration) *FragmentCache {
	return &FragmentCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedFragment),
	}
}

// GetOrRender returns a cached entry or renders/stores a new one.
func (c *FragmentCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if html, ok := c.get(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.set(key, html)
	return html, nil
}

// Len returns the number of live entries.
func (c *FragmentCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *FragmentCache) get(key string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		if ok {
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		}
		return "", false
	}
	return entry.html, true
}

func (c *FragmentCache) set(key, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cachedFragment{
		html:    html,
		expires: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// contentHash returns a deterministic hash of v for use in cache keys.
func contentHash(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "invalid"
	}
	if len(b) == 0 || string(b) == "null" {
		return "empty"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

type noopRenderCache struct{}

func (noopRenderCache) GetOrRender(_ string, render func() (string, error)) (string, error) {
	return render()
}
