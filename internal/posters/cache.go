package posters

import "sync"

// Cache maps film titles to resolved poster urls for the lifetime of the
// process. Titles are used as is, they are not normalized.
type Cache struct {
	mu      sync.RWMutex
	posters map[string]string
}

func NewCache() *Cache {
	return &Cache{posters: make(map[string]string)}
}

func (c *Cache) Get(title string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	url, ok := c.posters[title]
	return url, ok
}

func (c *Cache) Set(title, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posters[title] = url
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.posters)
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.posters)
}
