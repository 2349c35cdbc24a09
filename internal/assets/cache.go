package assets

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"

	"chosenoffset.com/tabletop/internal/render"
)

// Entry is a decoded image ready to draw.
type Entry struct {
	Image  render.Image
	Width  int
	Height int
}

// Cache holds decoded images keyed by their source reference. Cost is the
// RGBA byte size of the image.
type Cache struct {
	c *ristretto.Cache[string, *Entry]
}

// NewCache creates a cache bounded to maxBytes of pixel data.
func NewCache(maxBytes int64) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, *Entry]{
		NumCounters: 10000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create image cache: %w", err)
	}
	return &Cache{c: c}, nil
}

// Get returns the entry for key.
func (c *Cache) Get(key string) (*Entry, bool) {
	if key == "" {
		return nil, false
	}
	return c.c.Get(key)
}

// Set stores an entry and waits until it is visible to Get. It reports
// false when the cache dropped the entry, either on the write buffer or at
// admission (an entry larger than the whole cache is never admitted).
func (c *Cache) Set(key string, e *Entry) bool {
	if key == "" || e == nil {
		return false
	}
	cost := max(int64(1), int64(e.Width)*int64(e.Height)*4)
	if !c.c.Set(key, e, cost) {
		return false
	}
	c.c.Wait()
	_, ok := c.c.Get(key)
	return ok
}

// Invalidate drops key, so the next lookup decodes the source again.
func (c *Cache) Invalidate(key string) {
	c.c.Del(key)
	c.c.Wait()
}

// Close stops the cache's background goroutines.
func (c *Cache) Close() {
	c.c.Close()
}
