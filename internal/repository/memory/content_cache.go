package memory

import (
	"sync"
	"time"

	"exam-prep-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// TopicContent is a cached read of one topic.
type TopicContent struct {
	Tests      []*entity.TestQuestion
	Flashcards []*entity.Flashcard
}

// ContentCache keeps published topic content for uncontended reads. Every
// write path must call Invalidate for the topic it touched. Readers that
// load from the database take a Version first and store through
// SetIfUnchanged, so a snapshot read before an invalidation is dropped.
type ContentCache struct {
	cache *cache.Cache

	mu       sync.Mutex
	seq      uint64
	flushed  uint64
	versions map[string]uint64
}

func NewContentCache(ttl time.Duration) *ContentCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ContentCache{
		cache:    cache.New(ttl, 2*ttl),
		versions: map[string]uint64{},
	}
}

func cacheKey(assistantId, slug string) string {
	return assistantId + "/" + slug
}

func (c *ContentCache) Get(assistantId, slug string) (*TopicContent, bool) {
	if x, found := c.cache.Get(cacheKey(assistantId, slug)); found {
		return x.(*TopicContent), true
	}
	return nil, false
}

// Version identifies the last invalidation that covered the topic.
func (c *ContentCache) Version(assistantId, slug string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version(cacheKey(assistantId, slug))
}

func (c *ContentCache) version(key string) uint64 {
	return max(c.versions[key], c.flushed)
}

// SetIfUnchanged caches content only if the topic was not invalidated since
// version was taken.
func (c *ContentCache) SetIfUnchanged(assistantId, slug string, version uint64, content *TopicContent) bool {
	key := cacheKey(assistantId, slug)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version(key) != version {
		return false
	}
	c.cache.Set(key, content, cache.DefaultExpiration)
	return true
}

func (c *ContentCache) Invalidate(assistantId, slug string) {
	key := cacheKey(assistantId, slug)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.versions[key] = c.seq
	c.cache.Delete(key)
}

func (c *ContentCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.flushed = c.seq
	clear(c.versions)
	c.cache.Flush()
}
