package decodergen

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/wippyai/decodergen/transpiler"
)

// Cache memoizes transpile results by port source. It is safe for
// concurrent use. Entries are never evicted.
type Cache struct {
	entries sync.Map // uint64 -> []*cacheEntry
	mu      sync.Mutex
	size    atomic.Int64
	hits    atomic.Uint64
	misses  atomic.Uint64
}

type cacheEntry struct {
	result  *transpiler.Result
	code    string
	imports []string
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{}
}

// Stats returns the current counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Entries: int(c.size.Load()),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}

func sourceKey(code string, imports []string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(code)
	for _, imp := range imports {
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(imp)
	}
	return d.Sum64()
}

func (c *Cache) load(code string, imports []string) (*transpiler.Result, bool) {
	if v, ok := c.entries.Load(sourceKey(code, imports)); ok {
		for _, e := range v.([]*cacheEntry) {
			if e.code == code && slices.Equal(e.imports, imports) {
				c.hits.Add(1)
				return e.result, true
			}
		}
	}
	c.misses.Add(1)
	return nil, false
}

func (c *Cache) store(code string, imports []string, res *transpiler.Result) {
	key := sourceKey(code, imports)
	entry := &cacheEntry{result: res, code: code, imports: slices.Clone(imports)}

	c.mu.Lock()
	defer c.mu.Unlock()

	var bucket []*cacheEntry
	if v, ok := c.entries.Load(key); ok {
		bucket = v.([]*cacheEntry)
		for _, e := range bucket {
			if e.code == code && slices.Equal(e.imports, imports) {
				return
			}
		}
	}
	c.entries.Store(key, append(slices.Clone(bucket), entry))
	c.size.Add(1)
}
