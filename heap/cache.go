package heap

import "slices"

// pageCache bounds the number of raw page buffers WriteRows keeps around
// while packing a multi-section write, so a write spanning many sections
// doesn't hold every page it has ever touched in memory at once.
type pageCache struct {
	cache     map[int64][]byte
	evictList []int64
	maxSize   int
}

// newPageCache creates an LRU cache of page buffers keyed by absolute page
// index, evicting the least recently used page once maxSize is exceeded.
func newPageCache(maxSize int) *pageCache {
	return &pageCache{
		cache:     map[int64][]byte{},
		evictList: []int64{},
		maxSize:   maxSize,
	}
}

func (c *pageCache) get(key int64) ([]byte, bool) {
	v, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	c.prioritize(key)
	return v, true
}

func (c *pageCache) add(key int64, value []byte) {
	if _, ok := c.cache[key]; ok {
		c.prioritize(key)
		c.cache[key] = value
		return
	}
	if c.maxSize == len(c.cache) {
		c.evict()
	}
	c.cache[key] = value
	c.evictList = append(c.evictList, key)
}

func (c *pageCache) remove(key int64) {
	if _, ok := c.cache[key]; ok {
		delete(c.cache, key)
		i := slices.Index(c.evictList, key)
		c.evictList = slices.Delete(c.evictList, i, i+1)
	}
}

func (c *pageCache) prioritize(key int64) {
	i := slices.Index(c.evictList, key)
	c.evictList = append(slices.Delete(c.evictList, i, i+1), key)
}

func (c *pageCache) evict() {
	evictKey := c.evictList[0]
	c.evictList = c.evictList[1:]
	delete(c.cache, evictKey)
}
