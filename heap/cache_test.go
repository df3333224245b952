package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newPageCache(2)
	c.add(1, []byte{1})
	c.add(2, []byte{2})
	c.add(3, []byte{3}) // evicts 1

	_, ok := c.get(1)
	assert.False(t, ok)
	_, ok = c.get(2)
	assert.True(t, ok)
	_, ok = c.get(3)
	assert.True(t, ok)
}

func TestPageCacheGetPrioritizes(t *testing.T) {
	c := newPageCache(2)
	c.add(1, []byte{1})
	c.add(2, []byte{2})
	c.get(1) // 1 is now most recently used
	c.add(3, []byte{3}) // should evict 2, not 1

	_, ok := c.get(1)
	assert.True(t, ok)
	_, ok = c.get(2)
	assert.False(t, ok)
}

func TestPageCacheRemove(t *testing.T) {
	c := newPageCache(2)
	c.add(1, []byte{1})
	c.remove(1)
	_, ok := c.get(1)
	assert.False(t, ok)
}
