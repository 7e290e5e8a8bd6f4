package ring

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

type tableKey struct {
	degree, modulus uint64
}

// TableCache memoizes tables per (degree, modulus). Concurrent requests for
// the same pair share a single build. Failed builds are not cached.
type TableCache struct {
	mu      sync.RWMutex
	tables  map[tableKey]*Table
	group   singleflight.Group
	metrics *Metrics
}

// NewTableCache returns an empty cache. metrics may be nil.
func NewTableCache(metrics *Metrics) *TableCache {
	return &TableCache{
		tables:  map[tableKey]*Table{},
		metrics: metrics,
	}
}

// Get returns the table for the given degree and modulus, building it on first use.
func (c *TableCache) Get(degree, modulus uint64) (*Table, error) {

	key := tableKey{degree: degree, modulus: modulus}

	c.mu.RLock()
	t, ok := c.tables[key]
	c.mu.RUnlock()

	if ok {
		return t, nil
	}

	v, err, _ := c.group.Do(fmt.Sprintf("%d/%d", degree, modulus), func() (interface{}, error) {

		c.mu.RLock()
		t, ok := c.tables[key]
		c.mu.RUnlock()

		if ok {
			return t, nil
		}

		t, err := NewTable(degree, modulus)
		if err != nil {
			return nil, err
		}

		c.metrics.tableBuilt()

		c.mu.Lock()
		c.tables[key] = t
		c.mu.Unlock()

		return t, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*Table), nil
}

// Len returns the number of cached tables.
func (c *TableCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}
