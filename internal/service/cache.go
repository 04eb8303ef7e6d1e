package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/loog-project/auditlog/pkg/record"
)

const (
	cacheSweepEvery   = 10 * time.Second // janitor wake-up
	ttlBase           = 40 * time.Second // cold entry expires after this
	ttlHitBonus       = 4 * time.Second  // each extra read adds this much TTL
	maxTrackedEntries = 100_000          // hard memory cap
)

// lastState is the most recent snapshot seen for an object.
type lastState struct {
	snapshot *record.Map
	lastRead int64 // unix-nsec; atomic
	hitCount uint32
}

// stateCache remembers the last snapshot of each object so [AuditService.Commit]
// can diff against it.
type stateCache struct {
	mu     sync.RWMutex
	data   map[string]*lastState
	stopCh chan struct{}
	once   sync.Once
}

// newStateCache returns a new state cache with a janitor that evicts cold entries.
func newStateCache() *stateCache {
	c := &stateCache{
		data:   make(map[string]*lastState, 1024),
		stopCh: make(chan struct{}),
	}
	go c.janitor()
	return c
}

// close stops the janitor and clears the cache.
func (c *stateCache) close() {
	c.once.Do(func() {
		close(c.stopCh)
		c.mu.Lock()
		c.data = make(map[string]*lastState)
		c.mu.Unlock()
	})
}

func (c *stateCache) evictCold(now time.Time) {
	c.mu.Lock()
	for k, e := range c.data {
		age := now.Sub(time.Unix(0, atomic.LoadInt64(&e.lastRead)))
		ttl := ttlBase + time.Duration(atomic.LoadUint32(&e.hitCount))*ttlHitBonus
		if age > ttl {
			delete(c.data, k)
		} else if hc := atomic.LoadUint32(&e.hitCount); hc > 0 {
			// decay so old popularity fades
			atomic.StoreUint32(&e.hitCount, hc/2)
		}
	}
	c.mu.Unlock()
}

func (c *stateCache) janitor() {
	ticker := time.NewTicker(cacheSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			c.evictCold(now)
		case <-c.stopCh:
			return
		}
	}
}

// get returns nil on a miss.
func (c *stateCache) get(key string) *record.Map {
	c.mu.RLock()
	entry := c.data[key]
	c.mu.RUnlock()

	if entry == nil {
		return nil
	}

	atomic.AddUint32(&entry.hitCount, 1)
	atomic.StoreInt64(&entry.lastRead, time.Now().UnixNano())
	return entry.snapshot
}

// set overwrites (or creates) the entry. A nil snapshot forgets the object.
func (c *stateCache) set(key string, snapshot *record.Map) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if snapshot == nil {
		delete(c.data, key)
		return
	}
	if _, exists := c.data[key]; !exists && len(c.data) >= maxTrackedEntries {
		return
	}
	c.data[key] = &lastState{snapshot: snapshot, lastRead: time.Now().UnixNano()}
}

func (c *stateCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
