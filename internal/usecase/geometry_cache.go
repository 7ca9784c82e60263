package usecase

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/printquote/internal/domain"
)

const DefaultGeometryCacheSize = 4096

// geometryCache keeps the measured geometry of uploaded models, bounded by entry count
// (least recently used goes first). Derived quantities and costs are never cached.
type geometryCache struct {
	mu      sync.Mutex
	max     int
	entries map[uuid.UUID]*list.Element
	lru     *list.List
}

type geometryEntry struct {
	id       uuid.UUID
	geometry domain.Geometry
	usedAt   time.Time
}

func newGeometryCache(max int) *geometryCache {
	if max <= 0 {
		max = DefaultGeometryCacheSize
	}
	return &geometryCache{max: max, entries: map[uuid.UUID]*list.Element{}, lru: list.New()}
}

func (c *geometryCache) get(id uuid.UUID, now time.Time) (domain.Geometry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[id]
	if !ok {
		return domain.Geometry{}, false
	}
	e := el.Value.(*geometryEntry)
	e.usedAt = now
	c.lru.MoveToFront(el)
	return e.geometry, true
}

// put stores g and returns the resulting number of entries.
func (c *geometryCache) put(id uuid.UUID, g domain.Geometry, now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[id]; ok {
		e := el.Value.(*geometryEntry)
		e.geometry, e.usedAt = g, now
		c.lru.MoveToFront(el)
		return c.lru.Len()
	}
	c.entries[id] = c.lru.PushFront(&geometryEntry{id: id, geometry: g, usedAt: now})
	for c.lru.Len() > c.max {
		c.removeElement(c.lru.Back())
	}
	return c.lru.Len()
}

// expire drops entries not used since before and returns how many were removed.
func (c *geometryCache) expire(before time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for el := c.lru.Back(); el != nil; {
		e := el.Value.(*geometryEntry)
		if !e.usedAt.Before(before) {
			break
		}
		prev := el.Prev()
		c.removeElement(el)
		n++
		el = prev
	}
	return n
}

func (c *geometryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *geometryCache) clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.lru.Len()
	c.entries = map[uuid.UUID]*list.Element{}
	c.lru = list.New()
	return n
}

func (c *geometryCache) removeElement(el *list.Element) {
	e := el.Value.(*geometryEntry)
	c.lru.Remove(el)
	delete(c.entries, e.id)
}
