package catalog

import (
	"slices"
	"sync"

	"github.com/goliatone/go-auto-catalog/model"
)

// collection keeps entities in insertion order with a primary key index.
type collection[T any] struct {
	items []T
	index map[int64]int
	idOf  func(T) int64
}

func newCollection[T any](idOf func(T) int64) *collection[T] {
	return &collection[T]{index: make(map[int64]int), idOf: idOf}
}

// add appends item unless its key is already present.
func (c *collection[T]) add(item T) bool {
	id := c.idOf(item)
	if _, ok := c.index[id]; ok {
		return false
	}
	c.index[id] = len(c.items)
	c.items = append(c.items, item)
	return true
}

func (c *collection[T]) get(id int64) (T, bool) {
	i, ok := c.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

func (c *collection[T]) has(id int64) bool {
	_, ok := c.index[id]
	return ok
}

func (c *collection[T]) all() []T {
	return slices.Clone(c.items)
}

func (c *collection[T]) len() int {
	return len(c.items)
}

// mirror is the in-memory copy of all three collections. Reads take the
// read lock so background cache refreshes can scan safely.
type mirror struct {
	mu          sync.RWMutex
	cities      *collection[model.City]
	autoMarkets *collection[model.AutoMarket]
	autos       *collection[model.Auto]
}

func newMirror() *mirror {
	return &mirror{
		cities:      newCollection(func(c model.City) int64 { return c.ID }),
		autoMarkets: newCollection(func(m model.AutoMarket) int64 { return m.ID }),
		autos:       newCollection(func(a model.Auto) int64 { return a.ID }),
	}
}

func (m *mirror) read(fn func()) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn()
}

func (m *mirror) write(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}
