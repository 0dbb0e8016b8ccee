package plugins

import (
	"fmt"
	"sync"
)

// Collection is an ordered set of sibling plugins with unique names.
type Collection struct {
	mu    sync.RWMutex
	items []*Plugin
	index map[string]*Plugin
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{index: make(map[string]*Plugin)}
}

// Add appends p. A sibling with the same name is an error.
func (c *Collection) Add(p *Plugin) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.index[p.Name()]; ok {
		return fmt.Errorf("%w: %q (%s and %s)", ErrDuplicatePlugin, p.Name(), existing.FilePath(), p.FilePath())
	}
	c.items = append(c.items, p)
	c.index[p.Name()] = p
	return nil
}

// Remove deletes p and reports whether it was present.
func (c *Collection) Remove(p *Plugin) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index[p.Name()] != p {
		return false
	}
	delete(c.index, p.Name())
	for i, item := range c.items {
		if item == p {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the named plugin, or nil.
func (c *Collection) Get(name string) *Plugin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index[name]
}

// All returns a snapshot of the plugins in insertion order.
func (c *Collection) All() []*Plugin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Plugin, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of plugins.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
