package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/prodauth/internal/client/client"
	"github.com/dmitrijs2005/prodauth/internal/client/models"
	"github.com/dmitrijs2005/prodauth/internal/logging"
)

// Collection mirrors one server-side collection (customers, products,
// certificates). The local list changes only after the server confirmed a
// write; a failed call leaves it exactly as it was.
type Collection[T models.Record, P any] struct {
	name string
	api  client.ResourceAPI[T, P]
	log  logging.Logger

	mu    sync.RWMutex
	items []T
}

func NewCollection[T models.Record, P any](name string, api client.ResourceAPI[T, P], log logging.Logger) *Collection[T, P] {
	if log == nil {
		log = logging.Discard()
	}
	return &Collection[T, P]{name: name, api: api, log: log.With("collection", name)}
}

func (c *Collection[T, P]) Name() string { return c.name }

// FetchAll replaces the local list with the server listing.
func (c *Collection[T, P]) FetchAll(ctx context.Context) error {
	items, err := c.api.List(ctx)
	if err != nil {
		return fmt.Errorf("list %s: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(make([]T, 0, len(items)), items...)
	return nil
}

// Create adds the record the server created to the front of the list.
func (c *Collection[T, P]) Create(ctx context.Context, payload P) (T, error) {
	item, err := c.api.Create(ctx, payload)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("create %s: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{item}, c.items...)
	return item, nil
}

// Update replaces the record with the given id in place. Records that are
// not in the local list are left out of it.
func (c *Collection[T, P]) Update(ctx context.Context, id int64, payload P) (T, error) {
	item, err := c.api.Update(ctx, id, payload)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("update %s %d: %w", c.name, id, err)
	}
	if item.GetID() != id {
		c.log.Warn(ctx, "server returned a different record on update", "id", id, "returned_id", item.GetID())
		return item, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		c.items[i] = item
	}
	return item, nil
}

// Delete removes the record after the server confirmed the deletion.
func (c *Collection[T, P]) Delete(ctx context.Context, id int64) error {
	if err := c.api.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", c.name, id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		c.items = append(c.items[:i:i], c.items[i+1:]...)
	}
	return nil
}

// Items returns a copy of the local list.
func (c *Collection[T, P]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

func (c *Collection[T, P]) Get(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

func (c *Collection[T, P]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Reset drops the local list.
func (c *Collection[T, P]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

func (c *Collection[T, P]) indexOf(id int64) int {
	for i, it := range c.items {
		if it.GetID() == id {
			return i
		}
	}
	return -1
}
