package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/zatekoja/healthmarket/internal/adapters/storage"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
)

// collection is one JSON array stored under a single key. Every write
// rewrites the whole array; writes in this process are serialized by mu.
type collection[T any] struct {
	store  providers.StorageProvider
	key    string
	entity string
	idOf   func(*T) int64
	setID  func(*T, int64)
	mu     sync.Mutex
}

func newCollection[T any](store providers.StorageProvider, key, entity string, idOf func(*T) int64, setID func(*T, int64)) *collection[T] {
	return &collection[T]{
		store:  store,
		key:    key,
		entity: entity,
		idOf:   idOf,
		setID:  setID,
	}
}

func (c *collection[T]) load(ctx context.Context) ([]*T, error) {
	items, err := storage.GetJSON(ctx, c.store, c.key, []*T{})
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to load %s", c.key), err)
	}
	return items, nil
}

func (c *collection[T]) save(ctx context.Context, items []*T) error {
	if items == nil {
		items = []*T{}
	}
	if err := storage.SetJSON(ctx, c.store, c.key, items); err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to save %s", c.key), err)
	}
	return nil
}

func (c *collection[T]) notFound(id int64) error {
	return apperrors.NewNotFoundError(fmt.Sprintf("%s with id %d not found", c.entity, id))
}

// all returns every item in stored order
func (c *collection[T]) all(ctx context.Context) ([]*T, error) {
	return c.load(ctx)
}

func (c *collection[T]) get(ctx context.Context, id int64) (*T, error) {
	items, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if c.idOf(item) == id {
			return item, nil
		}
	}
	return nil, c.notFound(id)
}

// create assigns max(id)+1, so ids of deleted records are never handed out
// again while a higher id survives
func (c *collection[T]) create(ctx context.Context, item *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	c.setID(item, nextID(items, c.idOf))
	return c.save(ctx, append(items, item))
}

func (c *collection[T]) update(ctx context.Context, item *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	id := c.idOf(item)
	for i := range items {
		if c.idOf(items[i]) == id {
			items[i] = item
			return c.save(ctx, items)
		}
	}
	return c.notFound(id)
}

// modify loads the item, applies fn and saves it while holding mu, so
// read-modify-write cycles on the same collection never interleave. Nothing
// is saved when fn returns an error.
func (c *collection[T]) modify(ctx context.Context, id int64, fn func(*T) error) (*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if c.idOf(item) != id {
			continue
		}
		if err := fn(item); err != nil {
			return nil, err
		}
		c.setID(item, id)
		if err := c.save(ctx, items); err != nil {
			return nil, err
		}
		return item, nil
	}
	return nil, c.notFound(id)
}

func (c *collection[T]) delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	kept := items[:0]
	found := false
	for _, item := range items {
		if c.idOf(item) == id {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return c.notFound(id)
	}
	return c.save(ctx, kept)
}

// appendCapped adds item and keeps only the newest max entries
func (c *collection[T]) appendCapped(ctx context.Context, item *T, max int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	c.setID(item, nextID(items, c.idOf))
	items = append(items, item)
	if len(items) > max {
		items = items[len(items)-max:]
	}
	return c.save(ctx, items)
}

func nextID[T any](items []*T, idOf func(*T) int64) int64 {
	var max int64
	for _, item := range items {
		if id := idOf(item); id > max {
			max = id
		}
	}
	return max + 1
}

func filterItems[T any](items []*T, keep func(*T) bool) []*T {
	out := make([]*T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func paginate[T any](items []*T, limit, offset int) []*T {
	if offset > 0 {
		if offset >= len(items) {
			return []*T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// newestFirst reverses stored (creation) order in place
func newestFirst[T any](items []*T) []*T {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}
