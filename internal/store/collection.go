package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"stockbook/internal/domain"
)

// Collection is one entity kind stored as a JSON array under a single key.
type Collection[T any, P interface {
	*T
	domain.Record
}] struct {
	s         *Store
	name      string
	kind      string
	prefix    string
	untracked bool
}

func newCollection[T any, P interface {
	*T
	domain.Record
}](s *Store, name, kind, prefix string) *Collection[T, P] {
	return &Collection[T, P]{s: s, name: name, kind: kind, prefix: prefix}
}

func (c *Collection[T, P]) key() string { return c.s.key(c.name) }

// NewID returns a fresh id in this collection's format. Save keeps ids it
// does not know yet, so a record can be referenced before it is stored.
func (c *Collection[T, P]) NewID() string {
	return fmt.Sprintf("%s-%s", c.prefix, uuid.NewString())
}

func (c *Collection[T, P]) load(ctx context.Context) ([]T, error) {
	var items []T
	if _, err := c.s.readJSON(ctx, c.key(), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Collection[T, P]) store(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	return c.s.writeJSON(ctx, c.key(), items)
}

// All returns every record in insertion order.
func (c *Collection[T, P]) All(ctx context.Context) ([]T, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.load(ctx)
}

func (c *Collection[T, P]) Get(ctx context.Context, id string) (T, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	var zero T
	items, err := c.load(ctx)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if P(&item).GetID() == id {
			return item, nil
		}
	}
	return zero, domain.NewNotFoundError(c.kind, id)
}

// Save replaces the record with a matching id, keeping its creation time when
// the incoming one is unset. Any other record is appended, with an id and a
// creation time assigned when missing.
func (c *Collection[T, P]) Save(ctx context.Context, e T) (T, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	var zero T
	items, err := c.load(ctx)
	if err != nil {
		return zero, err
	}

	rec := P(&e)
	action := "update"
	idx := -1
	if id := rec.GetID(); id != "" {
		for i := range items {
			if P(&items[i]).GetID() == id {
				idx = i
				break
			}
		}
	}

	if idx >= 0 {
		if rec.Created().IsZero() {
			rec.SetCreated(P(&items[idx]).Created())
		}
		items[idx] = e
	} else {
		action = "create"
		if rec.GetID() == "" {
			rec.SetID(c.NewID())
		}
		if rec.Created().IsZero() {
			rec.SetCreated(c.s.now())
		}
		items = append(items, e)
	}

	if err := c.store(ctx, items); err != nil {
		return zero, err
	}
	if err := c.track(ctx, rec.GetID(), action); err != nil {
		return zero, err
	}
	return e, nil
}

// Delete removes the record with id. Missing ids are not an error and nothing
// referencing the record is checked.
func (c *Collection[T, P]) Delete(ctx context.Context, id string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, item := range items {
		if P(&item).GetID() != id {
			kept = append(kept, item)
		}
	}
	if err := c.store(ctx, kept); err != nil {
		return err
	}
	return c.track(ctx, id, "delete")
}

// Replace overwrites the whole collection.
func (c *Collection[T, P]) Replace(ctx context.Context, items []T) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.store(ctx, items)
}

func (c *Collection[T, P]) track(ctx context.Context, id, action string) error {
	if c.untracked {
		return nil
	}
	return c.s.appendSync(ctx, domain.SyncEntry{
		Type:      c.kind,
		ID:        id,
		Action:    action,
		Timestamp: c.s.now(),
	})
}
