package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/noah-isme/eduflow-api/pkg/kvstore"
)

// ErrNotFound is returned when an entity id is absent from its collection.
var ErrNotFound = errors.New("record not found")

// Store keys holding each collection.
const (
	KeyStudents   = "students"
	KeyCourses    = "courses"
	KeyFees       = "fees"
	KeyPayments   = "payments"
	KeyExportJobs = "export_jobs"

	LegacyKeyStudents = "eduflow_students"
	LegacyKeyCourses  = "eduflow_courses"
)

// collection stores a whole entity slice as one JSON array under key. Every
// mutation loads the array, changes it and overwrites it while holding mu, so
// writers inside this process never lose each other's updates.
type collection[T any] struct {
	store      kvstore.Store
	key        string
	legacyKeys []string
	idOf       func(T) string
	mu         sync.Mutex
}

func newCollection[T any](store kvstore.Store, key string, idOf func(T) string, legacyKeys ...string) *collection[T] {
	return &collection[T]{store: store, key: key, legacyKeys: legacyKeys, idOf: idOf}
}

// all returns the stored slice, falling back to legacy keys when the
// canonical key has never been written.
func (c *collection[T]) all(ctx context.Context) ([]T, error) {
	for _, key := range append([]string{c.key}, c.legacyKeys...) {
		raw, err := c.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, kvstore.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
		items, err := decode[T](raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		return items, nil
	}
	return []T{}, nil
}

func (c *collection[T]) find(ctx context.Context, id string) (*T, error) {
	items, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if c.idOf(items[i]) == id {
			item := items[i]
			return &item, nil
		}
	}
	return nil, ErrNotFound
}

// mutate runs fn over the current slice and persists its result.
func (c *collection[T]) mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.all(ctx)
	if err != nil {
		return err
	}
	next, err := fn(items)
	if err != nil {
		return err
	}
	return c.write(ctx, next)
}

func (c *collection[T]) insert(ctx context.Context, item T) error {
	return c.mutate(ctx, func(items []T) ([]T, error) {
		return append(items, item), nil
	})
}

func (c *collection[T]) update(ctx context.Context, item T) error {
	id := c.idOf(item)
	return c.mutate(ctx, func(items []T) ([]T, error) {
		for i := range items {
			if c.idOf(items[i]) == id {
				items[i] = item
				return items, nil
			}
		}
		return nil, ErrNotFound
	})
}

func (c *collection[T]) remove(ctx context.Context, id string) error {
	return c.mutate(ctx, func(items []T) ([]T, error) {
		for i := range items {
			if c.idOf(items[i]) == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

func (c *collection[T]) replaceAll(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(ctx, items)
}

func (c *collection[T]) write(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.store.Set(ctx, c.key, raw); err != nil {
		return fmt.Errorf("save %s: %w", c.key, err)
	}
	return nil
}

func decode[T any](raw []byte) ([]T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
