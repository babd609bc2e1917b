package repository

import (
	"alcyxob/gymhub/internal/store"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnchanged may be returned by an update function to skip the write.
	// Update then returns nil.
	ErrUnchanged = RepositoryError("collection unchanged")
	// ErrCorrupt wraps a stored collection that does not decode.
	ErrCorrupt = RepositoryError("stored collection is corrupt")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// List is a collection stored as a JSON array.
type List[T any] struct {
	store store.CollectionStore
	name  string
}

// Load returns every record. A missing collection loads as an empty, non-nil slice.
func (l List[T]) Load(ctx context.Context) ([]T, error) {
	items, _, err := l.load(ctx)
	return items, err
}

func (l List[T]) load(ctx context.Context) ([]T, int64, error) {
	c, err := l.store.Get(ctx, l.name)
	if err != nil {
		return nil, 0, fmt.Errorf("load %s: %w", l.name, err)
	}
	items := []T{}
	if !c.Empty() {
		if err := json.Unmarshal(c.Data, &items); err != nil {
			return nil, 0, fmt.Errorf("%w: %s: %v", ErrCorrupt, l.name, err)
		}
		if items == nil {
			items = []T{}
		}
	}
	return items, c.Version, nil
}

// Update performs one read-modify-write. fn receives the current records and
// returns the records to store. A concurrent write between the read and the
// save surfaces as store.ErrVersionConflict.
func (l List[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	items, version, err := l.load(ctx)
	if err != nil {
		return err
	}
	next, err := fn(items)
	if err != nil {
		if errors.Is(err, ErrUnchanged) {
			return nil
		}
		return err
	}
	if next == nil {
		next = []T{}
	}
	return save(ctx, l.store, l.name, next, version)
}

// Map is a collection stored as a JSON object keyed by id.
type Map[V any] struct {
	store store.CollectionStore
	name  string
}

// Load returns every entry. A missing collection loads as an empty, non-nil map.
func (m Map[V]) Load(ctx context.Context) (map[string]V, error) {
	entries, _, err := m.load(ctx)
	return entries, err
}

// Get returns the entry under key and whether it exists.
func (m Map[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	entries, _, err := m.load(ctx)
	if err != nil {
		return zero, false, err
	}
	v, ok := entries[key]
	return v, ok, nil
}

func (m Map[V]) load(ctx context.Context) (map[string]V, int64, error) {
	c, err := m.store.Get(ctx, m.name)
	if err != nil {
		return nil, 0, fmt.Errorf("load %s: %w", m.name, err)
	}
	entries := map[string]V{}
	if !c.Empty() {
		if err := json.Unmarshal(c.Data, &entries); err != nil {
			return nil, 0, fmt.Errorf("%w: %s: %v", ErrCorrupt, m.name, err)
		}
		if entries == nil {
			entries = map[string]V{}
		}
	}
	return entries, c.Version, nil
}

// Update performs one read-modify-write of the whole map; fn may mutate and return it.
func (m Map[V]) Update(ctx context.Context, fn func(map[string]V) (map[string]V, error)) error {
	entries, version, err := m.load(ctx)
	if err != nil {
		return err
	}
	next, err := fn(entries)
	if err != nil {
		if errors.Is(err, ErrUnchanged) {
			return nil
		}
		return err
	}
	if next == nil {
		next = map[string]V{}
	}
	return save(ctx, m.store, m.name, next, version)
}

// UpdateKey read-modify-writes a single entry. fn receives the current value
// and whether it existed; returning keep=false deletes the key.
func (m Map[V]) UpdateKey(ctx context.Context, key string, fn func(v V, ok bool) (next V, keep bool, err error)) error {
	return m.Update(ctx, func(entries map[string]V) (map[string]V, error) {
		cur, ok := entries[key]
		next, keep, err := fn(cur, ok)
		if err != nil {
			return nil, err
		}
		if keep {
			entries[key] = next
		} else {
			if !ok {
				return nil, ErrUnchanged
			}
			delete(entries, key)
		}
		return entries, nil
	})
}

func save(ctx context.Context, s store.CollectionStore, name string, v any, version int64) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if _, err := s.Save(ctx, name, store.Collection{Data: data, Version: version}); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}
