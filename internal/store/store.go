// Package store holds the named-collection persistence contract and its
// in-memory backend. Network backends live in the mongo and postgres
// subpackages.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrVersionConflict is returned by Save when the collection changed since it was read.
var ErrVersionConflict = errors.New("collection was modified concurrently")

// Collection is one stored collection: a JSON list or JSON object plus the
// version it was read at. A zero Collection means the name was never saved.
type Collection struct {
	Data    json.RawMessage `json:"data"`
	Version int64           `json:"version"`
}

// Empty reports whether the collection has never been written.
func (c Collection) Empty() bool {
	return len(c.Data) == 0
}

// CollectionStore is the key/value backend the data layer reads and writes
// by collection name. Save is optimistic: the supplied Version must equal the
// stored one, otherwise ErrVersionConflict is returned and nothing is written.
type CollectionStore interface {
	Get(ctx context.Context, name string) (Collection, error)
	Save(ctx context.Context, name string, c Collection) (Collection, error)
	Names(ctx context.Context) ([]string, error)
}
