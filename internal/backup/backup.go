package backup

import (
	"alcyxob/gymhub/internal/service"
	"alcyxob/gymhub/internal/storage"
	"alcyxob/gymhub/internal/store"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"time"

	"go.uber.org/zap"
)

const (
	contentTypeJSON = "application/json"
	keyTimeLayout   = "20060102T150405Z"
)

// StoreDump is the archived form of every raw collection in the store.
type StoreDump struct {
	ExportedAt  time.Time                 `json:"exportedAt"`
	Collections map[string]DumpCollection `json:"collections"`
}

type DumpCollection struct {
	Version int64           `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Exporter writes store dumps and tenant snapshots to an archive.
type Exporter struct {
	store   store.CollectionStore
	archive storage.Archive
	prefix  string
	now     func() time.Time
	log     *zap.Logger
}

func NewExporter(s store.CollectionStore, a storage.Archive, prefix string, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{store: s, archive: a, prefix: prefix, now: time.Now, log: log}
}

// ExportStore dumps every collection under <prefix>/store/<timestamp>.json and
// returns the object key.
func (e *Exporter) ExportStore(ctx context.Context) (string, error) {
	names, err := e.store.Names(ctx)
	if err != nil {
		return "", fmt.Errorf("list collections: %w", err)
	}
	dump := StoreDump{ExportedAt: e.now().UTC(), Collections: make(map[string]DumpCollection, len(names))}
	for _, name := range names {
		c, err := e.store.Get(ctx, name)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", name, err)
		}
		if c.Empty() {
			continue
		}
		dump.Collections[name] = DumpCollection{Version: c.Version, Data: c.Data}
	}

	key := path.Join(e.prefix, "store", dump.ExportedAt.Format(keyTimeLayout)+".json")
	if err := e.put(ctx, key, dump); err != nil {
		return "", err
	}
	e.log.Info("Store exported", zap.String("key", key), zap.Int("collections", len(dump.Collections)))
	return key, nil
}

// ExportSnapshot archives a tenant snapshot and returns its key and a
// presigned download URL.
func (e *Exporter) ExportSnapshot(ctx context.Context, snap *service.Snapshot) (string, string, error) {
	if snap == nil || snap.Identity == nil || snap.Identity.GymID == "" {
		return "", "", errors.New("snapshot has no tenant")
	}
	gymID := snap.Identity.GymID
	key := path.Join(e.prefix, "gyms", gymID, e.now().UTC().Format(keyTimeLayout)+".json")
	if err := e.put(ctx, key, snap); err != nil {
		return "", "", err
	}
	url, err := e.archive.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", "", fmt.Errorf("presign %s: %w", key, err)
	}
	e.log.Info("Snapshot exported", zap.String("gym_id", gymID), zap.String("key", key))
	return key, url, nil
}

// PruneStoreDumps deletes all but the newest keep store dumps and returns how
// many were removed. Tenant snapshots are never pruned.
func (e *Exporter) PruneStoreDumps(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		return 0, fmt.Errorf("keep must be at least 1, got %d", keep)
	}
	keys, err := e.archive.ListObjects(ctx, path.Join(e.prefix, "store")+"/")
	if err != nil {
		return 0, fmt.Errorf("list store dumps: %w", err)
	}
	if len(keys) <= keep {
		return 0, nil
	}
	// Timestamped names sort oldest first.
	sort.Strings(keys)
	removed := 0
	for _, key := range keys[:len(keys)-keep] {
		if err := e.archive.DeleteObject(ctx, key); err != nil {
			return removed, fmt.Errorf("delete %s: %w", key, err)
		}
		removed++
	}
	e.log.Info("Old store dumps pruned", zap.Int("removed", removed), zap.Int("kept", keep))
	return removed, nil
}

func (e *Exporter) put(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := e.archive.PutObject(ctx, key, contentTypeJSON, bytes.NewReader(body)); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}
