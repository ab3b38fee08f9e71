package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// DefaultSnapshotTTL is how long a persisted snapshot is considered fresh.
const DefaultSnapshotTTL = 24 * time.Hour

// now is swapped out by snapshot staleness tests.
var now = time.Now

type snapshot struct {
	Dataset   Dataset   `msgpack:"dataset"`
	FetchedAt time.Time `msgpack:"fetched_at"`
}

// SaveSnapshot persists the registry's dataset as a MessagePack snapshot at
// path, creating parent directories as needed. The snapshot records when the
// dataset was fetched so a later load can judge staleness.
func SaveSnapshot(path string, reg *Registry) error {
	fetched := reg.fetchedAt
	if fetched.IsZero() {
		fetched = now()
	}
	data, err := msgpack.Marshal(snapshot{Dataset: reg.ds, FetchedAt: fetched})
	if err != nil {
		return fmt.Errorf("failed to encode registry snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize registry snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot restores a registry from a snapshot without network access.
// stale reports whether the snapshot's fetch time is further back than ttl;
// a ttl of zero or below disables the staleness check.
func LoadSnapshot(path string, ttl time.Duration) (reg *Registry, stale bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read registry snapshot: %w", err)
	}
	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, false, fmt.Errorf("failed to decode registry snapshot: %w", err)
	}

	reg, err = New(snap.Dataset, OriginSnapshot)
	if err != nil {
		return nil, false, err
	}
	reg.fetchedAt = snap.FetchedAt

	stale = ttl > 0 && now().Sub(snap.FetchedAt) > ttl
	return reg, stale, nil
}
