package checker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/liquidoc/liquidoc/pkg/docs"
)

// DefaultCacheSize caps how many per-file parse results are kept between
// runs.
const DefaultCacheSize = 4096

// cachedResult pairs a parse result with the content hash it was produced
// from. A lookup whose hash no longer matches is a miss, so edits are never
// served stale.
type cachedResult struct {
	hash   string
	result docs.FileResult
}

// resultCache remembers parse results across runs keyed by path. Watch mode
// leans on it: a save that leaves the bytes unchanged costs one hash, not a
// re-parse.
type resultCache struct {
	entries *lru.Cache[string, cachedResult]
}

func newResultCache(size int, logger *slog.Logger) *resultCache {
	entries, err := lru.NewWithEvict(size, func(path string, _ cachedResult) {
		logger.Debug("Result cache eviction", "path", path)
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create result cache: %v", err))
	}
	return &resultCache{entries: entries}
}

func (rc *resultCache) get(path, hash string) (docs.FileResult, bool) {
	entry, ok := rc.entries.Get(path)
	if !ok || entry.hash != hash {
		return docs.FileResult{}, false
	}
	return entry.result, true
}

func (rc *resultCache) put(path, hash string, result docs.FileResult) {
	rc.entries.Add(path, cachedResult{hash: hash, result: result})
}

func (rc *resultCache) remove(path string) {
	rc.entries.Remove(path)
}

// contentHash returns the hex SHA-256 of content.
func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
