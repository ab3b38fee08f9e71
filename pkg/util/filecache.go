// Package util carries shared infrastructure: structured logging, the
// memory-mapped template cache, and worker sizing for parallel parsing.
//
// The template cache keeps files mapped between reads so repeated check and
// watch passes over a theme avoid copying unchanged content. Files map
// lazily on first access and stay mapped until Close. Where mmap is
// unavailable (some network mounts and filesystems) the cache falls back to
// a plain read and serves that. Optional limits guard file descriptor and
// address-space usage on very large themes; the memory limit bounds virtual
// address space, not resident memory, since untouched pages stay on disk.
package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
)

// FileCache provides shared read access to template files.
//
// Thread-safe: cached reads run in parallel, loads and Close are exclusive.
type FileCache interface {
	// Get returns the mapped file, loading it on first access.
	Get(path string) (*MappedFile, error)

	// ReadString returns the file's full content as a string.
	ReadString(path string) (string, error)

	// Invalidate drops path from the cache so the next access reloads it
	// from disk. A mapping pins the inode it was created from, so an editor
	// save that replaces the file would otherwise keep serving old bytes.
	// No-op for paths that were never loaded.
	Invalidate(path string)

	// Size returns the number of currently cached files.
	Size() int

	// Stats returns current cache counters.
	Stats() FileCacheStats

	// Close unmaps all files and releases their descriptors.
	Close() error
}

// FileCacheConfig controls cache limits.
type FileCacheConfig struct {
	// MaxFiles caps how many files stay cached. 0 means unlimited.
	MaxFiles int

	// MaxMemoryMB caps mapped address space in megabytes. 0 means unlimited.
	MaxMemoryMB int

	// Logger receives fallback warnings. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig fits typical theme repositories: a few thousand
// templates totalling well under a gigabyte.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		MaxFiles:    5000,
		MaxMemoryMB: 1024,
	}
}

// MappedFile is one cached template.
type MappedFile struct {
	Path string

	// Data is the mapped region, sliceable directly. Nil for empty files.
	Data mmap.MMap

	// File is the descriptor backing the mapping. Nil for fallback entries.
	File *os.File

	Size     int64
	MappedAt time.Time
}

// FileCacheStats tracks cache counters. TotalMappedMB counts virtual address
// space, not resident memory.
type FileCacheStats struct {
	FilesLoaded   int64
	FilesCached   int
	CacheHits     int64
	CacheMisses   int64
	MmapFailures  int64
	TotalMappedMB float64
}

// NewFileCache creates a FileCache. A nil config selects
// DefaultFileCacheConfig().
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &fileCacheImpl{
		config:   config,
		cache:    make(map[string]*MappedFile),
		fallback: make(map[string][]byte),
		logger:   logger,
	}
}

type fileCacheImpl struct {
	config *FileCacheConfig
	logger *slog.Logger

	// mu protects cache and fallback; statsMu protects stats separately so
	// counter updates do not contend with cached reads.
	mu       sync.RWMutex
	cache    map[string]*MappedFile
	fallback map[string][]byte

	statsMu sync.Mutex
	stats   FileCacheStats
}

func (fc *fileCacheImpl) Get(path string) (*MappedFile, error) {
	fc.mu.RLock()
	if mf, ok := fc.cache[path]; ok {
		fc.mu.RUnlock()
		fc.recordHit()
		return mf, nil
	}
	if data, ok := fc.fallback[path]; ok {
		fc.mu.RUnlock()
		fc.recordHit()
		return wrapFallback(path, data), nil
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	defer fc.mu.Unlock()

	// Another goroutine may have loaded it while we waited for the lock.
	if mf, ok := fc.cache[path]; ok {
		fc.recordHit()
		return mf, nil
	}
	if data, ok := fc.fallback[path]; ok {
		fc.recordHit()
		return wrapFallback(path, data), nil
	}

	var fileSize int64
	if fc.config.MaxMemoryMB > 0 {
		stat, err := os.Stat(path)
		if err != nil {
			fc.recordMiss()
			return nil, fmt.Errorf("failed to stat file %q: %w", path, err)
		}
		fileSize = stat.Size()
	}
	if err := fc.checkLimitsLocked(fileSize); err != nil {
		fc.recordMiss()
		return nil, err
	}

	mf, err := fc.loadLocked(path)
	if err != nil {
		fc.recordMiss()
		return nil, err
	}
	fc.recordLoad()
	return mf, nil
}

func (fc *fileCacheImpl) ReadString(path string) (string, error) {
	mf, err := fc.Get(path)
	if err != nil {
		return "", err
	}
	if len(mf.Data) == 0 {
		return "", nil
	}
	return string(mf.Data), nil
}

func (fc *fileCacheImpl) Invalidate(path string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if mf, ok := fc.cache[path]; ok {
		if mf.Data != nil {
			if err := mf.Data.Unmap(); err != nil {
				fc.logger.Warn("failed to unmap file", "path", path, "error", err)
			}
		}
		if mf.File != nil {
			if err := mf.File.Close(); err != nil {
				fc.logger.Warn("failed to close file", "path", path, "error", err)
			}
		}
		delete(fc.cache, path)
		return
	}
	delete(fc.fallback, path)
}

// checkLimitsLocked verifies loading one more file of the given size stays
// within configured limits. Caller holds mu.
func (fc *fileCacheImpl) checkLimitsLocked(newFileSize int64) error {
	if fc.config.MaxFiles > 0 {
		current := len(fc.cache) + len(fc.fallback)
		if current >= fc.config.MaxFiles {
			return fmt.Errorf("file cache limit reached: %d files (limit %d)", current, fc.config.MaxFiles)
		}
	}
	if fc.config.MaxMemoryMB > 0 && newFileSize > 0 {
		after := fc.mappedMBLocked() + float64(newFileSize)/(1024*1024)
		if after >= float64(fc.config.MaxMemoryMB) {
			return fmt.Errorf("file cache memory limit reached: %.2f MB (limit %d MB)", after, fc.config.MaxMemoryMB)
		}
	}
	return nil
}

// loadLocked opens and maps path, registering the entry in the right cache
// map, with a plain read as the fallback when mmap fails. Caller holds mu.
func (fc *fileCacheImpl) loadLocked(path string) (*MappedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file %q: %w", path, err)
	}

	// Zero bytes cannot be mapped.
	if stat.Size() == 0 {
		file.Close()
		mf := &MappedFile{Path: path, MappedAt: time.Now()}
		fc.cache[path] = mf
		return mf, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		fc.logger.Warn("mmap failed, using plain read", "file", path, "size", stat.Size(), "error", err)
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			file.Close()
			return nil, fmt.Errorf("mmap and fallback read both failed for %q: mmap: %v, read: %w", path, err, readErr)
		}
		file.Close()
		fc.fallback[path] = raw
		fc.recordMmapFailure()
		return wrapFallback(path, raw), nil
	}

	mf := &MappedFile{
		Path:     path,
		Data:     data,
		File:     file,
		Size:     stat.Size(),
		MappedAt: time.Now(),
	}
	fc.cache[path] = mf
	return mf, nil
}

// wrapFallback presents an in-memory byte slice through the MappedFile shape
// so callers handle both sources uniformly.
func wrapFallback(path string, data []byte) *MappedFile {
	return &MappedFile{
		Path:     path,
		Data:     mmap.MMap(data),
		Size:     int64(len(data)),
		MappedAt: time.Now(),
	}
}

func (fc *fileCacheImpl) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.cache) + len(fc.fallback)
}

func (fc *fileCacheImpl) Stats() FileCacheStats {
	fc.mu.RLock()
	cached := len(fc.cache) + len(fc.fallback)
	mapped := fc.mappedMBLocked()
	fc.mu.RUnlock()

	fc.statsMu.Lock()
	defer fc.statsMu.Unlock()
	stats := fc.stats
	stats.FilesCached = cached
	stats.TotalMappedMB = mapped
	return stats
}

// mappedMBLocked sums cached content size. Caller holds mu.
func (fc *fileCacheImpl) mappedMBLocked() float64 {
	var total int64
	for _, mf := range fc.cache {
		total += mf.Size
	}
	for _, data := range fc.fallback {
		total += int64(len(data))
	}
	return float64(total) / (1024 * 1024)
}

func (fc *fileCacheImpl) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var errs []error
	for path, mf := range fc.cache {
		if mf.Data != nil {
			if err := mf.Data.Unmap(); err != nil {
				fc.logger.Warn("failed to unmap file", "path", path, "error", err)
				errs = append(errs, fmt.Errorf("unmap %q: %w", path, err))
			}
		}
		if mf.File != nil {
			if err := mf.File.Close(); err != nil {
				fc.logger.Warn("failed to close file", "path", path, "error", err)
				errs = append(errs, fmt.Errorf("close %q: %w", path, err))
			}
		}
	}
	fc.cache = make(map[string]*MappedFile)
	fc.fallback = make(map[string][]byte)

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}

func (fc *fileCacheImpl) recordHit() {
	fc.statsMu.Lock()
	fc.stats.CacheHits++
	fc.statsMu.Unlock()
}

func (fc *fileCacheImpl) recordMiss() {
	fc.statsMu.Lock()
	fc.stats.CacheMisses++
	fc.statsMu.Unlock()
}

func (fc *fileCacheImpl) recordLoad() {
	fc.statsMu.Lock()
	fc.stats.FilesLoaded++
	fc.statsMu.Unlock()
}

func (fc *fileCacheImpl) recordMmapFailure() {
	fc.statsMu.Lock()
	fc.stats.MmapFailures++
	fc.statsMu.Unlock()
}
