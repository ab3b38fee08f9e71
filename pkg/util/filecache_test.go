package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTemplates writes a handful of template fixtures and returns their paths.
func setupTemplates(t *testing.T) map[string]string {
	t.Helper()

	dir := t.TempDir()
	files := make(map[string]string)

	card := `{% doc %}
  Renders a product card.
  @param {product} item - Product to render
{% enddoc %}
<div class="card">{{ item.title }}</div>`
	cardPath := filepath.Join(dir, "card.liquid")
	require.NoError(t, os.WriteFile(cardPath, []byte(card), 0644))
	files["card.liquid"] = cardPath

	header := `{% doc %}Header section.{% enddoc %}
<header>{{ shop.name }} — välkommen</header>`
	headerPath := filepath.Join(dir, "header.liquid")
	require.NoError(t, os.WriteFile(headerPath, []byte(header), 0644))
	files["header.liquid"] = headerPath

	emptyPath := filepath.Join(dir, "empty.liquid")
	require.NoError(t, os.WriteFile(emptyPath, []byte{}, 0644))
	files["empty.liquid"] = emptyPath

	return files
}

func TestFileCache_GetAndReadString(t *testing.T) {
	files := setupTemplates(t)
	cardPath := files["card.liquid"]

	cache := NewFileCache(DefaultFileCacheConfig())
	defer cache.Close()

	assert.Equal(t, 0, cache.Size())

	mf, err := cache.Get(cardPath)
	require.NoError(t, err)
	require.NotNil(t, mf)
	assert.Equal(t, cardPath, mf.Path)
	assert.Greater(t, mf.Size, int64(0))
	assert.Equal(t, 1, cache.Size())

	content, err := cache.ReadString(cardPath)
	require.NoError(t, err)
	assert.Contains(t, content, "Renders a product card.")
	assert.Contains(t, content, "{% enddoc %}")

	// Multi-byte content survives the mapping untouched.
	header, err := cache.ReadString(files["header.liquid"])
	require.NoError(t, err)
	assert.Contains(t, header, "välkommen")

	stats := cache.Stats()
	assert.Equal(t, 2, stats.FilesCached)
	assert.Equal(t, int64(2), stats.FilesLoaded)
	assert.Greater(t, stats.CacheHits, int64(0))
}

func TestFileCache_EmptyFile(t *testing.T) {
	files := setupTemplates(t)
	cache := NewFileCache(DefaultFileCacheConfig())
	defer cache.Close()

	mf, err := cache.Get(files["empty.liquid"])
	require.NoError(t, err)
	assert.Equal(t, int64(0), mf.Size)
	assert.Nil(t, mf.Data)

	content, err := cache.ReadString(files["empty.liquid"])
	require.NoError(t, err)
	assert.Equal(t, "", content)
}

func TestFileCache_MissingFile(t *testing.T) {
	cache := NewFileCache(DefaultFileCacheConfig())
	defer cache.Close()

	_, err := cache.Get(filepath.Join(t.TempDir(), "absent.liquid"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to")

	_, err = cache.ReadString(filepath.Join(t.TempDir(), "absent.liquid"))
	assert.Error(t, err)
}

func TestFileCache_MaxFilesLimit(t *testing.T) {
	dir := t.TempDir()
	cache := NewFileCache(&FileCacheConfig{MaxFiles: 2})
	defer cache.Close()

	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, fmt.Sprintf("f%d.liquid", i))
		require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
		_, err := cache.Get(path)
		if i < 2 {
			require.NoError(t, err)
		} else {
			require.Error(t, err)
			assert.Contains(t, err.Error(), "file cache limit reached")
		}
	}
	assert.Equal(t, 2, cache.Size())
}

func TestFileCache_MaxMemoryLimit(t *testing.T) {
	dir := t.TempDir()
	cache := NewFileCache(&FileCacheConfig{MaxMemoryMB: 1})
	defer cache.Close()

	small := filepath.Join(dir, "small.liquid")
	require.NoError(t, os.WriteFile(small, []byte(strings.Repeat("x", 512*1024)), 0644))
	_, err := cache.Get(small)
	require.NoError(t, err)

	big := filepath.Join(dir, "big.liquid")
	require.NoError(t, os.WriteFile(big, []byte(strings.Repeat("y", 640*1024)), 0644))
	_, err = cache.Get(big)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory limit reached")
}

func TestFileCache_ConcurrentAccess(t *testing.T) {
	files := setupTemplates(t)
	cardPath := files["card.liquid"]
	headerPath := files["header.liquid"]

	cache := NewFileCache(DefaultFileCacheConfig())
	defer cache.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			path := cardPath
			if id%2 == 0 {
				path = headerPath
			}
			if _, err := cache.ReadString(path); err != nil {
				errs <- fmt.Errorf("goroutine %d: %w", id, err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	stats := cache.Stats()
	assert.Equal(t, 2, stats.FilesCached)
	assert.Equal(t, int64(2), stats.FilesLoaded)
}

func TestFileCache_CloseAndReload(t *testing.T) {
	files := setupTemplates(t)
	cache := NewFileCache(DefaultFileCacheConfig())

	_, err := cache.Get(files["card.liquid"])
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Size())

	require.NoError(t, cache.Close())
	assert.Equal(t, 0, cache.Size())

	// The cache stays usable after Close; files just reload.
	_, err = cache.Get(files["card.liquid"])
	require.NoError(t, err)
	require.NoError(t, cache.Close())
}

func TestFileCache_InvalidateReloadsChangedFile(t *testing.T) {
	files := setupTemplates(t)
	cardPath := files["card.liquid"]
	cache := NewFileCache(DefaultFileCacheConfig())
	defer cache.Close()

	before, err := cache.ReadString(cardPath)
	require.NoError(t, err)
	assert.Contains(t, before, "Renders a product card.")

	// Replace the file the way an editor save does.
	updated := `{% doc %}Rewritten.{% enddoc %}`
	require.NoError(t, os.WriteFile(cardPath, []byte(updated), 0644))

	cache.Invalidate(cardPath)
	assert.Equal(t, 0, cache.Size())

	after, err := cache.ReadString(cardPath)
	require.NoError(t, err)
	assert.Equal(t, updated, after)

	// Unknown paths are a no-op.
	cache.Invalidate(filepath.Join(t.TempDir(), "absent.liquid"))
	assert.Equal(t, 1, cache.Size())
}

func TestFileCache_StatsAccuracy(t *testing.T) {
	files := setupTemplates(t)
	cache := NewFileCache(DefaultFileCacheConfig())
	defer cache.Close()

	stats := cache.Stats()
	assert.Equal(t, int64(0), stats.FilesLoaded)
	assert.Equal(t, int64(0), stats.CacheHits)

	_, err := cache.Get(files["card.liquid"])
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = cache.Get(files["card.liquid"])
		require.NoError(t, err)
	}

	stats = cache.Stats()
	assert.Equal(t, int64(1), stats.FilesLoaded)
	assert.Equal(t, int64(5), stats.CacheHits)
	assert.Equal(t, 1, stats.FilesCached)

	_, err = cache.Get(filepath.Join(t.TempDir(), "absent.liquid"))
	require.Error(t, err)
	stats = cache.Stats()
	assert.Equal(t, int64(1), stats.CacheMisses)
}

func BenchmarkFileCache_ReadString(b *testing.B) {
	dir := b.TempDir()
	content := strings.Repeat("{% assign x = 1 %}\n", 2000)
	paths := make([]string, 8)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("t%d.liquid", i))
		require.NoError(b, os.WriteFile(paths[i], []byte(content), 0644))
	}

	b.Run("FileCache", func(b *testing.B) {
		cache := NewFileCache(DefaultFileCacheConfig())
		defer cache.Close()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := cache.ReadString(paths[i%len(paths)]); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("ReadFile", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			data, err := os.ReadFile(paths[i%len(paths)])
			if err != nil {
				b.Fatal(err)
			}
			_ = string(data)
		}
	})
}
