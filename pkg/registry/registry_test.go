package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

func validDataset() Dataset {
	return Dataset{
		Name:          "test-vendor",
		SchemaVersion: "1.0.0",
		Source:        "https://example.com/types",
		GeneratedAt:   time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC),
		Types:         []string{"product", "cart", "collection"},
	}
}

func writeTempDataset(t *testing.T, ds Dataset) string {
	t.Helper()
	data, err := json.MarshalIndent(ds, "", "  ")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "types.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// --- New() tests ---

func TestNew_ValidDataset(t *testing.T) {
	reg, err := New(validDataset(), "file:test")
	require.NoError(t, err)

	assert.True(t, reg.Valid("product"))
	assert.True(t, reg.Valid("cart"))
	assert.False(t, reg.Valid("Product"), "lookups are case-sensitive")
	assert.False(t, reg.Valid("unknown"))
	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, []string{"cart", "collection", "product"}, reg.Names())
}

func TestNew_NamesIsACopy(t *testing.T) {
	reg, err := New(validDataset(), OriginBuiltin)
	require.NoError(t, err)

	names := reg.Names()
	names[0] = "mutated"
	assert.Equal(t, []string{"cart", "collection", "product"}, reg.Names())
}

func TestNew_DedupesTypes(t *testing.T) {
	ds := validDataset()
	ds.Types = []string{"product", "product", "cart"}
	reg, err := New(ds, OriginBuiltin)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
}

func TestNew_RejectsMissingFields(t *testing.T) {
	ds := validDataset()
	ds.Name = ""
	_, err := New(ds, OriginBuiltin)
	assert.ErrorContains(t, err, "validation failed")

	ds = validDataset()
	ds.SchemaVersion = ""
	_, err = New(ds, OriginBuiltin)
	assert.ErrorContains(t, err, "validation failed")

	ds = validDataset()
	ds.Types = nil
	_, err = New(ds, OriginBuiltin)
	assert.ErrorContains(t, err, "validation failed")

	ds = validDataset()
	ds.Types = []string{"product", ""}
	_, err = New(ds, OriginBuiltin)
	assert.ErrorContains(t, err, "validation failed")
}

func TestNew_SchemaVersionGating(t *testing.T) {
	tests := []struct {
		version string
		wantErr string
	}{
		{"1.0.0", ""},
		{"1.4.2", ""},
		{"1.9.9-beta.1", ""},
		{"0.9.0", "older than minimum"},
		{"2.0.0", "newer than supported major"},
		{"not-a-version", "invalid dataset schema_version"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			ds := validDataset()
			ds.SchemaVersion = tt.version
			_, err := New(ds, OriginBuiltin)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

// --- Builtin tests ---

func TestBuiltin_BundledDataset(t *testing.T) {
	reg := Builtin()
	require.NotNil(t, reg)

	assert.True(t, reg.Valid("product"))
	assert.True(t, reg.Valid("collection"))
	assert.True(t, reg.Valid("cart"))
	assert.True(t, reg.Valid("selling_plan_allocation"))
	assert.False(t, reg.Valid("Product"))
	assert.False(t, reg.Valid("string"), "scalars are not vendor types")
	assert.Greater(t, reg.Len(), 100)

	meta := reg.Meta()
	assert.Equal(t, "shopify-liquid", meta.Name)
	assert.Equal(t, OriginBuiltin, meta.Origin)
	assert.True(t, meta.FetchedAt.IsZero())
}

func TestBuiltin_SharedInstance(t *testing.T) {
	assert.Same(t, Builtin(), Builtin())
}

// --- LoadFile tests ---

func TestLoadFile_RoundTrip(t *testing.T) {
	path := writeTempDataset(t, validDataset())
	reg, err := LoadFile(path)
	require.NoError(t, err)

	assert.True(t, reg.Valid("collection"))
	assert.Equal(t, "file:"+path, reg.Meta().Origin)
	assert.True(t, reg.Meta().FetchedAt.IsZero())
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorContains(t, err, "failed to read dataset file")
}

func TestLoadFile_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "failed to parse dataset JSON")
}

// --- Fetch tests ---

func TestFetch_Success(t *testing.T) {
	data, err := json.Marshal(validDataset())
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	reg, err := Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, reg.Valid("product"))
	assert.Equal(t, "remote:"+srv.URL, reg.Meta().Origin)
	assert.False(t, reg.Meta().FetchedAt.IsZero())
}

func TestFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "dataset fetch returned")
}

func TestFetch_OversizedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", maxFetchBytes+16)))
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "exceeds")
}

func TestFetch_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Fetch(ctx, srv.URL)
	assert.Error(t, err)
}

// --- Snapshot tests ---

func TestSnapshot_RoundTrip(t *testing.T) {
	reg, err := New(validDataset(), "file:orig")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cache", "registry.snap")
	require.NoError(t, SaveSnapshot(path, reg))

	restored, stale, err := LoadSnapshot(path, DefaultSnapshotTTL)
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, reg.Names(), restored.Names())
	assert.Equal(t, OriginSnapshot, restored.Meta().Origin)
	assert.False(t, restored.Meta().FetchedAt.IsZero())
}

func TestSnapshot_Staleness(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return base }
	defer func() { now = time.Now }()

	reg, err := New(validDataset(), OriginBuiltin)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "registry.snap")
	require.NoError(t, SaveSnapshot(path, reg))

	now = func() time.Time { return base.Add(12 * time.Hour) }
	_, stale, err := LoadSnapshot(path, 24*time.Hour)
	require.NoError(t, err)
	assert.False(t, stale)

	now = func() time.Time { return base.Add(48 * time.Hour) }
	_, stale, err = LoadSnapshot(path, 24*time.Hour)
	require.NoError(t, err)
	assert.True(t, stale)

	// A non-positive TTL disables the staleness check.
	_, stale, err = LoadSnapshot(path, 0)
	require.NoError(t, err)
	assert.False(t, stale)
}

func TestLoadSnapshot_MissingFile(t *testing.T) {
	_, _, err := LoadSnapshot(filepath.Join(t.TempDir(), "absent.snap"), 0)
	assert.ErrorContains(t, err, "failed to read registry snapshot")
}

func TestLoadSnapshot_CorruptData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.snap")
	require.NoError(t, os.WriteFile(path, []byte("definitely not msgpack"), 0644))
	_, _, err := LoadSnapshot(path, 0)
	assert.ErrorContains(t, err, "failed to decode registry snapshot")
}
