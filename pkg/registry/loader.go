package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-version"
)

const (
	fetchTimeout  = 15 * time.Second
	maxFetchBytes = 4 << 20
)

// minSchemaVersion is the oldest dataset schema the loaders accept;
// maxSchemaMajor caps how new one may be.
var minSchemaVersion = version.Must(version.NewVersion("1.0.0"))

const maxSchemaMajor = 1

func parseDataset(data []byte) (Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return Dataset{}, fmt.Errorf("failed to parse dataset JSON: %w", err)
	}
	return ds, nil
}

func checkSchemaVersion(raw string) error {
	v, err := version.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("invalid dataset schema_version %q: %w", raw, err)
	}
	if v.Core().Compare(minSchemaVersion) < 0 {
		return fmt.Errorf("dataset schema_version %s is older than minimum supported %s", raw, minSchemaVersion)
	}
	if v.Segments()[0] > maxSchemaMajor {
		return fmt.Errorf("dataset schema_version %s is newer than supported major %d", raw, maxSchemaMajor)
	}
	return nil
}

// LoadFile builds a registry from a dataset JSON file on disk.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	ds, err := parseDataset(data)
	if err != nil {
		return nil, err
	}
	return New(ds, "file:"+path)
}

// Fetch downloads a dataset JSON over HTTP and builds a registry from it.
// The request is bounded by fetchTimeout and the response by maxFetchBytes.
func Fetch(ctx context.Context, url string) (*Registry, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build dataset request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset fetch returned %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset response: %w", err)
	}
	if int64(len(data)) > maxFetchBytes {
		return nil, fmt.Errorf("dataset response exceeds %d bytes", maxFetchBytes)
	}

	ds, err := parseDataset(data)
	if err != nil {
		return nil, err
	}
	reg, err := New(ds, "remote:"+url)
	if err != nil {
		return nil, err
	}
	reg.fetchedAt = now()
	return reg, nil
}
