// Package registry loads and serves the set of vendor type identifiers that
// parameter type expressions are resolved against. Datasets come from the
// bundled Shopify Liquid objects, a local JSON file, or a remote refresh, and
// can be persisted as a snapshot between runs.
package registry

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/liquidoc/liquidoc/datasets"
)

// Origin labels for registries not built from a file path or URL.
const (
	OriginBuiltin  = "builtin"
	OriginSnapshot = "snapshot"
)

// validate checks dataset documents against their struct tags.
var validate = validator.New()

// Dataset is the JSON document a registry is built from.
type Dataset struct {
	Name          string    `json:"name" msgpack:"name" validate:"required"`
	SchemaVersion string    `json:"schema_version" msgpack:"schema_version" validate:"required"`
	Source        string    `json:"source" msgpack:"source"`
	GeneratedAt   time.Time `json:"generated_at" msgpack:"generated_at"`
	Types         []string  `json:"types" msgpack:"types" validate:"required,min=1,dive,required"`
}

// Meta describes a registry's provenance.
type Meta struct {
	Name          string    `json:"name"`
	SchemaVersion string    `json:"schema_version"`
	Source        string    `json:"source"`
	GeneratedAt   time.Time `json:"generated_at"`
	FetchedAt     time.Time `json:"fetched_at"`
	Origin        string    `json:"origin"`
}

// Registry is an immutable set of vendor type identifiers. Lookups are exact
// and case-sensitive; only built-in scalar names are matched loosely, and
// that happens upstream in the parser.
type Registry struct {
	ds        Dataset
	origin    string
	fetchedAt time.Time
	set       map[string]struct{}
	names     []string
}

// New builds a registry from an in-memory dataset, validating it and gating
// on its schema version. origin is recorded verbatim in Meta.
func New(ds Dataset, origin string) (*Registry, error) {
	if err := validate.Struct(&ds); err != nil {
		return nil, fmt.Errorf("dataset validation failed: %w", err)
	}
	if err := checkSchemaVersion(ds.SchemaVersion); err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(ds.Types))
	for _, t := range ds.Types {
		set[t] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for t := range set {
		names = append(names, t)
	}
	sort.Strings(names)

	return &Registry{ds: ds, origin: origin, set: set, names: names}, nil
}

// Builtin returns the registry built from the bundled Shopify Liquid dataset.
// The result is shared; it is immutable so that is safe.
func Builtin() *Registry {
	return builtin
}

var builtin = mustBuiltin()

func mustBuiltin() *Registry {
	ds, err := parseDataset(datasets.ShopifyJSON)
	if err != nil {
		panic(fmt.Sprintf("registry: bundled dataset unreadable: %v", err))
	}
	reg, err := New(ds, OriginBuiltin)
	if err != nil {
		panic(fmt.Sprintf("registry: bundled dataset invalid: %v", err))
	}
	return reg
}

// Valid reports whether identifier names a known vendor type.
func (r *Registry) Valid(identifier string) bool {
	_, ok := r.set[identifier]
	return ok
}

// Len returns the number of distinct vendor type identifiers.
func (r *Registry) Len() int {
	return len(r.names)
}

// Names returns the identifiers in sorted order. The slice is a copy.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Meta returns the registry's dataset metadata and provenance. FetchedAt is
// zero unless the registry came over the network or from a snapshot.
func (r *Registry) Meta() Meta {
	return Meta{
		Name:          r.ds.Name,
		SchemaVersion: r.ds.SchemaVersion,
		Source:        r.ds.Source,
		GeneratedAt:   r.ds.GeneratedAt,
		FetchedAt:     r.fetchedAt,
		Origin:        r.origin,
	}
}
