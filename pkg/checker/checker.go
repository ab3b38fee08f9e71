// Package checker runs the full documentation check pipeline over a
// template tree: discover Liquid templates, load them through the
// memory-mapped file cache, parse them in batches, evaluate findings and
// render a report.
package checker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/liquidoc/liquidoc/pkg/batch"
	"github.com/liquidoc/liquidoc/pkg/docs"
	"github.com/liquidoc/liquidoc/pkg/registry"
	"github.com/liquidoc/liquidoc/pkg/util"
)

// Config controls a check run. The zero value checks the current directory
// with the default patterns, the bundled vendor type registry and an
// automatically sized worker pool.
type Config struct {
	// Root is the directory (or single file) to check. Empty means ".".
	Root string

	// Include and Exclude are doublestar globs relative to Root. Empty
	// slices select DefaultInclude and DefaultExclude.
	Include []string
	Exclude []string

	// Warn downgrades missing-documentation findings from error to
	// warning, so they no longer fail the run.
	Warn bool

	// Eparse makes parse diagnostics fail the run.
	Eparse bool

	// MaxBytes is the parse batch flush threshold. Zero selects
	// batch.DefaultMaxBytes.
	MaxBytes int64

	// Workers is the parse worker count. Zero sizes the pool from the
	// machine.
	Workers int

	// NoCache disables result caching between runs. Every run then
	// re-parses every template.
	NoCache bool

	// CacheSize caps the result cache. Zero selects DefaultCacheSize.
	CacheSize int

	// Registry validates vendor type identifiers. Nil selects the bundled
	// dataset.
	Registry *registry.Registry

	Logger *slog.Logger
}

// Checker is a reusable check pipeline. Watch mode keeps one Checker alive
// across re-checks so the file and result caches carry over.
type Checker struct {
	cfg     Config
	agg     *batch.Aggregator
	files   util.FileCache
	results *resultCache
	logger  *slog.Logger
}

// fileState carries one discovered template through the pipeline.
type fileState struct {
	path    string
	loadErr error
	result  docs.FileResult
}

// New creates a Checker from cfg, filling in defaults for zero fields.
func New(cfg Config) *Checker {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = registry.Builtin()
	}
	cfg.Workers = util.WorkerCount(cfg.Workers)
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}

	parser := docs.NewParser(cfg.Registry)
	agg := batch.NewAggregator(parser, batch.Config{MaxBytes: cfg.MaxBytes, Workers: cfg.Workers}, cfg.Logger)

	fcConfig := util.DefaultFileCacheConfig()
	fcConfig.Logger = cfg.Logger

	c := &Checker{
		cfg:    cfg,
		agg:    agg,
		files:  util.NewFileCache(fcConfig),
		logger: cfg.Logger,
	}
	if !cfg.NoCache {
		c.results = newResultCache(cfg.CacheSize, cfg.Logger)
	}
	return c
}

// Run checks every template under cfg.Root matching the configured globs.
func (c *Checker) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	paths, err := Discover(c.cfg.Root, c.cfg.Include, c.cfg.Exclude)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Discovery complete",
		"root", c.cfg.Root,
		"files", len(paths),
		"duration", time.Since(start))

	sum, err := c.checkPaths(ctx, paths)
	if err != nil {
		return nil, err
	}
	sum.Duration = time.Since(start)

	c.logger.Info("Check complete",
		"files", sum.FilesScanned,
		"documented", sum.FilesDocumented,
		"missing", sum.MissingDocs,
		"diagnostics", sum.Diagnostics,
		"duration", sum.Duration)
	return sum, nil
}

// CheckFiles checks an explicit path list, skipping discovery. Watch mode
// uses it to re-check only the templates that changed.
func (c *Checker) CheckFiles(ctx context.Context, paths []string) (*Summary, error) {
	start := time.Now()
	sum, err := c.checkPaths(ctx, paths)
	if err != nil {
		return nil, err
	}
	sum.Duration = time.Since(start)
	return sum, nil
}

// Invalidate drops cached state for path, forcing the next check to reload
// it from disk. Watch mode calls this before re-checking a changed file.
func (c *Checker) Invalidate(path string) {
	c.files.Invalidate(path)
	if c.results != nil {
		c.results.remove(path)
	}
}

// Close releases the memory-mapped template cache.
func (c *Checker) Close() error {
	return c.files.Close()
}

// checkPaths runs load, parse and evaluate over paths in order.
func (c *Checker) checkPaths(ctx context.Context, paths []string) (*Summary, error) {
	states := make([]fileState, len(paths))

	var (
		pending    []docs.SourceFile
		pendingIdx []int
		pendingKey []string
		cacheHits  int
	)

	loadStart := time.Now()
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		states[i].path = path

		content, err := c.files.ReadString(path)
		if err != nil {
			states[i].loadErr = err
			continue
		}

		key := contentHash(content)
		if c.results != nil {
			if res, ok := c.results.get(path, key); ok {
				states[i].result = res
				cacheHits++
				continue
			}
		}
		pending = append(pending, docs.SourceFile{Path: path, Content: content})
		pendingIdx = append(pendingIdx, i)
		pendingKey = append(pendingKey, key)
	}
	c.logger.Debug("Load complete",
		"files", len(paths),
		"pending", len(pending),
		"cached", cacheHits,
		"duration", time.Since(loadStart))

	if len(pending) > 0 {
		parseStart := time.Now()
		parsed, err := c.agg.ParseAll(ctx, pending)
		if err != nil {
			return nil, err
		}
		for j, res := range parsed {
			states[pendingIdx[j]].result = res
			if c.results != nil {
				c.results.put(res.Path, pendingKey[j], res)
			}
		}
		c.logger.Debug("Parse complete",
			"files", len(pending),
			"duration", time.Since(parseStart))
	}

	sum := c.evaluate(states)
	sum.CacheHits = cacheHits
	return sum, nil
}

// evaluate turns per-file pipeline states into findings and counters.
// Findings come out grouped per file in input order: the file-level
// missing-documentation finding first, then parse diagnostics by position.
func (c *Checker) evaluate(states []fileState) *Summary {
	sum := &Summary{
		FilesScanned: len(states),
		Findings:     make([]Finding, 0),
		Warn:         c.cfg.Warn,
		Eparse:       c.cfg.Eparse,
	}

	missingSeverity := SeverityError
	if c.cfg.Warn {
		missingSeverity = SeverityWarning
	}

	for _, st := range states {
		if st.loadErr != nil {
			sum.LoadFailures++
			sum.Findings = append(sum.Findings, Finding{
				Path:     st.path,
				Severity: SeverityError,
				Kind:     KindLoad,
				Message:  fmt.Sprintf("Failed to load template: %v", st.loadErr),
			})
			continue
		}

		if len(st.result.Blocks) == 0 {
			sum.MissingDocs++
			sum.Findings = append(sum.Findings, Finding{
				Path:     st.path,
				Line:     1,
				Column:   1,
				Severity: missingSeverity,
				Kind:     KindMissingDocs,
				Message:  "Missing documentation",
			})
		} else {
			sum.FilesDocumented++
		}

		for _, d := range st.result.Diagnostics {
			sum.Diagnostics++
			sum.Findings = append(sum.Findings, Finding{
				Path:     st.path,
				Line:     d.Line,
				Column:   d.Column,
				Severity: SeverityError,
				Kind:     KindParse,
				Message:  d.Message,
			})
		}
	}
	return sum
}
