package batch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/liquidoc/liquidoc/pkg/docs"
)

// Config controls how the aggregator schedules and dispatches batches.
type Config struct {
	// MaxBytes is the batch flush threshold. Zero selects DefaultMaxBytes.
	MaxBytes int64

	// Workers is the number of goroutines parsing batches concurrently.
	// Values below 2 select the sequential path.
	Workers int
}

// DefaultConfig returns the sequential single-worker configuration.
func DefaultConfig() Config {
	return Config{MaxBytes: DefaultMaxBytes, Workers: 1}
}

// Aggregator feeds scheduled batches to a parser and reassembles the per-file
// results in input order. Batching is a throughput detail: the output of
// ParseAll is per-file identical to parsing each file on its own.
type Aggregator struct {
	parser *docs.Parser
	cfg    Config
	logger *slog.Logger
}

// NewAggregator creates an aggregator around parser. A nil logger falls back
// to slog.Default().
func NewAggregator(parser *docs.Parser, cfg Config, logger *slog.Logger) *Aggregator {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{parser: parser, cfg: cfg, logger: logger}
}

// ParseAll schedules files into batches and parses them, returning one
// FileResult per input file in input order. Cancellation is cooperative
// between batches: once ctx is done no further batch is dispatched and
// ctx.Err() is returned, so callers never observe a half-parsed file.
func (a *Aggregator) ParseAll(ctx context.Context, files []docs.SourceFile) ([]docs.FileResult, error) {
	sched, err := NewScheduler(files, a.cfg.MaxBytes)
	if err != nil {
		return nil, err
	}

	if a.cfg.Workers > 1 {
		return a.parseParallel(ctx, sched, len(files))
	}

	results := make([]docs.FileResult, 0, len(files))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, ok := sched.Next()
		if !ok {
			break
		}
		a.logger.Debug("parsing batch", "files", len(b.Files), "bytes", b.Bytes)
		results = append(results, a.parser.ParseFiles(b.Files)...)
	}
	return results, nil
}

// parseParallel fans batches out to cfg.Workers goroutines and restores batch
// order before concatenating, so the output matches the sequential path.
func (a *Aggregator) parseParallel(ctx context.Context, sched *Scheduler, fileCount int) ([]docs.FileResult, error) {
	var batches []Batch
	for {
		b, ok := sched.Next()
		if !ok {
			break
		}
		batches = append(batches, b)
	}

	workers := a.cfg.Workers
	if workers > len(batches) {
		workers = len(batches)
	}
	if workers < 1 {
		return make([]docs.FileResult, 0), nil
	}
	a.logger.Debug("parsing batches", "batches", len(batches), "workers", workers)

	type job struct {
		idx int
		b   Batch
	}
	jobs := make(chan job)
	perBatch := make([][]docs.FileResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				perBatch[j.idx] = a.parser.ParseFiles(j.b.Files)
			}
		}()
	}

	var cancelled bool
feed:
	for i, b := range batches {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		select {
		case <-ctx.Done():
			cancelled = true
			break feed
		case jobs <- job{idx: i, b: b}:
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled {
		return nil, ctx.Err()
	}

	results := make([]docs.FileResult, 0, fileCount)
	for _, rs := range perBatch {
		results = append(results, rs...)
	}
	return results, nil
}
