// Package batch groups in-memory source files into byte-bounded batches and
// drives the documentation parser over them, so callers pay per-batch rather
// than per-file invocation overhead on large file sets.
package batch

import (
	"fmt"

	"github.com/liquidoc/liquidoc/pkg/docs"
)

// DefaultMaxBytes is the batch flush threshold used when a caller does not
// configure one.
const DefaultMaxBytes int64 = 10 << 20 // 10 MiB

// Batch is a run of consecutive input files handed to the parser in one call.
// Bytes is the combined content length of Files, counting encoded bytes.
type Batch struct {
	Files []docs.SourceFile
	Bytes int64
}

// Scheduler splits an ordered file sequence into batches in a single forward
// pass. Files are appended to the current batch in input order; once the
// accumulated content size reaches the byte bound the batch closes and the
// next file starts a fresh one. A batch can therefore exceed the bound by at
// most the one file that closed it, and a file at least as large as the bound
// arriving at an empty batch comes back as a singleton.
//
// The scheduler never reorders, drops, or duplicates files and performs no
// I/O: content is already resident in the inputs.
type Scheduler struct {
	files    []docs.SourceFile
	maxBytes int64
	next     int
}

// NewScheduler returns a scheduler over files with the given flush threshold.
// A bound that is zero or negative is a calling-contract violation and fails
// construction.
func NewScheduler(files []docs.SourceFile, maxBytes int64) (*Scheduler, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("batch byte bound must be positive, got %d", maxBytes)
	}
	return &Scheduler{files: files, maxBytes: maxBytes}, nil
}

// Next returns the next batch and true, or a zero Batch and false once the
// input is exhausted. Batches for an empty input are never produced.
func (s *Scheduler) Next() (Batch, bool) {
	if s.next >= len(s.files) {
		return Batch{}, false
	}
	var b Batch
	for s.next < len(s.files) {
		f := s.files[s.next]
		s.next++
		b.Files = append(b.Files, f)
		b.Bytes += int64(len(f.Content))
		if b.Bytes >= s.maxBytes {
			break
		}
	}
	return b, true
}
