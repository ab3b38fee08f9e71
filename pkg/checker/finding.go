package checker

import (
	"fmt"
	"time"
)

// Severity classifies a finding for reporting and exit-code purposes.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// FindingKind identifies what a finding is about.
type FindingKind string

const (
	// KindMissingDocs marks a template with no documentation block at all.
	KindMissingDocs FindingKind = "missing-docs"

	// KindParse wraps a parse diagnostic from inside a documentation block.
	KindParse FindingKind = "parse"

	// KindLoad marks a template that could not be read from disk.
	KindLoad FindingKind = "load"
)

// Finding is one reportable problem in one template.
type Finding struct {
	Path string `json:"path"`

	// Line and Column are 1-based. Both are zero for load failures, which
	// have no position in the file.
	Line   int `json:"line"`
	Column int `json:"column"`

	Severity Severity    `json:"severity"`
	Kind     FindingKind `json:"kind"`
	Message  string      `json:"message"`
}

// String renders the finding as path:line:col: severity: message, the
// format editors and CI log scanners pick up.
func (f Finding) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", f.Path, f.Line, f.Column, f.Severity, f.Message)
}

// Summary is the outcome of one check run.
type Summary struct {
	FilesScanned    int           `json:"files_scanned"`
	FilesDocumented int           `json:"files_documented"`
	MissingDocs     int           `json:"missing_docs"`
	Diagnostics     int           `json:"diagnostics"`
	LoadFailures    int           `json:"load_failures"`
	CacheHits       int           `json:"cache_hits"`
	Duration        time.Duration `json:"duration_ns"`

	// Findings in discovery order, grouped per file.
	Findings []Finding `json:"findings"`

	// Warn and Eparse record the policy the run was evaluated under.
	Warn   bool `json:"-"`
	Eparse bool `json:"-"`
}

// Failed reports whether the run should exit non-zero: missing
// documentation fails unless warn mode downgraded it, and parse
// diagnostics fail only when eparse promoted them. Load failures are
// reported but never gate the exit code on their own.
func (s *Summary) Failed() bool {
	if s.MissingDocs > 0 && !s.Warn {
		return true
	}
	return s.Diagnostics > 0 && s.Eparse
}
