package checker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultInclude matches every Liquid template under the root.
var DefaultInclude = []string{"**/*.liquid"}

// DefaultExclude skips dependency and build output directories.
var DefaultExclude = []string{"node_modules/**", ".git/**", "dist/**", "build/**"}

// Discover walks root applying include/exclude globs and returns a sorted
// slice of absolute template paths. Empty pattern slices select the
// defaults; passing explicit patterns replaces the defaults entirely. A
// root naming a single file is accepted directly when its basename matches
// the patterns.
func Discover(root string, include, exclude []string) ([]string, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	if len(exclude) == 0 {
		exclude = DefaultExclude
	}

	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root path: %w", err)
	}

	// A single-file root skips the walk entirely.
	if !info.IsDir() {
		rel := filepath.ToSlash(filepath.Base(absRoot))
		if matchAny(exclude, rel) || !matchAny(include, rel) {
			return []string{}, nil
		}
		return []string{absRoot}, nil
	}

	var files []string

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Continue walking on errors.
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		// Check exclusions (directories and files).
		for _, pattern := range exclude {
			matched, _ := doublestar.PathMatch(pattern, relPath)
			if matched {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			return nil
		}

		if !matchAny(include, relPath) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// MatchPath reports whether a path under root would be selected by the
// include/exclude patterns. Watch mode filters file system events with the
// same rules discovery applies to the tree walk. Empty pattern slices
// select the defaults.
func MatchPath(root, path string, include, exclude []string) bool {
	if len(include) == 0 {
		include = DefaultInclude
	}
	if len(exclude) == 0 {
		exclude = DefaultExclude
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	rel = filepath.ToSlash(rel)

	if matchAny(exclude, rel) {
		return false
	}
	return matchAny(include, rel)
}

func matchAny(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		if m, _ := doublestar.PathMatch(pattern, relPath); m {
			return true
		}
	}
	return false
}
