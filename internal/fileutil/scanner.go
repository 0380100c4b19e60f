// Package fileutil expands command-line path arguments into the files a
// command should process.
package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanOptions configures how directory arguments are expanded.
type ScanOptions struct {
	// Match reports whether a file found in a directory should be included.
	// Nil includes every file.
	Match func(name string) bool
	// Recursive descends into subdirectories
	Recursive bool
	// ExcludeDirs lists directory names to skip. Hidden directories are
	// always skipped.
	ExcludeDirs []string
}

// ExpandPaths returns the files named by paths. Files are kept as given, even
// when Match would reject them, and "-" passes through for stdin. Directories
// are replaced by their matching files in sorted order. Duplicates are dropped
// and the first occurrence wins.
func ExpandPaths(paths []string, opts ScanOptions) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		key := filepath.Clean(path)
		if seen[key] {
			return
		}
		seen[key] = true
		files = append(files, path)
	}

	for _, path := range paths {
		if path == "-" {
			add(path)
			continue
		}

		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			// Missing files are left for the caller to report
			add(path)
			continue
		}

		found, err := ScanDirectory(path, opts)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no matching files found in %s", path)
		}
		for _, f := range found {
			add(f)
		}
	}

	return files, nil
}

// ScanDirectory lists the files under dir accepted by opts, sorted.
func ScanDirectory(dir string, opts ScanOptions) ([]string, error) {
	excluded := make(map[string]bool, len(opts.ExcludeDirs))
	for _, name := range opts.ExcludeDirs {
		excluded[name] = true
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}

		if d.IsDir() {
			if !opts.Recursive || excluded[d.Name()] || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if opts.Match == nil || opts.Match(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}
