// Package fs provides file system adapters for walking, resolving, hashing and copying files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every file under root, skipping .git, .jj and any path whose
// slash-separated form relative to root matches one of excludes.
// A directory that cannot be read is yielded with its error and ends the walk.
func (w *Walker) WalkFiles(root string, excludes []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				yield(path, err)
				return filepath.SkipAll
			}

			if d.IsDir() {
				if path != root && w.skipDir(root, path, d, excludes) {
					return filepath.SkipDir
				}
				return nil
			}

			if Excluded(relSlash(root, path), excludes) {
				return nil
			}

			if !yield(path, nil) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) skipDir(root, path string, d fs.DirEntry, excludes []string) bool {
	name := d.Name()
	if name == ".git" || name == ".jj" {
		return true
	}

	// A "dir/**" pattern whose prefix matches the directory excludes everything below it.
	rel := relSlash(root, path)
	for _, pattern := range excludes {
		prefix, ok := strings.CutSuffix(pattern, "/**")
		if !ok {
			continue
		}
		if matched, _ := doublestar.Match(prefix, rel); matched {
			return true
		}
	}
	return false
}

// Excluded reports whether the slash-separated relative path matches any pattern.
// Malformed patterns never match.
func Excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
