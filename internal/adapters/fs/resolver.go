package fs

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver expands declared inputs into concrete files.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// ResolveInputs resolves files, directories and doublestar globs to a sorted, de-duplicated list of files.
// Relative inputs are joined with root. Excludes apply to files found under directory inputs,
// matched relative to that directory.
func (r *Resolver) ResolveInputs(inputs, excludes []string, root string) ([]string, error) {
	found := make([][]string, len(inputs))

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, input := range inputs {
		g.Go(func() error {
			files, err := r.resolveOne(input, excludes, root)
			if err != nil {
				return err
			}
			found[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := slices.Concat(found...)
	slices.Sort(result)
	return slices.Compact(result), nil
}

func (r *Resolver) resolveOne(input string, excludes []string, root string) ([]string, error) {
	path := input
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, input)
	}

	if _, err := os.Stat(path); err == nil {
		return r.expand(path, excludes)
	}

	matches, err := doublestar.FilepathGlob(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to glob path"), "path", path)
	}
	if len(matches) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInputNotFound, "cannot resolve input"), "path", path)
	}

	var files []string
	for _, match := range matches {
		expanded, err := r.expand(match, excludes)
		if err != nil {
			return nil, err
		}
		files = append(files, expanded...)
	}
	return files, nil
}

func (r *Resolver) expand(path string, excludes []string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", path)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	for file, err := range r.walker.WalkFiles(path, excludes) {
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to walk input directory"), "path", file)
		}
		files = append(files, file)
	}
	return files, nil
}
