package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/droidnet/internal/adapters/detector" //nolint:depguard // Wired in app layer
	"go.trai.ch/droidnet/internal/adapters/fs"       //nolint:depguard // Wired in app layer
	"go.trai.ch/droidnet/internal/adapters/watcher"  //nolint:depguard // Wired in app layer
	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	RunOptions
	// Debounce is the quiet period after the last change before a rebuild starts.
	// Zero uses watcher.DefaultDebounceWindow.
	Debounce time.Duration
}

// Watch runs the targets once, then again whenever a file under the solution
// directory changes. Paths matched by the input excludes never trigger a rebuild.
// It returns when ctx is cancelled. Build failures are logged, not returned.
func (a *App) Watch(ctx context.Context, targetNames []string, opts WatchOptions) error {
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	p, err := a.load(opts.ConfigPath, detector.ResolveTTY(opts.TTY, a.interactive()))
	if err != nil {
		return err
	}
	cfg := p.Config

	build := func() {
		if err := a.execute(ctx, p, targetNames, opts.RunOptions); err != nil && ctx.Err() == nil {
			a.logger.Error(err)
		}
	}
	build()

	window := opts.Debounce
	if window <= 0 {
		window = watcher.DefaultDebounceWindow
	}
	triggers := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(window, func(paths []string) {
		select {
		case triggers <- paths:
		default:
			// A rebuild is already queued and will pick up the change.
		}
	})

	root := cfg.SolutionDir()
	if err := a.watcher.Start(ctx, root, excludeMatcher(root, cfg.InputExcludes)); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to start watcher"), "path", root)
	}
	defer func() {
		_ = a.watcher.Stop()
	}()
	a.logger.Lifecycle(fmt.Sprintf("watching %s for changes", root))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for event := range a.watcher.Events() {
			debouncer.Add(event.Path)
		}
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case paths := <-triggers:
				a.logger.Lifecycle(fmt.Sprintf("%d path(s) changed, rebuilding", len(paths)))
				build()
			}
		}
	})
	return g.Wait()
}

// excludeMatcher reports whether path, relative to root, matches one of patterns.
// A "dir/**" pattern also matches dir itself so excluded trees are never watched.
func excludeMatcher(root string, patterns []string) func(path string) bool {
	var dirs []string
	for _, pattern := range patterns {
		if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
			dirs = append(dirs, prefix)
		}
	}
	return func(path string) bool {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			return false
		}
		rel = filepath.ToSlash(rel)
		return fs.Excluded(rel, patterns) || fs.Excluded(rel, dirs)
	}
}
