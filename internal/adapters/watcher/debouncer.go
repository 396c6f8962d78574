// Package watcher re-triggers builds when files under the solution directory change.
package watcher

import (
	"slices"
	"sync"
	"time"
	"unique"
)

// Debouncer collects changed paths and reports them once the tree has been quiet for the
// window. A burst that never goes quiet, such as an IDE saving a project on every keystroke,
// is still reported after the max wait.
type Debouncer struct {
	window   time.Duration
	maxWait  time.Duration
	callback func(paths []string)

	mu      sync.Mutex
	pending map[unique.Handle[string]]struct{}
	first   time.Time
	timer   *time.Timer
}

// DebouncerOption configures a Debouncer.
type DebouncerOption func(*Debouncer)

// WithMaxWait bounds how long a batch may be held back by continuous changes.
// The default is ten windows.
func WithMaxWait(d time.Duration) DebouncerOption {
	return func(db *Debouncer) {
		db.maxWait = d
	}
}

// NewDebouncer returns a Debouncer calling callback with the sorted, deduplicated paths
// of each batch.
func NewDebouncer(window time.Duration, callback func(paths []string), opts ...DebouncerOption) *Debouncer {
	d := &Debouncer{
		window:   window,
		maxWait:  10 * window,
		callback: callback,
		pending:  make(map[unique.Handle[string]]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.maxWait < window {
		d.maxWait = window
	}
	return d
}

// Add records path and pushes the batch deadline back by one window, never past the max wait.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if len(d.pending) == 0 {
		d.first = now
	}
	d.pending[unique.Make(path)] = struct{}{}

	wait := min(d.window, d.first.Add(d.maxWait).Sub(now))
	if d.timer == nil {
		d.timer = time.AfterFunc(wait, d.fire)
		return
	}
	d.timer.Reset(wait)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	paths := d.drainLocked()
	d.mu.Unlock()

	if len(paths) > 0 && d.callback != nil {
		go d.callback(paths)
	}
}

// Flush reports pending paths immediately and blocks until the callback returns.
// It does nothing when the timer has already fired.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil && !d.timer.Stop() {
		d.mu.Unlock()
		return
	}
	paths := d.drainLocked()
	d.mu.Unlock()

	if len(paths) > 0 && d.callback != nil {
		d.callback(paths)
	}
}

// drainLocked must be called with d.mu held.
func (d *Debouncer) drainLocked() []string {
	if len(d.pending) == 0 {
		return nil
	}
	paths := make([]string, 0, len(d.pending))
	for h := range d.pending {
		paths = append(paths, h.Value())
	}
	slices.Sort(paths)
	clear(d.pending)
	d.first = time.Time{}
	return paths
}
