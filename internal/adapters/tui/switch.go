package tui

import (
	"context"
	"sync"
	"time"

	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/core/ports"
)

var _ ports.Renderer = (*Switch)(nil)

// Switch forwards renderer events either to the interactive renderer or to a fallback,
// chosen per build with SetInteractive.
type Switch struct {
	fallback    ports.Renderer
	interactive ports.Renderer

	mu     sync.RWMutex
	active ports.Renderer
}

// NewSwitch creates a Switch that starts on the fallback renderer.
func NewSwitch(fallback, interactive ports.Renderer) *Switch {
	return &Switch{
		fallback:    fallback,
		interactive: interactive,
		active:      fallback,
	}
}

// SetInteractive selects the renderer for the next build. Call it before Start.
func (s *Switch) SetInteractive(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.active = s.interactive
		return
	}
	s.active = s.fallback
}

func (s *Switch) current() ports.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Start starts the selected renderer.
func (s *Switch) Start(ctx context.Context) error {
	return s.current().Start(ctx)
}

// Stop stops the selected renderer.
func (s *Switch) Stop() error {
	return s.current().Stop()
}

// OnPlanEmit forwards to the selected renderer.
func (s *Switch) OnPlanEmit(tasks []string, deps map[string][]string, targets []string) {
	s.current().OnPlanEmit(tasks, deps, targets)
}

// OnTaskStart forwards to the selected renderer.
func (s *Switch) OnTaskStart(spanID, parentID, name string, startTime time.Time) {
	s.current().OnTaskStart(spanID, parentID, name, startTime)
}

// OnTaskLog forwards to the selected renderer.
func (s *Switch) OnTaskLog(spanID string, data []byte) {
	s.current().OnTaskLog(spanID, data)
}

// OnTaskComplete forwards to the selected renderer.
func (s *Switch) OnTaskComplete(spanID string, endTime time.Time, state domain.TaskState, err error) {
	s.current().OnTaskComplete(spanID, endTime, state, err)
}
