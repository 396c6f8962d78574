// Package tui provides an interactive terminal renderer for builds.
package tui

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/core/ports"
	"go.trai.ch/droidnet/internal/ui/output"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer runs a Bubble Tea program for the duration of one build.
// Each Start creates a fresh program, so a Renderer can serve repeated builds in watch mode.
type Renderer struct {
	opts      []tea.ProgramOption
	interrupt func()

	mu      sync.Mutex
	program *tea.Program
	model   *Model
	done    chan error
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithProgramOptions appends Bubble Tea program options, mostly for tests.
func WithProgramOptions(opts ...tea.ProgramOption) Option {
	return func(r *Renderer) {
		r.opts = append(r.opts, opts...)
	}
}

// WithInterruptHandler replaces what happens when the user presses ctrl+c.
func WithInterruptHandler(fn func()) Option {
	return func(r *Renderer) {
		r.interrupt = fn
	}
}

// NewRenderer creates a Renderer drawing on w. A nil w means stderr.
func NewRenderer(w io.Writer, opts ...Option) *Renderer {
	if w == nil {
		w = os.Stderr
	}
	lipgloss.SetColorProfile(output.ColorProfile(w))

	r := &Renderer{
		opts:      []tea.ProgramOption{tea.WithOutput(w)},
		interrupt: interruptSelf,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// interruptSelf delivers SIGINT to the process. The program puts the terminal in raw mode,
// so ctrl+c arrives as a key press instead of a signal.
func interruptSelf() {
	if p, err := os.FindProcess(os.Getpid()); err == nil {
		_ = p.Signal(os.Interrupt)
	}
}

// Start launches the program in the background.
func (r *Renderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program != nil {
		return nil
	}

	model := NewModel()
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, r.opts...)
	program := tea.NewProgram(model, opts...)
	done := make(chan error, 1)

	go func() {
		_, err := program.Run()
		if model.Interrupted {
			r.interrupt()
		}
		done <- err
	}()

	r.program, r.model, r.done = program, model, done
	return nil
}

// Stop quits the program and waits for it to restore the terminal.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	program, done := r.program, r.done
	r.program, r.done = nil, nil
	r.mu.Unlock()

	if program == nil {
		return nil
	}

	program.Quit()
	err := <-done
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// Model returns the model of the current or last program.
func (r *Renderer) Model() *Model {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.model
}

// OnPlanEmit initializes the task list.
func (r *Renderer) OnPlanEmit(tasks []string, deps map[string][]string, targets []string) {
	r.send(MsgInitTasks{Tasks: tasks, Dependencies: deps, Targets: targets})
}

// OnTaskStart marks a task as running.
func (r *Renderer) OnTaskStart(spanID, _, name string, startTime time.Time) {
	r.send(MsgTaskStart{SpanID: spanID, Name: name, StartTime: startTime})
}

// OnTaskLog appends output to the task's terminal.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.send(MsgTaskLog{SpanID: spanID, Data: data})
}

// OnTaskComplete records the final state of a task.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, state domain.TaskState, err error) {
	r.send(MsgTaskComplete{SpanID: spanID, EndTime: endTime, State: state, Err: err})
}

func (r *Renderer) send(msg tea.Msg) {
	r.mu.Lock()
	program := r.program
	r.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}
