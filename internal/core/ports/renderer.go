package ports

import (
	"context"
	"time"

	"go.trai.ch/droidnet/internal/core/domain"
)

// Renderer turns the task event stream into build log output.
//
//go:generate go run go.uber.org/mock/mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// Stop flushes any buffered output.
	Stop() error

	// OnPlanEmit is called once the scheduler has planned the task graph.
	// tasks are in execution order; deps maps each task to its prerequisites.
	OnPlanEmit(tasks []string, deps map[string][]string, targets []string)

	// OnTaskStart is called when a task span begins.
	// parentID is empty for top-level spans.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskLog is called when a task emits output. data may hold partial lines.
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a task span ends with its final state.
	// err is nil unless state is domain.StateFailed.
	OnTaskComplete(spanID string, endTime time.Time, state domain.TaskState, err error)
}
