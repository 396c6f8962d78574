package tui

import (
	"time"

	"go.trai.ch/droidnet/internal/core/domain"
)

// MsgInitTasks lists the planned tasks in execution order.
type MsgInitTasks struct {
	Tasks        []string
	Dependencies map[string][]string
	Targets      []string
}

// MsgTaskStart marks a task span as started.
type MsgTaskStart struct {
	SpanID    string
	Name      string
	StartTime time.Time
}

// MsgTaskLog carries task output. Data may hold partial lines.
type MsgTaskLog struct {
	SpanID string
	Data   []byte
}

// MsgTaskComplete marks a task span as finished.
type MsgTaskComplete struct {
	SpanID  string
	EndTime time.Time
	State   domain.TaskState
	Err     error
}
