package ports

import (
	"context"
	"io"
)

//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Span attribute keys shared by the scheduler and the telemetry bridge.
const (
	// AttrTaskKind holds the domain.TaskKind name.
	AttrTaskKind = "droidnet.task.kind"
	// AttrTaskState holds the final domain.TaskState name.
	AttrTaskState = "droidnet.task.state"
)

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
	// EmitPlan signals the tasks planned for execution, in order, with their dependencies.
	EmitPlan(ctx context.Context, taskNames []string, deps map[string][]string, targets []string)
}

// Span represents a unit of work. Bytes written to it are task output.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// SpanConfig holds configuration for a starting span.
type SpanConfig struct {
	// Kind is the task kind, recorded as a span attribute.
	Kind string
}

// SpanOption is a functional option for configuring a span.
type SpanOption func(*SpanConfig)

// WithTaskKind records the task kind on the span.
func WithTaskKind(kind string) SpanOption {
	return func(c *SpanConfig) {
		c.Kind = kind
	}
}
