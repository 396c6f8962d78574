package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge is a span processor that turns task spans into renderer events.
type Bridge struct {
	renderer ports.Renderer
}

// NewBridge returns a Bridge feeding renderer. A nil renderer makes every callback a no-op.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

// OnStart reports the span as a started task.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	sc := s.SpanContext()
	if b.renderer == nil || !sc.IsValid() {
		return
	}

	var parentID string
	if psc := trace.SpanContextFromContext(parent); psc.IsValid() {
		parentID = psc.SpanID().String()
	}
	b.renderer.OnTaskStart(sc.SpanID().String(), parentID, s.Name(), s.StartTime())
}

// OnEnd reports the span as a finished task.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	sc := s.SpanContext()
	if b.renderer == nil || !sc.IsValid() {
		return
	}

	state, err := spanOutcome(s)
	b.renderer.OnTaskComplete(sc.SpanID().String(), s.EndTime(), state, err)
}

// spanOutcome reads the task state attribute. Spans without one succeeded;
// an error status always means failed.
func spanOutcome(s sdktrace.ReadOnlySpan) (domain.TaskState, error) {
	state := domain.StateSucceeded
	for _, kv := range s.Attributes() {
		if string(kv.Key) == ports.AttrTaskState {
			if parsed, ok := domain.ParseTaskState(kv.Value.AsString()); ok {
				state = parsed
			}
		}
	}

	status := s.Status()
	if status.Code != codes.Error {
		return state, nil
	}
	if status.Description == "" {
		return domain.StateFailed, domain.ErrTaskExecutionFailed
	}
	return domain.StateFailed, errors.New(status.Description)
}

// ForceFlush implements sdktrace.SpanProcessor.
func (b *Bridge) ForceFlush(context.Context) error { return nil }

// Shutdown implements sdktrace.SpanProcessor.
func (b *Bridge) Shutdown(context.Context) error { return nil }
