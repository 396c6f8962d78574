package domain

import (
	"context"
	"io"
	"slices"
)

// TaskKind identifies the role a task plays in the staging pipeline.
type TaskKind int

// Task kinds. KindHost covers every task declared by the host build configuration.
const (
	KindHost TaskKind = iota
	KindCleanStaging
	KindUnpackShrinkRules
	KindCompileRuntimeProject
	KindStageGeneratedSources
	KindUnpackPackage
)

var taskKindNames = map[TaskKind]string{
	KindHost:                  "host",
	KindCleanStaging:          "clean-staging",
	KindUnpackShrinkRules:     "unpack-shrink-rules",
	KindCompileRuntimeProject: "compile-runtime-project",
	KindStageGeneratedSources: "stage-generated-sources",
	KindUnpackPackage:         "unpack-package",
}

func (k TaskKind) String() string {
	if name, ok := taskKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// TaskState is the per-invocation state of a task.
type TaskState int

// NotRun -> (Skipped | Executing -> Succeeded | Executing -> Failed).
const (
	StateNotRun TaskState = iota
	StateSkipped
	StateExecuting
	StateSucceeded
	StateFailed
)

var taskStateNames = map[TaskState]string{
	StateNotRun:    "not-run",
	StateSkipped:   "up-to-date",
	StateExecuting: "executing",
	StateSucceeded: "succeeded",
	StateFailed:    "failed",
}

func (s TaskState) String() string {
	if name, ok := taskStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseTaskState is the inverse of TaskState.String.
func ParseTaskState(s string) (TaskState, bool) {
	for state, name := range taskStateNames {
		if name == s {
			return state, true
		}
	}
	return StateNotRun, false
}

// Done reports whether s satisfies dependents.
func (s TaskState) Done() bool {
	return s == StateSkipped || s == StateSucceeded
}

// Action is the work a task performs once it is judged out of date.
// Output written to out is surfaced verbatim in the build log.
type Action interface {
	Run(ctx context.Context, out io.Writer) error
}

// ActionFunc adapts a function to Action.
type ActionFunc func(ctx context.Context, out io.Writer) error

// Run calls f.
func (f ActionFunc) Run(ctx context.Context, out io.Writer) error {
	return f(ctx, out)
}

// Task is a named unit of work with declared inputs and outputs.
type Task struct {
	Name InternedString
	Kind TaskKind
	// BuildType is the zero value for global and host tasks.
	BuildType BuildType

	// Inputs are files, directories or glob patterns. Relative entries resolve against the workspace root.
	Inputs []InternedString
	// Excludes are doublestar patterns applied to files found under directory inputs.
	Excludes []string
	// Outputs are files or directories the task writes. They are removed before execution.
	Outputs      []InternedString
	Dependencies []InternedString
	// MustRunAfter orders t after these tasks when both are part of the same run.
	// Unlike Dependencies, they are never pulled into a run.
	MustRunAfter []InternedString

	// Command, Environment and WorkingDir describe host tasks. Staging tasks hash them
	// into their definition but run through Action.
	Command     []string
	Environment map[string]string
	WorkingDir  InternedString

	// AlwaysRun marks tasks that are never up to date.
	AlwaysRun        bool
	// SkipWhenNoInputs skips the task when its inputs are missing or empty.
	// Outputs left by an earlier run are removed.
	SkipWhenNoInputs bool

	Action Action
}

// DependsOn records that t must run after each of names, skipping duplicates.
func (t *Task) DependsOn(names ...InternedString) {
	for _, n := range names {
		if !slices.Contains(t.Dependencies, n) {
			t.Dependencies = append(t.Dependencies, n)
		}
	}
}

// RunsAfter records ordering-only predecessors, skipping duplicates.
func (t *Task) RunsAfter(names ...InternedString) {
	for _, n := range names {
		if !slices.Contains(t.MustRunAfter, n) {
			t.MustRunAfter = append(t.MustRunAfter, n)
		}
	}
}

// Predecessors returns the dependencies followed by the ordering-only predecessors
// that are not also dependencies.
func (t *Task) Predecessors() []InternedString {
	if len(t.MustRunAfter) == 0 {
		return t.Dependencies
	}
	preds := slices.Clone(t.Dependencies)
	for _, n := range t.MustRunAfter {
		if !slices.Contains(preds, n) {
			preds = append(preds, n)
		}
	}
	return preds
}
