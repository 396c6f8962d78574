// Package domain contains the core domain models for the cross-toolchain staging pipeline.
package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph is the dependency graph of tasks for one build invocation.
type Graph struct {
	root           string
	tasks          map[InternedString]*Task
	dependents     map[InternedString][]InternedString
	executionOrder []InternedString
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		tasks: make(map[InternedString]*Task),
	}
}

// SetRoot sets the workspace root that relative task paths resolve against.
func (g *Graph) SetRoot(root string) {
	g.root = root
}

// Root returns the workspace root.
func (g *Graph) Root() string {
	return g.root
}

// AddTask adds a task to the graph.
// It returns an error if a task with the same name already exists.
func (g *Graph) AddTask(t *Task) error {
	if _, exists := g.tasks[t.Name]; exists {
		return zerr.With(zerr.Wrap(ErrTaskAlreadyExists, "cannot register task"), "task_name", t.Name.String())
	}
	g.tasks[t.Name] = t
	return nil
}

// GetTask looks up a task by name.
func (g *Graph) GetTask(name InternedString) (*Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// TaskCount returns the number of registered tasks.
func (g *Graph) TaskCount() int {
	return len(g.tasks)
}

// Names returns all task names sorted lexically.
func (g *Graph) Names() []InternedString {
	names := make([]InternedString, 0, len(g.tasks))
	for name := range g.tasks {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b InternedString) int {
		return strings.Compare(a.String(), b.String())
	})
	return names
}

// Validate checks for missing dependencies and cycles using a depth-first topological sort.
// Tasks are visited in name order so the resulting execution order is stable.
func (g *Graph) Validate() error {
	g.executionOrder = make([]InternedString, 0, len(g.tasks))
	g.dependents = make(map[InternedString][]InternedString, len(g.tasks))
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		task := g.tasks[u]
		for _, dep := range task.Predecessors() {
			if _, exists := g.tasks[dep]; !exists {
				return zerr.With(
					zerr.With(zerr.Wrap(ErrMissingDependency, "invalid task graph"), "task", u.String()),
					"dependency", dep.String(),
				)
			}
			g.dependents[dep] = append(g.dependents[dep], u)
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	for _, name := range g.Names() {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []InternedString, dep InternedString) error {
	startIdx := slices.Index(path, dep)
	parts := make([]string, 0, len(path)-startIdx+1)
	for _, node := range path[startIdx:] {
		parts = append(parts, node.String())
	}
	parts = append(parts, dep.String())
	return zerr.With(zerr.Wrap(ErrCycleDetected, "invalid task graph"), "cycle", strings.Join(parts, " -> "))
}

// Dependents returns the tasks that directly depend on name or must run after it.
// It is only populated after a successful Validate.
func (g *Graph) Dependents(name InternedString) []InternedString {
	return g.dependents[name]
}

// Walk returns an iterator that yields tasks in execution order.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[*Task] {
	return func(yield func(*Task) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.tasks[name]) {
				return
			}
		}
	}
}
