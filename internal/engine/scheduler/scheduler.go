// Package scheduler runs a task graph incrementally.
//
// Ready tasks are dispatched from an in-degree queue with bounded parallelism. A task
// whose input hash and output hash match the last successful execution is skipped.
package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/core/ports"
	"go.trai.ch/zerr"
)

// AllTarget selects every task in the graph.
const AllTarget = "all"

// Options tune a single Run.
type Options struct {
	// Parallelism bounds the number of concurrently executing tasks. Zero means one per CPU.
	Parallelism int
	// Force bypasses the up-to-date check.
	Force bool
	// RunID is recorded in every persisted build info. Empty generates a new one.
	RunID string
}

// Scheduler manages the execution of tasks in the dependency graph.
type Scheduler struct {
	store    ports.BuildInfoStore
	hasher   ports.Hasher
	resolver ports.InputResolver
	tracer   ports.Tracer
	logger   ports.Logger

	mu         sync.RWMutex
	taskStates map[domain.InternedString]domain.TaskState
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(
	store ports.BuildInfoStore,
	hasher ports.Hasher,
	resolver ports.InputResolver,
	tracer ports.Tracer,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		store:      store,
		hasher:     hasher,
		resolver:   resolver,
		tracer:     tracer,
		logger:     logger,
		taskStates: make(map[domain.InternedString]domain.TaskState),
	}
}

// State returns the state a task reached in the most recent Run.
func (s *Scheduler) State(name string) domain.TaskState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taskStates[domain.NewInternedString(name)]
}

func (s *Scheduler) initTaskStates(tasks []domain.InternedString) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.taskStates)
	for _, task := range tasks {
		s.taskStates[task] = domain.StateNotRun
	}
}

func (s *Scheduler) updateState(name domain.InternedString, state domain.TaskState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStates[name] = state
}

// Run executes targetNames and their transitive dependencies.
// If targetNames contains "all", every task in the graph is executed.
func (s *Scheduler) Run(ctx context.Context, graph *domain.Graph, targetNames []string, opts Options) error {
	if len(targetNames) == 0 {
		return zerr.Wrap(domain.ErrNoTargetsSpecified, "cannot run build")
	}
	if err := graph.Validate(); err != nil {
		return err
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.NumCPU()
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	state, err := s.newRunState(ctx, graph, targetNames, opts)
	if err != nil {
		return err
	}

	planned, deps := state.plannedTasks()
	s.tracer.EmitPlan(ctx, planned, deps, targetNames)
	s.initTaskStates(state.allTasks)

	return state.runExecutionLoop()
}

type result struct {
	task       domain.InternedString
	err        error
	state      domain.TaskState
	inputHash  string
	inputCount int
	cacheable  bool
}

type schedulerRunState struct {
	graph     *domain.Graph
	inDegree  map[domain.InternedString]int
	tasks     map[domain.InternedString]*domain.Task
	ready     []domain.InternedString
	active    int
	failed    bool
	resultsCh chan result
	errs      error
	ctx       context.Context
	opts      Options
	s         *Scheduler
	allTasks  []domain.InternedString
}

func (s *Scheduler) newRunState(
	ctx context.Context,
	graph *domain.Graph,
	targetNames []string,
	opts Options,
) (*schedulerRunState, error) {
	tasksToRun, allTasks, err := s.resolveTasksToRun(graph, targetNames)
	if err != nil {
		return nil, err
	}

	inDegree := make(map[domain.InternedString]int, len(tasksToRun))
	tasks := make(map[domain.InternedString]*domain.Task, len(tasksToRun))
	for name := range tasksToRun {
		task, _ := graph.GetTask(name)
		tasks[name] = task

		// Only predecessors that are part of this run count.
		degree := 0
		for _, dep := range task.Predecessors() {
			if tasksToRun[dep] {
				degree++
			}
		}
		inDegree[name] = degree
	}

	// Seed the queue in execution order so dispatch is deterministic.
	var ready []domain.InternedString
	for task := range graph.Walk() {
		if tasksToRun[task.Name] && inDegree[task.Name] == 0 {
			ready = append(ready, task.Name)
		}
	}

	return &schedulerRunState{
		graph:     graph,
		inDegree:  inDegree,
		tasks:     tasks,
		ready:     ready,
		resultsCh: make(chan result, opts.Parallelism),
		ctx:       ctx,
		opts:      opts,
		s:         s,
		allTasks:  allTasks,
	}, nil
}

// plannedTasks filters the graph's execution order down to this run.
func (state *schedulerRunState) plannedTasks() ([]string, map[string][]string) {
	planned := make([]string, 0, len(state.tasks))
	deps := make(map[string][]string, len(state.tasks))
	for task := range state.graph.Walk() {
		if _, ok := state.tasks[task.Name]; !ok {
			continue
		}
		name := task.Name.String()
		planned = append(planned, name)
		deps[name] = domain.Strings(task.Dependencies)
	}
	return planned, deps
}

func (state *schedulerRunState) runExecutionLoop() error {
	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil && state.active == 0 {
			return errors.Join(state.errs, state.ctx.Err())
		}

		// Once cancelled, only in-flight results are awaited.
		done := state.ctx.Done()
		if state.ctx.Err() != nil {
			done = nil
		}
		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-done:
		}
	}

	if state.ctx.Err() != nil {
		state.errs = errors.Join(state.errs, state.ctx.Err())
	}

	return state.errs
}

func (s *Scheduler) resolveTasksToRun(
	graph *domain.Graph,
	targetNames []string,
) (map[domain.InternedString]bool, []domain.InternedString, error) {
	if slices.Contains(targetNames, AllTarget) {
		tasksToRun := make(map[domain.InternedString]bool, graph.TaskCount())
		allTasks := make([]domain.InternedString, 0, graph.TaskCount())
		for task := range graph.Walk() {
			tasksToRun[task.Name] = true
			allTasks = append(allTasks, task.Name)
		}
		return tasksToRun, allTasks, nil
	}

	targets := make([]domain.InternedString, 0, len(targetNames))
	for _, nameStr := range targetNames {
		name := domain.NewInternedString(nameStr)
		if _, ok := graph.GetTask(name); !ok {
			return nil, nil, zerr.With(zerr.Wrap(domain.ErrTaskNotFound, "cannot run build"), "task", nameStr)
		}
		targets = append(targets, name)
	}
	return s.collectDependencies(graph, targets)
}

func (s *Scheduler) collectDependencies(
	graph *domain.Graph,
	targets []domain.InternedString,
) (map[domain.InternedString]bool, []domain.InternedString, error) {
	tasksToRun := make(map[domain.InternedString]bool)
	var allTasks []domain.InternedString

	queue := slices.Clone(targets)
	visited := make(map[domain.InternedString]bool, len(targets))
	for _, t := range targets {
		visited[t] = true
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if !tasksToRun[current] {
			tasksToRun[current] = true
			allTasks = append(allTasks, current)
		}

		task, _ := graph.GetTask(current)
		for _, dep := range task.Dependencies {
			if !visited[dep] {
				visited[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	return tasksToRun, allTasks, nil
}

// isDone reports whether nothing is in flight and nothing more will be dispatched.
// After a failure the remaining ready tasks are abandoned.
func (state *schedulerRunState) isDone() bool {
	return state.active == 0 && (len(state.ready) == 0 || state.failed)
}

func (state *schedulerRunState) schedule() {
	for len(state.ready) > 0 && state.active < state.opts.Parallelism && !state.failed && state.ctx.Err() == nil {
		name := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.s.updateState(name, domain.StateExecuting)

		go state.executeTask(state.tasks[name])
	}
}

func (state *schedulerRunState) executeTask(t *domain.Task) {
	// The span must end before the result is sent, so the renderer sees the
	// completion before Run returns.
	res := func() result {
		ctx, span := state.s.tracer.Start(state.ctx, t.Name.String(), ports.WithTaskKind(t.Kind.String()))
		defer span.End()

		res := state.runTask(ctx, t, span)
		if res.err != nil {
			span.RecordError(res.err)
		}
		span.SetAttribute(ports.AttrTaskState, res.state.String())
		return res
	}()

	state.resultsCh <- res
}

func (state *schedulerRunState) runTask(ctx context.Context, t *domain.Task, span ports.Span) result {
	res := result{task: t.Name, cacheable: !t.AlwaysRun && len(t.Outputs) > 0}

	if res.cacheable {
		upToDate, hash, count, err := state.checkUpToDate(t)
		if errors.Is(err, errNoSource) {
			return state.skipWithoutSource(t, res)
		}
		if err != nil {
			res.err, res.state = err, domain.StateFailed
			return res
		}
		res.inputHash, res.inputCount = hash, count
		if upToDate {
			res.state = domain.StateSkipped
			return res
		}
	}

	if err := state.validateAndCleanOutputs(t); err != nil {
		res.err, res.state = err, domain.StateFailed
		return res
	}

	if t.Action != nil {
		if err := t.Action.Run(ctx, span); err != nil {
			res.err, res.state = err, domain.StateFailed
			return res
		}
	}
	res.state = domain.StateSucceeded
	return res
}

// errNoSource marks a SkipWhenNoInputs task whose inputs resolved to nothing.
var errNoSource = zerr.New("task has no source")

// skipWithoutSource removes stale outputs and reports the task as skipped without recording build info.
func (state *schedulerRunState) skipWithoutSource(t *domain.Task, res result) result {
	res.cacheable = false
	if err := state.validateAndCleanOutputs(t); err != nil {
		res.err, res.state = err, domain.StateFailed
		return res
	}
	res.state = domain.StateSkipped
	return res
}

// checkUpToDate hashes the task's inputs and compares them with the stored build info.
// In force mode the hash is still computed so the new build info can be persisted.
func (state *schedulerRunState) checkUpToDate(t *domain.Task) (upToDate bool, hash string, inputCount int, err error) {
	root := state.graph.Root()
	resolved, err := state.s.resolver.ResolveInputs(domain.Strings(t.Inputs), t.Excludes, root)
	if t.SkipWhenNoInputs && (errors.Is(err, domain.ErrInputNotFound) || err == nil && len(resolved) == 0) {
		return false, "", 0, errNoSource
	}
	if err != nil {
		return false, "", 0, zerr.Wrap(err, domain.ErrInputResolutionFailed.Error())
	}

	hash, err = state.s.hasher.ComputeInputHash(t, t.Environment, resolved)
	if err != nil {
		return false, "", 0, zerr.Wrap(err, domain.ErrInputHashComputationFailed.Error())
	}
	if state.opts.Force {
		return false, hash, len(resolved), nil
	}

	info, err := state.s.store.Get(root, t.Name.String())
	if err != nil {
		return false, "", 0, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	if info == nil || info.InputHash != hash {
		return false, hash, len(resolved), nil
	}

	outputHash, err := state.s.hasher.ComputeOutputHash(state.outputPaths(t), root)
	if err != nil {
		// A missing output is a miss, not a failure.
		return false, hash, len(resolved), nil
	}
	return info.OutputHash == outputHash, hash, len(resolved), nil
}

func (state *schedulerRunState) outputPaths(t *domain.Task) []string {
	root := state.graph.Root()
	outputs := make([]string, len(t.Outputs))
	for i, out := range t.Outputs {
		outputs[i] = out.String()
		if !filepath.IsAbs(outputs[i]) {
			outputs[i] = filepath.Join(root, outputs[i])
		}
	}
	return outputs
}

func (state *schedulerRunState) validateAndCleanOutputs(t *domain.Task) error {
	rootAbs, err := filepath.Abs(state.graph.Root())
	if err != nil {
		return zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}

	for _, outPath := range state.outputPaths(t) {
		outAbs, err := filepath.Abs(outPath)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrFailedToGetOutputPath.Error()), "file", outPath)
		}

		rel, err := filepath.Rel(rootAbs, outAbs)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrFailedToResolveRelativePath.Error()), "file", outPath)
		}
		if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return zerr.With(zerr.Wrap(domain.ErrOutputPathOutsideRoot, "cannot clean output"), "file", outPath)
		}

		// Remove exactly the validated absolute path.
		if err := os.RemoveAll(outAbs); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrFailedToCleanOutput.Error()), "file", outPath)
		}
	}

	return nil
}

func (state *schedulerRunState) handleResult(res result) {
	state.active--
	state.s.updateState(res.task, res.state)

	if res.err != nil {
		state.failed = true
		wrapped := zerr.With(zerr.Wrap(errors.Join(domain.ErrTaskExecutionFailed, res.err), "task failed"), "task", res.task.String())
		state.errs = errors.Join(state.errs, wrapped)
		return
	}

	if res.state == domain.StateSucceeded && res.cacheable {
		state.persistBuildInfo(res)
	}

	for _, dep := range state.graph.Dependents(res.task) {
		if _, ok := state.tasks[dep]; ok {
			state.inDegree[dep]--
			if state.inDegree[dep] == 0 {
				state.ready = append(state.ready, dep)
			}
		}
	}
}

// persistBuildInfo records a successful execution. Failures only cost a cache miss next time.
func (state *schedulerRunState) persistBuildInfo(res result) {
	t := state.tasks[res.task]
	root := state.graph.Root()

	outputHash, err := state.s.hasher.ComputeOutputHash(state.outputPaths(t), root)
	if err != nil {
		err = zerr.Wrap(err, domain.ErrOutputHashComputationFailed.Error())
		state.s.logger.Warn("not recording build info for " + res.task.String() + ": " + err.Error())
		return
	}

	err = state.s.store.Put(root, domain.BuildInfo{
		TaskName:   res.task.String(),
		InputHash:  res.inputHash,
		OutputHash: outputHash,
		InputCount: res.inputCount,
		RunID:      state.opts.RunID,
		Timestamp:  time.Now(),
	})
	if err != nil {
		state.s.logger.Warn("not recording build info for " + res.task.String() + ": " + err.Error())
	}
}
