package scheduler_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/core/ports"
	"go.trai.ch/droidnet/internal/core/ports/mocks"
	"go.trai.ch/droidnet/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

type schedulerTestMocks struct {
	store    *mocks.MockBuildInfoStore
	hasher   *mocks.MockHasher
	resolver *mocks.MockInputResolver
	tracer   *mocks.MockTracer
	logger   *mocks.MockLogger
	span     *mocks.MockSpan
}

// setupSchedulerTest creates a scheduler and common mocks.
func setupSchedulerTest(t *testing.T) (*scheduler.Scheduler, schedulerTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := schedulerTestMocks{
		store:    mocks.NewMockBuildInfoStore(ctrl),
		hasher:   mocks.NewMockHasher(ctrl),
		resolver: mocks.NewMockInputResolver(ctrl),
		tracer:   mocks.NewMockTracer(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		span:     mocks.NewMockSpan(ctrl),
	}

	m.span.EXPECT().End().AnyTimes()
	m.span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	m.span.EXPECT().Write(gomock.Any()).DoAndReturn(func(p []byte) (int, error) { return len(p), nil }).AnyTimes()

	m.tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, m.span
		},
	).AnyTimes()
	m.tracer.EXPECT().EmitPlan(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	s := scheduler.NewScheduler(m.store, m.hasher, m.resolver, m.tracer, m.logger)
	return s, m
}

// recorder collects the order in which task actions run.
type recorder struct {
	mu  sync.Mutex
	ran []string
}

func (r *recorder) action(name string) domain.Action {
	return domain.ActionFunc(func(context.Context, io.Writer) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.ran = append(r.ran, name)
		return nil
	})
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.ran)
}

func (r *recorder) index(name string) int {
	return slices.Index(r.names(), name)
}

// createGraph builds a graph from "task" -> ["dep1", "dep2"] with recording actions.
func createGraph(t *testing.T, root string, rec *recorder, deps map[string][]string) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	g.SetRoot(root)

	names := make(map[string]bool)
	for name, myDeps := range deps {
		names[name] = true
		for _, d := range myDeps {
			names[d] = true
		}
	}
	for name := range names {
		require.NoError(t, g.AddTask(&domain.Task{
			Name:         domain.NewInternedString(name),
			Dependencies: domain.NewInternedStrings(deps[name]),
			Action:       rec.action(name),
		}))
	}
	require.NoError(t, g.Validate())
	return g
}

func cacheableTask(root, name string, action domain.Action) *domain.Task {
	return &domain.Task{
		Name:    domain.NewInternedString(name),
		Inputs:  domain.NewInternedStrings([]string{"src"}),
		Outputs: domain.NewInternedStrings([]string{filepath.Join(root, "out", name)}),
		Action:  action,
	}
}

func singleTaskGraph(t *testing.T, root string, task *domain.Task) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	g.SetRoot(root)
	require.NoError(t, g.AddTask(task))
	return g
}

func TestScheduler_DiamondDependency(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		// A depends on B and C, which both depend on D.
		rec := &recorder{}
		g := createGraph(t, "/tmp/root", rec, map[string][]string{
			"A": {"B", "C"},
			"B": {"D"},
			"C": {"D"},
		})
		s, m := setupSchedulerTest(t)
		m.span.EXPECT().SetAttribute(ports.AttrTaskState, "succeeded").Times(4)

		require.NoError(t, s.Run(t.Context(), g, []string{"all"}, scheduler.Options{Parallelism: 4}))

		require.Len(t, rec.names(), 4)
		assert.Equal(t, 0, rec.index("D"))
		assert.Equal(t, 3, rec.index("A"))
		for _, name := range []string{"A", "B", "C", "D"} {
			assert.Equal(t, domain.StateSucceeded, s.State(name), name)
		}
	})
}

func TestScheduler_TargetSubset(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		g := createGraph(t, "/tmp/root", rec, map[string][]string{
			"A": {"B"},
			"B": {"C"},
			"X": {"C"},
		})
		s, m := setupSchedulerTest(t)
		m.span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()

		require.NoError(t, s.Run(t.Context(), g, []string{"B"}, scheduler.Options{Parallelism: 2}))
		assert.Equal(t, []string{"C", "B"}, rec.names())
	})
}

// orderedGraph has cleanDotNet and compileDebugDotNet with an ordering-only edge between them.
// The clean action takes a while so that without the edge compile would finish first.
func orderedGraph(t *testing.T, rec *recorder) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	g.SetRoot("/tmp/root")

	slowClean := rec.action("cleanDotNet")
	require.NoError(t, g.AddTask(&domain.Task{
		Name: domain.NewInternedString("cleanDotNet"),
		Action: domain.ActionFunc(func(ctx context.Context, out io.Writer) error {
			time.Sleep(10 * time.Second)
			return slowClean.Run(ctx, out)
		}),
	}))
	compile := &domain.Task{
		Name:   domain.NewInternedString("compileDebugDotNet"),
		Action: rec.action("compileDebugDotNet"),
	}
	compile.RunsAfter(domain.NewInternedString("cleanDotNet"))
	require.NoError(t, g.AddTask(compile))
	require.NoError(t, g.Validate())
	return g
}

func TestScheduler_MustRunAfterOrdersTasksInTheSameRun(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		g := orderedGraph(t, rec)
		s, m := setupSchedulerTest(t)
		m.span.EXPECT().SetAttribute(ports.AttrTaskState, "succeeded").Times(2)

		require.NoError(t, s.Run(t.Context(), g, []string{"compileDebugDotNet", "cleanDotNet"}, scheduler.Options{Parallelism: 2}))
		assert.Equal(t, []string{"cleanDotNet", "compileDebugDotNet"}, rec.names())
	})
}

func TestScheduler_MustRunAfterDoesNotPullTasksIntoRun(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		g := orderedGraph(t, rec)
		s, m := setupSchedulerTest(t)
		m.span.EXPECT().SetAttribute(ports.AttrTaskState, "succeeded")

		require.NoError(t, s.Run(t.Context(), g, []string{"compileDebugDotNet"}, scheduler.Options{Parallelism: 2}))
		assert.Equal(t, []string{"compileDebugDotNet"}, rec.names())
		assert.Equal(t, domain.StateNotRun, s.State("cleanDotNet"))
	})
}

func TestScheduler_TargetErrors(t *testing.T) {
	rec := &recorder{}
	g := createGraph(t, "/tmp/root", rec, map[string][]string{"A": {}})
	s, _ := setupSchedulerTest(t)

	err := s.Run(t.Context(), g, []string{"missing"}, scheduler.Options{})
	require.ErrorIs(t, err, domain.ErrTaskNotFound)

	err = s.Run(t.Context(), g, nil, scheduler.Options{})
	require.ErrorIs(t, err, domain.ErrNoTargetsSpecified)
	assert.Empty(t, rec.names())
}

func TestScheduler_SkipsUpToDateTask(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		root := t.TempDir()
		rec := &recorder{}
		task := cacheableTask(root, "compile", rec.action("compile"))
		g := singleTaskGraph(t, root, task)
		s, m := setupSchedulerTest(t)

		m.resolver.EXPECT().ResolveInputs([]string{"src"}, gomock.Nil(), root).Return([]string{"/a.cs", "/b.cs"}, nil)
		m.hasher.EXPECT().ComputeInputHash(task, gomock.Nil(), []string{"/a.cs", "/b.cs"}).Return("in", nil)
		m.store.EXPECT().Get(root, "compile").Return(&domain.BuildInfo{InputHash: "in", OutputHash: "out"}, nil)
		m.hasher.EXPECT().ComputeOutputHash([]string{filepath.Join(root, "out", "compile")}, root).Return("out", nil)
		m.span.EXPECT().SetAttribute(ports.AttrTaskState, "up-to-date")

		require.NoError(t, s.Run(t.Context(), g, []string{"compile"}, scheduler.Options{}))
		assert.Empty(t, rec.names())
		assert.Equal(t, domain.StateSkipped, s.State("compile"))
	})
}

func TestScheduler_RunsOutOfDateTask(t *testing.T) {
	tests := []struct {
		name       string
		stored     *domain.BuildInfo
		outputHash string
		outputErr  error
	}{
		{name: "never built", stored: nil},
		{name: "inputs changed", stored: &domain.BuildInfo{InputHash: "old", OutputHash: "out"}},
		{name: "outputs changed", stored: &domain.BuildInfo{InputHash: "in", OutputHash: "out"}, outputHash: "tampered"},
		{name: "outputs missing", stored: &domain.BuildInfo{InputHash: "in", OutputHash: "out"}, outputErr: domain.ErrPathStatFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				root := t.TempDir()
				rec := &recorder{}
				task := cacheableTask(root, "compile", rec.action("compile"))
				g := singleTaskGraph(t, root, task)
				s, m := setupSchedulerTest(t)
				outputs := []string{filepath.Join(root, "out", "compile")}

				m.resolver.EXPECT().ResolveInputs(gomock.Any(), gomock.Any(), root).Return([]string{"/a.cs"}, nil)
				m.hasher.EXPECT().ComputeInputHash(task, gomock.Any(), gomock.Any()).Return("in", nil)
				m.store.EXPECT().Get(root, "compile").Return(tt.stored, nil)
				if tt.stored != nil && tt.stored.InputHash == "in" {
					m.hasher.EXPECT().ComputeOutputHash(outputs, root).Return(tt.outputHash, tt.outputErr)
				}
				m.span.EXPECT().SetAttribute(ports.AttrTaskState, "succeeded")
				m.hasher.EXPECT().ComputeOutputHash(outputs, root).Return("fresh", nil)
				m.store.EXPECT().Put(root, gomock.Any()).DoAndReturn(func(_ string, info domain.BuildInfo) error {
					assert.Equal(t, "compile", info.TaskName)
					assert.Equal(t, "in", info.InputHash)
					assert.Equal(t, "fresh", info.OutputHash)
					assert.Equal(t, 1, info.InputCount)
					assert.Equal(t, "run-1", info.RunID)
					assert.False(t, info.Timestamp.IsZero())
					return nil
				})

				require.NoError(t, s.Run(t.Context(), g, []string{"compile"}, scheduler.Options{RunID: "run-1"}))
				assert.Equal(t, []string{"compile"}, rec.names())
			})
		})
	}
}

func TestScheduler_ForceBypassesCheck(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		root := t.TempDir()
		rec := &recorder{}
		task := cacheableTask(root, "compile", rec.action("compile"))
		g := singleTaskGraph(t, root, task)
		s, m := setupSchedulerTest(t)

		m.resolver.EXPECT().ResolveInputs(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		m.hasher.EXPECT().ComputeInputHash(gomock.Any(), gomock.Any(), gomock.Any()).Return("in", nil)
		m.store.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
		m.hasher.EXPECT().ComputeOutputHash(gomock.Any(), gomock.Any()).Return("out", nil)
		m.store.EXPECT().Put(root, gomock.Any()).Return(nil)
		m.span.EXPECT().SetAttribute(ports.AttrTaskState, "succeeded")

		require.NoError(t, s.Run(t.Context(), g, []string{"all"}, scheduler.Options{Force: true}))
		assert.Equal(t, []string{"compile"}, rec.names())
	})
}

func TestScheduler_NeverUpToDate(t *testing.T) {
	tests := []struct {
		name string
		task func(root string, action domain.Action) *domain.Task
	}{
		{
			name: "always run",
			task: func(root string, action domain.Action) *domain.Task {
				task := cacheableTask(root, "clean", action)
				task.AlwaysRun = true
				return task
			},
		},
		{
			name: "no outputs",
			task: func(_ string, action domain.Action) *domain.Task {
				return &domain.Task{
					Name:   domain.NewInternedString("clean"),
					Inputs: domain.NewInternedStrings([]string{"src"}),
					Action: action,
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				root := t.TempDir()
				rec := &recorder{}
				g := singleTaskGraph(t, root, tt.task(root, rec.action("clean")))
				s, m := setupSchedulerTest(t)
				m.span.EXPECT().SetAttribute(ports.AttrTaskState, "succeeded").Times(2)

				// Neither resolver, hasher nor store are consulted.
				for range 2 {
					require.NoError(t, s.Run(t.Context(), g, []string{"clean"}, scheduler.Options{}))
				}
				assert.Equal(t, []string{"clean", "clean"}, rec.names())
			})
		})
	}
}

func TestScheduler_CleansOutputsBeforeExecution(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		root := t.TempDir()
		stale := filepath.Join(root, "out", "compile", "stale.dll")
		require.NoError(t, os.MkdirAll(filepath.Dir(stale), domain.DirPerm))
		require.NoError(t, os.WriteFile(stale, []byte("old"), domain.FilePerm))

		task := cacheableTask(root, "compile", domain.ActionFunc(func(context.Context, io.Writer) error {
			assert.NoFileExists(t, stale)
			return nil
		}))
		g := singleTaskGraph(t, root, task)
		s, m := setupSchedulerTest(t)
		m.span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
		m.resolver.EXPECT().ResolveInputs(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		m.hasher.EXPECT().ComputeInputHash(gomock.Any(), gomock.Any(), gomock.Any()).Return("in", nil)
		m.store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
		m.hasher.EXPECT().ComputeOutputHash(gomock.Any(), gomock.Any()).Return("out", nil)
		m.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)

		require.NoError(t, s.Run(t.Context(), g, []string{"compile"}, scheduler.Options{}))
	})
}

func TestScheduler_RelativeOutputsResolveAgainstRoot(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		root := t.TempDir()
		task := &domain.Task{
			Name:    domain.NewInternedString("assembleDebug"),
			Inputs:  domain.NewInternedStrings([]string{"android"}),
			Outputs: domain.NewInternedStrings([]string{"android/app/build/outputs"}),
		}
		g := singleTaskGraph(t, root, task)
		s, m := setupSchedulerTest(t)
		m.span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
		m.resolver.EXPECT().ResolveInputs(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		m.hasher.EXPECT().ComputeInputHash(gomock.Any(), gomock.Any(), gomock.Any()).Return("in", nil)
		m.store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
		m.hasher.EXPECT().ComputeOutputHash([]string{filepath.Join(root, "android", "app", "build", "outputs")}, root).Return("out", nil)
		m.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)

		require.NoError(t, s.Run(t.Context(), g, []string{"all"}, scheduler.Options{}))
	})
}

func TestScheduler_OutputOutsideRoot(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		base := t.TempDir()
		root := filepath.Join(base, "workspace")
		outside := filepath.Join(base, "elsewhere")
		require.NoError(t, os.MkdirAll(outside, domain.DirPerm))

		rec := &recorder{}
		task := &domain.Task{
			Name:      domain.NewInternedString("escape"),
			Outputs:   domain.NewInternedStrings([]string{outside}),
			AlwaysRun: true,
			Action:    rec.action("escape"),
		}
		g := singleTaskGraph(t, root, task)
		s, m := setupSchedulerTest(t)
		m.span.EXPECT().SetAttribute(ports.AttrTaskState, "failed")

		err := s.Run(t.Context(), g, []string{"all"}, scheduler.Options{})
		require.ErrorIs(t, err, domain.ErrOutputPathOutsideRoot)
		require.ErrorIs(t, err, domain.ErrTaskExecutionFailed)
		assert.DirExists(t, outside)
		assert.Empty(t, rec.names())
	})
}

func TestScheduler_FailureStopsScheduling(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		// A depends on B; C is independent but queued after B.
		rec := &recorder{}
		g := createGraph(t, "/tmp/root", rec, map[string][]string{
			"A": {"B"},
			"C": {},
		})
		boom := errors.New("boom")
		b, _ := g.GetTask(domain.NewInternedString("B"))
		b.Action = domain.ActionFunc(func(context.Context, io.Writer) error { return boom })

		s, m := setupSchedulerTest(t)
		m.span.EXPECT().SetAttribute(ports.AttrTaskState, "failed")

		err := s.Run(t.Context(), g, []string{"all"}, scheduler.Options{Parallelism: 1})
		require.ErrorIs(t, err, boom)
		require.ErrorIs(t, err, domain.ErrTaskExecutionFailed)
		assert.Contains(t, err.Error(), "task failed")

		assert.Empty(t, rec.names())
		assert.Equal(t, domain.StateFailed, s.State("B"))
		assert.Equal(t, domain.StateNotRun, s.State("A"))
		assert.Equal(t, domain.StateNotRun, s.State("C"))
	})
}

func TestScheduler_FailureLetsInFlightTasksFinish(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		g := createGraph(t, "/tmp/root", rec, map[string][]string{
			"A": {},
			"B": {},
		})
		release := make(chan struct{})
		a, _ := g.GetTask(domain.NewInternedString("A"))
		a.Action = domain.ActionFunc(func(context.Context, io.Writer) error {
			<-release
			return errors.New("boom")
		})
		b, _ := g.GetTask(domain.NewInternedString("B"))
		b.Action = domain.ActionFunc(func(context.Context, io.Writer) error {
			close(release)
			return nil
		})

		s, m := setupSchedulerTest(t)
		m.span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()

		err := s.Run(t.Context(), g, []string{"all"}, scheduler.Options{Parallelism: 2})
		require.ErrorIs(t, err, domain.ErrTaskExecutionFailed)
		assert.Equal(t, domain.StateFailed, s.State("A"))
		assert.Equal(t, domain.StateSucceeded, s.State("B"))
	})
}

func TestScheduler_StoreReadFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		root := t.TempDir()
		rec := &recorder{}
		g := singleTaskGraph(t, root, cacheableTask(root, "compile", rec.action("compile")))
		s, m := setupSchedulerTest(t)
		m.span.EXPECT().SetAttribute(ports.AttrTaskState, "failed")
		m.resolver.EXPECT().ResolveInputs(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		m.hasher.EXPECT().ComputeInputHash(gomock.Any(), gomock.Any(), gomock.Any()).Return("in", nil)
		m.store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, domain.ErrStoreUnmarshalFailed)

		err := s.Run(t.Context(), g, []string{"all"}, scheduler.Options{})
		require.ErrorIs(t, err, domain.ErrStoreUnmarshalFailed)
		assert.Empty(t, rec.names())
	})
}

func TestScheduler_InputResolutionFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		root := t.TempDir()
		rec := &recorder{}
		g := singleTaskGraph(t, root, cacheableTask(root, "copy", rec.action("copy")))
		s, m := setupSchedulerTest(t)
		m.span.EXPECT().SetAttribute(ports.AttrTaskState, "failed")
		m.resolver.EXPECT().ResolveInputs(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, domain.ErrInputNotFound)

		err := s.Run(t.Context(), g, []string{"all"}, scheduler.Options{})
		require.ErrorIs(t, err, domain.ErrInputNotFound)
		assert.Contains(t, err.Error(), domain.ErrInputResolutionFailed.Error())
	})
}

func TestScheduler_SkipsTaskWithoutSource(t *testing.T) {
	tests := []struct {
		name     string
		resolved []string
		err      error
	}{
		{name: "inputs missing", err: domain.ErrInputNotFound},
		{name: "inputs empty", resolved: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				root := t.TempDir()
				rec := &recorder{}
				task := cacheableTask(root, "copy", rec.action("copy"))
				task.SkipWhenNoInputs = true
				g := singleTaskGraph(t, root, task)
				s, m := setupSchedulerTest(t)

				stale := filepath.Join(root, "out", "copy", "Stale.java")
				require.NoError(t, os.MkdirAll(filepath.Dir(stale), domain.DirPerm))
				require.NoError(t, os.WriteFile(stale, []byte("class Stale {}"), domain.FilePerm))

				m.resolver.EXPECT().ResolveInputs(gomock.Any(), gomock.Any(), root).Return(tt.resolved, tt.err)
				m.span.EXPECT().SetAttribute(ports.AttrTaskState, "up-to-date")

				require.NoError(t, s.Run(t.Context(), g, []string{"copy"}, scheduler.Options{}))
				assert.Empty(t, rec.names())
				assert.Equal(t, domain.StateSkipped, s.State("copy"))
				assert.NoFileExists(t, stale)
			})
		})
	}
}

func TestScheduler_PersistFailureIsNotFatal(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		root := t.TempDir()
		rec := &recorder{}
		g := singleTaskGraph(t, root, cacheableTask(root, "compile", rec.action("compile")))
		s, m := setupSchedulerTest(t)
		m.span.EXPECT().SetAttribute(ports.AttrTaskState, "succeeded")
		m.resolver.EXPECT().ResolveInputs(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		m.hasher.EXPECT().ComputeInputHash(gomock.Any(), gomock.Any(), gomock.Any()).Return("in", nil)
		m.store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
		m.hasher.EXPECT().ComputeOutputHash(gomock.Any(), gomock.Any()).Return("out", nil)
		m.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(domain.ErrStoreWriteFailed)
		m.logger.EXPECT().Warn(gomock.Any())

		require.NoError(t, s.Run(t.Context(), g, []string{"all"}, scheduler.Options{}))
		assert.Equal(t, []string{"compile"}, rec.names())
	})
}

func TestScheduler_OutputHashFailureSkipsBuildInfo(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		root := t.TempDir()
		rec := &recorder{}
		g := singleTaskGraph(t, root, cacheableTask(root, "compile", rec.action("compile")))
		s, m := setupSchedulerTest(t)
		m.span.EXPECT().SetAttribute(ports.AttrTaskState, "succeeded")
		m.resolver.EXPECT().ResolveInputs(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		m.hasher.EXPECT().ComputeInputHash(gomock.Any(), gomock.Any(), gomock.Any()).Return("in", nil)
		m.store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
		m.hasher.EXPECT().ComputeOutputHash(gomock.Any(), gomock.Any()).Return("", domain.ErrPathStatFailed)
		m.store.EXPECT().Put(gomock.Any(), gomock.Any()).Times(0)
		m.logger.EXPECT().Warn(gomock.Any()).Do(func(msg string) {
			assert.Contains(t, msg, "not recording build info for compile")
			assert.Contains(t, msg, domain.ErrOutputHashComputationFailed.Error())
			assert.Contains(t, msg, domain.ErrPathStatFailed.Error())
		})

		require.NoError(t, s.Run(t.Context(), g, []string{"all"}, scheduler.Options{}))
		assert.Equal(t, []string{"compile"}, rec.names())
	})
}

func TestScheduler_ActionWritesToSpan(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		g := domain.NewGraph()
		g.SetRoot("/tmp/root")
		require.NoError(t, g.AddTask(&domain.Task{
			Name: domain.NewInternedString("hello"),
			Action: domain.ActionFunc(func(_ context.Context, out io.Writer) error {
				_, err := io.WriteString(out, "hello\n")
				return err
			}),
		}))

		ctrl := gomock.NewController(t)
		span := mocks.NewMockSpan(ctrl)
		tracer := mocks.NewMockTracer(ctrl)
		gomock.InOrder(
			tracer.EXPECT().EmitPlan(gomock.Any(), []string{"hello"}, map[string][]string{"hello": {}}, []string{"hello"}),
			tracer.EXPECT().Start(gomock.Any(), "hello", gomock.Any()).DoAndReturn(
				func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
					return ctx, span
				}),
			span.EXPECT().Write([]byte("hello\n")).Return(6, nil),
			span.EXPECT().SetAttribute(ports.AttrTaskState, "succeeded"),
			span.EXPECT().End(),
		)

		s := scheduler.NewScheduler(
			mocks.NewMockBuildInfoStore(ctrl),
			mocks.NewMockHasher(ctrl),
			mocks.NewMockInputResolver(ctrl),
			tracer,
			mocks.NewMockLogger(ctrl),
		)
		require.NoError(t, s.Run(t.Context(), g, []string{"hello"}, scheduler.Options{}))
	})
}

func TestScheduler_Cancellation(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		g := domain.NewGraph()
		g.SetRoot("/tmp/root")
		require.NoError(t, g.AddTask(&domain.Task{
			Name: domain.NewInternedString("msbuild"),
			Action: domain.ActionFunc(func(ctx context.Context, _ io.Writer) error {
				<-ctx.Done()
				return ctx.Err()
			}),
		}))
		s, m := setupSchedulerTest(t)
		m.span.EXPECT().SetAttribute(ports.AttrTaskState, "failed")

		ctx, cancel := context.WithCancel(t.Context())
		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Run(ctx, g, []string{"all"}, scheduler.Options{})
		}()

		synctest.Wait()
		assert.Equal(t, domain.StateExecuting, s.State("msbuild"))

		cancel()
		err := <-errCh
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, domain.StateFailed, s.State("msbuild"))
	})
}

func TestScheduler_ZeroTaskGraph(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		g := domain.NewGraph()
		s, _ := setupSchedulerTest(t)
		require.NoError(t, s.Run(t.Context(), g, []string{"all"}, scheduler.Options{Parallelism: 1}))
	})
}
