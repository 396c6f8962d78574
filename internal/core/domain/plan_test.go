package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/droidnet/internal/core/domain"
)

func TestPlan_RegisterAndLookup(t *testing.T) {
	p := domain.NewPlan(&domain.Config{Root: "/ws"})
	debug := domain.BuildType{Name: "debug"}

	compile := &domain.Task{Name: domain.NewInternedString("compileDebugDotNet"), Kind: domain.KindCompileRuntimeProject, BuildType: debug}
	clean := &domain.Task{Name: domain.NewInternedString("cleanDotNet"), Kind: domain.KindCleanStaging}
	javac := &domain.Task{Name: domain.NewInternedString("compileDebugJavaWithJavac"), Kind: domain.KindHost}
	for _, task := range []*domain.Task{compile, clean, javac} {
		require.NoError(t, p.Register(task))
	}

	got, ok := p.Task("debug", domain.KindCompileRuntimeProject)
	require.True(t, ok)
	assert.Same(t, compile, got)

	got, ok = p.Task("", domain.KindCleanStaging)
	require.True(t, ok)
	assert.Same(t, clean, got)

	_, ok = p.Task("release", domain.KindCompileRuntimeProject)
	assert.False(t, ok)

	got, ok = p.HostTask("compileDebugJavaWithJavac")
	require.True(t, ok)
	assert.Same(t, javac, got)

	_, ok = p.HostTask("compileDebugDotNet")
	assert.False(t, ok, "staging tasks are not host tasks")

	assert.Equal(t, "/ws", p.Graph.Root())
	assert.Equal(t, 3, p.Graph.TaskCount())
}

func TestPlan_RegisterDuplicate(t *testing.T) {
	p := domain.NewPlan(&domain.Config{})
	task := &domain.Task{Name: domain.NewInternedString("clean"), Kind: domain.KindHost}
	require.NoError(t, p.Register(task))
	assert.ErrorIs(t, p.Register(task), domain.ErrTaskAlreadyExists)
}

func TestPlan_MustTaskPanics(t *testing.T) {
	p := domain.NewPlan(&domain.Config{})
	assert.Panics(t, func() {
		p.MustTask("debug", domain.KindUnpackPackage)
	})
}

func TestPlan_AddEdge(t *testing.T) {
	p := domain.NewPlan(&domain.Config{})
	copySrc := &domain.Task{Name: domain.NewInternedString("copyJavaSrcDebugDotNet")}
	unzip := &domain.Task{Name: domain.NewInternedString("unzipApkDebug")}
	javac := &domain.Task{Name: domain.NewInternedString("compileDebugJavaWithJavac")}

	p.AddEdge(javac, copySrc, unzip)
	p.AddEdge(javac, copySrc)

	assert.Equal(t, []string{"copyJavaSrcDebugDotNet", "unzipApkDebug"}, domain.Strings(javac.Dependencies))
	assert.False(t, p.Linked())
	p.MarkLinked()
	assert.True(t, p.Linked())
}

func TestTaskState(t *testing.T) {
	for _, s := range []domain.TaskState{
		domain.StateNotRun, domain.StateSkipped, domain.StateExecuting, domain.StateSucceeded, domain.StateFailed,
	} {
		parsed, ok := domain.ParseTaskState(s.String())
		require.True(t, ok)
		assert.Equal(t, s, parsed)
	}
	assert.True(t, domain.StateSkipped.Done())
	assert.True(t, domain.StateSucceeded.Done())
	assert.False(t, domain.StateFailed.Done())
	assert.False(t, domain.StateExecuting.Done())

	_, ok := domain.ParseTaskState("cached")
	assert.False(t, ok)
}

func TestIsConfigurationError(t *testing.T) {
	assert.True(t, domain.IsConfigurationError(domain.ErrManifestMissing))
	assert.True(t, domain.IsConfigurationError(errors.Join(errors.New("io"), domain.ErrAPILevelNotFound)))
	assert.False(t, domain.IsConfigurationError(domain.ErrExternalProcessFailed))
	assert.False(t, domain.IsConfigurationError(nil))
}
