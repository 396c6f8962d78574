package app_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/droidnet/internal/app"
	"go.trai.ch/droidnet/internal/core/domain"
)

const singleBuildTypeYAML = `projectFile: dotnet/Library/Library.csproj
solutionFile: dotnet/Library.sln
toolchain:
  monoFramework: toolchain/mono
  xamarinAndroid: toolchain/xamarin
host:
  dir: android/app
  compileSdk: 30
  tasks:
    clean:
      cmd: [./gradlew, clean]
      workingDir: android
    mergeDebugGeneratedProguardFiles:
      cmd: [./gradlew, mergeDebugGeneratedProguardFiles]
      workingDir: android
    compileDebugJavaWithJavac:
      cmd: [./gradlew, compileDebugJavaWithJavac]
      workingDir: android
buildTypes:
  debug: {}
`

func TestApp_Plan_Text(t *testing.T) {
	h := newHarnessWithConfig(t, nil, singleBuildTypeYAML)

	view, err := h.app.Plan(app.PlanOptions{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, app.WritePlanText(&buf, view))

	out := bytes.ReplaceAll(buf.Bytes(), []byte(view.Root), []byte("$ROOT"))
	g := goldie.New(t)
	g.Assert(t, "plan_text", out)
}

func TestApp_Plan_JSON(t *testing.T) {
	h := newHarness(t, nil)

	view, err := h.app.Plan(app.PlanOptions{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, app.WritePlanJSON(&buf, view))

	var decoded app.PlanView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, domain.DefaultInputExcludes, decoded.InputExcludes)
	require.Len(t, decoded.Tasks, 16)

	byName := make(map[string]app.TaskView, len(decoded.Tasks))
	for _, task := range decoded.Tasks {
		byName[task.Name] = task
	}
	compile := byName["compileReleaseDotNet"]
	assert.Equal(t, "compile-runtime-project", compile.Kind)
	assert.Equal(t, "release", compile.BuildType)
	assert.Equal(t, []string{"dotnet"}, compile.Inputs)
	assert.Equal(t, []string{"dotnet/Library/bin/Release", "dotnet/Library/obj/Release"}, compile.Outputs)
	assert.Equal(t, []string{"copyJavaSrcReleaseDotNet", "unzipApkRelease"}, byName["compileReleaseJavaWithJavac"].DependsOn)
	assert.True(t, byName["cleanDotNet"].AlwaysRun)

	assert.Equal(t, "v11.0", decoded.HostWiring.RuntimeVersion)
	assert.Equal(t, "android/app/build/intermediates/dot_net/debug/src", decoded.HostWiring.BuildTypes["debug"].JavaSrcDir)
}

func TestApp_Plan_DoesNotExecute(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.app.Plan(app.PlanOptions{})
	require.NoError(t, err)

	assert.Empty(t, h.toolchain.calls)
	assert.NoFileExists(t, h.path(".droidnet/host-wiring.json"))
}
