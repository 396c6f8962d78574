package domain

import (
	"path/filepath"
	"strings"
)

// DefaultInputExcludes keep the compiler's own output and editor or VCS churn from
// invalidating the compile task. Directories named differently escape the rule.
var DefaultInputExcludes = []string{"**/bin/**", "**/obj/**", "**/.*/**", "**/.*"}

// Config is the loaded workspace configuration. All paths are absolute.
type Config struct {
	// Root is the workspace root: the directory containing droidnet.yaml.
	Root         string
	ProjectFile  string
	SolutionFile string

	// LogLevel is the level orchestrator diagnostics are emitted at.
	LogLevel LogLevel
	// MSBuildLogLevel is translated into msbuild's verbosity.
	MSBuildLogLevel LogLevel

	InputExcludes []string
	// BuildTypes are sorted by name.
	BuildTypes []BuildType
	Toolchain  Toolchain
	Host       HostConfig
}

// ProjectDir is the runtime project's directory, the root of the DotNet layout.
func (c *Config) ProjectDir() string {
	return filepath.Dir(c.ProjectFile)
}

// SolutionDir is the root of the compile task's input tree.
func (c *Config) SolutionDir() string {
	return filepath.Dir(c.SolutionFile)
}

// StagingRoots returns the base directories of both layout strategies.
func (c *Config) StagingRoots() StagingRoots {
	return StagingRoots{DotNetDir: c.ProjectDir(), HostDir: c.Host.Dir}
}

// HostConfig describes the host application build.
type HostConfig struct {
	Dir string
	// CompileSdk selects the runtime profile for the api jars. Zero skips the lookup.
	CompileSdk int
	Lifecycle  HostLifecycle
	// Tasks are the host tasks declared in configuration, in name order.
	Tasks []*Task
}

// BuildTypePlaceholderTitle is replaced with the capitalized build type in host task names.
const BuildTypePlaceholderTitle = "{BuildType}"

// HostLifecycle names the host tasks the staging tasks are linked to.
type HostLifecycle struct {
	Clean            string
	MergeShrinkRules string
	CompileSources   []string
}

// DefaultHostLifecycle matches the Android Gradle plugin's task names.
func DefaultHostLifecycle() HostLifecycle {
	return HostLifecycle{
		Clean:            "clean",
		MergeShrinkRules: "merge{BuildType}GeneratedProguardFiles",
		CompileSources:   []string{"compile{BuildType}JavaWithJavac", "compile{BuildType}Kotlin"},
	}
}

// TaskName expands a lifecycle name template for bt.
func (HostLifecycle) TaskName(template string, bt BuildType) string {
	r := strings.NewReplacer(BuildTypePlaceholderTitle, bt.TaskSuffix(), BuildTypePlaceholder, bt.Name)
	return r.Replace(template)
}
