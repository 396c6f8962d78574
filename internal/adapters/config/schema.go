package config

// Droidfile represents the structure of the droidnet.yaml configuration file.
type Droidfile struct {
	Version         string                   `yaml:"version" validate:"omitempty,oneof=1"`
	ProjectFile     string                   `yaml:"projectFile" validate:"required"`
	SolutionFile    string                   `yaml:"solutionFile" validate:"required"`
	LogLevel        string                   `yaml:"logLevel"`
	MSBuildLogLevel string                   `yaml:"msbuildLogLevel"`
	InputExcludes   []string                 `yaml:"inputExcludes"`
	BuildTypes      map[string]*BuildTypeDTO `yaml:"buildTypes"`
	Toolchain       ToolchainDTO             `yaml:"toolchain"`
	Host            HostDTO                  `yaml:"host"`
}

// BuildTypeDTO is one entry of the buildTypes map, keyed by build type name.
type BuildTypeDTO struct {
	CompilerConfigurationName string `yaml:"compilerConfigurationName"`
}

// ToolchainDTO overrides the toolchain locations. Every field is optional.
type ToolchainDTO struct {
	MonoFramework  string `yaml:"monoFramework"`
	XamarinAndroid string `yaml:"xamarinAndroid"`
	Monodis        string `yaml:"monodis"`
	MSBuild        string `yaml:"msbuild"`
	BuildTasksDLL  string `yaml:"buildTasksDLL"`
}

// HostDTO describes the host application project.
type HostDTO struct {
	Dir        string              `yaml:"dir" validate:"required"`
	CompileSdk int                 `yaml:"compileSdk" validate:"gte=0"`
	Lifecycle  LifecycleDTO        `yaml:"lifecycle"`
	Tasks      map[string]*TaskDTO `yaml:"tasks" validate:"dive,required"`
}

// LifecycleDTO overrides the host task name templates.
type LifecycleDTO struct {
	Clean            string   `yaml:"clean"`
	MergeShrinkRules string   `yaml:"mergeShrinkRules"`
	CompileSources   []string `yaml:"compileSources"`
}

// TaskDTO represents a host task definition in the configuration.
type TaskDTO struct {
	Input       []string          `yaml:"input"`
	Cmd         []string          `yaml:"cmd" validate:"required,min=1"`
	Target      []string          `yaml:"target"`
	DependsOn   []string          `yaml:"dependsOn"`
	Environment map[string]string `yaml:"environment"`
	WorkingDir  string            `yaml:"workingDir"`
}
