// Package config provides the configuration loader for droidnet.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger   ports.Logger
	validate *validator.Validate
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{
		Logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Load reads droidnet.yaml. An explicit path is resolved against cwd; otherwise the file is
// searched for from cwd upwards. Every path in the result is absolute.
func (l *Loader) Load(cwd, path string) (*domain.Config, error) {
	configPath, err := l.findConfiguration(cwd, path)
	if err != nil {
		return nil, err
	}

	var file Droidfile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	if err := l.validate.Struct(&file); err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrConfigInvalid, err), "cannot load configuration"), "path", configPath)
	}

	return l.toDomain(filepath.Dir(configPath), &file)
}

func (l *Loader) findConfiguration(cwd, path string) (string, error) {
	if path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}
		if _, err := os.Stat(path); err != nil {
			return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "cannot load configuration"), "path", path)
		}
		return filepath.Clean(path), nil
	}

	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "cannot load configuration"), "cwd", cwd)
}

func (l *Loader) toDomain(root string, file *Droidfile) (*domain.Config, error) {
	logLevel, err := domain.ParseLogLevel(file.LogLevel, domain.LogLevelInfo)
	if err != nil {
		return nil, zerr.With(err, "field", "logLevel")
	}
	msbuildLevel, err := domain.ParseLogLevel(file.MSBuildLogLevel, domain.LogLevelInfo)
	if err != nil {
		return nil, zerr.With(err, "field", "msbuildLogLevel")
	}

	buildTypes, err := buildTypesFrom(file.BuildTypes)
	if err != nil {
		return nil, err
	}

	excludes := file.InputExcludes
	if excludes == nil {
		excludes = slices.Clone(domain.DefaultInputExcludes)
	}

	hostDir := resolvePath(root, file.Host.Dir)
	tasks, err := hostTasksFrom(root, file.Host.Tasks)
	if err != nil {
		return nil, err
	}

	if file.Host.CompileSdk == 0 {
		l.Logger.Warn("host.compileSdk is not set; runtime api jars will not be resolved")
	}

	return &domain.Config{
		Root:            root,
		ProjectFile:     resolvePath(root, file.ProjectFile),
		SolutionFile:    resolvePath(root, file.SolutionFile),
		LogLevel:        logLevel,
		MSBuildLogLevel: msbuildLevel,
		InputExcludes:   excludes,
		BuildTypes:      buildTypes,
		Toolchain:       toolchainFrom(root, file.Toolchain),
		Host: domain.HostConfig{
			Dir:        hostDir,
			CompileSdk: file.Host.CompileSdk,
			Lifecycle:  lifecycleFrom(file.Host.Lifecycle),
			Tasks:      tasks,
		},
	}, nil
}

func buildTypesFrom(dtos map[string]*BuildTypeDTO) ([]domain.BuildType, error) {
	names := make([]string, 0, len(dtos))
	for name := range dtos {
		names = append(names, name)
	}
	slices.Sort(names)

	buildTypes := make([]domain.BuildType, 0, len(names))
	for _, name := range names {
		var cfg string
		if dto := dtos[name]; dto != nil {
			cfg = dto.CompilerConfigurationName
		}
		bt, err := domain.NewBuildType(name, cfg)
		if err != nil {
			return nil, err
		}
		buildTypes = append(buildTypes, bt)
	}
	return buildTypes, nil
}

func toolchainFrom(root string, dto ToolchainDTO) domain.Toolchain {
	return domain.Toolchain{
		MonoFramework:  resolveOptionalPath(root, dto.MonoFramework),
		XamarinAndroid: resolveOptionalPath(root, dto.XamarinAndroid),
		Monodis:        resolveCommand(root, dto.Monodis),
		MSBuild:        resolveCommand(root, dto.MSBuild),
		BuildTasksDLL:  resolveOptionalPath(root, dto.BuildTasksDLL),
	}.WithDefaults()
}

func lifecycleFrom(dto LifecycleDTO) domain.HostLifecycle {
	lc := domain.DefaultHostLifecycle()
	if dto.Clean != "" {
		lc.Clean = dto.Clean
	}
	if dto.MergeShrinkRules != "" {
		lc.MergeShrinkRules = dto.MergeShrinkRules
	}
	if len(dto.CompileSources) > 0 {
		lc.CompileSources = slices.Clone(dto.CompileSources)
	}
	return lc
}

func hostTasksFrom(root string, dtos map[string]*TaskDTO) ([]*domain.Task, error) {
	names := make([]string, 0, len(dtos))
	for name := range dtos {
		names = append(names, name)
	}
	slices.Sort(names)

	tasks := make([]*domain.Task, 0, len(names))
	for _, name := range names {
		if err := validateTaskName(name); err != nil {
			return nil, err
		}
		dto := dtos[name]
		if dto == nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "host task has no definition"), "task_name", name)
		}
		tasks = append(tasks, buildTask(name, dto, root))
	}
	return tasks, nil
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
// Unknown fields are rejected.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is validated by caller
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(errors.Join(domain.ErrConfigReadFailed, err), "cannot load configuration")
	}

	dec := yaml.NewDecoder(bytes.NewReader(configFile))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return zerr.Wrap(errors.Join(domain.ErrConfigParseFailed, err), "cannot load configuration")
	}

	return nil
}

// validateTaskName checks if the task name is reserved or contains invalid characters.
func validateTaskName(name string) error {
	if name == "all" {
		return zerr.With(zerr.Wrap(domain.ErrReservedTaskName, "cannot declare host task"), "task_name", name)
	}
	if name == "" || strings.ContainsFunc(name, func(r rune) bool { return r == ':' || r == ' ' || r == '/' }) {
		return zerr.With(zerr.Wrap(domain.ErrInvalidTaskName, "cannot declare host task"), "task_name", name)
	}
	return nil
}

func buildTask(name string, dto *TaskDTO, root string) *domain.Task {
	workingDir := root
	if dto.WorkingDir != "" {
		workingDir = resolvePath(root, dto.WorkingDir)
	}

	return &domain.Task{
		Name:         domain.NewInternedString(name),
		Kind:         domain.KindHost,
		Command:      slices.Clone(dto.Cmd),
		Inputs:       canonicalizeStrings(dto.Input),
		Outputs:      canonicalizeStrings(dto.Target),
		Dependencies: canonicalizeStrings(dto.DependsOn),
		Environment:  dto.Environment,
		WorkingDir:   domain.NewInternedString(workingDir),
	}
}

func canonicalizeStrings(strs []string) []domain.InternedString {
	if len(strs) == 0 {
		return nil
	}

	sorted := slices.Clone(strs)
	slices.Sort(sorted)
	return domain.NewInternedStrings(slices.Compact(sorted))
}

func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(root, p))
}

func resolveOptionalPath(root, p string) string {
	if p == "" {
		return ""
	}
	return resolvePath(root, p)
}

// resolveCommand keeps bare executable names so they are looked up on PATH.
func resolveCommand(root, p string) string {
	if p == "" || !strings.ContainsRune(p, '/') {
		return p
	}
	return resolvePath(root, p)
}
