package plan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/zerr"
)

func taskName(template string, bt domain.BuildType) domain.InternedString {
	return domain.NewInternedString(fmt.Sprintf(template, bt.TaskSuffix()))
}

// cleanTask deletes the DotNet bin and obj roots. It is shared by all build types.
func (*Builder) cleanTask(p *domain.Plan) *domain.Task {
	roots := p.Config.StagingRoots()
	// Any build type resolves the project-level roots to the same paths.
	layout := domain.NewStagingLayout(roots, p.Config.BuildTypes[0])
	dirs := []string{layout.BinRoot, layout.ObjRoot}

	return &domain.Task{
		Name:      domain.NewInternedString(CleanTaskName),
		Kind:      domain.KindCleanStaging,
		AlwaysRun: true,
		Action: domain.ActionFunc(func(_ context.Context, out io.Writer) error {
			return RemoveDirs(out, dirs...)
		}),
	}
}

// RemoveDirs deletes each directory tree. Missing directories are not an error.
func RemoveDirs(out io.Writer, dirs ...string) error {
	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil {
			return zerr.With(zerr.Wrap(errors.Join(domain.ErrFailedToCleanOutput, err), "cannot clean staging"), "path", dir)
		}
		_, _ = fmt.Fprintf(out, "removed %s\n", dir)
	}
	return nil
}

func (b *Builder) unpackTask(cfg *domain.Config, l domain.StagingLayout, o declareOptions) *domain.Task {
	tc := cfg.Toolchain
	inv := domain.Invocation{
		Executable: tc.Monodis,
		Args:       []string{"--mresources", tc.BuildTasksDLL},
		WorkingDir: l.DisassemblyDir,
		TTY:        o.tty,
	}

	return &domain.Task{
		Name:       taskName(unpackTaskTemplate, l.BuildType),
		Kind:       domain.KindUnpackShrinkRules,
		BuildType:  l.BuildType,
		Inputs:     domain.NewInternedStrings([]string{tc.BuildTasksDLL}),
		Outputs:    domain.NewInternedStrings([]string{l.ShrinkRulesFile}),
		Command:    commandLine(inv),
		WorkingDir: domain.NewInternedString(l.DisassemblyDir),
		Action: domain.ActionFunc(func(ctx context.Context, out io.Writer) error {
			// monodis dumps every embedded resource into its working directory.
			if err := resetDir(l.DisassemblyDir); err != nil {
				return err
			}
			_, err := b.invoker.Run(ctx, inv, out)
			return err
		}),
	}
}

func (b *Builder) compileTask(
	cfg *domain.Config,
	l domain.StagingLayout,
	verbosity string,
	o declareOptions,
) *domain.Task {
	projectDir := cfg.ProjectDir()
	env := map[string]string{"PATH": cfg.Toolchain.MSBuildCommandsDir()}
	inv := domain.Invocation{
		Executable: cfg.Toolchain.MSBuild,
		Args: []string{
			projectDir,
			"-property:Configuration=" + l.BuildType.CompilerConfigurationName,
			"-target:restore,BuildApk",
			"-verbosity:" + verbosity,
		},
		WorkingDir: projectDir,
		Env:        env,
		TTY:        o.tty,
	}
	outputs := []string{l.BinDir, l.ObjDir}
	inputs := []string{cfg.SolutionDir()}
	excludes := slices.Clone(cfg.InputExcludes)

	return &domain.Task{
		Name:        taskName(compileTaskTemplate, l.BuildType),
		Kind:        domain.KindCompileRuntimeProject,
		BuildType:   l.BuildType,
		Inputs:      domain.NewInternedStrings(inputs),
		Excludes:    excludes,
		Outputs:     domain.NewInternedStrings(outputs),
		Command:     commandLine(inv),
		Environment: env,
		WorkingDir:  domain.NewInternedString(projectDir),
		Action: domain.ActionFunc(func(ctx context.Context, out io.Writer) error {
			b.logger.Log(cfg.LogLevel, listing(fmt.Sprintf("DotNet %s output directories:", l.BuildType.Name), outputs))
			files, err := b.resolver.ResolveInputs(inputs, excludes, cfg.Root)
			if err != nil {
				return err
			}
			b.logger.Log(cfg.LogLevel, listing(fmt.Sprintf("DotNet %s input files:", l.BuildType.Name), files))

			_, err = b.invoker.Run(ctx, inv, out)
			return err
		}),
	}
}

func (b *Builder) copySourcesTask(l domain.StagingLayout, compile *domain.Task) *domain.Task {
	t := &domain.Task{
		Name:      taskName(copySrcTaskTemplate, l.BuildType),
		Kind:      domain.KindStageGeneratedSources,
		BuildType: l.BuildType,
		Inputs:    domain.NewInternedStrings([]string{l.JavaSource}),
		Outputs:   domain.NewInternedStrings([]string{l.HostJavaSource}),
		Action: domain.ActionFunc(func(_ context.Context, out io.Writer) error {
			n, err := b.copier.CopyTree(l.JavaSource, l.HostJavaSource)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "copied %d files to %s\n", n, l.HostJavaSource)
			return nil
		}),
		// Runtime projects without Java callable wrappers generate no sources.
		SkipWhenNoInputs: true,
	}
	t.DependsOn(compile.Name)
	return t
}

func (b *Builder) unzipPackageTask(l domain.StagingLayout, pkg string, compile *domain.Task) *domain.Task {
	archive := l.PackageFile(pkg)
	t := &domain.Task{
		Name:      taskName(unzipApkTaskTemplate, l.BuildType),
		Kind:      domain.KindUnpackPackage,
		BuildType: l.BuildType,
		Inputs:    domain.NewInternedStrings([]string{archive}),
		Outputs:   domain.NewInternedStrings([]string{l.UnpackedPackage}),
		Action: domain.ActionFunc(func(_ context.Context, out io.Writer) error {
			n, err := b.extractor.Extract(archive, l.UnpackedPackage)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "extracted %d files to %s\n", n, l.UnpackedPackage)
			return nil
		}),
	}
	t.DependsOn(compile.Name)
	return t
}

// hostTask copies a configured host task so linking never mutates the configuration.
func (b *Builder) hostTask(src *domain.Task, o declareOptions) *domain.Task {
	t := *src
	t.Dependencies = slices.Clone(src.Dependencies)
	inv := domain.Invocation{
		Executable: t.Command[0],
		Args:       slices.Clone(t.Command[1:]),
		WorkingDir: t.WorkingDir.String(),
		Env:        t.Environment,
		TTY:        o.tty,
	}
	t.Action = domain.ActionFunc(func(ctx context.Context, out io.Writer) error {
		_, err := b.invoker.Run(ctx, inv, out)
		return err
	})
	return &t
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrStagingResetFailed, err), "cannot reset directory"), "path", dir)
	}
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrStagingResetFailed, err), "cannot reset directory"), "path", dir)
	}
	return nil
}

func commandLine(inv domain.Invocation) []string {
	return append([]string{inv.Executable}, inv.Args...)
}

func listing(header string, entries []string) string {
	var sb strings.Builder
	sb.WriteString(header)
	for _, e := range entries {
		sb.WriteString("\n  ")
		sb.WriteString(e)
	}
	return sb.String()
}
