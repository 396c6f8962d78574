// Package plan turns a workspace configuration into a linked task graph.
//
// Building happens in two phases. Declare registers every staging task and every
// host task into a fresh domain.Plan. Link runs once declaration is complete and adds
// the edges that make host lifecycle tasks wait for their staging prerequisites.
package plan

import (
	"errors"
	"os"
	"strings"

	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/core/ports"
	"go.trai.ch/zerr"
)

// Staging task name templates. %s is the capitalized build type.
const (
	CleanTaskName        = "cleanDotNet"
	unpackTaskTemplate   = "unpack%sDotNetProguardFile"
	compileTaskTemplate  = "compile%sDotNet"
	copySrcTaskTemplate  = "copyJavaSrc%sDotNet"
	unzipApkTaskTemplate = "unzipApk%s"
)

// Builder declares and links build plans.
type Builder struct {
	invoker   ports.ProcessInvoker
	resolver  ports.InputResolver
	manifest  ports.ManifestReader
	apiInfo   ports.APIInfoLookup
	copier    ports.TreeCopier
	extractor ports.ArchiveExtractor
	logger    ports.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(
	invoker ports.ProcessInvoker,
	resolver ports.InputResolver,
	manifest ports.ManifestReader,
	apiInfo ports.APIInfoLookup,
	copier ports.TreeCopier,
	extractor ports.ArchiveExtractor,
	logger ports.Logger,
) *Builder {
	return &Builder{
		invoker:   invoker,
		resolver:  resolver,
		manifest:  manifest,
		apiInfo:   apiInfo,
		copier:    copier,
		extractor: extractor,
		logger:    logger,
	}
}

// DeclareOption tunes how tasks are declared.
type DeclareOption func(*declareOptions)

type declareOptions struct {
	tty bool
}

// WithTTY runs external processes under a pseudo-terminal.
func WithTTY(enabled bool) DeclareOption {
	return func(o *declareOptions) {
		o.tty = enabled
	}
}

// Declare validates cfg and registers every task. Nothing is executed.
func (b *Builder) Declare(cfg *domain.Config, opts ...DeclareOption) (*domain.Plan, error) {
	var o declareOptions
	for _, opt := range opts {
		opt(&o)
	}

	if len(cfg.BuildTypes) == 0 {
		return nil, zerr.Wrap(domain.ErrNoBuildTypes, "cannot declare plan")
	}
	if err := requireDistinctOutputs(cfg.BuildTypes); err != nil {
		return nil, err
	}
	if err := requireFile(cfg.SolutionFile, domain.ErrSolutionFileMissing); err != nil {
		return nil, err
	}
	if err := requireFile(cfg.ProjectFile, domain.ErrProjectFileMissing); err != nil {
		return nil, err
	}
	verbosity, err := cfg.MSBuildLogLevel.MSBuildVerbosity()
	if err != nil {
		return nil, err
	}

	p := domain.NewPlan(cfg)
	p.BuildTypes = cfg.BuildTypes
	roots := cfg.StagingRoots()

	if err := p.Register(b.cleanTask(p)); err != nil {
		return nil, err
	}

	var pkg string
	for _, bt := range cfg.BuildTypes {
		layout := domain.NewStagingLayout(roots, bt)
		p.Layouts[bt.Name] = layout

		// The manifest is project-level; read it once.
		if pkg == "" {
			pkg, err = b.manifest.PackageName(layout.ManifestFile)
			if err != nil {
				return nil, err
			}
		}

		compile := b.compileTask(cfg, layout, verbosity, o)
		tasks := []*domain.Task{
			b.unpackTask(cfg, layout, o),
			compile,
			b.copySourcesTask(layout, compile),
			b.unzipPackageTask(layout, pkg, compile),
		}
		for _, t := range tasks {
			if err := p.Register(t); err != nil {
				return nil, err
			}
		}
	}

	for _, src := range cfg.Host.Tasks {
		if err := p.Register(b.hostTask(src, o)); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Link adds the edges from host lifecycle tasks to their staging prerequisites,
// resolves the host wiring and validates the graph.
func (b *Builder) Link(p *domain.Plan) error {
	if p == nil || p.Config == nil {
		return zerr.Wrap(domain.ErrPlanNotDeclared, "cannot link plan")
	}
	if p.Linked() {
		return nil
	}
	lc := p.Config.Host.Lifecycle

	hostClean, err := requireHostTask(p, lc.Clean)
	if err != nil {
		return err
	}
	cleanStaging := p.MustTask("", domain.KindCleanStaging)
	p.AddEdge(hostClean, cleanStaging)

	for _, bt := range p.BuildTypes {
		// Cleaning deletes the roots the compiler writes into.
		p.AddOrdering(p.MustTask(bt.Name, domain.KindCompileRuntimeProject), cleanStaging)

		merge, err := requireHostTask(p, lc.TaskName(lc.MergeShrinkRules, bt))
		if err != nil {
			return err
		}
		p.AddEdge(merge, p.MustTask(bt.Name, domain.KindUnpackShrinkRules))

		staged := []*domain.Task{
			p.MustTask(bt.Name, domain.KindStageGeneratedSources),
			p.MustTask(bt.Name, domain.KindUnpackPackage),
		}
		var linked int
		for _, tmpl := range lc.CompileSources {
			if t, ok := p.HostTask(lc.TaskName(tmpl, bt)); ok {
				p.AddEdge(t, staged...)
				linked++
			}
		}
		if linked == 0 {
			return zerr.With(
				zerr.With(zerr.Wrap(domain.ErrHostTaskMissing, "cannot link compile sources"), "build_type", bt.Name),
				"candidates", expand(lc, lc.CompileSources, bt),
			)
		}
	}

	wiring, err := b.hostWiring(p)
	if err != nil {
		return err
	}
	p.Wiring = wiring

	if err := p.Graph.Validate(); err != nil {
		return err
	}
	p.MarkLinked()
	return nil
}

func (b *Builder) hostWiring(p *domain.Plan) (domain.HostWiring, error) {
	w := domain.HostWiring{
		BuildTypes: make(map[string]domain.HostSourceSet, len(p.BuildTypes)),
		NoCompress: domain.NoCompressExtensions,
	}
	for _, bt := range p.BuildTypes {
		w.BuildTypes[bt.Name] = domain.NewHostSourceSet(p.Layouts[bt.Name])
	}

	sdk := p.Config.Host.CompileSdk
	if sdk == 0 {
		return w, nil
	}
	tc := p.Config.Toolchain
	info, err := b.apiInfo.Find(tc.MonoAndroidVersionsDir(), sdk)
	if err != nil {
		return domain.HostWiring{}, err
	}
	w.RuntimeVersion = info.Version
	w.APIJars = []string{tc.JavaRuntimeJar(), tc.MonoAndroidJar(info.Version)}
	return w, nil
}

func requireHostTask(p *domain.Plan, name string) (*domain.Task, error) {
	t, ok := p.HostTask(name)
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrHostTaskMissing, "cannot link plan"), "task", name)
	}
	return t, nil
}

func requireFile(path string, sentinel error) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return zerr.With(zerr.Wrap(sentinel, "cannot declare plan"), "path", path)
		}
		return zerr.With(zerr.Wrap(errors.Join(sentinel, err), "cannot declare plan"), "path", path)
	}
	return nil
}

// requireDistinctOutputs compares case-insensitively since the runtime project
// is often built on case-insensitive file systems.
func requireDistinctOutputs(buildTypes []domain.BuildType) error {
	seen := make(map[string]string, len(buildTypes))
	for _, bt := range buildTypes {
		key := strings.ToLower(bt.OutputSegment())
		if other, ok := seen[key]; ok {
			return zerr.With(zerr.With(zerr.With(
				zerr.Wrap(domain.ErrDuplicateCompilerConfiguration, "cannot declare plan"),
				"build_type", bt.Name), "other_build_type", other), "configuration", bt.OutputSegment())
		}
		seen[key] = bt.Name
	}
	return nil
}

func expand(lc domain.HostLifecycle, templates []string, bt domain.BuildType) []string {
	names := make([]string, len(templates))
	for i, tmpl := range templates {
		names[i] = lc.TaskName(tmpl, bt)
	}
	return names
}
