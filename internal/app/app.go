// Package app implements the application layer for droidnet.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/droidnet/internal/adapters/detector" //nolint:depguard // Wired in app layer
	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/core/ports"
	"go.trai.ch/droidnet/internal/engine/plan"
	"go.trai.ch/droidnet/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// Planner declares and links build plans.
type Planner interface {
	Declare(cfg *domain.Config, opts ...plan.DeclareOption) (*domain.Plan, error)
	Link(p *domain.Plan) error
}

// Runner executes a linked task graph.
type Runner interface {
	Run(ctx context.Context, graph *domain.Graph, targets []string, opts scheduler.Options) error
	State(name string) domain.TaskState
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	planner      Planner
	runner       Runner
	renderer     ports.Renderer
	watcher      ports.Watcher
	logger       ports.Logger
	getwd        func() (string, error)
	interactive  func() bool
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	planner Planner,
	runner Runner,
	renderer ports.Renderer,
	watcher ports.Watcher,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		planner:      planner,
		runner:       runner,
		renderer:     renderer,
		watcher:      watcher,
		logger:       log,
		getwd:        os.Getwd,
		interactive:  detector.DetectEnvironment,
	}
}

// WithWorkingDir makes the App search for droidnet.yaml from dir instead of the process
// working directory.
func (a *App) WithWorkingDir(dir string) *App {
	a.getwd = func() (string, error) { return dir, nil }
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// ConfigPath overrides the droidnet.yaml search.
	ConfigPath  string
	Force       bool
	TTY         detector.TTYMode
	Output      detector.OutputMode
	Parallelism int
}

// rendererSelector is implemented by renderers that can switch to an interactive display.
type rendererSelector interface {
	SetInteractive(on bool)
}

// Run executes the build process for the specified targets.
func (a *App) Run(ctx context.Context, targetNames []string, opts RunOptions) error {
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	p, err := a.load(opts.ConfigPath, detector.ResolveTTY(opts.TTY, a.interactive()))
	if err != nil {
		return err
	}

	return a.execute(ctx, p, targetNames, opts)
}

func (a *App) execute(ctx context.Context, p *domain.Plan, targetNames []string, opts RunOptions) error {
	path, err := WriteHostWiring(p)
	if err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("host wiring written to %s", path))

	if s, ok := a.renderer.(rendererSelector); ok {
		s.SetInteractive(detector.ResolveOutput(opts.Output, a.interactive()))
	}
	if err := a.renderer.Start(ctx); err != nil {
		return err
	}

	err = a.runner.Run(ctx, p.Graph, targetNames, scheduler.Options{
		Parallelism: opts.Parallelism,
		Force:       opts.Force,
	})
	if stopErr := a.renderer.Stop(); stopErr != nil {
		a.logger.Warn(fmt.Sprintf("renderer did not shut down cleanly: %v", stopErr))
	}
	if err != nil && ctx.Err() == nil && !errors.Is(err, domain.ErrTaskExecutionFailed) {
		// Nothing ran: unknown targets or an invalid graph.
		return err
	}
	a.summarize(p, err)
	if err != nil {
		return errors.Join(domain.ErrBuildExecutionFailed, err)
	}
	return nil
}

func (a *App) summarize(p *domain.Plan, runErr error) {
	var executed, upToDate int
	for t := range p.Graph.Walk() {
		switch a.runner.State(t.Name.String()) {
		case domain.StateSucceeded:
			executed++
		case domain.StateSkipped:
			upToDate++
		default:
		}
	}
	status := "BUILD SUCCESSFUL"
	if runErr != nil {
		status = "BUILD FAILED"
	}
	a.logger.Lifecycle(fmt.Sprintf("%s: %d executed, %d up-to-date", status, executed, upToDate))
}

// load reads the configuration and returns a linked plan.
func (a *App) load(configPath string, tty bool) (*domain.Plan, error) {
	cfg, err := a.loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	p, err := a.planner.Declare(cfg, plan.WithTTY(tty))
	if err != nil {
		return nil, zerr.Wrap(err, "failed to declare build plan")
	}
	if err := a.planner.Link(p); err != nil {
		return nil, zerr.Wrap(err, "failed to link build plan")
	}
	return p, nil
}

func (a *App) loadConfig(configPath string) (*domain.Config, error) {
	cwd, err := a.getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to get working directory")
	}
	cfg, err := a.configLoader.Load(cwd, configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

// WriteHostWiring stores the plan's host wiring as JSON under the workspace root
// and returns the file path.
func WriteHostWiring(p *domain.Plan) (string, error) {
	path := filepath.Join(p.Config.Root, domain.DefaultHostWiringPath())
	data, err := json.MarshalIndent(p.Wiring, "", "  ")
	if err != nil {
		return "", zerr.Wrap(errors.Join(domain.ErrHostWiringWriteFailed, err), "cannot encode host wiring")
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(errors.Join(domain.ErrHostWiringWriteFailed, err), "cannot write host wiring"), "path", path)
	}
	if err := os.WriteFile(path, append(data, '\n'), domain.FilePerm); err != nil {
		return "", zerr.With(zerr.Wrap(errors.Join(domain.ErrHostWiringWriteFailed, err), "cannot write host wiring"), "path", path)
	}
	return path, nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	ConfigPath string
	// Staging removes the DotNet bin and obj roots and the host staging trees.
	Staging bool
	// Cache removes the build info store.
	Cache bool
}

// Clean removes staging trees and cached build info based on the provided options.
func (a *App) Clean(ctx context.Context, options CleanOptions) error {
	cfg, err := a.loadConfig(options.ConfigPath)
	if err != nil {
		return err
	}

	var errs error

	// Helper to remove a directory and log the action
	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	if options.Staging {
		if err := a.cleanStaging(ctx, cfg, remove); err != nil {
			errs = errors.Join(errs, err)
		}
	}

	if options.Cache {
		remove(filepath.Join(cfg.Root, domain.DefaultStorePath()), "build info store")
	}

	return errs
}

func (a *App) cleanStaging(ctx context.Context, cfg *domain.Config, remove func(path, name string)) error {
	p, err := a.planner.Declare(cfg)
	if err != nil {
		return zerr.Wrap(err, "failed to declare build plan")
	}
	clean, ok := p.Task("", domain.KindCleanStaging)
	if !ok {
		return zerr.With(zerr.Wrap(domain.ErrTaskNotFound, "cannot clean staging"), "task", plan.CleanTaskName)
	}

	a.logger.Info("removing DotNet output directories...")
	if err := clean.Action.Run(ctx, &logWriter{logger: a.logger}); err != nil {
		return err
	}

	for _, bt := range p.BuildTypes {
		dir := filepath.Dir(p.Layouts[bt.Name].HostJavaSource)
		remove(dir, fmt.Sprintf("%s host staging tree", bt.Name))
	}
	return nil
}
