package app

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.trai.ch/droidnet/internal/core/domain"
)

// PlanView is the printable form of a linked plan. Paths inside the workspace
// are relative to Root.
type PlanView struct {
	Root          string            `json:"root"`
	InputExcludes []string          `json:"input_excludes"`
	Tasks         []TaskView        `json:"tasks"`
	HostWiring    domain.HostWiring `json:"host_wiring"`
}

// TaskView describes one task of the plan.
type TaskView struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	BuildType string   `json:"build_type,omitempty"`
	DependsOn []string `json:"depends_on"`
	RunsAfter []string `json:"runs_after,omitempty"`
	Inputs    []string `json:"inputs"`
	Excludes  []string `json:"excludes,omitempty"`
	Outputs   []string `json:"outputs"`
	Command   []string `json:"command,omitempty"`
	AlwaysRun bool     `json:"always_run,omitempty"`
}

// PlanOptions configuration for the Plan method.
type PlanOptions struct {
	ConfigPath string
}

// Plan loads the configuration and describes the linked plan without running anything.
func (a *App) Plan(opts PlanOptions) (*PlanView, error) {
	p, err := a.load(opts.ConfigPath, false)
	if err != nil {
		return nil, err
	}
	return NewPlanView(p), nil
}

// NewPlanView describes p. Tasks are listed in execution order.
func NewPlanView(p *domain.Plan) *PlanView {
	root := p.Config.Root
	rel := func(paths []string) []string {
		out := make([]string, len(paths))
		for i, path := range paths {
			out[i] = relativize(root, path)
		}
		return out
	}

	v := &PlanView{
		Root:          root,
		InputExcludes: p.Config.InputExcludes,
		Tasks:         make([]TaskView, 0, p.Graph.TaskCount()),
	}
	for t := range p.Graph.Walk() {
		tv := TaskView{
			Name:      t.Name.String(),
			Kind:      t.Kind.String(),
			BuildType: t.BuildType.Name,
			DependsOn: domain.Strings(t.Dependencies),
			RunsAfter: domain.Strings(t.MustRunAfter),
			Inputs:    rel(domain.Strings(t.Inputs)),
			Excludes:  t.Excludes,
			Outputs:   rel(domain.Strings(t.Outputs)),
			Command:   rel(t.Command),
			AlwaysRun: t.AlwaysRun,
		}
		v.Tasks = append(v.Tasks, tv)
	}

	w := p.Wiring
	v.HostWiring = domain.HostWiring{
		BuildTypes:     make(map[string]domain.HostSourceSet, len(w.BuildTypes)),
		RuntimeVersion: w.RuntimeVersion,
		APIJars:        rel(w.APIJars),
		NoCompress:     w.NoCompress,
	}
	for name, set := range w.BuildTypes {
		v.HostWiring.BuildTypes[name] = domain.HostSourceSet{
			JavaSrcDir:       relativize(root, set.JavaSrcDir),
			ResourcesDir:     relativize(root, set.ResourcesDir),
			ResourceIncludes: set.ResourceIncludes,
			JNILibsDir:       relativize(root, set.JNILibsDir),
			ProguardFile:     relativize(root, set.ProguardFile),
		}
	}
	return v
}

// relativize rewrites absolute paths inside root as root-relative paths.
// Anything else is returned unchanged.
func relativize(root, path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// WritePlanJSON writes v as indented JSON.
func WritePlanJSON(w io.Writer, v *PlanView) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WritePlanText writes v in a human readable form.
func WritePlanText(w io.Writer, v *PlanView) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Workspace: %s\n", v.Root)
	// The excludes are a heuristic; print them so surprises are visible.
	fmt.Fprintf(&sb, "Input excludes: %s\n", strings.Join(v.InputExcludes, ", "))
	fmt.Fprintf(&sb, "\nTasks (%d, execution order):\n", len(v.Tasks))

	for _, t := range v.Tasks {
		header := t.Kind
		if t.BuildType != "" {
			header += ", " + t.BuildType
		}
		if t.AlwaysRun {
			header += ", always runs"
		}
		fmt.Fprintf(&sb, "\n  %s (%s)\n", t.Name, header)
		writeField(&sb, "command", strings.Join(t.Command, " "))
		writeList(&sb, "depends on", t.DependsOn)
		writeList(&sb, "runs after", t.RunsAfter)
		writeList(&sb, "inputs", t.Inputs)
		writeList(&sb, "excludes", t.Excludes)
		writeList(&sb, "outputs", t.Outputs)
	}

	sb.WriteString("\nHost wiring:\n")
	if v.HostWiring.RuntimeVersion != "" {
		writeField(&sb, "runtime version", v.HostWiring.RuntimeVersion)
	}
	writeList(&sb, "api jars", v.HostWiring.APIJars)
	writeList(&sb, "no compress", v.HostWiring.NoCompress)
	for _, t := range v.Tasks {
		// Walk the build types in task order so the output is stable.
		if t.Kind != domain.KindCompileRuntimeProject.String() {
			continue
		}
		set := v.HostWiring.BuildTypes[t.BuildType]
		fmt.Fprintf(&sb, "    %s:\n", t.BuildType)
		writeField(&sb, "  java src", set.JavaSrcDir)
		writeField(&sb, "  resources", set.ResourcesDir+" ("+strings.Join(set.ResourceIncludes, ", ")+")")
		writeField(&sb, "  jni libs", set.JNILibsDir)
		writeField(&sb, "  proguard", set.ProguardFile)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeField(sb *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "    %s: %s\n", name, value)
}

func writeList(sb *strings.Builder, name string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(sb, "    %s: %s\n", name, strings.Join(values, ", "))
}
