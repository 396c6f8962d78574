package domain

import "go.trai.ch/zerr"

// TaskKey addresses a staging task. BuildType is empty for global tasks.
type TaskKey struct {
	BuildType string
	Kind      TaskKind
}

// Plan is the build plan produced by one configuration pass.
// It replaces name-based lookups in ambient state: anything that adds edges receives the plan.
type Plan struct {
	// Config is the configuration the plan was declared from.
	Config     *Config
	Graph      *Graph
	BuildTypes []BuildType
	Layouts    map[string]StagingLayout
	Wiring     HostWiring

	staging map[TaskKey]*Task
	host    map[string]*Task
	linked  bool
}

// NewPlan creates an empty plan rooted at the configuration's workspace root.
func NewPlan(cfg *Config) *Plan {
	g := NewGraph()
	g.SetRoot(cfg.Root)
	return &Plan{
		Config:  cfg,
		Graph:   g,
		Layouts: make(map[string]StagingLayout),
		staging: make(map[TaskKey]*Task),
		host:    make(map[string]*Task),
	}
}

// Register adds t to the graph and indexes it by kind and build type.
func (p *Plan) Register(t *Task) error {
	if err := p.Graph.AddTask(t); err != nil {
		return err
	}
	if t.Kind == KindHost {
		p.host[t.Name.String()] = t
		return nil
	}
	p.staging[TaskKey{BuildType: t.BuildType.Name, Kind: t.Kind}] = t
	return nil
}

// Task returns the staging task of kind for the build type. Use "" for global tasks.
func (p *Plan) Task(buildType string, kind TaskKind) (*Task, bool) {
	t, ok := p.staging[TaskKey{BuildType: buildType, Kind: kind}]
	return t, ok
}

// MustTask is Task for keys the builder itself registered.
func (p *Plan) MustTask(buildType string, kind TaskKind) *Task {
	t, ok := p.Task(buildType, kind)
	if !ok {
		panic(zerr.With(zerr.With(zerr.Wrap(ErrTaskNotFound, "staging task not registered"), "build_type", buildType), "kind", kind.String()))
	}
	return t
}

// HostTask returns a host task by name.
func (p *Plan) HostTask(name string) (*Task, bool) {
	t, ok := p.host[name]
	return t, ok
}

// AddEdge records that task must run after each of prerequisites.
func (*Plan) AddEdge(task *Task, prerequisites ...*Task) {
	for _, pre := range prerequisites {
		task.DependsOn(pre.Name)
	}
}

// AddOrdering records that task must run after each of predecessors whenever both
// are part of a run, without making the predecessors prerequisites.
func (*Plan) AddOrdering(task *Task, predecessors ...*Task) {
	for _, pre := range predecessors {
		task.RunsAfter(pre.Name)
	}
}

// MarkLinked records that the link phase completed.
func (p *Plan) MarkLinked() {
	p.linked = true
}

// Linked reports whether the link phase completed.
func (p *Plan) Linked() bool {
	return p.linked
}
