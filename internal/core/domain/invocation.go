package domain

// Invocation describes one run of an external executable.
// It is built fresh for every execution and never persisted.
type Invocation struct {
	Executable string
	Args       []string
	WorkingDir string
	// Env holds overrides applied on top of the inherited environment.
	// A PATH override is prepended to the inherited PATH rather than replacing it.
	Env map[string]string
	// TTY runs the process under a pseudo-terminal.
	TTY bool
}
