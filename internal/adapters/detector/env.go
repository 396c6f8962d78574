// Package detector inspects the environment to decide how builds interact with the terminal:
// whether external processes run under a pseudo-terminal and which renderer draws the build.
package detector

import (
	"os"
	"strings"

	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// TTYMode is the user's choice for the --tty flag.
type TTYMode int

const (
	// TTYAuto allocates a pseudo-terminal when stdout is a terminal outside CI.
	TTYAuto TTYMode = iota
	// TTYAlways always allocates a pseudo-terminal.
	TTYAlways
	// TTYNever never allocates a pseudo-terminal.
	TTYNever
)

var ttyModeNames = map[string]TTYMode{
	"auto":   TTYAuto,
	"always": TTYAlways,
	"never":  TTYNever,
}

// ParseTTYMode parses auto, always or never. The empty string is auto.
func ParseTTYMode(s string) (TTYMode, error) {
	if s == "" {
		return TTYAuto, nil
	}
	mode, ok := ttyModeNames[strings.ToLower(s)]
	if !ok {
		return TTYAuto, zerr.With(zerr.Wrap(domain.ErrUnknownTTYMode, "invalid --tty value"), "value", s)
	}
	return mode, nil
}

// DetectEnvironment reports whether stdout is an interactive terminal.
// CI=true or CI=1 always counts as non-interactive.
func DetectEnvironment() bool {
	ci := os.Getenv("CI")
	if ci == "true" || ci == "1" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // File descriptors fit in an int
}

// ResolveTTY applies mode to the detected environment.
func ResolveTTY(mode TTYMode, interactive bool) bool {
	switch mode {
	case TTYAlways:
		return true
	case TTYNever:
		return false
	default:
		return interactive
	}
}

// OutputMode is the user's choice for the --output flag.
type OutputMode int

const (
	// OutputAuto uses the interactive renderer when stdout is a terminal outside CI.
	OutputAuto OutputMode = iota
	// OutputTUI always uses the interactive renderer.
	OutputTUI
	// OutputLinear always prints a prefixed, chronological log.
	OutputLinear
)

var outputModeNames = map[string]OutputMode{
	"auto":   OutputAuto,
	"tui":    OutputTUI,
	"linear": OutputLinear,
	"ci":     OutputLinear,
}

// ParseOutputMode parses auto, tui, linear or ci. The empty string is auto.
func ParseOutputMode(s string) (OutputMode, error) {
	if s == "" {
		return OutputAuto, nil
	}
	mode, ok := outputModeNames[strings.ToLower(s)]
	if !ok {
		return OutputAuto, zerr.With(zerr.Wrap(domain.ErrUnknownOutputMode, "invalid --output value"), "value", s)
	}
	return mode, nil
}

// ResolveOutput reports whether mode selects the interactive renderer.
func ResolveOutput(mode OutputMode, interactive bool) bool {
	switch mode {
	case OutputTUI:
		return true
	case OutputLinear:
		return false
	default:
		return interactive
	}
}
