// Package style provides shared UI styling primitives including colors
// and icons for consistent visual presentation across the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	// Droid is used for host build tasks.
	Droid = lipgloss.Color("#3DDC84")
	// Runtime is used for managed-runtime staging tasks.
	Runtime = lipgloss.Color("#8B5CF6")
	Slate   = lipgloss.Color("#667085")
	Green   = lipgloss.Color("#22A06B")
	Red     = lipgloss.Color("#D93025")
	Yellow  = lipgloss.Color("#F59E0B")
	White   = lipgloss.Color("#FFFFFF")
)

// Icons.
const (
	Check    = "✓"
	Cross    = "✗"
	Warning  = "!"
	UpToDate = "="
	Dot      = "●"
	Arrow    = "→"
)
