package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/droidnet/internal/ui/style"
)

var (
	taskPendingStyle = lipgloss.NewStyle().
				Foreground(style.Slate)

	taskRunningStyle = lipgloss.NewStyle().
				Foreground(style.Runtime).
				Bold(true)

	taskDoneStyle = lipgloss.NewStyle().
			Foreground(style.Green)

	taskFailedStyle = lipgloss.NewStyle().
			Foreground(style.Red)

	taskUpToDateStyle = lipgloss.NewStyle().
				Foreground(style.Slate).
				Faint(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(style.Droid).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Runtime).
			Foreground(style.White)

	failureTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1).
				Background(style.Red).
				Foreground(style.White)

	listStyle = lipgloss.NewStyle().
			PaddingRight(1)

	logStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(style.Slate).
			PaddingLeft(1)
)
