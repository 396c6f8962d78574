package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/droidnet/internal/ui/style"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.ListHeight == 0 {
		return "Initializing..."
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.taskList(),
		m.logPane(),
	)
}

func (m *Model) taskList() string {
	var s strings.Builder

	title := titleStyle
	if m.Failed {
		title = failureTitleStyle
	}
	s.WriteString(title.Render(fmt.Sprintf("TASKS %d/%d", m.finished(), len(m.Tasks))) + "\n\n")

	end := min(m.ListOffset+m.ListHeight, len(m.Tasks))
	start := min(m.ListOffset, end)
	for i := start; i < end; i++ {
		s.WriteString(m.renderTaskRow(i, m.Tasks[i]) + "\n")
	}

	return listStyle.Width(m.ListWidth).Render(s.String())
}

func (m *Model) finished() int {
	var n int
	for _, t := range m.Tasks {
		if t.Status != StatusPending && t.Status != StatusRunning {
			n++
		}
	}
	return n
}

func (m *Model) renderTaskRow(index int, task *TaskNode) string {
	cursor := "  "
	if index == m.SelectedIdx {
		cursor = cursorStyle.Render("> ")
	}

	content := fmt.Sprintf("%s %s", taskIcon(task.Status), task.Name)
	if task.Status == StatusDone || task.Status == StatusFailed {
		content += fmt.Sprintf(" (%v)", task.Duration)
	}
	return cursor + taskStyle(task.Status).Render(content)
}

func taskIcon(status TaskStatus) string {
	switch status {
	case StatusRunning:
		return style.Dot
	case StatusDone:
		return style.Check
	case StatusUpToDate:
		return style.UpToDate
	case StatusFailed:
		return style.Cross
	default:
		return "○"
	}
}

func taskStyle(status TaskStatus) lipgloss.Style {
	switch status {
	case StatusRunning:
		return taskRunningStyle
	case StatusDone:
		return taskDoneStyle
	case StatusUpToDate:
		return taskUpToDateStyle
	case StatusFailed:
		return taskFailedStyle
	default:
		return taskPendingStyle
	}
}

func (m *Model) logPane() string {
	node := m.Selected()
	if node == nil {
		return logStyle.Render(titleStyle.Render("LOGS (waiting...)"))
	}

	mode := "following"
	if !m.FollowMode {
		mode = "manual"
	}
	header := titleStyle
	if node.Status == StatusFailed {
		header = failureTitleStyle
	}

	return logStyle.Render(
		lipgloss.JoinVertical(
			lipgloss.Left,
			header.Render(fmt.Sprintf("LOGS: %s (%s)", node.Name, mode)),
			node.Term.View(),
		),
	)
}
