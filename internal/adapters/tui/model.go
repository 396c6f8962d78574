package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/droidnet/internal/core/domain"
)

const (
	taskListWidthRatio = 0.3
	// logPaneChrome is the left border plus padding of the log pane.
	logPaneChrome = 2
)

// TaskStatus is the display state of a task row.
type TaskStatus string

const (
	// StatusPending indicates the task has not started.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is executing.
	StatusRunning TaskStatus = "Running"
	// StatusDone indicates the task succeeded.
	StatusDone TaskStatus = "Done"
	// StatusUpToDate indicates the task was skipped because nothing changed.
	StatusUpToDate TaskStatus = "UpToDate"
	// StatusFailed indicates the task failed.
	StatusFailed TaskStatus = "Failed"
)

// TaskNode is a single row of the task list.
type TaskNode struct {
	Name     string
	Status   TaskStatus
	Term     *Vterm
	Started  time.Time
	Duration time.Duration
}

// Model is the Bubble Tea model for an interactive build.
type Model struct {
	Tasks       []*TaskNode
	TaskMap     map[string]*TaskNode
	SpanMap     map[string]*TaskNode
	SelectedIdx int
	ListOffset  int
	ListHeight  int
	ListWidth   int
	LogWidth    int
	LogHeight   int
	// FollowMode moves the selection to whichever task started last.
	FollowMode bool
	// Failed is set once any task fails.
	Failed bool
	// Interrupted is set when the user pressed ctrl+c.
	Interrupted bool
}

// NewModel creates an empty model that follows running tasks.
func NewModel() *Model {
	return &Model{
		TaskMap:    make(map[string]*TaskNode),
		SpanMap:    make(map[string]*TaskNode),
		FollowMode: true,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Selected returns the task under the cursor, or nil.
func (m *Model) Selected() *TaskNode {
	if m.SelectedIdx >= 0 && m.SelectedIdx < len(m.Tasks) {
		return m.Tasks[m.SelectedIdx]
	}
	return nil
}

// Update implements tea.Model.
//
//nolint:cyclop // message dispatch
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case MsgInitTasks:
		m.Tasks = make([]*TaskNode, len(msg.Tasks))
		m.TaskMap = make(map[string]*TaskNode, len(msg.Tasks))
		m.SpanMap = make(map[string]*TaskNode)
		for i, name := range msg.Tasks {
			node := &TaskNode{Name: name, Status: StatusPending, Term: NewVterm()}
			if m.LogWidth > 0 && m.LogHeight > 0 {
				node.Term.SetWidth(m.LogWidth)
				node.Term.SetHeight(m.LogHeight)
			}
			m.Tasks[i] = node
			m.TaskMap[name] = node
		}
		m.SelectedIdx = 0
		m.ListOffset = 0

	case MsgTaskStart:
		node, ok := m.TaskMap[msg.Name]
		if !ok {
			return m, nil
		}
		node.Status = StatusRunning
		node.Started = msg.StartTime
		m.SpanMap[msg.SpanID] = node
		if m.FollowMode {
			m.selectTask(msg.Name)
		}

	case MsgTaskLog:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			_, _ = node.Term.Write(msg.Data)
		}

	case MsgTaskComplete:
		node, ok := m.SpanMap[msg.SpanID]
		if !ok {
			return m, nil
		}
		if !node.Started.IsZero() && !msg.EndTime.IsZero() {
			node.Duration = msg.EndTime.Sub(node.Started).Round(time.Millisecond)
		}
		switch {
		case msg.Err != nil || msg.State == domain.StateFailed:
			node.Status = StatusFailed
			m.Failed = true
			if m.FollowMode {
				// Keep the failing output on screen.
				m.selectTask(node.Name)
				m.FollowMode = false
			}
		case msg.State == domain.StateSkipped:
			node.Status = StatusUpToDate
		default:
			node.Status = StatusDone
		}
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "ctrl+c":
		m.Interrupted = true
		return tea.Quit
	case "k", "up":
		if m.SelectedIdx > 0 {
			m.SelectedIdx--
			m.FollowMode = false
			m.ensureVisible()
		}
	case "j", "down":
		if m.SelectedIdx < len(m.Tasks)-1 {
			m.SelectedIdx++
			m.FollowMode = false
			m.ensureVisible()
		}
	case "esc", "f":
		m.FollowMode = true
		for i := len(m.Tasks) - 1; i >= 0; i-- {
			if m.Tasks[i].Status == StatusRunning {
				m.selectTask(m.Tasks[i].Name)
				break
			}
		}
	default:
		if node := m.Selected(); node != nil {
			node.Term.Update(msg)
		}
	}
	return nil
}

func (m *Model) resize(width, height int) {
	m.ListWidth = int(float64(width) * taskListWidthRatio)
	m.LogWidth = max(width-m.ListWidth-logPaneChrome, 1)
	m.LogHeight = max(height-lipgloss.Height(titleStyle.Render("LOGS")), 1)
	m.ListHeight = max(height-lipgloss.Height(titleStyle.Render("TASKS")+"\n\n"), 1)
	m.ensureVisible()

	for _, node := range m.Tasks {
		node.Term.SetWidth(m.LogWidth)
		node.Term.SetHeight(m.LogHeight)
	}
}

func (m *Model) selectTask(name string) {
	for i, t := range m.Tasks {
		if t.Name == name {
			m.SelectedIdx = i
			break
		}
	}
	m.ensureVisible()
	if node := m.Selected(); node != nil {
		node.Term.ScrollToBottom()
	}
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.SelectedIdx < m.ListOffset {
		m.ListOffset = m.SelectedIdx
	} else if m.SelectedIdx >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.SelectedIdx - m.ListHeight + 1
	}
}
