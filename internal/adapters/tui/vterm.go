package tui

import (
	"bytes"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vito/midterm"
)

// Vterm holds one task's output in a virtual terminal so that progress bars and
// cursor movement from msbuild and gradle render the way they would in a shell.
type Vterm struct {
	vt      *midterm.Terminal
	Offset  int
	Height  int
	Width   int
	viewBuf *bytes.Buffer
	mu      sync.Mutex
}

// NewVterm creates an empty Vterm.
func NewVterm() *Vterm {
	return &Vterm{
		vt:      midterm.NewAutoResizingTerminal(),
		viewBuf: new(bytes.Buffer),
	}
}

// Write feeds process output to the terminal. A view scrolled to the bottom stays there.
func (v *Vterm) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	stickToBottom := v.Offset >= v.maxOffset()
	n, err := v.vt.Write(p)
	if stickToBottom {
		v.Offset = v.maxOffset()
	}
	return n, err
}

// SetHeight sets the number of visible rows.
func (v *Vterm) SetHeight(h int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if h < 1 {
		h = 1
	}
	stickToBottom := v.Offset >= v.maxOffset()
	v.Height = h
	if stickToBottom {
		v.Offset = v.maxOffset()
	}
	v.clampLocked()
}

// SetWidth sets the number of visible columns.
func (v *Vterm) SetWidth(w int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if w < 1 {
		w = 1
	}
	v.Width = w
	v.vt.ResizeX(w)
}

// UsedHeight returns the number of lines written so far.
func (v *Vterm) UsedHeight() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vt.UsedHeight()
}

// ScrollToBottom moves the view to the last written line.
func (v *Vterm) ScrollToBottom() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Offset = v.maxOffset()
}

// View renders the visible rows.
func (v *Vterm) View() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.clampLocked()
	v.viewBuf.Reset()
	for i := 0; i < v.Height; i++ {
		row := v.Offset + i
		if row >= v.vt.UsedHeight() {
			break
		}
		if i > 0 {
			_ = v.viewBuf.WriteByte('\n')
		}
		_ = v.vt.RenderLine(v.viewBuf, row)
	}
	return v.viewBuf.String()
}

// Update scrolls the view on navigation keys.
func (v *Vterm) Update(msg tea.Msg) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	switch key.String() {
	case "pgup", "ctrl+u":
		v.Offset -= v.Height
	case "pgdown", "ctrl+d":
		v.Offset += v.Height
	case "home", "g":
		v.Offset = 0
	case "end", "G":
		v.Offset = v.maxOffset()
	}
	v.clampLocked()
}

func (v *Vterm) clampLocked() {
	if limit := v.maxOffset(); v.Offset > limit {
		v.Offset = limit
	}
	if v.Offset < 0 {
		v.Offset = 0
	}
}

func (v *Vterm) maxOffset() int {
	return max(v.vt.UsedHeight()-v.Height, 0)
}
