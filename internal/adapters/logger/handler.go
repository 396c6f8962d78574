package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/ui/output"
	"go.trai.ch/droidnet/internal/ui/style"
)

// PrettyHandler is a slog.Handler writing one colored line per record.
// Handlers derived through WithAttrs and WithGroup share the writer lock, so lines
// from concurrently finishing tasks never interleave.
type PrettyHandler struct {
	out   *termenv.Output
	mu    *sync.Mutex
	level slog.Leveler
	// attrs are preformatted key=value pairs, already qualified by the groups open at the time.
	attrs  []string
	groups string
}

// NewPrettyHandler creates a PrettyHandler writing to w. A nil w means stderr.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		mu:    new(sync.Mutex),
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var line strings.Builder
	symbol, color := h.decoration(r.Level)
	if symbol != "" {
		line.WriteString(symbol + " ")
	}
	line.WriteString(r.Message)

	for _, attr := range h.attrs {
		line.WriteString(" " + attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		line.WriteString(" " + formatAttr(h.groups, attr))
		return true
	})

	styled := h.out.String(line.String())
	if color != nil {
		styled = styled.Foreground(color)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.WriteString(styled.String() + "\n")
	return err
}

// decoration maps a droidnet log level to its symbol and color. Lifecycle lines stay uncolored.
func (h *PrettyHandler) decoration(level slog.Level) (string, termenv.Color) {
	switch {
	case level >= slog.LevelError:
		return style.Cross, h.out.Color(string(style.Red))
	case level == domain.LogLevelQuiet.SlogLevel():
		return "", h.out.Color(string(style.Droid))
	case level >= slog.LevelWarn:
		return style.Warning, h.out.Color(string(style.Yellow))
	case level == domain.LogLevelLifecycle.SlogLevel():
		return "", nil
	default:
		return "", h.out.Color(string(style.Slate))
	}
}

// WithAttrs implements slog.Handler.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = make([]string, len(h.attrs), len(h.attrs)+len(attrs))
	copy(clone.attrs, h.attrs)
	for _, attr := range attrs {
		clone.attrs = append(clone.attrs, formatAttr(h.groups, attr))
	}
	return &clone
}

// WithGroup implements slog.Handler. Groups nest.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = qualify(h.groups, name)
	return &clone
}

func formatAttr(groups string, attr slog.Attr) string {
	return qualify(groups, attr.Key) + "=" + attr.Value.String()
}

func qualify(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
