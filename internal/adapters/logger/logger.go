// Package logger implements a logging adapter using log/slog.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/core/ports"
)

var _ ports.Logger = (*Logger)(nil)

// messager describes an error that can report its own message without the chain,
// as zerr.Error does.
type messager interface {
	Message() string
}

// metadataer describes an error carrying key-value metadata, as zerr.Error does.
type metadataer interface {
	Metadata() map[string]any
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger   *slog.Logger
	level    *slog.LevelVar
	mu       sync.RWMutex
	jsonMode bool
	output   io.Writer
}

// New creates a Logger writing pretty output to stderr at the lifecycle threshold.
func New() *Logger {
	l := &Logger{level: &slog.LevelVar{}, output: os.Stderr}
	l.level.Set(domain.LogLevelLifecycle.SlogLevel())
	l.rebuild()
	return l
}

// SetLevel sets the threshold below which messages are dropped.
func (l *Logger) SetLevel(level domain.LogLevel) {
	l.level.Set(level.SlogLevel())
}

// SetOutput updates the logger's output destination. A nil w restores os.Stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetJSON switches between JSON and pretty logging, keeping the output destination.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	l.rebuild()
}

func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: l.level, ReplaceAttr: replaceLevelName}
	if l.jsonMode {
		l.logger = slog.New(slog.NewJSONHandler(l.output, opts))
		return
	}
	l.logger = slog.New(NewPrettyHandler(l.output, opts))
}

// replaceLevelName prints the custom levels by their names instead of "INFO+2".
func replaceLevelName(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok {
		a.Value = slog.StringValue(levelName(level))
	}
	return a
}

func levelName(level slog.Level) string {
	switch level {
	case domain.LogLevelLifecycle.SlogLevel():
		return "LIFECYCLE"
	case domain.LogLevelQuiet.SlogLevel():
		return "QUIET"
	default:
		return level.String()
	}
}

// Log logs msg at level.
func (l *Logger) Log(level domain.LogLevel, msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Log(context.Background(), level.SlogLevel(), msg)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.Log(domain.LogLevelInfo, msg)
}

// Lifecycle logs a build progress message, shown by default.
func (l *Logger) Lifecycle(msg string) {
	l.Log(domain.LogLevelLifecycle, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.Log(domain.LogLevelWarn, msg)
}

// Error logs err with its cause chain.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}
	l.logger.Error(formatErrorEntries(collectErrorEntries(err)))
}

// ErrorEntry is one link of an error chain.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries walks the chain. A standard error ends the walk with its full text.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	var pending map[string]any
	for current := err; current != nil; current = errors.Unwrap(current) {
		m, ok := current.(messager)
		if !ok {
			entries = append(entries, ErrorEntry{Message: current.Error(), Metadata: pending})
			break
		}

		var md map[string]any
		if withMeta, ok := current.(metadataer); ok {
			md = withMeta.Metadata()
		}
		// zerr.With on a standard error adds an empty wrapper; its metadata belongs to the cause.
		if m.Message() == "" {
			pending = mergeMetadata(pending, md)
			continue
		}
		entries = append(entries, ErrorEntry{Message: m.Message(), Metadata: mergeMetadata(md, pending)})
		pending = nil
	}
	return entries
}

func mergeMetadata(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	maps.Copy(dst, src)
	return dst
}

func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")
		indent := "      "
		if i == 0 {
			lines = append(lines, "Error: "+msgLines[0])
			indent = "       "
		} else {
			if i == 1 {
				lines = append(lines, "", "  Caused by:")
			}
			lines = append(lines, "    → "+msgLines[0])
		}
		for _, line := range msgLines[1:] {
			lines = append(lines, indent+line)
		}
		for _, k := range slices.Sorted(maps.Keys(entry.Metadata)) {
			lines = append(lines, fmt.Sprintf("%s%s: %v", indent, k, entry.Metadata[k]))
		}
	}

	return strings.Join(lines, "\n")
}
