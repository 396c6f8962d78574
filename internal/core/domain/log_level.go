package domain

import (
	"log/slog"
	"strings"

	"go.trai.ch/zerr"
)

// LogLevel orders log output from most to least verbose.
type LogLevel int

// Log levels, most verbose first.
const (
	LogLevelDebug LogLevel = iota + 1
	LogLevelInfo
	LogLevelLifecycle
	LogLevelWarn
	LogLevelQuiet
	LogLevelError
)

var logLevelNames = map[LogLevel]string{
	LogLevelDebug:     "debug",
	LogLevelInfo:      "info",
	LogLevelLifecycle: "lifecycle",
	LogLevelWarn:      "warn",
	LogLevelQuiet:     "quiet",
	LogLevelError:     "error",
}

var msbuildVerbosity = map[LogLevel]string{
	LogLevelDebug:     "diagnostic",
	LogLevelInfo:      "detailed",
	LogLevelLifecycle: "normal",
	LogLevelWarn:      "minimal",
	LogLevelQuiet:     "quiet",
	LogLevelError:     "quiet",
}

// ParseLogLevel parses a case-insensitive level name. The empty string yields def.
func ParseLogLevel(s string, def LogLevel) (LogLevel, error) {
	if s == "" {
		return def, nil
	}
	for level, name := range logLevelNames {
		if strings.EqualFold(s, name) {
			return level, nil
		}
	}
	return 0, zerr.With(zerr.Wrap(ErrUnknownLogLevel, "cannot parse log level"), "level", s)
}

func (l LogLevel) String() string {
	if name, ok := logLevelNames[l]; ok {
		return name
	}
	return "unknown"
}

// MSBuildVerbosity translates l into msbuild's -verbosity vocabulary.
func (l LogLevel) MSBuildVerbosity() (string, error) {
	v, ok := msbuildVerbosity[l]
	if !ok {
		return "", zerr.With(zerr.Wrap(ErrUnmappedVerbosity, "cannot map log level"), "level", l.String())
	}
	return v, nil
}

// SlogLevel maps l onto slog levels; lifecycle and quiet sit between the standard ones.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelLifecycle:
		return slog.LevelInfo + 2
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelQuiet:
		return slog.LevelWarn + 2
	default:
		return slog.LevelError
	}
}
