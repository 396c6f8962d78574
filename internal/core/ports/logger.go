package ports

import "go.trai.ch/droidnet/internal/core/domain"

// Logger defines the interface for logging.
//
//go:generate go run go.uber.org/mock/mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	// Log emits msg at level.
	Log(level domain.LogLevel, msg string)
	Info(msg string)
	Lifecycle(msg string)
	Warn(msg string)
	Error(err error)
}
