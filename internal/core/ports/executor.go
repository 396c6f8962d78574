// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/droidnet/internal/core/domain"
)

// ProcessInvoker runs external executables.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type ProcessInvoker interface {
	// Run starts the invocation and blocks until it exits, streaming output to out.
	// A non-zero exit is returned as domain.ErrExternalProcessFailed together with the exit code.
	// Cancelling ctx kills the process.
	Run(ctx context.Context, inv domain.Invocation, out io.Writer) (exitCode int, err error)
}
