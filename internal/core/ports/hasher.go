package ports

import "go.trai.ch/droidnet/internal/core/domain"

// Hasher defines the interface for computing hashes.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeInputHash hashes the task definition, env and the contents of the resolved input files.
	ComputeInputHash(task *domain.Task, env map[string]string, inputs []string) (string, error)
	// ComputeOutputHash hashes the declared outputs. Directories are hashed recursively.
	ComputeOutputHash(outputs []string, root string) (string, error)
}
