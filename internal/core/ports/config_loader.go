package ports

import "go.trai.ch/droidnet/internal/core/domain"

// ConfigLoader defines the interface for loading the workspace configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds droidnet.yaml by walking up from cwd, or reads path when it is not empty.
	Load(cwd, path string) (*domain.Config, error)
}
