package app

import (
	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/core/ports"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
}

// levelLogger is implemented by loggers whose output can be tuned after construction.
type levelLogger interface {
	SetLevel(level domain.LogLevel)
	SetJSON(enable bool)
}

// ConfigureLogging applies the global logging flags. Loggers that cannot be tuned are left as is.
func (c *Components) ConfigureLogging(level domain.LogLevel, jsonOutput bool) {
	l, ok := c.Logger.(levelLogger)
	if !ok {
		return
	}
	l.SetLevel(level)
	l.SetJSON(jsonOutput)
}
