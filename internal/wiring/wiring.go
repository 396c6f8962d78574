// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/droidnet/internal/adapters/apiinfo"
	_ "go.trai.ch/droidnet/internal/adapters/archive"
	_ "go.trai.ch/droidnet/internal/adapters/cas"
	_ "go.trai.ch/droidnet/internal/adapters/config"
	_ "go.trai.ch/droidnet/internal/adapters/fs"
	_ "go.trai.ch/droidnet/internal/adapters/linear"
	_ "go.trai.ch/droidnet/internal/adapters/logger"
	_ "go.trai.ch/droidnet/internal/adapters/manifest"
	_ "go.trai.ch/droidnet/internal/adapters/shell"
	_ "go.trai.ch/droidnet/internal/adapters/telemetry"
	_ "go.trai.ch/droidnet/internal/adapters/tui"
	_ "go.trai.ch/droidnet/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/droidnet/internal/app"
	_ "go.trai.ch/droidnet/internal/engine/plan"
	_ "go.trai.ch/droidnet/internal/engine/scheduler"
)
