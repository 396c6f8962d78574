package domain

import "path/filepath"

const (
	// DroidnetDirName is the name of the internal workspace directory.
	DroidnetDirName = ".droidnet"

	// StoreDirName is the name of the build info store directory.
	StoreDirName = "store"

	// HostWiringFileName is the name of the host wiring file written on every run.
	HostWiringFileName = "host-wiring.json"

	// ConfigFileName is the name of the workspace configuration file.
	ConfigFileName = "droidnet.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultStorePath returns the default path for the build info store.
// It joins .droidnet and store.
func DefaultStorePath() string {
	return filepath.Join(DroidnetDirName, StoreDirName)
}

// DefaultHostWiringPath returns the default path for the host wiring file.
func DefaultHostWiringPath() string {
	return filepath.Join(DroidnetDirName, HostWiringFileName)
}
