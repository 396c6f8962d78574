package ports

import "go.trai.ch/droidnet/internal/core/domain"

//go:generate go run go.uber.org/mock/mockgen -source=collaborators.go -destination=mocks/mock_collaborators.go -package=mocks

// APIInfoLookup resolves a runtime-version descriptor for an Android API level.
type APIInfoLookup interface {
	// Find scans the v* subdirectories of searchRoot and returns the descriptor for level.
	Find(searchRoot string, level int) (domain.APIInfo, error)
}

// ManifestReader reads the package identifier from an Android manifest.
type ManifestReader interface {
	// PackageName returns the manifest's package attribute.
	PackageName(path string) (string, error)
}

// TreeCopier copies directory trees.
type TreeCopier interface {
	// CopyTree copies every file under src into dst, creating directories as needed.
	CopyTree(src, dst string) (files int, err error)
}

// ArchiveExtractor unpacks package archives.
type ArchiveExtractor interface {
	// Extract unpacks archive into dst and returns the number of files written.
	Extract(archive, dst string) (files int, err error)
}
