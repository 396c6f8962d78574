package ports

// InputResolver defines the interface for resolving declared inputs into files.
//
//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type InputResolver interface {
	// ResolveInputs expands files, directories and globs into a sorted list of files,
	// dropping files under directory inputs that match any exclude pattern.
	ResolveInputs(inputs, excludes []string, root string) ([]string, error)
}
