package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrMissingDependency is returned when a task references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTaskNotFound is returned when a requested task is not found in the graph.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrNoTargetsSpecified is returned when no targets are specified for the run command.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrUnknownTemplate is returned when a layout strategy has no template for the requested ID.
	ErrUnknownTemplate = zerr.New("unknown path template")

	// ErrInvalidBuildType is returned when a build type name cannot be used as a path segment.
	ErrInvalidBuildType = zerr.New("invalid build type name")

	// ErrNoBuildTypes is returned when the configuration declares no build types.
	ErrNoBuildTypes = zerr.New("no build types declared")

	// ErrDuplicateCompilerConfiguration is returned when two build types would share
	// the runtime project's bin and obj directories.
	ErrDuplicateCompilerConfiguration = zerr.New("build types share a compiler configuration")

	// ErrSolutionFileMissing is returned when the configured solution file does not exist.
	ErrSolutionFileMissing = zerr.New("solution file does not exist")

	// ErrProjectFileMissing is returned when the configured project file does not exist.
	ErrProjectFileMissing = zerr.New("project file does not exist")

	// ErrManifestMissing is returned when the runtime project's manifest file does not exist.
	ErrManifestMissing = zerr.New("manifest is required but does not exist")

	// ErrManifestPackageMissing is returned when the manifest has no package attribute.
	ErrManifestPackageMissing = zerr.New("failed to find the 'package' attribute in manifest file")

	// ErrManifestParseFailed is returned when the manifest is not well-formed XML.
	ErrManifestParseFailed = zerr.New("failed to parse manifest file")

	// ErrUnmappedVerbosity is returned when a log level has no msbuild verbosity mapping.
	ErrUnmappedVerbosity = zerr.New("no msbuild verbosity mapping for log level")

	// ErrUnknownLogLevel is returned when a log level name is not recognized.
	ErrUnknownLogLevel = zerr.New("unknown log level")

	// ErrHostTaskMissing is returned when a host lifecycle task referenced during linking is not declared.
	ErrHostTaskMissing = zerr.New("host lifecycle task is not declared")

	// ErrPlanNotDeclared is returned when Link is called on a plan that was never declared.
	ErrPlanNotDeclared = zerr.New("plan has not been declared")

	// ErrDescriptorRootMissing is returned when the runtime-version descriptor search root does not exist.
	ErrDescriptorRootMissing = zerr.New("descriptor search directory does not exist")

	// ErrDescriptorMalformed is returned when a runtime-version descriptor is missing a field.
	ErrDescriptorMalformed = zerr.New("malformed api info descriptor")

	// ErrAPILevelNotFound is returned when no descriptor matches the requested API level.
	ErrAPILevelNotFound = zerr.New("did not find runtime version for api level")

	// ErrOutputPathOutsideRoot is returned when an output path is outside the workspace root.
	ErrOutputPathOutsideRoot = zerr.New("output path is outside workspace root")

	// ErrInputNotFound is returned when a declared input file or directory is not found.
	ErrInputNotFound = zerr.New("input not found")

	// ErrInvalidTaskName is returned when a task name contains invalid characters.
	ErrInvalidTaskName = zerr.New("invalid task name")

	// ErrReservedTaskName is returned when a host task uses a reserved name (e.g., "all").
	ErrReservedTaskName = zerr.New("task name 'all' is reserved")

	// ErrStoreCreateFailed is returned when the build info store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create build info store directory")

	// ErrStoreReadFailed is returned when the build info cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read build info")

	// ErrStoreUnmarshalFailed is returned when the build info cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal build info")

	// ErrStoreMarshalFailed is returned when the build info cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal build info")

	// ErrStoreWriteFailed is returned when the build info cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write build info")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigInvalid is returned when the config file fails validation.
	ErrConfigInvalid = zerr.New("invalid config file")

	// ErrConfigNotFound is returned when the config file cannot be found.
	ErrConfigNotFound = zerr.New("could not find droidnet.yaml")

	// ErrBuildExecutionFailed is returned when the build execution fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrTaskExecutionFailed is returned when a task execution fails.
	ErrTaskExecutionFailed = zerr.New("task execution failed")

	// ErrExternalProcessFailed is returned when an external executable exits with a non-zero code.
	ErrExternalProcessFailed = zerr.New("external process failed")

	// ErrProcessStartFailed is returned when an external executable cannot be started.
	ErrProcessStartFailed = zerr.New("failed to start external process")

	// ErrInputResolutionFailed is returned when input resolution fails.
	ErrInputResolutionFailed = zerr.New("failed to resolve inputs")

	// ErrInputHashComputationFailed is returned when input hash computation fails.
	ErrInputHashComputationFailed = zerr.New("failed to compute input hash")

	// ErrOutputHashComputationFailed is returned when output hash computation fails.
	ErrOutputHashComputationFailed = zerr.New("failed to compute output hash")

	// ErrFailedToGetRoot is returned when the workspace root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of workspace root")

	// ErrFailedToGetOutputPath is returned when an output path cannot be determined.
	ErrFailedToGetOutputPath = zerr.New("failed to get absolute path of output")

	// ErrFailedToResolveRelativePath is returned when a relative path cannot be resolved.
	ErrFailedToResolveRelativePath = zerr.New("failed to resolve relative path")

	// ErrFailedToCleanOutput is returned when cleaning an output path fails.
	ErrFailedToCleanOutput = zerr.New("failed to clean output")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrPathStatFailed is returned when stating a path fails.
	ErrPathStatFailed = zerr.New("failed to stat path")

	// ErrCopyFailed is returned when staging generated sources fails.
	ErrCopyFailed = zerr.New("failed to copy directory tree")

	// ErrArchiveOpenFailed is returned when a package archive cannot be opened.
	ErrArchiveOpenFailed = zerr.New("failed to open package archive")

	// ErrArchiveEntryUnsafe is returned when an archive entry would escape the destination directory.
	ErrArchiveEntryUnsafe = zerr.New("archive entry escapes destination")

	// ErrArchiveExtractFailed is returned when an archive entry cannot be extracted.
	ErrArchiveExtractFailed = zerr.New("failed to extract archive entry")

	// ErrStagingResetFailed is returned when a staging directory cannot be wiped and recreated.
	ErrStagingResetFailed = zerr.New("failed to reset staging directory")

	// ErrUnknownTTYMode is returned when the --tty flag value is not auto, always or never.
	ErrUnknownTTYMode = zerr.New("unknown tty mode")

	// ErrUnknownOutputMode is returned when the --output flag value is not auto, tui or linear.
	ErrUnknownOutputMode = zerr.New("unknown output mode")

	// ErrHostWiringWriteFailed is returned when the host wiring file cannot be written.
	ErrHostWiringWriteFailed = zerr.New("failed to write host wiring")

	// ErrLogStreamClosed is returned when task output is written after its span ended.
	ErrLogStreamClosed = zerr.New("task log stream is closed")
)

// configurationErrors are the sentinels that abort a build during configuration,
// before any task runs.
var configurationErrors = []error{
	ErrInvalidBuildType,
	ErrNoBuildTypes,
	ErrDuplicateCompilerConfiguration,
	ErrSolutionFileMissing,
	ErrProjectFileMissing,
	ErrManifestMissing,
	ErrManifestPackageMissing,
	ErrManifestParseFailed,
	ErrUnmappedVerbosity,
	ErrUnknownLogLevel,
	ErrHostTaskMissing,
	ErrDescriptorRootMissing,
	ErrDescriptorMalformed,
	ErrAPILevelNotFound,
	ErrConfigReadFailed,
	ErrConfigParseFailed,
	ErrConfigInvalid,
	ErrConfigNotFound,
	ErrInvalidTaskName,
	ErrReservedTaskName,
	ErrTaskAlreadyExists,
	ErrMissingDependency,
	ErrCycleDetected,
}

// IsConfigurationError reports whether err belongs to the configuration error class.
func IsConfigurationError(err error) bool {
	for _, target := range configurationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
