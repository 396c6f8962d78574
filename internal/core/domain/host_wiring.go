package domain

// NoCompressExtensions must be stored uncompressed in the final application package
// so the runtime can map assemblies directly.
var NoCompressExtensions = []string{"dll", "dll.config", "pdb", "mdb", "mj", "jm", "environment"}

// AssembliesInclude selects the assemblies from the unpacked package as host resources.
const AssembliesInclude = "assemblies/**"

// HostSourceSet lists the staged directories one host build type consumes.
type HostSourceSet struct {
	JavaSrcDir       string   `json:"java_src_dir"`
	ResourcesDir     string   `json:"resources_dir"`
	ResourceIncludes []string `json:"resource_includes"`
	JNILibsDir       string   `json:"jni_libs_dir"`
	ProguardFile     string   `json:"proguard_file"`
}

// HostWiring is everything the host build must be pointed at to consume the staging trees.
type HostWiring struct {
	BuildTypes     map[string]HostSourceSet `json:"build_types"`
	RuntimeVersion string                   `json:"runtime_version,omitempty"`
	APIJars        []string                 `json:"api_jars,omitempty"`
	NoCompress     []string                 `json:"no_compress"`
}

// NewHostSourceSet derives the source set from a staging layout.
func NewHostSourceSet(l StagingLayout) HostSourceSet {
	return HostSourceSet{
		JavaSrcDir:       l.HostJavaSource,
		ResourcesDir:     l.UnpackedPackage,
		ResourceIncludes: []string{AssembliesInclude},
		JNILibsDir:       l.UnpackedNativeLibs,
		ProguardFile:     l.ShrinkRulesFile,
	}
}
