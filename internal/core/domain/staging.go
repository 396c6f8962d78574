package domain

import (
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// TemplateID names one staging path template.
type TemplateID int

// Runtime project templates, rooted at the project file's directory.
const (
	BinRoot TemplateID = iota + 1
	ObjRoot
	BinDir
	ObjDir
	ManifestFile
	JavaSourceDir
	PackageFile
)

// Host project templates, rooted at the host project directory.
const (
	HostJavaSourceDir TemplateID = iota + 100
	DisassemblyDir
	ShrinkRulesFile
	UnpackedPackageDir
	UnpackedAssembliesDir
	UnpackedNativeLibsDir
)

var templateNames = map[TemplateID]string{
	BinRoot:               "bin-root",
	ObjRoot:               "obj-root",
	BinDir:                "bin",
	ObjDir:                "obj",
	ManifestFile:          "manifest",
	JavaSourceDir:         "java-src",
	PackageFile:           "package",
	HostJavaSourceDir:     "host-java-src",
	DisassemblyDir:        "disassembly",
	ShrinkRulesFile:       "shrink-rules",
	UnpackedPackageDir:    "unpacked-package",
	UnpackedAssembliesDir: "unpacked-assemblies",
	UnpackedNativeLibsDir: "unpacked-native-libs",
}

func (id TemplateID) String() string {
	if name, ok := templateNames[id]; ok {
		return name
	}
	return "unknown"
}

const (
	// BuildTypePlaceholder is substituted with the build type name on the host side and
	// with the compiler configuration name on the runtime project side.
	BuildTypePlaceholder = "{buildType}"
	// PackagePlaceholder is substituted with the package name read from the manifest.
	PackagePlaceholder = "{package}"
)

// PathTemplate is a slash-separated relative path with named placeholders.
type PathTemplate string

// Expand substitutes the placeholders. An empty pkg leaves {package} untouched.
func (t PathTemplate) Expand(buildType, pkg string) string {
	s := strings.ReplaceAll(string(t), BuildTypePlaceholder, buildType)
	if pkg != "" {
		s = strings.ReplaceAll(s, PackagePlaceholder, pkg)
	}
	return filepath.FromSlash(s)
}

// PerBuildType reports whether the template varies with the build type.
func (t PathTemplate) PerBuildType() bool {
	return strings.Contains(string(t), BuildTypePlaceholder)
}

// LayoutStrategy is a named table of path templates rooted at one base directory.
type LayoutStrategy struct {
	name      string
	templates map[TemplateID]PathTemplate
}

const dotNetIntermediates = "build/intermediates/dot_net/" + BuildTypePlaceholder

// DotNetLayout stages inside the runtime project's own output tree.
var DotNetLayout = LayoutStrategy{
	name: "dotnet",
	templates: map[TemplateID]PathTemplate{
		BinRoot:       "bin",
		ObjRoot:       "obj",
		BinDir:        "bin/" + BuildTypePlaceholder,
		ObjDir:        "obj/" + BuildTypePlaceholder,
		ManifestFile:  "Properties/AndroidManifest.xml",
		JavaSourceDir: "obj/" + BuildTypePlaceholder + "/android/src",
		PackageFile:   "obj/" + BuildTypePlaceholder + "/android/bin/" + PackagePlaceholder + ".apk",
	},
}

// AndroidLayout stages inside the host project's intermediates tree.
var AndroidLayout = LayoutStrategy{
	name: "android",
	templates: map[TemplateID]PathTemplate{
		HostJavaSourceDir:     dotNetIntermediates + "/src",
		DisassemblyDir:        dotNetIntermediates + "/disassembled/Xamarin.Android.Build.Tasks",
		ShrinkRulesFile:       dotNetIntermediates + "/disassembled/Xamarin.Android.Build.Tasks/proguard_xamarin.cfg",
		UnpackedPackageDir:    dotNetIntermediates + "/apk",
		UnpackedAssembliesDir: dotNetIntermediates + "/apk/assemblies",
		UnpackedNativeLibsDir: dotNetIntermediates + "/apk/lib",
	},
}

// Name returns the strategy name.
func (l LayoutStrategy) Name() string {
	return l.name
}

// IDs returns the template IDs of the strategy in ascending order.
func (l LayoutStrategy) IDs() []TemplateID {
	ids := make([]TemplateID, 0, len(l.templates))
	for id := range l.templates {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Template returns the raw template for id.
func (l LayoutStrategy) Template(id TemplateID) (PathTemplate, bool) {
	t, ok := l.templates[id]
	return t, ok
}

// Resolve joins baseDir with the expanded template. It performs no I/O.
func (l LayoutStrategy) Resolve(baseDir, buildType string, id TemplateID) (string, error) {
	return l.ResolvePackage(baseDir, buildType, "", id)
}

// ResolvePackage is Resolve with the second placeholder filled in.
func (l LayoutStrategy) ResolvePackage(baseDir, buildType, pkg string, id TemplateID) (string, error) {
	t, ok := l.templates[id]
	if !ok {
		return "", zerr.With(zerr.With(zerr.Wrap(ErrUnknownTemplate, "cannot resolve staging path"), "layout", l.name), "template", id.String())
	}
	return filepath.Join(baseDir, t.Expand(buildType, pkg)), nil
}

// StagingRoots are the two base directories the layout strategies are rooted at.
type StagingRoots struct {
	// DotNetDir is the directory containing the runtime project file.
	DotNetDir string
	// HostDir is the host application project directory.
	HostDir string
}

// Resolve dispatches id to whichever strategy owns it, so callers need not know.
func (r StagingRoots) Resolve(buildType string, id TemplateID) (string, error) {
	if _, ok := DotNetLayout.Template(id); ok {
		return DotNetLayout.Resolve(r.DotNetDir, buildType, id)
	}
	return AndroidLayout.Resolve(r.HostDir, buildType, id)
}

func (r StagingRoots) mustResolve(buildType string, id TemplateID) string {
	p, err := r.Resolve(buildType, id)
	if err != nil {
		panic(err)
	}
	return p
}

// StagingLayout holds every concrete staging path for one build type.
// It is computed once and never mutated.
type StagingLayout struct {
	BuildType BuildType

	BinRoot      string
	ObjRoot      string
	BinDir       string
	ObjDir       string
	ManifestFile string
	JavaSource   string

	HostJavaSource      string
	DisassemblyDir      string
	ShrinkRulesFile     string
	UnpackedPackage     string
	UnpackedAssemblies  string
	UnpackedNativeLibs  string
	packageFileTemplate PathTemplate
	dotNetDir           string
}

// NewStagingLayout resolves all templates for bt. Runtime project paths follow the
// compiler configuration name because that is where msbuild writes.
func NewStagingLayout(roots StagingRoots, bt BuildType) StagingLayout {
	b, c := bt.Name, bt.OutputSegment()
	tmpl, _ := DotNetLayout.Template(PackageFile)
	return StagingLayout{
		BuildType:           bt,
		BinRoot:             roots.mustResolve(c, BinRoot),
		ObjRoot:             roots.mustResolve(c, ObjRoot),
		BinDir:              roots.mustResolve(c, BinDir),
		ObjDir:              roots.mustResolve(c, ObjDir),
		ManifestFile:        roots.mustResolve(c, ManifestFile),
		JavaSource:          roots.mustResolve(c, JavaSourceDir),
		HostJavaSource:      roots.mustResolve(b, HostJavaSourceDir),
		DisassemblyDir:      roots.mustResolve(b, DisassemblyDir),
		ShrinkRulesFile:     roots.mustResolve(b, ShrinkRulesFile),
		UnpackedPackage:     roots.mustResolve(b, UnpackedPackageDir),
		UnpackedAssemblies:  roots.mustResolve(b, UnpackedAssembliesDir),
		UnpackedNativeLibs:  roots.mustResolve(b, UnpackedNativeLibsDir),
		packageFileTemplate: tmpl,
		dotNetDir:           roots.DotNetDir,
	}
}

// PackageFile returns the compiler-produced package archive for the given package name.
func (l StagingLayout) PackageFile(pkg string) string {
	return filepath.Join(l.dotNetDir, l.packageFileTemplate.Expand(l.BuildType.OutputSegment(), pkg))
}
