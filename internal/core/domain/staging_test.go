package domain_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/droidnet/internal/core/domain"
)

var roots = domain.StagingRoots{
	DotNetDir: filepath.FromSlash("/ws/dotnet/Library"),
	HostDir:   filepath.FromSlash("/ws/android/app"),
}

func TestLayoutStrategy_Resolve(t *testing.T) {
	tests := []struct {
		layout domain.LayoutStrategy
		base   string
		id     domain.TemplateID
		want   string
	}{
		{domain.DotNetLayout, roots.DotNetDir, domain.BinRoot, "/ws/dotnet/Library/bin"},
		{domain.DotNetLayout, roots.DotNetDir, domain.ObjDir, "/ws/dotnet/Library/obj/debug"},
		{domain.DotNetLayout, roots.DotNetDir, domain.ManifestFile, "/ws/dotnet/Library/Properties/AndroidManifest.xml"},
		{domain.DotNetLayout, roots.DotNetDir, domain.JavaSourceDir, "/ws/dotnet/Library/obj/debug/android/src"},
		{domain.AndroidLayout, roots.HostDir, domain.HostJavaSourceDir, "/ws/android/app/build/intermediates/dot_net/debug/src"},
		{
			domain.AndroidLayout, roots.HostDir, domain.ShrinkRulesFile,
			"/ws/android/app/build/intermediates/dot_net/debug/disassembled/Xamarin.Android.Build.Tasks/proguard_xamarin.cfg",
		},
		{domain.AndroidLayout, roots.HostDir, domain.UnpackedNativeLibsDir, "/ws/android/app/build/intermediates/dot_net/debug/apk/lib"},
	}
	for _, tt := range tests {
		t.Run(tt.layout.Name()+"/"+tt.id.String(), func(t *testing.T) {
			got, err := tt.layout.Resolve(tt.base, "debug", tt.id)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestLayoutStrategy_UnknownTemplate(t *testing.T) {
	_, err := domain.DotNetLayout.Resolve(roots.DotNetDir, "debug", domain.UnpackedPackageDir)
	require.ErrorIs(t, err, domain.ErrUnknownTemplate)

	_, err = domain.AndroidLayout.Resolve(roots.HostDir, "debug", domain.TemplateID(999))
	require.ErrorIs(t, err, domain.ErrUnknownTemplate)
}

func TestLayoutStrategy_ResolvePackage(t *testing.T) {
	got, err := domain.DotNetLayout.ResolvePackage(roots.DotNetDir, "release", "com.example.lib", domain.PackageFile)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/ws/dotnet/Library/obj/release/android/bin/com.example.lib.apk"), got)
}

func TestStagingRoots_Resolve(t *testing.T) {
	got, err := roots.Resolve("debug", domain.UnpackedPackageDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/ws/android/app/build/intermediates/dot_net/debug/apk"), got)

	got, err = roots.Resolve("debug", domain.BinDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/ws/dotnet/Library/bin/debug"), got)
}

func TestStagingLayout_NoCollisionAcrossBuildTypes(t *testing.T) {
	debug := domain.NewStagingLayout(roots, domain.BuildType{Name: "debug", CompilerConfigurationName: "Debug"})
	release := domain.NewStagingLayout(roots, domain.BuildType{Name: "release", CompilerConfigurationName: "Release"})

	for _, layout := range []domain.LayoutStrategy{domain.DotNetLayout, domain.AndroidLayout} {
		base := roots.DotNetDir
		if layout.Name() == domain.AndroidLayout.Name() {
			base = roots.HostDir
		}
		for _, id := range layout.IDs() {
			tmpl, ok := layout.Template(id)
			require.True(t, ok)

			a, err := layout.Resolve(base, "debug", id)
			require.NoError(t, err)
			b, err := layout.Resolve(base, "release", id)
			require.NoError(t, err)

			if tmpl.PerBuildType() {
				assert.NotEqual(t, a, b, "%s/%s collides", layout.Name(), id)
			} else {
				assert.Equal(t, a, b, "%s/%s is project level", layout.Name(), id)
			}
		}
	}

	assert.NotEqual(t, debug.PackageFile("lib"), release.PackageFile("lib"))
	assert.NotEqual(t, debug.HostJavaSource, release.HostJavaSource)
	assert.Equal(t, debug.ManifestFile, release.ManifestFile)
}

func TestStagingLayout_RuntimePathsFollowCompilerConfiguration(t *testing.T) {
	l := domain.NewStagingLayout(roots, domain.BuildType{Name: "release", CompilerConfigurationName: "AppStore"})

	assert.Equal(t, filepath.FromSlash("/ws/dotnet/Library/bin/AppStore"), l.BinDir)
	assert.Equal(t, filepath.FromSlash("/ws/dotnet/Library/obj/AppStore"), l.ObjDir)
	assert.Equal(t, filepath.FromSlash("/ws/dotnet/Library/obj/AppStore/android/src"), l.JavaSource)
	assert.Equal(t, filepath.FromSlash("/ws/dotnet/Library/obj/AppStore/android/bin/lib.apk"), l.PackageFile("lib"))
	assert.Equal(t, filepath.FromSlash("/ws/android/app/build/intermediates/dot_net/release/src"), l.HostJavaSource)
	assert.Equal(t, filepath.FromSlash("/ws/android/app/build/intermediates/dot_net/release/apk"), l.UnpackedPackage)
}

func TestStagingLayout_CompileOutputsCoverStagedInputs(t *testing.T) {
	l := domain.NewStagingLayout(roots, domain.BuildType{Name: "debug"})

	for _, consumed := range []string{l.JavaSource, l.PackageFile("com.example.lib")} {
		rel, err := filepath.Rel(l.ObjDir, consumed)
		require.NoError(t, err)
		assert.NotContains(t, rel, "..", "%s must live under %s", consumed, l.ObjDir)
	}
}

func TestPathTemplate_Expand(t *testing.T) {
	tmpl := domain.PathTemplate("obj/{buildType}/android/bin/{package}.apk")

	assert.Equal(t, filepath.FromSlash("obj/debug/android/bin/{package}.apk"), tmpl.Expand("debug", ""))
	assert.Equal(t, filepath.FromSlash("obj/debug/android/bin/lib.apk"), tmpl.Expand("debug", "lib"))
	assert.True(t, tmpl.PerBuildType())
	assert.False(t, domain.PathTemplate("bin").PerBuildType())
}
