package domain

import (
	"fmt"
	"path/filepath"
)

const (
	// DefaultMonoFramework is the Mono framework installation on macOS.
	DefaultMonoFramework = "/Library/Frameworks/Mono.framework/Versions/Current"
	// DefaultXamarinAndroid is the Xamarin.Android framework installation on macOS.
	DefaultXamarinAndroid = "/Library/Frameworks/Xamarin.Android.framework/Versions/Current"
)

// Toolchain locates the external executables and prebuilt libraries.
// Empty fields fall back to paths derived from the framework roots.
type Toolchain struct {
	MonoFramework  string
	XamarinAndroid string
	Monodis        string
	MSBuild        string
	BuildTasksDLL  string
}

// WithDefaults fills every empty field.
func (t Toolchain) WithDefaults() Toolchain {
	if t.MonoFramework == "" {
		t.MonoFramework = DefaultMonoFramework
	}
	if t.XamarinAndroid == "" {
		t.XamarinAndroid = DefaultXamarinAndroid
	}
	if t.Monodis == "" {
		t.Monodis = filepath.Join(t.MonoFramework, "bin", "monodis")
	}
	if t.MSBuild == "" {
		t.MSBuild = filepath.Join(t.MSBuildCommandsDir(), "msbuild")
	}
	if t.BuildTasksDLL == "" {
		t.BuildTasksDLL = filepath.Join(t.xbuildAndroidDir(), "Xamarin.Android.Build.Tasks.dll")
	}
	return t
}

// MSBuildCommandsDir is prepended to PATH for msbuild so its helper scripts find mono.
func (t Toolchain) MSBuildCommandsDir() string {
	return filepath.Join(t.MonoFramework, "Commands")
}

// MonoAndroidVersionsDir holds one v* directory per installed MonoAndroid profile.
func (t Toolchain) MonoAndroidVersionsDir() string {
	return filepath.Join(t.XamarinAndroid, "lib", "xamarin.android", "xbuild-frameworks", "MonoAndroid")
}

// JavaRuntimeJar is the Java side of the Xamarin runtime.
func (t Toolchain) JavaRuntimeJar() string {
	return filepath.Join(t.xbuildAndroidDir(), "java_runtime.jar")
}

// MonoAndroidJar is the binding jar for one MonoAndroid profile version, e.g. "v11.0".
func (t Toolchain) MonoAndroidJar(version string) string {
	return filepath.Join(t.MonoAndroidVersionsDir(), version, "mono.android.jar")
}

func (t Toolchain) xbuildAndroidDir() string {
	return filepath.Join(t.XamarinAndroid, "lib", "xamarin.android", "xbuild", "Xamarin", "Android")
}

// APIInfo is one parsed runtime-version descriptor.
type APIInfo struct {
	Level   int
	Version string
}

func (a APIInfo) String() string {
	return fmt.Sprintf("level %d (%s)", a.Level, a.Version)
}
