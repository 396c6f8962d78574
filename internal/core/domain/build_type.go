package domain

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.trai.ch/zerr"
)

var validBuildTypeName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// BuildType is one value of the variant axis shared by both toolchains, e.g. "debug".
type BuildType struct {
	// Name is the unique key. It is used verbatim as a host staging path segment.
	Name string
	// CompilerConfigurationName is passed to msbuild as -property:Configuration.
	CompilerConfigurationName string
}

// NewBuildType validates name and returns a BuildType.
// An empty configuration name defaults to the capitalized build type name.
func NewBuildType(name, configurationName string) (BuildType, error) {
	if !validBuildTypeName.MatchString(name) {
		return BuildType{}, zerr.With(zerr.Wrap(ErrInvalidBuildType, "cannot declare build type"), "build_type", name)
	}
	if configurationName == "" {
		configurationName = Capitalize(name)
	}
	return BuildType{Name: name, CompilerConfigurationName: configurationName}, nil
}

// TaskSuffix is the capitalized form used inside task names, e.g. "Debug".
func (b BuildType) TaskSuffix() string {
	return Capitalize(b.Name)
}

// OutputSegment is the directory msbuild writes the configuration's bin and obj trees to.
func (b BuildType) OutputSegment() string {
	if b.CompilerConfigurationName == "" {
		return b.Name
	}
	return b.CompilerConfigurationName
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	sb.WriteRune(unicode.ToUpper(r))
	sb.WriteString(s[size:])
	return sb.String()
}
