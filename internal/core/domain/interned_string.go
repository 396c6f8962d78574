package domain

import "unique"

// InternedString wraps a unique.Handle[string].
// Task names and staging paths repeat across every build type, so they are interned.
type InternedString struct {
	h unique.Handle[string]
}

// NewInternedString interns s.
func NewInternedString(s string) InternedString {
	return InternedString{h: unique.Make(s)}
}

// NewInternedStrings interns every element of s.
func NewInternedStrings(s []string) []InternedString {
	res := make([]InternedString, len(s))
	for i, v := range s {
		res[i] = NewInternedString(v)
	}
	return res
}

// Strings converts interned values back to plain strings.
func Strings(is []InternedString) []string {
	res := make([]string, len(is))
	for i, v := range is {
		res[i] = v.String()
	}
	return res
}

// String returns the underlying string value.
// The zero value yields the empty string.
func (is InternedString) String() string {
	if is == (InternedString{}) {
		return ""
	}
	return is.h.Value()
}

// IsZero reports whether the value was never set.
func (is InternedString) IsZero() bool {
	return is == (InternedString{})
}

// MarshalText implements encoding.TextMarshaler.
func (is InternedString) MarshalText() ([]byte, error) {
	return []byte(is.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (is *InternedString) UnmarshalText(text []byte) error {
	is.h = unique.Make(string(text))
	return nil
}
