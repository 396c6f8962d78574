// Package manifest reads the application package identifier from an Android manifest.
package manifest

import (
	"encoding/xml"
	"errors"
	"os"
	"strings"

	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ManifestReader = (*Reader)(nil)

// Reader implements ports.ManifestReader.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

type document struct {
	XMLName xml.Name `xml:"manifest"`
	Package string   `xml:"package,attr"`
}

// PackageName returns the package attribute of the root manifest element.
func (r *Reader) PackageName(path string) (string, error) {
	// #nosec G304 -- path comes from the staging layout
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", zerr.With(zerr.Wrap(domain.ErrManifestMissing, "cannot resolve package name"), "path", path)
		}
		return "", zerr.With(zerr.Wrap(errors.Join(domain.ErrManifestParseFailed, err), "cannot resolve package name"), "path", path)
	}

	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return "", zerr.With(zerr.Wrap(errors.Join(domain.ErrManifestParseFailed, err), "cannot resolve package name"), "path", path)
	}

	pkg := strings.TrimSpace(doc.Package)
	if pkg == "" {
		return "", zerr.With(zerr.Wrap(domain.ErrManifestPackageMissing, "cannot resolve package name"), "path", path)
	}
	return pkg, nil
}
