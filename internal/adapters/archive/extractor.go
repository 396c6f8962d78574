// Package archive unpacks application packages produced by the runtime compiler.
package archive

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArchiveExtractor = (*Extractor)(nil)

// Extractor implements ports.ArchiveExtractor for zip-based packages (.apk).
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract unpacks every file entry of archive under dst.
// Entries that would land outside dst are rejected before anything is written.
func (e *Extractor) Extract(archive, dst string) (int, error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(errors.Join(domain.ErrArchiveOpenFailed, err), "cannot unpack package"), "archive", archive)
	}
	defer r.Close() //nolint:errcheck // Read-only handle

	targets := make([]string, len(r.File))
	for i, f := range r.File {
		target, err := entryPath(dst, f.Name)
		if err != nil {
			return 0, zerr.With(err, "archive", archive)
		}
		targets[i] = target
	}

	if err := os.MkdirAll(dst, domain.DirPerm); err != nil {
		return 0, zerr.With(zerr.Wrap(errors.Join(domain.ErrArchiveExtractFailed, err), "cannot unpack package"), "path", dst)
	}

	files := 0
	for i, f := range r.File {
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targets[i], domain.DirPerm); err != nil {
				return files, extractErr(err, archive, f.Name)
			}
			continue
		}
		if err := writeEntry(f, targets[i]); err != nil {
			return files, extractErr(err, archive, f.Name)
		}
		files++
	}
	return files, nil
}

func entryPath(dst, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", zerr.With(zerr.Wrap(domain.ErrArchiveEntryUnsafe, "cannot unpack package"), "entry", name)
	}
	return filepath.Join(dst, clean), nil
}

func writeEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return err
	}

	in, err := f.Open()
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // Read-only handle

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, domain.FilePerm) //nolint:gosec // Target is confined to dst
	if err != nil {
		return err
	}
	// #nosec G110 -- packages come from the local compiler, not untrusted input
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func extractErr(err error, archive, entry string) error {
	return zerr.With(zerr.With(zerr.Wrap(errors.Join(domain.ErrArchiveExtractFailed, err), "cannot unpack package"), "archive", archive), "entry", entry)
}
