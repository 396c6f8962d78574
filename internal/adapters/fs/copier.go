package fs

import (
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.TreeCopier = (*Copier)(nil)

// Copier copies directory trees file by file.
type Copier struct{}

// NewCopier creates a new Copier.
func NewCopier() *Copier {
	return &Copier{}
}

// CopyTree copies every regular file under src into dst.
func (c *Copier) CopyTree(src, dst string) (int, error) {
	files := 0
	err := filepath.WalkDir(src, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, domain.DirPerm)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		files++
		return nil
	})
	if err != nil {
		return files, zerr.With(zerr.With(zerr.Wrap(err, domain.ErrCopyFailed.Error()), "src", src), "dst", dst)
	}
	return files, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // Path comes from the staging layout
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // Read-only handle

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()) //nolint:gosec // Path comes from the staging layout
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
