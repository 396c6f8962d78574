package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	iofs "io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher provides hashing functionality for tasks and files.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}

	return hasher.Sum64(), nil
}

// ComputeInputHash computes a single hash over the task definition, the environment
// and the contents of the already resolved input files.
func (h *Hasher) ComputeInputHash(task *domain.Task, env map[string]string, inputs []string) (string, error) {
	hasher := xxhash.New()

	h.hashTaskDefinition(task, hasher)
	hashEnvironment(env, hasher)

	for _, input := range inputs {
		if err := h.hashFile(input, input, hasher); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

func (h *Hasher) hashTaskDefinition(task *domain.Task, hasher *xxhash.Digest) {
	writeField(hasher, task.Name.String())
	writeField(hasher, task.Kind.String())
	writeField(hasher, task.BuildType.Name)
	writeField(hasher, task.BuildType.CompilerConfigurationName)
	writeSection(hasher, domain.Strings(task.Inputs))
	writeSection(hasher, task.Excludes)
	writeSection(hasher, domain.Strings(task.Outputs))
	writeSection(hasher, domain.Strings(task.Dependencies))
	writeSection(hasher, task.Command)
	hashEnvironment(task.Environment, hasher)
	writeField(hasher, task.WorkingDir.String())
	writeField(hasher, strconv.FormatBool(task.AlwaysRun))
}

func writeField(hasher *xxhash.Digest, s string) {
	_, _ = hasher.WriteString(s)
	_, _ = hasher.Write([]byte{0})
}

func writeSection(hasher *xxhash.Digest, values []string) {
	for _, v := range values {
		writeField(hasher, v)
	}
	_, _ = hasher.Write([]byte{0})
}

// hashEnvironment hashes environment variables in a deterministic order.
func hashEnvironment(env map[string]string, hasher *xxhash.Digest) {
	for _, k := range slices.Sorted(maps.Keys(env)) {
		_, _ = hasher.WriteString(k)
		_, _ = hasher.Write([]byte{'='})
		writeField(hasher, env[k])
	}
	_, _ = hasher.Write([]byte{0})
}

// hashFile mixes name and the content hash of path into the digest.
func (h *Hasher) hashFile(name, path string, digest io.Writer) error {
	_, _ = digest.Write([]byte(name))
	_, _ = digest.Write([]byte{0})

	hash, err := h.ComputeFileHash(path)
	if err != nil {
		return err
	}

	if err := binary.Write(digest, binary.LittleEndian, hash); err != nil {
		return zerr.Wrap(err, "failed to write hash to digest")
	}
	return nil
}

// ComputeOutputHash computes the hash of the outputs. Directories are hashed
// recursively by relative file name and content, so a moved tree hashes the same.
func (h *Hasher) ComputeOutputHash(outputs []string, root string) (string, error) {
	sortedOutputs := slices.Sorted(slices.Values(outputs))

	hasher := xxhash.New()

	for _, output := range sortedOutputs {
		path := output
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, output)
		}

		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", zerr.With(zerr.Wrap(iofs.ErrNotExist, "output missing"), "path", path)
			}
			return "", zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", path)
		}

		writeField(hasher, output)
		if !info.IsDir() {
			if err := h.hashFile("", path, hasher); err != nil {
				return "", err
			}
			continue
		}

		for file, err := range h.walker.WalkFiles(path, nil) {
			if err != nil {
				return "", zerr.With(zerr.Wrap(err, "failed to walk output directory"), "path", file)
			}
			if err := h.hashFile(relSlash(path, file), file, hasher); err != nil {
				return "", err
			}
		}
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}
