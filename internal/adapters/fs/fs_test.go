package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/droidnet/internal/adapters/fs"
	"go.trai.ch/droidnet/internal/core/domain"
)

func mustWriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func collect(t *testing.T, w *fs.Walker, root string, excludes []string) []string {
	t.Helper()
	var files []string
	for f, err := range w.WalkFiles(root, excludes) {
		require.NoError(t, err)
		rel, _ := filepath.Rel(root, f)
		files = append(files, filepath.ToSlash(rel))
	}
	return files
}

func TestWalker_WalkFiles(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	mustWriteFile(t, tmpDir, "App.sln", "sln")
	mustWriteFile(t, tmpDir, "Lib/Logger.cs", "class Logger {}")
	mustWriteFile(t, tmpDir, "Lib/bin/Debug/Lib.dll", "dll")
	mustWriteFile(t, tmpDir, "Lib/obj/Debug/android/src/Foo.java", "java")
	mustWriteFile(t, tmpDir, ".git/config", "git")
	mustWriteFile(t, tmpDir, ".jj/store", "jj")
	mustWriteFile(t, tmpDir, ".vs/state", "vs")
	mustWriteFile(t, tmpDir, "Lib/.DS_Store", "finder")

	walker := fs.NewWalker()

	t.Run("no excludes skips vcs directories only", func(t *testing.T) {
		t.Parallel()
		assert.ElementsMatch(t, []string{
			"App.sln",
			"Lib/Logger.cs",
			"Lib/bin/Debug/Lib.dll",
			"Lib/obj/Debug/android/src/Foo.java",
			".vs/state",
			"Lib/.DS_Store",
		}, collect(t, walker, tmpDir, nil))
	})

	t.Run("default excludes", func(t *testing.T) {
		t.Parallel()
		assert.ElementsMatch(t, []string{
			"App.sln",
			"Lib/Logger.cs",
		}, collect(t, walker, tmpDir, domain.DefaultInputExcludes))
	})

	t.Run("differently named output directory escapes the rule", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		mustWriteFile(t, dir, "Lib/out/Lib.dll", "dll")
		assert.Equal(t, []string{"Lib/out/Lib.dll"}, collect(t, walker, dir, domain.DefaultInputExcludes))
	})

	t.Run("early stop", func(t *testing.T) {
		t.Parallel()
		count := 0
		for range walker.WalkFiles(tmpDir, nil) {
			count++
			break
		}
		assert.Equal(t, 1, count)
	})
}

func TestWalker_WalkFiles_ReportsErrors(t *testing.T) {
	t.Parallel()

	walker := fs.NewWalker()

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()
		missing := filepath.Join(t.TempDir(), "absent")
		var errs []error
		for path, err := range walker.WalkFiles(missing, nil) {
			assert.Equal(t, missing, path)
			errs = append(errs, err)
		}
		require.Len(t, errs, 1)
		require.ErrorIs(t, errs[0], os.ErrNotExist)
	})

	t.Run("unreadable directory", func(t *testing.T) {
		t.Parallel()
		root := unreadableTree(t)
		var walkErr error
		for _, err := range walker.WalkFiles(root, nil) {
			if err != nil {
				walkErr = err
			}
		}
		require.ErrorIs(t, walkErr, os.ErrPermission)
	})
}

// unreadableTree returns a root whose "Lib" subdirectory cannot be listed.
func unreadableTree(t *testing.T) string {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := t.TempDir()
	mustWriteFile(t, root, "App.sln", "sln")
	mustWriteFile(t, root, "Lib/Logger.cs", "cs")
	locked := filepath.Join(root, "Lib")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, domain.DirPerm) })
	return root
}

func TestExcluded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rel  string
		want bool
	}{
		{"bin/Debug/App.dll", true},
		{"Lib/obj/project.assets.json", true},
		{".gitignore", true},
		{"Lib/.idea/workspace.xml", true},
		{"Lib/Logger.cs", false},
		{"Lib/binaries/Logger.cs", false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, fs.Excluded(tt.rel, domain.DefaultInputExcludes))
		})
	}
}

func TestHasher_ComputeInputHash(t *testing.T) {
	t.Parallel()

	createTask := func() *domain.Task {
		return &domain.Task{
			Name:    domain.NewInternedString("compileDebugDotNet"),
			Kind:    domain.KindCompileRuntimeProject,
			Command: []string{"msbuild", "Lib"},
		}
	}

	t.Run("content change", func(t *testing.T) {
		t.Parallel()
		file := mustWriteFile(t, t.TempDir(), "file.cs", "content1")
		hasher := fs.NewHasher(fs.NewWalker())

		hash1, err := hasher.ComputeInputHash(createTask(), nil, []string{file})
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(file, []byte("content2"), 0o600))
		hash2, err := hasher.ComputeInputHash(createTask(), nil, []string{file})
		require.NoError(t, err)

		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("stable across calls", func(t *testing.T) {
		t.Parallel()
		file := mustWriteFile(t, t.TempDir(), "file.cs", "content")
		hasher := fs.NewHasher(fs.NewWalker())
		env := map[string]string{"B": "2", "A": "1"}

		hash1, err := hasher.ComputeInputHash(createTask(), env, []string{file})
		require.NoError(t, err)
		hash2, err := hasher.ComputeInputHash(createTask(), env, []string{file})
		require.NoError(t, err)

		assert.Equal(t, hash1, hash2)
		assert.Len(t, hash1, 16)
	})

	t.Run("definition change", func(t *testing.T) {
		t.Parallel()
		hasher := fs.NewHasher(fs.NewWalker())

		base, err := hasher.ComputeInputHash(createTask(), nil, nil)
		require.NoError(t, err)

		changed := createTask()
		changed.BuildType = domain.BuildType{Name: "debug", CompilerConfigurationName: "Debug"}
		other, err := hasher.ComputeInputHash(changed, nil, nil)
		require.NoError(t, err)
		assert.NotEqual(t, base, other)

		withEnv := createTask()
		withEnv.Environment = map[string]string{"PATH": "/mono/Commands"}
		envHash, err := hasher.ComputeInputHash(withEnv, nil, nil)
		require.NoError(t, err)
		assert.NotEqual(t, base, envHash)
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()
		hasher := fs.NewHasher(fs.NewWalker())
		_, err := hasher.ComputeInputHash(createTask(), nil, []string{filepath.Join(t.TempDir(), "nope")})
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrFileOpenFailed.Error())
	})
}

func TestHasher_ComputeOutputHash(t *testing.T) {
	t.Parallel()

	t.Run("directory contents", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		mustWriteFile(t, root, "apk/assemblies/App.dll", "v1")
		mustWriteFile(t, root, "apk/lib/arm64-v8a/libmonodroid.so", "so")
		hasher := fs.NewHasher(fs.NewWalker())

		hash1, err := hasher.ComputeOutputHash([]string{"apk"}, root)
		require.NoError(t, err)

		mustWriteFile(t, root, "apk/assemblies/App.dll", "v2")
		hash2, err := hasher.ComputeOutputHash([]string{"apk"}, root)
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("order independent", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		a := mustWriteFile(t, root, "a.txt", "a")
		b := mustWriteFile(t, root, "b.txt", "b")
		hasher := fs.NewHasher(fs.NewWalker())

		hash1, err := hasher.ComputeOutputHash([]string{a, b}, root)
		require.NoError(t, err)
		hash2, err := hasher.ComputeOutputHash([]string{b, a}, root)
		require.NoError(t, err)
		assert.Equal(t, hash1, hash2)
	})

	t.Run("missing output", func(t *testing.T) {
		t.Parallel()
		hasher := fs.NewHasher(fs.NewWalker())
		_, err := hasher.ComputeOutputHash([]string{"gone"}, t.TempDir())
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unreadable output directory", func(t *testing.T) {
		t.Parallel()
		root := unreadableTree(t)
		hasher := fs.NewHasher(fs.NewWalker())
		_, err := hasher.ComputeOutputHash([]string{root}, root)
		require.ErrorIs(t, err, os.ErrPermission)
		assert.ErrorContains(t, err, "failed to walk output directory")
	})
}
