//go:build e2e

package e2e_test

import (
	"archive/zip"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

var droidnetBinary string

func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "droidnet-e2e-*")
	if err != nil {
		panic(err)
	}

	droidnetBinary = filepath.Join(tmpDir, "droidnet")

	//nolint:gosec // Building binary with static arguments, not user input
	cmd := exec.Command("go", "build", "-o", droidnetBinary, "./cmd/droidnet")
	cmd.Dir = ".."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		panic("failed to build droidnet binary: " + err.Error())
	}

	exitCode := m.Run()

	_ = os.RemoveAll(tmpDir)

	os.Exit(exitCode)
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   "testdata",
		Setup: setupE2E,
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"mkapk": mkapk,
		},
	})
}

func setupE2E(env *testscript.Env) error {
	env.Setenv("NO_COLOR", "1")
	env.Setenv("CI", "true")

	binDir := filepath.Dir(droidnetBinary)
	currentPath := env.Getenv("PATH")
	env.Setenv("PATH", binDir+string(os.PathListSeparator)+currentPath)

	homeDir := filepath.Join(env.WorkDir, ".home")
	if err := os.MkdirAll(homeDir, 0o750); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)

	return nil
}

// mkapk writes a package archive holding the given entries.
//
//	mkapk path entry...
func mkapk(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! mkapk")
	}
	if len(args) < 2 {
		ts.Fatalf("usage: mkapk path entry...")
	}

	path := ts.MkAbs(args[0])
	ts.Check(os.MkdirAll(filepath.Dir(path), 0o750))
	f, err := os.Create(path)
	ts.Check(err)
	defer func() {
		ts.Check(f.Close())
	}()

	zw := zip.NewWriter(f)
	for _, name := range args[1:] {
		w, err := zw.Create(name)
		ts.Check(err)
		_, err = w.Write([]byte(name))
		ts.Check(err)
	}
	ts.Check(zw.Close())
}
