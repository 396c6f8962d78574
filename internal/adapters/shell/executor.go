// Package shell runs external executables for the staging and host tasks.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/creack/pty"
	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ProcessInvoker = (*Invoker)(nil)

// waitDelay bounds how long Wait blocks on output pipes held open by grandchildren
// after the child itself has exited or been killed.
const waitDelay = 5 * time.Second

// Invoker implements ports.ProcessInvoker using os/exec and pty.
type Invoker struct {
	logger ports.Logger
}

// NewInvoker creates a new Invoker.
func NewInvoker(logger ports.Logger) *Invoker {
	return &Invoker{logger: logger}
}

// Run starts the invocation, streams its output to out line by line and waits for it to exit.
func (i *Invoker) Run(ctx context.Context, inv domain.Invocation, out io.Writer) (int, error) {
	env := resolveEnvironment(os.Environ(), inv.Env)

	executable := inv.Executable
	if !strings.ContainsRune(executable, filepath.Separator) && !strings.ContainsRune(executable, '/') {
		lp, err := lookPath(executable, env)
		if err != nil {
			return -1, zerr.With(zerr.Wrap(err, domain.ErrProcessStartFailed.Error()), "executable", inv.Executable)
		}
		executable = lp
	}

	i.logger.Info(strings.Join(append([]string{inv.Executable}, inv.Args...), " "))

	cmd := exec.CommandContext(ctx, executable, inv.Args...) //nolint:gosec // configured toolchain command
	cmd.Args[0] = inv.Executable
	cmd.Dir = inv.WorkingDir
	cmd.Env = env
	cmd.WaitDelay = waitDelay

	lines := &lineWriter{out: out}
	defer lines.Close() //nolint:errcheck // Flush of the trailing partial line

	var err error
	if inv.TTY {
		err = runPTY(cmd, lines)
	} else {
		cmd.Stdout = lines
		cmd.Stderr = lines
		err = cmd.Run()
	}

	return exitResult(ctx, inv, err)
}

func runPTY(cmd *exec.Cmd, out io.Writer) error {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return zerr.Wrap(err, "failed to start pty")
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// Reading the master after the child exits ends with EIO on Linux.
		_, _ = io.Copy(out, ptmx)
	}()

	err = cmd.Wait()
	_ = ptmx.Close()
	<-ioDone
	return err
}

func exitResult(ctx context.Context, inv domain.Invocation, err error) (int, error) {
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return -1, zerr.With(zerr.Wrap(err, domain.ErrProcessStartFailed.Error()), "executable", inv.Executable)
	}

	code := exitErr.ExitCode()
	wrapped := zerr.Wrap(domain.ErrExternalProcessFailed, "command failed")
	if ctxErr := ctx.Err(); ctxErr != nil {
		wrapped = zerr.Wrap(errors.Join(domain.ErrExternalProcessFailed, ctxErr), "command cancelled")
	}
	wrapped = zerr.With(wrapped, "exit_code", code)
	return code, zerr.With(wrapped, "executable", inv.Executable)
}

// lineWriter forwards complete lines to out, dropping the carriage returns a pty adds.
type lineWriter struct {
	out io.Writer
	buf []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		if err := w.writeLine(w.buf[:i]); err != nil {
			return 0, err
		}
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *lineWriter) Close() error {
	if len(w.buf) == 0 {
		return nil
	}
	err := w.writeLine(w.buf)
	w.buf = nil
	return err
}

func (w *lineWriter) writeLine(line []byte) error {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	_, err := w.out.Write(append(slices.Clip(line), '\n'))
	return err
}

// resolveEnvironment applies overrides on top of the inherited environment.
// A PATH override is prepended to the inherited PATH.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}

	for k, v := range overrides {
		if k == "PATH" {
			if sysPath := envMap["PATH"]; sysPath != "" {
				v = v + string(os.PathListSeparator) + sysPath
			}
		}
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for _, k := range slices.Sorted(maps.Keys(envMap)) {
		result = append(result, k+"="+envMap[k])
	}
	return result
}

// lookPath searches for an executable in the directories named by PATH in env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, "PATH="); ok {
			path = v
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
