package makeutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
)

// Make accumulates build targets in a generated makefile and runs the
// external build tool once over all of them. Target names are assigned
// sequentially in insertion order; nothing here inspects per-target
// results beyond the tool's aggregate exit status.
type Make struct {
	// Command is the build-tool invocation, e.g. {"make", "-k", "-j4"}.
	// The makefile path and the target names are appended at execution.
	Command []string
	// Output receives the build tool's stdout and stderr. Defaults to
	// os.Stdout when unset.
	Output io.Writer

	path    string
	targets []string
}

// New creates the makefile at path. A previous file of the same name is
// deleted first so targets from an earlier run never leak into this
// one.
func New(path string) (*Make, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "remove stale makefile")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "create makefile")
	}
	if err := f.Close(); err != nil {
		return nil, errors.Wrap(err, "create makefile")
	}
	return &Make{
		Command: []string{"make"},
		path:    path,
	}, nil
}

// Path returns the makefile location.
func (m *Make) Path() string {
	return m.path
}

// AddTarget appends command as the next target and returns the assigned
// name (TARGET0, TARGET1, ...). Multi-line commands are tab-indented so
// the whole string stays one recipe.
func (m *Make) AddTarget(command string) (string, error) {
	name := fmt.Sprintf("TARGET%d", len(m.targets))
	f, err := os.OpenFile(m.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "open makefile")
	}
	body := strings.ReplaceAll(command, "\n", "\n\t")
	if _, err := fmt.Fprintf(f, "\n\n.PHONY : %s\n%s :\n\t%s", name, name, body); err != nil {
		_ = f.Close()
		return "", errors.Wrapf(err, "write %s", name)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "write %s", name)
	}
	m.targets = append(m.targets, name)
	return name, nil
}

// Targets returns the assigned target names in insertion order.
func (m *Make) Targets() []string {
	return append([]string(nil), m.targets...)
}

// ExecuteAll invokes the build tool from dir with every registered
// target. The returned error wraps the tool's *exec.ExitError when the
// tool ran and failed; use ExitCode to recover the status.
func (m *Make) ExecuteAll(ctx context.Context, dir string) error {
	if len(m.Command) == 0 {
		return errors.New("no build command configured")
	}
	args := append([]string{}, m.Command[1:]...)
	args = append(args, "-f", m.path)
	args = append(args, m.targets...)

	out := m.Output
	if out == nil {
		out = os.Stdout
	}
	cmd := exec.CommandContext(ctx, m.Command[0], args...)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return errors.Wrap(err, strings.Join(m.Command, " "))
	}
	return nil
}

// ExitCode maps an ExecuteAll error to the status a process should
// propagate: 0 for nil, the tool's own code when it ran and failed,
// else 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
