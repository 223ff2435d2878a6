package harness

import (
	"bytes"
	"os"
	"os/exec"
	"sort"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

// Result captures one CLI invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes the built CLI in workDir with env overrides layered over
// the test process environment. A non-zero exit is returned, not fatal;
// failing to start the binary at all is.
func Run(t *testing.T, binPath, workDir string, env map[string]string, args ...string) Result {
	t.Helper()

	cmd := exec.Command(binPath, args...)
	cmd.Dir = workDir
	cmd.Env = mergeEnv(env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	code := 0
	if err := cmd.Run(); err != nil {
		var ee *exec.ExitError
		if !errors.As(err, &ee) {
			t.Fatalf("run %s: %v", binPath, err)
		}
		code = ee.ExitCode()
	}
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}

func mergeEnv(overrides map[string]string) []string {
	env := make(map[string]string, len(overrides))
	for _, entry := range os.Environ() {
		key, val, _ := strings.Cut(entry, "=")
		env[key] = val
	}
	for k, v := range overrides {
		env[k] = v
	}

	merged := make([]string, 0, len(env))
	for k, v := range env {
		merged = append(merged, k+"="+v)
	}
	sort.Strings(merged)
	return merged
}
