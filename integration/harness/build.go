package harness

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

var buildOnce sync.Once
var buildPath string
var buildErr error

// RepoRoot returns the repository root for the current module.
func RepoRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	root := filepath.Dir(filepath.Dir(filepath.Dir(file)))
	if _, err := os.Stat(filepath.Join(root, "go.mod")); err != nil {
		t.Fatalf("verify repo root: %v", err)
	}
	return root
}

// BuildBinary compiles the riscofdut CLI once per test run and returns
// the path.
func BuildBinary(t *testing.T) string {
	t.Helper()
	root := RepoRoot(t)

	buildOnce.Do(func() {
		dir, err := os.MkdirTemp("", "riscofdut-bin-")
		if err != nil {
			buildErr = fmt.Errorf("create temp dir: %w", err)
			return
		}
		outPath := filepath.Join(dir, "riscofdut")

		cmd := exec.Command("go", "build", "-o", outPath, "./cmd/riscofdut")
		cmd.Dir = root
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			buildErr = fmt.Errorf("go build failed: %w\nstderr:\n%s", err, stderr.String())
			return
		}
		buildPath = outPath
	})

	if buildErr != nil {
		t.Fatalf("build riscofdut binary: %v", buildErr)
	}
	return buildPath
}
