package toolchain

import (
	"os/exec"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// Env looks up one environment variable, returning "" when unset. The
// command layer wires os.Getenv; tests substitute a map lookup so
// resolution never reads ambient process state.
type Env func(key string) string

// MapEnv adapts a fixed map to an Env lookup.
func MapEnv(m map[string]string) Env {
	return func(key string) string { return m[key] }
}

// Tool is one required external executable: an environment variable
// that overrides its location, and the fallback used otherwise.
type Tool struct {
	EnvVar   string
	Fallback string
}

// Resolve returns the override when the environment variable is set,
// else the fallback. A bare name resolves through the process search
// path at Check time; a path with separators is taken literally.
func (t Tool) Resolve(env Env) string {
	if v := env(t.EnvVar); v != "" {
		return v
	}
	return t.Fallback
}

// Cross tools are plain names found on the search path unless
// overridden.
var (
	CC      = Tool{EnvVar: "RISCV_CC", Fallback: "riscv64-unknown-elf-gcc"}
	Objdump = Tool{EnvVar: "RISCV_OBJDUMP", Fallback: "riscv64-unknown-elf-objdump"}
	Objcopy = Tool{EnvVar: "RISCV_OBJCOPY", Fallback: "riscv64-unknown-elf-objcopy"}
)

// Spike locates the spike executable under searchDir. An empty
// searchDir leaves a bare name for search-path resolution.
func Spike(searchDir string) Tool {
	return Tool{EnvVar: "RISCV_SPIKE", Fallback: filepath.Join(searchDir, "spike")}
}

// Sail locates the width-specific sail simulator under searchDir.
func Sail(searchDir string, xlen int) Tool {
	if xlen == 64 {
		return Tool{EnvVar: "RISCV_SIM_RV64", Fallback: filepath.Join(searchDir, "riscv_sim_RV64")}
	}
	return Tool{EnvVar: "RISCV_SIM_RV32", Fallback: filepath.Join(searchDir, "riscv_sim_RV32")}
}

// Check verifies every path resolves to an executable, in order, and
// stops at the first that does not. A Check failure is a fatal setup
// error: the caller must bail out before writing any build target.
func Check(paths ...string) error {
	for _, path := range paths {
		if _, err := exec.LookPath(path); err != nil {
			return errors.Newf("%s: executable not found. Please check environment setup.", path)
		}
	}
	return nil
}
