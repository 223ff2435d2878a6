package integration_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"riscofdut/integration/harness"
)

// riscofRecorder writes a stub riscof binary that records the argv and
// the RISCV_* environment it was launched with.
func riscofRecorder(t *testing.T, dir string) (bin, argvFile, envFile string) {
	t.Helper()
	argvFile = filepath.Join(dir, "riscof.argv")
	envFile = filepath.Join(dir, "riscof.env")
	body := fmt.Sprintf("#!/bin/sh\nprintf '%%s\\n' \"$@\" > %s\nenv | grep '^RISCV_' | sort > %s\n", argvFile, envFile)
	bin = writeStub(t, dir, "riscof", body)
	return bin, argvFile, envFile
}

func TestRiscofSmoke(t *testing.T) {
	binPath := harness.BuildBinary(t)
	dir := t.TempDir()
	stub, argvFile, envFile := riscofRecorder(t, dir)

	cfg := filepath.Join(dir, "config.ini")
	writeFile(t, cfg, "[RISCOF]\n")
	testRoot := filepath.Join(dir, "riscv-arch-test")
	work := filepath.Join(dir, "riscof-work")

	res := harness.Run(t, binPath, dir, nil,
		"riscof",
		"--riscof", stub,
		"--config", cfg,
		"--test-root", testRoot,
		"--work-dir", work,
		"--compiler", "/x/riscv64-unknown-elf-gcc",
		"--spike", "/x/spike",
	)
	if res.ExitCode != 0 {
		t.Fatalf("riscof exit code %d\nstderr:\n%s", res.ExitCode, res.Stderr)
	}

	argv, err := os.ReadFile(argvFile)
	if err != nil {
		t.Fatalf("read recorded argv: %v", err)
	}
	want := strings.Join([]string{
		"run",
		"--config", cfg,
		"--suite", filepath.Join(testRoot, "riscv-test-suite", "rv32i_m"),
		"--env", filepath.Join(testRoot, "riscv-test-suite", "env"),
		"--work-dir", work,
	}, "\n") + "\n"
	if string(argv) != want {
		t.Fatalf("riscof argv:\n%s\nwant:\n%s", argv, want)
	}

	envData, err := os.ReadFile(envFile)
	if err != nil {
		t.Fatalf("read recorded env: %v", err)
	}
	for _, wantEnv := range []string{
		"RISCV_CC=/x/riscv64-unknown-elf-gcc",
		"RISCV_SPIKE=/x/spike",
		"RISCV_OBJCOPY=riscv64-unknown-elf-objcopy",
		"RISCV_OBJDUMP=riscv64-unknown-elf-objdump",
		"RISCV_SIM_RV32=riscv_sim_RV32",
	} {
		if !strings.Contains(string(envData), wantEnv) {
			t.Fatalf("environment missing %q:\n%s", wantEnv, envData)
		}
	}
}

func TestRiscofFailurePropagatesStatus(t *testing.T) {
	binPath := harness.BuildBinary(t)
	dir := t.TempDir()
	stub := writeStub(t, dir, "riscof", "#!/bin/sh\nexit 5\n")
	cfg := filepath.Join(dir, "config.ini")
	writeFile(t, cfg, "[RISCOF]\n")

	res := harness.Run(t, binPath, dir, nil,
		"riscof", "--riscof", stub, "--config", cfg, "--test-root", dir)
	if res.ExitCode != 5 {
		t.Fatalf("riscof exit code %d, want 5\nstderr:\n%s", res.ExitCode, res.Stderr)
	}
	if !strings.Contains(res.Stdout, "Work dir: ") {
		t.Fatalf("unexpected stdout:\n%s", res.Stdout)
	}
}
