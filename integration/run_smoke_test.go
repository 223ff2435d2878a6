package integration_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"riscofdut/integration/harness"
)

func TestRunSailSmoke(t *testing.T) {
	binPath := harness.BuildBinary(t)
	f := newDUTFixture(t)

	res := harness.Run(t, binPath, f.Root, f.Env, f.lifecycleArgs("run", "sail_cSim")...)
	if res.ExitCode != 0 {
		t.Fatalf("run exit code %d\nstdout:\n%s\nstderr:\n%s", res.ExitCode, res.Stdout, res.Stderr)
	}
	if !strings.Contains(res.Stdout, "Ran 2 targets") {
		t.Fatalf("unexpected stdout:\n%s", res.Stdout)
	}

	makefile := filepath.Join(f.WorkDir, "Makefile.DUT-sail_cSim")
	data, err := os.ReadFile(makefile)
	if err != nil {
		t.Fatalf("read makefile: %v", err)
	}
	for _, want := range []string{"TARGET0", "TARGET1", "--test-signature="} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("makefile missing %q:\n%s", want, data)
		}
	}

	counts := loadRunCounts(t, filepath.Join(f.WorkDir, "riscofdut.sqlite"))
	if counts["run"] != 1 {
		t.Fatalf("history counts = %v, want one run", counts)
	}
}

func TestRunSailBuildFailurePropagatesStatus(t *testing.T) {
	binPath := harness.BuildBinary(t)
	f := newDUTFixture(t)
	writeStub(t, f.Bin, "make", "#!/bin/sh\nexit 3\n")

	res := harness.Run(t, binPath, f.Root, f.Env, f.lifecycleArgs("run", "sail_cSim")...)
	if res.ExitCode != 3 {
		t.Fatalf("run exit code %d, want 3\nstderr:\n%s", res.ExitCode, res.Stderr)
	}
}

func TestRunSpikeIsTerminal(t *testing.T) {
	binPath := harness.BuildBinary(t)
	f := newDUTFixture(t)
	writeStub(t, f.Bin, "make", "#!/bin/sh\nexit 3\n")

	res := harness.Run(t, binPath, f.Root, f.Env, f.lifecycleArgs("run", "spike")...)
	if res.ExitCode != 0 {
		t.Fatalf("run exit code %d, want 0\nstderr:\n%s", res.ExitCode, res.Stderr)
	}
	if !strings.Contains(res.Stdout, "Dispatched 2 targets") {
		t.Fatalf("unexpected stdout:\n%s", res.Stdout)
	}

	makefile := filepath.Join(f.WorkDir, "Makefile.DUT-spike")
	if _, err := os.Stat(makefile); err != nil {
		t.Fatalf("makefile not written: %v", err)
	}
}

func TestRunJobsFlagOverridesConfig(t *testing.T) {
	binPath := harness.BuildBinary(t)
	f := newDUTFixture(t)
	argvFile := filepath.Join(f.Root, "make.argv")
	writeStub(t, f.Bin, "make", fmt.Sprintf("#!/bin/sh\nprintf '%%s\\n' \"$@\" > %s\n", argvFile))

	res := harness.Run(t, binPath, f.Root, f.Env,
		append(f.lifecycleArgs("run", "sail_cSim"), "--jobs", "7")...)
	if res.ExitCode != 0 {
		t.Fatalf("run exit code %d\nstderr:\n%s", res.ExitCode, res.Stderr)
	}
	argv, err := os.ReadFile(argvFile)
	if err != nil {
		t.Fatalf("read recorded argv: %v", err)
	}
	if !strings.HasPrefix(string(argv), "-j7\n") {
		t.Fatalf("make argv:\n%s\nwant -j7 first", argv)
	}

	res = harness.Run(t, binPath, f.Root, f.Env, f.lifecycleArgs("run", "sail_cSim")...)
	if res.ExitCode != 0 {
		t.Fatalf("rerun exit code %d\nstderr:\n%s", res.ExitCode, res.Stderr)
	}
	argv, err = os.ReadFile(argvFile)
	if err != nil {
		t.Fatalf("read recorded argv: %v", err)
	}
	if !strings.HasPrefix(string(argv), "-j2\n") {
		t.Fatalf("make argv:\n%s\nwant configured -j2 first", argv)
	}
}

func TestRunMissingToolFails(t *testing.T) {
	binPath := harness.BuildBinary(t)
	f := newDUTFixture(t)
	f.Env["RISCV_SIM_RV32"] = filepath.Join(f.Root, "no-such-sim")

	res := harness.Run(t, binPath, f.Root, f.Env, f.lifecycleArgs("run", "sail_cSim")...)
	if res.ExitCode != 1 {
		t.Fatalf("run exit code %d, want 1", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "executable not found") {
		t.Fatalf("unexpected stderr:\n%s", res.Stderr)
	}
	if _, err := os.Stat(filepath.Join(f.WorkDir, "Makefile.DUT-sail_cSim")); !os.IsNotExist(err) {
		t.Fatal("makefile written despite failed validation")
	}
}
