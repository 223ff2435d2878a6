package integration_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// dutFixture is a self-contained tree of stub tools, specs and a test
// list that the CLI can drive end to end without a real toolchain.
type dutFixture struct {
	Root     string
	Bin      string
	Config   string
	TestList string
	WorkDir  string
	Suite    string
	ArchEnv  string
	Env      map[string]string
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func newDUTFixture(t *testing.T) *dutFixture {
	t.Helper()
	root := t.TempDir()
	bin := filepath.Join(root, "bin")
	suite := filepath.Join(root, "suite")
	archEnv := filepath.Join(root, "archtest-env")
	work := filepath.Join(root, "work")
	test0 := filepath.Join(work, "rv32i_m", "I", "src", "add-01.S", "dut")
	test1 := filepath.Join(work, "rv32i_m", "I", "src", "sub-01.S", "dut")
	dirs := []string{
		bin, suite, archEnv, test0, test1,
		filepath.Join(root, "plugin", "sail_cSim"),
		filepath.Join(root, "plugin", "spike"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	exit0 := "#!/bin/sh\nexit 0\n"
	f := &dutFixture{Root: root, Bin: bin, WorkDir: work, Suite: suite, ArchEnv: archEnv}
	f.Env = map[string]string{
		"RISCV_CC":       writeStub(t, bin, "riscv64-unknown-elf-gcc", exit0),
		"RISCV_OBJDUMP":  writeStub(t, bin, "riscv64-unknown-elf-objdump", exit0),
		"RISCV_OBJCOPY":  writeStub(t, bin, "riscv64-unknown-elf-objcopy", exit0),
		"RISCV_SPIKE":    writeStub(t, bin, "spike", exit0),
		"RISCV_SIM_RV32": writeStub(t, bin, "riscv_sim_RV32", exit0),
		"RISCV_SIM_RV64": writeStub(t, bin, "riscv_sim_RV64", exit0),
	}
	writeStub(t, bin, "make", exit0)

	isaSpec := filepath.Join(root, "isa.yaml")
	writeFile(t, isaSpec, "hart_ids: [0]\nhart0:\n  ISA: RV32IMC\n  supported_xlen: [32]\n")
	platSpec := filepath.Join(root, "platform.yaml")
	writeFile(t, platSpec, "mtime:\n  implemented: true\n")

	f.Config = filepath.Join(root, "config.yaml")
	writeFile(t, f.Config, fmt.Sprintf(`sail_cSim:
  pluginpath: %[1]s/plugin/sail_cSim
  ispec: %[2]s
  pspec: %[3]s
  make: %[4]s/make
  jobs: 2
spike:
  pluginpath: %[1]s/plugin/spike
  ispec: %[2]s
  pspec: %[3]s
  make: %[4]s/make
`, root, isaSpec, platSpec, bin))

	f.TestList = filepath.Join(root, "testlist.yaml")
	writeFile(t, f.TestList, fmt.Sprintf(`add-01:
  test_path: %[1]s/suite/add-01.S
  work_dir: %[2]s
  isa: rv32i
  macros: [TEST_CASE_1=True, XLEN=32]
sub-01:
  test_path: %[1]s/suite/sub-01.S
  work_dir: %[3]s
  isa: rv32i
  macros: [XLEN=32]
`, root, test0, test1))
	return f
}

// lifecycleArgs returns the flag set shared by run and targets.
func (f *dutFixture) lifecycleArgs(command, plugin string) []string {
	return []string{
		command,
		"--plugin", plugin,
		"--config", f.Config,
		"--testlist", f.TestList,
		"--suite", f.Suite,
		"--work-dir", f.WorkDir,
		"--env", f.ArchEnv,
	}
}
