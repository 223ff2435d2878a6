package adapters

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/kballard/go-shellquote"

	"riscofdut/internal/config"
	"riscofdut/internal/isa"
	"riscofdut/internal/makeutil"
	"riscofdut/internal/signature"
	"riscofdut/internal/testlist"
	"riscofdut/internal/toolchain"
)

// Sail drives the Sail-generated C reference simulator. Each target
// compiles the test against the shared env linker script, disassembles
// the ELF, and runs the width-matching simulator with signature capture;
// coverage extraction is appended only when coverage files are supplied.
type Sail struct {
	node   *config.Node
	env    toolchain.Env
	logger *log.Logger

	suite       string
	workDir     string
	archTestEnv string
	cc          string
	objdump     string
	initialised bool

	hart *isa.Hart
	sim  string
}

// NewSail returns a Sail adapter bound to its configuration node. env
// supplies RISCV_* overrides; logger receives progress and build-tool
// output.
func NewSail(node *config.Node, env toolchain.Env, logger *log.Logger) *Sail {
	return &Sail{
		node:   node,
		env:    env,
		logger: ensureLogger(logger),
	}
}

func (s *Sail) Name() string { return s.node.Name }

func (s *Sail) Model() string { return "sail_c_simulator" }

// Initialise captures the framework-supplied directories and resolves
// the cross tools. Simulator selection waits for Build, which knows the
// register width.
func (s *Sail) Initialise(suite, workDir, archTestEnv string) error {
	s.suite = suite
	s.workDir = workDir
	s.archTestEnv = archTestEnv
	s.cc = toolchain.CC.Resolve(s.env)
	s.objdump = toolchain.Objdump.Resolve(s.env)
	s.initialised = true
	s.logger.Printf("%s: initialised, work dir %s", s.node.Plugin, workDir)
	return nil
}

// Build loads the ISA descriptor and validates every external tool. A
// failure here stops the run before any target is written. The platform
// descriptor is accepted for interface fidelity but carries nothing
// this simulator needs.
func (s *Sail) Build(isaSpec, platformSpec string) error {
	if !s.initialised {
		return errors.New("build called before initialise")
	}
	hart, err := isa.Load(isaSpec)
	if err != nil {
		return err
	}
	sim := toolchain.Sail(s.node.Path, hart.XLEN()).Resolve(s.env)
	if err := toolchain.Check(s.objdump, s.cc, sim, s.node.Make); err != nil {
		return err
	}
	s.hart = hart
	s.sim = sim
	return nil
}

// WriteTargets generates the makefile with one target per test entry,
// in list order, without invoking the build tool.
func (s *Sail) WriteTargets(list testlist.List, coverageFiles []string) (*Result, error) {
	m, err := s.prepare(list, coverageFiles)
	if err != nil {
		return nil, err
	}
	return &Result{Makefile: m.Path(), Targets: m.Targets()}, nil
}

// RunTests writes one target per test entry, in list order, and invokes
// the build tool once over all of them. The aggregate build-tool error
// is returned alongside the populated result.
func (s *Sail) RunTests(ctx context.Context, list testlist.List, coverageFiles []string) (*Result, error) {
	m, err := s.prepare(list, coverageFiles)
	if err != nil {
		return nil, err
	}

	result := &Result{Makefile: m.Path(), Targets: m.Targets()}
	runErr := m.ExecuteAll(ctx, s.workDir)
	result.ExitCode = makeutil.ExitCode(runErr)
	return result, runErr
}

func (s *Sail) prepare(list testlist.List, coverageFiles []string) (*makeutil.Make, error) {
	if s.hart == nil {
		return nil, errors.New("run called before build")
	}

	m, err := makeutil.New(filepath.Join(s.workDir, "Makefile."+s.node.Name))
	if err != nil {
		return nil, err
	}
	m.Command = []string{s.node.Make, fmt.Sprintf("-j%d", s.node.Jobs)}
	m.Output = s.logger.Writer()

	for _, test := range list {
		if _, err := m.AddTarget(s.target(test, coverageFiles)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// target assembles the shell command sequence for one test.
func (s *Sail) target(test testlist.Entry, coverageFiles []string) string {
	envDir := filepath.Join(s.node.PluginPath, "..", "env")
	name := testName(test.TestPath)
	sigFile := signature.Path(test.WorkDir, s.node.Name)

	compile := []string{
		s.cc,
		"-march=" + strings.ToLower(test.ISA),
		"-DXLEN=" + strconv.Itoa(s.hart.XLEN()),
		"-static", "-mcmodel=medany", "-fvisibility=hidden", "-nostdlib", "-nostartfiles",
		"-T", filepath.Join(envDir, "link.ld"),
		"-I", envDir,
		"-I", s.archTestEnv,
		"-mabi=" + s.hart.ABI(),
		test.TestPath,
		"-o", "ref.elf",
	}
	for _, macro := range test.Macros {
		compile = append(compile, "-D"+macro)
	}

	var b strings.Builder
	b.WriteString("@cd " + test.WorkDir + ";")
	b.WriteString(shellquote.Join(compile...) + ";")
	b.WriteString(shellquote.Join(s.objdump, "-D", "ref.elf") + " > ref.disass;")
	b.WriteString(shellquote.Join(s.sim, "--test-signature="+sigFile, "ref.elf"))
	b.WriteString(" > " + name + ".log 2>&1;")

	if len(coverageFiles) > 0 {
		cov := []string{
			"riscv_isac", "--verbose", "info", "coverage", "-d",
			"-t", name + ".log",
			"--parser-name", "c_sail",
			"-o", "coverage.rpt",
			"--sig-label", "begin_signature", "end_signature",
			"--test-label", "rvtest_code_begin", "rvtest_code_end",
			"-e", "ref.elf",
		}
		for _, cgf := range coverageFiles {
			cov = append(cov, "-c", cgf)
		}
		cov = append(cov, "-x"+strconv.Itoa(s.hart.XLEN()))
		for _, label := range test.CoverageLabels {
			cov = append(cov, "-l", label)
		}
		b.WriteString(shellquote.Join(cov...) + ";")
	}

	return b.String()
}

// testName is the source file name without its suffix; per-test logs
// are named after it.
func testName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
