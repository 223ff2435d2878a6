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

// Spike drives the Spike ISA simulator for the hardware-ingest flow.
// Each target compiles the test twice (the generic link script for the
// ELF Spike executes, and the hardware variant for the artifact the
// downstream consumer loads), converts the hardware ELF to a raw binary
// with objcopy, and runs Spike with signature capture.
type Spike struct {
	node   *config.Node
	env    toolchain.Env
	logger *log.Logger

	suite       string
	workDir     string
	archTestEnv string
	cc          string
	objcopy     string
	initialised bool

	hart *isa.Hart
	sim  string
}

// NewSpike returns a Spike adapter bound to its configuration node. The
// simulator location is fixed at construction; the cross tools resolve
// in Initialise.
func NewSpike(node *config.Node, env toolchain.Env, logger *log.Logger) *Spike {
	return &Spike{
		node:   node,
		env:    env,
		logger: ensureLogger(logger),
		sim:    toolchain.Spike(node.Path).Resolve(env),
	}
}

func (s *Spike) Name() string { return s.node.Name }

func (s *Spike) Model() string { return "spike" }

// Initialise captures the framework-supplied directories and resolves
// and validates the cross tools.
func (s *Spike) Initialise(suite, workDir, archTestEnv string) error {
	s.suite = suite
	s.workDir = workDir
	s.archTestEnv = archTestEnv
	s.cc = toolchain.CC.Resolve(s.env)
	s.objcopy = toolchain.Objcopy.Resolve(s.env)
	if err := toolchain.Check(s.cc, s.objcopy); err != nil {
		return err
	}
	s.initialised = true
	s.logger.Printf("%s: initialised, work dir %s", s.node.Plugin, workDir)
	return nil
}

// Build loads the ISA descriptor and validates the simulator and the
// build tool. The derived ISA name, sub-extensions included, serves as
// both the compiler -march value and Spike's --isa argument.
func (s *Spike) Build(isaSpec, platformSpec string) error {
	if !s.initialised {
		return errors.New("build called before initialise")
	}
	hart, err := isa.Load(isaSpec)
	if err != nil {
		return err
	}
	if err := toolchain.Check(s.sim, s.node.Make); err != nil {
		return err
	}
	s.hart = hart
	return nil
}

// WriteTargets generates the makefile with one target per test entry,
// in list order, without invoking the build tool. Coverage files are
// accepted for interface fidelity and ignored, this flow has no
// coverage step.
func (s *Spike) WriteTargets(list testlist.List, coverageFiles []string) (*Result, error) {
	m, err := s.prepare(list)
	if err != nil {
		return nil, err
	}
	return &Result{Makefile: m.Path(), Targets: m.Targets()}, nil
}

// RunTests writes one target per test entry and invokes the build tool
// with -k so independent tests keep running past failures. The result
// is Terminal: the caller exits with success right after, whatever the
// aggregate status was; it is still logged and recorded.
func (s *Spike) RunTests(ctx context.Context, list testlist.List, coverageFiles []string) (*Result, error) {
	m, err := s.prepare(list)
	if err != nil {
		return nil, err
	}

	result := &Result{Makefile: m.Path(), Targets: m.Targets(), Terminal: true}
	if runErr := m.ExecuteAll(ctx, s.workDir); runErr != nil {
		result.ExitCode = makeutil.ExitCode(runErr)
		s.logger.Printf("%s: build tool finished with status %d: %v", s.node.Plugin, result.ExitCode, runErr)
	}
	return result, nil
}

func (s *Spike) prepare(list testlist.List) (*makeutil.Make, error) {
	if s.hart == nil {
		return nil, errors.New("run called before build")
	}

	m, err := makeutil.New(filepath.Join(s.workDir, "Makefile."+s.node.Name))
	if err != nil {
		return nil, err
	}
	m.Command = []string{s.node.Make, "-k", fmt.Sprintf("-j%d", s.node.Jobs)}
	m.Output = s.logger.Writer()

	for _, test := range list {
		if _, err := m.AddTarget(s.target(test)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// target assembles the shell command sequence for one test.
func (s *Spike) target(test testlist.Entry) string {
	isaName := s.hart.NameWithSub()
	sigFile := signature.Path(test.WorkDir, s.node.Name)

	commands := []string{
		shellquote.Join(s.compile(test, "link.ld", "my.elf")...),
		shellquote.Join(s.compile(test, "link-caliptra.ld", "my_caliptra.elf")...),
		shellquote.Join(s.objcopy, "-O", "binary", "my_caliptra.elf", "my.bin"),
		shellquote.Join(s.sim, "--isa="+isaName, "+signature="+sigFile, "+signature-granularity=4", "my.elf"),
	}
	return "@cd " + test.WorkDir + "; " + strings.Join(commands, "; ") + ";"
}

// compile builds one compiler invocation; the link script selects which
// artifact variant comes out.
func (s *Spike) compile(test testlist.Entry, linkScript, artifact string) []string {
	envDir := filepath.Join(s.node.PluginPath, "..", "env")

	cmd := []string{
		s.cc,
		"-march=" + s.hart.NameWithSub(),
		"-DXLEN=" + strconv.Itoa(s.hart.XLEN()),
		"-static", "-mcmodel=medany", "-fvisibility=hidden", "-nostdlib", "-nostartfiles",
		"-T", filepath.Join(envDir, linkScript),
		"-I", envDir,
		"-I", s.archTestEnv,
		test.TestPath,
		"-o", artifact,
	}
	for _, macro := range test.Macros {
		cmd = append(cmd, "-D"+macro)
	}
	return append(cmd, "-mabi="+s.hart.ABI())
}
