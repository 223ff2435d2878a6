package adapters

import (
	"context"
	"io"
	"log"

	"github.com/cockroachdb/errors"

	"riscofdut/internal/config"
	"riscofdut/internal/testlist"
	"riscofdut/internal/toolchain"
)

// DUT is the plugin lifecycle the compliance framework drives: construct
// with a configuration node, then Initialise, Build, RunTests, in that
// order. Implementations return errors instead of exiting; the caller
// owns process termination.
type DUT interface {
	// Name is the artifact prefix (makefile suffix, signature names).
	Name() string
	// Model identifies the simulator family for reporting.
	Model() string
	Initialise(suite, workDir, archTestEnv string) error
	Build(isaSpec, platformSpec string) error
	// WriteTargets generates the build-description file, one target per
	// test entry in list order, without invoking the build tool.
	WriteTargets(list testlist.List, coverageFiles []string) (*Result, error)
	// RunTests is WriteTargets followed by one build-tool invocation
	// over the whole target set.
	RunTests(ctx context.Context, list testlist.List, coverageFiles []string) (*Result, error)
}

// Result captures what RunTests produced and how the build tool ended.
type Result struct {
	Makefile string
	Targets  []string
	// ExitCode is the build tool's aggregate status.
	ExitCode int
	// Terminal is set by the spike flow: the caller must stop with a
	// success status right after the build tool returns, suppressing any
	// post-processing of the run. Result checking for that flow happens
	// out of band, on the raw binary artifacts.
	Terminal bool
}

// New constructs the adapter registered under plugin.
func New(plugin string, node *config.Node, env toolchain.Env, logger *log.Logger) (DUT, error) {
	switch plugin {
	case "sail_cSim":
		return NewSail(node, env, logger), nil
	case "spike":
		return NewSpike(node, env, logger), nil
	default:
		return nil, errors.Newf("unknown plugin %q (have sail_cSim, spike)", plugin)
	}
}

func ensureLogger(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return logger
}
