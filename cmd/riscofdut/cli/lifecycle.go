package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"riscofdut/internal/adapters"
	"riscofdut/internal/config"
	"riscofdut/internal/history"
	"riscofdut/internal/isa"
)

var (
	pluginName    string
	configPath    string
	testListPath  string
	suiteDir      string
	workDir       string
	archEnvDir    string
	coverageFiles []string
	jobsOverride  int
	historyDB     string
)

// addLifecycleFlags registers the flag set shared by run, check and
// targets. Each command marks its own subset as required.
func addLifecycleFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&pluginName, "plugin", "", "plugin to drive (sail_cSim or spike)")
	cmd.Flags().StringVar(&configPath, "config", "", "RISCOF configuration YAML")
	cmd.Flags().StringVar(&testListPath, "testlist", "", "test list YAML produced by the framework")
	cmd.Flags().StringVar(&suiteDir, "suite", "", "architectural test suite root")
	cmd.Flags().StringVar(&workDir, "work-dir", "", "directory for generated artifacts")
	cmd.Flags().StringVar(&archEnvDir, "env", "", "architectural test environment directory")
	cmd.Flags().StringSliceVar(&coverageFiles, "coverage", nil, "coverage configuration files (sail flow only)")
	cmd.Flags().IntVar(&jobsOverride, "jobs", 0, "override the configured build parallelism")
	cmd.Flags().StringVar(&historyDB, "db", "", "history database path (default <work-dir>/"+history.DefaultFile+")")
}

func markRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		_ = cmd.MarkFlagRequired(name)
	}
}

// setupDUT runs the construction half of the plugin lifecycle:
// configuration lookup, adapter construction, Initialise and Build.
func setupDUT() (adapters.DUT, *config.Node, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	node, err := cfg.Node(pluginName)
	if err != nil {
		return nil, nil, err
	}
	if jobsOverride > 0 {
		node.Jobs = jobsOverride
	}

	dut, err := adapters.New(pluginName, node, os.Getenv, logger)
	if err != nil {
		return nil, nil, err
	}
	if debug {
		spew.Fdump(logger.Writer(), node)
	}

	if err := dut.Initialise(suiteDir, workDir, archEnvDir); err != nil {
		return nil, nil, err
	}
	if err := dut.Build(node.ISpec, node.PSpec); err != nil {
		return nil, nil, err
	}
	if debug {
		if hart, err := isa.Load(node.ISpec); err == nil {
			spew.Fdump(logger.Writer(), hart)
		}
	}
	return dut, node, nil
}

// recordRun appends one row to the history database. Best effort: a
// failure is reported and otherwise ignored.
func recordRun(command string, node *config.Node, dut adapters.DUT, result *adapters.Result) {
	entry := history.Entry{
		Command: command,
		Model:   dut.Model(),
		DUTName: node.Name,
	}
	if result != nil {
		entry.Targets = len(result.Targets)
		entry.ExitCode = result.ExitCode
		entry.Terminal = result.Terminal
	}
	if hart, err := isa.Load(node.ISpec); err == nil {
		entry.XLEN = hart.XLEN()
		entry.ISA = hart.ISA
	}
	if err := history.Record(historyPath(), entry); err != nil {
		fmt.Fprintln(os.Stderr, "history record failed:", err)
	}
}

func historyPath() string {
	if historyDB != "" {
		return historyDB
	}
	return filepath.Join(workDir, history.DefaultFile)
}
