package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"riscofdut/internal/makeutil"
	"riscofdut/internal/testlist"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive the full plugin lifecycle and execute every test",
	RunE:  runRun,
}

func init() {
	addLifecycleFlags(runCmd)
	markRequired(runCmd, "plugin", "config", "testlist", "suite", "work-dir", "env")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	dut, node, err := setupDUT()
	if err != nil {
		return err
	}
	list, err := testlist.Load(testListPath)
	if err != nil {
		return err
	}

	result, runErr := dut.RunTests(cmd.Context(), list, coverageFiles)
	if result != nil {
		recordRun("run", node, dut, result)
	}
	if result != nil && result.Terminal {
		fmt.Fprintf(os.Stdout, "Dispatched %d targets via %s\n", len(result.Targets), result.Makefile)
		return nil
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		return exitError{code: makeutil.ExitCode(runErr)}
	}
	fmt.Fprintf(os.Stdout, "Ran %d targets via %s\n", len(result.Targets), result.Makefile)
	return nil
}
