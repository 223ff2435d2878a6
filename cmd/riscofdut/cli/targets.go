package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"riscofdut/internal/testlist"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Generate the makefile and list its targets without invoking make",
	RunE:  runTargets,
}

func init() {
	addLifecycleFlags(targetsCmd)
	markRequired(targetsCmd, "plugin", "config", "testlist", "suite", "work-dir", "env")
	rootCmd.AddCommand(targetsCmd)
}

func runTargets(cmd *cobra.Command, args []string) error {
	dut, _, err := setupDUT()
	if err != nil {
		return err
	}
	list, err := testlist.Load(testListPath)
	if err != nil {
		return err
	}
	result, err := dut.WriteTargets(list, coverageFiles)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Wrote %s\n", result.Makefile)
	for _, name := range result.Targets {
		fmt.Fprintln(os.Stdout, name)
	}
	return nil
}
