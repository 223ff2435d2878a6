package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration, ISA spec and toolchain without running tests",
	RunE:  runCheck,
}

func init() {
	addLifecycleFlags(checkCmd)
	markRequired(checkCmd, "plugin", "config")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	dut, node, err := setupDUT()
	if err != nil {
		return err
	}
	// Only touch a history database when the caller named a home for it.
	if historyDB != "" || workDir != "" {
		recordRun("check", node, dut, nil)
	}
	fmt.Fprintf(os.Stdout, "Validated %s (%s)\n", node.Name, dut.Model())
	return nil
}
