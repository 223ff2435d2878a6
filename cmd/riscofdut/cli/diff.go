package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"riscofdut/internal/signature"
)

var diffCmd = &cobra.Command{
	Use:   "diff <reference.signature> <dut.signature>",
	Short: "Compare two signature files",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	// Both inputs must parse as signature dumps before a diff is
	// rendered; a truncated or corrupt file is an error, not a mismatch.
	for _, path := range args {
		if _, err := signature.Load(path); err != nil {
			return err
		}
	}
	text, err := signature.Diff(args[0], args[1])
	if err != nil {
		return err
	}
	if text == "" {
		fmt.Fprintln(os.Stdout, "Signatures match")
		return nil
	}
	fmt.Fprint(os.Stdout, text)
	return exitError{code: 1}
}
