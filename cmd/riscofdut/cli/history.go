package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"riscofdut/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs from the history database",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum rows to show")
	historyCmd.Flags().StringVar(&historyDB, "db", "", "history database path (default "+history.DefaultFile+")")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	entries, err := history.List(historyPath(), historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stdout, "No recorded runs")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%s  %-5s %-16s %-14s rv%-2d targets=%-3d exit=%d",
			e.Timestamp.Format(time.RFC3339), e.Command, e.Model, e.DUTName, e.XLEN, e.Targets, e.ExitCode)
		if e.Terminal {
			fmt.Fprint(os.Stdout, " terminal")
		}
		fmt.Fprintln(os.Stdout)
	}
	return nil
}
