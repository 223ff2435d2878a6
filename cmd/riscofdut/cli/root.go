package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var (
	debug  bool
	logger = log.New(os.Stderr, "", log.LstdFlags)
)

var rootCmd = &cobra.Command{
	Use:           "riscofdut",
	Short:         "RISCOF DUT adapters for the sail_cSim and spike simulators",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "dump the resolved configuration node and parsed hart")
}

// exitError carries a specific process status out of a subcommand. The
// underlying cause has already been reported by the time it is returned.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
