package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"riscofdut/internal/makeutil"
)

var (
	riscofPath    string
	riscofConfig  string
	testRoot      string
	riscofWorkDir string
	compilerPath  string
	objcopyPath   string
	objdumpPath   string
	spikePath     string
	sim32Path     string
)

var riscofCmd = &cobra.Command{
	Use:   "riscof",
	Short: "Run the riscof framework over the architectural test suite",
	RunE:  runRiscof,
}

func init() {
	riscofCmd.Flags().StringVar(&riscofPath, "riscof", "riscof", "path to the riscof framework binary")
	riscofCmd.Flags().StringVar(&riscofConfig, "config", "", "RISCOF configuration file")
	riscofCmd.Flags().StringVar(&testRoot, "test-root", "", "directory containing the riscv-arch-test checkout")
	riscofCmd.Flags().StringVar(&riscofWorkDir, "work-dir", "", "work directory (default: a fresh temp dir)")
	riscofCmd.Flags().StringVar(&compilerPath, "compiler", "riscv64-unknown-elf-gcc", "path to the cross compiler")
	riscofCmd.Flags().StringVar(&objcopyPath, "objcopy", "riscv64-unknown-elf-objcopy", "path to objcopy")
	riscofCmd.Flags().StringVar(&objdumpPath, "objdump", "riscv64-unknown-elf-objdump", "path to objdump")
	riscofCmd.Flags().StringVar(&spikePath, "spike", "spike", "path to spike")
	riscofCmd.Flags().StringVar(&sim32Path, "riscv-sim-rv32", "riscv_sim_RV32", "path to the 32-bit reference simulator")
	markRequired(riscofCmd, "config", "test-root")
	rootCmd.AddCommand(riscofCmd)
}

func runRiscof(cmd *cobra.Command, args []string) error {
	dir := riscofWorkDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "riscofdut-*")
		if err != nil {
			return errors.Wrap(err, "create work dir")
		}
		dir = tmp
		fmt.Fprintf(os.Stdout, "Work dir: %s\n", dir)
	}

	run := exec.CommandContext(cmd.Context(), riscofPath,
		"run",
		"--config", riscofConfig,
		"--suite", filepath.Join(testRoot, "riscv-test-suite", "rv32i_m"),
		"--env", filepath.Join(testRoot, "riscv-test-suite", "env"),
		"--work-dir", dir,
	)
	run.Env = append(os.Environ(),
		"RISCV_CC="+compilerPath,
		"RISCV_OBJCOPY="+objcopyPath,
		"RISCV_OBJDUMP="+objdumpPath,
		"RISCV_SPIKE="+spikePath,
		"RISCV_SIM_RV32="+sim32Path,
	)
	run.Stdout = os.Stdout
	run.Stderr = os.Stderr

	if err := run.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitError{code: makeutil.ExitCode(err)}
	}
	return nil
}
