package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ru551n/tsfpga/log"
)

var rootCmd = &cobra.Command{
	Use:   "tsfpga",
	Short: "Build orchestration for modular FPGA projects",
	Long: `Build orchestration for modular FPGA projects.

Discovers HDL modules in conventional folder structures, generates register
VHDL packages and documentation from declarative register definition files,
and drives external toolchains (Vivado, GHDL, Yosys) for simulation library
compilation and netlist builds.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().BoolVarP(&log.Verbose, "verbose", "v", false, "Print debug output")
	if rootCmd.Execute() != nil {
		os.Exit(1)
	}
}
