package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ru551n/tsfpga/config"
	"github.com/ru551n/tsfpga/log"
	"github.com/ru551n/tsfpga/vivado"
)

var (
	simlibOutputFlag string
	simlibForceFlag  bool
)

var simlibCmd = &cobra.Command{
	Use:   "simlib",
	Args:  cobra.NoArgs,
	Short: "Compiles the Vivado simulation libraries with GHDL",
	Long: `Compiles the Vivado simulation libraries (unisim, secureip, unimacro,
unifast) with GHDL. The output is namespaced with the GHDL version, and an
already compiled library set is not recompiled unless --force is given.`,
	Run: runSimlib,
}

func init() {
	simlibCmd.Flags().StringVarP(&simlibOutputFlag, "output", "o", "simlib",
		"Output directory for the compiled libraries")
	simlibCmd.Flags().BoolVar(&simlibForceFlag, "force", false,
		"Recompile even when the libraries are already compiled")
	rootCmd.AddCommand(simlibCmd)
}

func runSimlib(cmd *cobra.Command, args []string) {
	toolConfig := config.GetConfig()

	simlib, err := vivado.NewSimlib(simlibOutputFlag, toolConfig.GhdlPath, toolConfig.VivadoPath)
	if err != nil {
		log.Fatal("%s.\n", err)
	}

	if !simlibForceFlag && !simlib.CompileIsNeeded() {
		log.Log("Simulation libraries in '%s' are up to date.\n", simlib.OutputPath())
		return
	}

	log.Log("Compiling simulation libraries into '%s'.\n", simlib.OutputPath())
	log.Spinner.Start()
	err = simlib.Compile()
	log.Spinner.Stop()

	if err != nil {
		log.Fatal("Failed to compile simulation libraries: %s.\n", err)
	}
	log.Success("Done.\n")
}
