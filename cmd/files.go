package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ru551n/tsfpga/log"
	"github.com/ru551n/tsfpga/module"
)

var (
	filesSimFlag     bool
	filesNoTestsFlag bool
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Args:  cobra.NoArgs,
	Short: "Prints the HDL file lists of the discovered modules",
	Long: `Prints the HDL file lists of the discovered modules.

By default the synthesis files are printed. With --sim the simulation files
are printed instead, which include the testbench files unless --no-tests is
given.`,
	Run: runFiles,
}

func init() {
	filesCmd.Flags().BoolVar(&filesSimFlag, "sim", false, "Print simulation files instead of synthesis files")
	filesCmd.Flags().BoolVar(&filesNoTestsFlag, "no-tests", false, "Exclude testbench files from the simulation file list")
	addModuleFlags(filesCmd)
	rootCmd.AddCommand(filesCmd)
}

func runFiles(cmd *cobra.Command, args []string) {
	modules := getModules()

	for _, mod := range modules {
		log.IndentationLevel = 0
		log.Log("\nModule '%s':\n", mod.Name)
		log.IndentationLevel = 1

		var hdlFiles []module.HdlFile
		var err error
		if filesSimFlag {
			hdlFiles, err = mod.GetSimulationFiles(!filesNoTestsFlag, module.Options{})
		} else {
			hdlFiles, err = mod.GetSynthesisFiles(module.Options{})
		}
		if err != nil {
			log.Error("Failed to gather files: %s.\n", err)
			continue
		}

		for _, hdlFile := range hdlFiles {
			log.Log("%s\n", hdlFile.Path)
		}
	}

	log.IndentationLevel = 0
	if log.ErrorOccured() {
		log.Fatal("\nErrors found while gathering files.\n")
	}
}
