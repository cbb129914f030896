package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ru551n/tsfpga/log"
	"github.com/ru551n/tsfpga/registers"
)

var regsCmd = &cobra.Command{
	Use:   "regs",
	Args:  cobra.NoArgs,
	Short: "Generates register VHDL packages and HTML documentation",
	Long: `Generates register VHDL packages and HTML documentation for every module
that has a register definition file. Artifacts that are already up to date
are not rewritten.`,
	Run: runRegs,
}

func init() {
	addModuleFlags(regsCmd)
	rootCmd.AddCommand(regsCmd)
}

func runRegs(cmd *cobra.Command, args []string) {
	modules := getModules()

	for _, mod := range modules {
		log.IndentationLevel = 0

		registerList, err := mod.Registers()
		if err != nil {
			log.Log("\nModule '%s':\n", mod.Name)
			log.IndentationLevel = 1
			log.Error("Failed to parse register definitions: %s.\n", err)
			continue
		}
		if registerList == nil {
			continue
		}

		log.Log("\nModule '%s':\n", mod.Name)
		log.IndentationLevel = 1

		created, err := registers.NewVhdlGenerator(registerList).CreateIfNeeded(mod.Path)
		if err != nil {
			log.Error("Failed to generate VHDL packages: %s.\n", err)
			continue
		}
		if created {
			log.Success("Generated VHDL register packages.\n")
		} else {
			log.Log("VHDL register packages are up to date.\n")
		}

		htmlFile, err := registers.CreateHtmlPage(registerList, mod.Path)
		if err != nil {
			log.Error("Failed to generate HTML page: %s.\n", err)
			continue
		}
		log.Log("Documentation page: '%s'.\n", htmlFile)
	}

	log.IndentationLevel = 0
	if log.ErrorOccured() {
		log.Fatal("\nErrors found while generating register artifacts.\n")
	}
	log.Success("\nDone.\n")
}
