package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ru551n/tsfpga/log"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Args:  cobra.NoArgs,
	Short: "Lists the discovered modules",
	Long:  `Lists the discovered modules with their library names and register definitions.`,
	Run:   runList,
}

func init() {
	addModuleFlags(listCmd)
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) {
	modules := getModules()
	log.Log("Found %d modules:\n", len(modules))

	for _, mod := range modules {
		log.IndentationLevel = 0
		log.Log("\nModule '%s' at '%s':\n", mod.Name, mod.Path)
		log.IndentationLevel = 1
		log.Log("Library: '%s'.\n", mod.LibraryName)

		registerList, err := mod.Registers()
		if err != nil {
			log.Error("Failed to parse register definitions: %s.\n", err)
			continue
		}
		if registerList == nil {
			log.Log("No registers.\n")
			continue
		}
		log.Log("%d registers, %d constants.\n",
			registerList.NumRegisters(), len(registerList.Constants()))
	}

	log.IndentationLevel = 0
	if log.ErrorOccured() {
		log.Fatal("\nErrors found while listing modules.\n")
	}
}
