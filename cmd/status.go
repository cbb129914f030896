package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ru551n/tsfpga/log"
	"github.com/ru551n/tsfpga/vcs"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Args:  cobra.NoArgs,
	Short: "Prints the version control status of the modules directories",
	Long: `Prints the version control status of the modules directories. Reports
whether local modifications exist, for git and svn working copies.`,
	Run: runStatus,
}

func init() {
	addModuleFlags(statusCmd)
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	dirs := modulesDirs()
	if len(dirs) == 0 {
		log.Fatal("No modules directories given. Pass --modules-dir or set modules_dirs in the configuration file.\n")
	}

	for _, dir := range dirs {
		log.IndentationLevel = 0
		log.Log("\nChecking '%s':\n", dir)
		log.IndentationLevel = 1

		switch {
		case vcs.GitCommandsAreAvailable(dir):
			dirty, err := vcs.GitIsDirty(dir)
			if err != nil {
				log.Error("Failed to determine git status: %s.\n", err)
				continue
			}
			if dirty {
				log.Warning("Directory has uncommited changes.\n")
			} else {
				log.Success("Clean, at '%s'.\n", vcs.CommitInformation(dir))
			}
		case vcs.SvnCommandsAreAvailable():
			modified, err := vcs.SvnLocalChangesArePresent(dir)
			if err != nil {
				log.Error("Failed to determine svn status: %s.\n", err)
				continue
			}
			if modified {
				log.Warning("Directory has local modifications.\n")
			} else {
				log.Success("Clean, at '%s'.\n", vcs.CommitInformation(dir))
			}
		default:
			log.Warning("Directory is not under version control.\n")
		}
	}

	log.IndentationLevel = 0
	log.Log("\n")
	if log.ErrorOccured() {
		log.Error("Errors found while checking status.\n")
		os.Exit(1)
	}
	log.Success("Done.\n")
}
