package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ru551n/tsfpga/config"
	"github.com/ru551n/tsfpga/log"
	"github.com/ru551n/tsfpga/module"
	"github.com/ru551n/tsfpga/registers"
)

var (
	modulesDirsFlag []string
	moduleNamesFlag []string
	libSuffixFlag   bool
	defaultRegsFlag bool
)

// addModuleFlags registers the module discovery flags shared by the
// subcommands that operate on a set of modules.
func addModuleFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&modulesDirsFlag, "modules-dir", "d", nil,
		"Directory to scan for modules (repeatable, defaults to the configured directories)")
	cmd.Flags().StringArrayVarP(&moduleNamesFlag, "module", "m", nil,
		"Only include the named module (repeatable)")
	cmd.Flags().BoolVar(&libSuffixFlag, "lib-suffix", false,
		"Append '_lib' to the library name of each module")
	cmd.Flags().BoolVar(&defaultRegsFlag, "default-registers", false,
		"Include the default interrupt/status registers in every register list")
}

func modulesDirs() []string {
	if len(modulesDirsFlag) > 0 {
		return modulesDirsFlag
	}
	return config.GetConfig().ModulesDirs
}

func nameSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := map[string]bool{}
	for _, name := range names {
		set[name] = true
	}
	return set
}

// getModules discovers the modules selected by the discovery flags.
// A missing modules directory setup is fatal.
func getModules() module.List {
	dirs := modulesDirs()
	if len(dirs) == 0 {
		log.Fatal("No modules directories given. Pass --modules-dir or set modules_dirs in the configuration file.\n")
	}

	var defaultRegisters []*registers.Register
	if defaultRegsFlag {
		defaultRegisters = registers.DefaultRegisters()
	}

	modules := module.GetModules(dirs, nameSet(moduleNamesFlag), nil, libSuffixFlag, defaultRegisters)
	if len(modules) == 0 {
		log.Fatal("No modules found in: %s.\n", dirs)
	}
	return modules
}
