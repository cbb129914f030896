package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ru551n/tsfpga/config"
	"github.com/ru551n/tsfpga/log"
	"github.com/ru551n/tsfpga/module"
	"github.com/ru551n/tsfpga/util"
	"github.com/ru551n/tsfpga/yosys"
)

var (
	netlistTopFlag    string
	netlistOutputFlag string
	netlistSynthFlag  string
)

var netlistCmd = &cobra.Command{
	Use:   "netlist",
	Args:  cobra.NoArgs,
	Short: "Builds a netlist of a top level entity with Yosys",
	Long: `Builds a netlist of a top level entity with Yosys. The VHDL files needed
to elaborate the top level are analyzed with GHDL in compile order, then
Yosys synthesizes the design and runs static timing analysis.`,
	Run: runNetlist,
}

func init() {
	netlistCmd.Flags().StringVarP(&netlistTopFlag, "top", "t", "",
		"Top level entity name (required)")
	netlistCmd.Flags().StringVarP(&netlistOutputFlag, "output", "o", "netlist_out",
		"Output directory for the build")
	netlistCmd.Flags().StringVar(&netlistSynthFlag, "synth-command", "",
		"Yosys synthesis command override, must start with 'synth'")
	netlistCmd.MarkFlagRequired("top")
	addModuleFlags(netlistCmd)
	rootCmd.AddCommand(netlistCmd)
}

func runNetlist(cmd *cobra.Command, args []string) {
	modules := getModules()

	topModule := findTopModule(modules)
	if topModule == nil {
		log.Fatal("Could not find a module providing top level '%s'.\n", netlistTopFlag)
	}

	build := yosys.NewNetlistBuild(netlistTopFlag+"_netlist", netlistTopFlag, topModule, modules)
	build.SynthCommand = netlistSynthFlag

	toolConfig := config.GetConfig()
	build.GhdlPath = toolConfig.GhdlPath
	build.YosysPath = toolConfig.YosysPath

	log.Log("%s\n", build)
	log.Spinner.Start()
	result, err := build.Build(netlistOutputFlag)
	log.Spinner.Stop()

	if err != nil {
		log.Fatal("%s.\n", err)
	}
	if !result.Success {
		log.Fatal("Netlist build '%s' failed.\n", result.Name)
	}

	if summary := result.SizeSummary(); summary != "" {
		log.Log("%s\n", summary)
	}
	log.Success("Netlist build '%s' succeeded.\n", result.Name)
}

// findTopModule returns the module whose synthesis files contain a VHDL file
// named as the top level, or nil.
func findTopModule(modules module.List) *module.Module {
	for _, mod := range modules {
		hdlFiles, err := mod.GetSynthesisFiles(module.Options{})
		if err != nil {
			continue
		}
		for _, hdlFile := range hdlFiles {
			if module.IsVhdl(hdlFile.Path) && util.Stem(hdlFile.Path) == netlistTopFlag {
				return mod
			}
		}
	}
	return nil
}
