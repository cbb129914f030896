package vivado

import (
	"fmt"
	"strings"

	"github.com/ru551n/tsfpga/module"
	"github.com/ru551n/tsfpga/util"
)

// tclGenerator produces the TCL scripts that create and build a Vivado
// project.
type tclGenerator struct {
	projectName string
}

func formatGenerics(generics map[string]interface{}) string {
	parts := []string{}
	for _, entry := range util.OrderedEntries(generics) {
		parts = append(parts, fmt.Sprintf("%s=%v", entry.Key, entry.Value))
	}
	return strings.Join(parts, " ")
}

func (tcl tclGenerator) addModuleFiles(builder *strings.Builder, mod *module.Module, hdlFiles []module.HdlFile) {
	for _, hdlFile := range hdlFiles {
		switch hdlFile.Language() {
		case module.LanguageVhdl:
			fmt.Fprintf(builder,
				"read_vhdl -library %s -vhdl2008 {%s}\n", mod.LibraryName, hdlFile.Path)
		case module.LanguageSystemVerilog:
			fmt.Fprintf(builder, "read_verilog -sv {%s}\n", hdlFile.Path)
		default:
			fmt.Fprintf(builder, "read_verilog {%s}\n", hdlFile.Path)
		}
	}
}

func (tcl tclGenerator) addIpCores(builder *strings.Builder, ipCores []module.IpCoreFile) {
	for _, ipCore := range ipCores {
		for _, line := range ipCore.VariableLines() {
			fmt.Fprintf(builder, "%s\n", line)
		}
		fmt.Fprintf(builder, "source -notrace {%s}\n", ipCore.Path)
	}
}

func (tcl tclGenerator) addConstraints(builder *strings.Builder, constraints []module.Constraint) {
	for _, constraint := range constraints {
		readCommand := "read_xdc"
		if strings.HasSuffix(strings.ToLower(constraint.File), ".tcl") {
			readCommand = "read_xdc -unmanaged"
		}

		if constraint.ScopedConstraint {
			fmt.Fprintf(builder, "%s -ref %s {%s}\n", readCommand, constraint.EntityName(), constraint.File)
		} else {
			fmt.Fprintf(builder, "%s {%s}\n", readCommand, constraint.File)
		}

		if constraint.UsedIn == "impl" {
			fmt.Fprintf(builder,
				"set_property used_in_synthesis false [get_files {%s}]\n", constraint.File)
		} else if constraint.UsedIn == "synth" {
			fmt.Fprintf(builder,
				"set_property used_in_implementation false [get_files {%s}]\n", constraint.File)
		}

		if constraint.ProcessingOrder != "" && constraint.ProcessingOrder != "normal" {
			fmt.Fprintf(builder,
				"set_property PROCESSING_ORDER %s [get_files {%s}]\n",
				strings.ToUpper(constraint.ProcessingOrder), constraint.File)
		}
	}
}

func (tcl tclGenerator) addBuildStepHooks(builder *strings.Builder, hooks []BuildStepTclHook, runIndex int) {
	for _, hook := range hooks {
		run := fmt.Sprintf("[get_runs impl_%d]", runIndex)
		if hook.StepIsSynth() {
			run = fmt.Sprintf("[get_runs synth_%d]", runIndex)
		}
		fmt.Fprintf(builder, "%s\n", hook.TclSetProperty(run))
	}
}

type createArguments struct {
	projectFolder  string
	modules        module.List
	part           string
	top            string
	runIndex       int
	generics       map[string]interface{}
	constraints    []module.Constraint
	tclSources     []string
	buildStepHooks []BuildStepTclHook
	disableIoBufs  bool
}

// create returns the TCL that creates the Vivado project.
func (tcl tclGenerator) create(arguments createArguments) (string, error) {
	var builder strings.Builder
	fmt.Fprintf(&builder, "create_project %s {%s} -part %s\n", tcl.projectName, arguments.projectFolder, arguments.part)
	builder.WriteString("set_property target_language VHDL [current_project]\n")

	allConstraints := append([]module.Constraint{}, arguments.constraints...)
	for _, mod := range arguments.modules {
		hdlFiles, err := mod.GetSynthesisFiles(module.Options{})
		if err != nil {
			return "", err
		}
		tcl.addModuleFiles(&builder, mod, hdlFiles)
		tcl.addIpCores(&builder, mod.GetIpCoreFiles(module.Options{}))

		scopedConstraints, err := mod.GetScopedConstraints(module.Options{})
		if err != nil {
			return "", err
		}
		allConstraints = append(allConstraints, scopedConstraints...)
	}

	tcl.addConstraints(&builder, allConstraints)

	for _, tclSource := range arguments.tclSources {
		fmt.Fprintf(&builder, "source -notrace {%s}\n", tclSource)
	}

	if len(arguments.generics) > 0 {
		fmt.Fprintf(&builder,
			"set_property generic {%s} [current_fileset]\n", formatGenerics(arguments.generics))
	}

	tcl.addBuildStepHooks(&builder, arguments.buildStepHooks, arguments.runIndex)

	if arguments.disableIoBufs {
		fmt.Fprintf(&builder,
			"set_property -name {STEPS.SYNTH_DESIGN.ARGS.MORE OPTIONS} -value {-mode out_of_context} -objects [get_runs synth_%d]\n",
			arguments.runIndex)
	}

	fmt.Fprintf(&builder, "set_property top %s [current_fileset]\n", arguments.top)
	fmt.Fprintf(&builder, "current_run [get_runs synth_%d]\n", arguments.runIndex)
	builder.WriteString("exit\n")

	return builder.String(), nil
}

type buildArguments struct {
	projectFile string
	runIndex    int
	generics    map[string]interface{}
	synthOnly   bool
	numThreads  int
}

// build returns the TCL that builds an already created Vivado project.
// A run that does not reach 100% progress makes the script exit non-zero.
func (tcl tclGenerator) build(arguments buildArguments) string {
	synthRun := fmt.Sprintf("synth_%d", arguments.runIndex)
	implRun := fmt.Sprintf("impl_%d", arguments.runIndex)

	var builder strings.Builder
	fmt.Fprintf(&builder, "open_project {%s}\n", arguments.projectFile)

	if len(arguments.generics) > 0 {
		fmt.Fprintf(&builder,
			"set_property generic {%s} [current_fileset]\n", formatGenerics(arguments.generics))
	}

	fmt.Fprintf(&builder, "reset_run %s\n", synthRun)
	fmt.Fprintf(&builder, "launch_runs %s -jobs %d\n", synthRun, arguments.numThreads)
	fmt.Fprintf(&builder, "wait_on_run %s\n", synthRun)
	fmt.Fprintf(&builder,
		"if {[get_property PROGRESS [get_runs %s]] != \"100%%\"} {\n  exit 1\n}\n", synthRun)

	if !arguments.synthOnly {
		fmt.Fprintf(&builder, "launch_runs %s -jobs %d -to_step write_bitstream\n",
			implRun, arguments.numThreads)
		fmt.Fprintf(&builder, "wait_on_run %s\n", implRun)
		fmt.Fprintf(&builder,
			"if {[get_property PROGRESS [get_runs %s]] != \"100%%\"} {\n  exit 1\n}\n", implRun)
	}

	builder.WriteString("exit\n")
	return builder.String()
}
