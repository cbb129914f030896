package yosys

import (
	"fmt"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/ru551n/tsfpga/hdlproj"
	"github.com/ru551n/tsfpga/log"
	"github.com/ru551n/tsfpga/module"
	"github.com/ru551n/tsfpga/util"
	"github.com/ru551n/tsfpga/vivado"
)

// NetlistBuild drives a Yosys synthesis of a VHDL/Verilog design, with GHDL
// analyzing the VHDL files up front.
type NetlistBuild struct {
	// Name of the build, used for the build result.
	Name string
	// Top is the top level entity name. The file providing it is assumed to
	// be named the same.
	Top string
	// TopModule is the module whose library holds the top level.
	TopModule *module.Module
	// Modules are all modules whose files participate in the build.
	Modules module.List

	// SynthCommand overrides the Yosys synthesis command. Must start with
	// "synth". Empty means plain "synth".
	SynthCommand string
	// Generics are static top level generics, for reporting.
	Generics map[string]interface{}
	// VhdlStandard is the VHDL revision, e.g. "2008".
	VhdlStandard string

	// GhdlPath and YosysPath override PATH lookup of the tools.
	GhdlPath  string
	YosysPath string

	// The project and the compile order are computed once and reused for
	// every later script or analysis request.
	project              *hdlproj.Project
	topFile              *hdlproj.SourceFile
	implementationSubset []*hdlproj.SourceFile
	libraryCompileOrder  []string
}

// NewNetlistBuild creates a netlist build of the given top level entity.
// The top module is appended to a copy of the module list.
func NewNetlistBuild(
	name string, top string, topModule *module.Module, modules module.List,
) *NetlistBuild {
	allModules := modules.Copy()
	allModules = append(allModules, topModule)

	return &NetlistBuild{
		Name:         name,
		Top:          top,
		TopModule:    topModule,
		Modules:      allModules,
		VhdlStandard: "2008",
	}
}

func (build *NetlistBuild) String() string {
	result := build.Name + "\n"
	result += "Type:       NetlistBuild\n"
	result += fmt.Sprintf("Top level:  %s\n", build.Top)

	generics := "-"
	if len(build.Generics) > 0 {
		parts := []string{}
		for _, entry := range util.OrderedEntries(build.Generics) {
			parts = append(parts, fmt.Sprintf("%s=%v", entry.Key, entry.Value))
		}
		generics = strings.Join(parts, ", ")
	}
	result += fmt.Sprintf("Generics:   %s\n", generics)

	return result
}

// requiredFiles assembles the project and resolves the subset of files
// needed to elaborate the top level, dependencies first. Computed at most
// once per build object.
func (build *NetlistBuild) requiredFiles() ([]*hdlproj.SourceFile, error) {
	if build.implementationSubset != nil {
		return build.implementationSubset, nil
	}

	project := hdlproj.NewProject()
	for _, mod := range build.Modules {
		if err := project.AddModule(mod, module.Options{}); err != nil {
			return nil, err
		}
	}

	topFile, err := project.TopLevelFile(build.TopModule.LibraryName, build.Top)
	if err != nil {
		return nil, err
	}

	build.project = project
	build.topFile = topFile
	build.implementationSubset = project.ImplementationSubset(topFile)
	build.libraryCompileOrder = hdlproj.LibraryCompileOrder(build.implementationSubset)

	return build.implementationSubset, nil
}

// LibraryCompileOrder returns the library names in the order their files are
// compiled, which is the order they have to be loaded into Yosys.
func (build *NetlistBuild) LibraryCompileOrder() ([]string, error) {
	if _, err := build.requiredFiles(); err != nil {
		return nil, err
	}
	return build.libraryCompileOrder, nil
}

func (build *NetlistBuild) ghdlStandardOption() string {
	standard := build.VhdlStandard
	if len(standard) == 4 {
		standard = standard[2:]
	}
	return "--std=" + standard
}

func (build *NetlistBuild) synthCommand() (string, error) {
	command := build.SynthCommand
	if command == "" {
		command = "synth"
	}
	if !strings.HasPrefix(command, "synth") {
		return "", errors.Errorf("not a Yosys synth command: %s", command)
	}
	return command + " -top " + build.Top, nil
}

// CreateScript returns the Yosys script text: load the analyzed GHDL
// libraries, read the Verilog files, synthesize and run static timing.
func (build *NetlistBuild) CreateScript(ghdlOutputPath string) (string, error) {
	subset, err := build.requiredFiles()
	if err != nil {
		return "", err
	}

	script := []string{fmt.Sprintf(
		"ghdl %s --work=%s --workdir=%s -P=%s",
		build.ghdlStandardOption(), build.topFile.Library, ghdlOutputPath, ghdlOutputPath)}

	for _, file := range hdlproj.VerilogFiles(subset) {
		absPath, err := filepath.Abs(file.Path)
		if err != nil {
			return "", errors.Wrapf(err, "failed to resolve %s", file.Path)
		}
		script = append(script, "read_verilog "+absPath)
	}

	synth, err := build.synthCommand()
	if err != nil {
		return "", err
	}
	script = append(script, synth)
	script = append(script, "sta")

	return strings.Join(script, "; "), nil
}

// ghdlAnalyze analyzes all required VHDL files into their work libraries,
// in compile order. The first failing file aborts the analysis.
func (build *NetlistBuild) ghdlAnalyze(ghdlBinary string, ghdlOutputPath string) error {
	subset, err := build.requiredFiles()
	if err != nil {
		return err
	}

	for _, file := range hdlproj.VhdlFiles(subset) {
		absPath, err := filepath.Abs(file.Path)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve %s", file.Path)
		}

		cmd := exec.Command(
			ghdlBinary,
			"-a",
			build.ghdlStandardOption(),
			"--workdir="+ghdlOutputPath,
			"-P="+ghdlOutputPath,
			"--work="+file.Library,
			absPath,
		)
		cmd.Dir = ghdlOutputPath

		log.Debug("Analyzing '%s' into library '%s'.\n", absPath, file.Library)
		if output, err := cmd.CombinedOutput(); err != nil {
			return errors.Errorf("ghdl analysis of %s failed:\n%s", absPath, string(output))
		}
	}
	return nil
}

// Build analyzes the VHDL files and runs Yosys with the assembled script.
// Setup problems, a bad synth command, an unresolvable top level or missing
// tools, are returned as errors before any subprocess is spawned. A failing
// analysis or synthesis is reported through the build result.
func (build *NetlistBuild) Build(outputPath string) (*vivado.BuildResult, error) {
	if _, err := build.synthCommand(); err != nil {
		return nil, err
	}
	if _, err := build.requiredFiles(); err != nil {
		return nil, err
	}
	ghdlBinary, err := resolveExecutable("ghdl", build.GhdlPath)
	if err != nil {
		return nil, err
	}
	yosysBinary, err := resolveExecutable("yosys", build.YosysPath)
	if err != nil {
		return nil, err
	}

	ghdlOutputPath := path.Join(outputPath, "ghdl")
	if err := util.CreateDirectory(ghdlOutputPath, true); err != nil {
		return nil, err
	}

	script, err := build.CreateScript(ghdlOutputPath)
	if err != nil {
		return nil, err
	}

	result := vivado.NewBuildResult(build.Name)

	if err := build.ghdlAnalyze(ghdlBinary, ghdlOutputPath); err != nil {
		log.Error("%s\n", err)
		result.Success = false
		return result, nil
	}

	cmd := exec.Command(yosysBinary, "-m", "ghdl", "-p", script)
	cmd.Dir = outputPath

	if output, err := cmd.CombinedOutput(); err != nil {
		log.Error("yosys failed:\n%s\n", string(output))
		result.Success = false
	}

	return result, nil
}

func resolveExecutable(name string, toolPath string) (string, error) {
	if toolPath == "" {
		resolved, err := exec.LookPath(name)
		if err != nil {
			return "", errors.Errorf("could not find %s on PATH", name)
		}
		return resolved, nil
	}
	resolved, err := exec.LookPath(toolPath)
	if err != nil {
		return "", errors.Errorf("could not find %s executable at '%s'", name, toolPath)
	}
	return resolved, nil
}
