package vivado

import (
	"os/exec"
	"path"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ru551n/tsfpga/log"
	"github.com/ru551n/tsfpga/module"
	"github.com/ru551n/tsfpga/util"
)

// Project handles a Xilinx Vivado HDL project.
type Project struct {
	// Name of the project.
	Name string
	// Modules whose files shall be included in the project.
	Modules module.List
	// Part identification, e.g. "xc7z020clg400-1".
	Part string
	// Top is the top level entity name. Empty means "<name>_top".
	Top string

	// Generics are static generic values set when the project is created.
	// Compare with the build-time generics in BuildArguments.
	Generics map[string]interface{}
	// Constraints are global constraint files applied to the project.
	// Scoped constraints are gathered from the modules.
	Constraints []module.Constraint
	// TclSources are extra TCL files sourced at project creation, for block
	// designs, pinning, settings.
	TclSources []string
	// BuildStepHooks are associated with the synthesis or implementation run
	// when the project is created. Utilization-report hooks are always
	// appended, so builds produce the reports the size parsing reads.
	BuildStepHooks []BuildStepTclHook

	// VivadoPath overrides PATH lookup of the vivado executable.
	VivadoPath string
	// DefaultRunIndex selects the synth_X and impl_X runs. Zero means 1.
	DefaultRunIndex int
	// NetlistBuild marks a build of a module without top level pinning:
	// synthesis runs out of context and implementation is skipped.
	NetlistBuild bool
}

// NewProject creates a Vivado project description. Nothing is written to
// disk until Create is called.
func NewProject(name string, modules module.List, part string) *Project {
	return &Project{
		Name:            name,
		Modules:         modules,
		Part:            part,
		Top:             name + "_top",
		DefaultRunIndex: 1,
	}
}

func (project *Project) runIndex() int {
	if project.DefaultRunIndex == 0 {
		return 1
	}
	return project.DefaultRunIndex
}

// ProjectFile returns the path to the Vivado project file within projectPath.
func (project *Project) ProjectFile(projectPath string) string {
	return path.Join(projectPath, project.Name+".xpr")
}

const utilizationReportFileName = "hierarchical_utilization.rpt"

// reportUtilizationTcl is installed as a build step hook in every project,
// so that synthesis and implementation leave a utilization report in their
// run folder for the size parsing to read.
const reportUtilizationTcl = "report_utilization -hierarchical -file " + utilizationReportFileName + "\n"

// allBuildStepHooks returns the user hooks plus the always-installed
// utilization-report hooks.
func (project *Project) allBuildStepHooks(projectPath string) []BuildStepTclHook {
	reportTclFile := path.Join(projectPath, "report_utilization.tcl")

	hooks := append([]BuildStepTclHook{}, project.BuildStepHooks...)
	hooks = append(hooks,
		BuildStepTclHook{TclFile: reportTclFile, HookStep: "STEPS.SYNTH_DESIGN.TCL.POST"},
		BuildStepTclHook{TclFile: reportTclFile, HookStep: "STEPS.WRITE_BITSTREAM.TCL.PRE"},
	)
	return hooks
}

// CreateTcl returns the TCL text that creates this project in projectPath.
func (project *Project) CreateTcl(projectPath string) (string, error) {
	generator := tclGenerator{projectName: project.Name}
	return generator.create(createArguments{
		projectFolder:  projectPath,
		modules:        project.Modules,
		part:           project.Part,
		top:            project.Top,
		runIndex:       project.runIndex(),
		generics:       project.Generics,
		constraints:    project.Constraints,
		tclSources:     project.TclSources,
		buildStepHooks: project.allBuildStepHooks(projectPath),
		disableIoBufs:  project.NetlistBuild,
	})
}

// Create creates the Vivado project in projectPath. The folder may not
// already exist.
func (project *Project) Create(projectPath string) error {
	if util.DirExists(projectPath) {
		return errors.Errorf("folder already exists: %s", projectPath)
	}
	if err := util.CreateDirectory(projectPath, false); err != nil {
		return err
	}

	if err := util.CreateFile(
		path.Join(projectPath, "report_utilization.tcl"), []byte(reportUtilizationTcl)); err != nil {
		return err
	}

	tcl, err := project.CreateTcl(projectPath)
	if err != nil {
		return err
	}
	createTclFile := path.Join(projectPath, "create_vivado_project.tcl")
	if err := util.CreateFile(createTclFile, []byte(tcl)); err != nil {
		return err
	}

	vivadoBinary, err := resolveExecutable("vivado", project.VivadoPath)
	if err != nil {
		return err
	}

	log.Log("Creating Vivado project in '%s'.\n", projectPath)
	return runVivadoTcl(vivadoBinary, projectPath, createTclFile)
}

// BuildArguments parameterize one build of a created project.
type BuildArguments struct {
	// ProjectPath is the folder holding the created project.
	ProjectPath string
	// OutputPath receives the bitstream. Required unless the build is
	// synthesis-only.
	OutputPath string
	// RunIndex overrides the project's default run index. Zero means default.
	RunIndex int
	// Generics are run-time generic values, merged over the static ones.
	Generics map[string]interface{}
	// SynthOnly runs synthesis and then stops.
	SynthOnly bool
	// NumThreads is the Vivado job count. Zero means 12.
	NumThreads int
	// Extra is passed through to the modules' PreBuild callbacks.
	Extra map[string]interface{}
}

// Build builds a created Vivado project. Register packages are regenerated
// and the modules' PreBuild callbacks run before Vivado is invoked; a
// callback returning false aborts with a failed result and no subprocess is
// spawned. A failing Vivado run is carried in the result, setup problems are
// returned as errors.
func (project *Project) Build(arguments BuildArguments) (*BuildResult, error) {
	synthOnly := arguments.SynthOnly || project.NetlistBuild
	if arguments.OutputPath == "" && !synthOnly {
		return nil, errors.New("must specify output path when doing an implementation run")
	}

	projectFile := project.ProjectFile(arguments.ProjectPath)
	if !util.FileExists(projectFile) {
		return nil, errors.Errorf("project file does not exist in the specified location: %s", projectFile)
	}

	runIndex := arguments.RunIndex
	if runIndex == 0 {
		runIndex = project.runIndex()
	}
	numThreads := arguments.NumThreads
	if numThreads == 0 {
		numThreads = 12
	}

	vivadoBinary, err := resolveExecutable("vivado", project.VivadoPath)
	if err != nil {
		return nil, err
	}

	for _, mod := range project.Modules {
		if err := mod.CreateRegisterArtifacts(); err != nil {
			return nil, err
		}
	}

	result := NewBuildResult(project.Name)

	for _, mod := range project.Modules {
		if mod.PreBuild != nil && !mod.PreBuild(arguments.Extra) {
			log.Error("Module '%s' pre-build hook failed.\n", mod.Name)
			result.Success = false
			return result, nil
		}
	}

	generator := tclGenerator{projectName: project.Name}
	tcl := generator.build(buildArguments{
		projectFile: projectFile,
		runIndex:    runIndex,
		generics:    mergedGenerics(project.Generics, arguments.Generics),
		synthOnly:   synthOnly,
		numThreads:  numThreads,
	})
	buildTclFile := path.Join(arguments.ProjectPath, "build_vivado_project.tcl")
	if err := util.CreateFile(buildTclFile, []byte(tcl)); err != nil {
		return nil, err
	}

	if synthOnly {
		log.Log("Synthesizing Vivado project in '%s'.\n", arguments.ProjectPath)
	} else {
		log.Log("Building Vivado project in '%s', placing artifacts in '%s'.\n",
			arguments.ProjectPath, arguments.OutputPath)
	}

	if err := runVivadoTcl(vivadoBinary, arguments.ProjectPath, buildTclFile); err != nil {
		log.Error("%s\n", err)
		result.Success = false
		return result, nil
	}

	result.SynthesisSize = project.readUtilization(arguments.ProjectPath, "synth_"+strconv.Itoa(runIndex))

	if !synthOnly {
		implFolder := path.Join(arguments.ProjectPath, project.Name+".runs", "impl_"+strconv.Itoa(runIndex))
		bitFile := path.Join(implFolder, project.Top+".bit")
		if util.FileExists(bitFile) {
			data, err := util.ReadFile(bitFile)
			if err != nil {
				return nil, err
			}
			if err := util.CreateFile(
				path.Join(arguments.OutputPath, project.Name+".bit"), data); err != nil {
				return nil, err
			}
		}
		result.ImplementationSize = project.readUtilization(arguments.ProjectPath, "impl_"+strconv.Itoa(runIndex))
	}

	return result, nil
}

func mergedGenerics(static map[string]interface{}, buildTime map[string]interface{}) map[string]interface{} {
	if len(static) == 0 {
		return buildTime
	}
	merged := map[string]interface{}{}
	for name, value := range static {
		merged[name] = value
	}
	for name, value := range buildTime {
		merged[name] = value
	}
	return merged
}

// readUtilization parses the hierarchical utilization report of a run.
// Returns nil when the run did not produce a report.
func (project *Project) readUtilization(projectPath string, run string) map[string]int {
	reportFile := path.Join(projectPath, project.Name+".runs", run, utilizationReportFileName)
	report, err := util.ReadFile(reportFile)
	if err != nil {
		return nil
	}
	return parseUtilization(string(report))
}

// parseUtilization extracts the top level resource numbers from a
// hierarchical utilization report. The top level is the table row marked
// "(top)"; its column headers are two lines above it.
func parseUtilization(report string) map[string]int {
	lines := strings.Split(report, "\n")
	for index, line := range lines {
		if !strings.Contains(line, "(top)") || index < 2 {
			continue
		}

		headers := strings.Split(lines[index-2], "|")
		values := strings.Split(line, "|")
		if len(headers) != len(values) {
			return nil
		}

		size := map[string]int{}
		for column := range headers {
			header := strings.TrimSpace(headers[column])
			if header == "" || header == "Instance" || header == "Module" {
				continue
			}
			value, err := strconv.Atoi(strings.TrimSpace(values[column]))
			if err != nil {
				continue
			}
			size[header] = value
		}
		return size
	}
	return nil
}

func runVivadoTcl(vivadoBinary string, cwd string, tclFile string) error {
	cmd := exec.Command(
		vivadoBinary, "-mode", "batch", "-nolog", "-nojournal", "-notrace", "-source", tclFile)
	cmd.Dir = cwd

	log.Debug("Running '%s' on '%s'.\n", vivadoBinary, tclFile)
	if output, err := cmd.CombinedOutput(); err != nil {
		return errors.Errorf("vivado run of %s failed:\n%s", tclFile, string(output))
	}
	return nil
}

func (project *Project) String() string {
	result := "VivadoProject\n"
	result += "Name:      " + project.Name + "\n"
	result += "Top level: " + project.Top + "\n"

	generics := "-"
	if len(project.Generics) > 0 {
		generics = strings.ReplaceAll(formatGenerics(project.Generics), " ", ", ")
	}
	result += "Generics:  " + generics + "\n"

	return result
}
