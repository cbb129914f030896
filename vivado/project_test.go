package vivado

import (
	"fmt"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/ru551n/tsfpga/module"
)

func writeProjectFixture(t *testing.T, file string, content string) {
	t.Helper()
	if err := os.MkdirAll(path.Dir(file), 0775); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(file, []byte(content), 0664); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func createProjectModule(t *testing.T) *module.Module {
	t.Helper()
	moduleDir := path.Join(t.TempDir(), "apa")
	writeProjectFixture(t, path.Join(moduleDir, "src", "apa.vhd"), "entity apa is\nend entity;\n")
	writeProjectFixture(t, path.Join(moduleDir, "src", "memory.v"), "module memory();\nendmodule\n")
	return module.NewModule(moduleDir, "apa", nil)
}

func TestCreateTcl(t *testing.T) {
	mod := createProjectModule(t)
	project := NewProject("proj", module.List{mod}, "xc7z020clg400-1")
	project.BuildStepHooks = []BuildStepTclHook{
		{TclFile: "/hooks/synth_hook.tcl", HookStep: "STEPS.SYNTH_DESIGN.TCL.PRE"},
		{TclFile: "/hooks/impl_hook.tcl", HookStep: "STEPS.ROUTE_DESIGN.TCL.POST"},
	}

	tcl, err := project.CreateTcl("/tmp/proj")
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"create_project proj {/tmp/proj} -part xc7z020clg400-1",
		"read_vhdl -library apa -vhdl2008 {" + path.Join(mod.Path, "src", "apa.vhd") + "}",
		"read_verilog {" + path.Join(mod.Path, "src", "memory.v") + "}",
		"set_property STEPS.SYNTH_DESIGN.TCL.PRE {/hooks/synth_hook.tcl} [get_runs synth_1]",
		"set_property STEPS.ROUTE_DESIGN.TCL.POST {/hooks/impl_hook.tcl} [get_runs impl_1]",
		"set_property top proj_top [current_fileset]",
	} {
		if !strings.Contains(tcl, want) {
			t.Fatalf("missing %q in tcl:\n%s", want, tcl)
		}
	}
}

func TestCreateTclInstallsUtilizationReportHooks(t *testing.T) {
	project := NewProject("proj", module.List{createProjectModule(t)}, "part")

	tcl, err := project.CreateTcl("/tmp/proj")
	if err != nil {
		t.Fatal(err)
	}

	reportHook := "{/tmp/proj/report_utilization.tcl}"
	if !strings.Contains(tcl, "set_property STEPS.SYNTH_DESIGN.TCL.POST "+reportHook+" [get_runs synth_1]") {
		t.Fatalf("missing synthesis utilization hook in tcl:\n%s", tcl)
	}
	if !strings.Contains(tcl, "set_property STEPS.WRITE_BITSTREAM.TCL.PRE "+reportHook+" [get_runs impl_1]") {
		t.Fatalf("missing implementation utilization hook in tcl:\n%s", tcl)
	}
}

func TestCreateTclScopedConstraints(t *testing.T) {
	mod := createProjectModule(t)
	constraintFile := path.Join(mod.Path, "scoped_constraints", "apa.tcl")
	writeProjectFixture(t, constraintFile, "create_clock\n")

	project := NewProject("proj", module.List{mod}, "part")
	tcl, err := project.CreateTcl("/tmp/proj")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(tcl, "read_xdc -unmanaged -ref apa {"+constraintFile+"}") {
		t.Fatalf("missing scoped constraint in tcl:\n%s", tcl)
	}
	if !strings.Contains(tcl, "set_property PROCESSING_ORDER LATE [get_files {"+constraintFile+"}]") {
		t.Fatalf("missing processing order in tcl:\n%s", tcl)
	}
}

func TestCreateTclNetlistBuild(t *testing.T) {
	project := NewProject("proj", module.List{createProjectModule(t)}, "part")
	project.NetlistBuild = true

	tcl, err := project.CreateTcl("/tmp/proj")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(tcl, "-value {-mode out_of_context} -objects [get_runs synth_1]") {
		t.Fatalf("missing out of context option in tcl:\n%s", tcl)
	}
}

func TestBuildTclSynthOnlySkipsImplementation(t *testing.T) {
	generator := tclGenerator{projectName: "proj"}

	tcl := generator.build(buildArguments{
		projectFile: "/tmp/proj/proj.xpr",
		runIndex:    2,
		synthOnly:   true,
		numThreads:  4,
	})

	if !strings.Contains(tcl, "launch_runs synth_2 -jobs 4") {
		t.Fatalf("missing synthesis run in tcl:\n%s", tcl)
	}
	if strings.Contains(tcl, "impl_2") {
		t.Fatalf("synth-only tcl mentions implementation run:\n%s", tcl)
	}
}

func TestBuildRequiresOutputPathForImplementation(t *testing.T) {
	project := NewProject("proj", nil, "part")

	_, err := project.Build(BuildArguments{ProjectPath: t.TempDir()})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "must specify output path") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuildRequiresExistingProjectFile(t *testing.T) {
	project := NewProject("proj", nil, "part")

	_, err := project.Build(BuildArguments{ProjectPath: t.TempDir(), SynthOnly: true})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "project file does not exist") {
		t.Fatalf("unexpected error: %v", err)
	}
}

// stubVivado creates a fake vivado executable that records its invocation
// and exits with the given code.
func stubVivado(t *testing.T, exitCode int) (vivadoPath string, markerFile string) {
	t.Helper()
	dir := t.TempDir()
	vivadoPath = path.Join(dir, "vivado")
	markerFile = path.Join(dir, "invoked")

	script := fmt.Sprintf("#!/bin/sh\ntouch %s\nexit %d\n", markerFile, exitCode)
	if err := os.WriteFile(vivadoPath, []byte(script), 0755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return vivadoPath, markerFile
}

func preparedProject(t *testing.T, mod *module.Module) (*Project, string) {
	t.Helper()
	project := NewProject("proj", module.List{mod}, "part")
	projectPath := t.TempDir()
	writeProjectFixture(t, project.ProjectFile(projectPath), "")
	return project, projectPath
}

func TestPreBuildHookAbortsBeforeVivado(t *testing.T) {
	mod := createProjectModule(t)
	hookCalled := false
	mod.PreBuild = func(extra map[string]interface{}) bool {
		hookCalled = true
		if extra["run"] != "nightly" {
			t.Fatalf("unexpected extra parameters: %v", extra)
		}
		return false
	}

	project, projectPath := preparedProject(t, mod)
	vivadoPath, markerFile := stubVivado(t, 0)
	project.VivadoPath = vivadoPath

	result, err := project.Build(BuildArguments{
		ProjectPath: projectPath,
		SynthOnly:   true,
		Extra:       map[string]interface{}{"run": "nightly"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !hookCalled {
		t.Fatal("expected the pre-build hook to be called")
	}
	if result.Success {
		t.Fatal("expected a failed result when the pre-build hook returns false")
	}
	if _, statErr := os.Stat(markerFile); statErr == nil {
		t.Fatal("vivado must not be invoked when the pre-build hook fails")
	}
}

func TestBuildFailureIsCarriedInResult(t *testing.T) {
	project, projectPath := preparedProject(t, createProjectModule(t))
	vivadoPath, markerFile := stubVivado(t, 1)
	project.VivadoPath = vivadoPath

	result, err := project.Build(BuildArguments{ProjectPath: projectPath, SynthOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Fatal("expected a failed result when vivado exits non-zero")
	}
	if _, statErr := os.Stat(markerFile); statErr != nil {
		t.Fatal("expected vivado to have been invoked")
	}
}

func TestBuildPopulatesUtilizationSizes(t *testing.T) {
	project, projectPath := preparedProject(t, createProjectModule(t))
	vivadoPath, _ := stubVivado(t, 0)
	project.VivadoPath = vivadoPath

	report := `
+----------+--------+------------+-----+
| Instance | Module | Total LUTs | FFs |
+----------+--------+------------+-----+
| proj_top |  (top) |          3 |   4 |
|   child  |  leaf  |          1 |   2 |
+----------+--------+------------+-----+
`
	writeProjectFixture(t,
		path.Join(projectPath, "proj.runs", "synth_1", "hierarchical_utilization.rpt"), report)

	result, err := project.Build(BuildArguments{ProjectPath: projectPath, SynthOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatal("expected a successful build")
	}
	if result.SynthesisSize["Total LUTs"] != 3 || result.SynthesisSize["FFs"] != 4 {
		t.Fatalf("unexpected synthesis size: %v", result.SynthesisSize)
	}
	if result.ImplementationSize != nil {
		t.Fatalf("synth-only build must not report implementation size: %v", result.ImplementationSize)
	}

	summary := result.SizeSummary()
	if !strings.HasPrefix(summary, "Synthesis size for proj:") {
		t.Fatalf("unexpected summary: %q", summary)
	}
}

func TestParseUtilizationIgnoresChildRows(t *testing.T) {
	report := `
+----------+--------+------------+-----+
| Instance | Module | Total LUTs | FFs |
+----------+--------+------------+-----+
| apa_top  |  (top) |         12 |  50 |
|   inner  |  apa   |         10 |  40 |
+----------+--------+------------+-----+
`
	size := parseUtilization(report)
	if size["Total LUTs"] != 12 || size["FFs"] != 50 {
		t.Fatalf("unexpected size: %v", size)
	}
	if len(size) != 2 {
		t.Fatalf("unexpected columns: %v", size)
	}
}

func TestParseUtilizationWithoutTopRow(t *testing.T) {
	if size := parseUtilization("no report content"); size != nil {
		t.Fatalf("expected nil, got %v", size)
	}
}
