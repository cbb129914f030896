package yosys

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ru551n/tsfpga/module"
)

func createTopModule(t *testing.T) *module.Module {
	t.Helper()
	moduleDir := path.Join(t.TempDir(), "apa")
	writeSource(t, moduleDir, "apa.vhd", `
entity apa is
end entity;

architecture rtl of apa is
begin
end architecture;
`)
	return module.NewModule(moduleDir, "apa", nil)
}

func writeSource(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	file := path.Join(dir, name)
	if err := os.MkdirAll(path.Dir(file), 0775); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(file, []byte(content), 0664); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return file
}

func TestCreateScript(t *testing.T) {
	build := NewNetlistBuild("apa_netlist", "apa", createTopModule(t), nil)

	script, err := build.CreateScript("/tmp/ghdl_out")
	if err != nil {
		t.Fatal(err)
	}

	want := "ghdl --std=08 --work=apa --workdir=/tmp/ghdl_out -P=/tmp/ghdl_out; " +
		"synth -top apa; sta"
	if script != want {
		t.Fatalf("got %q, want %q", script, want)
	}
}

func TestCreateScriptWithSynthCommandOverride(t *testing.T) {
	build := NewNetlistBuild("apa_netlist", "apa", createTopModule(t), nil)
	build.SynthCommand = "synth_xilinx"

	script, err := build.CreateScript("/tmp/ghdl_out")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(script, "; synth_xilinx -top apa; sta") {
		t.Fatalf("unexpected script: %q", script)
	}
}

func TestCreateScriptRejectsNonSynthCommand(t *testing.T) {
	build := NewNetlistBuild("apa_netlist", "apa", createTopModule(t), nil)
	build.SynthCommand = "write_json out.json"

	_, err := build.CreateScript("/tmp/ghdl_out")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "not a Yosys synth command") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateScriptReadsVerilogFiles(t *testing.T) {
	moduleDir := path.Join(t.TempDir(), "apa")
	writeSource(t, moduleDir, "apa.vhd", `
entity apa is
end entity;

architecture rtl of apa is
  component memory
  end component;
begin
  memory_inst : memory;
end architecture;
`)
	verilogFile := writeSource(t, moduleDir, "memory.v", `
module memory();
endmodule
`)

	build := NewNetlistBuild("apa_netlist", "apa", module.NewModule(moduleDir, "apa", nil), nil)

	script, err := build.CreateScript("/tmp/ghdl_out")
	if err != nil {
		t.Fatal(err)
	}

	absVerilog, err := filepath.Abs(verilogFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(script, "read_verilog "+absVerilog+"; ") {
		t.Fatalf("unexpected script: %q", script)
	}
}

func TestTopLevelNotFound(t *testing.T) {
	build := NewNetlistBuild("apa_netlist", "missing_top", createTopModule(t), nil)

	_, err := build.CreateScript("/tmp/ghdl_out")
	if err == nil {
		t.Fatal("expected error")
	}
	want := "could not determine top level, multiple or no files containing top level found"
	if err.Error() != want {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestImplementationSubsetIsComputedOnce(t *testing.T) {
	build := NewNetlistBuild("apa_netlist", "apa", createTopModule(t), nil)

	first, err := build.requiredFiles()
	if err != nil {
		t.Fatal(err)
	}
	second, err := build.requiredFiles()
	if err != nil {
		t.Fatal(err)
	}
	if &first[0] != &second[0] {
		t.Fatal("expected the cached subset on the second call")
	}

	order, err := build.LibraryCompileOrder()
	if err != nil {
		t.Fatal(err)
	}
	if len(order) != 1 || order[0] != "apa" {
		t.Fatalf("unexpected compile order: %v", order)
	}
}

func TestBuildRejectsNonSynthCommandBeforeRunning(t *testing.T) {
	build := NewNetlistBuild("apa_netlist", "apa", createTopModule(t), nil)
	build.SynthCommand = "write_json out.json"

	outputPath := path.Join(t.TempDir(), "out")
	result, err := build.Build(outputPath)
	if err == nil {
		t.Fatal("expected error")
	}
	if result != nil {
		t.Fatalf("expected no result, got %v", result)
	}
	if !strings.Contains(err.Error(), "not a Yosys synth command") {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(outputPath); statErr == nil {
		t.Fatal("a rejected synth command must not create the output folder")
	}
}

func TestBuildReturnsTopLevelErrorBeforeRunning(t *testing.T) {
	build := NewNetlistBuild("apa_netlist", "missing_top", createTopModule(t), nil)

	outputPath := path.Join(t.TempDir(), "out")
	result, err := build.Build(outputPath)
	if err == nil {
		t.Fatal("expected error")
	}
	if result != nil {
		t.Fatalf("expected no result, got %v", result)
	}
	want := "could not determine top level, multiple or no files containing top level found"
	if err.Error() != want {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(outputPath); statErr == nil {
		t.Fatal("an unresolvable top level must not create the output folder")
	}
}

func TestBuildReturnsMissingToolError(t *testing.T) {
	build := NewNetlistBuild("apa_netlist", "apa", createTopModule(t), nil)
	build.GhdlPath = path.Join(t.TempDir(), "no_such_ghdl")

	result, err := build.Build(path.Join(t.TempDir(), "out"))
	if err == nil {
		t.Fatal("expected error")
	}
	if result != nil {
		t.Fatalf("expected no result, got %v", result)
	}
	if !strings.Contains(err.Error(), "could not find ghdl executable") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNetlistBuildString(t *testing.T) {
	build := NewNetlistBuild("apa_netlist", "apa", createTopModule(t), nil)
	build.Generics = map[string]interface{}{"data_width": 24, "enable": true}

	got := build.String()
	if !strings.Contains(got, "Top level:  apa") {
		t.Fatalf("unexpected string: %q", got)
	}
	if !strings.Contains(got, "data_width=24, enable=true") {
		t.Fatalf("unexpected string: %q", got)
	}

	build.Generics = nil
	if !strings.Contains(build.String(), "Generics:   -") {
		t.Fatalf("unexpected string: %q", build.String())
	}
}
