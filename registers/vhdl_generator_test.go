package registers

import (
	"os"
	"path"
	"strings"
	"testing"
)

func buildVhdlTestList(t *testing.T) *RegisterList {
	t.Helper()
	list := NewRegisterList("apa", "")

	register, err := list.AppendRegister("config", "r_w", "Configuration.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := register.AppendBit("enable", "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	array := list.AppendRegisterArray("buffers", 2)
	if _, err := array.AppendRegister("read_address", "r_w", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list.AddConstant("version", 3, "Version number.")
	return list
}

func TestRegisterPackageContent(t *testing.T) {
	content := NewVhdlGenerator(buildVhdlTestList(t)).RegisterPackage()

	for _, expected := range []string{
		"package apa_regs_pkg is",
		"constant apa_config : natural := 0;",
		"function apa_buffers_read_address(array_index : natural) return natural;",
		"constant apa_num_regs : natural := 3;",
		"(idx => apa_config, reg_type => r_w)",
		"constant apa_config_enable : natural := 0;",
		"constant apa_constant_version : integer := 3;",
		"package body apa_regs_pkg is",
	} {
		if !strings.Contains(content, expected) {
			t.Fatalf("register package should contain %q", expected)
		}
	}
}

func TestRecordPackageContent(t *testing.T) {
	content := NewVhdlGenerator(buildVhdlTestList(t)).RecordPackage()

	for _, expected := range []string{
		"package apa_register_record_pkg is",
		"type apa_regs_t is record",
		"config : std_logic_vector(31 downto 0);",
		"type apa_buffers_vec_t is array (0 to 1) of apa_buffers_t;",
	} {
		if !strings.Contains(content, expected) {
			t.Fatalf("record package should contain %q", expected)
		}
	}
}

func TestSimulationPackageContent(t *testing.T) {
	content := NewVhdlGenerator(buildVhdlTestList(t)).SimulationPackage()

	if !strings.Contains(content, "procedure read_apa_config(") {
		t.Fatal("readable register should get a read procedure")
	}
	if !strings.Contains(content, "procedure write_apa_config(") {
		t.Fatal("writable register should get a write procedure")
	}
}

func TestAxiLiteWrapperContent(t *testing.T) {
	content := NewVhdlGenerator(buildVhdlTestList(t)).AxiLiteWrapper()

	for _, expected := range []string{
		"entity apa_reg_file is",
		"axi_lite_m2s : in axi_lite_m2s_t;",
		"regs => apa_reg_map",
	} {
		if !strings.Contains(content, expected) {
			t.Fatalf("wrapper should contain %q", expected)
		}
	}
}

func TestCreateIfNeededIsIdempotent(t *testing.T) {
	outputPath := t.TempDir()
	generator := NewVhdlGenerator(buildVhdlTestList(t))

	written, err := generator.CreateIfNeeded(outputPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !written {
		t.Fatal("first generation should write files")
	}

	for _, fileName := range []string{
		"apa_regs_pkg.vhd",
		"apa_register_record_pkg.vhd",
		"apa_register_simulation_pkg.vhd",
		"apa_reg_file.vhd",
	} {
		if _, err := os.Stat(path.Join(outputPath, fileName)); err != nil {
			t.Fatalf("expected artifact %s: %v", fileName, err)
		}
	}

	written, err = generator.CreateIfNeeded(outputPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written {
		t.Fatal("regenerating up-to-date artifacts should be a no-op")
	}
}

func TestDefinitionHashChangesWithDefinitions(t *testing.T) {
	list := buildVhdlTestList(t)
	generator := NewVhdlGenerator(list)
	hashBefore := generator.definitionHash()

	if _, err := list.AppendRegister("status", "r", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if generator.definitionHash() == hashBefore {
		t.Fatal("hash should change when a register is added")
	}
}
