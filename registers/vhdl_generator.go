package registers

import (
	"crypto/sha256"
	"fmt"
	"path"
	"strings"

	"github.com/ru551n/tsfpga/util"
)

// VhdlGenerator produces the VHDL artifacts for a register list: the
// register constant package, the register record package, the simulation
// support package and the AXI-Lite register file wrapper.
//
// Generated files are stamped with a hash of the register definitions and
// rewritten only when the definitions have changed.
type VhdlGenerator struct {
	registerList *RegisterList
}

// NewVhdlGenerator creates a VHDL generator for the given register list.
func NewVhdlGenerator(registerList *RegisterList) *VhdlGenerator {
	return &VhdlGenerator{registerList: registerList}
}

// definitionHash digests everything that affects generated output, so
// regeneration can be skipped when nothing changed.
func (generator *VhdlGenerator) definitionHash() string {
	digest := sha256.New()

	list := generator.registerList
	fmt.Fprintf(digest, "%s\n", list.Name)
	for _, register := range list.Registers() {
		fmt.Fprintf(digest, "%s:%d:%s:%s\n", register.Name, register.Index, register.Mode, register.Description)
		for _, bit := range register.Bits {
			fmt.Fprintf(digest, "  %s:%d:%s:%s\n", bit.Name, bit.Index, bit.DefaultValue, bit.Description)
		}
	}
	for _, array := range list.RegisterArrays() {
		fmt.Fprintf(digest, "%s[%d]@%d\n", array.Name, array.Length, array.BaseIndex)
		for _, register := range array.Registers {
			fmt.Fprintf(digest, "  %s:%d:%s:%s\n", register.Name, register.Index, register.Mode, register.Description)
			for _, bit := range register.Bits {
				fmt.Fprintf(digest, "    %s:%d:%s:%s\n", bit.Name, bit.Index, bit.DefaultValue, bit.Description)
			}
		}
	}
	for _, constant := range list.Constants() {
		fmt.Fprintf(digest, "%s=%d:%s\n", constant.Name, constant.Value, constant.Description)
	}

	return fmt.Sprintf("%x", digest.Sum(nil))
}

func (generator *VhdlGenerator) headerComment() string {
	separator := "-- " + strings.Repeat("-", 77) + "\n"
	header := separator
	header += fmt.Sprintf("-- %s\n", generator.registerList.GeneratedInfo())
	header += fmt.Sprintf("-- Register definition file: %s\n", path.Base(generator.registerList.SourceDefinitionFile))
	header += fmt.Sprintf("-- Register definition hash: %s\n", generator.definitionHash())
	header += separator
	return header
}

// vhdlMode maps a register mode shorthand to the reg_file_pkg mode constant.
func vhdlMode(mode string) string {
	return mode
}

// RegisterPackage returns the content of the register constant package.
func (generator *VhdlGenerator) RegisterPackage() string {
	list := generator.registerList
	name := list.Name

	var builder strings.Builder
	builder.WriteString(generator.headerComment())
	builder.WriteString(fmt.Sprintf(`
library ieee;
use ieee.std_logic_1164.all;

library reg_file;
use reg_file.reg_file_pkg.all;


package %s_regs_pkg is

`, name))

	for _, register := range list.Registers() {
		builder.WriteString(fmt.Sprintf(
			"  constant %s_%s : natural := %d;\n", name, register.Name, register.Index))
	}
	for _, array := range list.RegisterArrays() {
		for _, register := range array.Registers {
			builder.WriteString(fmt.Sprintf(
				"  function %s_%s_%s(array_index : natural) return natural;\n",
				name, array.Name, register.Name))
		}
	}

	builder.WriteString(fmt.Sprintf(
		"\n  constant %s_num_regs : natural := %d;\n", name, list.NumRegisters()))

	builder.WriteString(fmt.Sprintf(
		"\n  constant %s_reg_map : reg_definition_vec_t(%s_num_regs - 1 downto 0) := (\n",
		name, name))
	entries := []string{}
	for _, register := range list.Registers() {
		entries = append(entries, fmt.Sprintf(
			"    %d => (idx => %s_%s, reg_type => %s)",
			register.Index, name, register.Name, vhdlMode(register.Mode)))
	}
	for _, array := range list.RegisterArrays() {
		for iteration := 0; iteration < array.Length; iteration++ {
			for registerIndex, register := range array.Registers {
				index := array.BaseIndex + iteration*len(array.Registers) + registerIndex
				entries = append(entries, fmt.Sprintf(
					"    %d => (idx => %d, reg_type => %s)", index, index, vhdlMode(register.Mode)))
			}
		}
	}
	builder.WriteString(strings.Join(entries, ",\n"))
	builder.WriteString("\n  );\n")

	wroteBitsHeader := false
	for _, register := range list.Registers() {
		for _, bit := range register.Bits {
			if !wroteBitsHeader {
				builder.WriteString("\n  -- Bit indexes within the registers.\n")
				wroteBitsHeader = true
			}
			builder.WriteString(fmt.Sprintf(
				"  constant %s_%s_%s : natural := %d;\n", name, register.Name, bit.Name, bit.Index))
		}
	}

	if len(list.Constants()) > 0 {
		builder.WriteString("\n  -- Register constants.\n")
		for _, constant := range list.Constants() {
			builder.WriteString(fmt.Sprintf(
				"  constant %s_constant_%s : integer := %d;\n", name, constant.Name, constant.Value))
		}
	}

	builder.WriteString(fmt.Sprintf("\nend package %s_regs_pkg;\n", name))

	if len(list.RegisterArrays()) > 0 {
		builder.WriteString(fmt.Sprintf("\npackage body %s_regs_pkg is\n\n", name))
		for _, array := range list.RegisterArrays() {
			for registerIndex, register := range array.Registers {
				builder.WriteString(fmt.Sprintf(`  function %s_%s_%s(array_index : natural) return natural is
  begin
    assert array_index < %d report "Array index out of range" severity failure;
    return %d + array_index * %d + %d;
  end function;

`, name, array.Name, register.Name, array.Length, array.BaseIndex, len(array.Registers), registerIndex))
			}
		}
		builder.WriteString(fmt.Sprintf("end package body %s_regs_pkg;\n", name))
	}

	return builder.String()
}

// RecordPackage returns the content of the register record package, which
// gives named record access to register values.
func (generator *VhdlGenerator) RecordPackage() string {
	list := generator.registerList
	name := list.Name

	var builder strings.Builder
	builder.WriteString(generator.headerComment())
	builder.WriteString(fmt.Sprintf(`
library ieee;
use ieee.std_logic_1164.all;

library work;
use work.%s_regs_pkg.all;


package %s_register_record_pkg is

  type %s_regs_t is record
`, name, name, name))

	for _, register := range list.Registers() {
		builder.WriteString(fmt.Sprintf(
			"    %s : std_logic_vector(31 downto 0);\n", register.Name))
	}
	builder.WriteString("  end record;\n")

	builder.WriteString(fmt.Sprintf(
		"\n  constant %s_regs_init : %s_regs_t := (others => (others => '0'));\n", name, name))

	for _, array := range list.RegisterArrays() {
		builder.WriteString(fmt.Sprintf("\n  type %s_%s_t is record\n", name, array.Name))
		for _, register := range array.Registers {
			builder.WriteString(fmt.Sprintf(
				"    %s : std_logic_vector(31 downto 0);\n", register.Name))
		}
		builder.WriteString("  end record;\n")
		builder.WriteString(fmt.Sprintf(
			"  type %s_%s_vec_t is array (0 to %d) of %s_%s_t;\n",
			name, array.Name, array.Length-1, name, array.Name))
	}

	builder.WriteString(fmt.Sprintf("\nend package %s_register_record_pkg;\n", name))
	return builder.String()
}

// SimulationPackage returns the content of the simulation support package,
// with read/write procedures for each register.
func (generator *VhdlGenerator) SimulationPackage() string {
	list := generator.registerList
	name := list.Name

	var builder strings.Builder
	builder.WriteString(generator.headerComment())
	builder.WriteString(fmt.Sprintf(`
library ieee;
use ieee.std_logic_1164.all;

library vunit_lib;
use vunit_lib.bus_master_pkg.all;
use vunit_lib.com_types_pkg.all;

library work;
use work.%s_regs_pkg.all;


package %s_register_simulation_pkg is

`, name, name))

	type procedure struct {
		declaration string
		body        string
	}
	procedures := []procedure{}

	for _, register := range list.Registers() {
		mode, err := GetMode(register.Mode)
		if err != nil {
			continue
		}
		if strings.HasPrefix(mode.Shorthand, "r") {
			declaration := fmt.Sprintf(
				"  procedure read_%s_%s(\n    signal net : inout network_t;\n    variable value : out std_logic_vector(31 downto 0)\n  )",
				name, register.Name)
			body := fmt.Sprintf(
				"%s is\n  begin\n    read_bus(net, regs_bus_master, 4 * %s_%s, value);\n  end procedure;\n",
				declaration, name, register.Name)
			procedures = append(procedures, procedure{declaration, body})
		}
		if strings.Contains(mode.Shorthand, "w") {
			declaration := fmt.Sprintf(
				"  procedure write_%s_%s(\n    signal net : inout network_t;\n    value : in std_logic_vector(31 downto 0)\n  )",
				name, register.Name)
			body := fmt.Sprintf(
				"%s is\n  begin\n    write_bus(net, regs_bus_master, 4 * %s_%s, value);\n  end procedure;\n",
				declaration, name, register.Name)
			procedures = append(procedures, procedure{declaration, body})
		}
	}

	for _, entry := range procedures {
		builder.WriteString(entry.declaration + ";\n\n")
	}
	builder.WriteString(fmt.Sprintf("end package %s_register_simulation_pkg;\n", name))

	builder.WriteString(fmt.Sprintf("\npackage body %s_register_simulation_pkg is\n\n", name))
	for _, entry := range procedures {
		builder.WriteString(entry.body + "\n")
	}
	builder.WriteString(fmt.Sprintf("end package body %s_register_simulation_pkg;\n", name))

	return builder.String()
}

// AxiLiteWrapper returns the content of the AXI-Lite register file wrapper
// entity for this register list.
func (generator *VhdlGenerator) AxiLiteWrapper() string {
	list := generator.registerList
	name := list.Name

	var builder strings.Builder
	builder.WriteString(generator.headerComment())
	builder.WriteString(fmt.Sprintf(`
library ieee;
use ieee.std_logic_1164.all;

library axi;
use axi.axi_lite_pkg.all;

library reg_file;
use reg_file.reg_file_pkg.all;

library work;
use work.%s_regs_pkg.all;


entity %s_reg_file is
  port (
    clk : in std_logic;
    --# {{}}
    axi_lite_m2s : in axi_lite_m2s_t;
    axi_lite_s2m : out axi_lite_s2m_t := axi_lite_s2m_init;
    --# {{}}
    regs_up : in reg_vec_t(%s_reg_map'range) := (others => (others => '0'));
    regs_down : out reg_vec_t(%s_reg_map'range) := (others => (others => '0'));
    --# {{}}
    reg_was_read : out std_logic_vector(%s_reg_map'range) := (others => '0');
    reg_was_written : out std_logic_vector(%s_reg_map'range) := (others => '0')
  );
end entity;

architecture a of %s_reg_file is

begin

  axi_lite_reg_file_inst : entity reg_file.axi_lite_reg_file
    generic map (
      regs => %s_reg_map
    )
    port map (
      clk => clk,
      axi_lite_m2s => axi_lite_m2s,
      axi_lite_s2m => axi_lite_s2m,
      regs_up => regs_up,
      regs_down => regs_down,
      reg_was_read => reg_was_read,
      reg_was_written => reg_was_written
    );

end architecture;
`, name, name, name, name, name, name, name, name))

	return builder.String()
}

// artifactFileName returns the output file name of one generated artifact.
func (generator *VhdlGenerator) artifactFileName(suffix string) string {
	return generator.registerList.Name + suffix
}

// CreateIfNeeded writes all VHDL artifacts into outputPath. Files whose
// content is already up to date are left untouched. It reports whether any
// file was written.
func (generator *VhdlGenerator) CreateIfNeeded(outputPath string) (bool, error) {
	artifacts := []struct {
		fileName string
		content  string
	}{
		{generator.artifactFileName("_regs_pkg.vhd"), generator.RegisterPackage()},
		{generator.artifactFileName("_register_record_pkg.vhd"), generator.RecordPackage()},
		{generator.artifactFileName("_register_simulation_pkg.vhd"), generator.SimulationPackage()},
		{generator.artifactFileName("_reg_file.vhd"), generator.AxiLiteWrapper()},
	}

	anyWritten := false
	for _, artifact := range artifacts {
		written, err := util.CreateFileIfChanged(
			path.Join(outputPath, artifact.fileName), []byte(artifact.content))
		if err != nil {
			return anyWritten, err
		}
		anyWritten = anyWritten || written
	}
	return anyWritten, nil
}

// CreateHtmlPage writes the documentation HTML page into outputPath.
func CreateHtmlPage(registerList *RegisterList, outputPath string) (string, error) {
	generator := NewHtmlGenerator(registerList)
	outputFile := path.Join(outputPath, registerList.Name+"_regs.html")
	if err := util.CreateFile(outputFile, []byte(generator.GetPage())); err != nil {
		return "", err
	}
	return outputFile, nil
}
