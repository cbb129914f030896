package hdlproj

import (
	"regexp"
	"strings"

	"github.com/ru551n/tsfpga/module"
	"github.com/ru551n/tsfpga/util"
)

// unitRef is a reference from a source file to a design unit.
type unitRef struct {
	// library is the referenced library name, lowercased. "work" refers to
	// the library of the referencing file.
	library string
	// unit is the referenced design unit name, lowercased. Empty means any
	// unit of the library (bare component references carry no library).
	unit string
}

// SourceFile is one scanned HDL source file.
type SourceFile struct {
	Path    string
	Library string

	// units are the design units (entities, packages, Verilog modules)
	// provided by this file, lowercased.
	units []string
	// refs are the design units referenced by this file, in appearance order.
	refs []unitRef
}

// Stem returns the file name without extension.
func (file *SourceFile) Stem() string {
	return util.Stem(file.Path)
}

// IsVhdl reports whether this is a VHDL file.
func (file *SourceFile) IsVhdl() bool {
	return module.IsVhdl(file.Path)
}

// IsVerilog reports whether this is a Verilog file.
func (file *SourceFile) IsVerilog() bool {
	return module.IsVerilog(file.Path)
}

// Standard VHDL libraries whose units are provided by the toolchain.
var builtinLibraries = map[string]bool{
	"ieee": true,
	"std":  true,
}

var (
	vhdlCommentRegexp = regexp.MustCompile(`--[^\n]*`)

	entityRegexp  = regexp.MustCompile(`(?im)^\s*entity\s+(\w+)\s+is`)
	packageRegexp = regexp.MustCompile(`(?im)^\s*package\s+(\w+)(?:\s+(\w+))?\s+is`)

	architectureRegexp  = regexp.MustCompile(`(?im)^\s*architecture\s+\w+\s+of\s+(\w+)\s+is`)
	useClauseRegexp     = regexp.MustCompile(`(?im)^\s*use\s+(\w+)\.(\w+)`)
	instantiationRegexp = regexp.MustCompile(
		`(?i):\s*entity\s+(?:(\w+)\.)?(\w+)`)
	componentRegexp = regexp.MustCompile(`(?im)^\s*component\s+(\w+)`)

	verilogCommentRegexp = regexp.MustCompile(`//[^\n]*`)
	verilogModuleRegexp  = regexp.MustCompile(`(?m)^\s*module\s+([A-Za-z_]\w*)`)
)

// scanVhdl extracts provided design units and references from VHDL source.
func scanVhdl(file *SourceFile, content string) {
	content = vhdlCommentRegexp.ReplaceAllString(content, "")

	for _, match := range entityRegexp.FindAllStringSubmatch(content, -1) {
		file.units = append(file.units, strings.ToLower(match[1]))
	}
	for _, match := range packageRegexp.FindAllStringSubmatch(content, -1) {
		name := strings.ToLower(match[1])
		if name == "body" {
			// A package body requires its package declaration.
			file.addRef("work", strings.ToLower(match[2]))
			continue
		}
		file.units = append(file.units, name)
	}

	for _, match := range architectureRegexp.FindAllStringSubmatch(content, -1) {
		file.addRef("work", strings.ToLower(match[1]))
	}
	for _, match := range useClauseRegexp.FindAllStringSubmatch(content, -1) {
		library := strings.ToLower(match[1])
		if builtinLibraries[library] {
			continue
		}
		file.addRef(library, strings.ToLower(match[2]))
	}
	for _, match := range instantiationRegexp.FindAllStringSubmatch(content, -1) {
		library := "work"
		if match[1] != "" {
			library = strings.ToLower(match[1])
		}
		file.addRef(library, strings.ToLower(match[2]))
	}
	for _, match := range componentRegexp.FindAllStringSubmatch(content, -1) {
		// Component names resolve in any library, Verilog modules included.
		file.addRef("", strings.ToLower(match[1]))
	}
}

// scanVerilog extracts the modules declared by Verilog source. Verilog
// dependency scanning is not attempted; Verilog files are loaded whenever a
// VHDL component references one of their modules.
func scanVerilog(file *SourceFile, content string) {
	content = verilogCommentRegexp.ReplaceAllString(content, "")

	for _, match := range verilogModuleRegexp.FindAllStringSubmatch(content, -1) {
		file.units = append(file.units, strings.ToLower(match[1]))
	}
}

func (file *SourceFile) addRef(library string, unit string) {
	ref := unitRef{library: library, unit: unit}
	for _, existing := range file.refs {
		if existing == ref {
			return
		}
	}
	file.refs = append(file.refs, ref)
}

// scanSourceFile reads and scans one source file.
func scanSourceFile(library string, filePath string) (*SourceFile, error) {
	content, err := util.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	file := &SourceFile{Path: filePath, Library: library}
	if file.IsVhdl() {
		scanVhdl(file, string(content))
	} else if file.IsVerilog() {
		scanVerilog(file, string(content))
	}
	return file, nil
}
