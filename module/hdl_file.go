package module

import (
	"fmt"
	"strings"
)

// Language classifies an HDL source file.
type Language int

const (
	LanguageVhdl Language = iota
	LanguageVerilog
	LanguageSystemVerilog
)

// HdlFileEndings are the file endings that classify a file as HDL source.
var HdlFileEndings = []string{".vhd", ".vhdl", ".v", ".vh", ".sv", ".svh"}

// HdlFile pairs a source file path with its language classification.
type HdlFile struct {
	Path string
}

// IsVhdl reports whether the path names a VHDL file.
func IsVhdl(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".vhd") || strings.HasSuffix(lower, ".vhdl")
}

// IsVerilog reports whether the path names a Verilog or SystemVerilog file.
func IsVerilog(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".v") || strings.HasSuffix(lower, ".sv")
}

// IsSystemVerilog reports whether the path names a SystemVerilog file.
func IsSystemVerilog(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".sv")
}

// Language returns the language classification of this file.
func (file HdlFile) Language() Language {
	if IsSystemVerilog(file.Path) {
		return LanguageSystemVerilog
	}
	if IsVerilog(file.Path) {
		return LanguageVerilog
	}
	return LanguageVhdl
}

func (file HdlFile) String() string {
	return fmt.Sprintf("HdlFile('%s')", file.Path)
}
