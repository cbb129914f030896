package hdlproj

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/ru551n/tsfpga/module"
)

// Project is a multi-library collection of scanned HDL source files, able to
// compute the dependency-ordered subset of files needed to elaborate a given
// top level.
//
// The dependency analysis is deliberately shallow: design units are matched
// by name over comment-stripped source text. That matches what the file
// conventions guarantee and keeps the ordering independent of any VHDL
// elaboration semantics.
type Project struct {
	// files in deterministic order: libraries and file lists are added in
	// the order the caller provides them.
	files []*SourceFile

	// unitIndex maps library -> unit -> providing file.
	unitIndex map[string]map[string]*SourceFile
}

// NewProject creates an empty project.
func NewProject() *Project {
	return &Project{
		unitIndex: map[string]map[string]*SourceFile{},
	}
}

// AddSourceFile scans a source file into the given library.
func (project *Project) AddSourceFile(library string, filePath string) error {
	file, err := scanSourceFile(library, filePath)
	if err != nil {
		return err
	}

	project.files = append(project.files, file)

	libraryIndex, ok := project.unitIndex[library]
	if !ok {
		libraryIndex = map[string]*SourceFile{}
		project.unitIndex[library] = libraryIndex
	}
	for _, unit := range file.units {
		// First provider wins. Duplicate unit names across files are left to
		// the downstream tool to diagnose.
		if _, exists := libraryIndex[unit]; !exists {
			libraryIndex[unit] = file
		}
	}
	return nil
}

// AddModule scans all synthesis files of a module into the module's library.
func (project *Project) AddModule(mod *module.Module, options module.Options) error {
	synthesisFiles, err := mod.GetSynthesisFiles(options)
	if err != nil {
		return err
	}
	for _, hdlFile := range synthesisFiles {
		if err := project.AddSourceFile(mod.LibraryName, hdlFile.Path); err != nil {
			return err
		}
	}
	return nil
}

// TopLevelFile returns the file that holds the top level entity, which is
// assumed to be named the same as the file. Top level must be VHDL.
func (project *Project) TopLevelFile(library string, top string) (*SourceFile, error) {
	matches := []*SourceFile{}
	for _, file := range project.files {
		if file.Library == library && file.IsVhdl() && file.Stem() == top {
			matches = append(matches, file)
		}
	}

	if len(matches) != 1 {
		return nil, errors.New(
			"could not determine top level, multiple or no files containing top level found")
	}
	return matches[0], nil
}

// resolveRef returns the file providing the referenced unit, or nil when the
// unit is external to the project.
func (project *Project) resolveRef(from *SourceFile, ref unitRef) *SourceFile {
	if ref.library == "" {
		// Bare component reference: search the referencing library first,
		// then all libraries in deterministic order.
		if file, ok := project.unitIndex[from.Library][ref.unit]; ok {
			return file
		}
		for _, file := range project.files {
			for _, unit := range file.units {
				if unit == ref.unit {
					return file
				}
			}
		}
		return nil
	}

	library := ref.library
	if library == "work" {
		library = from.Library
	}
	return project.unitIndex[library][ref.unit]
}

// ImplementationSubset returns only the files required to elaborate the
// given top level file, dependencies first. The tie-break for files needed
// by several others is reference order within the referencing file.
func (project *Project) ImplementationSubset(topFile *SourceFile) []*SourceFile {
	visited := map[*SourceFile]bool{}
	subset := []*SourceFile{}

	var visit func(file *SourceFile)
	visit = func(file *SourceFile) {
		if visited[file] {
			return
		}
		// Mark before recursing so dependency cycles terminate.
		visited[file] = true

		for _, ref := range file.refs {
			if dependency := project.resolveRef(file, ref); dependency != nil && dependency != file {
				visit(dependency)
			}
		}
		subset = append(subset, file)
	}
	visit(topFile)

	return subset
}

// LibraryCompileOrder returns the library names of the subset in the order
// their first file appears, which is the order the libraries have to be
// loaded into downstream tools.
func LibraryCompileOrder(subset []*SourceFile) []string {
	seen := map[string]bool{}
	order := []string{}
	for _, file := range subset {
		if !seen[file.Library] {
			seen[file.Library] = true
			order = append(order, file.Library)
		}
	}
	return order
}

// VhdlFiles filters a subset down to the VHDL files, preserving order.
func VhdlFiles(subset []*SourceFile) []*SourceFile {
	result := []*SourceFile{}
	for _, file := range subset {
		if file.IsVhdl() {
			result = append(result, file)
		}
	}
	return result
}

// VerilogFiles filters a subset down to the Verilog files, preserving order.
func VerilogFiles(subset []*SourceFile) []*SourceFile {
	result := []*SourceFile{}
	for _, file := range subset {
		if file.IsVerilog() {
			result = append(result, file)
		}
	}
	return result
}

// Units returns the provided design unit names of a file, for diagnostics.
func (file *SourceFile) Units() string {
	return strings.Join(file.units, ", ")
}
