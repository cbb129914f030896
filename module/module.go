package module

import (
	"fmt"
	"path"

	"github.com/pkg/errors"

	"github.com/ru551n/tsfpga/registers"
	"github.com/ru551n/tsfpga/util"
)

// Options filter and parameterize the file-list accessors. The Extra map is
// passed through to hook callbacks, so build flows can parameterize modules
// without changes to the base contract.
type Options struct {
	// FilesInclude optionally restricts results to these files.
	FilesInclude map[string]bool
	// FilesAvoid optionally discards these files from the results.
	FilesAvoid map[string]bool
	// Extra holds arbitrary build-flow parameters for hook callbacks.
	Extra map[string]interface{}
}

// Module handles an HDL module with RTL code, constraints, etc.
//
// Files are gathered from a lot of different sub-folders, to accommodate for
// projects having different catalog structure.
type Module struct {
	// Path to the module folder.
	Path string
	// Name of the module, the folder base name.
	Name string
	// LibraryName is the VHDL library the module's files are compiled into.
	LibraryName string
	// DefaultRegisters are copied into the register list before parsing.
	DefaultRegisters []*registers.Register

	// RegistersHook is called directly after creating this module's registers
	// from the definition file. If the definition file does not exist the hook
	// is still called, with a nil register list. A good place to add or modify
	// registers programmatically.
	RegistersHook func(registerList *registers.RegisterList)
	// PreBuild is called before an FPGA build is run. Returns false to abort
	// the build.
	PreBuild func(extra map[string]interface{}) bool
	// SetupSimulation configures the module's testbenches in a simulation flow.
	SetupSimulation func(extra map[string]interface{})

	registersLoaded bool
	registers       *registers.RegisterList
}

// NewModule creates a module for the given folder.
func NewModule(modulePath string, libraryName string, defaultRegisters []*registers.Register) *Module {
	return &Module{
		Path:             modulePath,
		Name:             path.Base(modulePath),
		LibraryName:      libraryName,
		DefaultRegisters: defaultRegisters,
	}
}

// Registers returns the registers of this module. Can be nil if no
// definition file exists and no hook creates registers.
//
// The definition file is parsed at most once per module instance; all later
// calls observe the cached value.
func (module *Module) Registers() (*registers.RegisterList, error) {
	if module.registersLoaded {
		return module.registers, nil
	}

	tomlFile := path.Join(module.Path, fmt.Sprintf("regs_%s.toml", module.Name))
	jsonFile := path.Join(module.Path, fmt.Sprintf("regs_%s.json", module.Name))

	if util.FileExists(tomlFile) {
		registerList, err := registers.FromToml(module.Name, tomlFile, module.DefaultRegisters)
		if err != nil {
			return nil, err
		}
		module.registers = registerList
	} else if util.FileExists(jsonFile) {
		registerList, err := registers.FromJSON(module.Name, jsonFile, module.DefaultRegisters)
		if err != nil {
			return nil, err
		}
		module.registers = registerList
	}

	if module.RegistersHook != nil {
		module.RegistersHook(module.registers)
	}

	module.registersLoaded = true
	return module.registers, nil
}

// CreateRegisterArtifacts creates the VHDL register packages in this module.
// Regenerating an already up-to-date package is a no-op.
func (module *Module) CreateRegisterArtifacts() error {
	registerList, err := module.Registers()
	if err != nil {
		return err
	}
	if registerList == nil {
		return nil
	}

	_, err = registers.NewVhdlGenerator(registerList).CreateIfNeeded(module.Path)
	return err
}

// SynthesisFolders are the folders gathered for synthesis source code.
func (module *Module) SynthesisFolders() []string {
	return []string{
		module.Path,
		path.Join(module.Path, "src"),
		path.Join(module.Path, "rtl"),
		path.Join(module.Path, "hdl", "rtl"),
		path.Join(module.Path, "hdl", "package"),
	}
}

// SimFolders are the folders with simulation model files, which are always
// included in simulation projects.
func (module *Module) SimFolders() []string {
	return []string{
		path.Join(module.Path, "sim"),
	}
}

// TestFolders are the folders with testbench files.
func (module *Module) TestFolders() []string {
	return []string{
		path.Join(module.Path, "test"),
		path.Join(module.Path, "rtl", "tb"),
	}
}

func (module *Module) hdlFileList(folders []string, options Options) []HdlFile {
	return util.MappedSlice(
		FindFiles(folders, HdlFileEndings, options.FilesInclude, options.FilesAvoid),
		func(file string) HdlFile { return HdlFile{Path: file} })
}

// GetSynthesisFiles returns the files that shall be included in a synthesis
// project. Register packages are generated as a side effect.
func (module *Module) GetSynthesisFiles(options Options) ([]HdlFile, error) {
	if err := module.CreateRegisterArtifacts(); err != nil {
		return nil, err
	}
	return module.hdlFileList(module.SynthesisFolders(), options), nil
}

// GetSimulationFiles returns the files that shall be included in a
// simulation project. When includeTests is false the test folders are
// excluded, but the sim folders are always included.
func (module *Module) GetSimulationFiles(includeTests bool, options Options) ([]HdlFile, error) {
	testFolders := module.SimFolders()
	if includeTests {
		testFolders = append(testFolders, module.TestFolders()...)
	}

	synthesisFiles, err := module.GetSynthesisFiles(options)
	if err != nil {
		return nil, err
	}

	return append(synthesisFiles, module.hdlFileList(testFolders, options)...), nil
}

// GetDocumentationFiles returns the files that shall be included in a
// documentation build: everything except testbenches.
func (module *Module) GetDocumentationFiles(options Options) []HdlFile {
	return module.hdlFileList(append(module.SynthesisFolders(), module.SimFolders()...), options)
}

// GetIpCoreFiles returns the IP cores of this module.
func (module *Module) GetIpCoreFiles(options Options) []IpCoreFile {
	folders := []string{path.Join(module.Path, "ip_cores")}
	return util.MappedSlice(
		FindFiles(folders, []string{".tcl"}, options.FilesInclude, options.FilesAvoid),
		func(file string) IpCoreFile { return IpCoreFile{Path: file} })
}

// GetScopedConstraints returns the constraints that shall be applied to a
// certain entity within this module.
func (module *Module) GetScopedConstraints(options Options) ([]Constraint, error) {
	folders := []string{
		path.Join(module.Path, "scoped_constraints"),
		path.Join(module.Path, "entity_constraints"),
		path.Join(module.Path, "hdl", "constraints"),
	}
	constraintFiles := FindFiles(folders, []string{".tcl", ".xdc"}, options.FilesInclude, options.FilesAvoid)

	constraints := []Constraint{}
	if len(constraintFiles) > 0 {
		synthesisFiles, err := module.GetSynthesisFiles(Options{})
		if err != nil {
			return nil, err
		}
		for _, constraintFile := range constraintFiles {
			// Scoped constraints often depend on clocks having been created by
			// another constraint file before they can work. Set processing
			// order to "late" to make this more probable.
			constraint := Constraint{
				File:             constraintFile,
				UsedIn:           "all",
				ScopedConstraint: true,
				ProcessingOrder:  "late",
			}
			if err := constraint.ValidateScopedEntity(synthesisFiles); err != nil {
				return nil, errors.Wrapf(err, "module %s", module.Name)
			}
			constraints = append(constraints, constraint)
		}
	}
	return constraints, nil
}

func (module *Module) String() string {
	return fmt.Sprintf("%s:%s", module.Name, module.Path)
}
