package vivado

import (
	"os/exec"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/ru551n/tsfpga/log"
	"github.com/ru551n/tsfpga/util"
)

// The Vivado primitive libraries that are compiled, in compile order.
var simlibLibraries = []string{"unisim", "secureip", "unimacro", "unifast"}

// Simlib compiles the Vivado simulation libraries with GHDL, so that
// simulations of netlists containing Vivado primitives can be run.
type Simlib struct {
	ghdlBinary string
	vivadoPath string

	// outputPath is namespaced with the simulator version tag, so libraries
	// compiled by different GHDL versions do not mix.
	outputPath string
}

// NewSimlib creates a simlib compiler. Empty tool paths mean lookup via
// PATH. A missing executable or a malformed GHDL version string is an error.
func NewSimlib(outputPath string, ghdlPath string, vivadoPath string) (*Simlib, error) {
	ghdlBinary, err := resolveExecutable("ghdl", ghdlPath)
	if err != nil {
		return nil, err
	}
	vivadoBinary, err := resolveExecutable("vivado", vivadoPath)
	if err != nil {
		return nil, err
	}

	output, err := exec.Command(ghdlBinary, "--version").Output()
	if err != nil {
		return nil, errors.Wrap(err, "failed to run 'ghdl --version'")
	}
	versionTag, err := simulatorTag(string(output))
	if err != nil {
		return nil, err
	}

	return &Simlib{
		ghdlBinary: ghdlBinary,
		vivadoPath: vivadoBinary,
		outputPath: path.Join(outputPath, versionTag),
	}, nil
}

// resolveExecutable resolves a tool path, falling back to PATH lookup.
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

var (
	ghdlVersionWithTagRegexp    = regexp.MustCompile(`^GHDL (\S+) \((\S+)\).*`)
	ghdlVersionWithoutTagRegexp = regexp.MustCompile(`^GHDL (\S+).*`)
)

// simulatorTag derives the version tag that namespaces the output, e.g.
// "ghdl_3_0_0_v3_0_0". A version string that can not be parsed is an error,
// surfaced with the raw tool output.
func simulatorTag(versionOutput string) (string, error) {
	if match := ghdlVersionWithTagRegexp.FindStringSubmatch(versionOutput); match != nil {
		return formatVersion("ghdl_" + match[1] + "_" + match[2]), nil
	}
	if match := ghdlVersionWithoutTagRegexp.FindStringSubmatch(versionOutput); match != nil {
		return formatVersion("ghdl_" + match[1]), nil
	}
	return "", errors.Errorf("could not find GHDL version string: %s", versionOutput)
}

func formatVersion(version string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_", " ", "_")
	return strings.ToLower(replacer.Replace(version))
}

// OutputPath returns the version-tagged path the compiled libraries go to.
func (simlib *Simlib) OutputPath() string {
	return simlib.outputPath
}

// CompileIsNeeded reports whether the libraries for this simulator version
// have not been compiled yet.
func (simlib *Simlib) CompileIsNeeded() bool {
	return !util.FileExists(simlib.doneToken())
}

func (simlib *Simlib) doneToken() string {
	return path.Join(simlib.outputPath, "done.txt")
}

// Compile compiles all Vivado primitive libraries. The first failing GHDL
// invocation aborts the whole compile.
func (simlib *Simlib) Compile() error {
	if err := util.CreateDirectory(simlib.outputPath, false); err != nil {
		return err
	}

	vivadoLibrariesPath := path.Join(
		path.Dir(path.Dir(simlib.vivadoPath)), "data", "vhdl", "src")

	if err := simlib.compileUnisim(path.Join(vivadoLibrariesPath, "unisims")); err != nil {
		return err
	}
	if err := simlib.compileSecureip(path.Join(vivadoLibrariesPath, "unisims", "secureip")); err != nil {
		return err
	}
	if err := simlib.compileUnimacro(path.Join(vivadoLibrariesPath, "unimacro")); err != nil {
		return err
	}
	if err := simlib.compileUnifast(path.Join(vivadoLibrariesPath, "unifast", "primitive")); err != nil {
		return err
	}

	return util.CreateFile(simlib.doneToken(), []byte("Done!\n"))
}

func (simlib *Simlib) compileUnisim(libraryPath string) error {
	for _, vhdFileBase := range []string{
		"unisim_VPKG", "unisim_VCOMP", "retarget_VCOMP", "unisim_retarget_VCOMP",
	} {
		vhdFile := path.Join(libraryPath, vhdFileBase+".vhd")
		if err := simlib.compileGhdlFile(vhdFile, "unisim"); err != nil {
			return err
		}
	}

	primitiveDir := path.Join(libraryPath, "primitive")
	if err := simlib.compileAnalyzeOrder(primitiveDir, "unisim"); err != nil {
		return err
	}

	retargetFiles := globVhdFiles(path.Join(libraryPath, "retarget"))
	for _, vhdFile := range retargetFiles {
		if err := simlib.compileGhdlFile(vhdFile, "unisim"); err != nil {
			return err
		}
	}
	return nil
}

func (simlib *Simlib) compileSecureip(libraryPath string) error {
	for _, vhdFile := range globVhdFiles(libraryPath) {
		if err := simlib.compileGhdlFile(vhdFile, "secureip"); err != nil {
			return err
		}
	}
	return nil
}

func (simlib *Simlib) compileUnimacro(libraryPath string) error {
	vhdFile := path.Join(libraryPath, "unimacro_VCOMP.vhd")
	if err := simlib.compileGhdlFile(vhdFile, "unimacro"); err != nil {
		return err
	}
	return simlib.compileAnalyzeOrder(libraryPath, "unimacro")
}

func (simlib *Simlib) compileUnifast(libraryPath string) error {
	return simlib.compileAnalyzeOrder(libraryPath, "unifast")
}

// compileAnalyzeOrder compiles the files listed in the library's
// vhdl_analyze_order manifest, in manifest order.
func (simlib *Simlib) compileAnalyzeOrder(libraryPath string, libraryName string) error {
	manifest, err := util.ReadFile(path.Join(libraryPath, "vhdl_analyze_order"))
	if err != nil {
		return err
	}

	for _, line := range strings.Split(string(manifest), "\n") {
		vhdFileBase := strings.TrimSpace(line)
		if vhdFileBase == "" {
			continue
		}
		vhdFile := path.Join(libraryPath, vhdFileBase)
		if err := simlib.compileGhdlFile(vhdFile, libraryName); err != nil {
			return err
		}
	}
	return nil
}

func globVhdFiles(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "*.vhd"))
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}

func (simlib *Simlib) compileGhdlFile(vhdFile string, libraryName string) error {
	if !util.FileExists(vhdFile) {
		return errors.Errorf("expected source file does not exist: %s", vhdFile)
	}

	workdir := path.Join(simlib.outputPath, libraryName, "v08")
	if err := util.CreateDirectory(workdir, false); err != nil {
		return err
	}

	cmd := exec.Command(
		simlib.ghdlBinary,
		"-a",
		"--ieee=synopsys",
		"--std=08",
		"--workdir="+workdir,
		"-P"+simlib.outputPath,
		"-fexplicit",
		"-frelaxed-rules",
		"--no-vital-checks",
		"--warn-binding",
		"--mb-comments",
		"--work="+libraryName,
		vhdFile,
	)
	cmd.Dir = simlib.outputPath

	log.Debug("Compiling '%s' into library '%s'.\n", vhdFile, libraryName)
	if output, err := cmd.CombinedOutput(); err != nil {
		return errors.Errorf("ghdl analysis of %s failed:\n%s", vhdFile, string(output))
	}
	return nil
}
