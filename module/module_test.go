package module

import (
	"os"
	"path"
	"strings"
	"testing"

	"github.com/ru551n/tsfpga/registers"
)

func createFile(t *testing.T, file string) string {
	t.Helper()
	return createFileWithContent(t, file, "")
}

func createFileWithContent(t *testing.T, file string, content string) string {
	t.Helper()
	if err := os.MkdirAll(path.Dir(file), 0775); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(file, []byte(content), 0664); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return file
}

func fileSet(files []HdlFile) map[string]bool {
	result := map[string]bool{}
	for _, file := range files {
		result[file.Path] = true
	}
	return result
}

func sameSet(got map[string]bool, expected []string) bool {
	if len(got) != len(expected) {
		return false
	}
	for _, file := range expected {
		if !got[file] {
			return false
		}
	}
	return true
}

func TestFileListFiltering(t *testing.T) {
	modulePath := path.Join(t.TempDir(), "zebra")

	if err := os.MkdirAll(path.Join(modulePath, "folder_should_not_be_included"), 0775); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	createFile(t, path.Join(modulePath, "should_not_be_included.apa"))

	synthFiles := []string{
		createFile(t, path.Join(modulePath, "syn.vhd")),
		createFile(t, path.Join(modulePath, "hdl", "rtl", "syn.vhd")),
		createFile(t, path.Join(modulePath, "hdl", "package", "syn.vhd")),
	}

	testFiles := []string{
		createFile(t, path.Join(modulePath, "test", "test.vhd")),
		createFile(t, path.Join(modulePath, "rtl", "tb", "test.vhd")),
	}

	simFiles := []string{
		createFile(t, path.Join(modulePath, "sim", "sim.vhd")),
	}

	myModule := NewModule(modulePath, "zebra", nil)

	files, err := myModule.GetSynthesisFiles(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sameSet(fileSet(files), synthFiles) {
		t.Fatal("unexpected synthesis files")
	}

	files, err = myModule.GetSimulationFiles(true, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := append(append([]string{}, synthFiles...), testFiles...)
	expected = append(expected, simFiles...)
	if !sameSet(fileSet(files), expected) {
		t.Fatal("unexpected simulation files")
	}

	files, err = myModule.GetSimulationFiles(false, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected = append(append([]string{}, synthFiles...), simFiles...)
	if !sameSet(fileSet(files), expected) {
		t.Fatal("sim files should be included even when tests are excluded")
	}
}

func TestFileListIncludeAvoidFilters(t *testing.T) {
	modulePath := path.Join(t.TempDir(), "zebra")

	first := createFile(t, path.Join(modulePath, "rtl", "a.vhd"))
	second := createFile(t, path.Join(modulePath, "rtl", "b.vhd"))
	createFile(t, path.Join(modulePath, "rtl", "c.vhd"))

	myModule := NewModule(modulePath, "zebra", nil)

	files, err := myModule.GetSynthesisFiles(Options{
		FilesInclude: map[string]bool{first: true, second: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sameSet(fileSet(files), []string{first, second}) {
		t.Fatal("include filter should restrict the file list")
	}

	files, err = myModule.GetSynthesisFiles(Options{
		FilesAvoid: map[string]bool{second: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fileSet(files)[second] {
		t.Fatal("avoid filter should discard the file")
	}
}

func TestFindFilesLowercasesNames(t *testing.T) {
	folder := t.TempDir()
	file := createFile(t, path.Join(folder, "TOP.VHD"))

	files := FindFiles([]string{folder}, []string{".vhd"}, nil, nil)
	if len(files) != 1 || files[0] != file {
		t.Fatal("matching should be case insensitive")
	}
}

func TestFindFilesNonExistentFolder(t *testing.T) {
	files := FindFiles([]string{"/does/not/exist"}, []string{".vhd"}, nil, nil)
	if len(files) != 0 {
		t.Fatal("non-existent folder should contribute nothing")
	}
}

func TestScopedConstraints(t *testing.T) {
	modulePath := path.Join(t.TempDir(), "apa")
	createFile(t, path.Join(modulePath, "rtl", "apa_top.vhd"))
	createFile(t, path.Join(modulePath, "scoped_constraints", "apa_top.tcl"))

	myModule := NewModule(modulePath, "apa", nil)
	constraints, err := myModule.GetScopedConstraints(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(constraints) != 1 {
		t.Fatalf("unexpected number of constraints: %d", len(constraints))
	}
	if !constraints[0].ScopedConstraint {
		t.Fatal("constraint should be scoped")
	}
	if constraints[0].ProcessingOrder != "late" {
		t.Fatal("scoped constraints must be processed late")
	}
	if constraints[0].EntityName() != "apa_top" {
		t.Fatal("unexpected entity name")
	}
}

func TestScopedConstraintWithoutEntityFails(t *testing.T) {
	modulePath := path.Join(t.TempDir(), "apa")
	createFile(t, path.Join(modulePath, "rtl", "apa_top.vhd"))
	createFile(t, path.Join(modulePath, "scoped_constraints", "missing_entity.tcl"))

	myModule := NewModule(modulePath, "apa", nil)
	_, err := myModule.GetScopedConstraints(Options{})
	if err == nil {
		t.Fatal("constraint without matching entity should fail")
	}
	if !strings.Contains(err.Error(), "could not find a matching entity file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegistersAreParsedOnce(t *testing.T) {
	modulePath := path.Join(t.TempDir(), "apa")
	tomlFile := createFileWithContent(t, path.Join(modulePath, "regs_apa.toml"), `
[config]
mode = "r_w"
`)

	myModule := NewModule(modulePath, "apa", nil)

	first, err := myModule.Registers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == nil {
		t.Fatal("registers should have been parsed")
	}

	// Removing the definition file proves that a second call does not
	// re-parse but observes the cached value.
	if err := os.Remove(tomlFile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := myModule.Registers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != first {
		t.Fatal("second call must return the identical cached object")
	}

	// File-list accessors must observe the cache as well.
	if _, err := myModule.GetSynthesisFiles(Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := myModule.GetSimulationFiles(true, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	third, err := myModule.Registers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third != first {
		t.Fatal("file-list accessors must not invalidate the register cache")
	}
}

func TestRegistersHookIsCalledWithoutDefinitionFile(t *testing.T) {
	modulePath := path.Join(t.TempDir(), "apa")
	if err := os.MkdirAll(modulePath, 0775); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hookCalls := 0
	myModule := NewModule(modulePath, "apa", nil)
	myModule.RegistersHook = func(registerList *registers.RegisterList) {
		hookCalls++
		if registerList != nil {
			t.Fatal("register list should be nil without a definition file")
		}
	}

	if _, err := myModule.Registers(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := myModule.Registers(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hookCalls != 1 {
		t.Fatalf("hook should be called exactly once, got %d", hookCalls)
	}
}

func TestSynthesisFilesGenerateRegisterPackages(t *testing.T) {
	modulePath := path.Join(t.TempDir(), "apa")
	createFileWithContent(t, path.Join(modulePath, "regs_apa.toml"), `
[config]
mode = "r_w"
`)

	myModule := NewModule(modulePath, "apa", nil)
	files, err := myModule.GetSynthesisFiles(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	generated := fileSet(files)
	if !generated[path.Join(modulePath, "apa_regs_pkg.vhd")] {
		t.Fatal("generated register package should be among the synthesis files")
	}
	if !generated[path.Join(modulePath, "apa_reg_file.vhd")] {
		t.Fatal("generated register file wrapper should be among the synthesis files")
	}
}
