package module

import (
	"os"
	"path"
	"testing"

	"github.com/ru551n/tsfpga/registers"
)

func createModulesFolder(t *testing.T, names ...string) string {
	t.Helper()
	modulesFolder := t.TempDir()
	for _, name := range names {
		if err := os.MkdirAll(path.Join(modulesFolder, name), 0775); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return modulesFolder
}

func TestGetModulesNameFiltering(t *testing.T) {
	modulesFolder := createModulesFolder(t, "a", "b", "c")

	modules := GetModules([]string{modulesFolder}, map[string]bool{"a": true, "b": true}, nil, false, nil)
	if len(modules) != 2 {
		t.Fatalf("unexpected number of modules: %d", len(modules))
	}
	for _, mod := range modules {
		if mod.Name == "c" {
			t.Fatal("module c should have been filtered out")
		}
	}

	modules = GetModules([]string{modulesFolder}, nil, map[string]bool{"b": true}, false, nil)
	if len(modules) != 2 {
		t.Fatalf("unexpected number of modules: %d", len(modules))
	}
	if modules.Get("b") != nil {
		t.Fatal("module b should have been avoided")
	}
}

func TestGetModulesLibraryName(t *testing.T) {
	modulesFolder := createModulesFolder(t, "a", "b")

	for _, mod := range GetModules([]string{modulesFolder}, nil, nil, false, nil) {
		if mod.LibraryName != mod.Name {
			t.Fatal("library name should equal module name")
		}
	}

	for _, mod := range GetModules([]string{modulesFolder}, nil, nil, true, nil) {
		if mod.LibraryName != mod.Name+"_lib" {
			t.Fatal("library name should have lib suffix")
		}
	}
}

func TestStrayFileInModulesFolder(t *testing.T) {
	modulesFolder := createModulesFolder(t, "a", "b", "c")
	if err := os.WriteFile(path.Join(modulesFolder, "text_file.txt"), []byte("hello"), 0664); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	modules := GetModules([]string{modulesFolder}, nil, nil, false, nil)
	if len(modules) != 3 {
		t.Fatalf("unexpected number of modules: %d", len(modules))
	}
}

func TestFactoryOverride(t *testing.T) {
	modulesFolder := createModulesFolder(t, "override_me", "plain")

	RegisterFactory("override_me", func(modulePath, libraryName string, defaultRegisters []*registers.Register) *Module {
		mod := NewModule(modulePath, libraryName, defaultRegisters)
		mod.SetupSimulation = func(extra map[string]interface{}) {}
		return mod
	})

	modules := GetModules([]string{modulesFolder}, nil, nil, false, nil)
	if len(modules) != 2 {
		t.Fatalf("unexpected number of modules: %d", len(modules))
	}

	if modules.Get("override_me").SetupSimulation == nil {
		t.Fatal("factory override should have been used")
	}
	if modules.Get("plain").SetupSimulation != nil {
		t.Fatal("default constructor should have been used")
	}
}

func TestModuleListCopy(t *testing.T) {
	modulesFolder := createModulesFolder(t, "a")
	modules := GetModules([]string{modulesFolder}, nil, nil, false, nil)

	copied := modules.Copy()
	copied = append(copied, NewModule("/apa/b", "b", nil))
	if len(modules) != 1 {
		t.Fatal("appending to a copy should not affect the original")
	}
}
