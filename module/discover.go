package module

import (
	"os"
	"path"
	"strings"

	"github.com/ru551n/tsfpga/log"
	"github.com/ru551n/tsfpga/registers"
	"github.com/ru551n/tsfpga/util"
)

// FindFiles returns every regular file in the given folders whose lowercased
// name ends with one of the file endings, optionally intersected with an
// include set and subtracted by an avoid set.
//
// Non-existent folders contribute nothing. Ordering is folder order, then
// directory entry order; callers must not depend on any particular order
// beyond set equality.
func FindFiles(folders []string, fileEndings []string, filesInclude map[string]bool, filesAvoid map[string]bool) []string {
	files := []string{}
	for _, folder := range folders {
		entries, err := os.ReadDir(folder)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			if !hasAnyEnding(strings.ToLower(entry.Name()), fileEndings) {
				continue
			}

			file := path.Join(folder, entry.Name())

			if filesInclude != nil && !filesInclude[file] {
				continue
			}
			if filesAvoid != nil && filesAvoid[file] {
				continue
			}

			files = append(files, file)
		}
	}
	return files
}

func hasAnyEnding(name string, fileEndings []string) bool {
	for _, ending := range fileEndings {
		if strings.HasSuffix(name, ending) {
			return true
		}
	}
	return false
}

// Factory creates a module object for a module folder. Registering a factory
// for a module name overrides the default constructor, which lets a project
// attach hooks or change file gathering for that module.
type Factory func(modulePath, libraryName string, defaultRegisters []*registers.Register) *Module

var factories = util.NewOrderedMap[string, Factory]()

// RegisterFactory registers a module factory override for the given module
// name. Registering the same name twice aborts.
func RegisterFactory(moduleName string, factory Factory) {
	factories.Insert(moduleName, factory)
}

func newModuleObject(modulePath, moduleName string, libraryNameHasLibSuffix bool, defaultRegisters []*registers.Register) *Module {
	libraryName := moduleName
	if libraryNameHasLibSuffix {
		libraryName = moduleName + "_lib"
	}

	if factory, ok := factories.Lookup(moduleName); ok {
		log.Debug("Using registered factory for module '%s'.\n", moduleName)
		return factory(modulePath, libraryName, defaultRegisters)
	}
	return NewModule(modulePath, libraryName, defaultRegisters)
}

// GetModules returns module objects for the sub-folders of the given modules
// folders. Stray files in a modules folder are ignored.
func GetModules(
	modulesFolders []string,
	namesInclude map[string]bool,
	namesAvoid map[string]bool,
	libraryNameHasLibSuffix bool,
	defaultRegisters []*registers.Register,
) List {
	modules := List{}

	for _, modulesFolder := range modulesFolders {
		entries, err := os.ReadDir(modulesFolder)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			moduleName := entry.Name()
			if namesInclude != nil && !namesInclude[moduleName] {
				continue
			}
			if namesAvoid != nil && namesAvoid[moduleName] {
				continue
			}

			modules = append(modules, newModuleObject(
				path.Join(modulesFolder, moduleName),
				moduleName,
				libraryNameHasLibSuffix,
				defaultRegisters,
			))
		}
	}

	return modules
}
