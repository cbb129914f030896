package module

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/ru551n/tsfpga/util"
)

// Constraint is a constraint file that shall be applied to a build.
type Constraint struct {
	File string
	// UsedIn restricts the build steps where the constraint applies:
	// "all", "synth" or "impl".
	UsedIn string
	// ScopedConstraint marks a constraint that applies to one entity only.
	// The target entity is named by the file stem.
	ScopedConstraint bool
	// ProcessingOrder is "normal", "early" or "late".
	ProcessingOrder string
}

// NewConstraint creates a global constraint that applies to all build steps.
func NewConstraint(file string) Constraint {
	return Constraint{
		File:            file,
		UsedIn:          "all",
		ProcessingOrder: "normal",
	}
}

// EntityName returns the name of the entity a scoped constraint targets.
func (constraint Constraint) EntityName() string {
	return util.Stem(constraint.File)
}

// ValidateScopedEntity checks that the target entity of a scoped constraint
// exists among the given source files.
func (constraint Constraint) ValidateScopedEntity(sourceFiles []HdlFile) error {
	entityName := constraint.EntityName()
	for _, sourceFile := range sourceFiles {
		if util.Stem(sourceFile.Path) == entityName {
			return nil
		}
	}
	return errors.Errorf(
		"could not find a matching entity file for constraint file %s", constraint.File)
}

func (constraint Constraint) String() string {
	return fmt.Sprintf("Constraint('%s')", constraint.File)
}
