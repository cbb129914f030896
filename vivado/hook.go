package vivado

import (
	"fmt"
	"strings"
)

// BuildStepTclHook represents a TCL file that shall be used as hook in one
// of the Vivado build steps.
type BuildStepTclHook struct {
	// TclFile is the path to the hook TCL file.
	TclFile string
	// HookStep is the name of a build step, e.g. "STEPS.ROUTE_DESIGN.TCL.PRE".
	HookStep string
}

// StepIsSynth reports whether the build step is in synthesis.
func (hook BuildStepTclHook) StepIsSynth() bool {
	return strings.Contains(strings.ToLower(hook.HookStep), "synth")
}

// TclSetProperty returns the TCL line that associates this hook with a run.
func (hook BuildStepTclHook) TclSetProperty(run string) string {
	return fmt.Sprintf("set_property %s {%s} %s", hook.HookStep, hook.TclFile, run)
}

func (hook BuildStepTclHook) String() string {
	return fmt.Sprintf("BuildStepTclHook:%s:%s", hook.HookStep, hook.TclFile)
}
