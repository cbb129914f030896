package vivado

import (
	"fmt"
	"strings"

	"github.com/ru551n/tsfpga/util"
)

// BuildResult reports the outcome of a toolchain build. It has no identity
// beyond the build invocation that created it.
type BuildResult struct {
	// Name of the build.
	Name string
	// Success is false when any build stage failed.
	Success bool
	// SynthesisSize holds resource utilization after synthesis.
	SynthesisSize map[string]int
	// ImplementationSize holds resource utilization after implementation.
	ImplementationSize map[string]int
}

// NewBuildResult creates a successful build result with no metadata.
func NewBuildResult(name string) *BuildResult {
	return &BuildResult{Name: name, Success: true}
}

// SizeSummary returns a human-readable summary of the utilization figures,
// or the empty string when no figures were collected.
func (result *BuildResult) SizeSummary() string {
	size := result.ImplementationSize
	header := "Implementation size for"
	if len(size) == 0 {
		size = result.SynthesisSize
		header = "Synthesis size for"
	}
	if len(size) == 0 {
		return ""
	}

	lines := []string{fmt.Sprintf("%s %s:", header, result.Name)}
	for _, entry := range util.OrderedEntries(size) {
		lines = append(lines, fmt.Sprintf("  %s: %d", entry.Key, entry.Value))
	}
	return strings.Join(lines, "\n")
}
