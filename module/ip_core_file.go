package module

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/ru551n/tsfpga/util"
)

// IpCoreFile is a TCL file that creates an IP core. The variables map can be
// used to parameterize the IP core creation.
type IpCoreFile struct {
	Path      string
	Variables map[string]string
}

// Name returns the IP core name, which is the file name without extension.
func (file IpCoreFile) Name() (string, error) {
	stem := util.Stem(file.Path)
	if strings.Contains(stem, " ") {
		return "", errors.Errorf("file name may not contain spaces: %s", file.Path)
	}
	return stem, nil
}

// VariableLines returns deterministic TCL "set" lines for the variables,
// to be placed before sourcing the IP core file.
func (file IpCoreFile) VariableLines() []string {
	lines := []string{}
	for _, entry := range util.OrderedEntries(file.Variables) {
		lines = append(lines, fmt.Sprintf("set %s %q", entry.Key, entry.Value))
	}
	return lines
}

func (file IpCoreFile) String() string {
	return fmt.Sprintf("IpCoreFile('%s', %v)", file.Path, file.Variables)
}
