package vcs

import (
	"os/exec"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Matches status lines that indicate a local modification. Lines starting
// with '?' (untracked) do not count as modifications.
var svnModificationRegexp = regexp.MustCompile(`^[MADRC!~]`)

// SvnCommandsAreAvailable reports whether the svn client can be used.
func SvnCommandsAreAvailable() bool {
	_, err := exec.LookPath("svn")
	return err == nil
}

// SvnLocalChangesArePresent reports whether the working copy at cwd has any
// local modifications.
func SvnLocalChangesArePresent(cwd string) (bool, error) {
	cmd := exec.Command("svn", "status")
	cmd.Dir = cwd
	output, err := cmd.Output()
	if err != nil {
		return false, errors.Wrap(err, "failed to run 'svn status'")
	}
	return svnStatusHasModifications(string(output)), nil
}

func svnStatusHasModifications(status string) bool {
	for _, line := range strings.Split(status, "\n") {
		if svnModificationRegexp.MatchString(line) {
			return true
		}
	}
	return false
}

// SvnRevisionInformation returns a revision string like "r1234" for the
// working copy at cwd, with a "+" suffix when local changes are present.
func SvnRevisionInformation(cwd string) (string, error) {
	cmd := exec.Command("svnversion")
	cmd.Dir = cwd
	output, err := cmd.Output()
	if err != nil {
		return "", errors.Wrap(err, "failed to run 'svnversion'")
	}

	revision := strings.TrimSpace(string(output))
	if revision == "" {
		return "", errors.New("got empty svnversion output")
	}
	return "r" + revision, nil
}
