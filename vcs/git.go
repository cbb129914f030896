package vcs

import (
	"github.com/go-git/go-git/v5"
	"github.com/pkg/errors"
)

// GitCommandsAreAvailable reports whether path is inside a git repository.
func GitCommandsAreAvailable(path string) bool {
	_, err := openRepository(path)
	return err == nil
}

func openRepository(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open git repository at '%s'", path)
	}
	return repo, nil
}

// GitIsDirty reports whether the repository containing path has any
// uncommited changes.
func GitIsDirty(path string) (bool, error) {
	repo, err := openRepository(path)
	if err != nil {
		return false, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, errors.Wrap(err, "failed to get repo worktree")
	}
	status, err := worktree.Status()
	if err != nil {
		return false, errors.Wrap(err, "failed to get repo status")
	}
	return !status.IsClean(), nil
}

// GitCommitInformation returns the short hash of HEAD in the repository
// containing path, with a "+" suffix when the working tree is dirty.
func GitCommitInformation(path string) (string, error) {
	repo, err := openRepository(path)
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", errors.Wrap(err, "failed to get repo HEAD")
	}
	commit := head.Hash().String()[:8]

	dirty, err := GitIsDirty(path)
	if err != nil {
		return "", err
	}
	if dirty {
		commit += "+"
	}
	return commit, nil
}

// CommitInformation returns a human-readable description of the current
// source revision at path. Git takes precedence over SVN. The empty string
// is returned when no version control information is available.
func CommitInformation(path string) string {
	if GitCommandsAreAvailable(path) {
		if commit, err := GitCommitInformation(path); err == nil {
			return "commit " + commit
		}
	}
	if SvnCommandsAreAvailable() {
		if revision, err := SvnRevisionInformation(path); err == nil {
			return "revision " + revision
		}
	}
	return ""
}
