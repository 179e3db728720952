// Package gitref resolves commit identifiers from a local git repository.
package gitref

import (
	"fmt"

	git "github.com/go-git/go-git/v5"
)

// ShortLen is the length commit identifiers are trimmed to.
const ShortLen = 8

// Head returns the HEAD commit hash and branch name for the repository
// containing path. The branch name is empty on a detached HEAD.
func Head(path string) (commit, branch string, err error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", "", fmt.Errorf("open repository at %s: %w", path, err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", "", fmt.Errorf("resolve HEAD: %w", err)
	}

	if head.Name().IsBranch() {
		branch = head.Name().Short()
	}
	return head.Hash().String(), branch, nil
}

// Short trims a commit hash to the conventional short form.
func Short(commit string) string {
	if len(commit) <= ShortLen {
		return commit
	}
	return commit[:ShortLen]
}
