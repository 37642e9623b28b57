package cache

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// DirtySuffix marks the revision of a worktree with uncommitted changes
const DirtySuffix = "-dirty"

// Revision returns the HEAD commit of the git repository enclosing dir.
// It returns an empty revision outside a repository or before the first commit.
func Revision(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err == git.ErrRepositoryNotExists {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	ref, err := repo.Head()
	if err == plumbing.ErrReferenceNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	revision := ref.Hash().String()
	worktree, err := repo.Worktree()
	if err == git.ErrIsBareRepository {
		return revision, nil
	}
	if err != nil {
		return "", err
	}
	status, err := worktree.Status()
	if err != nil {
		return "", err
	}
	if !status.IsClean() {
		revision += DirtySuffix
	}
	return revision, nil
}
