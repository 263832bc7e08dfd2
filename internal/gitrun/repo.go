package gitrun

import (
	"errors"
	"fmt"

	gitc "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repository wraps a go-git handle for read-only probes: repository
// discovery and branch existence. Everything that mutates the tree goes
// through the Runner instead.
type Repository struct {
	repo *gitc.Repository
	root string
}

// OpenRepository locates the git repository containing dir, walking up to
// the nearest .git directory.
func OpenRepository(dir string) (*Repository, error) {
	repo, err := gitc.PlainOpenWithOptions(dir, &gitc.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %q: %w", dir, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository worktree: %w", err)
	}

	return &Repository{repo: repo, root: worktree.Filesystem.Root()}, nil
}

// Root returns the worktree root directory.
func (it *Repository) Root() string {
	return it.root
}

// HasBranch reports whether a local branch with the given name exists.
func (it *Repository) HasBranch(name string) (bool, error) {
	_, err := it.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up branch %q: %w", name, err)
	}
	return true, nil
}
