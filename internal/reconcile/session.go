// Package reconcile recomputes a patch's line offsets by materializing its
// effect on an ephemeral branch and re-diffing against a baseline branch.
package reconcile

import (
	"context"
	"fmt"
	"os"
	"time"

	logger "github.com/sirupsen/logrus"
)

// Session identifies one reconciliation attempt: the ephemeral branch name,
// the caller's original branch-or-commit reference, and whether the branch
// was actually created. It is created at the start of an offset operation
// and always torn down afterwards, regardless of outcome.
//
// Sessions do not serialize repository access: two sessions must not run
// concurrently against the same repository, because both mutate HEAD and
// the index. That invariant is the caller's to enforce.
type Session struct {
	Branch      string
	OriginalRef string

	branchCreated bool
}

// NewSession builds a session with a process-unique, timestamp-qualified
// branch name derived from the given prefix.
func NewSession(branchPrefix, originalRef string) *Session {
	return &Session{
		Branch: fmt.Sprintf("%s-%s-%d",
			branchPrefix, time.Now().UTC().Format("20060102-150405"), os.Getpid()),
		OriginalRef: originalRef,
	}
}

// markBranchCreated records that the ephemeral branch exists and must be
// deleted during cleanup.
func (it *Session) markBranchCreated() {
	it.branchCreated = true
}

// Cleanup restores the original branch-or-commit and deletes the ephemeral
// branch if it was created. It runs even after a fatal error; its own
// failures are logged as warnings rather than escalated, so they never mask
// the original error.
func (it *Session) Cleanup(ctx context.Context, git GitService) {
	if _, ok, err := git.RunAllowFailure(ctx, "checkout", "--force", it.OriginalRef); err != nil || !ok {
		logger.Warnf("cleanup: failed to restore %q: %v", it.OriginalRef, err)
	}

	if !it.branchCreated {
		return
	}
	if _, ok, err := git.RunAllowFailure(ctx, "branch", "-D", it.Branch); err != nil || !ok {
		logger.Warnf("cleanup: failed to delete ephemeral branch %q: %v", it.Branch, err)
	}
}
