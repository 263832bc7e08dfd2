// Package gitdoubles provides test doubles (spies, stubs) for the git
// collaborators of the reconciliation workflow. These are hand-crafted
// implementations, no mock frameworks.
package gitdoubles

import (
	"context"
	"strings"

	"github.com/patchforge/patchforge/internal/gitrun"
)

// SpyGitService implements reconcile.GitService and reconcile.BranchProber
// as a configurable spy. Configure the response fields for the commands
// your test exercises, then inspect the call-tracking fields.
type SpyGitService struct {
	// --- status --porcelain ---
	StatusOutput string

	// --- symbolic-ref / rev-parse ---
	CurrentBranch string // empty simulates a detached HEAD
	HeadHash      string

	// --- diff <baseline> HEAD ---
	DiffOutput string

	// --- branch existence ---
	Branches map[string]bool

	// --- failure injection, keyed by the first git argument ---
	RunErrs map[string]error

	// --- apply ---
	ReverseApplyErr error
	ForwardApplyErr error

	// spy: every Run/RunAllowFailure invocation, args joined by spaces
	Calls []string
	// spy: patch files passed to Apply, with their options
	Applied []AppliedPatch
}

// AppliedPatch records one Apply invocation.
type AppliedPatch struct {
	PatchFile string
	Options   gitrun.ApplyOptions
}

// Run dispatches on the git subcommand and returns the configured output.
func (it *SpyGitService) Run(_ context.Context, args ...string) (string, error) {
	it.Calls = append(it.Calls, strings.Join(args, " "))

	if err := it.RunErrs[args[0]]; err != nil {
		return "", err
	}

	switch args[0] {
	case "status":
		return it.StatusOutput, nil
	case "rev-parse":
		return it.HeadHash, nil
	case "diff":
		return it.DiffOutput, nil
	default:
		return "", nil
	}
}

// RunAllowFailure tolerates failures the way the real runner does for
// optional probes and cleanup commands.
func (it *SpyGitService) RunAllowFailure(_ context.Context, args ...string) (string, bool, error) {
	it.Calls = append(it.Calls, strings.Join(args, " "))

	switch args[0] {
	case "symbolic-ref":
		if it.CurrentBranch == "" {
			return "", false, nil
		}
		return it.CurrentBranch, true, nil
	default:
		return "", true, nil
	}
}

// Apply records the invocation and returns the configured error.
func (it *SpyGitService) Apply(_ context.Context, patchFile string, opts gitrun.ApplyOptions) error {
	it.Applied = append(it.Applied, AppliedPatch{PatchFile: patchFile, Options: opts})
	if opts.Reverse {
		return it.ReverseApplyErr
	}
	return it.ForwardApplyErr
}

// HasBranch implements reconcile.BranchProber.
func (it *SpyGitService) HasBranch(name string) (bool, error) {
	return it.Branches[name], nil
}

// CalledWithPrefix reports whether any recorded call starts with the given
// argument prefix (e.g. "checkout -b").
func (it *SpyGitService) CalledWithPrefix(prefix string) bool {
	for _, call := range it.Calls {
		if strings.HasPrefix(call, prefix) {
			return true
		}
	}
	return false
}
