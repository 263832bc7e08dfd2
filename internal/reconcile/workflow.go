package reconcile

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/patchforge/patchforge/internal/diff"
	"github.com/patchforge/patchforge/internal/gitrun"
)

// GitService is the slice of git behaviour the workflow needs. It is
// satisfied by *gitrun.Runner and by hand-crafted test doubles.
type GitService interface {
	Run(ctx context.Context, args ...string) (string, error)
	RunAllowFailure(ctx context.Context, args ...string) (string, bool, error)
	Apply(ctx context.Context, patchFile string, opts gitrun.ApplyOptions) error
}

// BranchProber answers read-only branch existence questions; satisfied by
// *gitrun.Repository.
type BranchProber interface {
	HasBranch(name string) (bool, error)
}

var (
	// ErrDirtyWorkingTree aborts the workflow before any branch is touched.
	ErrDirtyWorkingTree = errors.New("working tree has uncommitted changes")
	// ErrMissingBaseline means the diff baseline branch does not exist.
	ErrMissingBaseline = errors.New("baseline branch does not exist")
	// ErrReplayFailed means neither reverse- nor forward-apply succeeded:
	// the patch is obsolete or could not be processed.
	ErrReplayFailed = errors.New("patch is obsolete or could not be processed")
)

const subjectLinePrefix = "Subject:"

// Options configures one reconciliation run.
type Options struct {
	// PatchPath is the patch file, passed to git apply.
	PatchPath string
	// OriginalContent is the patch file's current text.
	OriginalContent string
	// Message overrides the embedded message; when empty the message is
	// mined from the original patch text.
	Message string
}

// Result is the outcome of a reconciliation run.
type Result struct {
	// Content is the final patch text (message line plus diff body).
	Content string
	// Updated reports whether Content differs from the original text; when
	// false no file write should occur.
	Updated bool
	// Inverted reports that the recomputed diff was discarded as an
	// artifact of the remove step, keeping the original body.
	Inverted bool
	// Message is the embedded message, possibly mined from the old patch.
	Message string
}

// Workflow drives the offset reconciliation state machine:
// clean-check -> branch-create -> replay -> stage+commit -> diff-vs-baseline
// -> structural-compare -> adopt-or-discard -> cleanup (always).
type Workflow struct {
	git      GitService
	prober   BranchProber
	baseline string
	prefix   string
}

// NewWorkflow creates a workflow diffing against the given baseline branch
// and naming ephemeral branches with the given prefix.
func NewWorkflow(git GitService, prober BranchProber, baseline, branchPrefix string) *Workflow {
	return &Workflow{
		git:      git,
		prober:   prober,
		baseline: baseline,
		prefix:   branchPrefix,
	}
}

// Reconcile recomputes the patch's offsets. Precondition failures
// (ErrDirtyWorkingTree, ErrMissingBaseline) are reported before any branch
// mutation; every later failure still restores the original checkout.
func (it *Workflow) Reconcile(ctx context.Context, opts Options) (*Result, error) {
	if err := it.checkPreconditions(ctx); err != nil {
		return nil, err
	}

	originalRef, err := it.currentRef(ctx)
	if err != nil {
		return nil, err
	}

	session := NewSession(it.prefix, originalRef)
	defer session.Cleanup(ctx, it.git)

	newDiff, err := it.materialize(ctx, session, opts.PatchPath)
	if err != nil {
		return nil, err
	}

	return it.decide(opts, newDiff)
}

// checkPreconditions verifies a clean working tree and an existing baseline
// branch. Both are fatal and leave the repository untouched.
func (it *Workflow) checkPreconditions(ctx context.Context) error {
	status, err := it.git.Run(ctx, "status", "--porcelain")
	if err != nil {
		return fmt.Errorf("failed to check working tree status: %w", err)
	}
	if strings.TrimSpace(status) != "" {
		return ErrDirtyWorkingTree
	}

	exists, err := it.prober.HasBranch(it.baseline)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %q", ErrMissingBaseline, it.baseline)
	}

	return nil
}

// currentRef captures the caller's branch name, falling back to the commit
// hash on a detached HEAD.
func (it *Workflow) currentRef(ctx context.Context) (string, error) {
	ref, ok, err := it.git.RunAllowFailure(ctx, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to resolve current branch: %w", err)
	}
	if ok && strings.TrimSpace(ref) != "" {
		return strings.TrimSpace(ref), nil
	}

	hash, err := it.git.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD commit: %w", err)
	}
	return strings.TrimSpace(hash), nil
}

// materialize creates the ephemeral branch, replays the patch on it,
// commits the outcome and re-diffs against the baseline.
func (it *Workflow) materialize(ctx context.Context, session *Session, patchPath string) (string, error) {
	if _, err := it.git.Run(ctx, "checkout", "-b", session.Branch); err != nil {
		return "", fmt.Errorf("failed to create ephemeral branch %q: %w", session.Branch, err)
	}
	session.markBranchCreated()

	if err := it.replay(ctx, patchPath); err != nil {
		return "", err
	}

	if _, err := it.git.Run(ctx, "add", "-A"); err != nil {
		return "", fmt.Errorf("failed to stage replayed changes: %w", err)
	}

	commitMessage := fmt.Sprintf("Reconcile offsets for %s", filepath.Base(patchPath))
	if _, err := it.git.Run(ctx, "commit", "--allow-empty", "-m", commitMessage); err != nil {
		return "", fmt.Errorf("failed to commit replayed changes: %w", err)
	}

	newDiff, err := it.git.Run(ctx, "diff", it.baseline, "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to diff against %q: %w", it.baseline, err)
	}
	return newDiff, nil
}

// replay first reverse-applies the patch (simulating removal of the change)
// and falls back to a forward apply (simulating addition). Both failing
// means the patch no longer relates to the tree.
func (it *Workflow) replay(ctx context.Context, patchPath string) error {
	reverseErr := it.git.Apply(ctx, patchPath, gitrun.ApplyOptions{Reverse: true})
	if reverseErr == nil {
		return nil
	}
	logger.Debugf("reverse apply failed (%v), attempting forward apply", reverseErr)

	if forwardErr := it.git.Apply(ctx, patchPath, gitrun.ApplyOptions{}); forwardErr != nil {
		return fmt.Errorf("%w: reverse apply: %v; forward apply: %v",
			ErrReplayFailed, reverseErr, forwardErr)
	}
	return nil
}

// decide classifies the recomputed diff, picks the final body and message
// and reports whether the patch file content actually changed.
func (it *Workflow) decide(opts Options, newDiff string) (*Result, error) {
	originalHeaders, err := diff.ParseHunkHeaders(opts.OriginalContent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse original hunk headers: %w", err)
	}
	newHeaders, err := diff.ParseHunkHeaders(newDiff)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recomputed hunk headers: %w", err)
	}

	message := opts.Message
	if message == "" {
		message = diff.ExtractMessage(opts.OriginalContent)
	}

	result := &Result{Message: message}

	if IsInvertedDiff(originalHeaders, newHeaders) {
		logger.Info("recomputed diff is the structural inverse of the original; keeping the original body")
		result.Inverted = true
		result.Content = embedMessage(message, stripSubjectLine(opts.OriginalContent))
	} else {
		body := newDiff
		if body != "" && !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		result.Content = embedMessage(message, body)
	}

	result.Updated = result.Content != opts.OriginalContent
	return result, nil
}

// embedMessage prefixes the diff body with a "Subject: [PATCH] ..." line
// and a blank separator; with no message the body stands alone.
func embedMessage(message, body string) string {
	if message == "" {
		return body
	}
	return fmt.Sprintf("%s [PATCH] %s\n\n%s", subjectLinePrefix, message, body)
}

// stripSubjectLine removes an existing leading Subject line and its blank
// separator, leaving the diff body.
func stripSubjectLine(content string) string {
	if !strings.HasPrefix(content, subjectLinePrefix) {
		return content
	}

	rest := content
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		rest = rest[idx+1:]
	} else {
		rest = ""
	}
	rest = strings.TrimPrefix(rest, "\n")
	return rest
}
