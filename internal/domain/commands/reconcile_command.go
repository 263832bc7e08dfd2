package commands

import (
	"context"
	"fmt"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/patchforge/patchforge/internal/domain/entities"
	"github.com/patchforge/patchforge/internal/gitrun"
	"github.com/patchforge/patchforge/internal/infrastructure/repositories/patchfile"
	"github.com/patchforge/patchforge/internal/reconcile"
)

// Reconcile is the interface for the offset reconciliation flow.
type Reconcile interface {
	Execute(ctx context.Context, settings *entities.Settings, opts ReconcileOptions) (*ReconcileReport, error)
}

// ReconcileOptions holds runtime options for one reconciliation run.
type ReconcileOptions struct {
	PatchPath string
	// RepoDir is any directory inside the target repository; empty means
	// the current directory.
	RepoDir string
	// Message overrides the embedded patch message.
	Message string
	Verbose bool
}

// ReconcileReport summarizes one reconciliation run.
type ReconcileReport struct {
	Result  *reconcile.Result
	Written bool
}

// ReconcileCommand recomputes a patch's offsets on an ephemeral branch and
// rewrites the patch file when the content actually changed.
type ReconcileCommand struct {
	patchFiles *patchfile.Repository
}

// NewReconcileCommand creates a new ReconcileCommand.
func NewReconcileCommand(patchFiles *patchfile.Repository) *ReconcileCommand {
	return &ReconcileCommand{patchFiles: patchFiles}
}

// Execute runs the workflow against the repository containing opts.RepoDir.
// Only one reconciliation may run against a repository at a time.
func (it *ReconcileCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts ReconcileOptions,
) (*ReconcileReport, error) {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	content, err := it.patchFiles.Read(opts.PatchPath)
	if err != nil {
		return nil, err
	}

	repoDir := opts.RepoDir
	if repoDir == "" {
		repoDir = "."
	}
	repository, err := gitrun.OpenRepository(repoDir)
	if err != nil {
		return nil, err
	}

	// git commands run from the repo root, so the patch path must survive
	// the directory change.
	patchPath, err := filepath.Abs(opts.PatchPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve patch path %q: %w", opts.PatchPath, err)
	}

	runner := gitrun.NewRunner(repository.Root())
	workflow := reconcile.NewWorkflow(runner, repository, settings.BaselineBranch, settings.BranchPrefix)

	result, err := workflow.Reconcile(ctx, reconcile.Options{
		PatchPath:       patchPath,
		OriginalContent: content,
		Message:         opts.Message,
	})
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{Result: result}
	if !result.Updated {
		logger.Info("patch content unchanged; skipping write")
		return report, nil
	}

	if writeErr := it.patchFiles.Write(opts.PatchPath, result.Content); writeErr != nil {
		return report, writeErr
	}
	report.Written = true

	return report, nil
}
