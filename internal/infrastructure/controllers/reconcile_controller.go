package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/patchforge/patchforge/internal/domain/commands"
	"github.com/patchforge/patchforge/internal/domain/entities"
)

// ReconcileController handles the "reconcile" subcommand.
type ReconcileController struct {
	command commands.Reconcile
}

// NewReconcileController creates a new ReconcileController.
func NewReconcileController(command commands.Reconcile) *ReconcileController {
	return &ReconcileController{command: command}
}

// GetBind returns the Cobra command metadata for the reconcile controller.
func (it *ReconcileController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "reconcile <patch-file>",
		Short: "Recompute a patch's line offsets on an ephemeral branch",
		Long: `Replay the patch on a disposable branch, commit the result and re-diff
against the baseline branch to recompute hunk offsets. A recomputed diff
that is the exact structural inverse of the original is discarded as an
artifact of the replay. Requires a clean working tree and an existing
baseline branch; the original checkout is always restored.`,
	}
}

// Execute runs the offset reconciliation workflow and logs the outcome.
func (it *ReconcileController) Execute(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		logger.Error("reconcile requires a patch file argument")
		return
	}

	settings := loadSettings(cmd)
	verbose, _ := cmd.Flags().GetBool("verbose")
	message, _ := cmd.Flags().GetString("message")
	repoDir, _ := cmd.Flags().GetString("repo")

	report, err := it.command.Execute(context.Background(), settings, commands.ReconcileOptions{
		PatchPath: args[0],
		RepoDir:   repoDir,
		Message:   message,
		Verbose:   verbose,
	})
	if err != nil {
		logger.Errorf("Reconciliation failed: %v", err)
		return
	}

	switch {
	case report.Result.Inverted:
		logger.Info("Recomputed diff was inverted; original body kept")
	case report.Written:
		logger.Info("Patch offsets reconciled and written")
	default:
		logger.Info("Patch already up to date")
	}
}

// AddFlags adds the reconcile-specific flags to the given Cobra command.
func (it *ReconcileController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("message", "", "Message to embed as the patch subject (default: mined from the patch)")
	cmd.Flags().String("repo", "", "Directory inside the target repository (default: current directory)")
}
