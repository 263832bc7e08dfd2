package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/patchforge/patchforge/internal/domain/commands"
	"github.com/patchforge/patchforge/internal/domain/entities"
)

// UpgradeController handles the "upgrade" subcommand.
type UpgradeController struct {
	command commands.Upgrade
}

// NewUpgradeController creates a new UpgradeController.
func NewUpgradeController(command commands.Upgrade) *UpgradeController {
	return &UpgradeController{command: command}
}

// GetBind returns the Cobra command metadata for the upgrade controller.
func (it *UpgradeController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "upgrade <patch-file>",
		Short: "Refresh a patch's change content from the live target files",
		Long: `Verify a patch's frames and, when they are intact, surgically replace
only the content of each modification run from the current target file,
leaving hunk structure and counts untouched. The original patch is
copied to <patch-file>.backup before it is overwritten.`,
	}
}

// Execute runs the surgical upgrade flow and logs a summary.
func (it *UpgradeController) Execute(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		logger.Error("upgrade requires a patch file argument")
		return
	}

	settings := loadSettings(cmd)
	verbose, _ := cmd.Flags().GetBool("verbose")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	targetDir, _ := cmd.Flags().GetString("target-dir")

	report, err := it.command.Execute(context.Background(), settings, commands.UpgradeOptions{
		PatchPath: args[0],
		TargetDir: targetDir,
		Verbose:   verbose,
		DryRun:    dryRun,
	})
	if err != nil {
		logger.Errorf("Upgrade failed: %v", err)
		if report == nil {
			return
		}
	}

	logVerification(report.Verification)

	for path, outcome := range report.Outcomes {
		upgraded, skipped := 0, 0
		for _, block := range outcome.Blocks {
			if block.Upgraded {
				upgraded++
			} else {
				skipped++
			}
			if block.Warning != "" {
				logger.Warnf("%s: %s", path, block.Warning)
			}
		}
		logger.Infof("%s: %d block(s) upgraded, %d skipped", path, upgraded, skipped)
	}

	if report.Written {
		logger.Infof("Patch rewritten; previous version kept at %s", report.BackupPath)
	}
}
