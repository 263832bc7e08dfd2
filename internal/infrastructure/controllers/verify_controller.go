package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/patchforge/patchforge/internal/domain/commands"
	"github.com/patchforge/patchforge/internal/domain/entities"
	"github.com/patchforge/patchforge/internal/frames"
)

// VerifyController handles the "verify" subcommand.
type VerifyController struct {
	command commands.Verify
}

// NewVerifyController creates a new VerifyController.
func NewVerifyController(command commands.Verify) *VerifyController {
	return &VerifyController{command: command}
}

// GetBind returns the Cobra command metadata for the verify controller.
func (it *VerifyController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "verify <patch-file>",
		Short: "Check whether a patch's frames still match its target files",
		Long: `Parse a patch file, identify its homogeneous insert/delete runs and
verify that the context lines framing each run still exist unchanged in
the current target files. Reports intact, corrupted or error per file
without modifying anything.`,
	}
}

// Execute runs the verification pass and logs the per-file outcome.
func (it *VerifyController) Execute(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		logger.Error("verify requires a patch file argument")
		return
	}

	settings := loadSettings(cmd)
	verbose, _ := cmd.Flags().GetBool("verbose")
	targetDir, _ := cmd.Flags().GetString("target-dir")

	result, err := it.command.Execute(context.Background(), settings, commands.VerifyOptions{
		PatchPath: args[0],
		TargetDir: targetDir,
		Verbose:   verbose,
	})
	if err != nil {
		logger.Errorf("Verification failed: %v", err)
		return
	}

	logVerification(result)
}

// logVerification renders a VerificationResult, naming each failed frame
// and the line it failed at.
func logVerification(result *commands.VerificationResult) {
	for _, file := range result.Files {
		switch file.Status {
		case frames.StatusIntact:
			logger.Infof("%s: intact", file.TargetPath)
		case frames.StatusCorrupted:
			logger.Warnf("%s: corrupted", file.TargetPath)
			for _, failed := range file.FailedChecks() {
				logger.Warnf("  %s", failed.Describe())
			}
		case frames.StatusError:
			logger.Errorf("%s: %v", file.TargetPath, file.Err)
		}
	}

	if result.Intact() {
		logger.Info("Patch integrity holds for every file")
	}
}
