package commands

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	logger "github.com/sirupsen/logrus"

	"github.com/patchforge/patchforge/internal/diff"
	"github.com/patchforge/patchforge/internal/domain/entities"
	"github.com/patchforge/patchforge/internal/frames"
	"github.com/patchforge/patchforge/internal/infrastructure/repositories/patchfile"
)

// Upgrade is the interface for the surgical upgrade flow.
type Upgrade interface {
	Execute(ctx context.Context, settings *entities.Settings, opts UpgradeOptions) (*UpgradeReport, error)
}

// UpgradeOptions holds runtime options for one surgical upgrade run.
type UpgradeOptions struct {
	PatchPath string
	TargetDir string
	Verbose   bool
	// DryRun verifies and upgrades in memory without writing the file.
	DryRun bool
}

// UpgradeReport summarizes one surgical upgrade run.
type UpgradeReport struct {
	Verification *VerificationResult
	// Outcomes holds per-file upgrade results, for intact files only.
	Outcomes map[string]*frames.UpgradeOutcome
	// Written reports whether the patch file was rewritten (a backup is
	// taken first whenever it is).
	Written    bool
	BackupPath string
}

// UpgradeCommand runs the full surgical flow: parse, identify blocks,
// verify frames and, for intact files only, replace run content in place
// from the live file, then reconstruct and persist with a backup.
type UpgradeCommand struct {
	patchFiles *patchfile.Repository
}

// NewUpgradeCommand creates a new UpgradeCommand.
func NewUpgradeCommand(patchFiles *patchfile.Repository) *UpgradeCommand {
	return &UpgradeCommand{patchFiles: patchFiles}
}

// Execute upgrades one patch file. Corrupted or unresolvable files are left
// untouched in the serialized output; the file on disk is rewritten only
// when at least one of the patch's files verified intact.
func (it *UpgradeCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts UpgradeOptions,
) (*UpgradeReport, error) {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	text, err := it.patchFiles.Read(opts.PatchPath)
	if err != nil {
		return nil, err
	}

	patches, err := diff.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", opts.PatchPath, err)
	}

	targetDir := resolveTargetDir(settings, opts.TargetDir)

	report := &UpgradeReport{
		Verification: &VerificationResult{PatchPath: opts.PatchPath},
		Outcomes:     map[string]*frames.UpgradeOutcome{},
	}

	for _, patch := range patches {
		verification, lines := verifyPatchFile(patch, targetDir)
		report.Verification.Files = append(report.Verification.Files, verification)

		if verification.Status != frames.StatusIntact {
			logger.Warnf("skipping upgrade of %q: status %s", verification.TargetPath, verification.Status)
			continue
		}

		blocks := lo.Map(verification.Blocks, func(check frames.BlockCheck, _ int) *frames.ModificationBlock {
			return check.Block
		})
		report.Outcomes[verification.TargetPath] = frames.UpgradeFile(patch, blocks, lines, settings.AnchorWindow)
	}

	if len(report.Outcomes) == 0 {
		logger.Warn("no file verified intact; patch left unchanged")
		return report, report.Verification.Err()
	}

	if opts.DryRun {
		logger.Info("[DRY RUN] patch verified intact; skipping write")
		return report, report.Verification.Err()
	}

	if writeErr := it.patchFiles.WriteWithBackup(opts.PatchPath, diff.Reconstruct(patches)); writeErr != nil {
		return report, writeErr
	}
	report.Written = true
	report.BackupPath = opts.PatchPath + patchfile.BackupSuffix

	return report, report.Verification.Err()
}
