package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
	logger "github.com/sirupsen/logrus"

	"github.com/patchforge/patchforge/internal/diff"
	"github.com/patchforge/patchforge/internal/domain/entities"
	"github.com/patchforge/patchforge/internal/frames"
	"github.com/patchforge/patchforge/internal/infrastructure/repositories/patchfile"
)

// ErrTargetFileNotFound marks a patch target that does not exist on disk.
// It degrades that file to an error status without aborting sibling files.
var ErrTargetFileNotFound = errors.New("target file not found")

// Verify is the interface for the verification-only pass.
type Verify interface {
	Execute(ctx context.Context, settings *entities.Settings, opts VerifyOptions) (*VerificationResult, error)
}

// VerifyOptions holds runtime options for one verification pass.
type VerifyOptions struct {
	PatchPath string
	// TargetDir overrides the settings' target directory for resolving
	// patch target paths.
	TargetDir string
	Verbose   bool
}

// VerificationResult reports every file of a (possibly multi-file) patch.
type VerificationResult struct {
	PatchPath string
	Files     []*frames.FileVerification
}

// Intact reports whether every file's patch integrity holds.
func (r *VerificationResult) Intact() bool {
	return lo.EveryBy(r.Files, func(f *frames.FileVerification) bool {
		return f.Status == frames.StatusIntact
	})
}

// Err aggregates the per-file errors, if any.
func (r *VerificationResult) Err() error {
	var combined error
	for _, file := range r.Files {
		if file.Err != nil {
			combined = multierror.Append(combined, fmt.Errorf("%s: %w", file.TargetPath, file.Err))
		}
	}
	return combined
}

// VerifyCommand parses a patch file, identifies its modification blocks and
// checks every frame against the live target files.
type VerifyCommand struct {
	patchFiles *patchfile.Repository
}

// NewVerifyCommand creates a new VerifyCommand.
func NewVerifyCommand(patchFiles *patchfile.Repository) *VerifyCommand {
	return &VerifyCommand{patchFiles: patchFiles}
}

// Execute runs one verification pass. Per-file failures degrade that file's
// status; only an unreadable or unparseable patch file fails the call.
func (it *VerifyCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	opts VerifyOptions,
) (*VerificationResult, error) {
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

	result := &VerificationResult{PatchPath: opts.PatchPath}
	for _, patch := range patches {
		verification, _ := verifyPatchFile(patch, targetDir)
		result.Files = append(result.Files, verification)
	}

	return result, nil
}

// verifyPatchFile checks one file of a multi-file patch. It returns the
// report together with the target file's lines (needed again by the
// upgrader) when the target was readable.
func verifyPatchFile(patch *diff.Patch, targetDir string) (*frames.FileVerification, []string) {
	verification := &frames.FileVerification{Patch: patch}

	targetPath, err := patch.TargetPath()
	if err != nil {
		verification.Status = frames.StatusError
		verification.Err = err
		return verification, nil
	}
	verification.TargetPath = targetPath

	resolved := targetPath
	if targetDir != "" && !filepath.IsAbs(targetPath) {
		resolved = filepath.Join(targetDir, targetPath)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		verification.Status = frames.StatusError
		verification.Err = fmt.Errorf("%w: %q: %v", ErrTargetFileNotFound, resolved, err)
		return verification, nil
	}

	lines := strings.Split(string(data), "\n")
	blocks := frames.IdentifyBlocks(patch)
	verification.Blocks = frames.VerifyBlocks(blocks, lines)

	verification.Status = frames.StatusIntact
	for _, check := range verification.Blocks {
		if !check.Intact {
			verification.Status = frames.StatusCorrupted
			break
		}
	}

	return verification, lines
}

func resolveTargetDir(settings *entities.Settings, override string) string {
	if override != "" {
		return override
	}
	return settings.TargetDir
}
