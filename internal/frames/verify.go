package frames

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/patchforge/patchforge/internal/diff"
)

// FileStatus is the verification outcome for one file of a patch.
type FileStatus string

const (
	// StatusIntact means every frame of every block still matches the
	// target file; the file is eligible for surgical upgrade.
	StatusIntact FileStatus = "intact"
	// StatusCorrupted means at least one frame no longer matches.
	StatusCorrupted FileStatus = "corrupted"
	// StatusError means the target file could not be resolved or read;
	// the file is skipped for upgrade purposes.
	StatusError FileStatus = "error"
)

// FramePosition distinguishes the anchor above a block from the one below.
type FramePosition string

const (
	TopFrame    FramePosition = "top"
	BottomFrame FramePosition = "bottom"
)

// FrameFailure classifies why a frame did not verify.
type FrameFailure string

const (
	// FailureNone marks an intact frame.
	FailureNone FrameFailure = ""
	// FailureOutOfBounds means the frame's expected line falls outside the
	// target file.
	FailureOutOfBounds FrameFailure = "out-of-bounds"
	// FailureMismatch means the target line no longer matches the frame.
	FailureMismatch FrameFailure = "mismatch"
)

// FrameCheckResult reports one frame of one block. An absent frame (block at
// a file edge) is always intact: there is nothing to falsify.
type FrameCheckResult struct {
	Position FramePosition
	Frame    *Frame
	Intact   bool
	Failure  FrameFailure
	// FileLine is the 1-based target line compared against, when in bounds.
	FileLine int
	// Found is the (trimmed) target file content at FileLine on a mismatch.
	Found string
}

// Describe renders a one-line diagnostic for a failed frame check.
func (r FrameCheckResult) Describe() string {
	switch r.Failure {
	case FailureOutOfBounds:
		return fmt.Sprintf("%s frame expected at line %d, outside the target file", r.Position, r.FileLine)
	case FailureMismatch:
		return fmt.Sprintf("%s frame at line %d: expected %q, found %q",
			r.Position, r.FileLine, strings.TrimSpace(r.Frame.Content), r.Found)
	default:
		return fmt.Sprintf("%s frame intact", r.Position)
	}
}

// BlockCheck reports one modification block: its two frame checks and the
// combined verdict.
type BlockCheck struct {
	Block  *ModificationBlock
	Frames []FrameCheckResult
	Intact bool
}

// FileVerification reports one file of a multi-file patch. It never mutates
// the patch and lives only for the duration of one verification pass.
type FileVerification struct {
	Patch      *diff.Patch
	TargetPath string
	Status     FileStatus
	Blocks     []BlockCheck
	Err        error
}

// FailedChecks returns the frame checks that did not hold, across all
// blocks of the file.
func (v *FileVerification) FailedChecks() []FrameCheckResult {
	var failed []FrameCheckResult
	for _, block := range v.Blocks {
		failed = append(failed, lo.Filter(block.Frames, func(r FrameCheckResult, _ int) bool {
			return !r.Intact
		})...)
	}
	return failed
}

// VerifyBlocks checks every present frame of every block against the live
// target file lines. The file is intact iff every frame check holds.
func VerifyBlocks(blocks []*ModificationBlock, fileLines []string) []BlockCheck {
	checks := make([]BlockCheck, 0, len(blocks))

	for _, block := range blocks {
		check := BlockCheck{Block: block, Intact: true}

		framePairs := []struct {
			position FramePosition
			frame    *Frame
		}{
			{TopFrame, block.TopFrame},
			{BottomFrame, block.BottomFrame},
		}
		for _, pair := range framePairs {
			position, frame := pair.position, pair.frame
			if frame == nil {
				continue
			}
			result := checkFrame(block.Type, position, frame, fileLines)
			check.Frames = append(check.Frames, result)
			if !result.Intact {
				check.Intact = false
			}
		}

		checks = append(checks, check)
	}

	return checks
}

// checkFrame resolves the frame's expected 0-based index in the coordinate
// space of the block's type and compares the target line, whitespace
// trimmed on both sides.
func checkFrame(blockType diff.ChangeType, position FramePosition, frame *Frame, fileLines []string) FrameCheckResult {
	index := frameIndex(blockType, frame)

	result := FrameCheckResult{
		Position: position,
		Frame:    frame,
		FileLine: index + 1,
	}

	if index < 0 || index >= len(fileLines) {
		result.Failure = FailureOutOfBounds
		return result
	}

	found := strings.TrimSpace(fileLines[index])
	if found != strings.TrimSpace(frame.Content) {
		result.Failure = FailureMismatch
		result.Found = found
		return result
	}

	result.Intact = true
	return result
}

// frameIndex is the 0-based target file index of a frame: new-file
// coordinates for addition blocks (the live file contains the additions),
// old-file coordinates for deletion blocks.
func frameIndex(blockType diff.ChangeType, frame *Frame) int {
	if blockType == diff.Addition {
		return frame.NewLineNumber - 1
	}
	return frame.OldLineNumber - 1
}
