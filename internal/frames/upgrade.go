package frames

import (
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/patchforge/patchforge/internal/diff"
)

// DefaultAnchorWindow is the search radius (in lines) around a frame's
// expected position when locating it in the live file.
const DefaultAnchorWindow = 3

// BlockUpgrade reports the outcome of one block's surgical upgrade.
type BlockUpgrade struct {
	Block    *ModificationBlock
	Upgraded bool
	// Replaced counts change lines rewritten from the live file.
	Replaced int
	// Changed reports whether any rewritten line actually differed.
	Changed bool
	// Skipped carries the reason when the block was left untouched.
	Skipped string
	// Warning carries a non-fatal diagnostic (e.g. the file ran out of
	// lines mid-block).
	Warning string
}

// UpgradeOutcome reports a whole file's surgical upgrade pass.
type UpgradeOutcome struct {
	Blocks  []BlockUpgrade
	Changed bool
}

// UpgradeFile rewrites, in place, the content of each verified block's
// changes from the live target file. It must only be called for a file
// whose verification status is intact. Hunk structure and counts are never
// touched: only content changes, never cardinality.
func UpgradeFile(patch *diff.Patch, blocks []*ModificationBlock, fileLines []string, window int) *UpgradeOutcome {
	if window <= 0 {
		window = DefaultAnchorWindow
	}

	outcome := &UpgradeOutcome{}
	for _, block := range blocks {
		result := upgradeBlock(patch, block, fileLines, window)
		if result.Changed {
			outcome.Changed = true
		}
		outcome.Blocks = append(outcome.Blocks, result)
	}
	return outcome
}

func upgradeBlock(patch *diff.Patch, block *ModificationBlock, fileLines []string, window int) BlockUpgrade {
	result := BlockUpgrade{Block: block}

	if block.TopFrame == nil {
		result.Skipped = "block has no top frame to anchor on"
		return result
	}

	topIndex, found := findAnchor(fileLines, block.TopFrame.Content, frameIndex(block.Type, block.TopFrame), window)
	if !found {
		result.Skipped = fmt.Sprintf(
			"top frame %q not found at expected line %d",
			strings.TrimSpace(block.TopFrame.Content), frameIndex(block.Type, block.TopFrame)+1,
		)
		logger.Warnf("skipping block upgrade: %s", result.Skipped)
		return result
	}

	if reason := checkBottomAnchor(block, fileLines, topIndex); reason != "" {
		result.Skipped = reason
		logger.Warnf("skipping block upgrade: %s", reason)
		return result
	}

	changeIndex := locateBlockInHunk(patch.Hunks[block.HunkIndex], block)
	if changeIndex < 0 {
		result.Skipped = "block not found in hunk change list"
		logger.Warnf("skipping block upgrade: %s", result.Skipped)
		return result
	}

	rewriteBlockContent(patch.Hunks[block.HunkIndex], block, fileLines, topIndex+1, changeIndex, &result)
	result.Upgraded = true
	return result
}

// findAnchor scans a window around the expected index for a line matching
// the frame content. The window only absorbs the search: a match must still
// land on the expected index, so an unrelated identical line elsewhere in
// the window never becomes the anchor.
func findAnchor(fileLines []string, content string, expected, window int) (int, bool) {
	want := strings.TrimSpace(content)

	for i := expected - window; i <= expected+window; i++ {
		if i < 0 || i >= len(fileLines) {
			continue
		}
		if strings.TrimSpace(fileLines[i]) != want {
			continue
		}
		if i != expected {
			continue
		}
		return i, true
	}

	return 0, false
}

// checkBottomAnchor requires a present bottom frame to reappear, unmodified,
// exactly 1 + len(block.Changes) lines after the matched top frame, at its
// own expected index. Returns a diagnostic when the requirement fails.
func checkBottomAnchor(block *ModificationBlock, fileLines []string, topIndex int) string {
	if block.BottomFrame == nil {
		return ""
	}

	bottomIndex := topIndex + 1 + len(block.Changes)
	expected := frameIndex(block.Type, block.BottomFrame)

	if bottomIndex != expected {
		return fmt.Sprintf(
			"bottom frame expected at line %d but the block ends at line %d",
			expected+1, bottomIndex+1,
		)
	}
	if bottomIndex >= len(fileLines) {
		return fmt.Sprintf("bottom frame expected at line %d, outside the target file", bottomIndex+1)
	}
	if strings.TrimSpace(fileLines[bottomIndex]) != strings.TrimSpace(block.BottomFrame.Content) {
		return fmt.Sprintf(
			"bottom frame at line %d: expected %q, found %q",
			bottomIndex+1,
			strings.TrimSpace(block.BottomFrame.Content),
			strings.TrimSpace(fileLines[bottomIndex]),
		)
	}

	return ""
}

// locateBlockInHunk finds the block's first change inside the hunk's raw
// change list by replaying line counters from hunk start and matching both
// the block's declared start line and its original type+content sequence.
// Matching the full sequence disambiguates hunks that contain several
// blocks of the same type.
func locateBlockInHunk(hunk *diff.Hunk, block *ModificationBlock) int {
	oldLine := hunk.OldStart
	newLine := hunk.NewStart

	for i, change := range hunk.Changes {
		line := oldLine
		if block.Type == diff.Addition {
			line = newLine
		}

		if line == block.StartLine && changesMatch(hunk.Changes[i:], block.Changes) {
			return i
		}

		switch change.Type {
		case diff.Context:
			oldLine++
			newLine++
		case diff.Deletion:
			oldLine++
		case diff.Addition:
			newLine++
		}
	}

	return -1
}

func changesMatch(candidate, original []diff.Change) bool {
	if len(candidate) < len(original) {
		return false
	}
	for i, change := range original {
		if candidate[i].Type != change.Type || candidate[i].Content != change.Content {
			return false
		}
	}
	return true
}

// rewriteBlockContent overwrites each change's content, one-for-one and
// positionally, with the corresponding live file line. When the file runs
// out of lines mid-block, the remaining changes stay unmodified and a
// warning is recorded.
func rewriteBlockContent(
	hunk *diff.Hunk,
	block *ModificationBlock,
	fileLines []string,
	firstContentLine, changeIndex int,
	result *BlockUpgrade,
) {
	for i := range block.Changes {
		fileIndex := firstContentLine + i
		if fileIndex >= len(fileLines) {
			result.Warning = fmt.Sprintf(
				"target file ended at line %d; %d of %d block lines left unmodified",
				len(fileLines), len(block.Changes)-i, len(block.Changes),
			)
			logger.Warn(result.Warning)
			return
		}

		target := &hunk.Changes[changeIndex+i]
		if target.Content != fileLines[fileIndex] {
			result.Changed = true
		}
		target.Content = fileLines[fileIndex]
		result.Replaced++
	}
}
