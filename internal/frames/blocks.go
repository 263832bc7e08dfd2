// Package frames anchors runs of patch additions/deletions to the context
// lines surrounding them, verifies those anchors against a live target
// file, and surgically refreshes run content in place.
package frames

import (
	logger "github.com/sirupsen/logrus"

	"github.com/patchforge/patchforge/internal/diff"
)

// Frame is a context line adjacent to a modification run, resolved to its
// 1-based line numbers in both file coordinate spaces. Frames are derived,
// transient values owned by the block that references them.
type Frame struct {
	Content       string
	OldLineNumber int
	NewLineNumber int
}

// ModificationBlock is a maximal contiguous run of same-type changes within
// one hunk, together with the context frames above and below it (either may
// be nil at a hunk edge) and the 1-based start line of the run in the
// relevant file version (new file for additions, old file for deletions).
type ModificationBlock struct {
	Type        diff.ChangeType
	Changes     []diff.Change
	TopFrame    *Frame
	BottomFrame *Frame
	HunkIndex   int
	StartLine   int
}

// scanState is the identifier's explicit state: scanning between runs, or
// accumulating an open block.
type scanState int

const (
	scanning scanState = iota
	inBlock
)

// blockScanner walks one hunk's changes, tracking old/new line counters and
// the last context line seen, and emits completed modification blocks.
type blockScanner struct {
	state       scanState
	block       *ModificationBlock
	lastContext *Frame
	oldLine     int
	newLine     int
	hunkIndex   int
	blocks      []*ModificationBlock
}

// IdentifyBlocks returns the modification blocks of every hunk of a patch,
// in source order.
func IdentifyBlocks(patch *diff.Patch) []*ModificationBlock {
	var blocks []*ModificationBlock
	for i, hunk := range patch.Hunks {
		blocks = append(blocks, identifyHunkBlocks(hunk, i)...)
	}
	return blocks
}

func identifyHunkBlocks(hunk *diff.Hunk, hunkIndex int) []*ModificationBlock {
	s := &blockScanner{
		oldLine:   hunk.OldStart,
		newLine:   hunk.NewStart,
		hunkIndex: hunkIndex,
	}

	for _, change := range hunk.Changes {
		s.step(change)
	}

	// A block still open at hunk end has nothing below it to anchor on.
	if s.state == inBlock {
		s.emit()
	}

	return s.blocks
}

// step advances the scanner by one change, consuming line counters according
// to the change type.
func (it *blockScanner) step(change diff.Change) {
	switch change.Type {
	case diff.Context:
		it.onContext(change)
		it.oldLine++
		it.newLine++
	case diff.Deletion:
		it.onModification(change)
		it.oldLine++
	case diff.Addition:
		it.onModification(change)
		it.newLine++
	}
}

// onContext closes an open block by framing it from below, then becomes the
// anchor candidate for the next block.
func (it *blockScanner) onContext(change diff.Change) {
	frame := &Frame{
		Content:       change.Content,
		OldLineNumber: it.oldLine,
		NewLineNumber: it.newLine,
	}

	if it.state == inBlock {
		it.block.BottomFrame = frame
		it.emit()
	}

	it.lastContext = frame
}

// onModification opens a block on the first non-context change of a run. A
// type transition without an intervening context line abandons the open
// block entirely: an interleaved add/delete run cannot be frame-anchored,
// so it is dropped rather than split.
func (it *blockScanner) onModification(change diff.Change) {
	switch it.state {
	case scanning:
		it.open(change)
	case inBlock:
		if change.Type != it.block.Type {
			logger.Warnf(
				"abandoning mixed %s/%s run in hunk %d: no context line separates the types",
				it.block.Type, change.Type, it.hunkIndex,
			)
			it.block = nil
			it.lastContext = nil
			it.state = scanning
			return
		}
		it.block.Changes = append(it.block.Changes, change)
	}
}

func (it *blockScanner) open(change diff.Change) {
	startLine := it.oldLine
	if change.Type == diff.Addition {
		startLine = it.newLine
	}

	it.block = &ModificationBlock{
		Type:      change.Type,
		Changes:   []diff.Change{change},
		TopFrame:  it.lastContext,
		HunkIndex: it.hunkIndex,
		StartLine: startLine,
	}
	it.state = inBlock
}

func (it *blockScanner) emit() {
	it.blocks = append(it.blocks, it.block)
	it.block = nil
	it.state = scanning
}
