//go:build unit

package frames_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchforge/patchforge/internal/diff"
	"github.com/patchforge/patchforge/internal/frames"
)

func parsePatch(t *testing.T, text string) *diff.Patch {
	t.Helper()
	patches, err := diff.Parse(text)
	require.NoError(t, err)
	require.Len(t, patches, 1)
	return patches[0]
}

const singleAdditionPatch = `--- a/file.txt
+++ b/file.txt
@@ -1,3 +1,4 @@
 Line 1
 Line 2 (Top Frame)
+New Content
 Line 3 (Bottom Frame)
`

func TestIdentifyBlocks(t *testing.T) {
	t.Parallel()

	t.Run("should frame a single addition run with its context lines", func(t *testing.T) {
		t.Parallel()

		// given
		patch := parsePatch(t, singleAdditionPatch)

		// when
		blocks := frames.IdentifyBlocks(patch)

		// then
		require.Len(t, blocks, 1)
		block := blocks[0]
		assert.Equal(t, diff.Addition, block.Type)
		assert.Equal(t, 3, block.StartLine) // new-file coordinates
		assert.Equal(t, 0, block.HunkIndex)

		require.NotNil(t, block.TopFrame)
		assert.Equal(t, "Line 2 (Top Frame)", block.TopFrame.Content)
		assert.Equal(t, 2, block.TopFrame.OldLineNumber)
		assert.Equal(t, 2, block.TopFrame.NewLineNumber)

		require.NotNil(t, block.BottomFrame)
		assert.Equal(t, "Line 3 (Bottom Frame)", block.BottomFrame.Content)
		assert.Equal(t, 3, block.BottomFrame.OldLineNumber)
		assert.Equal(t, 4, block.BottomFrame.NewLineNumber)
	})

	t.Run("should never mix change types inside one block", func(t *testing.T) {
		t.Parallel()

		// given
		text := "--- a/f\n+++ b/f\n@@ -1,5 +1,5 @@\n ctx\n-old a\n-old b\n ctx2\n+new a\n"

		// when
		blocks := frames.IdentifyBlocks(parsePatch(t, text))

		// then
		require.Len(t, blocks, 2)
		for _, block := range blocks {
			for _, change := range block.Changes {
				assert.Equal(t, block.Type, change.Type)
			}
		}
	})

	t.Run("should use old-file coordinates for deletion runs", func(t *testing.T) {
		t.Parallel()

		// given
		text := "--- a/f\n+++ b/f\n@@ -5,3 +5,2 @@\n keep\n-drop me\n keep2\n"

		// when
		blocks := frames.IdentifyBlocks(parsePatch(t, text))

		// then
		require.Len(t, blocks, 1)
		assert.Equal(t, diff.Deletion, blocks[0].Type)
		assert.Equal(t, 6, blocks[0].StartLine)
	})

	t.Run("should emit a block still open at hunk end without a bottom frame", func(t *testing.T) {
		t.Parallel()

		// given
		text := "--- a/f\n+++ b/f\n@@ -1,1 +1,2 @@\n ctx\n+tail addition\n"

		// when
		blocks := frames.IdentifyBlocks(parsePatch(t, text))

		// then
		require.Len(t, blocks, 1)
		assert.NotNil(t, blocks[0].TopFrame)
		assert.Nil(t, blocks[0].BottomFrame)
	})

	t.Run("should leave the top frame nil for a run at the hunk start", func(t *testing.T) {
		t.Parallel()

		// given
		text := "--- a/f\n+++ b/f\n@@ -1,2 +1,3 @@\n+lead addition\n ctx\n more\n"

		// when
		blocks := frames.IdentifyBlocks(parsePatch(t, text))

		// then
		require.Len(t, blocks, 1)
		assert.Nil(t, blocks[0].TopFrame)
		require.NotNil(t, blocks[0].BottomFrame)
		assert.Equal(t, "ctx", blocks[0].BottomFrame.Content)
	})

	t.Run("should abandon a mixed run without intervening context", func(t *testing.T) {
		t.Parallel()

		// given: +x opens a block, -y hits it with the other type, +z starts
		// over with no context anchor left
		text := "--- a/f\n+++ b/f\n@@ -1,3 +1,4 @@\n ctx\n+x\n-y\n+z\n ctx2\n"

		// when
		blocks := frames.IdentifyBlocks(parsePatch(t, text))

		// then
		require.Len(t, blocks, 1)
		block := blocks[0]
		require.Len(t, block.Changes, 1)
		assert.Equal(t, "z", block.Changes[0].Content)
		assert.Nil(t, block.TopFrame)
		require.NotNil(t, block.BottomFrame)
		assert.Equal(t, "ctx2", block.BottomFrame.Content)
	})

	t.Run("should keep line counters consistent across several hunks", func(t *testing.T) {
		t.Parallel()

		// given
		text := "--- a/f\n+++ b/f\n@@ -1,2 +1,3 @@\n a\n+b\n a2\n@@ -10,2 +11,3 @@\n c\n+d\n c2\n"

		// when
		blocks := frames.IdentifyBlocks(parsePatch(t, text))

		// then
		require.Len(t, blocks, 2)
		assert.Equal(t, 0, blocks[0].HunkIndex)
		assert.Equal(t, 1, blocks[1].HunkIndex)
		assert.Equal(t, 2, blocks[0].StartLine)
		assert.Equal(t, 12, blocks[1].StartLine)
	})
}
