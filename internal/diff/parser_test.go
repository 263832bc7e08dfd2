//go:build unit

package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchforge/patchforge/internal/diff"
)

const multiFilePatch = `--- a/first.txt
+++ b/first.txt
@@ -1,3 +1,4 @@
 Line 1
 Line 2 (Top Frame)
+New Content
 Line 3 (Bottom Frame)
--- a/second.txt
+++ /dev/null
@@ -1,2 +0,0 @@
-Old 1
-Old 2
`

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("should parse a multi-file patch in source order", func(t *testing.T) {
		t.Parallel()

		// when
		patches, err := diff.Parse(multiFilePatch)

		// then
		require.NoError(t, err)
		require.Len(t, patches, 2)
		assert.Equal(t, "a/first.txt", patches[0].OldFile)
		assert.Equal(t, "b/first.txt", patches[0].NewFile)
		assert.Equal(t, "a/second.txt", patches[1].OldFile)
	})

	t.Run("should decode hunk headers with explicit counts", func(t *testing.T) {
		t.Parallel()

		// when
		patches, err := diff.Parse(multiFilePatch)

		// then
		require.NoError(t, err)
		hunk := patches[0].Hunks[0]
		assert.Equal(t, 1, hunk.OldStart)
		assert.Equal(t, 3, hunk.OldCount)
		assert.Equal(t, 1, hunk.NewStart)
		assert.Equal(t, 4, hunk.NewCount)
	})

	t.Run("should default omitted counts to one", func(t *testing.T) {
		t.Parallel()

		// given
		text := "--- a/f\n+++ b/f\n@@ -7 +7 @@\n-x\n+y\n"

		// when
		patches, err := diff.Parse(text)

		// then
		require.NoError(t, err)
		hunk := patches[0].Hunks[0]
		assert.Equal(t, 7, hunk.OldStart)
		assert.Equal(t, 1, hunk.OldCount)
		assert.Equal(t, 7, hunk.NewStart)
		assert.Equal(t, 1, hunk.NewCount)
	})

	t.Run("should type changes from their markers and strip them", func(t *testing.T) {
		t.Parallel()

		// when
		patches, err := diff.Parse(multiFilePatch)

		// then
		require.NoError(t, err)
		changes := patches[0].Hunks[0].Changes
		require.Len(t, changes, 4)
		assert.Equal(t, diff.Context, changes[0].Type)
		assert.Equal(t, "Line 1", changes[0].Content)
		assert.Equal(t, diff.Addition, changes[2].Type)
		assert.Equal(t, "New Content", changes[2].Content)
	})

	t.Run("should mark a /dev/null new side as a deletion target", func(t *testing.T) {
		t.Parallel()

		// when
		patches, err := diff.Parse(multiFilePatch)

		// then
		require.NoError(t, err)
		assert.True(t, patches[1].IsDeletion())
	})

	t.Run("should ignore metadata lines between file headers", func(t *testing.T) {
		t.Parallel()

		// given
		text := "diff --git a/f b/f\nindex 83db48f..bf269f4 100644\n--- a/f\n+++ b/f\n@@ -1,1 +1,1 @@\n-x\n+y\n"

		// when
		patches, err := diff.Parse(text)

		// then
		require.NoError(t, err)
		require.Len(t, patches, 1)
		require.Len(t, patches[0].Hunks, 1)
		assert.Len(t, patches[0].Hunks[0].Changes, 2)
	})

	t.Run("should fail on a malformed hunk header", func(t *testing.T) {
		t.Parallel()

		// given
		text := "--- a/f\n+++ b/f\n@@ not a header @@\n"

		// when
		patches, err := diff.Parse(text)

		// then
		require.Error(t, err)
		assert.Nil(t, patches)
		var headerErr *diff.MalformedHunkHeaderError
		require.ErrorAs(t, err, &headerErr)
		assert.Contains(t, headerErr.Line, "not a header")
	})

	t.Run("should ignore change markers outside any hunk", func(t *testing.T) {
		t.Parallel()

		// given
		text := "+stray addition\n--- a/f\n+++ b/f\n+another stray\n"

		// when
		patches, err := diff.Parse(text)

		// then
		require.NoError(t, err)
		require.Len(t, patches, 1)
		assert.Empty(t, patches[0].Hunks)
	})
}

func TestPatchTargetPath(t *testing.T) {
	t.Parallel()

	t.Run("should prefer the new side and strip the b/ prefix", func(t *testing.T) {
		t.Parallel()

		// given
		patch := &diff.Patch{OldFile: "a/dir/file.txt", NewFile: "b/dir/file.txt"}

		// when
		path, err := patch.TargetPath()

		// then
		require.NoError(t, err)
		assert.Equal(t, "dir/file.txt", path)
	})

	t.Run("should fall back to the old side for deletion targets", func(t *testing.T) {
		t.Parallel()

		// given
		patch := &diff.Patch{OldFile: "a/gone.txt", NewFile: ""}

		// when
		path, err := patch.TargetPath()

		// then
		require.NoError(t, err)
		assert.Equal(t, "gone.txt", path)
	})

	t.Run("should fail when both sides are unresolved", func(t *testing.T) {
		t.Parallel()

		// given
		patch := &diff.Patch{}

		// when
		_, err := patch.TargetPath()

		// then
		require.ErrorIs(t, err, diff.ErrUnresolvablePath)
	})
}
