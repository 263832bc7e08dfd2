//go:build unit

package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchforge/patchforge/internal/diff"
)

func TestParseHunkHeaders(t *testing.T) {
	t.Parallel()

	t.Run("should summarize every hunk header in order", func(t *testing.T) {
		t.Parallel()

		// given
		text := "--- a/f\n+++ b/f\n@@ -10,5 +10,2 @@\n x\n@@ -30 +27 @@\n y\n"

		// when
		headers, err := diff.ParseHunkHeaders(text)

		// then
		require.NoError(t, err)
		require.Len(t, headers, 2)
		assert.Equal(t, diff.HunkHeaderInfo{OldStart: 10, OldLines: 5, NewStart: 10, NewLines: 2}, headers[0])
		assert.Equal(t, diff.HunkHeaderInfo{OldStart: 30, OldLines: 1, NewStart: 27, NewLines: 1}, headers[1])
	})

	t.Run("should return nothing for text without hunks", func(t *testing.T) {
		t.Parallel()

		// when
		headers, err := diff.ParseHunkHeaders("Subject: [PATCH] nothing here\n")

		// then
		require.NoError(t, err)
		assert.Empty(t, headers)
	})

	t.Run("should fail on an undecodable header line", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := diff.ParseHunkHeaders("@@ broken @@\n")

		// then
		var headerErr *diff.MalformedHunkHeaderError
		require.ErrorAs(t, err, &headerErr)
	})
}
