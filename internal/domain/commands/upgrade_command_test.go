//go:build unit

package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchforge/patchforge/internal/domain/commands"
	"github.com/patchforge/patchforge/internal/infrastructure/repositories/patchfile"
)

func TestUpgradeCommand(t *testing.T) {
	t.Parallel()

	t.Run("should rewrite run content from the live file and keep a backup", func(t *testing.T) {
		t.Parallel()

		// given: the live file carries newer content inside intact frames
		live := "Line 1\nLine 2 (Top Frame)\nNew Content X\nLine 3 (Bottom Frame)\n"
		dir, patchPath := newWorkspace(t, additionPatchText, live)
		command := commands.NewUpgradeCommand(patchfile.NewRepository())

		// when
		report, err := command.Execute(context.Background(), settingsFor(dir),
			commands.UpgradeOptions{PatchPath: patchPath})

		// then
		require.NoError(t, err)
		assert.True(t, report.Written)
		assert.Equal(t, patchPath+patchfile.BackupSuffix, report.BackupPath)
		require.Contains(t, report.Outcomes, "file.txt")
		assert.True(t, report.Outcomes["file.txt"].Changed)

		rewritten, readErr := os.ReadFile(patchPath)
		require.NoError(t, readErr)
		assert.Contains(t, string(rewritten), "+New Content X\n")
		assert.Contains(t, string(rewritten), "@@ -1,3 +1,4 @@") // cardinality untouched

		backup, backupErr := os.ReadFile(report.BackupPath)
		require.NoError(t, backupErr)
		assert.Equal(t, additionPatchText, string(backup))
	})

	t.Run("should not write when no file verified intact", func(t *testing.T) {
		t.Parallel()

		// given
		corrupted := "Line 1\nLine 2 EDITED\nNew Content\nLine 3 (Bottom Frame)\n"
		dir, patchPath := newWorkspace(t, additionPatchText, corrupted)
		command := commands.NewUpgradeCommand(patchfile.NewRepository())

		// when
		report, err := command.Execute(context.Background(), settingsFor(dir),
			commands.UpgradeOptions{PatchPath: patchPath})

		// then
		require.NoError(t, err)
		assert.False(t, report.Written)
		assert.Empty(t, report.Outcomes)

		unchanged, readErr := os.ReadFile(patchPath)
		require.NoError(t, readErr)
		assert.Equal(t, additionPatchText, string(unchanged))

		_, statErr := os.Stat(patchPath + patchfile.BackupSuffix)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("should skip the write on a dry run", func(t *testing.T) {
		t.Parallel()

		// given
		live := "Line 1\nLine 2 (Top Frame)\nNew Content X\nLine 3 (Bottom Frame)\n"
		dir, patchPath := newWorkspace(t, additionPatchText, live)
		command := commands.NewUpgradeCommand(patchfile.NewRepository())

		// when
		report, err := command.Execute(context.Background(), settingsFor(dir),
			commands.UpgradeOptions{PatchPath: patchPath, DryRun: true})

		// then
		require.NoError(t, err)
		assert.False(t, report.Written)
		assert.NotEmpty(t, report.Outcomes)

		unchanged, readErr := os.ReadFile(patchPath)
		require.NoError(t, readErr)
		assert.Equal(t, additionPatchText, string(unchanged))
	})

	t.Run("should serialize corrupted files unmodified alongside upgraded ones", func(t *testing.T) {
		t.Parallel()

		// given: a two-file patch where only the first target is intact
		multiPatch := additionPatchText +
			"--- a/other.txt\n+++ b/other.txt\n@@ -1,2 +1,3 @@\n keep\n+added line\n keep2\n"
		live := "Line 1\nLine 2 (Top Frame)\nNew Content X\nLine 3 (Bottom Frame)\n"
		dir, patchPath := newWorkspace(t, multiPatch, live)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"),
			[]byte("keep EDITED\nadded line\nkeep2\n"), 0o644))
		command := commands.NewUpgradeCommand(patchfile.NewRepository())

		// when
		report, err := command.Execute(context.Background(), settingsFor(dir),
			commands.UpgradeOptions{PatchPath: patchPath})

		// then: the intact file drove a write, the corrupted one is untouched
		require.NoError(t, err)
		assert.True(t, report.Written)
		assert.Contains(t, report.Outcomes, "file.txt")
		assert.NotContains(t, report.Outcomes, "other.txt")

		rewritten, readErr := os.ReadFile(patchPath)
		require.NoError(t, readErr)
		assert.Contains(t, string(rewritten), "+New Content X\n")
		assert.Contains(t, string(rewritten), "+added line\n")
	})
}
