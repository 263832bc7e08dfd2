//go:build unit

package patchfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchforge/patchforge/internal/infrastructure/repositories/patchfile"
)

func TestRepository(t *testing.T) {
	t.Parallel()

	t.Run("should round-trip file content through Read and Write", func(t *testing.T) {
		t.Parallel()

		// given
		repo := patchfile.NewRepository()
		path := filepath.Join(t.TempDir(), "fix.patch")

		// when
		require.NoError(t, repo.Write(path, "patch body\n"))
		content, err := repo.Read(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "patch body\n", content)
	})

	t.Run("should fail to read a missing file", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := patchfile.NewRepository().Read(filepath.Join(t.TempDir(), "absent.patch"))

		// then
		assert.Error(t, err)
	})

	t.Run("should preserve the previous content in a backup", func(t *testing.T) {
		t.Parallel()

		// given
		repo := patchfile.NewRepository()
		path := filepath.Join(t.TempDir(), "fix.patch")
		require.NoError(t, repo.Write(path, "old body\n"))

		// when
		require.NoError(t, repo.WriteWithBackup(path, "new body\n"))

		// then
		content, err := repo.Read(path)
		require.NoError(t, err)
		assert.Equal(t, "new body\n", content)

		backup, err := os.ReadFile(path + patchfile.BackupSuffix)
		require.NoError(t, err)
		assert.Equal(t, "old body\n", string(backup))
	})

	t.Run("should overwrite a stale backup", func(t *testing.T) {
		t.Parallel()

		// given
		repo := patchfile.NewRepository()
		path := filepath.Join(t.TempDir(), "fix.patch")
		require.NoError(t, repo.Write(path, "first\n"))
		require.NoError(t, repo.WriteWithBackup(path, "second\n"))

		// when
		require.NoError(t, repo.WriteWithBackup(path, "third\n"))

		// then
		backup, err := os.ReadFile(path + patchfile.BackupSuffix)
		require.NoError(t, err)
		assert.Equal(t, "second\n", string(backup))
	})

	t.Run("should skip the backup when the file does not exist yet", func(t *testing.T) {
		t.Parallel()

		// given
		repo := patchfile.NewRepository()
		path := filepath.Join(t.TempDir(), "fresh.patch")

		// when
		require.NoError(t, repo.WriteWithBackup(path, "body\n"))

		// then
		_, err := os.Stat(path + patchfile.BackupSuffix)
		assert.True(t, os.IsNotExist(err))
	})
}
