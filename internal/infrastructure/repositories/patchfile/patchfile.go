// Package patchfile persists patch files with backup-by-copy semantics.
package patchfile

import (
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"
)

// BackupSuffix is appended to a patch file's path to name its backup.
const BackupSuffix = ".backup"

const fileMode = 0o644

// Repository reads and writes patch files on the local filesystem.
type Repository struct{}

// NewRepository creates a patch file repository.
func NewRepository() *Repository {
	return &Repository{}
}

// Read returns the full text of a patch file.
func (it *Repository) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read patch file %q: %w", path, err)
	}
	return string(data), nil
}

// WriteWithBackup copies an existing file at path to <path>.backup
// (overwriting a previous backup) before writing the new content. The
// backup is acquired before mutation and deliberately left in place even if
// the subsequent write fails.
func (it *Repository) WriteWithBackup(path, content string) error {
	if original, err := os.ReadFile(path); err == nil {
		backupPath := path + BackupSuffix
		if backupErr := os.WriteFile(backupPath, original, fileMode); backupErr != nil {
			return fmt.Errorf("failed to back up %q: %w", path, backupErr)
		}
		logger.Debugf("backed up %q to %q", path, backupPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %q for backup: %w", path, err)
	}

	return it.Write(path, content)
}

// Write overwrites the patch file without taking a backup.
func (it *Repository) Write(path, content string) error {
	if err := os.WriteFile(path, []byte(content), fileMode); err != nil {
		return fmt.Errorf("failed to write patch file %q: %w", path, err)
	}
	return nil
}
