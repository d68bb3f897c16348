// Package backup provides safe replacement of output files.
// New content is first staged in a temp file next to its target. Committing
// copies the existing target to a timestamped .bak and renames the staged
// file into place; a committed file can be rolled back from that copy until
// the run is finished.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"recat/internal/errors"
)

// Manager handles file backup and restoration operations.
// When backups are disabled it still keeps a rollback copy of a replaced file
// for the duration of the run and removes it in Finish, so a commit can be
// undone either way.
type Manager struct {
	enabled bool
	now     func() time.Time
}

// NewBackupManager creates a Manager. A disabled manager leaves no backups
// behind once Finish has run.
func NewBackupManager(enabled bool) *Manager {
	return &Manager{
		enabled: enabled,
		now:     time.Now,
	}
}

// Pending is new file content written to a temp file and waiting to replace
// its target.
type Pending struct {
	target string
	temp   string
}

// Prepare stages data for filePath. The target must be a regular file or not
// exist yet; the staged file gets the target's permissions, or 0644 for a new
// file. Nothing visible changes until Commit.
func Prepare(filePath string, data []byte) (*Pending, error) {
	mode := os.FileMode(0644)
	if info, err := os.Stat(filePath); err == nil {
		if !info.Mode().IsRegular() {
			return nil, errors.NewOutputWriteError(filePath, "output path is not a regular file", nil)
		}
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(filePath)
	file, err := os.CreateTemp(dir, filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return nil, errors.WrapOutputError(filePath, err)
	}
	p := &Pending{target: filePath, temp: file.Name()}

	if _, err = file.Write(data); err != nil {
		file.Close()
		p.Discard()
		return nil, errors.WrapOutputError(filePath, err)
	}

	if err = file.Sync(); err != nil {
		file.Close()
		p.Discard()
		return nil, errors.WrapOutputError(filePath, err)
	}

	if err = file.Close(); err != nil {
		p.Discard()
		return nil, errors.WrapOutputError(filePath, err)
	}

	if err = os.Chmod(p.temp, mode); err != nil {
		p.Discard()
		return nil, errors.WrapOutputError(filePath, err)
	}

	return p, nil
}

// Target returns the path the staged content will replace.
func (p *Pending) Target() string {
	return p.target
}

// Commit renames the staged file over its target.
func (p *Pending) Commit() error {
	if err := os.Rename(p.temp, p.target); err != nil {
		return errors.WrapOutputError(p.target, err)
	}
	return nil
}

// Discard removes the staged file. It is safe to call after Commit.
func (p *Pending) Discard() {
	_ = os.Remove(p.temp)
}

// copyToBackup creates a timestamped copy of filePath next to it and returns
// its path, or an empty path when the file does not exist yet. An existing
// backup with the same timestamp is never overwritten; the new one gets a
// numeric suffix instead.
func (bm *Manager) copyToBackup(filePath string) (string, error) {
	srcInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.NewOutputWriteError(filePath, "failed to stat existing file", err)
	}
	if !srcInfo.Mode().IsRegular() {
		return "", errors.NewOutputWriteError(filePath, "output path is not a regular file", nil)
	}

	srcFile, err := os.Open(filePath)
	if err != nil {
		return "", errors.NewOutputWriteError(filePath, "failed to open existing file for backup", err)
	}
	defer srcFile.Close()

	dstFile, backupPath, err := bm.createBackupFile(filePath, srcInfo.Mode().Perm())
	if err != nil {
		return "", err
	}

	if _, err = io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		_ = os.Remove(backupPath)
		return "", errors.NewOutputWriteError(backupPath, "failed to copy file content", err)
	}

	if err = dstFile.Close(); err != nil {
		_ = os.Remove(backupPath)
		return "", errors.NewOutputWriteError(backupPath, "failed to finish backup file", err)
	}

	return backupPath, nil
}

func (bm *Manager) createBackupFile(originalPath string, perm os.FileMode) (*os.File, string, error) {
	backupPath := bm.generateBackupPath(originalPath, 0)
	for n := 1; ; n++ {
		file, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if err == nil {
			return file, backupPath, nil
		}
		if !os.IsExist(err) {
			return nil, "", errors.NewOutputWriteError(backupPath, "failed to create backup file", err)
		}
		backupPath = bm.generateBackupPath(originalPath, n)
	}
}

// Commit replaces the target of p. The previous content, if any, is copied
// aside first so that Rollback can put it back. The returned path is that
// copy; pass it to Rollback or Finish.
func (bm *Manager) Commit(p *Pending) (string, error) {
	backupPath, err := bm.copyToBackup(p.target)
	if err != nil {
		return "", err
	}

	if err := p.Commit(); err != nil {
		_ = bm.CleanupBackup(backupPath)
		return "", err
	}

	return backupPath, nil
}

// Rollback undoes a Commit. With a backup the previous content is restored
// and the backup removed; without one the target did not exist before and is
// removed.
func (bm *Manager) Rollback(filePath, backupPath string) error {
	if backupPath == "" {
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			return errors.NewOutputWriteError(filePath, "failed to remove new file", err)
		}
		return nil
	}

	if err := bm.RestoreFile(filePath, backupPath); err != nil {
		return err
	}
	return bm.CleanupBackup(backupPath)
}

// Finish ends a commit. It returns the backup that is kept, or an empty path
// when backups are disabled and the rollback copy has been removed.
func (bm *Manager) Finish(backupPath string) (string, error) {
	if bm.enabled {
		return backupPath, nil
	}
	return "", bm.CleanupBackup(backupPath)
}

// RestoreFile overwrites originalPath with the contents of backupPath.
func (bm *Manager) RestoreFile(originalPath, backupPath string) error {
	if backupPath == "" {
		return nil
	}

	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return errors.NewOutputWriteError(backupPath, "backup file not found", err)
	}

	srcFile, err := os.Open(backupPath)
	if err != nil {
		return errors.NewOutputWriteError(backupPath, "failed to open backup file", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(originalPath)
	if err != nil {
		return errors.NewOutputWriteError(originalPath, "failed to recreate original file", err)
	}

	if _, err = io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return errors.NewOutputWriteError(originalPath, "failed to restore file content", err)
	}

	if err = dstFile.Close(); err != nil {
		return errors.NewOutputWriteError(originalPath, "failed to restore file content", err)
	}

	return nil
}

// CleanupBackup removes a backup file.
func (bm *Manager) CleanupBackup(backupPath string) error {
	if backupPath == "" {
		return nil
	}

	err := os.Remove(backupPath)
	if err != nil && !os.IsNotExist(err) {
		return errors.NewOutputWriteError(backupPath, "failed to remove backup file", err)
	}

	return nil
}

func (bm *Manager) generateBackupPath(originalPath string, n int) string {
	dir := filepath.Dir(originalPath)
	base := filepath.Base(originalPath)
	timestamp := bm.now().Format("20060102_150405")

	if n > 0 {
		return filepath.Join(dir, fmt.Sprintf("%s.%s_%d.bak", base, timestamp, n))
	}
	return filepath.Join(dir, fmt.Sprintf("%s.%s.bak", base, timestamp))
}
