// Package storage provides the low-level file primitives used to persist
// client state: atomic file replacement and exclusive file locks. The session
// token store is built on top of these so that concurrent adscribe processes
// never observe a torn write.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrWouldBlock is returned when an exclusive lock is already held by
// another process.
var ErrWouldBlock = errors.New("storage: lock held by another process")

// AtomicWriteFile writes data to filename via a temporary file and rename,
// so readers only ever see the previous or the new contents.
func AtomicWriteFile(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Temp file in the same directory, so the rename stays on one filesystem.
	tempFile, err := os.CreateTemp(dir, ".tmp-adscribe-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	var success bool
	defer func() {
		if !success {
			_ = os.Remove(tempFile.Name())
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file %q: %w", tempFile.Name(), err)
	}
	if err := os.Chmod(tempFile.Name(), perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := os.Rename(tempFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true
	return nil
}

// Lock represents a held exclusive file lock.
type Lock struct {
	file *os.File
}

// AcquireLock takes an exclusive, non-blocking lock on path, creating the
// lock file if needed. Returns ErrWouldBlock if another process holds it.
func AcquireLock(path string) (*Lock, error) {
	f, err := acquireFileLock(path)
	if err != nil {
		return nil, err
	}
	return &Lock{file: f}, nil
}

// Release drops the lock and removes the lock file. Safe on a nil receiver.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	return releaseFileLock(l.file)
}
