// Package session owns the single authenticated session: one opaque token
// that survives process restarts until explicit logout or server-side
// rejection. The store is the only state shared between concurrent request
// sites, so reads must happen at the moment a request is dispatched.
package session

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joeycumines/adscribe/internal/storage"
)

// Store holds the current session token.
type Store interface {
	// Token returns the current token, or ok=false when no session exists.
	Token() (token string, ok bool)

	// Set persists the token durably.
	Set(token string) error

	// Clear removes the token. Clearing an absent token is not an error.
	Clear() error
}

// FileStore persists the token to a single file, written atomically under an
// exclusive lock. Token re-reads the file on every call so that a rotation
// or clearing by another process is observed by the next request.
type FileStore struct {
	path string
}

// DefaultPath returns the default token location, ~/.adscribe/session,
// honoring the ADSCRIBE_SESSION environment variable override.
func DefaultPath() (string, error) {
	if p := os.Getenv("ADSCRIBE_SESSION"); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".adscribe", "session"), nil
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Token() (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read session file", "path", s.path, "error", err)
		}
		return "", false
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", false
	}
	return token, true
}

func (s *FileStore) Set(token string) error {
	lock, err := storage.AcquireLock(s.path + ".lock")
	if err != nil {
		return fmt.Errorf("failed to lock session file: %w", err)
	}
	defer func() { _ = lock.Release() }()

	// 0600: the token grants access to the remote account.
	if err := storage.AtomicWriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	lock, err := storage.AcquireLock(s.path + ".lock")
	if err != nil {
		return fmt.Errorf("failed to lock session file: %w", err)
	}
	defer func() { _ = lock.Release() }()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests and for auth-disabled runs.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	set   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.set && s.token != ""
}

func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.set = true
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.set = false
	return nil
}
