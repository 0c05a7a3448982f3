// Package token holds the single bearer credential shared between the
// session store and the API client. The slot is an explicit dependency
// injected at construction time; the session store is the only writer.
package token

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Slot is a process-wide credential holder backed by a 0600 file so the
// token survives a restart. Reads may come from request goroutines, so
// access is mutex-guarded.
type Slot struct {
	mu    sync.Mutex
	path  string
	value string
}

// New returns a slot persisting to path. The file is not touched until
// Load or Set is called.
func New(path string) *Slot {
	return &Slot{path: path}
}

// Load seeds the in-memory value from disk. A missing file is not an
// error; it simply means no credential is stored.
func (s *Slot) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.value = ""
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	s.value = strings.TrimSpace(string(data))
	return nil
}

// Get returns the current token, or "" when unauthenticated.
func (s *Slot) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set stores tok in memory and on disk.
func (s *Slot) Set(tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = tok
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(tok+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// Clear wipes the in-memory value and removes the file.
func (s *Slot) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
