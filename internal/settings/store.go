// Package settings persists the guild routing configuration written by the
// setup commands.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/natefinch/atomic"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store holds the current Settings and writes every update to disk before
// returning it.
type Store struct {
	mu      sync.RWMutex
	path    string
	current domain.Settings
}

// Load reads the settings file at path, creating it with empty defaults when
// missing.
func Load(path string) (*Store, error) {
	s := &Store{path: path}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.current = defaults()
		if err := s.write(s.current); err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var loaded domain.Settings
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return nil, fmt.Errorf("decode settings %s: %w", path, err)
	}
	if loaded.AllowedRoles == nil {
		loaded.AllowedRoles = []string{}
	}
	s.current = loaded
	return s, nil
}

// Get returns a snapshot of the current settings.
func (s *Store) Get() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Update applies mutate to a copy, persists it, and only then publishes it.
// If the write fails the previous settings stay in effect.
func (s *Store) Update(mutate func(*domain.Settings)) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Clone()
	mutate(&next)
	if next.AllowedRoles == nil {
		next.AllowedRoles = []string{}
	}
	if err := s.write(next); err != nil {
		return s.current.Clone(), err
	}
	s.current = next
	return next.Clone(), nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) write(value domain.Settings) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(encoded)); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func defaults() domain.Settings {
	return domain.Settings{AllowedRoles: []string{}}
}
