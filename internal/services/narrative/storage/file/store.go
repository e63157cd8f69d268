// Package file persists world state as a JSON document on local disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/questline/internal/services/narrative/domain/state"
)

// Store reads and writes one world-state file.
type Store struct {
	path string
}

// Open returns a store for path. The file is created on first save.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("state path is required")
	}
	return &Store{path: filepath.Clean(path)}, nil
}

// Path returns the world-state file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and normalizes the stored state. A missing file yields the
// initial state.
func (s *Store) Load(ctx context.Context) (state.State, error) {
	if err := ctx.Err(); err != nil {
		return state.State{}, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return state.Initial(), nil
		}
		return state.State{}, fmt.Errorf("read world state: %w", err)
	}
	return state.Decode(raw), nil
}

// Save replaces the stored state. The document is written to a temporary
// file in the same directory and renamed over the old one, so readers see
// either the old or the new state.
func (s *Store) Save(ctx context.Context, st state.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := state.Encode(st)
	if err != nil {
		return fmt.Errorf("encode world state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace world state: %w", err)
	}
	return nil
}
