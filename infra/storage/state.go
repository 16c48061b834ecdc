package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cbsthiago-dev/progbunker-application/core/model"
)

// FileStateStore persists the fleet state as a single JSON file. Save
// writes to a temp file and renames it so a crash never leaves a
// half-written state behind.
type FileStateStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStateStore(path string) (*FileStateStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &FileStateStore{path: path}, nil
}

// Load reads the persisted states. A missing file yields an empty set.
func (s *FileStateStore) Load(ctx context.Context) ([]model.BargeState, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var states []model.BargeState
	if err := json.Unmarshal(data, &states); err != nil {
		return nil, fmt.Errorf("decode state file %s: %w", s.path, err)
	}
	return states, nil
}

// Save replaces the whole persisted set atomically.
func (s *FileStateStore) Save(ctx context.Context, states []model.BargeState) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
