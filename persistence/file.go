// persistence/file.go
package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"avalon/game"
)

// FileStore persists the session snapshot as a single JSON file. It is
// the zero-dependency backend for local games; it does not keep game
// records or stats.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// SaveSnapshot writes the snapshot atomically: temp file, then rename.
func (f *FileStore) SaveSnapshot(state *game.SessionState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// LoadSnapshot reads the last saved snapshot. A missing file is not an
// error; it just means a fresh lobby.
func (f *FileStore) LoadSnapshot() (*game.SessionState, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := game.NewSessionState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("corrupt snapshot %s: %w", f.path, err)
	}
	state.Normalize()
	return state, nil
}

func (f *FileStore) Close() error {
	return nil
}
