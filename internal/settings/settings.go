// Package settings persists the user-editable runtime settings document
// ({"save_path": ...}) that the page and the orchestrator read on every use.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"vidqueue/internal/fileutil"
)

// Settings is the persisted settings document.
type Settings struct {
	SavePath string `json:"save_path"`
}

// Store reads and writes Settings at a fixed path.
type Store struct {
	path        string
	defaultSave string
	mu          sync.Mutex
}

// NewStore returns a store backed by path. defaultSave is written the first
// time the document is read and does not exist yet.
func NewStore(path, defaultSave string) *Store {
	return &Store{path: path, defaultSave: defaultSave}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the current settings, creating the document with defaults on
// first access. An empty save_path in the file is replaced by the default.
func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		defaults := Settings{SavePath: s.defaultSave}
		if err := s.write(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	var current Settings
	if err := json.Unmarshal(data, &current); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", s.path, err)
	}
	if strings.TrimSpace(current.SavePath) == "" {
		current.SavePath = s.defaultSave
	}
	return current, nil
}

// SetSavePath persists a new save path.
func (s *Store) SetSavePath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("save path is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(Settings{SavePath: path})
}

func (s *Store) write(value Settings) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
