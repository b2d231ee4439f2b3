// Package settings persists the widget's user settings as a small JSON file.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Mode selects the widget layout.
type Mode string

const (
	ModeSimple       Mode = "simple"
	ModeProfessional Mode = "professional"
)

func (m Mode) Valid() bool {
	return m == ModeSimple || m == ModeProfessional
}

// Settings is the persisted document. SelectedPairs holds pair ids such as
// "BTC/USDT" or "ETH/USDT:futures".
type Settings struct {
	SelectedPairs []string `json:"selectedPairs"`
	Mode          Mode     `json:"mode"`
	AlwaysOnTop   bool     `json:"alwaysOnTop"`
}

// Default returns the settings used when nothing usable is on disk.
func Default() Settings {
	return Settings{
		SelectedPairs: []string{"BTC/USDT"},
		Mode:          ModeSimple,
		AlwaysOnTop:   true,
	}
}

// Clone returns a copy that shares no slices with s.
func (s Settings) Clone() Settings {
	s.SelectedPairs = append([]string(nil), s.SelectedPairs...)
	return s
}

type Store struct {
	path   string
	logger *zap.Logger
}

func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

func (s *Store) Path() string { return s.path }

// Load reads the settings file. Fields missing from the file keep their
// default. A missing or corrupt file yields Default and is never an error.
func (s *Store) Load() Settings {
	def := Default()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read settings, using defaults", zap.String("path", s.path), zap.Error(err))
		}
		return def
	}

	loaded := Default()
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("corrupt settings file, using defaults", zap.String("path", s.path), zap.Error(err))
		return def
	}

	if len(loaded.SelectedPairs) == 0 {
		loaded.SelectedPairs = def.SelectedPairs
	}
	if !loaded.Mode.Valid() {
		s.logger.Warn("unknown mode in settings", zap.String("mode", string(loaded.Mode)))
		loaded.Mode = def.Mode
	}
	return loaded
}

// Save rewrites the settings file as indented JSON.
func (s *Store) Save(st Settings) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}

	// replace via rename; readers see the old or the new file
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
