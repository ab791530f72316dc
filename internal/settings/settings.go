// Package settings loads the user's editor preferences and keeps them current
// while the file changes on disk.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileName is the settings file under the user's ~/.boss directory.
const DefaultFileName = "editor-settings.json"

// Settings is the flat record of editor preferences. Missing fields keep their
// defaults; unknown fields are ignored.
type Settings struct {
	FontSize             int    `json:"fontSize" yaml:"fontSize"`
	TabSize              int    `json:"tabSize" yaml:"tabSize"`
	InsertSpaces         bool   `json:"insertSpaces" yaml:"insertSpaces"`
	ShowLineNumbers      bool   `json:"showLineNumbers" yaml:"showLineNumbers"`
	ShowRunGutter        bool   `json:"showRunGutter" yaml:"showRunGutter"`
	WordWrap             bool   `json:"wordWrap" yaml:"wordWrap"`
	Theme                string `json:"theme" yaml:"theme"`
	SemanticHighlighting bool   `json:"semanticHighlighting" yaml:"semanticHighlighting"`
	AutoSave             bool   `json:"autoSave" yaml:"autoSave"`
	AutoSaveDelayMs      int    `json:"autoSaveDelayMs" yaml:"autoSaveDelayMs"`
	MaxFileSizeBytes     int64  `json:"maxFileSizeBytes" yaml:"maxFileSizeBytes"`
}

// Defaults returns the settings used when no file exists.
func Defaults() Settings {
	return Settings{
		FontSize:             14,
		TabSize:              4,
		InsertSpaces:         true,
		ShowLineNumbers:      true,
		ShowRunGutter:        true,
		Theme:                "default",
		SemanticHighlighting: true,
		AutoSaveDelayMs:      1000,
		MaxFileSizeBytes:     10_000_000,
	}
}

// DefaultPath is ~/.boss/editor-settings.json.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".boss", DefaultFileName)
	}
	return filepath.Join(home, ".boss", DefaultFileName)
}

// Parse decodes data over the defaults and resets out of range values.
func Parse(data []byte) (Settings, error) {
	s := Defaults()
	if err := json.Unmarshal(data, &s); err != nil {
		return Defaults(), fmt.Errorf("decode settings: %w", err)
	}
	s.validate()
	return s, nil
}

func (s *Settings) validate() {
	d := Defaults()
	if s.FontSize <= 0 {
		s.FontSize = d.FontSize
	}
	if s.TabSize <= 0 || s.TabSize > 16 {
		s.TabSize = d.TabSize
	}
	if s.AutoSaveDelayMs < 100 {
		s.AutoSaveDelayMs = d.AutoSaveDelayMs
	}
	if s.MaxFileSizeBytes <= 0 {
		s.MaxFileSizeBytes = d.MaxFileSizeBytes
	}
	if s.Theme == "" {
		s.Theme = d.Theme
	}
}

// Load reads the settings file. A missing file yields the defaults and no
// error; a malformed one yields the defaults and the decode error.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return Defaults(), fmt.Errorf("read settings '%s': %w", path, err)
	}
	return Parse(data)
}

// Save writes s as indented JSON, creating the directory if needed.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write settings '%s': %w", path, err)
	}
	return os.Rename(tmp, path)
}
