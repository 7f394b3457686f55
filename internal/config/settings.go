package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings represents the top-level rangetyck.yaml configuration.
type Settings struct {
	// UnitType is the nominal type that UnitLike obligations resolve to.
	// Defaults to "unit".
	UnitType string `yaml:"unit_type,omitempty"`

	// TextTypes lists nominal types that satisfy Textual obligations.
	// Defaults to ["text"].
	TextTypes []string `yaml:"text_types,omitempty"`

	// CountsDB is the sqlite file holding per-span placeholder counts.
	// Relative paths are resolved against the settings file directory.
	// Set to "-" to disable persistence.
	CountsDB string `yaml:"counts_db,omitempty"`

	// Color is one of auto, always, never. Defaults to auto, which colours
	// diagnostics only when stdout is a terminal.
	Color string `yaml:"color,omitempty"`

	// Debug turns on solver tracing and internal assertions.
	Debug bool `yaml:"debug,omitempty"`

	// path is the file the settings were read from, empty for defaults.
	path string
}

// DefaultSettings returns the settings used when no rangetyck.yaml exists.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.setDefaults()
	return s
}

// Path returns the file the settings were loaded from, or "".
func (s *Settings) Path() string {
	return s.path
}

// CountsPath resolves CountsDB against baseDir (or the settings file
// directory when it was loaded from disk). It returns "" when persistence
// is disabled.
func (s *Settings) CountsPath(baseDir string) string {
	if s.CountsDB == "-" {
		return ""
	}
	if filepath.IsAbs(s.CountsDB) {
		return s.CountsDB
	}
	if s.path != "" {
		baseDir = filepath.Dir(s.path)
	}
	return filepath.Join(baseDir, s.CountsDB)
}

// LoadSettings reads and parses a rangetyck.yaml file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	s, err := ParseSettings(data, path)
	if err != nil {
		return nil, err
	}
	s.path = path
	return s, nil
}

// ParseSettings parses rangetyck.yaml content from bytes.
// The path argument is used only for error messages.
func ParseSettings(data []byte, path string) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := s.validate(path); err != nil {
		return nil, err
	}
	s.setDefaults()
	return &s, nil
}

// FindSettings searches for rangetyck.yaml starting from dir and walking up
// to parent directories. Returns "" and a nil error if none is found.
func FindSettings(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range SettingsFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// validate checks the settings for semantic errors.
func (s *Settings) validate(path string) error {
	switch s.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: color: want one of %s, %s, %s, got %q", path, ColorAuto, ColorAlways, ColorNever, s.Color)
	}

	if s.UnitType != "" && strings.TrimSpace(s.UnitType) != s.UnitType {
		return fmt.Errorf("%s: unit_type: surrounding whitespace in %q", path, s.UnitType)
	}

	seen := make(map[string]bool)
	for i, name := range s.TextTypes {
		if name == "" {
			return fmt.Errorf("%s: text_types[%d]: empty type name", path, i)
		}
		if seen[name] {
			return fmt.Errorf("%s: text_types[%d]: duplicate type %q", path, i, name)
		}
		seen[name] = true
	}

	return nil
}

func (s *Settings) setDefaults() {
	if s.UnitType == "" {
		s.UnitType = UnitTypeName
	}
	if len(s.TextTypes) == 0 {
		s.TextTypes = []string{TextTypeName}
	}
	if s.CountsDB == "" {
		s.CountsDB = DefaultCountsDB
	}
	if s.Color == "" {
		s.Color = ColorAuto
	}
}
