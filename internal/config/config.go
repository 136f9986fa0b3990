package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for mayascan.
type FileConfig struct {
	// PrefsDir is the Maya user directory holding scripts/ (MAYA_APP_DIR).
	PrefsDir      *string `yaml:"prefs_dir,omitempty"`
	QuarantineDir *string `yaml:"quarantine_dir,omitempty"`
	LogPath       *string `yaml:"log_path,omitempty"`
	// HelperPolicy is "quarantine" or "ignore" for an unmarked vaccine.py.
	HelperPolicy *string `yaml:"helper_policy,omitempty"`

	Include  *string `yaml:"include,omitempty"`
	Exclude  *string `yaml:"exclude,omitempty"`
	MaxBytes *int64  `yaml:"max_bytes,omitempty"`
	Headless *bool   `yaml:"headless,omitempty"`
	NoCache  *bool   `yaml:"no_cache,omitempty"`
	NoColor  *bool   `yaml:"no_color,omitempty"`
	LogLevel *string `yaml:"log_level,omitempty"`

	Watch *WatchConfig `yaml:"watch,omitempty"`
}

// WatchConfig holds configuration for watch mode.
type WatchConfig struct {
	// Debounce collapses bursts of filesystem events, e.g. "500ms".
	Debounce *string `yaml:"debounce,omitempty"`

	// Paths are extra directories to watch besides the scripts directory.
	Paths []string `yaml:"paths,omitempty"`

	// Fix enables remediation on every triggered scan. Defaults to true.
	Fix *bool `yaml:"fix,omitempty"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a project-local config file in the given dir.
// It supports .mayascan.yml/.yaml and mayascan.yml/.yaml.
func LoadLocal(dir string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".mayascan.yml", ".mayascan.yaml", "mayascan.yml", "mayascan.yaml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// GlobalPath returns the global config file location.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, "mayascan", "config.yml"), nil
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	p, err := GlobalPath()
	if err != nil {
		return cfg, err
	}
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// Template is the commented starter config written by `config init`.
const Template = `# mayascan configuration
# prefs_dir: ~/maya            # Maya user directory (MAYA_APP_DIR); scripts/ lives below it
# quarantine_dir: ~/maya/QUARANTINED
# log_path: /tmp/MayaScannerLog.txt
helper_policy: quarantine      # quarantine | ignore an unmarked vaccine.py
include: "**/*.ma,**/*.mb"
exclude: ""
max_bytes: 536870912
headless: false
no_cache: false
watch:
  debounce: 500ms
  fix: true
`

// WriteTemplate writes Template to path unless a file already exists.
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.New("config already exists: " + path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(Template), 0o644)
}

// GetWatchConfig returns the watch configuration with sensible defaults.
func (fc FileConfig) GetWatchConfig() WatchConfig {
	if fc.Watch == nil {
		fix := true
		return WatchConfig{Fix: &fix}
	}

	// Apply defaults for nil fields
	cfg := *fc.Watch
	if cfg.Fix == nil {
		fix := true
		cfg.Fix = &fix
	}
	return cfg
}

// GetDebounce parses the debounce interval, defaulting to 500ms.
func (wc WatchConfig) GetDebounce() time.Duration {
	if wc.Debounce == nil {
		return 500 * time.Millisecond
	}
	d, err := time.ParseDuration(*wc.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// IsFixEnabled returns true if watch scans remediate (default: true).
func (wc WatchConfig) IsFixEnabled() bool {
	if wc.Fix == nil {
		return true
	}
	return *wc.Fix
}
