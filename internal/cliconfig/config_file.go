package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML
// friendly.
type FileConfig struct {
	DocumentPath     string `toml:"document"`
	StoreDir         string `toml:"store_dir"`
	ServiceURL       string `toml:"service_url"`
	AuthKey          string `toml:"api_key"`
	AutosaveInterval string `toml:"autosave_interval"`
	Debounce         string `toml:"debounce"`
	HTTPTimeout      string `toml:"http_timeout"`
	GuardAttempts    int    `toml:"guard_attempts"`
	SaveOnChange     *bool  `toml:"save_on_change"`
	Once             *bool  `toml:"once"`
}

// LoadFileConfig reads and parses a TOML config file.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.docsave/config.toml if the user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".docsave", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("document", fc.DocumentPath, &cfg.DocumentPath)
	s.setString("store-dir", fc.StoreDir, &cfg.StoreDir)
	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)

	if err := s.setDuration("autosave", fc.AutosaveInterval, &cfg.AutosaveInterval); err != nil {
		return err
	}
	if err := s.setDuration("debounce", fc.Debounce, &cfg.Debounce); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setInt("guard-attempts", fc.GuardAttempts, &cfg.GuardAttempts)
	s.setBool("save-on-change", fc.SaveOnChange, &cfg.SaveOnChange)
	s.setBool("once", fc.Once, &cfg.Once)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
