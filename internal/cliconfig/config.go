// Package cliconfig holds the configuration plumbing for the docsave CLI:
// defaults, validation, TOML config file, environment variables, and the
// flag-precedence bookkeeping. Precedence is flags > environment > file >
// defaults.
package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds the configuration for the docsave CLI.
type Config struct {
	// DocumentPath is the file to watch and persist.
	DocumentPath string

	// StoreDir is the local store directory. Ignored when ServiceURL is
	// set; derived from the document location when empty.
	StoreDir string

	// ServiceURL selects the remote HTTP store when non-empty.
	ServiceURL string

	// AuthKey authenticates against the remote store.
	AuthKey string

	AutosaveInterval time.Duration
	Debounce         time.Duration
	HTTPTimeout      time.Duration

	// GuardAttempts is the number of transport retries per save; zero
	// disables the connectivity guard.
	GuardAttempts int

	// SaveOnChange requests a save immediately after each debounced change
	// instead of waiting for the next autosave tick.
	SaveOnChange bool

	// Once performs a single save and exits.
	Once bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		AutosaveInterval: 30 * time.Second,
		Debounce:         100 * time.Millisecond,
		HTTPTimeout:      30 * time.Second,
		GuardAttempts:    3,
		AuthKey:          os.Getenv("DOCSAVE_AUTH_KEY"),
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.DocumentPath == "" {
		return fmt.Errorf("document is required")
	}
	if c.ServiceURL == "" && c.StoreDir == "" {
		c.StoreDir = filepath.Join(filepath.Dir(c.DocumentPath), ".docsave")
	}

	// Ensure no trailing slash
	if n := len(c.ServiceURL); n > 0 && c.ServiceURL[n-1] == '/' {
		c.ServiceURL = c.ServiceURL[:n-1]
	}

	if c.AutosaveInterval < 0 {
		return fmt.Errorf("autosave interval must not be negative")
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.GuardAttempts < 0 {
		return fmt.Errorf("guard attempts must not be negative")
	}
	return nil
}

// Remote reports whether the remote HTTP store is selected.
func (c *Config) Remote() bool { return c.ServiceURL != "" }

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not
// changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
