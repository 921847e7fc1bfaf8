package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (DOCSAVE_*).
// It respects flags that have been explicitly set (changed map).
// Returns an error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("document", os.Getenv("DOCSAVE_DOCUMENT"), &cfg.DocumentPath)
	s.setString("store-dir", os.Getenv("DOCSAVE_STORE_DIR"), &cfg.StoreDir)
	s.setString("service-url", os.Getenv("DOCSAVE_SERVICE_URL"), &cfg.ServiceURL)
	s.setString("auth-key", os.Getenv("DOCSAVE_AUTH_KEY"), &cfg.AuthKey)

	if err := s.setDuration("autosave", os.Getenv("DOCSAVE_AUTOSAVE_INTERVAL"), &cfg.AutosaveInterval); err != nil {
		return err
	}
	if err := s.setDuration("debounce", os.Getenv("DOCSAVE_DEBOUNCE"), &cfg.Debounce); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("DOCSAVE_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("guard-attempts", os.Getenv("DOCSAVE_GUARD_ATTEMPTS"), &cfg.GuardAttempts); err != nil {
		return err
	}

	s.setBoolFromString("save-on-change", os.Getenv("DOCSAVE_SAVE_ON_CHANGE"), &cfg.SaveOnChange)
	s.setBoolFromString("once", os.Getenv("DOCSAVE_ONCE"), &cfg.Once)

	return nil
}
