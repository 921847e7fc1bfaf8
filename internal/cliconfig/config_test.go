package cliconfig

import (
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.DocumentPath = "/tmp/report.xml"
	cfg.AuthKey = ""
	return cfg
}

func TestConfig_ValidateRequiresDocument(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error without a document path")
	}
}

func TestConfig_ValidateDerivesStoreDir(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	want := filepath.Join("/tmp", ".docsave")
	if cfg.StoreDir != want {
		t.Errorf("StoreDir = %q, want %q", cfg.StoreDir, want)
	}
}

func TestConfig_ValidateKeepsExplicitStoreDir(t *testing.T) {
	cfg := validConfig()
	cfg.StoreDir = "/var/lib/docsave"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.StoreDir != "/var/lib/docsave" {
		t.Errorf("StoreDir = %q, want explicit value kept", cfg.StoreDir)
	}
}

func TestConfig_ValidateStripsTrailingSlash(t *testing.T) {
	cfg := validConfig()
	cfg.ServiceURL = "https://store.example.com/"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.ServiceURL != "https://store.example.com" {
		t.Errorf("ServiceURL = %q, want trailing slash stripped", cfg.ServiceURL)
	}
	if !cfg.Remote() {
		t.Error("Remote() = false, want true with a service URL")
	}
}

func TestConfig_ValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative autosave", func(c *Config) { c.AutosaveInterval = -time.Second }},
		{"zero debounce", func(c *Config) { c.Debounce = 0 }},
		{"zero http timeout", func(c *Config) { c.HTTPTimeout = 0 }},
		{"negative guard attempts", func(c *Config) { c.GuardAttempts = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestConfig_AutosaveZeroIsValid(t *testing.T) {
	cfg := validConfig()
	cfg.AutosaveInterval = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil for disabled autosave", err)
	}
}

func TestApplyFileConfig(t *testing.T) {
	cfg := validConfig()
	fc := FileConfig{
		DocumentPath:     "/data/other.xml",
		ServiceURL:       "https://store.example.com",
		AutosaveInterval: "1m",
		GuardAttempts:    5,
	}

	if err := ApplyFileConfig(&cfg, fc, nil); err != nil {
		t.Fatalf("ApplyFileConfig() = %v", err)
	}
	if cfg.DocumentPath != "/data/other.xml" {
		t.Errorf("DocumentPath = %q, want file value", cfg.DocumentPath)
	}
	if cfg.AutosaveInterval != time.Minute {
		t.Errorf("AutosaveInterval = %v, want 1m", cfg.AutosaveInterval)
	}
	if cfg.GuardAttempts != 5 {
		t.Errorf("GuardAttempts = %d, want 5", cfg.GuardAttempts)
	}
}

func TestApplyFileConfig_FlagsWin(t *testing.T) {
	cfg := validConfig()
	cfg.AutosaveInterval = 10 * time.Second
	fc := FileConfig{
		DocumentPath:     "/data/other.xml",
		AutosaveInterval: "1m",
	}
	changed := map[string]bool{"document": true, "autosave": true}

	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig() = %v", err)
	}
	if cfg.DocumentPath != "/tmp/report.xml" {
		t.Errorf("DocumentPath = %q, want flag value kept", cfg.DocumentPath)
	}
	if cfg.AutosaveInterval != 10*time.Second {
		t.Errorf("AutosaveInterval = %v, want flag value kept", cfg.AutosaveInterval)
	}
}

func TestApplyFileConfig_BadDuration(t *testing.T) {
	cfg := validConfig()
	fc := FileConfig{AutosaveInterval: "not-a-duration"}
	if err := ApplyFileConfig(&cfg, fc, nil); err == nil {
		t.Error("ApplyFileConfig() = nil, want parse error")
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("DOCSAVE_DOCUMENT", "/env/doc.xml")
	t.Setenv("DOCSAVE_AUTOSAVE_INTERVAL", "45s")
	t.Setenv("DOCSAVE_GUARD_ATTEMPTS", "7")
	t.Setenv("DOCSAVE_SAVE_ON_CHANGE", "true")

	cfg := validConfig()
	if err := ApplyEnvConfig(&cfg, nil); err != nil {
		t.Fatalf("ApplyEnvConfig() = %v", err)
	}
	if cfg.DocumentPath != "/env/doc.xml" {
		t.Errorf("DocumentPath = %q, want env value", cfg.DocumentPath)
	}
	if cfg.AutosaveInterval != 45*time.Second {
		t.Errorf("AutosaveInterval = %v, want 45s", cfg.AutosaveInterval)
	}
	if cfg.GuardAttempts != 7 {
		t.Errorf("GuardAttempts = %d, want 7", cfg.GuardAttempts)
	}
	if !cfg.SaveOnChange {
		t.Error("SaveOnChange = false, want true from env")
	}
}

func TestApplyEnvConfig_FlagsWin(t *testing.T) {
	t.Setenv("DOCSAVE_AUTOSAVE_INTERVAL", "45s")

	cfg := validConfig()
	cfg.AutosaveInterval = 10 * time.Second
	changed := map[string]bool{"autosave": true}

	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig() = %v", err)
	}
	if cfg.AutosaveInterval != 10*time.Second {
		t.Errorf("AutosaveInterval = %v, want flag value kept", cfg.AutosaveInterval)
	}
}

func TestApplyEnvConfig_BadValue(t *testing.T) {
	t.Setenv("DOCSAVE_GUARD_ATTEMPTS", "many")

	cfg := validConfig()
	if err := ApplyEnvConfig(&cfg, nil); err == nil {
		t.Error("ApplyEnvConfig() = nil, want parse error")
	}
}
