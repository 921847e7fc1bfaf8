package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
document = "/data/report.xml"
service_url = "https://store.example.com"
api_key = "secret"
autosave_interval = "2m"
guard_attempts = 4
save_on_change = true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() = %v", err)
	}
	if fc.DocumentPath != "/data/report.xml" {
		t.Errorf("DocumentPath = %q", fc.DocumentPath)
	}
	if fc.ServiceURL != "https://store.example.com" {
		t.Errorf("ServiceURL = %q", fc.ServiceURL)
	}
	if fc.AuthKey != "secret" {
		t.Errorf("AuthKey = %q", fc.AuthKey)
	}
	if fc.AutosaveInterval != "2m" {
		t.Errorf("AutosaveInterval = %q", fc.AutosaveInterval)
	}
	if fc.GuardAttempts != 4 {
		t.Errorf("GuardAttempts = %d", fc.GuardAttempts)
	}
	if fc.SaveOnChange == nil || !*fc.SaveOnChange {
		t.Error("SaveOnChange not set")
	}
	if fc.Once != nil {
		t.Error("Once set, want absent key left nil")
	}
}

func TestLoadFileConfig_Missing(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("LoadFileConfig() = nil, want error for missing file")
	}
}

func TestLoadFileConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("document = [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(path); err == nil {
		t.Error("LoadFileConfig() = nil, want parse error")
	}
}

func TestFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if FileExists(path) {
		t.Error("FileExists() = true for a missing file")
	}
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Error("FileExists() = false for an existing file")
	}
}
