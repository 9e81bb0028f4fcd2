package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"netlab/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Executor.Type != ExecutorDocker {
		t.Errorf("Executor.Type = %s, want docker", cfg.Executor.Type)
	}
	if cfg.Executor.Timeout.Duration() != 30*time.Second {
		t.Errorf("Executor.Timeout = %s, want 30s", cfg.Executor.Timeout.Duration())
	}
	if cfg.Compose.Image != domain.DefaultImage {
		t.Errorf("Compose.Image = %s, want %s", cfg.Compose.Image, domain.DefaultImage)
	}
	if cfg.Compose.Strict {
		t.Error("Compose.Strict should default to false")
	}
	if cfg.Diagnostics.PingCount != 4 {
		t.Errorf("Diagnostics.PingCount = %d, want 4", cfg.Diagnostics.PingCount)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error: %v", err)
	}
}

func TestLoadPartialFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "compose:\n  strict_networks: true\ndiagnostics:\n  ping_count: 2\n"
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if !cfg.Compose.Strict {
		t.Error("Compose.Strict should be true")
	}
	if cfg.Diagnostics.PingCount != 2 {
		t.Errorf("Diagnostics.PingCount = %d, want 2", cfg.Diagnostics.PingCount)
	}
	if cfg.Database.Path != defaultDatabasePath {
		t.Errorf("Database.Path = %s, want default", cfg.Database.Path)
	}
}

func TestValidate(t *testing.T) {
	key := "/tmp/id_ed25519"

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown executor", func(c *Config) { c.Executor.Type = "kubectl" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"ping count too high", func(c *Config) { c.Diagnostics.PingCount = 5000 }, true},
		{"ssh port out of range", func(c *Config) { c.Executor.SSH.Port = 70000 }, true},
		{"ssh without host", func(c *Config) {
			c.Executor.Type = ExecutorSSH
			c.Executor.SSH.User = "lab"
			c.Executor.SSH.Password = "secret"
		}, true},
		{"ssh without credentials", func(c *Config) {
			c.Executor.Type = ExecutorSSH
			c.Executor.SSH.Host = "lab.example.com"
			c.Executor.SSH.User = "lab"
		}, true},
		{"ssh with key", func(c *Config) {
			c.Executor.Type = ExecutorSSH
			c.Executor.SSH.Host = "lab.example.com"
			c.Executor.SSH.User = "lab"
			c.Executor.SSH.KeyPath = &key
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("executor:\n  type: telnet\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, _, err := LoadFromPath(configPath); err == nil {
		t.Error("LoadFromPath() should reject unknown executor type")
	}
}

func TestSSHSecret(t *testing.T) {
	tmpDir := t.TempDir()
	keyPath := filepath.Join(tmpDir, "id_ed25519")
	if err := os.WriteFile(keyPath, []byte("PRIVATE KEY"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Executor.SSH.User = "lab"
	cfg.Executor.SSH.KeyPath = &keyPath

	secret, err := cfg.SSHSecret()
	if err != nil {
		t.Fatalf("SSHSecret() error: %v", err)
	}
	if secret.Type != domain.SecretTypeSSHKey {
		t.Errorf("Type = %s, want %s", secret.Type, domain.SecretTypeSSHKey)
	}
	if secret.Data["private_key"] != "PRIVATE KEY" {
		t.Errorf("private_key = %q", secret.Data["private_key"])
	}

	cfg.Executor.SSH.KeyPath = nil
	cfg.Executor.SSH.Password = "hunter2"
	secret, err = cfg.SSHSecret()
	if err != nil {
		t.Fatalf("SSHSecret() error: %v", err)
	}
	if secret.Type != domain.SecretTypeSSHPassword {
		t.Errorf("Type = %s, want %s", secret.Type, domain.SecretTypeSSHPassword)
	}

	cfg.Executor.SSH.Password = ""
	if _, err := cfg.SSHSecret(); err == nil {
		t.Error("SSHSecret() should fail without credentials")
	}

	missing := filepath.Join(tmpDir, "missing")
	cfg.Executor.SSH.KeyPath = &missing
	if _, err := cfg.SSHSecret(); err == nil {
		t.Error("SSHSecret() should fail for unreadable key")
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Compose.Output = "lab-compose.yml"
	cfg.Compose.Strict = true
	cfg.Executor.Timeout = Duration(90 * time.Second)

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}
	if loaded.Compose.Output != "lab-compose.yml" {
		t.Errorf("Compose.Output = %s, want lab-compose.yml", loaded.Compose.Output)
	}
	if !loaded.Compose.Strict {
		t.Error("Compose.Strict should survive a round trip")
	}
	if loaded.Executor.Timeout.Duration() != 90*time.Second {
		t.Errorf("Executor.Timeout = %s, want 1m30s", loaded.Executor.Timeout.Duration())
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "explicit.yaml")
	if err := DefaultConfig().Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	t.Setenv(EnvConfigPath, configPath)
	if found := FindConfigPath(); found != configPath {
		t.Errorf("FindConfigPath() = %q, want %q", found, configPath)
	}

	cfg, path, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if path != configPath || cfg == nil {
		t.Errorf("Load() path = %q, want %q", path, configPath)
	}
}

func TestSummary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Executor.Type = ExecutorSSH
	cfg.Executor.SSH.Host = "lab.example.com"
	cfg.Executor.SSH.User = "lab"

	summary := cfg.Summary()
	if !strings.Contains(summary, "lab@lab.example.com:22") {
		t.Errorf("Summary() missing ssh target: %s", summary)
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}
