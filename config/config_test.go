package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	configContent := `
server:
  port: 9090
remote:
  base_url: "https://bridge.example.test"
  upload_timeout_sec: 120
archive:
  enabled: true
  endpoint: "localhost:9000"
  access_key: "minioadmin"
  secret_key: "minioadmin"
  bucket: "snapshots"
  use_ssl: false
store:
  max_projects: 25
analysis:
  start_retries: 5
  poll_interval_sec: 2
auth:
  jwt_secret: "test-secret"
  token_expire_hours: 48
log:
  level: "debug"
  format: "json"
users:
  - username: "testuser"
    password: "testpass"
`
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	// Test loading config
	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify values
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Remote.BaseURL != "https://bridge.example.test" {
		t.Errorf("Expected remote base_url, got %s", cfg.Remote.BaseURL)
	}
	if cfg.Remote.UploadTimeoutSec != 120 {
		t.Errorf("Expected upload_timeout_sec 120, got %d", cfg.Remote.UploadTimeoutSec)
	}
	if !cfg.Archive.Enabled {
		t.Error("Expected archive enabled")
	}
	if cfg.Archive.Bucket != "snapshots" {
		t.Errorf("Expected bucket snapshots, got %s", cfg.Archive.Bucket)
	}
	if cfg.Store.MaxProjects != 25 {
		t.Errorf("Expected max_projects 25, got %d", cfg.Store.MaxProjects)
	}
	if cfg.Analysis.StartRetries != 5 {
		t.Errorf("Expected start_retries 5, got %d", cfg.Analysis.StartRetries)
	}
	if cfg.Analysis.PollIntervalSec != 2 {
		t.Errorf("Expected poll_interval_sec 2, got %d", cfg.Analysis.PollIntervalSec)
	}
	if cfg.Auth.TokenExpireHours != 48 {
		t.Errorf("Expected token_expire_hours 48, got %d", cfg.Auth.TokenExpireHours)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
	if len(cfg.Users) != 1 || cfg.Users[0].Username != "testuser" {
		t.Errorf("Expected one user testuser, got %v", cfg.Users)
	}
}

func TestLoadDefaults(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString("remote:\n  base_url: \"http://localhost:8888\"\n"); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Remote.UploadTimeoutSec != 300 {
		t.Errorf("Expected default upload timeout 300, got %d", cfg.Remote.UploadTimeoutSec)
	}
	if cfg.Remote.RequestTimeoutSec != 60 {
		t.Errorf("Expected default request timeout 60, got %d", cfg.Remote.RequestTimeoutSec)
	}
	if cfg.Analysis.StartRetries != 3 {
		t.Errorf("Expected default start_retries 3, got %d", cfg.Analysis.StartRetries)
	}
	if cfg.Analysis.BackoffSec != 10 {
		t.Errorf("Expected default backoff_sec 10, got %d", cfg.Analysis.BackoffSec)
	}
	if cfg.Analysis.PollIntervalSec != 5 {
		t.Errorf("Expected default poll_interval_sec 5, got %d", cfg.Analysis.PollIntervalSec)
	}
	if cfg.Analysis.MaxPolls != 120 {
		t.Errorf("Expected default max_polls 120, got %d", cfg.Analysis.MaxPolls)
	}
	if cfg.Store.MaxProjects != 50 {
		t.Errorf("Expected default max_projects 50, got %d", cfg.Store.MaxProjects)
	}
	if cfg.Auth.TokenExpireHours != 24 {
		t.Errorf("Expected default token_expire_hours 24, got %d", cfg.Auth.TokenExpireHours)
	}
	if cfg.Archive.Enabled {
		t.Error("Expected archive disabled by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString("remote:\n  base_url: \"http://from-yaml\"\n"); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	t.Setenv("BRIDGE_API_URL", "http://from-env")
	t.Setenv("PORT", "7070")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Remote.BaseURL != "http://from-env" {
		t.Errorf("Expected env override for base url, got %s", cfg.Remote.BaseURL)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Expected env override for port, got %d", cfg.Server.Port)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestFindUser(t *testing.T) {
	cfg := &Config{
		Users: []User{
			{Username: "alpha", Password: "a"},
			{Username: "beta", Password: "b"},
		},
	}

	if user := cfg.FindUser("beta"); user == nil || user.Password != "b" {
		t.Error("Expected to find user beta")
	}
	if user := cfg.FindUser("gamma"); user != nil {
		t.Error("Expected nil for unknown user")
	}
}
