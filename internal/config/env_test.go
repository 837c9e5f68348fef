package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvironment(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "ZOHO_CLIENT_ID=file-id\nRESEND_API_KEY=file-key\nTEAM_NOTIFY_EMAIL=team@example.com\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	// Registered with t.Setenv so values loaded from the file are restored.
	t.Setenv("ZOHO_CLIENT_ID", "")
	t.Setenv("RESEND_API_KEY", "process-key")
	t.Setenv("TEAM_NOTIFY_EMAIL", "")
	t.Setenv("ZOHO_DC", "")
	t.Setenv("FROM_EMAIL", "")
	os.Unsetenv("ZOHO_CLIENT_ID")
	os.Unsetenv("TEAM_NOTIFY_EMAIL")
	os.Unsetenv("ZOHO_DC")
	os.Unsetenv("FROM_EMAIL")

	env, err := LoadEnvironment(filepath.Join(dir, ".env.local"), envFile)
	if err != nil {
		t.Fatalf("LoadEnvironment() error = %v", err)
	}

	if env.ZohoClientID != "file-id" {
		t.Errorf("ZohoClientID = %q, want value from .env", env.ZohoClientID)
	}
	if env.ResendAPIKey != "process-key" {
		t.Errorf("ResendAPIKey = %q, process environment should win", env.ResendAPIKey)
	}
	if env.TeamNotifyEmail != "team@example.com" {
		t.Errorf("TeamNotifyEmail = %q", env.TeamNotifyEmail)
	}
	if env.ZohoDC != "com" || env.FromEmail != "leads@planliferight.com" {
		t.Errorf("defaults not applied: %+v", env)
	}
}

func TestLoadEnvironmentRejectsBadFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadEnvironment(dir); err == nil {
		t.Error("expected error when the env file is a directory")
	}
}
