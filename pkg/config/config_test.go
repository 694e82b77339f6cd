package config

import (
	"os"
	"testing"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}
	if !cfg.App.IsProd() {
		t.Fatalf("expected IsProd to be true for %q", cfg.App.Env)
	}
	if cfg.Storage.Bucket != "college-staff-manager.firebasestorage.app" {
		t.Fatalf("unexpected bucket %q", cfg.Storage.Bucket)
	}
	if cfg.Sheets.Tab != "Registrations" {
		t.Fatalf("expected default sheets tab, got %q", cfg.Sheets.Tab)
	}
	if cfg.Uploads.Dir != "uploads" {
		t.Fatalf("expected default upload dir, got %q", cfg.Uploads.Dir)
	}
	if cfg.Uploads.MaxUploadMB != 50 {
		t.Fatalf("expected default max upload, got %d", cfg.Uploads.MaxUploadMB)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_CORSOriginsSplit(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCORSOrigins, "http://localhost:3000,https://staffdir.example.edu")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if len(cfg.CORS.Origins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.CORS.Origins)
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvPort, "8080")
	t.Setenv(EnvGCPProjectID, "college-staff-manager")
	t.Setenv(EnvStorageBucket, "college-staff-manager.firebasestorage.app")
	t.Setenv(EnvSpreadsheetID, "sheet-123")
}
