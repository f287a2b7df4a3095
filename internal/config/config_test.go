package config

import (
	"errors"
	"testing"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GIN_MODE", "PORT", "DB_PATH", "UPLOAD_DIR", "IMPORT_DIR",
		"STORAGE_DRIVER", "PUBLIC_BASE_URL", "ALLOWED_ORIGINS",
		"R2_ACCOUNT_ID", "R2_ACCESS_KEY", "R2_SECRET_KEY", "R2_BUCKET_NAME",
		"FEED_TITLE", "FEED_DESCRIPTION", "FEED_AUTHOR", "FEED_LANGUAGE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.DBPath != "./podcast.db" {
		t.Errorf("unexpected default db path %q", cfg.DBPath)
	}
	if cfg.StorageDriver != "local" {
		t.Errorf("expected local driver by default, got %q", cfg.StorageDriver)
	}
	if cfg.ImportDir != "" {
		t.Errorf("expected importer disabled by default, got %q", cfg.ImportDir)
	}
	if cfg.PublicBaseURL != "http://localhost:8080" {
		t.Errorf("unexpected public base url %q", cfg.PublicBaseURL)
	}
	if cfg.Feed.Title != "Podcast Catalog" {
		t.Errorf("unexpected feed title %q", cfg.Feed.Title)
	}
	if cfg.Feed.Description != cfg.Feed.Title {
		t.Errorf("expected feed description to fall back to the title, got %q", cfg.Feed.Description)
	}
}

func TestLoadTrimsBaseURLAndOrigins(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PUBLIC_BASE_URL", "https://pods.example.com/")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://app.example.com ,https://other.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.PublicBaseURL != "https://pods.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.PublicBaseURL)
	}

	want := []string{"http://localhost:3000", "https://app.example.com", "https://other.example.com"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("expected %d origins, got %v", len(want), cfg.AllowedOrigins)
	}
	for i, origin := range want {
		if cfg.AllowedOrigins[i] != origin {
			t.Errorf("origin %d: expected %q, got %q", i, origin, cfg.AllowedOrigins[i])
		}
	}
}

func TestLoadR2Driver(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORAGE_DRIVER", "r2")

	if _, err := Load(); !errors.Is(err, ErrMissingR2Config) {
		t.Fatalf("expected ErrMissingR2Config without credentials, got %v", err)
	}

	t.Setenv("R2_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY", "key")
	t.Setenv("R2_SECRET_KEY", "secret")
	t.Setenv("R2_BUCKET_NAME", "media")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with credentials: %v", err)
	}
	if cfg.R2Config.PublicURL != "https://media.acct.r2.cloudflarestorage.com" {
		t.Errorf("unexpected R2 public url %q", cfg.R2Config.PublicURL)
	}
}

func TestLoadUnknownDriver(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORAGE_DRIVER", "ftp")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown storage driver")
	}
}
