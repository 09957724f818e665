package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvSupabaseURL, "")
	t.Setenv(EnvSupabaseAnonKey, "")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Supabase.Configured() {
		t.Fatal("empty env should not be configured")
	}
	if cfg.Supabase.Bucket != DefaultBucket {
		t.Fatalf("bucket = %q", cfg.Supabase.Bucket)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("default level = %q", cfg.Logging.Level)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "breez.yaml")
	yaml := "supabase:\n  url: https://file.supabase.co\n  anon_key: file-key\n  bucket: custom\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	t.Setenv(EnvSupabaseURL, "https://env.supabase.co")
	t.Setenv(EnvSupabaseAnonKey, "")

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Supabase.URL != "https://env.supabase.co" {
		t.Fatalf("url = %q, env should win", cfg.Supabase.URL)
	}
	if cfg.Supabase.AnonKey != "file-key" {
		t.Fatalf("anon key = %q, file value should survive", cfg.Supabase.AnonKey)
	}
	if cfg.Supabase.Bucket != "custom" || cfg.Logging.Level != "debug" {
		t.Fatalf("file values dropped: %+v", cfg)
	}
}

func TestMalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breez.yaml")
	if err := os.WriteFile(path, []byte("supabase: ["), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected parse error")
	}
}
