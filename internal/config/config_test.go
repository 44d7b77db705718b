package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.API.DailyLimit != 500 {
		t.Errorf("API.DailyLimit = %d, want 500", cfg.API.DailyLimit)
	}
	if cfg.API.WindowHours != 24 {
		t.Errorf("API.WindowHours = %d, want 24", cfg.API.WindowHours)
	}
	if cfg.API.PageSize != 50 {
		t.Errorf("API.PageSize = %d, want 50", cfg.API.PageSize)
	}
	if cfg.Redis.Enabled() {
		t.Error("Redis should be disabled by default")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	os.Setenv("CDB_API_DAILY_LIMIT", "1000")
	os.Setenv("CDB_DATABASE_HOST", "db.internal")
	t.Cleanup(func() {
		os.Unsetenv("CDB_API_DAILY_LIMIT")
		os.Unsetenv("CDB_DATABASE_HOST")
	})

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.DailyLimit != 1000 {
		t.Errorf("API.DailyLimit = %d, want 1000", cfg.API.DailyLimit)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %s, want db.internal", cfg.Database.Host)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte("server:\n  port: 9999\napi:\n  page_size: 25\n")
	if err := os.WriteFile(path, yaml, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.API.PageSize != 25 {
		t.Errorf("API.PageSize = %d, want 25", cfg.API.PageSize)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"negative daily limit", func(c *Config) { c.API.DailyLimit = -1 }},
		{"zero window", func(c *Config) { c.API.WindowHours = 0 }},
		{"zero page size", func(c *Config) { c.API.PageSize = 0 }},
		{"tls without certs", func(c *Config) { c.Security.TLS.Enabled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestGetDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, Name: "n", User: "u", Password: "p", SSLMode: "disable"}
	want := "host=h port=5432 user=u password=p dbname=n sslmode=disable"
	if got := d.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}
