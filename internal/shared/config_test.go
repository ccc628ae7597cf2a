package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./musicapp.db" {
			t.Errorf("expected database path ./musicapp.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 5000 {
			t.Errorf("expected server port 5000, got %d", config.Server.Port)
		}

		if config.Auth.ResetTokenTTL() != 30*time.Minute {
			t.Errorf("expected reset token ttl 30m, got %v", config.Auth.ResetTokenTTL())
		}

		if config.Storage.Provider != "local" {
			t.Errorf("expected local storage provider, got %s", config.Storage.Provider)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080

[auth]
secret_key = "s3cret"
reset_token_ttl_seconds = 60

[storage]
provider = "s3"

[storage.s3]
bucket = "images"
region = "auto"
endpoint = "https://example.r2.cloudflarestorage.com"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}
		if config.Auth.ResetTokenTTL() != time.Minute {
			t.Errorf("expected reset ttl 1m, got %v", config.Auth.ResetTokenTTL())
		}
		if config.Auth.CookieName != "musicapp_session" {
			t.Errorf("expected cookie name to keep its default, got %q", config.Auth.CookieName)
		}
		if config.Storage.S3.Bucket != "images" {
			t.Errorf("expected bucket images, got %s", config.Storage.S3.Bucket)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("expected s3 config to validate: %v", err)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("MUSICAPP_SECRET_KEY", "from-env")
		t.Setenv("MUSICAPP_DATABASE_PATH", "/env/app.db")
		t.Setenv("MUSICAPP_PORT", "9000")

		config := DefaultConfig()
		if err := ApplyEnv(config); err != nil {
			t.Fatalf("failed to apply env: %v", err)
		}

		if config.Auth.SecretKey != "from-env" {
			t.Errorf("expected secret from env, got %q", config.Auth.SecretKey)
		}
		if config.Database.Path != "/env/app.db" {
			t.Errorf("expected database path from env, got %q", config.Database.Path)
		}
		if config.Server.Port != 9000 {
			t.Errorf("expected port 9000, got %d", config.Server.Port)
		}
	})

	t.Run("ApplyEnv invalid port", func(t *testing.T) {
		t.Setenv("MUSICAPP_PORT", "abc")

		err := ApplyEnv(DefaultConfig())
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(c *Config)
			want   error
		}{
			{"missing secret", func(c *Config) { c.Auth.SecretKey = "" }, ErrMissingConfig},
			{"missing database", func(c *Config) { c.Database.Path = "" }, ErrMissingConfig},
			{"unknown provider", func(c *Config) { c.Storage.Provider = "ftp" }, ErrInvalidConfig},
			{"s3 without bucket", func(c *Config) { c.Storage.Provider = "s3" }, ErrMissingConfig},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				if err := config.Validate(); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}
