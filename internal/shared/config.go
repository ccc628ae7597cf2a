package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Storage  StorageConfig  `toml:"storage"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	LogLevel    string   `toml:"log_level"`
}

// Addr returns the host:port pair the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// AuthConfig holds the process-wide signing secret and token lifetimes.
type AuthConfig struct {
	SecretKey              string `toml:"secret_key"`
	ResetTokenTTLSeconds   int    `toml:"reset_token_ttl_seconds"`
	SessionTTLHours        int    `toml:"session_ttl_hours"`
	CookieName             string `toml:"cookie_name"`
	CookieSecure           bool   `toml:"cookie_secure"`
	ResetRequestsPerMinute int    `toml:"reset_requests_per_minute"`
}

// ResetTokenTTL returns the password reset token lifetime.
func (a AuthConfig) ResetTokenTTL() time.Duration {
	return time.Duration(a.ResetTokenTTLSeconds) * time.Second
}

// SessionTTL returns the session cookie lifetime.
func (a AuthConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLHours) * time.Hour
}

// StorageConfig selects where uploaded artist images and songs are kept.
type StorageConfig struct {
	Provider       string   `toml:"provider"`
	ImageFolder    string   `toml:"image_folder"`
	SongFolder     string   `toml:"song_folder"`
	ImageURLPrefix string   `toml:"image_url_prefix"`
	SongURLPrefix  string   `toml:"song_url_prefix"`
	S3             S3Config `toml:"s3"`
}

// S3Config contains S3-compatible bucket credentials.
type S3Config struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	PublicURL string `toml:"public_url"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads a .env file from the working directory when one exists.
func LoadEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// ApplyEnv overlays MUSICAPP_* environment variables onto the config.
//
// Secrets are expected to come from the environment in production.
func ApplyEnv(c *Config) error {
	if v := os.Getenv("MUSICAPP_SECRET_KEY"); v != "" {
		c.Auth.SecretKey = v
	}
	if v := os.Getenv("MUSICAPP_DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("MUSICAPP_STORAGE_PROVIDER"); v != "" {
		c.Storage.Provider = v
	}
	if v := os.Getenv("MUSICAPP_S3_ACCESS_KEY"); v != "" {
		c.Storage.S3.AccessKey = v
	}
	if v := os.Getenv("MUSICAPP_S3_SECRET_KEY"); v != "" {
		c.Storage.S3.SecretKey = v
	}
	if v := os.Getenv("MUSICAPP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: MUSICAPP_PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate reports configuration that would prevent the server from starting.
func (c *Config) Validate() error {
	if c.Auth.SecretKey == "" {
		return fmt.Errorf("%w: auth.secret_key is required", ErrMissingConfig)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrMissingConfig)
	}
	switch c.Storage.Provider {
	case "local":
		if c.Storage.ImageFolder == "" || c.Storage.SongFolder == "" {
			return fmt.Errorf("%w: storage folders are required for the local provider", ErrMissingConfig)
		}
	case "s3":
		if c.Storage.S3.Bucket == "" || c.Storage.S3.Region == "" {
			return fmt.Errorf("%w: storage.s3.bucket and storage.s3.region are required", ErrMissingConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage provider %q", ErrInvalidConfig, c.Storage.Provider)
	}
	return nil
}
