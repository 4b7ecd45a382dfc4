// Package config loads Kinship's runtime configuration.
//
// Values are resolved in order: built-in defaults, then an optional YAML file,
// then KINSHIP_* environment variables. Call Validate before use.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Notify   NotifyConfig   `yaml:"notify"`
	Auth     AuthConfig     `yaml:"auth"`
	Backup   BackupConfig   `yaml:"backup"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	StaticDir   string   `yaml:"static_dir"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type NotifyConfig struct {
	// Enabled turns local notifications on. When off, reminder syncs are
	// skipped as if permission had been denied.
	Enabled          bool          `yaml:"enabled"`
	Dir              string        `yaml:"dir"`
	DispatchInterval time.Duration `yaml:"dispatch_interval"`
}

type AuthConfig struct {
	// Enabled requires an unlock token on every RPC once a passcode is set.
	Enabled   bool          `yaml:"enabled"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type BackupConfig struct {
	Bucket string `yaml:"s3_bucket"`
	Prefix string `yaml:"s3_prefix"`
	Region string `yaml:"s3_region"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			StaticDir:   "./web",
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{Path: "./data/kinship.db"},
		Notify: NotifyConfig{
			Enabled:          true,
			Dir:              "./data/notifications",
			DispatchInterval: 30 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL: 12 * time.Hour,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration from path (optional) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = getEnv("KINSHIP_ADDR", c.Server.Addr)
	c.Server.StaticDir = getEnv("KINSHIP_STATIC_DIR", c.Server.StaticDir)
	c.Server.CORSOrigins = getEnvStringSlice("KINSHIP_CORS_ORIGINS", c.Server.CORSOrigins)

	c.Database.Path = getEnv("KINSHIP_DB_PATH", c.Database.Path)

	c.Notify.Enabled = getEnvBool("KINSHIP_NOTIFY_ENABLED", c.Notify.Enabled)
	c.Notify.Dir = getEnv("KINSHIP_NOTIFY_DIR", c.Notify.Dir)
	c.Notify.DispatchInterval = getEnvDuration("KINSHIP_NOTIFY_INTERVAL", c.Notify.DispatchInterval)

	c.Auth.Enabled = getEnvBool("KINSHIP_AUTH_ENABLED", c.Auth.Enabled)
	c.Auth.JWTSecret = getEnv("KINSHIP_JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTL = getEnvDuration("KINSHIP_TOKEN_TTL", c.Auth.TokenTTL)

	c.Backup.Bucket = getEnv("KINSHIP_S3_BUCKET", c.Backup.Bucket)
	c.Backup.Prefix = getEnv("KINSHIP_S3_PREFIX", c.Backup.Prefix)
	c.Backup.Region = getEnv("KINSHIP_S3_REGION", getEnv("AWS_REGION", c.Backup.Region))

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server address is required"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	if c.Notify.Enabled {
		if c.Notify.Dir == "" {
			errs = append(errs, errors.New("notification directory is required when notifications are enabled"))
		}
		if c.Notify.DispatchInterval <= 0 {
			errs = append(errs, fmt.Errorf("invalid dispatch interval: %s", c.Notify.DispatchInterval))
		}
	}
	if c.Auth.Enabled {
		if len(c.Auth.JWTSecret) < 16 {
			errs = append(errs, errors.New("auth enabled but jwt secret is shorter than 16 characters"))
		}
		if c.Auth.TokenTTL <= 0 {
			errs = append(errs, fmt.Errorf("invalid token ttl: %s", c.Auth.TokenTTL))
		}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// String returns a summary safe for logging. Secrets are left out.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Addr: %s, DB: %s, Notify: %v, Auth: %v, S3: %q}",
		c.Server.Addr, c.Database.Path, c.Notify.Enabled, c.Auth.Enabled, c.Backup.Bucket,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		// Try parsing as seconds
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}

func getEnvStringSlice(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		parts := strings.Split(val, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultVal
}
