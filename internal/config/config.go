// Package config loads the server configuration from defaults, a YAML file,
// a .env file, NOTEKEEPER_* environment variables, and command-line flags.
package config

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read into the config.
// Nested keys use a double underscore: NOTEKEEPER_SERVER__PORT.
const EnvPrefix = "NOTEKEEPER_"

// Config holds the application configuration.
type Config struct {
	App      AppConfig      `koanf:"app"`
	Logger   LoggerConfig   `koanf:"logger"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	DataDir  string         `koanf:"data_dir"`
	Auth     AuthConfig     `koanf:"auth"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `koanf:"environment"`
}

// IsDevelopment reports whether the server runs in the development environment.
func (a AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, pretty, or empty for auto
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	CORSOrigins  []string      `koanf:"cors_origins"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver       string `koanf:"driver"` // sqlite or postgres
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// SecretKey is the hex-encoded 32-byte PASETO key. Empty means the key
	// file in DataDir is used, generated on first start.
	SecretKey            string        `koanf:"secret_key"`
	AccessTokenTTL       time.Duration `koanf:"access_token_ttl"`
	ResetTokenTTL        time.Duration `koanf:"reset_token_ttl"`
	ResetCleanupInterval time.Duration `koanf:"reset_cleanup_interval"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{
			Port:         8000,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
			CORSOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Database: DatabaseConfig{Driver: "sqlite", MaxOpenConns: 4},
		DataDir:  "~/.notekeeper",
		Auth: AuthConfig{
			AccessTokenTTL:       30 * time.Minute,
			ResetTokenTTL:        time.Hour,
			ResetCleanupInterval: time.Hour,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// LoadOptions says where to look for configuration beyond the defaults.
type LoadOptions struct {
	ConfigFile string         // optional YAML file
	EnvFile    string         // optional .env file; missing is not an error
	Flags      *pflag.FlagSet // optional; only flags set by the user apply
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"env":             "app.environment",
	"log-level":       "logger.level",
	"port":            "server.port",
	"data-dir":        "data_dir",
	"database-driver": "database.driver",
	"database-dsn":    "database.dsn",
}

// Load builds the configuration with precedence, lowest to highest:
// defaults, YAML file, .env file, environment variables, flags.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if opts.ConfigFile != "" {
		if err := k.Load(file.Provider(opts.ConfigFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", opts.ConfigFile, err)
		}
	}

	if opts.EnvFile != "" {
		if err := loadEnvFile(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, flagKeyValue), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// envKeyValue maps NOTEKEEPER_SERVER__CORS_ORIGINS to server.cors_origins.
// List-valued keys are split on commas.
func envKeyValue(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if key == "server.cors_origins" {
		parts := strings.Split(value, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		return key, origins
	}
	return key, value
}

// flagKeyValue only passes through flags the user set explicitly, so
// unset flag defaults never mask file or environment values.
func flagKeyValue(f *pflag.Flag) (string, any) {
	key, ok := flagKeys[f.Name]
	if !ok || !f.Changed {
		return "", nil
	}
	return key, f.Value.String()
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Logger.Format {
	case "", "json", "pretty":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or pretty)", c.Logger.Format)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("database dsn is required for postgres")
		}
	default:
		return fmt.Errorf("invalid database driver: %s (must be sqlite or postgres)", c.Database.Driver)
	}

	if c.DataDir == "" {
		return errors.New("data dir cannot be empty after expansion")
	}

	if c.Auth.AccessTokenTTL <= 0 {
		return errors.New("auth.access_token_ttl must be positive")
	}
	if c.Auth.ResetTokenTTL <= 0 {
		return errors.New("auth.reset_token_ttl must be positive")
	}
	if c.Auth.ResetCleanupInterval < 0 {
		return errors.New("auth.reset_cleanup_interval must not be negative")
	}
	if c.Auth.SecretKey != "" {
		raw, err := hex.DecodeString(strings.TrimSpace(c.Auth.SecretKey))
		if err != nil || len(raw) != 32 {
			return errors.New("auth.secret_key must be 64 hex characters")
		}
	}

	return nil
}

// expandPaths resolves DataDir and fills the default SQLite DSN.
func (c *Config) expandPaths() error {
	dataDir, err := expandPath(c.DataDir, "")
	if err != nil {
		return fmt.Errorf("invalid data dir: %w", err)
	}
	c.DataDir = dataDir

	if c.Database.Driver == "sqlite" {
		if c.Database.DSN == "" {
			c.Database.DSN = filepath.Join(c.DataDir, "notekeeper.db")
		} else if !strings.HasPrefix(c.Database.DSN, "file:") {
			dsn, err := expandPath(c.Database.DSN, "")
			if err != nil {
				return fmt.Errorf("invalid database dsn: %w", err)
			}
			c.Database.DSN = dsn
		}
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments). Variables already set
// in the environment win over the file.
func loadEnvFile(path string) error {
	f, err := os.Open(path) //#nosec G304 -- config file path from user input is expected
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(key), "export "))
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if _, set := os.LookupEnv(key); !set {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
