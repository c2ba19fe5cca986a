// Package config provides configuration management for the zmig migration CLI.
// It supports loading configuration from a YAML file and environment variables,
// with the legacy-store password optionally sourced from the OS keyring.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultConfigDir  = ".zmig"
	DefaultConfigFile = "config.yaml"

	// KeyringService is the OS keyring service name used for the
	// legacy-store password fallback.
	KeyringService = "zmig"
	// KeyringLegacyUser is the keyring key holding the legacy DB password.
	KeyringLegacyUser = "legacy-db"
)

// LegacyStore holds connection parameters for the V1 (MariaDB) store.
type LegacyStore struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// DSN builds a go-sql-driver/mysql data source name. parseTime is always
// enabled so DATETIME columns scan into time.Time.
func (l LegacyStore) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		l.User, l.Password, l.Host, l.Port, l.Database)
}

// Validate checks that required legacy-store fields are present.
func (l LegacyStore) Validate() error {
	if l.Host == "" {
		return fmt.Errorf("legacy store host is required")
	}
	if l.Port <= 0 || l.Port > 65535 {
		return fmt.Errorf("invalid legacy store port: %d", l.Port)
	}
	if l.Database == "" {
		return fmt.Errorf("legacy store database name is required")
	}
	return nil
}

// TargetStore holds connection parameters for the V2 (PostgreSQL) store.
// URL takes precedence over the discrete fields when set.
type TargetStore struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// ConnectionString returns the PostgreSQL connection string for the target store.
func (t TargetStore) ConnectionString() string {
	if t.URL != "" {
		return t.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(t.User),
		url.QueryEscape(t.Password),
		t.Host,
		t.Port,
		t.Database,
		t.SSLMode,
	)
}

// Validate checks that enough target-store parameters are present to connect.
func (t TargetStore) Validate() error {
	if t.URL != "" {
		return nil
	}
	if t.Host == "" {
		return fmt.Errorf("target store host is required (set DATABASE_URL or DB_HOST)")
	}
	if t.Database == "" {
		return fmt.Errorf("target store database name is required")
	}
	if t.User == "" {
		return fmt.Errorf("target store user is required")
	}
	return nil
}

// Config is the full zmig configuration.
type Config struct {
	LogLevel  string      `yaml:"log_level"`
	LogJSON   bool        `yaml:"log_json"`
	RedisAddr string      `yaml:"redis_addr"`
	Legacy    LegacyStore `yaml:"legacy"`
	Target    TargetStore `yaml:"target"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Legacy: LegacyStore{
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Database: "zoea",
		},
		Target: TargetStore{
			Host:    "localhost",
			Port:    5432,
			User:    "zoea",
			SSLMode: "disable",
		},
	}
}

// Load reads configuration in priority order: defaults, then the YAML config
// file (if present), then environment variables. A missing config file is not
// an error; a malformed one is.
func Load() (*Config, error) {
	return LoadFrom(defaultConfigPath())
}

// LoadFrom loads configuration from an explicit file path plus environment.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Fine, env and defaults apply.
		default:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.resolveLegacyPassword()
	return cfg, nil
}

// applyEnv overrides config values from environment variables. Legacy-store
// variables keep the V1_DB_* names the original migration scripts used.
func (c *Config) applyEnv() {
	if v := os.Getenv("ZMIG_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("ZMIG_LOG_JSON"); v != "" {
		c.LogJSON = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("ZMIG_REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}

	if v := os.Getenv("V1_DB_HOST"); v != "" {
		c.Legacy.Host = v
	}
	if v := os.Getenv("V1_DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Legacy.Port = p
		}
	}
	if v := os.Getenv("V1_DB_USER"); v != "" {
		c.Legacy.User = v
	}
	if v := os.Getenv("V1_DB_PASSWORD"); v != "" {
		c.Legacy.Password = v
	}
	if v := os.Getenv("V1_DB_NAME"); v != "" {
		c.Legacy.Database = v
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Target.URL = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Target.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Target.Port = p
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Target.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Target.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Target.Database = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		c.Target.SSLMode = v
	}
}

// resolveLegacyPassword falls back to the OS keyring when no legacy password
// was provided via file or environment. Keyring errors are ignored: an absent
// secret simply means the operator must supply V1_DB_PASSWORD.
func (c *Config) resolveLegacyPassword() {
	if c.Legacy.Password != "" {
		return
	}
	if secret, err := keyring.Get(KeyringService, KeyringLegacyUser); err == nil {
		c.Legacy.Password = secret
	}
}

// StoreLegacyPassword saves the legacy-store password in the OS keyring.
func StoreLegacyPassword(password string) error {
	if err := keyring.Set(KeyringService, KeyringLegacyUser, password); err != nil {
		return fmt.Errorf("storing legacy password in keyring: %w", err)
	}
	return nil
}

// defaultConfigPath returns ~/.zmig/config.yaml, or empty when the home
// directory cannot be determined.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
}
