// ABOUTME: Configuration loading and parsing for dropnest
// ABOUTME: Supports YAML files with environment variable expansion and validation

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// MinTokenSecretLength is the minimum length for the token signing secret.
const MinTokenSecretLength = 32

// Default attempt ceilings, applied when the config omits them.
const (
	DefaultLoginMaxAttempts = 5
	DefaultAdminMaxAttempts = 5
)

// Config represents the complete dropnest configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// StorageConfig holds the data and upload directory paths
type StorageConfig struct {
	DataDir   string `yaml:"data_dir"`
	UploadDir string `yaml:"upload_dir"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	// ImageSequence is the ordered list of grid-cell indices that forms
	// the picture password.
	ImageSequence []int `yaml:"image_sequence"`
	// AdminPasswordHash is a bcrypt hash (generate via: dropnest hash).
	AdminPasswordHash string `yaml:"admin_password_hash"`
	// TokenSecret signs session tokens. Changing it invalidates every
	// token clients may have retained.
	TokenSecret      string `yaml:"token_secret"`
	LoginMaxAttempts int    `yaml:"login_max_attempts"`
	AdminMaxAttempts int    `yaml:"admin_max_attempts"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded before parsing,
// defaults are applied, and the result is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment
// variable values. If the environment variable is not set, it is replaced with
// an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in zero-valued fields with their defaults.
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "localhost:8080"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.UploadDir == "" {
		c.Storage.UploadDir = filepath.Join(c.Storage.DataDir, "uploads")
	}
	if c.Auth.LoginMaxAttempts == 0 {
		c.Auth.LoginMaxAttempts = DefaultLoginMaxAttempts
	}
	if c.Auth.AdminMaxAttempts == 0 {
		c.Auth.AdminMaxAttempts = DefaultAdminMaxAttempts
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if len(c.Auth.ImageSequence) == 0 {
		return fmt.Errorf("auth.image_sequence is required")
	}
	for i, cell := range c.Auth.ImageSequence {
		if cell < 0 {
			return fmt.Errorf("auth.image_sequence[%d] must be a non-negative grid index, got %d", i, cell)
		}
	}

	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("auth.token_secret is required")
	}
	if len(c.Auth.TokenSecret) < MinTokenSecretLength {
		return fmt.Errorf("auth.token_secret must be at least %d bytes, got %d", MinTokenSecretLength, len(c.Auth.TokenSecret))
	}

	if c.Auth.LoginMaxAttempts < 0 {
		return fmt.Errorf("auth.login_max_attempts must not be negative")
	}
	if c.Auth.AdminMaxAttempts < 0 {
		return fmt.Errorf("auth.admin_max_attempts must not be negative")
	}

	return nil
}
