package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	Index  IndexConfig       `yaml:"index"`
	Notify NotifyConfig      `yaml:"notify"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration. The sidecar binds loopback
// only; the editor frontend is its single client.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the loopback HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf("127.0.0.1:%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig locates the vault. The editor hands plugins its own config
// directory (e.g. /path/to/vault/.obsidian); the vault root is that
// directory's parent. Either field may be set; ConfigDir wins.
type VaultConfig struct {
	ConfigDir string `yaml:"config_dir"`
	Path      string `yaml:"path"`
}

// Root returns the absolute vault root directory.
func (c *VaultConfig) Root() string {
	if c.ConfigDir != "" {
		trimmed := strings.TrimRight(filepath.ToSlash(c.ConfigDir), "/")
		return filepath.Dir(filepath.FromSlash(trimmed))
	}
	return c.Path
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	if c.ConfigDir == "" && c.Path == "" {
		return fmt.Errorf("vault: config_dir or path is required")
	}
	return nil
}

// IndexConfig holds the SQLite file index configuration.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// NotifyConfig controls editor-side notices attached to outcomes.
// Failures always request a notice; ShowSuccess extends that to
// successful opens, and Debug appends the resolved path to failure
// messages.
type NotifyConfig struct {
	ShowSuccess bool `yaml:"show_success"`
	Debug       bool `yaml:"debug"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 27124,
			},
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		Index: IndexConfig{
			Path: "./perthro.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
