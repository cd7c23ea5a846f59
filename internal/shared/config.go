package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Every field may be overridden by a TRIPMATE_* environment variable, see [ApplyEnv].
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Documents DocumentsConfig `toml:"documents"`
	Auth      AuthConfig      `toml:"auth"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Server    ServerConfig    `toml:"server"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"TRIPMATE_DATABASE_PATH"`
	MaxOpenConns int    `toml:"max_open_conns" env:"TRIPMATE_DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"TRIPMATE_DATABASE_MAX_IDLE_CONNS"`
}

// DocumentsConfig selects and tunes the user document store.
type DocumentsConfig struct {
	Driver          string  `toml:"driver" env:"TRIPMATE_DOCUMENTS_DRIVER"` // sqlite or bolt
	BoltPath        string  `toml:"bolt_path" env:"TRIPMATE_DOCUMENTS_BOLT_PATH"`
	WritesPerSecond float64 `toml:"writes_per_second" env:"TRIPMATE_DOCUMENTS_WRITES_PER_SECOND"` // 0 disables pacing
}

// AuthConfig contains session and identity provider settings.
type AuthConfig struct {
	SessionPath     string       `toml:"session_path" env:"TRIPMATE_AUTH_SESSION_PATH"`
	SessionSecret   string       `toml:"session_secret" env:"TRIPMATE_AUTH_SESSION_SECRET"`
	SessionTTLHours int          `toml:"session_ttl_hours" env:"TRIPMATE_AUTH_SESSION_TTL_HOURS"`
	Google          GoogleConfig `toml:"google"`
}

// GoogleConfig contains the OAuth2 client used for provider sign-in.
type GoogleConfig struct {
	ClientID     string `toml:"client_id" env:"TRIPMATE_GOOGLE_CLIENT_ID"`
	ClientSecret string `toml:"client_secret" env:"TRIPMATE_GOOGLE_CLIENT_SECRET"`
	RedirectURI  string `toml:"redirect_uri" env:"TRIPMATE_GOOGLE_REDIRECT_URI"`
	AuthURL      string `toml:"auth_url" env:"TRIPMATE_GOOGLE_AUTH_URL"`
	TokenURL     string `toml:"token_url" env:"TRIPMATE_GOOGLE_TOKEN_URL"`
	UserInfoURL  string `toml:"userinfo_url" env:"TRIPMATE_GOOGLE_USERINFO_URL"`
}

// CatalogConfig points at dataset files that replace the bundled catalog. Empty paths use the bundled data.
type CatalogConfig struct {
	PlacesPath    string `toml:"places_path" env:"TRIPMATE_CATALOG_PLACES_PATH"`
	LocationsPath string `toml:"locations_path" env:"TRIPMATE_CATALOG_LOCATIONS_PATH"`
}

// ServerConfig contains the OAuth callback server settings.
type ServerConfig struct {
	Host string `toml:"host" env:"TRIPMATE_SERVER_HOST"`
	Port int    `toml:"port" env:"TRIPMATE_SERVER_PORT"`
}

// SessionTTL returns the configured session lifetime, defaulting to 30 days.
func (a AuthConfig) SessionTTL() time.Duration {
	if a.SessionTTLHours <= 0 {
		return 30 * 24 * time.Hour
	}
	return time.Duration(a.SessionTTLHours) * time.Hour
}

// Configured reports whether client credentials are present.
func (g GoogleConfig) Configured() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Documents.Driver) {
	case "", "sqlite", "bolt":
	default:
		return fmt.Errorf("%w: unknown documents driver %q", ErrInvalidConfig, c.Documents.Driver)
	}
	if c.Documents.Driver == "bolt" && c.Documents.BoltPath == "" {
		return fmt.Errorf("%w: documents.bolt_path is required for the bolt driver", ErrInvalidConfig)
	}
	if c.Documents.WritesPerSecond < 0 {
		return fmt.Errorf("%w: documents.writes_per_second must not be negative", ErrInvalidConfig)
	}
	if c.Auth.SessionSecret == "" {
		return fmt.Errorf("%w: auth.session_secret is required", ErrMissingCredentials)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults; environment overrides are applied last.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides config fields from TRIPMATE_* environment variables.
func ApplyEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: parse env: %v", ErrInvalidConfig, err)
	}
	return nil
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

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
