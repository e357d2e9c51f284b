package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Catalog CatalogConfig `toml:"catalog"`
	Storage StorageConfig `toml:"storage"`
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
}

// CatalogConfig contains settings for the remote movie API.
type CatalogConfig struct {
	BaseURL           string  `toml:"base_url"`
	ImageBaseURL      string  `toml:"image_base_url"`
	PlaceholderImage  string  `toml:"placeholder_image"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	PageSize          int     `toml:"page_size"`
	SearchLimit       int     `toml:"search_limit"`
	SuggestLimit      int     `toml:"suggest_limit"`
	SuggestDelayMS    int     `toml:"suggest_delay_ms"`
	MinQueryLength    int     `toml:"min_query_length"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Timeout returns the HTTP timeout as a [time.Duration].
func (c CatalogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SuggestDelay returns the search box debounce window.
func (c CatalogConfig) SuggestDelay() time.Duration {
	return time.Duration(c.SuggestDelayMS) * time.Millisecond
}

// StorageConfig selects and sizes the local persistence store.
type StorageConfig struct {
	Driver     string `toml:"driver"` // sqlite or memory
	Path       string `toml:"path"`
	QuotaBytes int64  `toml:"quota_bytes"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port for [net/http.Server].
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
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
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidConfig)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Catalog.BaseURL) == "":
		return fmt.Errorf("%w: catalog.base_url is empty", ErrInvalidConfig)
	case c.Catalog.PageSize <= 0:
		return fmt.Errorf("%w: catalog.page_size must be positive", ErrInvalidConfig)
	case c.Catalog.SearchLimit <= 0 || c.Catalog.SuggestLimit <= 0:
		return fmt.Errorf("%w: catalog search limits must be positive", ErrInvalidConfig)
	case c.Catalog.SuggestDelayMS < 0:
		return fmt.Errorf("%w: catalog.suggest_delay_ms is negative", ErrInvalidConfig)
	case c.Storage.QuotaBytes < 0:
		return fmt.Errorf("%w: storage.quota_bytes is negative", ErrInvalidConfig)
	}

	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("%w: storage.path is required for sqlite", ErrInvalidConfig)
		}
	case "memory":
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	return nil
}

// ApplyEnv overrides selected settings from REELX_* environment variables.
//
// Call [godotenv.Load] first when a .env file should be honored.
func ApplyEnv(c *Config) {
	if v := os.Getenv("REELX_API_URL"); v != "" {
		c.Catalog.BaseURL = v
	}
	if v := os.Getenv("REELX_IMAGE_URL"); v != "" {
		c.Catalog.ImageBaseURL = v
	}
	if v := os.Getenv("REELX_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("REELX_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("REELX_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("REELX_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}
