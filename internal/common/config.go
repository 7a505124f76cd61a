package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment  string             `toml:"environment"` // "development" or "production"
	Server       ServerConfig       `toml:"server"`
	Logging      LoggingConfig      `toml:"logging"`
	Storage      StorageConfig      `toml:"storage"`
	EODHD        EODHDConfig        `toml:"eodhd"`
	AlphaVantage AlphaVantageConfig `toml:"alphavantage"`
	Claude       ClaudeConfig       `toml:"claude"`
	Gemini       GeminiConfig       `toml:"gemini"`
	LLM          LLMConfig          `toml:"llm"`
	Markets      MarketsConfig      `toml:"markets"`
	Watchlist    WatchlistConfig    `toml:"watchlist"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration for the report archive
type BadgerConfig struct {
	Enabled        bool   `toml:"enabled"`          // Enable report persistence
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// EODHDConfig contains EODHD API configuration (profile, financials, price history)
type EODHDConfig struct {
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit" validate:"gte=0"` // Requests per second
}

// AlphaVantageConfig contains Alpha Vantage API configuration (symbol search)
type AlphaVantageConfig struct {
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit" validate:"gte=0"` // Requests per second
}

// ClaudeConfig contains Anthropic Claude API settings
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens" validate:"gte=0"`
	Temperature float32 `toml:"temperature" validate:"gte=0,lte=2"`
	Timeout     string  `toml:"timeout"` // e.g. "120s"
}

// GeminiConfig contains Google Gemini API settings
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float32 `toml:"temperature" validate:"gte=0,lte=2"`
}

// LLMConfig contains provider-agnostic LLM settings
type LLMConfig struct {
	DefaultProvider string `toml:"default_provider" validate:"oneof=gemini claude"`
}

// MarketsConfig contains market data settings
type MarketsConfig struct {
	DefaultExchange string `toml:"default_exchange"` // Exchange assumed for bare tickers
	DefaultPeriod   string `toml:"default_period"`   // History window, e.g. "1y"
}

// WatchlistConfig contains scheduled-analysis settings
type WatchlistConfig struct {
	Enabled  bool     `toml:"enabled"`
	Schedule string   `toml:"schedule"` // Cron schedule format
	Tickers  []string `toml:"tickers"`
}

// NewDefaultConfig returns a config populated with defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Enabled: false,
				Path:    "./data/finsight",
			},
		},
		EODHD: EODHDConfig{
			RateLimit: 10,
		},
		AlphaVantage: AlphaVantageConfig{
			RateLimit: 5,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   8192,
			Temperature: 0.3,
			Timeout:     "120s",
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			Temperature: 0.3,
		},
		LLM: LLMConfig{
			DefaultProvider: "gemini",
		},
		Markets: MarketsConfig{
			DefaultExchange: "NYSE",
			DefaultPeriod:   "1y",
		},
		Watchlist: WatchlistConfig{
			Enabled:  false,
			Schedule: "0 7 * * 1-5", // Weekday mornings
		},
	}
}

// LoadFromFile loads configuration from a single TOML file
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	// Start with defaults
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier files)
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Apply environment variables (overrides all file configs)
	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies FINSIGHT_* environment variables on top of file config.
// Bare provider keys (EODHD_API_KEY etc.) are honored as fallbacks so shell
// environments that already export them keep working.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("FINSIGHT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("FINSIGHT_SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("FINSIGHT_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("FINSIGHT_STORAGE_PATH"); v != "" {
		config.Storage.Badger.Path = v
		config.Storage.Badger.Enabled = true
	}

	// Provider credentials: FINSIGHT_-prefixed wins, bare name is fallback
	for _, name := range []string{"FINSIGHT_EODHD_API_KEY", "EODHD_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.EODHD.APIKey = v
			break
		}
	}
	for _, name := range []string{"FINSIGHT_ALPHAVANTAGE_API_KEY", "ALPHA_VANTAGE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.AlphaVantage.APIKey = v
			break
		}
	}
	for _, name := range []string{"FINSIGHT_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Claude.APIKey = v
			break
		}
	}
	for _, name := range []string{"FINSIGHT_GEMINI_API_KEY", "GEMINI_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Gemini.APIKey = v
			break
		}
	}

	if v := os.Getenv("FINSIGHT_LLM_PROVIDER"); v != "" {
		config.LLM.DefaultProvider = strings.ToLower(v)
	}
}

// ApplyFlagOverrides applies CLI flags on top of config (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks the configuration for structural errors
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}
