// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Scoring strategies
const (
	StrategyRules = "rules"
	StrategyLLM   = "llm"
)

// Config holds application configuration
type Config struct {
	DataDir     string   `yaml:"data_dir"` // Base directory for all databases (always absolute after Load)
	Port        int      `yaml:"port"`
	LogLevel    string   `yaml:"log_level"`
	DevMode     bool     `yaml:"dev_mode"`
	CORSOrigins []string `yaml:"cors_origins"`

	// Strategy selects the scoring strategy. Empty picks llm when an API key
	// is configured, rules otherwise.
	Strategy string `yaml:"strategy"`

	LLM       LLMConfig       `yaml:"llm"`
	Providers ProvidersConfig `yaml:"providers"`
	Cache     CacheConfig     `yaml:"cache"`
	Schedule  ScheduleConfig  `yaml:"schedule"`

	InsightRetentionDays int `yaml:"insight_retention_days"` // 0 keeps insights forever
}

// LLMConfig configures the OpenAI-compatible completion endpoint
type LLMConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ProvidersConfig holds upstream data source endpoints
type ProvidersConfig struct {
	YahooBaseURL string `yaml:"yahoo_base_url"`
	NewsFeedURL  string `yaml:"news_feed_url"`
}

// CacheConfig holds provider cache expiries. Zero values use the cache defaults.
type CacheConfig struct {
	QuoteTTL        time.Duration `yaml:"quote_ttl"`
	PriceBarsTTL    time.Duration `yaml:"price_bars_ttl"`
	FundamentalsTTL time.Duration `yaml:"fundamentals_ttl"`
	SentimentTTL    time.Duration `yaml:"sentiment_ttl"`
	IndicatorsTTL   time.Duration `yaml:"indicators_ttl"`
}

// ScheduleConfig holds six-field cron expressions for background jobs
type ScheduleConfig struct {
	CacheCleanup        string `yaml:"cache_cleanup"`
	DatabaseMaintenance string `yaml:"database_maintenance"`
	InsightRetention    string `yaml:"insight_retention"`
}

// defaults returns the configuration used before file and env overrides
func defaults() *Config {
	return &Config{
		DataDir:     "./data",
		Port:        8001,
		LogLevel:    "info",
		CORSOrigins: []string{"*"},
		Schedule: ScheduleConfig{
			CacheCleanup:        "0 */15 * * * *",
			DatabaseMaintenance: "0 0 * * * *",
			InsightRetention:    "0 30 3 * * *",
		},
		InsightRetentionDays: 90,
	}
}

// Load reads configuration from an optional YAML file named by
// STOCKDASH_CONFIG, then applies environment variable overrides.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return load(getEnv("STOCKDASH_CONFIG", ""))
}

func load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if cfg.Strategy == "" {
		cfg.Strategy = StrategyRules
		if cfg.LLM.APIKey != "" {
			cfg.Strategy = StrategyLLM
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Always resolve to absolute path and make sure it exists
	absDataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	cfg.DataDir = absDataDir

	return cfg, nil
}

// applyEnv overrides file values with environment variables
func (c *Config) applyEnv() {
	c.DataDir = getEnv("STOCKDASH_DATA_DIR", c.DataDir)
	c.Port = getEnvAsInt("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.DevMode = getEnvAsBool("DEV_MODE", c.DevMode)
	if v := getEnv("CORS_ORIGINS", ""); v != "" {
		c.CORSOrigins = splitList(v)
	}

	c.Strategy = getEnv("SCORING_STRATEGY", c.Strategy)

	c.LLM.APIKey = getEnv("GROQ_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = getEnv("LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = getEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.Timeout = getEnvAsDuration("LLM_TIMEOUT", c.LLM.Timeout)

	c.Providers.YahooBaseURL = getEnv("YAHOO_BASE_URL", c.Providers.YahooBaseURL)
	c.Providers.NewsFeedURL = getEnv("NEWS_FEED_URL", c.Providers.NewsFeedURL)

	c.Cache.QuoteTTL = getEnvAsDuration("CACHE_QUOTE_TTL", c.Cache.QuoteTTL)
	c.Cache.PriceBarsTTL = getEnvAsDuration("CACHE_PRICE_BARS_TTL", c.Cache.PriceBarsTTL)

	c.InsightRetentionDays = getEnvAsInt("INSIGHT_RETENTION_DAYS", c.InsightRetentionDays)
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	switch c.Strategy {
	case StrategyRules:
	case StrategyLLM:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("strategy %q requires GROQ_API_KEY", StrategyLLM)
		}
	default:
		return fmt.Errorf("unknown scoring strategy %q (want %q or %q)", c.Strategy, StrategyRules, StrategyLLM)
	}

	if c.InsightRetentionDays < 0 {
		return fmt.Errorf("insight_retention_days must not be negative")
	}

	return nil
}

// InsightRetention returns the insight retention window
func (c *Config) InsightRetention() time.Duration {
	return time.Duration(c.InsightRetentionDays) * 24 * time.Hour
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
