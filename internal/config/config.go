// Package config handles configuration loading for the newsletter agent.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	News      NewsConfig      `mapstructure:"news"      yaml:"news"`
	LLM       LLMConfig       `mapstructure:"llm"       yaml:"llm"`
	Email     EmailConfig     `mapstructure:"email"     yaml:"email"`
	Database  DatabaseConfig  `mapstructure:"database"  yaml:"database"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// NewsConfig holds news aggregation settings: upstream tables for the
// source adapters and the topic keyword relevance table.
type NewsConfig struct {
	// Tickers queried by the ticker-news adapter.
	Tickers []string `mapstructure:"tickers" yaml:"tickers"`

	// Feeds maps feed name → RSS URL; only feeds whose name matches a
	// requested topic are queried.
	Feeds map[string]string `mapstructure:"feeds" yaml:"feeds"`

	// Subreddits maps topic → board; "default" is the catch-all.
	Subreddits map[string]string `mapstructure:"subreddits" yaml:"subreddits"`

	// TopicKeywords is the relevance-scoring table.
	TopicKeywords map[string][]string `mapstructure:"topic_keywords" yaml:"topic_keywords"`

	// InsecureFeeds relaxes TLS verification for the RSS adapter's client
	// only. Some syndication endpoints serve broken certificate chains.
	InsecureFeeds bool `mapstructure:"insecure_feeds" yaml:"insecure_feeds"`

	// NewsAPIKey enables the keyword-search adapter when non-empty.
	NewsAPIKey string `mapstructure:"newsapi_key" yaml:"newsapi_key"`
}

// LLMConfig holds text-generation provider configuration.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"    yaml:"provider"` // "openai"
	APIKey      string  `mapstructure:"api_key"     yaml:"api_key"`
	BaseURL     string  `mapstructure:"base_url"    yaml:"base_url"`
	Model       string  `mapstructure:"model"       yaml:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"  yaml:"max_tokens"`
}

// EmailConfig holds SMTP delivery settings.
type EmailConfig struct {
	Host     string `mapstructure:"host"     yaml:"host"`
	Port     int    `mapstructure:"port"     yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	From     string `mapstructure:"from"     yaml:"from"`
}

// DatabaseConfig holds subscriber/newsletter persistence settings.
// An empty DSN disables persistence; endpoints that need it degrade.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// SchedulerConfig holds the daily delivery schedule.
type SchedulerConfig struct {
	// DeliverySpec is a cron expression; default is 09:00 every day.
	DeliverySpec string `mapstructure:"delivery_spec" yaml:"delivery_spec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // "debug", "info", "warn", "error"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.newsagent/config.yaml (home directory)
//  3. /etc/newsagent/config.yaml (system)
//
// Environment variables override config file values.
// Format: NEWSAGENT_<SECTION>_<KEY>, e.g., NEWSAGENT_EMAIL_HOST.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".newsagent"))
	v.AddConfigPath("/etc/newsagent")

	v.SetEnvPrefix("NEWSAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist).
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("NEWSAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// News defaults: the upstream tables the adapters run on.
	v.SetDefault("news.tickers", []string{"AAPL", "GOOGL", "MSFT"})
	v.SetDefault("news.feeds", map[string]string{
		"tech":     "https://feeds.feedburner.com/TechCrunch",
		"business": "https://feeds.feedburner.com/businessinsider",
		"science":  "https://rss.sciencedaily.com/all.xml",
		"health":   "https://www.medicalnewstoday.com/rss.xml",
	})
	v.SetDefault("news.subreddits", map[string]string{
		"technology": "technology",
		"business":   "business",
		"finance":    "finance",
		"science":    "science",
		"politics":   "politics",
		"sports":     "sports",
		"default":    "news",
	})
	v.SetDefault("news.insecure_feeds", true)

	// LLM defaults.
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2048)

	// Email defaults.
	v.SetDefault("email.host", "smtp.gmail.com")
	v.SetDefault("email.port", 587)

	// API defaults.
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8000)
	v.SetDefault("api.cors_origins", []string{"*"})

	// Scheduler defaults: daily delivery at 09:00.
	v.SetDefault("scheduler.delivery_spec", "0 9 * * *")

	// Logging defaults.
	v.SetDefault("logging.level", "info")
}

// overrideFromEnv explicitly reads sensitive keys from their conventional
// environment variables, which take precedence over the config file.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("NEWS_API_KEY"); key != "" {
		cfg.News.NewsAPIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if user := os.Getenv("EMAIL_USER"); user != "" {
		cfg.Email.Username = user
		if cfg.Email.From == "" {
			cfg.Email.From = user
		}
	}
	if pass := os.Getenv("EMAIL_PASSWORD"); pass != "" {
		cfg.Email.Password = pass
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
}

// TopicKeywordsOrDefault returns the configured scoring table, or nil when
// unset so the scorer falls back to its built-in defaults.
func (c *Config) TopicKeywordsOrDefault() map[string][]string {
	if len(c.News.TopicKeywords) == 0 {
		return nil
	}
	return c.News.TopicKeywords
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
