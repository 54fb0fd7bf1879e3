// Package config provides configuration loading for the copilot service.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the copilot service
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Store       StoreConfig       `mapstructure:"store"`
	Logs        LogsConfig        `mapstructure:"logs"`
	ThreatIntel ThreatIntelConfig `mapstructure:"threat_intel"`
	LLM         LLMConfig         `mapstructure:"llm"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Web         WebConfig         `mapstructure:"web"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// StoreConfig selects where alerts are read from.
type StoreConfig struct {
	Backend    string      `mapstructure:"backend"` // file | redis
	AlertsPath string      `mapstructure:"alerts_path"`
	Redis      RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds the Redis list holding raw alert lines
type RedisConfig struct {
	URL string `mapstructure:"url"`
	Key string `mapstructure:"key"`
}

// LogsConfig selects where correlated log lines come from.
type LogsConfig struct {
	Backend    string           `mapstructure:"backend"` // file | opensearch
	Path       string           `mapstructure:"path"`
	OpenSearch OpenSearchConfig `mapstructure:"opensearch"`
}

// OpenSearchConfig holds OpenSearch connection and query settings
type OpenSearchConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Insecure bool   `mapstructure:"insecure"`
	Index    string `mapstructure:"index"`
	Field    string `mapstructure:"field"`
	Size     int    `mapstructure:"size"`
}

// ThreatIntelConfig holds AbuseIPDB settings
type ThreatIntelConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	MaxAgeDays int           `mapstructure:"max_age_days"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// LLMConfig holds chat-completion provider settings
type LLMConfig struct {
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"`
	Model       string `mapstructure:"model"`
	PromptsFile string `mapstructure:"prompts_file"`
}

// NATSConfig holds NATS message broker configuration
type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

// WebConfig holds page template and static asset locations
type WebConfig struct {
	TemplatesDir string `mapstructure:"templates_dir"`
	StaticDir    string `mapstructure:"static_dir"`
	HSTS         bool   `mapstructure:"hsts"`
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MetricsConfig controls the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.alerts_path", "alerts.txt")
	v.SetDefault("store.redis.url", "redis://localhost:6379/0")
	v.SetDefault("store.redis.key", "copilot:alerts")

	v.SetDefault("logs.backend", "file")
	v.SetDefault("logs.path", "logs.txt")
	v.SetDefault("logs.opensearch.url", "https://localhost:9200")
	v.SetDefault("logs.opensearch.username", "admin")
	v.SetDefault("logs.opensearch.password", "")
	v.SetDefault("logs.opensearch.insecure", true)
	v.SetDefault("logs.opensearch.index", "telhawk-events-*")
	v.SetDefault("logs.opensearch.field", "message")
	v.SetDefault("logs.opensearch.size", 500)

	v.SetDefault("threat_intel.api_key", "")
	v.SetDefault("threat_intel.base_url", "https://api.abuseipdb.com/api/v2")
	v.SetDefault("threat_intel.max_age_days", 90)
	v.SetDefault("threat_intel.timeout", "0s")

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.model", "llama-3.1-8b-instant")
	v.SetDefault("llm.prompts_file", "")

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject", "copilot.investigations.completed")

	v.SetDefault("web.templates_dir", "templates")
	v.SetDefault("web.static_dir", "static")
	v.SetDefault("web.hsts", false)

	v.SetDefault("cors.allowed_origins", []string{})

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/telhawk/copilot")
	}

	// Environment variables override (COPILOT_LLM_API_KEY, etc.)
	v.SetEnvPrefix("COPILOT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// Only fail if a specific config path was given
		if configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects backend names the service cannot build.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("invalid store.backend %q (want file or redis)", c.Store.Backend)
	}
	switch c.Logs.Backend {
	case "file", "opensearch":
	default:
		return fmt.Errorf("invalid logs.backend %q (want file or opensearch)", c.Logs.Backend)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}
