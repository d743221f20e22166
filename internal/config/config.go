package config

import (
	"time"
)

type Config struct {
	Server         ServerConfig
	Slack          SlackConfig
	Translator     TranslatorConfig
	Relay          RelayConfig
	Store          StoreConfig
	Redis          RedisConfig
	Logging        LoggingConfig
	RateLimit      RateLimitConfig
	CircuitBreaker CircuitBreakerConfig
}

type ServerConfig struct {
	Port                int           `mapstructure:"port"`
	ReadTimeoutSeconds  time.Duration `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds time.Duration `mapstructure:"write_timeout_seconds"`
}

type SlackConfig struct {
	BotToken  string        `mapstructure:"bot_token"`
	UserToken string        `mapstructure:"user_token"`
	ChannelID string        `mapstructure:"channel_id"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Configured reports whether ingestion can run at all. A missing credential is
// a degraded-mode condition, not a startup failure: the web app stays up and
// only the live relay is disabled.
func (c SlackConfig) Configured() bool {
	return c.BotToken != "" && c.ChannelID != ""
}

type TranslatorConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	ModelPreferences []string      `mapstructure:"model_preferences"`
	ProbeTimeout     time.Duration `mapstructure:"probe_timeout"`
	GenerateTimeout  time.Duration `mapstructure:"generate_timeout"`
}

type RelayConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Lookback     time.Duration `mapstructure:"lookback"`
	PageSize     int           `mapstructure:"page_size"`
	SeenCapacity int           `mapstructure:"seen_capacity"`
}

type StoreConfig struct {
	Driver    string         `mapstructure:"driver"`
	Retention int            `mapstructure:"retention"`
	Postgres  PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig is optional; when Host is set the dedup seen-set is backed by
// redis SetNX in addition to the in-process bound.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type CircuitBreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxRequests uint32        `mapstructure:"max_requests"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
