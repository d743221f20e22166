package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/claytonbrgsdev/slack-translator-app/internal/constants"
)

func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bindEnvVariables()
	setDefaults()

	// The config file is optional; defaults plus environment variables are a
	// complete configuration.
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func bindEnvVariables() {
	viper.BindEnv("slack.bot_token", "SLACK_API_TOKEN")
	viper.BindEnv("slack.user_token", "SLACK_USER_TOKEN")
	viper.BindEnv("slack.channel_id", "SLACK_CHANNEL_ID")
	viper.BindEnv("slack.base_url", "SLACK_BASE_URL")

	viper.BindEnv("translator.base_url", "OLLAMA_API_URL")

	viper.BindEnv("store.driver", "STORE_DRIVER")
	viper.BindEnv("store.postgres.host", "STORE_POSTGRES_HOST")
	viper.BindEnv("store.postgres.port", "STORE_POSTGRES_PORT")
	viper.BindEnv("store.postgres.user", "STORE_POSTGRES_USER")
	viper.BindEnv("store.postgres.password", "STORE_POSTGRES_PASSWORD")
	viper.BindEnv("store.postgres.dbname", "STORE_POSTGRES_DBNAME")
	viper.BindEnv("store.postgres.sslmode", "STORE_POSTGRES_SSLMODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("server.port", "SERVER_PORT")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")
}

func setDefaults() {
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.read_timeout_seconds", "10s")
	viper.SetDefault("server.write_timeout_seconds", "0s")

	viper.SetDefault("slack.base_url", constants.SlackAPIBaseURL)
	viper.SetDefault("slack.timeout", constants.DefaultHTTPTimeout)

	viper.SetDefault("translator.base_url", constants.DefaultOllamaBaseURL)
	viper.SetDefault("translator.model_preferences", constants.DefaultModelPreferences)
	viper.SetDefault("translator.probe_timeout", constants.DefaultProbeTimeout)
	viper.SetDefault("translator.generate_timeout", constants.DefaultGenerateTimeout)

	viper.SetDefault("relay.poll_interval", constants.DefaultPollInterval)
	viper.SetDefault("relay.lookback", constants.DefaultLookback)
	viper.SetDefault("relay.page_size", constants.DefaultPageSize)
	viper.SetDefault("relay.seen_capacity", constants.DefaultSeenCapacity)

	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("store.driver", constants.StoreDriverMemory)
	viper.SetDefault("store.retention", constants.DefaultRetention)
	viper.SetDefault("store.postgres.sslmode", "disable")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("ratelimit.enabled", true)
	viper.SetDefault("ratelimit.rps", 5.0)
	viper.SetDefault("ratelimit.burst", 10)

	viper.SetDefault("circuitbreaker.enabled", true)
	viper.SetDefault("circuitbreaker.max_requests", 3)
	viper.SetDefault("circuitbreaker.interval", "60s")
	viper.SetDefault("circuitbreaker.timeout", "60s")
}

func applyEnvOverrides(cfg *Config) error {
	if prefsEnv := viper.GetString("TRANSLATOR_MODEL_PREFERENCES"); prefsEnv != "" {
		prefs := strings.Split(prefsEnv, ",")
		for i := range prefs {
			prefs[i] = strings.TrimSpace(prefs[i])
		}
		if len(prefs) > 0 && prefs[0] != "" {
			cfg.Translator.ModelPreferences = prefs
		}
	}

	return nil
}
