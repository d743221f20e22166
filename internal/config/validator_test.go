package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               3000,
			ReadTimeoutSeconds: 10 * time.Second,
		},
		Translator: TranslatorConfig{
			BaseURL:         "http://localhost:11434",
			ProbeTimeout:    2 * time.Second,
			GenerateTimeout: 15 * time.Second,
		},
		Relay: RelayConfig{
			PollInterval: 3 * time.Second,
			Lookback:     5 * time.Minute,
			PageSize:     10,
			SeenCapacity: 2048,
		},
		Store: StoreConfig{
			Driver:    "memory",
			Retention: 50,
		},
	}
}

func TestValidateStaticValid(t *testing.T) {
	require.NoError(t, ValidateStatic(validConfig()))
}

func TestValidateStatic(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:    "port out of range",
			mutate:  func(cfg *Config) { cfg.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "zero read timeout",
			mutate:  func(cfg *Config) { cfg.Server.ReadTimeoutSeconds = 0 },
			wantErr: "read_timeout",
		},
		{
			name:    "missing translator url",
			mutate:  func(cfg *Config) { cfg.Translator.BaseURL = "" },
			wantErr: "translator.base_url",
		},
		{
			name:    "generate timeout not above probe timeout",
			mutate:  func(cfg *Config) { cfg.Translator.GenerateTimeout = time.Second },
			wantErr: "generate_timeout",
		},
		{
			name:    "non-positive poll interval",
			mutate:  func(cfg *Config) { cfg.Relay.PollInterval = 0 },
			wantErr: "poll_interval",
		},
		{
			name:    "zero page size",
			mutate:  func(cfg *Config) { cfg.Relay.PageSize = 0 },
			wantErr: "page_size",
		},
		{
			name:    "unknown store driver",
			mutate:  func(cfg *Config) { cfg.Store.Driver = "sqlite" },
			wantErr: "store.driver",
		},
		{
			name: "postgres without host",
			mutate: func(cfg *Config) {
				cfg.Store.Driver = "postgres"
				cfg.Store.Postgres = PostgresConfig{Port: 5432, User: "relay", DBName: "relay"}
			},
			wantErr: "postgres.host",
		},
		{
			name: "postgres invalid sslmode",
			mutate: func(cfg *Config) {
				cfg.Store.Driver = "postgres"
				cfg.Store.Postgres = PostgresConfig{
					Host: "localhost", Port: 5432, User: "relay", DBName: "relay", SSLMode: "sometimes",
				}
			},
			wantErr: "sslmode",
		},
		{
			name: "redis bad port",
			mutate: func(cfg *Config) {
				cfg.Redis = RedisConfig{Host: "localhost", Port: 0}
			},
			wantErr: "redis.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateStatic(cfg)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr),
				"error %q should mention %q", err.Error(), tt.wantErr)
		})
	}
}

func TestSlackConfigured(t *testing.T) {
	assert.False(t, SlackConfig{}.Configured())
	assert.False(t, SlackConfig{BotToken: "xoxb"}.Configured())
	assert.False(t, SlackConfig{ChannelID: "C1"}.Configured())
	assert.True(t, SlackConfig{BotToken: "xoxb", ChannelID: "C1"}.Configured())
}
