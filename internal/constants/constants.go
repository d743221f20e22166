package constants

import "time"

const (
	DefaultPollInterval = 3 * time.Second
	DefaultLookback     = 5 * time.Minute
	DefaultPageSize     = 10
)

const (
	DefaultProbeTimeout    = 2 * time.Second
	DefaultGenerateTimeout = 15 * time.Second
	DefaultHTTPTimeout     = 10 * time.Second
)

const (
	DefaultOllamaBaseURL = "http://localhost:11434"
	SlackAPIBaseURL      = "https://slack.com/api"
)

const (
	DefaultSeenCapacity = 2048
	CacheKeyPrefixSeen  = "relay:seen:"
)

const (
	DefaultRetention = 50
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	SSEHeartbeatInterval = 15 * time.Second
	SubscriberBuffer     = 16
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)

// DefaultModelPreferences is the substring preference order used when picking
// an installed translation model.
var DefaultModelPreferences = []string{"llama3.1:8b", "llama3", "llama2", "mistral", "deepseek"}

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)
