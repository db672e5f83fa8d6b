package dialog

import (
	"fmt"
	"time"
)

// Config holds configuration shared by hub and worker processes.
type Config struct {
	// Namespace is the namespace a worker declares when it connects to a hub.
	Namespace string `mapstructure:"namespace"`

	// Secret is the shared credential workers present to the hub.
	Secret string `mapstructure:"secret"`

	// HTTPAddr is the listen address of the operator-facing HTTP API.
	HTTPAddr string `mapstructure:"http_addr"`

	// HubURL is the WebSocket endpoint a worker dials.
	HubURL string `mapstructure:"hub_url"`

	// Format is the DWP wire format a worker negotiates ("json" or "msgpack").
	Format string `mapstructure:"format"`

	// ListTimeout bounds how long the hub waits for one connection to list
	// its workflow types.
	ListTimeout time.Duration `mapstructure:"list_timeout"`

	// HeartbeatInterval is how often a worker pings the hub.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`

	// ReconnectMaxDelay caps the worker reconnect backoff.
	ReconnectMaxDelay time.Duration `mapstructure:"reconnect_max_delay"`

	// StartRateLimit is the sustained workflow starts per second allowed per
	// namespace. Zero disables the limit.
	StartRateLimit float64 `mapstructure:"start_rate_limit"`

	// StartRateBurst is the burst for StartRateLimit. It must be at least 1
	// when StartRateLimit is set.
	StartRateBurst int `mapstructure:"start_rate_burst"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Namespace:         "default",
		HTTPAddr:          ":8080",
		HubURL:            "ws://localhost:8080/dwp",
		Format:            "json",
		ListTimeout:       1 * time.Second,
		HeartbeatInterval: 15 * time.Second,
		ReconnectMaxDelay: 30 * time.Second,
		StartRateBurst:    1,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Format {
	case "json", "msgpack":
	default:
		return fmt.Errorf("dialog: unknown wire format %q", c.Format)
	}
	if c.ListTimeout <= 0 {
		return fmt.Errorf("dialog: list timeout must be positive, got %s", c.ListTimeout)
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("dialog: heartbeat interval must be positive, got %s", c.HeartbeatInterval)
	}
	if c.ReconnectMaxDelay <= 0 {
		return fmt.Errorf("dialog: reconnect max delay must be positive, got %s", c.ReconnectMaxDelay)
	}
	if c.StartRateLimit < 0 || c.StartRateBurst < 0 {
		return fmt.Errorf("dialog: start rate limit must not be negative")
	}
	if c.StartRateLimit > 0 && c.StartRateBurst < 1 {
		return fmt.Errorf("dialog: start rate burst must be at least 1 when a start rate limit is set")
	}
	return nil
}
