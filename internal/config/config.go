// Package config provides the relayclaw bridge configuration: JSON5
// file with sensible defaults, overlaid by environment variables.
package config

import (
	"fmt"
	"sync"
	"time"
)

// Config is the root configuration for the relayclaw bridge.
type Config struct {
	Bridge    BridgeConfig    `json:"bridge"`
	Channels  ChannelsConfig  `json:"channels"`
	Keepalive KeepaliveConfig `json:"keepalive"`
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`
	mu        sync.RWMutex
}

// BridgeConfig configures the correlation core.
type BridgeConfig struct {
	SourceChat         string            `json:"source_chat"`                // chat commands come from
	TargetChat         string            `json:"target_chat"`                // chat the lookup service operates
	CommandPrefix      string            `json:"command_prefix,omitempty"`   // default "/"
	WaitSeconds        float64           `json:"wait_seconds,omitempty"`     // per-request wait budget (default 15)
	SweepSeconds       float64           `json:"sweep_seconds,omitempty"`    // expiry sweep interval (default 5)
	Commands           map[string]string `json:"commands,omitempty"`         // keyword → label; empty = builtin set
	FailureNotice      string            `json:"failure_notice,omitempty"`   // sent on timeout
	RateLimitPerMinute int               `json:"rate_limit_per_minute,omitempty"` // per sender, 0 = unlimited
}

// WaitBudget returns the per-request wait budget as a duration.
func (b BridgeConfig) WaitBudget() time.Duration {
	if b.WaitSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(b.WaitSeconds * float64(time.Second))
}

// SweepInterval returns the expiry sweep interval, clamped below the
// wait budget so entries never outlive the budget by more than one pass.
func (b BridgeConfig) SweepInterval() time.Duration {
	iv := 5 * time.Second
	if b.SweepSeconds > 0 {
		iv = time.Duration(b.SweepSeconds * float64(time.Second))
	}
	if budget := b.WaitBudget(); iv > budget {
		iv = budget / 2
	}
	return iv
}

// ChannelsConfig selects and configures the chat transport.
type ChannelsConfig struct {
	Driver   string         `json:"driver,omitempty"` // "telegram" (default) or "discord"
	Telegram TelegramConfig `json:"telegram"`
	Discord  DiscordConfig  `json:"discord"`
}

// TelegramConfig configures the Telegram Bot API transport.
// Token is never read from the config file, only from env RELAY_TELEGRAM_TOKEN.
type TelegramConfig struct {
	Token string `json:"-"`
	Proxy string `json:"proxy,omitempty"` // optional HTTP proxy URL
}

// DiscordConfig configures the Discord gateway transport.
// Token from env RELAY_DISCORD_TOKEN only.
type DiscordConfig struct {
	Token string `json:"-"`
}

// KeepaliveConfig configures the liveness HTTP endpoint. It shares no
// state with the core beyond a read-only pending-request counter.
type KeepaliveConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host,omitempty"`
	Port    int    `json:"port,omitempty"`
}

// TelemetryConfig configures optional OTLP trace export.
type TelemetryConfig struct {
	Enabled     bool   `json:"enabled,omitempty"`
	Endpoint    string `json:"endpoint,omitempty"`     // e.g. "localhost:4317"
	Protocol    string `json:"protocol,omitempty"`     // "grpc" (default) or "http"
	Insecure    bool   `json:"insecure,omitempty"`     // skip TLS (local dev)
	ServiceName string `json:"service_name,omitempty"` // default "relayclaw-bridge"
}

// Validate checks that the config can run the bridge.
func (c *Config) Validate() error {
	if c.Bridge.SourceChat == "" {
		return fmt.Errorf("bridge.source_chat is required")
	}
	if c.Bridge.TargetChat == "" {
		return fmt.Errorf("bridge.target_chat is required")
	}
	if c.Bridge.SourceChat == c.Bridge.TargetChat {
		return fmt.Errorf("bridge.source_chat and bridge.target_chat must differ")
	}
	switch c.Channels.Driver {
	case "", "telegram":
		if c.Channels.Telegram.Token == "" {
			return fmt.Errorf("telegram driver selected but RELAY_TELEGRAM_TOKEN is not set")
		}
	case "discord":
		if c.Channels.Discord.Token == "" {
			return fmt.Errorf("discord driver selected but RELAY_DISCORD_TOKEN is not set")
		}
	default:
		return fmt.Errorf("unknown channel driver %q", c.Channels.Driver)
	}
	return nil
}

// ReplaceFrom copies all data fields from src into c, preserving c's mutex.
// Used by the hot-reload watcher.
func (c *Config) ReplaceFrom(src *Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Bridge = src.Bridge
	c.Channels = src.Channels
	c.Keepalive = src.Keepalive
	c.Telemetry = src.Telemetry
}
