package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/titanous/json5"
)

// Default returns a Config with sensible defaults. The command registry
// stays empty here; the bridge falls back to its builtin set.
func Default() *Config {
	return &Config{
		Bridge: BridgeConfig{
			CommandPrefix:      "/",
			WaitSeconds:        15,
			SweepSeconds:       5,
			RateLimitPerMinute: 0,
		},
		Channels: ChannelsConfig{
			Driver: "telegram",
		},
		Keepalive: KeepaliveConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    10000,
		},
		Telemetry: TelemetryConfig{
			Protocol:    "grpc",
			ServiceName: "relayclaw-bridge",
		},
	}
}

// envOverrides mirrors the deploy-time settings read from the
// environment. No envconfig defaults: unset vars never clobber file
// values. Secrets (tokens) live here exclusively.
type envOverrides struct {
	TelegramToken     string  `envconfig:"RELAY_TELEGRAM_TOKEN"`
	TelegramProxy     string  `envconfig:"RELAY_TELEGRAM_PROXY"`
	DiscordToken      string  `envconfig:"RELAY_DISCORD_TOKEN"`
	Driver            string  `envconfig:"RELAY_CHANNEL_DRIVER"`
	SourceChat        string  `envconfig:"RELAY_SOURCE_CHAT"`
	TargetChat        string  `envconfig:"RELAY_TARGET_CHAT"`
	CommandPrefix     string  `envconfig:"RELAY_COMMAND_PREFIX"`
	WaitSeconds       float64 `envconfig:"RELAY_WAIT_SECONDS"`
	SweepSeconds      float64 `envconfig:"RELAY_SWEEP_SECONDS"`
	KeepalivePort     int     `envconfig:"RELAY_KEEPALIVE_PORT"`
	TelemetryEndpoint string  `envconfig:"RELAY_TELEMETRY_ENDPOINT"`
	TelemetryEnabled  bool    `envconfig:"RELAY_TELEMETRY_ENABLED"`
}

// Load reads config from a JSON5 file, then overlays env vars.
// A missing file is not an error: defaults plus env suffice for a
// container deployment.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if envErr := cfg.applyEnvOverrides(); envErr != nil {
				return nil, envErr
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values.
func (c *Config) applyEnvOverrides() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("process env: %w", err)
	}

	if env.TelegramToken != "" {
		c.Channels.Telegram.Token = env.TelegramToken
	}
	if env.TelegramProxy != "" {
		c.Channels.Telegram.Proxy = env.TelegramProxy
	}
	if env.DiscordToken != "" {
		c.Channels.Discord.Token = env.DiscordToken
	}
	if env.Driver != "" {
		c.Channels.Driver = env.Driver
	}
	if env.SourceChat != "" {
		c.Bridge.SourceChat = env.SourceChat
	}
	if env.TargetChat != "" {
		c.Bridge.TargetChat = env.TargetChat
	}
	if env.CommandPrefix != "" {
		c.Bridge.CommandPrefix = env.CommandPrefix
	}
	if env.WaitSeconds > 0 {
		c.Bridge.WaitSeconds = env.WaitSeconds
	}
	if env.SweepSeconds > 0 {
		c.Bridge.SweepSeconds = env.SweepSeconds
	}
	if env.KeepalivePort > 0 {
		c.Keepalive.Port = env.KeepalivePort
	}
	if env.TelemetryEndpoint != "" {
		c.Telemetry.Endpoint = env.TelemetryEndpoint
	}
	if env.TelemetryEnabled {
		c.Telemetry.Enabled = true
	}
	return nil
}
