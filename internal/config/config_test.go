package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Bridge.CommandPrefix != "/" {
		t.Errorf("prefix = %q, want /", cfg.Bridge.CommandPrefix)
	}
	if got := cfg.Bridge.WaitBudget(); got != 15*time.Second {
		t.Errorf("WaitBudget = %v, want 15s", got)
	}
	if got := cfg.Bridge.SweepInterval(); got != 5*time.Second {
		t.Errorf("SweepInterval = %v, want 5s", got)
	}
	if cfg.Channels.Driver != "telegram" {
		t.Errorf("driver = %q, want telegram", cfg.Channels.Driver)
	}
	if !cfg.Keepalive.Enabled || cfg.Keepalive.Port != 10000 {
		t.Errorf("keepalive = %+v", cfg.Keepalive)
	}
}

func TestWaitBudgetFallback(t *testing.T) {
	b := BridgeConfig{}
	if got := b.WaitBudget(); got != 15*time.Second {
		t.Errorf("zero wait_seconds should fall back to 15s, got %v", got)
	}
	b.WaitSeconds = 0.5
	if got := b.WaitBudget(); got != 500*time.Millisecond {
		t.Errorf("fractional seconds: got %v", got)
	}
}

func TestSweepIntervalClamp(t *testing.T) {
	b := BridgeConfig{WaitSeconds: 10, SweepSeconds: 60}
	if got := b.SweepInterval(); got != 5*time.Second {
		t.Errorf("interval above the budget should clamp to half of it, got %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if cfg.Bridge.WaitBudget() != 15*time.Second {
		t.Error("missing file should yield defaults")
	}
}

func TestLoadJSON5File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
  // relay bridge settings
  bridge: {
    source_chat: "@myusers",
    target_chat: "@lookupnet",
    wait_seconds: 20,
    commands: {ping: "Ping Check"},
  },
  channels: {driver: "discord"},
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bridge.SourceChat != "@myusers" || cfg.Bridge.TargetChat != "@lookupnet" {
		t.Errorf("chats = %q / %q", cfg.Bridge.SourceChat, cfg.Bridge.TargetChat)
	}
	if cfg.Bridge.WaitBudget() != 20*time.Second {
		t.Errorf("WaitBudget = %v", cfg.Bridge.WaitBudget())
	}
	if cfg.Bridge.Commands["ping"] != "Ping Check" {
		t.Errorf("commands = %v", cfg.Bridge.Commands)
	}
	if cfg.Channels.Driver != "discord" {
		t.Errorf("driver = %q", cfg.Channels.Driver)
	}
	if cfg.Bridge.CommandPrefix != "/" {
		t.Error("unset fields keep their defaults")
	}
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{bridge:"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed config should fail to load")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RELAY_TELEGRAM_TOKEN", "tok123")
	t.Setenv("RELAY_SOURCE_CHAT", "@envsource")
	t.Setenv("RELAY_WAIT_SECONDS", "25")
	t.Setenv("RELAY_KEEPALIVE_PORT", "9000")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Channels.Telegram.Token != "tok123" {
		t.Error("token must come from the environment")
	}
	if cfg.Bridge.SourceChat != "@envsource" {
		t.Errorf("source = %q", cfg.Bridge.SourceChat)
	}
	if cfg.Bridge.WaitBudget() != 25*time.Second {
		t.Errorf("WaitBudget = %v", cfg.Bridge.WaitBudget())
	}
	if cfg.Keepalive.Port != 9000 {
		t.Errorf("port = %d", cfg.Keepalive.Port)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{bridge: {source_chat: "@filesource"}}`), 0o644)
	t.Setenv("RELAY_SOURCE_CHAT", "@envsource")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bridge.SourceChat != "@envsource" {
		t.Error("env must take precedence over the file")
	}
}

func TestTokenNeverFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{channels: {telegram: {token: "leaked"}}}`), 0o644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Channels.Telegram.Token != "" {
		t.Error("token must not be readable from the config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name: "valid telegram",
			mutate: func(c *Config) {
				c.Bridge.SourceChat = "@a"
				c.Bridge.TargetChat = "@b"
				c.Channels.Telegram.Token = "tok"
			},
		},
		{
			name: "valid discord",
			mutate: func(c *Config) {
				c.Bridge.SourceChat = "@a"
				c.Bridge.TargetChat = "@b"
				c.Channels.Driver = "discord"
				c.Channels.Discord.Token = "tok"
			},
		},
		{
			name:    "missing source",
			mutate:  func(c *Config) { c.Bridge.TargetChat = "@b" },
			wantErr: true,
		},
		{
			name: "same chats",
			mutate: func(c *Config) {
				c.Bridge.SourceChat = "@a"
				c.Bridge.TargetChat = "@a"
				c.Channels.Telegram.Token = "tok"
			},
			wantErr: true,
		},
		{
			name: "missing token",
			mutate: func(c *Config) {
				c.Bridge.SourceChat = "@a"
				c.Bridge.TargetChat = "@b"
			},
			wantErr: true,
		},
		{
			name: "unknown driver",
			mutate: func(c *Config) {
				c.Bridge.SourceChat = "@a"
				c.Bridge.TargetChat = "@b"
				c.Channels.Driver = "matrix"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReplaceFrom(t *testing.T) {
	dst := Default()
	src := Default()
	src.Bridge.SourceChat = "@new"
	src.Bridge.WaitSeconds = 42

	dst.ReplaceFrom(src)

	if dst.Bridge.SourceChat != "@new" || dst.Bridge.WaitSeconds != 42 {
		t.Errorf("bridge not replaced: %+v", dst.Bridge)
	}
}
