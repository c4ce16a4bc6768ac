package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/relayclaw/internal/bridge"
	"github.com/nextlevelbuilder/relayclaw/internal/bus"
	"github.com/nextlevelbuilder/relayclaw/internal/channels"
	"github.com/nextlevelbuilder/relayclaw/internal/channels/discord"
	"github.com/nextlevelbuilder/relayclaw/internal/channels/telegram"
	"github.com/nextlevelbuilder/relayclaw/internal/config"
	"github.com/nextlevelbuilder/relayclaw/internal/keepalive"
	"github.com/nextlevelbuilder/relayclaw/internal/telemetry"
)

func runBridge() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Error("telemetry setup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	msgBus := bus.New()

	channel, err := newChannel(cfg, msgBus)
	if err != nil {
		slog.Error("failed to create channel", "driver", cfg.Channels.Driver, "error", err)
		os.Exit(1)
	}

	if err := channel.Start(ctx); err != nil {
		slog.Error("failed to start channel", "driver", channel.Name(), "error", err)
		os.Exit(1)
	}

	// Chat references from config may be @handles; the correlation core
	// compares against the ids inbound events carry, so resolve first.
	sourceChat, targetChat := cfg.Bridge.SourceChat, cfg.Bridge.TargetChat
	if resolver, ok := channel.(channels.ChatResolver); ok {
		if sourceChat, err = resolver.ResolveChat(ctx, sourceChat); err != nil {
			slog.Error("failed to resolve source chat", "chat", cfg.Bridge.SourceChat, "error", err)
			os.Exit(1)
		}
		if targetChat, err = resolver.ResolveChat(ctx, targetChat); err != nil {
			slog.Error("failed to resolve target chat", "chat", cfg.Bridge.TargetChat, "error", err)
			os.Exit(1)
		}
	}

	tracker := bridge.NewTracker()
	orch := bridge.NewOrchestrator(bridge.Options{
		Bus:           msgBus,
		Sender:        channel,
		Registry:      registryFromConfig(cfg),
		Tracker:       tracker,
		Limiter:       bridge.NewSenderLimiter(cfg.Bridge.RateLimitPerMinute, 3),
		SourceChat:    sourceChat,
		TargetChat:    targetChat,
		Prefix:        cfg.Bridge.CommandPrefix,
		WaitBudget:    cfg.Bridge.WaitBudget(),
		FailureNotice: cfg.Bridge.FailureNotice,
	})
	sweeper := bridge.NewSweeper(tracker, cfg.Bridge.WaitBudget(), cfg.Bridge.SweepInterval())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return orch.Run(gctx) })
	g.Go(func() error { return sweeper.Run(gctx) })

	if cfg.Keepalive.Enabled {
		srv := keepalive.New(cfg.Keepalive.Host, cfg.Keepalive.Port, tracker.Len)
		g.Go(func() error { return srv.Run(gctx) })
	}

	g.Go(func() error {
		return config.Watch(gctx, cfgPath, func(fresh *config.Config) {
			cfg.ReplaceFrom(fresh)
			orch.Reconfigure(registryFromConfig(fresh), fresh.Bridge.WaitBudget(), fresh.Bridge.FailureNotice)
		})
	})

	slog.Info("bridge is running",
		"driver", channel.Name(),
		"source_chat", sourceChat,
		"target_chat", targetChat,
		"wait_budget", cfg.Bridge.WaitBudget(),
	)

	if err := g.Wait(); err != nil {
		slog.Error("bridge terminated", "error", err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := channel.Stop(stopCtx); err != nil {
		slog.Warn("channel stop failed", "error", err)
	}
}

// newChannel builds the transport selected by config.
func newChannel(cfg *config.Config, msgBus *bus.MessageBus) (channels.Channel, error) {
	switch cfg.Channels.Driver {
	case "discord":
		return discord.New(cfg.Channels.Discord, msgBus)
	default: // "telegram"
		return telegram.New(cfg.Channels.Telegram, msgBus)
	}
}

// registryFromConfig builds the command registry, falling back to the
// builtin set when the config supplies none.
func registryFromConfig(cfg *config.Config) *bridge.Registry {
	if len(cfg.Bridge.Commands) > 0 {
		return bridge.NewRegistry(cfg.Bridge.Commands)
	}
	return bridge.DefaultRegistry()
}
