package cmd

import (
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/relayclaw/internal/config"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check environment and configuration health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

func runDoctor() {
	fmt.Println("relayclaw doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (NOT FOUND, using defaults + env)")
	} else {
		fmt.Println(" (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  Config load error: %s\n", err)
		return
	}

	fmt.Println()
	fmt.Println("  Bridge:")
	fmt.Printf("    %-14s %s\n", "Source chat:", orMissing(cfg.Bridge.SourceChat))
	fmt.Printf("    %-14s %s\n", "Target chat:", orMissing(cfg.Bridge.TargetChat))
	fmt.Printf("    %-14s %s\n", "Prefix:", cfg.Bridge.CommandPrefix)
	fmt.Printf("    %-14s %s\n", "Wait budget:", cfg.Bridge.WaitBudget())
	fmt.Printf("    %-14s %s\n", "Sweep every:", cfg.Bridge.SweepInterval())

	commands := cfg.Bridge.Commands
	if len(commands) == 0 {
		fmt.Printf("    %-14s builtin set\n", "Commands:")
	} else {
		keys := make([]string, 0, len(commands))
		for k := range commands {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Printf("    %-14s %v\n", "Commands:", keys)
	}

	fmt.Println()
	fmt.Println("  Channel:")
	driver := cfg.Channels.Driver
	if driver == "" {
		driver = "telegram"
	}
	fmt.Printf("    %-14s %s\n", "Driver:", driver)
	switch driver {
	case "telegram":
		fmt.Printf("    %-14s %s\n", "Token:", presence(cfg.Channels.Telegram.Token, "RELAY_TELEGRAM_TOKEN"))
	case "discord":
		fmt.Printf("    %-14s %s\n", "Token:", presence(cfg.Channels.Discord.Token, "RELAY_DISCORD_TOKEN"))
	}

	fmt.Println()
	if err := cfg.Validate(); err != nil {
		fmt.Printf("  Status: NOT READY (%s)\n", err)
		return
	}
	fmt.Println("  Status: ready")
}

func orMissing(v string) string {
	if v == "" {
		return "(missing)"
	}
	return v
}

func presence(v, envName string) string {
	if v == "" {
		return fmt.Sprintf("MISSING (set %s)", envName)
	}
	return "set"
}
