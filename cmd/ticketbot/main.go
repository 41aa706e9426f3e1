// Package main is the entry point for the ticket bot.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-bot/cmd/ticketbot/commands"
	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	rootCmd := &cobra.Command{
		Use:   "ticketbot",
		Short: "Discord support ticket bot",
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.AddCommand(commands.ServeCommand(cfg, logger))
	rootCmd.AddCommand(commands.SlashCommands(cfg, logger))
	rootCmd.AddCommand(commands.AdminCommands(cfg))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
