package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	discordapi "github.com/spec-kit/ticket-bot/internal/api/discord"
	"github.com/spec-kit/ticket-bot/internal/config"
	discordplatform "github.com/spec-kit/ticket-bot/internal/platform/discord"
)

// SlashCommands returns the slash command management commands.
func SlashCommands(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commands",
		Short: "Manage the guild slash commands",
	}
	cmd.AddCommand(syncCmd(cfg, logger))
	return cmd
}

func syncCmd(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	var guildID string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Overwrite the guild slash commands with the current definitions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Discord.Token == "" {
				return fmt.Errorf("DISCORD_TOKEN is required")
			}
			session, err := discordplatform.NewSession(cfg.Discord.Token)
			if err != nil {
				return err
			}

			cmds := discordapi.Commands(cfg.Discord.BrandName, cfg.Tickets.RatingMin, cfg.Tickets.RatingMax)
			registered, err := discordapi.Sync(session, cfg.Discord.AppID, guildID, cmds)
			if err != nil {
				return err
			}
			logger.Info("slash commands synced", zap.String("guild_id", guildID), zap.Int("count", len(registered)))
			for _, c := range registered {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.ID, c.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&guildID, "guild", cfg.Discord.GuildID, "guild to register commands in (empty for global)")
	return cmd
}
