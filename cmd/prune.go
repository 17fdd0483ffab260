package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"natgpt/internal/server"
	"natgpt/internal/service"
)

var pruneDryRun bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete conversations idle longer than chat.archive_after",
	RunE:  runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	flags := pruneCmd.Flags()
	flags.BoolVar(&pruneDryRun, "dry-run", false, "only count the conversations that would be deleted")
	flags.String("driver", "", "conversation store, overrides persistence.driver")
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if driver, _ := cmd.Flags().GetString("driver"); driver != "" {
		cfg.Persistence.Driver = driver
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	ctx := context.Background()
	infra, err := server.OpenInfra(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := infra.Close(ctx); err != nil {
			log.Error().Err(err).Msg("failed to close connections")
		}
	}()

	uc := service.NewPruneConversations(infra.Repo, server.NewPolicy(&cfg.Chat))
	resp, err := uc.Execute(ctx, pruneDryRun)
	if err != nil {
		return err
	}

	log.Info().
		Int("deleted", resp.Deleted).
		Bool("dry_run", pruneDryRun).
		Dur("archive_after", cfg.Chat.ArchiveAfter).
		Msg("prune finished")
	return nil
}
