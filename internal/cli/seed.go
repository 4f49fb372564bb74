package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"trivia-game-service/internal/config"
)

var errSeedNeedsPostgres = errors.New("seed requires postgres.url: the in-memory store is discarded when the command exits")

// NewSeedCmd loads the built-in question bank into the configured Postgres database.
func NewSeedCmd(configPath *string) *cobra.Command {
	var onlyIfEmpty bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return errSeedNeedsPostgres
			}
			if err := runMigrations(ctx, cfg); err != nil {
				return err
			}

			logger := newLogger(cfg)
			rt, err := buildRuntime(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer rt.close()

			if onlyIfEmpty {
				return rt.games.EnsureQuestions(ctx)
			}
			_, err = rt.games.SetupInitialQuestions(ctx)
			return err
		},
	}
	cmd.Flags().BoolVar(&onlyIfEmpty, "if-empty", false, "skip seeding when questions already exist")
	return cmd
}
