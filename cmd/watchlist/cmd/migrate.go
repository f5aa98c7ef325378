package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/watchlist/internal/config"
	"github.com/donaldgifford/watchlist/internal/store"
	"github.com/donaldgifford/watchlist/pkg/logger"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			s, err := store.Open(ctx, &cfg.Database)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer s.Close()

			log.Info("running migrations", "driver", cfg.Database.Driver)

			if err := s.Migrate(ctx); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}

			log.Info("migrations complete")
			return nil
		},
	}
}
