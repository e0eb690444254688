// cmd/syncd/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/portalforge/portal-sync/pkg/config"
	"github.com/portalforge/portal-sync/pkg/publisher"
	"github.com/portalforge/portal-sync/pkg/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	portalID := flag.String("portal", "", "sync a single portal by ID instead of all published portals")
	flag.Parse()

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()

	st, err := store.NewPostgresStore(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	syncer := publisher.NewSyncer(st, publisher.NotionClients(cfg.Notion, logger), logger).
		WithLimits(cfg.MaxItemsPerSource, cfg.MaxItemsPerSection)

	if *portalID != "" {
		result := syncer.SyncPortal(ctx, *portalID)
		if !result.Success {
			return fmt.Errorf("sync failed: %s", result.Error)
		}
		logger.Info("Sync finished",
			zap.String("portalID", *portalID),
			zap.Int("items", result.ItemsCount),
			zap.Duration("duration", result.Duration))
		return nil
	}

	syncer.SyncAllPublishedPortals(ctx)
	return nil
}
