// Command slugs assigns URL slugs to curated roadmaps that do not have one.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"skillpath/internal/api/v1/router"
	"skillpath/internal/config"
	"skillpath/internal/logger"
	"skillpath/internal/repository"
	"skillpath/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	logger := logger.New()

	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := router.OpenPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Msgf("Failed to connect to DB: %v", err)
	}
	defer pool.Close()

	catalog := service.NewCatalogService(repository.NewRoadmapRepo(pool), logger)
	updated, err := catalog.BackfillSlugs(ctx)
	if err != nil {
		logger.Fatal().Err(err).Int("updated", updated).Msg("Slug backfill failed")
	}
	logger.Info().Int("updated", updated).Msg("Slug backfill complete")
}
