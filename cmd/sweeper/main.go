// The sweeper binary runs a single retention pass and exits. It exists for
// cron-style deployments where the sweep runs outside the API process; both
// share the same store and the same sweep implementation.
package main

import (
	"context"
	"os"

	"github.com/byteplug/task-tracker/internal/infrastructure/config"
	mongodb "github.com/byteplug/task-tracker/internal/infrastructure/db/mongo"
	"github.com/byteplug/task-tracker/internal/retention"
	"github.com/byteplug/task-tracker/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Service: "task-tracker-sweeper"})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "task-tracker-sweeper",
		Pretty:  cfg.Env == "development",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	sweeper := retention.NewSweeper(mongodb.NewUserRepository(db), cfg.SessionTTL, log)
	deleted, err := sweeper.SweepOnce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sweep failed")
		os.Exit(1)
	}
	log.Info().Int("deleted", deleted).Msg("sweep finished")
}
