package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"

	"github.com/byteplug/task-tracker/internal/api"
	"github.com/byteplug/task-tracker/internal/core/service"
	"github.com/byteplug/task-tracker/internal/core/token"
	"github.com/byteplug/task-tracker/internal/infrastructure/config"
	mongodb "github.com/byteplug/task-tracker/internal/infrastructure/db/mongo"
	redisdb "github.com/byteplug/task-tracker/internal/infrastructure/db/redis"
	"github.com/byteplug/task-tracker/internal/retention"
	"github.com/byteplug/task-tracker/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Service: "task-tracker"})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "task-tracker",
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

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() {
		_ = rdb.Close()
	}()

	userRepo := mongodb.NewUserRepository(db)
	taskRepo := mongodb.NewTaskRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}
	if err := taskRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create task indexes")
	}

	tokens := token.NewService(cfg.JWTSecret)
	users := service.NewUserService(userRepo, tokens, log)
	tasks := service.NewTaskService(taskRepo, log)
	statusCache := redisdb.NewStatusCache(rdb, cfg.StatusCacheTTL)
	status := service.NewStatusService(userRepo, taskRepo, statusCache, cfg.SessionTTL, cfg.MaxTasksPerUser, log)

	e := api.NewRouter(api.Deps{
		Users:  users,
		Tasks:  tasks,
		Status: status,
		Tokens: tokens,
		Logger: log,
		Mongo:  db,
		Redis:  rdb,
	})
	e.Use(echoprometheus.NewMiddleware("tasktracker"))
	e.GET("/metrics", echoprometheus.NewHandler())

	sweeper := retention.NewSweeper(userRepo, cfg.SessionTTL, log)
	go sweeper.Run(ctx, cfg.SweepInterval)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
}
