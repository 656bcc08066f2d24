package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vulture/internal/cache"
	"vulture/internal/config"
	"vulture/internal/repository"
	"vulture/internal/service"
	"vulture/internal/transport/rest"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		logger.Error("failed to ping MongoDB", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to MongoDB", "database", cfg.MongoDatabase)

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Error("failed to ping Redis", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to Redis", "addr", cfg.RedisAddr)

	// Initialize repositories and caches
	gameRepo := repository.NewGameRepo(db)
	playerRepo := repository.NewPlayerRepo(db)
	leaderboard := cache.NewLeaderboardCache(rdb)

	// End-game trigger. Without a scheduler, timed games run until stopped.
	var trigger service.EndGameTrigger
	if cfg.SchedulerBaseURL != "" {
		trigger = service.NewSchedulerTrigger(cfg.SchedulerBaseURL, cfg.SchedulerGroup, cfg.SchedulerCallbackURL, cfg.TriggerSharedKey, logger)
		logger.Info("end-game scheduler enabled", "group", cfg.SchedulerGroup)
	} else {
		trigger = service.NewNoopTrigger()
		logger.Warn("SCHEDULER_BASE_URL not set, games will not end automatically")
	}

	// Initialize services
	locks := service.NewGameLocks()
	authSvc := service.NewAuthService(cfg.AccessTokenKey, cfg.RefreshTokenKey)
	taskSvc := service.NewTaskService(gameRepo, cfg.MaxTasks)
	playerSvc := service.NewPlayerService(gameRepo, playerRepo, leaderboard, authSvc, locks, cfg.MaxPlayers, logger)
	gameSvc := service.NewGameService(gameRepo, playerRepo, taskSvc, playerSvc, authSvc, trigger, locks, logger)

	// Create router with container
	container := &rest.Container{
		AuthService:   authSvc,
		GameService:   gameSvc,
		TaskService:   taskSvc,
		PlayerService: playerSvc,
		SchedulerKey:  cfg.TriggerSharedKey,
		Logger:        logger,
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: rest.NewRouter(container),
	}

	go func() {
		logger.Info("server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited")
}
