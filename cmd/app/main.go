package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dbadapter "postfeed/internal/adapters/database"
	"postfeed/internal/adapters/httpapi"
	redisadapter "postfeed/internal/adapters/redis"
	"postfeed/internal/adapters/storage"
	ws "postfeed/internal/adapters/websocket"
	"postfeed/internal/broadcast"
	"postfeed/internal/config"
	cleanupapp "postfeed/internal/core/assetcleanup/service"
	postapp "postfeed/internal/core/post/service"
	userapp "postfeed/internal/core/user/service"
	"postfeed/internal/workers"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.InitLogger(os.Getenv("APP_ENV"))
	settings := config.Init()
	defer func() { _ = config.Logger.Sync() }()

	config.InitDB(settings.DBDSN)
	if err := dbadapter.AutoMigrate(config.DB); err != nil {
		config.Logger.Fatal("Error during migrations", zap.Error(err))
	}
	config.Logger.Info("✅ Database migrations completed")

	config.InitRedis(settings)
	defer closeResources(config.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// broadcast: hub for local sessions, Redis relay in front of it when configured
	hub := ws.NewHub()
	go func() { _ = hub.Run(ctx) }()

	var transport broadcast.Transport = hub
	if config.RedisClient != nil {
		relay := redisadapter.NewFeedRelay(config.RedisClient, hub)
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				config.Logger.Error("❌ Feed relay stopped", zap.Error(err))
			}
		}()
		transport = relay
	}
	channel, err := broadcast.Init(transport)
	if err != nil {
		config.Logger.Fatal("Could not initialize broadcast channel", zap.Error(err))
	}

	images, err := storage.NewDiskStore(settings.ImageDir, "images")
	if err != nil {
		config.Logger.Fatal("Could not open image store", zap.Error(err))
	}

	userRepo := dbadapter.NewUserRepositoryDatabase(config.DB)
	postRepo := dbadapter.NewPostRepositoryDatabase(config.DB)
	cleanupRepo := dbadapter.NewCleanupRepositoryDatabase(config.DB)

	cleanupSvc := cleanupapp.NewCleanupService(images, cleanupRepo)
	userSvc := userapp.NewUserService(userRepo, []byte(settings.JWTSecret))
	postSvc := postapp.NewPostService(postRepo, userRepo, cleanupSvc, channel, settings.FeedPageSize)

	r := httpapi.SetupRoutes(userSvc, postSvc, images, hub, httpapi.RouterConfig{
		JWTSecret:      []byte(settings.JWTSecret),
		ImageDir:       settings.ImageDir,
		AllowedOrigins: settings.AllowedOrigins,
	})

	cleanupWorker := workers.NewCleanupWorker(images, cleanupRepo, settings.CleanupBatchSize, settings.CleanupInterval, config.Logger)
	go cleanupWorker.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + settings.AppPort,
		Handler:           httpapi.WithCORS(r, settings.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		config.Logger.Info("App is running...", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	config.Logger.Info("🛑 Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		config.Logger.Error("Error during server shutdown", zap.Error(err))
	}
}

// closeResources closes the Redis and database connections.
func closeResources(logger *zap.Logger) {
	if config.RedisClient != nil {
		if err := config.RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}

	sqlDB, err := config.DB.DB()
	if err != nil {
		logger.Error("Error getting raw DB", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing database connection", zap.Error(err))
	}
}
