package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fathima-sithara/video-service/internal/auth"
	"github.com/fathima-sithara/video-service/internal/config"
	"github.com/fathima-sithara/video-service/internal/database"
	"github.com/fathima-sithara/video-service/internal/events"
	"github.com/fathima-sithara/video-service/internal/handlers"
	"github.com/fathima-sithara/video-service/internal/metrics"
	"github.com/fathima-sithara/video-service/internal/middleware"
	"github.com/fathima-sithara/video-service/internal/repository"
	"github.com/fathima-sithara/video-service/internal/server"
	"github.com/fathima-sithara/video-service/internal/services"
	"github.com/fathima-sithara/video-service/internal/storage"
	"github.com/fathima-sithara/video-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.IsDevelopment(), cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()
	sugar.Infof("Starting video-service in %s environment on port %d", cfg.App.Env, cfg.App.Port)

	metrics.Init()

	// Database connections
	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, sugar)
	if err != nil {
		sugar.Fatal(err)
	}
	idxCtx, idxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repository.EnsureIndexes(idxCtx, db); err != nil {
		sugar.Fatalf("failed to ensure indexes: %v", err)
	}
	idxCancel()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, sugar)
		if err != nil {
			sugar.Fatal(err)
		}
	} else {
		sugar.Warn("Redis not configured. Rate limiting stays in memory.")
	}

	// Media pipeline
	host, err := storage.NewS3Host(context.Background(), storage.S3Options{
		Region:          cfg.Media.Region,
		Bucket:          cfg.Media.Bucket,
		Endpoint:        cfg.Media.Endpoint,
		AccessKeyID:     cfg.Media.AccessKeyID,
		SecretAccessKey: cfg.Media.SecretAccessKey,
		PublicBaseURL:   cfg.Media.PublicBaseURL,
		Timeout:         cfg.MediaTimeout,
	}, logger)
	if err != nil {
		sugar.Fatalf("failed to init media host: %v", err)
	}
	stager, err := storage.NewStager(cfg.Upload.StagingPath, cfg.Upload.MaxImageMB, cfg.Upload.MaxVideoMB)
	if err != nil {
		sugar.Fatalf("failed to prepare staging dir: %v", err)
	}
	media := storage.NewUploader(stager, storage.NewImageProcessor(cfg.Media.MaxImageWidth, cfg.Media.MaxImageHeight), host, logger)

	var publisher events.Publisher = events.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		sugar.Infof("Publishing domain events to %v (topic %s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		sugar.Warn("Kafka brokers not configured. Domain events will be dropped.")
	}

	// Repositories
	users := repository.NewMongoUserRepo(db, cfg.OpTimeout)
	videos := repository.NewMongoVideoRepo(db, cfg.OpTimeout)
	comments := repository.NewMongoCommentRepo(db, cfg.OpTimeout)
	likes := repository.NewMongoLikeRepo(db, cfg.OpTimeout)
	tweets := repository.NewMongoTweetRepo(db, cfg.OpTimeout)
	subs := repository.NewMongoSubscriptionRepo(db, cfg.OpTimeout)
	playlists := repository.NewMongoPlaylistRepo(db, cfg.OpTimeout)
	tx := repository.NewMongoTxRunner(mongoClient, cfg.Mongo.Transactions, logger)

	jwtManager := auth.NewJWTManager(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	h := handlers.NewHandler(handlers.Services{
		Users:         services.NewUserService(users, media, jwtManager, publisher, logger),
		Videos:        services.NewVideoService(videos, comments, likes, users, tx, media, publisher, logger),
		Comments:      services.NewCommentService(comments, videos, likes, tx),
		Tweets:        services.NewTweetService(tweets, users, likes, tx),
		Likes:         services.NewLikeService(likes, videos, comments, tweets),
		Subscriptions: services.NewSubscriptionService(subs, users, publisher, logger),
		Playlists:     services.NewPlaylistService(playlists, videos, users),
		Dashboard:     services.NewDashboardService(videos),
		Health:        services.NewHealthService(database.NewMongoPinger(mongoClient)),
	}, cfg.JWT.SecureCookies, logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var limiter fiber.Handler
	if rdb != nil {
		limiter = middleware.NewRedisRateLimiter(rdb, "ratelimit:auth", cfg.RateLimit.PerMinute, time.Minute, logger).Handler()
	} else {
		ipLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.PerMinute, logger)
		go ipLimiter.Run(ctx)
		limiter = ipLimiter.Handler()
	}

	app := server.New(cfg, h, middleware.JWTAuth(jwtManager, logger), limiter, logger)

	// Start server
	go func() {
		listenAddr := fmt.Sprintf(":%d", cfg.App.Port)
		sugar.Infof("Server listening on %s", listenAddr)
		if err := app.Listen(listenAddr); err != nil {
			sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("Shutting down server...")
	stop()

	ctxShut, cancelShut := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShut()

	if err := app.ShutdownWithContext(ctxShut); err != nil {
		sugar.Errorf("Fiber app shutdown error: %v", err)
	}
	if err := publisher.Close(); err != nil {
		sugar.Errorf("Event publisher close error: %v", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			sugar.Errorf("Redis client close error: %v", err)
		}
	}
	if err := mongoClient.Disconnect(ctxShut); err != nil {
		sugar.Errorf("MongoDB disconnect error: %v", err)
	}

	sugar.Info("Graceful shutdown complete. Goodbye!")
}
