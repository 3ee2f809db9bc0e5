package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"

	"marketplace_chat_service/internal/chat/app"
	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/internal/chat/repository"
	"marketplace_chat_service/internal/chat/router"
	"marketplace_chat_service/pkg/config"
	"marketplace_chat_service/pkg/database"
	"marketplace_chat_service/pkg/logger"
	"marketplace_chat_service/pkg/token"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)

	token.SetSecret(cfg.Identity.JWTSecret)

	ctx := context.Background()

	// Mongo holds the decoupled message history
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.MongoSQL.User, cfg.MongoSQL.Password, cfg.MongoSQL.Host, cfg.MongoSQL.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.MongoSQL.RetryCount,
			RetryInterval: time.Duration(cfg.MongoSQL.RetryInterval) * time.Second,
		},
		cfg.MongoSQL.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", uri)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	// Redis keeps the capped recent-message cache
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}
	defer redisClient.Close()

	// Kafka event stream is optional
	var events repository.ChatEventPublisher
	if cfg.Kafka.Enabled {
		writer, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
			Brokers:       cfg.Kafka.Brokers,
			Topic:         cfg.Kafka.Topic,
			RetryCount:    cfg.Kafka.RetryCount,
			RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
		})
		if err != nil {
			logger.Log.Warn(fmt.Sprintf("kafka unavailable, event stream disabled: %v", err))
		} else {
			defer writer.Close()
			events = repository.NewKafkaEventPublisher(writer)
		}
	}

	msgRepo := repository.NewMongoMessageRepository(mongo.Database)
	recentCache := repository.NewRedisRecentCache(redisClient, int64(cfg.History.RecentLimit))

	historyWriter := app.NewHistoryWriter(msgRepo, recentCache, cfg.History.QueueSize)
	historyWriter.Start()

	registry := domain.NewPresenceRegistry()
	hub := app.NewHub(registry)
	hub.SetEventPublisher(events)
	hub.SetMessageUseCase(app.NewSendMessageUseCase(hub, historyWriter, events))
	go hub.Run()

	wsHandler := app.NewChatWebsocketHandler(hub)
	httpHandler := app.NewChatHTTPHandler(registry, msgRepo, recentCache, int64(cfg.History.RecentLimit))

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, cfg.Identity.AllowUnverified, wsHandler, httpHandler)

	go func() {
		port := ":" + cfg.Port
		logger.Log.Info("Chat Service listening on " + port)
		if err := r.Listen(port); err != nil {
			logger.Log.Fatal(fmt.Sprintf("Failed to start Fiber: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down")
	if err := r.Shutdown(); err != nil {
		logger.Log.Errorf("fiber shutdown error:", err)
	}
	hub.Stop()
	historyWriter.Close()
	registry.Dispose()
	logger.Log.Sync()
}
