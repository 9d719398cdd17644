// main.go
package main

import (
	"log"
	"time"

	"gym-booking/cmd"
	"gym-booking/internal/data/repository"
	"gym-booking/internal/notify"
	"gym-booking/internal/wire"
	"gym-booking/pkg/cache"
	"gym-booking/pkg/database"
	"gym-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Redis is an optional read accelerator; the service runs without it.
	redisClient := cache.NewRedisClient(config.Redis)
	if redisClient != nil {
		defer redisClient.Close()
		logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
	} else {
		logger.Warn("Redis unavailable, session list caching disabled")
	}
	ttl := config.Redis.ListTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	listCache := cache.New(redisClient, ttl)

	// Notifications are fire-and-forget; without a broker they are dropped.
	var notifier notify.Notifier = notify.Nop{}
	if len(config.Kafka.Brokers) > 0 {
		kafkaNotifier := notify.NewKafkaNotifier(config.Kafka.Brokers, config.Kafka.Topic)
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
		logger.Info("Kafka notifier enabled",
			zap.Strings("brokers", config.Kafka.Brokers),
			zap.String("topic", config.Kafka.Topic),
		)
	} else {
		logger.Info("No Kafka brokers configured, notifications disabled")
	}

	// Wire all dependencies
	app := wire.Wiring(repos, listCache, notifier, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
