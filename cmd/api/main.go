package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skillswap/skillswap-api/internal/config"
	"github.com/skillswap/skillswap-api/internal/database"
	"github.com/skillswap/skillswap-api/internal/handler"
	"github.com/skillswap/skillswap-api/internal/middleware"
	"github.com/skillswap/skillswap-api/internal/models"
	"github.com/skillswap/skillswap-api/internal/realtime"
	"github.com/skillswap/skillswap-api/internal/repository"
	"github.com/skillswap/skillswap-api/internal/router"
	"github.com/skillswap/skillswap-api/internal/service"
	"github.com/skillswap/skillswap-api/pkg/ai"
	cloud "github.com/skillswap/skillswap-api/pkg/cloudinary"
	"github.com/skillswap/skillswap-api/pkg/meet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Message{},
		&models.Notification{},
		&models.Match{},
		&models.Session{},
		&models.Review{},
		&models.UploadRecord{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, running without redis fan-out")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	} else {
		logger.Warn().Msg("nats url not configured, running without nats fan-out")
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	var rooms service.RoomProvider
	if cfg.MeetBaseURL != "" && cfg.MeetAPIKey != "" {
		provider, err := meet.New(meet.Config{BaseURL: cfg.MeetBaseURL, APIKey: cfg.MeetAPIKey}, logger)
		if err != nil {
			log.Fatalf("failed to create meeting provider: %v", err)
		}
		rooms = provider
	} else {
		logger.Warn().Msg("meeting provider not configured, sessions are created without rooms")
	}

	var icebreaker ai.IcebreakerGenerator
	if cfg.OpenAIAPIKey != "" {
		generator, err := ai.NewOpenAIGenerator(ai.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Logger: logger})
		if err != nil {
			log.Fatalf("failed to create icebreaker generator: %v", err)
		}
		icebreaker = generator
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	registry := realtime.NewRegistry(logger)
	dispatcher := realtime.NewDispatcher(registry, messageRepo, notificationRepo, redisClient, cfg.EventChannel, natsConn, validate, logger)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher.Start(rootCtx)

	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, logger)
	profileService := service.NewProfileService(userRepo, validate, logger)
	uploadService := service.NewUploadService(uploader, uploadRepo, cfg.UploadMaxSizeMB, logger)
	chatService := service.NewChatService(dispatcher, messageRepo, validate, logger)
	notificationService := service.NewNotificationService(dispatcher, notificationRepo, logger)
	matchService := service.NewMatchService(matchRepo, userRepo, notificationService, icebreaker, validate, logger)
	sessionService := service.NewSessionService(sessionRepo, notificationService, rooms, validate, logger)
	reviewService := service.NewReviewService(reviewRepo, sessionRepo, notificationService, validate, logger)

	go sessionService.StartReminderLoop(rootCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		ProfileHandler:      handler.NewProfileHandler(profileService, uploadService, logger),
		ChatHandler:         handler.NewChatHandler(chatService, validate, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		MatchHandler:        handler.NewMatchHandler(matchService, logger),
		SessionHandler:      handler.NewSessionHandler(sessionService, logger),
		ReviewHandler:       handler.NewReviewHandler(reviewService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-rootCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
