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
	"github.com/rs/zerolog"

	"github.com/noah-isme/engage-api/internal/config"
	"github.com/noah-isme/engage-api/internal/database"
	"github.com/noah-isme/engage-api/internal/handler"
	"github.com/noah-isme/engage-api/internal/middleware"
	"github.com/noah-isme/engage-api/internal/models"
	"github.com/noah-isme/engage-api/internal/repository"
	"github.com/noah-isme/engage-api/internal/router"
	"github.com/noah-isme/engage-api/internal/service"
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

	if err := db.AutoMigrate(&models.User{}, &models.Tag{}, &models.Comment{}, &models.Reply{}, &models.Like{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	engagementService := service.NewEngagementService(commentRepo, likeRepo, userRepo, redisClient, cfg.FeedCacheTTL, validate, logger)
	userService := service.NewUserService(userRepo, validate, logger)

	engagementHandler := handler.NewEngagementHandler(engagementService, logger)
	userHandler := handler.NewUserHandler(userService, engagementService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EngagementHandler: engagementHandler,
		UserHandler:       userHandler,
		Identity:          middleware.NewIdentity(cfg.IdentitySecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
