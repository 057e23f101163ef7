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
	"github.com/rs/zerolog"

	"github.com/hirelens-labs/screener-api/internal/config"
	"github.com/hirelens-labs/screener-api/internal/database"
	"github.com/hirelens-labs/screener-api/internal/handler"
	"github.com/hirelens-labs/screener-api/internal/middleware"
	"github.com/hirelens-labs/screener-api/internal/router"
	"github.com/hirelens-labs/screener-api/internal/service"
	"github.com/hirelens-labs/screener-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	logger.Info().Str("provider", cfg.Provider()).Msg("starting screener api")

	var remote ai.RemoteScorer
	if !cfg.UseFallback {
		scorer, err := ai.NewOpenAIScorer(ai.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.RemoteTimeout,
			Logger:  logger,
		})
		if err != nil {
			log.Fatalf("failed to create remote scorer: %v", err)
		}
		remote = scorer
	}

	var cache service.ResultCache
	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		cache = service.NewRedisResultCache(redisClient, cfg.EvalCacheTTL, logger)
	}

	var events service.EvaluationPublisher
	if cfg.NATSURL != "" {
		natsConn, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
		events = service.NewNATSEvaluationPublisher(natsConn, cfg.EventSubjectBase, logger)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	evaluationService := service.NewEvaluationService(remote, cache, events, validate, cfg.RankConcurrency, logger)
	screeningHandler := handler.NewScreeningHandler(evaluationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ScreeningHandler: screeningHandler,
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
