package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"productapi/internal/config"
	"productapi/internal/database"
	"productapi/internal/handlers"
	"productapi/internal/logger"
	"productapi/internal/middleware"
	"productapi/internal/repositories"
	"productapi/internal/server"
	"productapi/internal/services"
	"productapi/pkg/rabbitmq"

	"github.com/rs/zerolog"

	// Loads a .env file, if present, into the process environment before config is read.
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", false)
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	// run owns every resource it opens, so its deferred cleanup has finished
	// before the process exits here.
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
	log.Info().Msg("Server gracefully stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	// --- Connection pool ---
	// Opened once for the whole process and closed last on shutdown.
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database pool: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("Error closing database pool")
		}
	}()

	// --- Product events (optional) ---
	serviceOpts := []services.Option{services.WithLogger(log)}
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Exchange: cfg.RabbitMQ.Exchange})
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer func() {
			if err := mqClient.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing RabbitMQ client")
			}
		}()
		serviceOpts = append(serviceOpts, services.WithPublisher(mqClient))
		log.Info().Str("exchange", cfg.RabbitMQ.Exchange).Msg("Publishing product events")
	}

	// --- Repositories, services, handlers ---
	productRepo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(productRepo, serviceOpts...)
	productHandler := handlers.NewProductHandler(productService, log)

	deps := server.Deps{
		Products: productHandler,
		Logger:   log,
		Ping:     func(ctx context.Context) error { return database.Ping(ctx, db) },
	}
	if cfg.MetricsEnabled {
		deps.Metrics = middleware.NewMetrics()
	}
	app := server.NewApp(deps)

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("Server listening")
		serverErr <- app.Listen(cfg.AppPort)
	}()

	// Wait for interrupt signal or a listener failure
	var listenErr error
	select {
	case <-quit:
		log.Info().Msg("Shutting down server...")
	case listenErr = <-serverErr:
	}

	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Error().Err(err).Msg("Error during Fiber shutdown")
	}

	// RabbitMQ client and database pool are closed by the deferred calls above.
	if listenErr != nil {
		return fmt.Errorf("server failed: %w", listenErr)
	}
	return nil
}
