// Package server composes the Fiber application: middleware, the product
// routes, health and metrics endpoints, and the JSON error handler.
package server

import (
	"context"
	"errors"
	"time"

	"productapi/internal/handlers"
	"productapi/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// HealthCheckTimeout bounds the database ping done by /health.
const HealthCheckTimeout = 2 * time.Second

// Pinger reports whether the database behind the pool is reachable.
type Pinger func(ctx context.Context) error

// Deps are the collaborators the application is built from.
type Deps struct {
	Products *handlers.ProductHandler
	Logger   zerolog.Logger
	// Metrics is optional; when nil no /metrics endpoint is mounted.
	Metrics *middleware.Metrics
	// Ping is optional; when nil /health reports the database as unchecked.
	Ping Pinger
}

// NewApp builds the Fiber app with every route registered.
func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "productapi",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(deps.Logger),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(deps.Logger))
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", deps.Metrics.Handler())
	}
	// Innermost, so a recovered panic is still logged and counted as a 500.
	app.Use(recover.New())

	app.Get("/health", healthHandler(deps.Ping))

	api := app.Group("/api")
	deps.Products.RegisterRoutes(api)

	return app
}

func healthHandler(ping Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, dbStatus, code := "healthy", "unchecked", fiber.StatusOK
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), HealthCheckTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				status, dbStatus, code = "unhealthy", err.Error(), fiber.StatusServiceUnavailable
			} else {
				dbStatus = "connected"
			}
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().UTC().Format(time.RFC3339),
			"database": dbStatus,
		})
	}
}

// errorHandler renders errors that escape a handler (unknown routes, panics,
// fiber errors) as {"message": ...}.
func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
		}
		return c.Status(code).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
}
