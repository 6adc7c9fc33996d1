package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rubrica/rubrica-api/internal/config"
	"github.com/rubrica/rubrica-api/internal/handler"
	"github.com/rubrica/rubrica-api/internal/middleware"
	"github.com/rubrica/rubrica-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	RubricHandler  *handler.RubricHandler
	RosterHandler  *handler.RosterHandler
	GradingHandler *handler.GradingHandler
	SummaryHandler *handler.SummaryHandler
	ExportHandler  *handler.ExportHandler
	JWTMiddleware  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	teacherOnly := middleware.RequireRole("teacher", "admin")
	aiLimiter := middleware.RateLimit("ai", 10, time.Minute)

	if deps.RubricHandler != nil {
		rubrics := api.Group("/rubrics", jwtMiddleware, teacherOnly)
		deps.RubricHandler.Register(rubrics, aiLimiter)
	}

	if deps.GradingHandler != nil {
		grading := api.Group("/grading", jwtMiddleware, teacherOnly)
		deps.GradingHandler.Register(grading, aiLimiter)
	}

	if deps.RosterHandler != nil {
		roster := api.Group("/roster", jwtMiddleware, teacherOnly)
		deps.RosterHandler.Register(roster)
	}

	if deps.SummaryHandler != nil {
		summary := api.Group("/summary", jwtMiddleware, teacherOnly)
		deps.SummaryHandler.Register(summary)
	}

	if deps.ExportHandler != nil {
		export := api.Group("/export", jwtMiddleware, teacherOnly)
		deps.ExportHandler.Register(export)
	}
}
